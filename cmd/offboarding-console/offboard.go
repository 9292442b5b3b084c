package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
	"github.com/Diogovx/offboarding-console/internal/directory"
	"github.com/Diogovx/offboarding-console/internal/offboard"
)

var offboardYes bool

var offboardCmd = &cobra.Command{
	Use:   "offboard <registration>",
	Short: "Revoke a subject's access across all connected systems",
	Long: `Looks the subject up, shows what is still active and, after an explicit
confirmation, revokes access across all connected systems. This cannot be
undone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := signIn(ctx, cmd)
		if err != nil {
			return err
		}

		view, err := directory.Lookup(ctx, sess.bound, args[0])
		if err != nil {
			return sess.guard(cmd, err)
		}
		printSubject(cmd, view)

		exec := offboard.NewExecutor()
		exec.LoadSubject(view)
		if err := exec.BeginConfirmation(); err != nil {
			if errors.Is(err, offboard.ErrNoSubject) {
				return &exitError{code: 1, err: errors.New("subject not found")}
			}
			return err
		}

		if !offboardYes {
			answer, err := promptLine(cmd, "Type the registration to confirm: ")
			if err != nil {
				return err
			}
			if answer != view.Registration {
				_ = exec.CancelConfirmation()
				cmd.Println("aborted")
				return nil
			}
		}

		outcome, err := exec.Confirm(ctx, sess.bound)
		if errors.Is(err, backendapi.ErrUnauthorized) {
			return sess.guard(cmd, err)
		}
		cmd.Println(outcome.Message)
		if !outcome.Success {
			return &exitError{code: 1, silent: true}
		}
		return nil
	},
}

func init() {
	registerSignInFlags(offboardCmd)
	offboardCmd.Flags().BoolVar(&offboardYes, "yes", false, "skip the interactive confirmation")
}
