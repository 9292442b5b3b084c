package main

import (
	"github.com/spf13/cobra"

	"github.com/Diogovx/offboarding-console/internal/directory"
	"github.com/Diogovx/offboarding-console/internal/reconcile"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <registration>",
	Short: "Look a subject up across the connected systems",
	Args:  cobra.ExactArgs(1),
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
		return nil
	},
}

func init() {
	registerSignInFlags(lookupCmd)
}

func printSubject(cmd *cobra.Command, view reconcile.View) {
	if !view.Found {
		cmd.Printf("registration %s not found\n", view.Registration)
		return
	}
	cmd.Printf("%s (%s)\n", view.Name, view.Registration)
	if view.IsOffboarded {
		cmd.Println("status: offboarded")
	} else {
		cmd.Println("status: active")
	}
	if ev := view.LastEvent; ev != nil {
		cmd.Printf("last offboarding: %s\n", ev.Timestamp.Format("2006-01-02 15:04:05"))
	}
	if len(view.Services) > 0 {
		cmd.Println("services:")
		for _, svc := range view.Services {
			cmd.Println(formatServiceLine(svc.System, svc.Active))
		}
	}
}
