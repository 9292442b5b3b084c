package main

import (
	"github.com/spf13/cobra"

	"github.com/Diogovx/offboarding-console/internal/auditlog"
)

var logsCriteria struct {
	action   string
	username string
	status   string
	dateFrom string
	dateTo   string
	page     int
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Browse the audit trail",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := signIn(ctx, cmd)
		if err != nil {
			return err
		}

		browser := auditlog.NewBrowser()
		browser.Apply(auditlog.Criteria{
			Action:   logsCriteria.action,
			Username: logsCriteria.username,
			Status:   logsCriteria.status,
			DateFrom: logsCriteria.dateFrom,
			DateTo:   logsCriteria.dateTo,
		})
		for page := 1; page < logsCriteria.page; page++ {
			browser.NextPage()
		}

		result, err := browser.List(ctx, sess.bound)
		if err != nil {
			return sess.guard(cmd, err)
		}

		cmd.Printf("%-20s %-22s %-8s %-16s %s\n", "WHEN", "ACTION", "STATUS", "USER", "MESSAGE")
		for _, entry := range result.Items {
			cmd.Printf("%-20s %-22s %-8s %-16s %s\n",
				entry.CreatedAt, entry.Action, entry.Status, entry.Username, entry.Message)
		}
		cmd.Printf("page %d, %d total\n", browser.Page(), result.Total)
		return nil
	},
}

func init() {
	registerSignInFlags(logsCmd)
	logsCmd.Flags().StringVar(&logsCriteria.action, "action", "", "filter by action")
	logsCmd.Flags().StringVar(&logsCriteria.username, "user", "", "filter by username")
	logsCmd.Flags().StringVar(&logsCriteria.status, "status", "", "filter by status")
	logsCmd.Flags().StringVar(&logsCriteria.dateFrom, "from", "", "start date (YYYY-MM-DD)")
	logsCmd.Flags().StringVar(&logsCriteria.dateTo, "to", "", "end date (YYYY-MM-DD)")
	logsCmd.Flags().IntVar(&logsCriteria.page, "page", 1, "page to show")
}
