package main

import (
	"github.com/spf13/cobra"

	"github.com/Diogovx/offboarding-console/internal/auditlog"
	"github.com/Diogovx/offboarding-console/internal/export"
)

var exportCriteria struct {
	format   string
	action   string
	username string
	status   string
	dateFrom string
	dateTo   string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered audit trail to a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := signIn(ctx, cmd)
		if err != nil {
			return err
		}

		browser := auditlog.NewBrowser()
		browser.Apply(auditlog.Criteria{
			Action:   exportCriteria.action,
			Username: exportCriteria.username,
			Status:   exportCriteria.status,
			DateFrom: exportCriteria.dateFrom,
			DateTo:   exportCriteria.dateTo,
		})

		pipeline := export.NewPipeline(
			export.WithPollInterval(sess.cfg.ExportPollInterval),
			export.WithPollAttempts(sess.cfg.ExportPollAttempts),
		)
		result, err := pipeline.Run(ctx, sess.bound, exportCriteria.format,
			browser.ExportFilter(), export.FileSaver{Dir: sess.cfg.ExportDir},
			func(message string) { cmd.Println(message) })
		if err != nil {
			return sess.guard(cmd, err)
		}

		cmd.Printf("saved %s\n", result.Path)
		return nil
	},
}

func init() {
	registerSignInFlags(exportCmd)
	exportCmd.Flags().StringVar(&exportCriteria.format, "format", "csv", "export format (csv, jsonl, xlsx)")
	exportCmd.Flags().StringVar(&exportCriteria.action, "action", "", "filter by action")
	exportCmd.Flags().StringVar(&exportCriteria.username, "user", "", "filter by username")
	exportCmd.Flags().StringVar(&exportCriteria.status, "status", "", "filter by status")
	exportCmd.Flags().StringVar(&exportCriteria.dateFrom, "from", "", "start date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportCriteria.dateTo, "to", "", "end date (YYYY-MM-DD)")
}
