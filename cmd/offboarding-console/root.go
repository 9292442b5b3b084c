package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Diogovx/offboarding-console/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "offboarding-console",
	Short:         "Operator console for employee offboarding and audit review.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		structured := commandUsesStructuredLogging(cmd)
		setCommandExecutionContext(commandExecutionContext{
			CommandPath:       cmd.CommandPath(),
			UsesStructuredLog: structured,
		})
		if structured {
			if _, err := logging.BootstrapFromEnv(cmd.CommandPath(), os.Stderr); err != nil {
				return err
			}
		}
		return nil
	},
}

func Execute() error {
	defer resetCommandExecutionContext()
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, lookupCmd, offboardCmd, logsCmd, exportCmd)
}
