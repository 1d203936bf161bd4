package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose        bool
	nonInteractive bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "sqlzetup",
		Short:         "sqlZetup performs unattended SQL Server installations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.nonInteractive, "non-interactive", false, "Never prompt; read secrets from the environment")

	cmd.AddCommand(newInstallCmd(flags))
	cmd.AddCommand(newConfigureCmd(flags))
	cmd.AddCommand(newVerifyCmd(flags))
	cmd.AddCommand(newRunScriptsCmd(flags))
	cmd.AddCommand(newInstallSSMSCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
