package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlsweden/sqlZetup/internal/companion"
	"github.com/sqlsweden/sqlZetup/internal/install"
)

func newInstallSSMSCmd(root *rootFlags) *cobra.Command {
	var installerPath string

	cmd := &cobra.Command{
		Use:   "install-ssms",
		Short: "Install SQL Server Management Studio silently",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(root)
			if err != nil {
				return err
			}

			inst := companion.NewInstaller(companion.RegistryDetector{}, install.ExecRunner{}, log)
			reboot, err := inst.Install(cmd.Context(), installerPath)
			if errors.Is(err, companion.ErrAlreadyInstalled) {
				fmt.Fprintln(cmd.OutOrStdout(), err.Error())
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Management Studio installed")
			if reboot.NeedsReboot() {
				fmt.Fprintln(cmd.OutOrStdout(), "a reboot is required to finish the installation")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&installerPath, "ssms-installer", "", "Path to the SSMS installer")
	cmd.MarkFlagRequired("ssms-installer") //nolint:errcheck

	return cmd
}
