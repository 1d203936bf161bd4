package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlsweden/sqlZetup/internal/config"
	"github.com/sqlsweden/sqlZetup/internal/report"
)

func newConfigureCmd(root *rootFlags) *cobra.Command {
	var req config.Request
	var answerFile string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Finish configuring an already installed instance",
		Long: `Runs the post-install phases (instance configuration, maintenance scripts,
verification, optional SSMS) against an engine that is already installed,
typically after the reboot that setup requested. Use the same flags or
answer file as the install run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveRequest(&req, answerFile, root, explicitFields(cmd)); err != nil {
				return err
			}
			log, err := newLogger(root)
			if err != nil {
				return err
			}

			sa, err := saPassword(req.NonInteractive)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			display := newProgressDisplay(req, out, postInstallStepIDs)
			defer display.close()

			summary, ssmsReboot, runErr := executePostInstall(cmd.Context(), req, sa, log, display.notify)
			summary.Reboot = ssmsReboot
			display.finish(*summary)

			fmt.Fprintln(out, report.Render(*summary, req))
			return runErr
		},
	}

	registerRequestFlags(cmd, &req, &answerFile)
	return cmd
}
