package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sqlsweden/sqlZetup/internal/mssql"
	"github.com/sqlsweden/sqlZetup/internal/scripts"
)

func newRunScriptsCmd(root *rootFlags) *cobra.Command {
	cf := connectFlags{}
	var scriptsDir, manifest, repoURL string

	cmd := &cobra.Command{
		Use:   "run-scripts",
		Short: "Run the maintenance script manifest against an instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(root)
			if err != nil {
				return err
			}

			if repoURL != "" {
				if err := scripts.NewFetcher(repoURL, "", scriptsDir, log).Sync(cmd.Context()); err != nil {
					return err
				}
			}

			if manifest == "" {
				manifest = filepath.Join(scriptsDir, "manifest.txt")
			}
			entries, err := scripts.LoadManifest(manifest)
			if err != nil {
				return err
			}

			sa, err := saPassword(root.nonInteractive)
			if err != nil {
				return err
			}
			client, err := mssql.Connect(cmd.Context(), cf.config(sa), log)
			if err != nil {
				return err
			}
			defer client.Close()

			done, err := scripts.NewRunner(client, log).Run(cmd.Context(), entries)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d scripts completed\n", done)
			return nil
		},
	}

	registerConnectFlags(cmd, &cf)
	cmd.Flags().StringVar(&scriptsDir, "scripts-dir", "", "Directory holding the maintenance scripts")
	cmd.Flags().StringVar(&manifest, "manifest", "", "Script manifest path (default: manifest.txt in the scripts directory)")
	cmd.Flags().StringVar(&repoURL, "scripts-repo", "", "Git repository to sync the scripts directory from")
	cmd.MarkFlagRequired("scripts-dir") //nolint:errcheck

	return cmd
}
