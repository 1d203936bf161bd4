package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlsweden/sqlZetup/internal/credentials"
	"github.com/sqlsweden/sqlZetup/internal/mssql"
	"github.com/sqlsweden/sqlZetup/internal/probe"
)

type connectFlags struct {
	host     string
	port     int
	instance string
}

func registerConnectFlags(cmd *cobra.Command, cf *connectFlags) {
	cmd.Flags().StringVar(&cf.host, "host", "localhost", "Engine host")
	cmd.Flags().IntVar(&cf.port, "port", 0, "Engine TCP port (default 1433)")
	cmd.Flags().StringVar(&cf.instance, "instance", "", "Named instance to resolve through the browser service")
}

func (cf connectFlags) config(sa credentials.Secret) mssql.Config {
	return mssql.Config{
		Host:     cf.host,
		Port:     cf.port,
		Instance: cf.instance,
		Username: "sa",
		Password: sa,
	}
}

// saPassword reads the single secret the standalone subcommands need.
func saPassword(nonInteractive bool) (credentials.Secret, error) {
	source := secretSource(nonInteractive)
	sa, err := source.Secret(credentials.SlotSAPassword, "SA password")
	if err != nil {
		return credentials.Secret{}, err
	}
	return sa, nil
}

func newVerifyCmd(root *rootFlags) *cobra.Command {
	cf := connectFlags{}
	var probeDatabase, probeTable string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an installed instance answers the sentinel probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(root)
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

			prober := probe.NewProber(client, log)
			prober.Database = probeDatabase
			prober.Table = probeTable
			if err := prober.Verify(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "verification passed")
			return nil
		},
	}

	registerConnectFlags(cmd, &cf)
	cmd.Flags().StringVar(&probeDatabase, "probe-database", probe.DefaultDatabase, "Database holding the probed table")
	cmd.Flags().StringVar(&probeTable, "probe-table", probe.DefaultTable, "Table whose existence proves the script phase ran")
	return cmd
}
