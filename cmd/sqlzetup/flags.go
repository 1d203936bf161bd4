package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sqlsweden/sqlZetup/internal/config"
	"github.com/sqlsweden/sqlZetup/internal/credentials"
	"github.com/sqlsweden/sqlZetup/internal/logger"
)

// registerRequestFlags binds the full installation request surface onto a
// command. The answer file fills whatever the flags leave unset.
func registerRequestFlags(cmd *cobra.Command, req *config.Request, answerFile *string) {
	f := cmd.Flags()

	f.StringVarP(answerFile, "answer-file", "a", "", "YAML answer file with defaults for any unset flag")

	f.StringVar(&req.InstanceName, "instance", "", "Instance name")
	f.StringVar(&req.Version, "sql-version", "", "SQL Server release (2016, 2017, 2019, 2022)")
	f.StringVar(&req.Edition, "edition", "", "Edition tier (Developer, Standard, Enterprise)")
	f.StringVar(&req.ProductKey, "product-key", "", "Product key, required for licensed editions")

	f.StringVar(&req.MediaPath, "media", "", "Path to the installation medium (.iso or setup .exe)")
	f.StringVar(&req.UpdateSourcePath, "update-source", "", "Directory with cumulative updates to slipstream")

	f.StringVar(&req.DataDir, "data-dir", "", "User database data directory")
	f.StringVar(&req.LogDir, "log-dir", "", "User database log directory")
	f.StringVar(&req.BackupDir, "backup-dir", "", "Backup directory")
	f.StringVar(&req.TempDBDataDir, "tempdb-data-dir", "", "tempdb data directory")
	f.StringVar(&req.TempDBLogDir, "tempdb-log-dir", "", "tempdb log directory")
	f.IntVar(&req.TempDBDataFileSizeMB, "tempdb-data-size", 0, "tempdb data file size in MB")
	f.IntVar(&req.TempDBLogFileSizeMB, "tempdb-log-size", 0, "tempdb log file size in MB")

	f.StringVar(&req.Collation, "collation", "", "Server collation")
	f.IntVar(&req.Port, "port", 0, "Static TCP port for the instance")
	f.StringVar(&req.EngineAccount, "engine-account", "", "Engine service account")
	f.StringVar(&req.AgentAccount, "agent-account", "", "Agent service account")
	f.StringVar(&req.SysadminGroup, "sysadmin-group", "", "Group granted the sysadmin role")

	f.StringVar(&req.ScriptsDir, "scripts-dir", "", "Directory holding the maintenance scripts")
	f.StringVar(&req.ManifestPath, "manifest", "", "Script manifest path (default: manifest.txt in the scripts directory)")
	f.StringVar(&req.CollationFile, "collation-file", "", "Collation allow-list file")
	f.StringVar(&req.ScriptsRepoURL, "scripts-repo", "", "Git repository to sync the scripts directory from")

	f.BoolVar(&req.InstallSSMS, "install-ssms", false, "Install SQL Server Management Studio afterwards")
	f.StringVar(&req.SSMSInstaller, "ssms-installer", "", "Path to the SSMS installer")

	f.StringVar(&req.AllocUnitPolicy, "alloc-unit-policy", "", "Non-interactive reaction to a 65536-byte allocation unit mismatch (warn or fail)")
}

// explicitFields records the boolean request fields set on the command line,
// so the answer-file merge cannot overwrite a deliberate false.
func explicitFields(cmd *cobra.Command) map[string]bool {
	return map[string]bool{
		"install_ssms": cmd.Flags().Changed("install-ssms"),
	}
}

// resolveRequest merges the answer file under the flag values and validates
// the result.
func resolveRequest(req *config.Request, answerFile string, root *rootFlags, explicit map[string]bool) error {
	if answerFile != "" {
		if err := config.LoadAnswerFile(answerFile, req, explicit); err != nil {
			return err
		}
	}

	req.NonInteractive = root.nonInteractive || !term.IsTerminal(int(os.Stdin.Fd()))
	req.Debug = root.verbose

	return config.ValidateRequest(req)
}

func newLogger(root *rootFlags) (*logger.Logger, error) {
	level := "info"
	if root.verbose {
		level = "debug"
	}
	return logger.New(logger.Options{Level: level, HumanReadable: true})
}

// secretSource picks the prompt source for interactive runs and the
// environment source for unattended ones.
func secretSource(nonInteractive bool) credentials.Source {
	if nonInteractive {
		return &credentials.EnvSource{}
	}
	return credentials.NewTerminalSource()
}
