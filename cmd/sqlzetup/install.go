package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sqlsweden/sqlZetup/internal/companion"
	"github.com/sqlsweden/sqlZetup/internal/config"
	"github.com/sqlsweden/sqlZetup/internal/configure"
	"github.com/sqlsweden/sqlZetup/internal/credentials"
	"github.com/sqlsweden/sqlZetup/internal/install"
	"github.com/sqlsweden/sqlZetup/internal/logger"
	"github.com/sqlsweden/sqlZetup/internal/media"
	"github.com/sqlsweden/sqlZetup/internal/model"
	"github.com/sqlsweden/sqlZetup/internal/mssql"
	"github.com/sqlsweden/sqlZetup/internal/pipeline"
	"github.com/sqlsweden/sqlZetup/internal/probe"
	"github.com/sqlsweden/sqlZetup/internal/report"
	"github.com/sqlsweden/sqlZetup/internal/scripts"
	"github.com/sqlsweden/sqlZetup/internal/volume"
)

// Setup can legitimately run for a very long time on slow storage.
const engineInstallTimeout = 2 * time.Hour

func newInstallCmd(root *rootFlags) *cobra.Command {
	var req config.Request
	var answerFile string

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install and configure a SQL Server instance unattended",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveRequest(&req, answerFile, root, explicitFields(cmd)); err != nil {
				return err
			}
			log, err := newLogger(root)
			if err != nil {
				return err
			}
			return runInstall(cmd.Context(), req, log, cmd.OutOrStdout())
		},
	}

	registerRequestFlags(cmd, &req, &answerFile)
	return cmd
}

func runInstall(ctx context.Context, req config.Request, log *logger.Logger, out io.Writer) error {
	allowed, err := config.LoadCollationAllowList(req.CollationFile)
	if err != nil {
		return err
	}
	if err := config.CheckCollation(req.Collation, allowed); err != nil {
		return err
	}

	bundle, err := credentials.NewCollector(secretSource(req.NonInteractive)).Collect(req.SharedServiceAccount())
	if err != nil {
		return err
	}

	display := newProgressDisplay(req, out, installStepIDs)
	defer display.close()

	var continueAfterReboot func() (bool, error)
	if !req.NonInteractive {
		continueAfterReboot = func() (bool, error) {
			return display.confirm("Setup requested a restart. Continue with configuration before rebooting?")
		}
	}

	summary, runErr := executeInstall(ctx, req, bundle, log, display.notify, continueAfterReboot)
	display.finish(*summary)

	fmt.Fprintln(out, report.Render(*summary, req))
	return runErr
}

// executeInstall runs the two pipeline phases: everything up to and including
// the engine setup, then the post-install work that needs a running engine.
// When setup requests a restart the operator decides through confirmContinue
// whether configuration proceeds immediately; otherwise the run stops and
// "sqlzetup configure" finishes the job after the reboot.
func executeInstall(ctx context.Context, req config.Request, bundle *credentials.Bundle, log *logger.Logger, notify pipeline.Notifier, confirmContinue func() (bool, error)) (*model.RunSummary, error) {
	summary := &model.RunSummary{}
	start := time.Now()
	defer func() { summary.Duration = time.Since(start) }()

	args := install.NewArguments(req, bundle, runtime.NumCPU())

	phase1 := pipeline.New(log, pipeline.WithNotifier(notify))
	var med *media.Media

	p1, err := phase1.Execute(ctx, []pipeline.Step{
		{
			ID:   "validate_environment",
			Name: "Validate host environment",
			Run: func(ctx context.Context) error {
				return newVolumeValidator(req, log).CheckEnvironment()
			},
		},
		{
			ID:   "validate_volumes",
			Name: "Validate storage volumes",
			Run: func(ctx context.Context) error {
				return newVolumeValidator(req, log).CheckDirs(req.StorageDirs())
			},
		},
		{
			ID:   "locate_media",
			Name: "Locate installation medium",
			Run: func(ctx context.Context) error {
				m, err := media.NewLocator(media.NewMounter(), log).Locate(ctx, req.MediaPath)
				if err != nil {
					return err
				}
				med = m
				phase1.OnCleanup(m.Release)
				return nil
			},
		},
		{
			ID:      "install_engine",
			Name:    "Install database engine",
			Timeout: engineInstallTimeout,
			Run: func(ctx context.Context) error {
				reboot, err := install.NewInstaller(install.ExecRunner{}, log).Install(ctx, med.SetupPath, args)
				summary.Reboot = reboot
				return err
			},
		},
	})
	summary.Results = append(summary.Results, p1.Results...)
	if err != nil {
		return summary, err
	}

	if summary.Reboot.NeedsReboot() {
		proceed, err := proceedAfterReboot(confirmContinue)
		if err != nil {
			return summary, err
		}
		if !proceed {
			log.Warn(`restart pending; after rebooting, run "sqlzetup configure" with the same answer file to finish`)
			return summary, nil
		}
		log.Warn("continuing configuration with a restart pending; reboot when the run finishes")
	}

	p2, ssmsReboot, err := executePostInstall(ctx, req, bundle.SAPassword, log, notify)
	summary.Results = append(summary.Results, p2.Results...)
	if ssmsReboot.NeedsReboot() && !summary.Reboot.NeedsReboot() {
		summary.Reboot = ssmsReboot
	}
	return summary, err
}

// proceedAfterReboot resolves the restart decision. Without a confirmer
// (non-interactive runs) a pending restart always stops the run.
func proceedAfterReboot(confirm func() (bool, error)) (bool, error) {
	if confirm == nil {
		return false, nil
	}
	return confirm()
}

// executePostInstall runs every phase that needs a reachable engine. It is
// shared between "install" and the post-reboot "configure" resume.
func executePostInstall(ctx context.Context, req config.Request, sa credentials.Secret, log *logger.Logger, notify pipeline.Notifier) (*model.RunSummary, model.RebootStatus, error) {
	phase := pipeline.New(log, pipeline.WithNotifier(notify))
	var client *mssql.Client
	ssmsReboot := model.NoReboot

	summary, err := phase.Execute(ctx, []pipeline.Step{
		{
			ID:   "connect_engine",
			Name: "Connect to the new instance",
			Run: func(ctx context.Context) error {
				c, err := mssql.Connect(ctx, engineConfig(req, sa), log)
				if err != nil {
					return err
				}
				client = c
				phase.OnCleanup(func() { client.Close() })
				return nil
			},
		},
		{
			ID:   "configure_instance",
			Name: "Apply instance configuration",
			Run: func(ctx context.Context) error {
				ops := configure.Operations(configure.Params{
					Port:                 req.Port,
					Cores:                runtime.NumCPU(),
					TempDBFiles:          install.TempDBFileCount(runtime.NumCPU()),
					TempDBDataDir:        req.TempDBDataDir,
					TempDBDataFileSizeMB: req.TempDBDataFileSizeMB,
					TempDBLogFileSizeMB:  req.TempDBLogFileSizeMB,
				})
				results, err := configure.NewConfigurator(client, log).Apply(ctx, ops)
				for _, warn := range configure.Warnings(results) {
					log.Warn(fmt.Sprintf("configuration %s skipped: %v", warn.ID, warn.Err))
				}
				return err
			},
		},
		{
			ID:          "sync_scripts",
			Name:        "Sync maintenance script repository",
			Criticality: pipeline.Advisory,
			Run: func(ctx context.Context) error {
				if req.ScriptsRepoURL == "" {
					return pipeline.ErrNothingToDo
				}
				return scripts.NewFetcher(req.ScriptsRepoURL, "", req.ScriptsDir, log).Sync(ctx)
			},
		},
		{
			ID:   "run_scripts",
			Name: "Run maintenance scripts",
			Run: func(ctx context.Context) error {
				entries, err := scripts.LoadManifest(manifestPath(req))
				if err != nil {
					return err
				}
				_, err = scripts.NewRunner(client, log).Run(ctx, entries)
				return err
			},
		},
		{
			ID:   "verify_install",
			Name: "Verify the installation",
			Run: func(ctx context.Context) error {
				return probe.NewProber(client, log).Verify(ctx)
			},
		},
		{
			ID:   "install_ssms",
			Name: "Install Management Studio",
			Run: func(ctx context.Context) error {
				if !req.InstallSSMS {
					return pipeline.ErrNothingToDo
				}
				inst := companion.NewInstaller(companion.RegistryDetector{}, install.ExecRunner{}, log)
				reboot, err := inst.Install(ctx, req.SSMSInstaller)
				if errors.Is(err, companion.ErrAlreadyInstalled) {
					return pipeline.ErrNothingToDo
				}
				if err == nil {
					ssmsReboot = reboot
				}
				return err
			},
		},
	})
	return summary, ssmsReboot, err
}

func newVolumeValidator(req config.Request, log *logger.Logger) *volume.Validator {
	return volume.NewValidator(volume.NewInspector(), stdinConfirmer(req.NonInteractive), log, volume.Policy{
		AllocUnitFailFast: req.AllocUnitPolicy != config.AllocUnitWarn,
		NonInteractive:    req.NonInteractive,
	})
}

// stdinConfirmer asks a yes/no question on the terminal. Non-interactive runs
// never prompt; the validator's policy decides instead.
func stdinConfirmer(nonInteractive bool) volume.Confirmer {
	if nonInteractive {
		return nil
	}
	reader := bufio.NewReader(os.Stdin)
	return func(prompt string) (bool, error) {
		fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}

// engineConfig targets the instance right after setup, before the static
// port is pinned: a default instance listens on 1433, a named one is found
// through the browser service.
func engineConfig(req config.Request, sa credentials.Secret) mssql.Config {
	cfg := mssql.Config{Host: "localhost", Username: "sa", Password: sa}
	if !strings.EqualFold(req.InstanceName, "MSSQLSERVER") {
		cfg.Instance = req.InstanceName
	}
	return cfg
}

func manifestPath(req config.Request) string {
	if req.ManifestPath != "" {
		return req.ManifestPath
	}
	return filepath.Join(req.ScriptsDir, "manifest.txt")
}
