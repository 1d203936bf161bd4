// Package report renders the final run summary shown after an installation
// attempt, including post-install pointers an operator needs on day one.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sqlsweden/sqlZetup/internal/config"
	"github.com/sqlsweden/sqlZetup/internal/model"
)

// buildDirs maps a release year to the versioned directory SQL Server setup
// creates under Program Files.
var buildDirs = map[string]string{
	config.Version2016: "MSSQL13",
	config.Version2017: "MSSQL14",
	config.Version2019: "MSSQL15",
	config.Version2022: "MSSQL16",
}

// ErrorLogPath returns the expected ERRORLOG location for the installed
// instance, or "" for an unknown version.
func ErrorLogPath(version, instanceName string) string {
	dir, ok := buildDirs[version]
	if !ok {
		return ""
	}
	return fmt.Sprintf(`C:\Program Files\Microsoft SQL Server\%s.%s\MSSQL\Log\ERRORLOG`, dir, instanceName)
}

// AntivirusExclusions lists the paths and processes that should be excluded
// from on-access scanning on a database host.
func AntivirusExclusions(req config.Request) []string {
	out := append([]string(nil), req.StorageDirs()...)
	dir, ok := buildDirs[req.Version]
	if ok {
		out = append(out,
			fmt.Sprintf(`C:\Program Files\Microsoft SQL Server\%s.%s\MSSQL\Binn\sqlservr.exe`, dir, req.InstanceName))
	}
	return out
}

// maintenanceCadence is the recommended schedule for the maintenance jobs the
// script phase installs.
var maintenanceCadence = []struct {
	job      string
	schedule string
}{
	{"DatabaseBackup - FULL", "daily 03:00"},
	{"DatabaseBackup - LOG", "every 15 minutes"},
	{"DatabaseIntegrityCheck", "weekly, Saturday 05:00"},
	{"IndexOptimize", "weekly, Sunday 05:00"},
	{"Purge job history", "weekly, Sunday 07:00"},
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// summaryRound keeps the reported total time readable.
const summaryRound = 100 * time.Millisecond

func statusLabel(s string) string {
	switch s {
	case model.StatusSuccess:
		return successStyle.Render("ok")
	case model.StatusSkipped:
		return dimStyle.Render("skipped")
	case model.StatusWarning:
		return warnStyle.Render("warning")
	case model.StatusFailed:
		return failStyle.Render("FAILED")
	default:
		return s
	}
}

// Render produces the full multi-section summary for a finished run.
func Render(summary model.RunSummary, req config.Request) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("sqlZetup run for instance %s (SQL Server %s %s)",
		req.InstanceName, req.Version, req.Edition)))
	b.WriteString("\n\n")

	for _, r := range summary.Results {
		line := fmt.Sprintf("  %-24s %s", r.StepID, statusLabel(r.Status))
		if r.Message != "" {
			line += dimStyle.Render("  " + r.Message)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	if summary.Failed() {
		b.WriteString(failStyle.Render("Installation failed.") + "\n")
	} else if len(summary.Warnings()) > 0 {
		b.WriteString(warnStyle.Render("Installation finished with warnings.") + "\n")
	} else {
		b.WriteString(successStyle.Render("Installation finished.") + "\n")
	}

	if summary.Reboot.NeedsReboot() {
		b.WriteString(warnStyle.Render("A reboot is required before the instance is usable.") + "\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("Total time: %s", summary.Duration.Round(summaryRound))) + "\n")

	if summary.Failed() {
		return b.String()
	}

	if path := ErrorLogPath(req.Version, req.InstanceName); path != "" {
		b.WriteString("\n" + titleStyle.Render("Error log") + "\n")
		b.WriteString("  " + path + "\n")
	}

	b.WriteString("\n" + titleStyle.Render("Antivirus exclusions to configure") + "\n")
	for _, p := range AntivirusExclusions(req) {
		b.WriteString("  " + p + "\n")
	}

	b.WriteString("\n" + titleStyle.Render("Maintenance job cadence") + "\n")
	for _, m := range maintenanceCadence {
		b.WriteString(fmt.Sprintf("  %-28s %s\n", m.job, m.schedule))
	}

	return b.String()
}
