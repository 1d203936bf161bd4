package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// LoadAnswerFile reads a YAML answer file into the request. Flag values
// already set by the caller win over file values, so the file is decoded into
// a scratch request and only fills zero-valued fields. For booleans a false
// zero value is indistinguishable from unset, so the caller passes the yaml
// names of fields it set explicitly; those are never overwritten.
func LoadAnswerFile(path string, base *Request, explicit map[string]bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return zetuperrors.NewParseError(path, 0, err)
	}

	var fromFile Request
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return zetuperrors.NewParseError(path, extractLine(err), err)
	}

	mergeRequest(base, &fromFile, explicit)
	return nil
}

// mergeRequest copies file values into unset fields of base.
func mergeRequest(base, fromFile *Request, explicit map[string]bool) {
	setString(&base.InstanceName, fromFile.InstanceName)
	setString(&base.Version, fromFile.Version)
	setString(&base.Edition, fromFile.Edition)
	setString(&base.ProductKey, fromFile.ProductKey)
	setString(&base.MediaPath, fromFile.MediaPath)
	setString(&base.UpdateSourcePath, fromFile.UpdateSourcePath)
	setString(&base.DataDir, fromFile.DataDir)
	setString(&base.LogDir, fromFile.LogDir)
	setString(&base.BackupDir, fromFile.BackupDir)
	setString(&base.TempDBDataDir, fromFile.TempDBDataDir)
	setString(&base.TempDBLogDir, fromFile.TempDBLogDir)
	setString(&base.Collation, fromFile.Collation)
	setString(&base.EngineAccount, fromFile.EngineAccount)
	setString(&base.AgentAccount, fromFile.AgentAccount)
	setString(&base.SysadminGroup, fromFile.SysadminGroup)
	setString(&base.ScriptsDir, fromFile.ScriptsDir)
	setString(&base.ManifestPath, fromFile.ManifestPath)
	setString(&base.CollationFile, fromFile.CollationFile)
	setString(&base.ScriptsRepoURL, fromFile.ScriptsRepoURL)
	setString(&base.SSMSInstaller, fromFile.SSMSInstaller)
	setString(&base.AllocUnitPolicy, fromFile.AllocUnitPolicy)

	if base.Port == 0 {
		base.Port = fromFile.Port
	}
	if base.TempDBDataFileSizeMB == 0 {
		base.TempDBDataFileSizeMB = fromFile.TempDBDataFileSizeMB
	}
	if base.TempDBLogFileSizeMB == 0 {
		base.TempDBLogFileSizeMB = fromFile.TempDBLogFileSizeMB
	}
	if !base.InstallSSMS && !explicit["install_ssms"] {
		base.InstallSSMS = fromFile.InstallSSMS
	}
}

func setString(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
