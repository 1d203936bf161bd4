package install

import (
	"fmt"
	"strings"

	"github.com/sqlsweden/sqlZetup/internal/config"
	"github.com/sqlsweden/sqlZetup/internal/credentials"
)

// MaxTempDBFiles caps the tempdb data file count regardless of core count.
const MaxTempDBFiles = 8

// TempDBFileCount returns the tempdb data file count for a host with the
// given number of logical cores: min(cores, 8). Fixed heuristic, not tunable.
func TempDBFileCount(cores int) int {
	if cores < 1 {
		return 1
	}
	if cores > MaxTempDBFiles {
		return MaxTempDBFiles
	}
	return cores
}

// Arguments is the fully assembled parameter set for one unattended setup
// invocation. It is built once from the validated request and the credential
// bundle; Build produces the real argument vector, Redacted the loggable one.
type Arguments struct {
	request     config.Request
	bundle      *credentials.Bundle
	tempDBFiles int
}

// NewArguments assembles the setup parameter set.
func NewArguments(req config.Request, bundle *credentials.Bundle, cores int) *Arguments {
	return &Arguments{
		request:     req,
		bundle:      bundle,
		tempDBFiles: TempDBFileCount(cores),
	}
}

// TempDBFiles returns the computed tempdb data file count.
func (a *Arguments) TempDBFiles() int { return a.tempDBFiles }

// Build returns the argument vector handed to the setup process. This is the
// only place secrets are written out; nothing built here may be logged.
func (a *Arguments) Build() []string {
	return a.build(false)
}

// Redacted returns the argument vector with every secret masked, for logs
// and debug output at any verbosity.
func (a *Arguments) Redacted() []string {
	return a.build(true)
}

func (a *Arguments) build(redact bool) []string {
	req := a.request

	secret := func(s credentials.Secret) string {
		if redact {
			return "********"
		}
		return s.Value()
	}

	args := []string{
		"/Q",
		"/ACTION=Install",
		"/IACCEPTSQLSERVERLICENSETERMS",
		"/FEATURES=SQLENGINE",
		fmt.Sprintf("/INSTANCENAME=%s", req.InstanceName),
		fmt.Sprintf("/SQLCOLLATION=%s", req.Collation),
		fmt.Sprintf("/SQLSVCACCOUNT=%s", req.EngineAccount),
		fmt.Sprintf("/SQLSVCPASSWORD=%s", secret(a.bundle.EnginePassword)),
		fmt.Sprintf("/AGTSVCACCOUNT=%s", req.AgentAccount),
		fmt.Sprintf("/AGTSVCPASSWORD=%s", secret(a.bundle.AgentPassword)),
		"/AGTSVCSTARTUPTYPE=Automatic",
		"/SECURITYMODE=SQL",
		fmt.Sprintf("/SAPWD=%s", secret(a.bundle.SAPassword)),
		fmt.Sprintf("/SQLSYSADMINACCOUNTS=%s", req.SysadminGroup),
		fmt.Sprintf("/SQLUSERDBDIR=%s", req.DataDir),
		fmt.Sprintf("/SQLUSERDBLOGDIR=%s", req.LogDir),
		fmt.Sprintf("/SQLBACKUPDIR=%s", req.BackupDir),
		fmt.Sprintf("/SQLTEMPDBDIR=%s", req.TempDBDataDir),
		fmt.Sprintf("/SQLTEMPDBLOGDIR=%s", req.TempDBLogDir),
		fmt.Sprintf("/SQLTEMPDBFILECOUNT=%d", a.tempDBFiles),
		fmt.Sprintf("/SQLTEMPDBFILESIZE=%d", req.TempDBDataFileSizeMB),
		fmt.Sprintf("/SQLTEMPDBLOGFILESIZE=%d", req.TempDBLogFileSizeMB),
		"/SQLSVCINSTANTFILEINIT=True",
		"/TCPENABLED=1",
		"/NPENABLED=0",
		"/BROWSERSVCSTARTUPTYPE=Automatic",
	}

	if req.LicensedEdition() {
		key := req.ProductKey
		if redact {
			key = "********"
		}
		args = append(args, fmt.Sprintf("/PID=%s", key))
	}

	if strings.TrimSpace(req.UpdateSourcePath) != "" {
		args = append(args,
			"/UPDATEENABLED=True",
			fmt.Sprintf("/UPDATESOURCE=%s", req.UpdateSourcePath))
	} else {
		args = append(args, "/UPDATEENABLED=False")
	}

	return args
}
