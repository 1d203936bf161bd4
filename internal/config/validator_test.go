package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

func validRequest() Request {
	return Request{
		InstanceName:         "MSSQLSERVER",
		Version:              Version2022,
		Edition:              EditionDeveloper,
		MediaPath:            `C:\media\SQLServer2022-x64-ENU-Dev.iso`,
		DataDir:              `E:\SQLData`,
		LogDir:               `F:\SQLLog`,
		BackupDir:            `G:\SQLBackup`,
		TempDBDataDir:        `H:\SQLTempDB`,
		TempDBLogDir:         `H:\SQLTempDBLog`,
		TempDBDataFileSizeMB: 512,
		TempDBLogFileSizeMB:  64,
		Collation:            "Finnish_Swedish_CI_AS",
		Port:                 1433,
		EngineAccount:        `CORP\svc-sql-engine`,
		AgentAccount:         `CORP\svc-sql-agent`,
		SysadminGroup:        `CORP\SQL Admins`,
		ScriptsDir:           `C:\sqlzetup\scripts`,
		CollationFile:        `C:\sqlzetup\collations.txt`,
	}
}

func TestValidateRequestHappyPath(t *testing.T) {
	t.Parallel()

	req := validRequest()
	require.NoError(t, ValidateRequest(&req))
	require.Equal(t, AllocUnitFail, req.AllocUnitPolicy)
}

func TestValidateRequestProductKeyRequiredForLicensedTiers(t *testing.T) {
	t.Parallel()

	for _, edition := range []string{EditionStandard, EditionEnterprise} {
		req := validRequest()
		req.Edition = edition
		req.ProductKey = ""

		err := ValidateRequest(&req)
		require.Error(t, err, "edition %s must require a product key", edition)

		var verr *zetuperrors.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Equal(t, "product_key", verr.Field)

		req.ProductKey = "ABCDE-ABCDE-ABCDE-ABCDE-ABCDE"
		require.NoError(t, ValidateRequest(&req))
	}
}

func TestValidateRequestDeveloperNeedsNoKey(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.Edition = EditionDeveloper
	req.ProductKey = ""
	require.NoError(t, ValidateRequest(&req))
}

func TestValidateRequestRejectsUnknownVersion(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.Version = "2014"
	require.Error(t, ValidateRequest(&req))
}

func TestValidateRequestTempDBSizeFloors(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.TempDBDataFileSizeMB = 511
	require.Error(t, ValidateRequest(&req))

	req = validRequest()
	req.TempDBLogFileSizeMB = 63
	require.Error(t, ValidateRequest(&req))
}

func TestValidateRequestInstanceName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		valid bool
	}{
		{"MSSQLSERVER", true},
		{"INST_01", true},
		{"inst$prod", true},
		{"1BADSTART", false},
		{"WAY_TOO_LONG_INSTANCE", false},
		{"BAD-DASH", false},
		{"", false},
	}

	for _, tc := range cases {
		req := validRequest()
		req.InstanceName = tc.name
		err := ValidateRequest(&req)
		if tc.valid {
			require.NoError(t, err, "instance name %q", tc.name)
		} else {
			require.Error(t, err, "instance name %q", tc.name)
		}
	}
}

func TestValidateRequestSSMSNeedsInstallerPath(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.InstallSSMS = true
	req.SSMSInstaller = ""
	require.Error(t, ValidateRequest(&req))

	req.SSMSInstaller = `C:\media\SSMS-Setup-ENU.exe`
	require.NoError(t, ValidateRequest(&req))
}

func TestSharedServiceAccount(t *testing.T) {
	t.Parallel()

	req := validRequest()
	require.False(t, req.SharedServiceAccount())

	req.AgentAccount = req.EngineAccount
	require.True(t, req.SharedServiceAccount())
}
