package config

// Supported SQL Server releases. Setup media older or newer than these is not
// handled by the unattended parameter set this tool assembles.
const (
	Version2016 = "2016"
	Version2017 = "2017"
	Version2019 = "2019"
	Version2022 = "2022"
)

// Edition tiers. Developer is the only tier that installs without a product key.
const (
	EditionDeveloper  = "Developer"
	EditionStandard   = "Standard"
	EditionEnterprise = "Enterprise"
)

// AllocUnitPolicy values control what a non-interactive run does when a storage
// volume does not use the required 64 KiB allocation unit size.
const (
	AllocUnitWarn = "warn"
	AllocUnitFail = "fail"
)

// Request is the immutable set of choices for one installation run. It is
// built once from flags and the optional answer file, validated, and then
// passed by value through the pipeline. Secrets are never part of it; they
// live in a credentials.Bundle collected separately.
type Request struct {
	InstanceName string `yaml:"instance_name" validate:"required,instance_name"`
	Version      string `yaml:"version" validate:"required,oneof=2016 2017 2019 2022"`
	Edition      string `yaml:"edition" validate:"required,oneof=Developer Standard Enterprise"`
	ProductKey   string `yaml:"product_key,omitempty"`

	MediaPath        string `yaml:"media" validate:"required"`
	UpdateSourcePath string `yaml:"update_source,omitempty"`

	DataDir       string `yaml:"data_dir" validate:"required"`
	LogDir        string `yaml:"log_dir" validate:"required"`
	BackupDir     string `yaml:"backup_dir" validate:"required"`
	TempDBDataDir string `yaml:"tempdb_data_dir" validate:"required"`
	TempDBLogDir  string `yaml:"tempdb_log_dir" validate:"required"`

	// Tempdb file sizes are in MB. The minimums match what the maintenance
	// jobs assume about tempdb headroom.
	TempDBDataFileSizeMB int `yaml:"tempdb_data_file_size_mb" validate:"required,min=512"`
	TempDBLogFileSizeMB  int `yaml:"tempdb_log_file_size_mb" validate:"required,min=64"`

	Collation     string `yaml:"collation" validate:"required"`
	Port          int    `yaml:"port" validate:"required,min=1,max=65535"`
	EngineAccount string `yaml:"engine_account" validate:"required"`
	AgentAccount  string `yaml:"agent_account" validate:"required"`
	SysadminGroup string `yaml:"sysadmin_group" validate:"required"`

	ScriptsDir     string `yaml:"scripts_dir" validate:"required"`
	ManifestPath   string `yaml:"manifest,omitempty"`
	CollationFile  string `yaml:"collation_file" validate:"required"`
	ScriptsRepoURL string `yaml:"scripts_repo,omitempty"`

	InstallSSMS   bool   `yaml:"install_ssms,omitempty"`
	SSMSInstaller string `yaml:"ssms_installer,omitempty"`

	AllocUnitPolicy string `yaml:"alloc_unit_policy,omitempty" validate:"omitempty,oneof=warn fail"`

	NonInteractive bool `yaml:"-"`
	Debug          bool `yaml:"-"`
}

// StorageDirs returns every directory whose volume must pass validation,
// in a stable order.
func (r Request) StorageDirs() []string {
	return []string{r.DataDir, r.LogDir, r.BackupDir, r.TempDBDataDir, r.TempDBLogDir}
}

// LicensedEdition reports whether the chosen edition requires a product key.
func (r Request) LicensedEdition() bool {
	return r.Edition != EditionDeveloper
}

// SharedServiceAccount reports whether the engine and agent services run
// under the same identity, in which case only one service password is
// collected.
func (r Request) SharedServiceAccount() bool {
	return r.EngineAccount == r.AgentAccount
}
