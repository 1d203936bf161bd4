package configure

import (
	"fmt"
	"strings"
)

// Params carries the request-derived values the operation batches need.
type Params struct {
	Port        int
	Cores       int
	TempDBFiles int

	TempDBDataDir        string
	TempDBDataFileSizeMB int
	TempDBLogFileSizeMB  int
}

// Operation is one idempotent configuration command. Critical operations
// abort the configuration phase on failure; advisory ones only warn (a host
// may not expose a power plan, xp_cmdshell may be disabled).
type Operation struct {
	ID       string
	Name     string
	Advisory bool
	Database string
	Batch    string
}

// maxDOP follows the usual guidance: the lesser of the core count and 8.
func maxDOP(cores int) int {
	if cores < 1 {
		return 1
	}
	if cores > 8 {
		return 8
	}
	return cores
}

// Operations returns the fixed ordered configuration sequence. Each batch is
// safe to re-run; the sequence as a whole is the post-install contract.
func Operations(p Params) []Operation {
	return []Operation{
		{
			ID:   "advanced_options",
			Name: "enable advanced configuration options",
			Batch: `EXEC sp_configure 'show advanced options', 1;
RECONFIGURE;`,
		},
		{
			ID:       "cost_threshold",
			Name:     "raise cost threshold for parallelism",
			Advisory: true,
			Batch: `EXEC sp_configure 'cost threshold for parallelism', 50;
RECONFIGURE;`,
		},
		{
			ID:       "recovery_interval",
			Name:     "set recovery interval",
			Advisory: true,
			Batch: `EXEC sp_configure 'recovery interval (min)', 60;
RECONFIGURE;`,
		},
		{
			ID:       "trace_flag_3226",
			Name:     "suppress successful-backup log noise (trace flag 3226)",
			Advisory: true,
			Batch:    `DBCC TRACEON(3226, -1);`,
		},
		{
			ID:   "max_server_memory",
			Name: "cap max server memory",
			// Reserve the larger of 4 GB and a fifth of physical memory for
			// the OS.
			Batch: `DECLARE @physMB bigint = (SELECT total_physical_memory_kb / 1024 FROM sys.dm_os_sys_memory);
DECLARE @reserveMB bigint = CASE WHEN @physMB / 5 > 4096 THEN @physMB / 5 ELSE 4096 END;
DECLARE @maxMB bigint = @physMB - @reserveMB;
EXEC sp_configure 'max server memory (MB)', @maxMB;
RECONFIGURE;`,
		},
		{
			ID:       "max_degree_of_parallelism",
			Name:     "set max degree of parallelism",
			Advisory: true,
			Batch: fmt.Sprintf(`EXEC sp_configure 'max degree of parallelism', %d;
RECONFIGURE;`, maxDOP(p.Cores)),
		},
		{
			ID:       "power_plan",
			Name:     "activate high performance power plan",
			Advisory: true,
			Batch:    `EXEC xp_cmdshell 'powercfg /setactive 8c5e7fda-e8bf-4a96-9a85-a6e23a8c635c', no_output;`,
		},
		{
			ID:       "errorlog_retention",
			Name:     "keep 30 rotated error logs",
			Advisory: true,
			Batch: `EXEC xp_instance_regwrite N'HKEY_LOCAL_MACHINE',
    N'Software\Microsoft\MSSQLServer\MSSQLServer',
    N'NumErrorLogs', REG_DWORD, 30;`,
		},
		{
			ID:       "system_db_filegrowth",
			Name:     "set fixed file growth on system databases",
			Advisory: true,
			Batch:    systemDatabaseGrowthBatch(),
		},
		{
			ID:       "job_history_retention",
			Name:     "extend agent job history retention",
			Advisory: true,
			Database: "msdb",
			Batch: `EXEC msdb.dbo.sp_set_sqlagent_properties
    @jobhistory_max_rows = 25000,
    @jobhistory_max_rows_per_job = 500;`,
		},
		{
			ID:   "tcp_port",
			Name: "pin the static TCP port",
			Batch: fmt.Sprintf(`EXEC xp_instance_regwrite N'HKEY_LOCAL_MACHINE',
    N'Software\Microsoft\MSSQLServer\MSSQLServer\SuperSocketNetLib\Tcp\IPAll',
    N'TcpPort', REG_SZ, N'%d';
EXEC xp_instance_regwrite N'HKEY_LOCAL_MACHINE',
    N'Software\Microsoft\MSSQLServer\MSSQLServer\SuperSocketNetLib\Tcp\IPAll',
    N'TcpDynamicPorts', REG_SZ, N'';`, p.Port),
		},
		{
			ID:    "tempdb_geometry",
			Name:  "size tempdb for the detected core count",
			Batch: tempdbGeometryBatch(p),
		},
	}
}

func systemDatabaseGrowthBatch() string {
	var b strings.Builder
	for _, db := range []struct{ name, data, log string }{
		{"master", "master", "mastlog"},
		{"msdb", "MSDBData", "MSDBLog"},
		{"model", "modeldev", "modellog"},
	} {
		fmt.Fprintf(&b, "ALTER DATABASE [%s] MODIFY FILE (NAME = N'%s', FILEGROWTH = 64MB);\n", db.name, db.data)
		fmt.Fprintf(&b, "ALTER DATABASE [%s] MODIFY FILE (NAME = N'%s', FILEGROWTH = 64MB);\n", db.name, db.log)
	}
	return b.String()
}

// tempdbGeometryBatch resizes the primary tempdb files and adds data files
// until the count matches min(cores, 8). ADD FILE for an existing name fails,
// so additions are guarded on sys.master_files.
func tempdbGeometryBatch(p Params) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ALTER DATABASE [tempdb] MODIFY FILE (NAME = N'tempdev', SIZE = %dMB, FILEGROWTH = 64MB);\n",
		p.TempDBDataFileSizeMB)
	fmt.Fprintf(&b, "ALTER DATABASE [tempdb] MODIFY FILE (NAME = N'templog', SIZE = %dMB, FILEGROWTH = 64MB);\n",
		p.TempDBLogFileSizeMB)

	for i := 2; i <= p.TempDBFiles; i++ {
		name := fmt.Sprintf("temp%d", i)
		fmt.Fprintf(&b, `IF NOT EXISTS (SELECT 1 FROM sys.master_files WHERE database_id = DB_ID('tempdb') AND name = N'%s')
    ALTER DATABASE [tempdb] ADD FILE (NAME = N'%s', FILENAME = N'%s\%s.ndf', SIZE = %dMB, FILEGROWTH = 64MB);
ELSE
    ALTER DATABASE [tempdb] MODIFY FILE (NAME = N'%s', SIZE = %dMB, FILEGROWTH = 64MB);
`, name, name, p.TempDBDataDir, name, p.TempDBDataFileSizeMB, name, p.TempDBDataFileSizeMB)
	}

	return b.String()
}
