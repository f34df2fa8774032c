package conventions

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultDataDir is the default opsdesk data directory name (relative to home).
	DefaultDataDir = ".opsdesk"
	// DBFile is the default database filename inside the data dir.
	DBFile = "opsdesk.db"
	// TransformsFile is the default transform definitions filename inside the data dir.
	TransformsFile = "transforms.yaml"
	// FilesDir is the subdirectory for operator staged files.
	FilesDir = "files"
	// PayloadsDir is the subdirectory for payload type templates and load outputs.
	PayloadsDir = "payloads"
	// DownloadsDir is the operation files subdirectory for files pulled from hosts.
	DownloadsDir = "downloads"
	// ScreenshotsDir is the per host downloads subdirectory for screen captures.
	ScreenshotsDir = "screenshots"

	// Payload type layout.

	// PayloadTemplateDir is the payload type subdirectory copied into every load working dir.
	PayloadTemplateDir = "payload"
	// CommandsDir is the payload type subdirectory with one file per command.
	CommandsDir = "commands"
	// OperationsDir is the subdirectory for per operation outputs.
	OperationsDir = "operations"

	// LoadTimeFormat is the UTC timestamp layout of load outputs.
	LoadTimeFormat = "2006-01-02-15:04:05"
)

// DBPath returns the default database path.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// TransformsPath returns the default transform definitions path.
func TransformsPath(dataDir string) string {
	return filepath.Join(dataDir, TransformsFile)
}

// OperationFilesDir returns the directory where files staged for an operation live.
func OperationFilesDir(dataDir, operation string) string {
	return filepath.Join(dataDir, FilesDir, operation)
}

// OperationDownloadsDir returns the directory where files pulled from an operation hosts live.
func OperationDownloadsDir(dataDir, operation string) string {
	return filepath.Join(OperationFilesDir(dataDir, operation), DownloadsDir)
}

// HostScreenshotsDir returns the directory of the screen captures of a host.
func HostScreenshotsDir(dataDir, operation, host string) string {
	return filepath.Join(OperationDownloadsDir(dataDir, operation), host, ScreenshotsDir)
}

// IsDownload tells if a file path is a download of the operation.
func IsDownload(path, operation string) bool {
	return strings.Contains(filepath.ToSlash(path), "/"+operation+"/"+DownloadsDir+"/")
}

// IsScreenshot tells if a file path is a screen capture.
func IsScreenshot(path string) bool {
	return strings.Contains(filepath.ToSlash(path), "/"+ScreenshotsDir+"/")
}

// PayloadTypeTemplateDir returns the template directory of a payload type.
func PayloadTypeTemplateDir(dataDir, payloadType string) string {
	return filepath.Join(dataDir, PayloadsDir, payloadType, PayloadTemplateDir)
}

// CommandPath returns the path of a payload type command file.
func CommandPath(dataDir, payloadType, cmd string) string {
	return filepath.Join(dataDir, PayloadsDir, payloadType, CommandsDir, cmd)
}

// OperationPayloadsDir returns the directory for an operation payload outputs.
func OperationPayloadsDir(dataDir, operation string) string {
	return filepath.Join(dataDir, PayloadsDir, OperationsDir, operation)
}

// LoadWorkingDir returns a load chain working directory.
func LoadWorkingDir(dataDir, operation, id string) string {
	return filepath.Join(OperationPayloadsDir(dataDir, operation), id)
}

// LoadOutputPath returns the stable path a load chain output is kept at.
func LoadOutputPath(dataDir, operation string, t time.Time) string {
	return filepath.Join(OperationPayloadsDir(dataDir, operation), "load-"+t.UTC().Format(LoadTimeFormat))
}
