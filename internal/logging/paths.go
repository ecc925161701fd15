package logging

import (
	"path/filepath"
)

// StateDirName is the reserved per-project state directory.
// The watcher ignores everything under it; the index DB, logs, and the
// indexing lock all live here.
const StateDirName = ".loreindex"

// LogDir returns the log directory for a project.
func LogDir(projectDir string) string {
	return filepath.Join(projectDir, StateDirName, "logs")
}

// LogPath returns the log file path for a project.
func LogPath(projectDir string) string {
	return filepath.Join(LogDir(projectDir), "loreindex.log")
}
