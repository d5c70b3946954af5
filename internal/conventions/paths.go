package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default mgit data directory name (relative to home).
	DefaultDataDir = ".mgit"
	// StateDBFile is the filename of the SQLite state cache.
	StateDBFile = "state.db"
)

// DataDir returns the mgit data directory under the given home directory.
func DataDir(home string) string {
	return filepath.Join(home, DefaultDataDir)
}

// StateDBPath returns the default path of the SQLite state cache.
func StateDBPath(home string) string {
	return filepath.Join(DataDir(home), StateDBFile)
}
