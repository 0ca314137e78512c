package options

const (
	// Specifies the default base directory where pynosql will store its
	// data files. If no other directory is specified during initialization,
	// this path is used.
	DefaultStorageDir = "/var/lib/pynosql"

	// Defines the default interval between automatic vacuum runs. By
	// default the background vacuum is disabled; callers opt in with
	// WithAutoVacuumInterval.
	DefaultAutoVacuumInterval = 0
)

// Holds the default configuration settings for a pynosql instance.
var defaultOptions = Options{
	StorageDir:         DefaultStorageDir,
	AutoVacuumInterval: DefaultAutoVacuumInterval,
}

func NewDefaultOptions() Options {
	return defaultOptions
}
