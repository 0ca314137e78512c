// Package options provides data structures and functions for configuring
// a pynosql instance. It defines the parameters that control storage
// location, background vacuum behavior, and logging.
package options

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Defines the configuration parameters for a pynosql instance.
type Options struct {
	// Specifies the base directory where the log file, index file, and
	// deletion index file are stored.
	//
	// Default: "/var/lib/pynosql"
	StorageDir string `json:"storageDir"`

	// Defines how often the background vacuum runs to reclaim space held
	// by tombstoned records. Zero disables the background vacuum entirely;
	// callers may still invoke Vacuum manually.
	//
	// Default: 0 (disabled)
	AutoVacuumInterval time.Duration `json:"autoVacuumInterval"`

	// Logger receives structured diagnostics for storage, index, and
	// vacuum operations. When unset, pynosql.New builds a production logger
	// tagged with the service name.
	Logger *zap.SugaredLogger `json:"-"`
}

// OptionFunc is a function type that modifies a pynosql instance's configuration.
type OptionFunc func(*Options)

// Applies a predefined set of default configuration values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.StorageDir = opts.StorageDir
		o.AutoVacuumInterval = opts.AutoVacuumInterval
	}
}

// Sets the directory pynosql uses to store the log, index, and deletion
// index files.
func WithStorageDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.StorageDir = directory
		}
	}
}

// Sets the interval at which pynosql runs its background vacuum. A
// negative interval is ignored; zero disables the background vacuum.
func WithAutoVacuumInterval(interval time.Duration) OptionFunc {
	return func(o *Options) {
		if interval >= 0 {
			o.AutoVacuumInterval = interval
		}
	}
}

// Sets the logger used for structured diagnostics.
func WithLogger(logger *zap.SugaredLogger) OptionFunc {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}
