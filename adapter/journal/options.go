package journal

import "os"

// WithFileMode sets the permissions of the journal datafile.
func WithFileMode(mode os.FileMode) Option {
	return func(j *Journal) {
		j.fileMode = mode
	}
}

// Option configures the journal through the functional options pattern.
type Option func(*Journal)
