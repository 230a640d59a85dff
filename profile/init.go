package profile

// Config supplies the profiler settings: the mode to run, the directory
// profiles are written to, and whether startup messages are suppressed.
type Config func() (mode, path string, quiet bool)

// Start launches the profiler described by the Config and returns a handle
// whose Stop flushes the profile.
//
// Without the pprof build tag, or with an empty mode, Start returns a
// no-op handle. Start and Stop are always safe to call.
func (c Config) Start() interface{ Stop() } {
	mode, path, quiet := c()

	if mode == "" {
		return ignore{}
	}

	return start(mode, path, quiet)
}

// WithMode selects the profiler mode; see [Modes] for the valid names.
func WithMode(mode string) func(Config) Config {
	return func(c Config) Config {
		_, path, quiet := c()

		return func() (string, string, bool) {
			return mode, path, quiet
		}
	}
}

// WithPath sets the directory profile files are written to.
func WithPath(path string) func(Config) Config {
	return func(c Config) Config {
		mode, _, quiet := c()

		return func() (string, string, bool) {
			return mode, path, quiet
		}
	}
}

// WithQuiet controls whether the profiler logs its startup message.
func WithQuiet(quiet bool) func(Config) Config {
	return func(c Config) Config {
		mode, path, _ := c()

		return func() (string, string, bool) {
			return mode, path, quiet
		}
	}
}

type ignore struct{}

func (ignore) Stop() {}
