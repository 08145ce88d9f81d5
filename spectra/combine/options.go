package combine

type config struct {
	galaxyRedshift float64
}

// Option configures a Combiner.
type Option func(*config)

func defaultConfig() config {
	return config{galaxyRedshift: 0}
}

// WithGalaxyRedshift de-redshifts the galaxy spectrum by z before it is
// restricted to the grid bounds. Values at or below -1 are ignored.
func WithGalaxyRedshift(z float64) Option {
	return func(cfg *config) {
		if z > -1 {
			cfg.galaxyRedshift = z
		}
	}
}

func applyOptions(opts ...Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
