package sift

// defaultRate is the target false-positive rate used when WithRate is not
// given. Matches the historical default of the persisted filters.
const defaultRate = 0.01

// BuildOption is a functional option for configuring builds.
type BuildOption func(*buildConfig)

type buildConfig struct {
	rate       float64
	mode       Mode
	exactItems bool
}

func defaultBuildConfig() *buildConfig {
	return &buildConfig{
		rate: defaultRate,
		mode: ModeBitSet,
	}
}

// WithRate sets the target false-positive rate. Must be in (0, 1);
// Build rejects anything else with ErrInvalidRate.
func WithRate(p float64) BuildOption {
	return func(c *buildConfig) {
		c.rate = p
	}
}

// WithMode selects the construction strategy. Default is ModeBitSet.
//
// ModeXORAccum implies WithExactItems: the accumulation probe is not
// trusted to keep members true on its own.
func WithMode(m Mode) BuildOption {
	return func(c *buildConfig) {
		c.mode = m
	}
}

// WithExactItems retains the deduplicated build set inside the filter.
// Contains then checks the exact set before probing, so every real member
// reads true regardless of probe outcome, at the cost of storing the items
// (and serializing them in the portable encoding).
func WithExactItems() BuildOption {
	return func(c *buildConfig) {
		c.exactItems = true
	}
}
