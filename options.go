package exa

// ScreenOption configures a Screen during creation.
//
// Example:
//
//	// Reference limits, continuously refreshed display
//	s, err := exa.NewScreen(srv, alloc)
//
//	// Manual-update panel with a smaller mapping budget
//	cfg := exa.DefaultConfig()
//	cfg.MaxMappings = 16
//	s, err := exa.NewScreen(srv, alloc, exa.WithConfig(cfg), exa.WithDisplay(panel))
type ScreenOption func(*screenOptions)

// screenOptions holds optional configuration for Screen creation.
type screenOptions struct {
	config  Config
	display Display
}

// defaultScreenOptions returns the default screen options.
func defaultScreenOptions() screenOptions {
	return screenOptions{
		config:  DefaultConfig(),
		display: autoDisplay{},
	}
}

// WithConfig replaces the default limits.
// The configuration is validated by NewScreen.
func WithConfig(cfg Config) ScreenOption {
	return func(o *screenOptions) {
		o.config = cfg
	}
}

// WithDisplay sets the host display used for scanout flushes.
// Without it the display is assumed to refresh continuously.
func WithDisplay(d Display) ScreenOption {
	return func(o *screenOptions) {
		if d != nil {
			o.display = d
		}
	}
}
