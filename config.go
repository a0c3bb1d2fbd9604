package exa

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Default limits. Tests and hardware descriptors depend on these values.
const (
	// DefaultMaxMappings is the number of LRU-tracked GPU mappings.
	DefaultMaxMappings = 32

	// DefaultBoCacheBytes is the byte budget of the allocation cache (4 MiB).
	DefaultBoCacheBytes = 4 << 20

	// AllocGranularity is the rounding unit of allocation sizes.
	AllocGranularity = 4096

	// DefaultSolidBatchRects is the solid fill batch capacity.
	DefaultSolidBatchRects = 128

	// DefaultCopyBatchRects is the copy batch capacity.
	DefaultCopyBatchRects = 51

	// DefaultCompositeBatchRects is the composite batch capacity.
	DefaultCompositeBatchRects = 51

	// DefaultShaderCacheSize is the soft limit of loaded composite shaders.
	DefaultShaderCacheSize = 32

	// DefaultPitchAlign is the pixmap row alignment in bytes.
	DefaultPitchAlign = 32 * 4

	// DefaultChipset is an OMAP3430-class SGX530.
	DefaultChipset = 0x3430
)

// minMappings covers the largest submission: a video blit maps the
// destination and three planes.
const minMappings = 4

// Config holds the tunables of a Screen.
// Zero values are not defaults; start from DefaultConfig.
type Config struct {
	// MaxMappings bounds the LRU-tracked mappings. The scanout mapping
	// is not counted.
	MaxMappings int `toml:"max_mappings"`

	// BoCacheBytes bounds the resident bytes of the allocation cache.
	// Zero disables recycling.
	BoCacheBytes int `toml:"bo_cache_bytes"`

	SolidBatchRects     int `toml:"solid_batch_rects"`
	CopyBatchRects      int `toml:"copy_batch_rects"`
	CompositeBatchRects int `toml:"composite_batch_rects"`

	// ShaderCacheSize is the soft limit of cached composite shaders.
	ShaderCacheSize int `toml:"shader_cache_size"`

	// PitchAlign is the row alignment of pixmaps created by the screen.
	PitchAlign int `toml:"pitch_align"`

	// Chipset selects the maximum pixmap size and the video blit variant.
	Chipset uint32 `toml:"chipset"`

	// Assertions turns internal invariant violations into panics.
	Assertions bool `toml:"assertions"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		MaxMappings:         DefaultMaxMappings,
		BoCacheBytes:        DefaultBoCacheBytes,
		SolidBatchRects:     DefaultSolidBatchRects,
		CopyBatchRects:      DefaultCopyBatchRects,
		CompositeBatchRects: DefaultCompositeBatchRects,
		ShaderCacheSize:     DefaultShaderCacheSize,
		PitchAlign:          DefaultPitchAlign,
		Chipset:             DefaultChipset,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.MaxMappings < minMappings:
		return fmt.Errorf("%w: max_mappings %d < %d", ErrInvalidConfig, c.MaxMappings, minMappings)
	case c.BoCacheBytes < 0:
		return fmt.Errorf("%w: bo_cache_bytes %d < 0", ErrInvalidConfig, c.BoCacheBytes)
	case c.SolidBatchRects < 1:
		return fmt.Errorf("%w: solid_batch_rects %d < 1", ErrInvalidConfig, c.SolidBatchRects)
	case c.CopyBatchRects < 1:
		return fmt.Errorf("%w: copy_batch_rects %d < 1", ErrInvalidConfig, c.CopyBatchRects)
	case c.CompositeBatchRects < 1:
		return fmt.Errorf("%w: composite_batch_rects %d < 1", ErrInvalidConfig, c.CompositeBatchRects)
	case c.ShaderCacheSize < 0:
		return fmt.Errorf("%w: shader_cache_size %d < 0", ErrInvalidConfig, c.ShaderCacheSize)
	case c.PitchAlign < 1 || c.PitchAlign&(c.PitchAlign-1) != 0:
		return fmt.Errorf("%w: pitch_align %d is not a power of two", ErrInvalidConfig, c.PitchAlign)
	}
	return nil
}

// MaxPixmapSize returns the largest pixmap edge the chipset can address.
func (c Config) MaxPixmapSize() int {
	if c.Chipset <= 0x446F {
		return 2048
	}
	return 4096
}

// LoadConfig reads a TOML file over DefaultConfig and validates the result.
// Keys missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("exa: read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalidConfig, undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
