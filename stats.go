package exa

// Stats is a snapshot of a Screen's counters.
type Stats struct {
	Mappings MappingStats
	BoCache  BoCacheStats
	Shaders  ShaderStats

	// Flushes counts non-empty batch flushes.
	Flushes uint64
	// Submissions counts hardware submissions, failed ones included.
	Submissions uint64
	// SubmitFailures counts submissions rejected by the device.
	SubmitFailures uint64
	// AtlasFallbacks counts atlas blits retried as shader blits.
	AtlasFallbacks uint64
	// Waits counts blocking waits for GPU completion.
	Waits uint64
	// ScanoutFlushes counts manual-update panel flushes.
	ScanoutFlushes uint64
	// VideoBlits counts successful video blits.
	VideoBlits uint64
}

// MappingStats describes the mapping cache.
type MappingStats struct {
	// Live is the number of LRU-tracked mappings; the scanout is not counted.
	Live      int
	Max       int
	Scanout   bool
	Deferred  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Failures  uint64
}

// BoCacheStats describes the allocation cache.
type BoCacheStats struct {
	Entries   int
	Bytes     int
	Budget    int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// ShaderStats describes the composite shader cache.
type ShaderStats struct {
	Loaded    int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// screenStats are the counters owned by the batch engines.
type screenStats struct {
	flushes        uint64
	submissions    uint64
	submitFailures uint64
	atlasFallbacks uint64
	waits          uint64
	scanoutFlushes uint64
	videoBlits     uint64
}

// Stats returns a snapshot of the screen's counters.
func (s *Screen) Stats() Stats {
	sh := s.shaders.Stats()
	return Stats{
		Mappings: MappingStats{
			Live:      s.maps.count(),
			Max:       s.maps.max,
			Scanout:   s.maps.slot != nil,
			Deferred:  len(s.maps.deferred),
			Hits:      s.maps.hits,
			Misses:    s.maps.misses,
			Evictions: s.maps.evictions,
			Failures:  s.maps.failures,
		},
		BoCache: BoCacheStats{
			Entries:   s.bos.len(),
			Bytes:     s.bos.bytes,
			Budget:    s.bos.budget,
			Hits:      s.bos.hits,
			Misses:    s.bos.misses,
			Evictions: s.bos.evictions,
		},
		Shaders: ShaderStats{
			Loaded:    sh.Len,
			Hits:      sh.Hits,
			Misses:    sh.Misses,
			Evictions: sh.Evictions,
		},
		Flushes:        s.stats.flushes,
		Submissions:    s.stats.submissions,
		SubmitFailures: s.stats.submitFailures,
		AtlasFallbacks: s.stats.atlasFallbacks,
		Waits:          s.stats.waits,
		ScanoutFlushes: s.stats.scanoutFlushes,
		VideoBlits:     s.stats.videoBlits,
	}
}
