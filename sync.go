package exa

// MarkGPUOwned records that a hardware operation wrote p.
// Batches call it from Done; hosts call it after their own hardware writes.
func (s *Screen) MarkGPUOwned(p *Pixmap) {
	p.gpuOwned = true
}

// WaitIfNeeded blocks until outstanding GPU work on p has completed when the
// GPU was its last writer. The scanout pixmap of a continuously refreshed
// display is never waited for. An unmapped pixmap has nothing to wait for.
func (s *Screen) WaitIfNeeded(p *Pixmap) {
	if p == s.maps.scanout && !s.display.ManualUpdate() {
		return
	}
	s.wait(p)
}

// wait blocks on outstanding GPU work on p regardless of its role.
func (s *Screen) wait(p *Pixmap) {
	if !p.gpuOwned {
		return
	}
	m := p.mapping
	if m == nil {
		return
	}

	if err := s.dev.QueryBlitsComplete(m.mem, true); err != nil {
		Logger().Warn("exa: wait for blits failed",
			"code", codeOf(err).String(), "err", err)
	}
	s.stats.waits++
	p.gpuOwned = false
}

// FlushScanoutIfNeeded pushes the whole scanout to a manual-update panel
// after a hardware write. It does nothing for other pixmaps or displays.
func (s *Screen) FlushScanoutIfNeeded(p *Pixmap) {
	s.flushScanout(p, p.Box())
}

func (s *Screen) flushScanout(p *Pixmap, damage Box) {
	if p != s.maps.scanout || !s.display.ManualUpdate() {
		return
	}
	s.WaitIfNeeded(p)
	if err := s.display.FlushScanout(damage); err != nil {
		Logger().Warn("exa: scanout flush failed", "err", err)
	}
	s.stats.scanoutFlushes++
}

// finishWrite closes a hardware write to the damage region of p.
func (s *Screen) finishWrite(p *Pixmap, damage Box) {
	s.MarkGPUOwned(p)
	s.flushScanout(p, damage)
}
