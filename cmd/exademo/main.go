// Command exademo drives an exa screen over the software device and saves
// the scanout as PNG.
package main

import (
	"flag"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/exa"
	"github.com/gogpu/exa/softdev"
)

func main() {
	var (
		width   = flag.Int("width", 640, "scanout width")
		height  = flag.Int("height", 480, "scanout height")
		output  = flag.String("output", "exademo.png", "output file")
		config  = flag.String("config", "", "TOML screen configuration")
		manual  = flag.Bool("manual", true, "model a manual-update panel")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	exa.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := exa.DefaultConfig()
	if *config != "" {
		var err error
		if cfg, err = exa.LoadConfig(*config); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	dev := softdev.New()
	disp := softdev.NewDisplay(*manual)
	srv := exa.NewServices(func() (exa.Device, error) { return dev, nil })
	s, err := exa.NewScreen(srv, softdev.NewAllocator(), exa.WithConfig(cfg), exa.WithDisplay(disp))
	if err != nil {
		log.Fatalf("Failed to create screen: %v", err)
	}
	defer s.Close()

	scanout, err := s.CreatePixmap(*width, *height, 24, 32, exa.UsageScanout)
	if err != nil {
		log.Fatalf("Failed to create scanout: %v", err)
	}
	s.SetScanout(scanout)
	disp.Attach(scanout, exa.FormatXRGB8888)

	drawBackground(s, scanout)
	drawRasterOps(s, scanout)
	drawScroll(s, scanout)
	drawComposite(s, scanout)
	drawVideo(s, scanout)

	if err := save(s, disp, scanout, *output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	st := s.Stats()
	log.Printf("Demo saved to %s (%dx%d): %d flushes, %d submissions, %d scanout flushes, %d mappings\n",
		*output, *width, *height, st.Flushes, st.Submissions, st.ScanoutFlushes, st.Mappings.Live)
}

// fill runs one solid batch. Unsupported fills are logged and skipped.
func fill(s *exa.Screen, p *exa.Pixmap, alu exa.Alu, fg exa.Pixel, boxes ...exa.Box) {
	if err := s.PrepareSolid(p, alu, exa.AllPlanes, fg); err != nil {
		slog.Warn("solid fill not accelerated", "err", err)
		return
	}
	for _, b := range boxes {
		s.Solid(p, b.X0, b.Y0, b.X1, b.Y1)
	}
	s.DoneSolid(p)
}

func drawBackground(s *exa.Screen, p *exa.Pixmap) {
	// Vertical bands from dark blue to teal.
	const bands = 64
	for i := range bands {
		y0 := p.Height * i / bands
		y1 := p.Height * (i + 1) / bands
		c := exa.Pixel(0xff000000 | uint32(0x20+i)<<16 | uint32(0x30+i*2)<<8 | 0x60)
		fill(s, p, exa.GXcopy, c, exa.Box{Y0: y0, X1: p.Width, Y1: y1})
	}
}

func drawRasterOps(s *exa.Screen, p *exa.Pixmap) {
	var boxes []exa.Box
	for i := range 8 {
		x := 40 + i*24
		boxes = append(boxes, exa.Box{X0: x, Y0: 40, X1: x + 16, Y1: 140})
	}
	fill(s, p, exa.GXcopy, 0xffffcc00, boxes...)
	fill(s, p, exa.GXxor, 0x00ffffff, exa.Box{X0: 30, Y0: 80, X1: 240, Y1: 100})
	fill(s, p, exa.GXinvert, 0, exa.Box{X0: 30, Y0: 110, X1: 240, Y1: 120})
}

func drawScroll(s *exa.Screen, p *exa.Pixmap) {
	// Scroll the bars right, the way a terminal scrolls its contents.
	if err := s.PrepareCopy(p, p, -1, 1, exa.GXcopy, exa.AllPlanes); err != nil {
		slog.Warn("copy not accelerated", "err", err)
		return
	}
	s.Copy(p, 30, 40, 260, 40, 220, 100)
	s.DoneCopy(p)
}

func drawComposite(s *exa.Screen, p *exa.Pixmap) {
	glyph, err := s.CreatePixmap(32, 32, 8, 8, exa.UsageGlyphCache)
	if err != nil {
		slog.Warn("glyph pixmap", "err", err)
		return
	}
	defer s.DestroyPixmap(glyph)
	colour, err := s.CreatePixmap(1, 1, 32, 32, exa.UsageDefault)
	if err != nil {
		slog.Warn("colour pixmap", "err", err)
		return
	}
	defer s.DestroyPixmap(colour)

	// A ring-shaped coverage mask.
	fill(s, glyph, exa.GXcopy, 0xff, exa.Box{X0: 4, Y0: 4, X1: 28, Y1: 28})
	fill(s, glyph, exa.GXcopy, 0x60, exa.Box{X0: 10, Y0: 10, X1: 22, Y1: 22})
	fill(s, colour, exa.GXcopy, 0xc0c03020, exa.Box{X1: 1, Y1: 1})

	src := &exa.Picture{Pixmap: colour, Format: exa.FormatARGB8888, Repeat: exa.RepeatNormal}
	mask := &exa.Picture{Pixmap: glyph, Format: exa.FormatA8}
	dst := &exa.Picture{Pixmap: p, Format: exa.FormatXRGB8888}
	if err := s.PrepareComposite(exa.PictOpOver, src, mask, dst); err != nil {
		slog.Warn("composite not accelerated", "err", err)
		return
	}
	for i := range 10 {
		s.Composite(p, 0, 0, 0, 0, 40+i*36, 180, 32, 32)
	}
	s.DoneComposite(p)

	// Plain translucent panel: several rectangles go out as one atlas blit.
	plain := &exa.Picture{Pixmap: colour, Format: exa.FormatARGB8888, Repeat: exa.RepeatNormal}
	if err := s.PrepareComposite(exa.PictOpOver, plain, nil, dst); err != nil {
		slog.Warn("composite not accelerated", "err", err)
		return
	}
	for i := range 4 {
		s.Composite(p, 0, 0, 0, 0, 40, 240+i*30, 360, 20)
	}
	s.DoneComposite(p)
}

func drawVideo(s *exa.Screen, p *exa.Pixmap) {
	const w, h = 64, 48
	frame, err := s.CreatePixmap(w, h, 16, 16, exa.UsageDefault)
	if err != nil {
		slog.Warn("video frame", "err", err)
		return
	}
	defer s.DestroyPixmap(frame)

	// YUY2 colour ramp: luma left to right, chroma top to bottom.
	if err := s.PrepareAccess(frame, exa.AccessDest); err != nil {
		slog.Warn("video frame access", "err", err)
		return
	}
	pix := frame.Pixels()
	for y := range h {
		row := pix[y*frame.Pitch:]
		for x := 0; x < w; x += 2 {
			row[x*2+0] = byte(16 + x*3)
			row[x*2+1] = byte(y * 5)
			row[x*2+2] = byte(16 + (x+1)*3)
			row[x*2+3] = byte(255 - y*5)
		}
	}
	s.FinishAccess(frame)

	dst := exa.Box{X0: p.Width - 200, Y0: p.Height - 160, X1: p.Width - 40, Y1: p.Height - 40}
	if err := s.PutTextureImage(frame, exa.Box{X1: w, Y1: h}, p, dst, nil, exa.FourCCYUY2); err != nil {
		slog.Warn("video not accelerated", "err", err)
	}
}

func save(s *exa.Screen, disp *softdev.Display, p *exa.Pixmap, path string) error {
	if err := s.PrepareAccess(p, exa.AccessSrc); err != nil {
		return err
	}
	img, err := disp.Panel()
	s.FinishAccess(p)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
