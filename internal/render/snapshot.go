// Package render draws the board to a raster snapshot: the bounded grid,
// its axes and every placed entity, optionally over a satellite backdrop
// image, encoded as WebP.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/Parsa-Sedighi/rb26-survey/internal/board"
	"github.com/Parsa-Sedighi/rb26-survey/internal/config"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	colBackground = color.RGBA{255, 255, 255, 255}
	colCell       = color.RGBA{200, 200, 200, 255}
	colAxis       = color.RGBA{40, 40, 200, 255}
	colBorder     = color.RGBA{0, 0, 0, 255}
	colWaypoint   = color.RGBA{220, 30, 30, 255}
	colElement    = color.RGBA{30, 160, 30, 255}
)

// Snapshot renders the area and registry into an RGBA image of
// grid_size_m * px_per_m pixels per side.
func Snapshot(a *config.Area, reg *board.Registry) *image.RGBA {
	size := int(a.GridSize * a.PxPerMeter)
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	if a.Backdrop != "" {
		if src, err := LoadBackdrop(a.Backdrop); err != nil {
			log.Warn().Err(err).Str("path", a.Backdrop).Msg("Backdrop skipped")
			draw.Draw(img, img.Bounds(), image.NewUniform(colBackground), image.Point{}, draw.Src)
		} else {
			xdraw.CatmullRom.Scale(img, img.Bounds(), src, src.Bounds(), draw.Over, nil)
		}
	} else {
		draw.Draw(img, img.Bounds(), image.NewUniform(colBackground), image.Point{}, draw.Src)
	}

	drawGrid(img, a, size)
	drawEntities(img, a, reg)

	return img
}

func drawGrid(img *image.RGBA, a *config.Area, size int) {
	step := int(a.CellSize * a.PxPerMeter)
	if step > 0 {
		for p := step; p < size; p += step {
			vline(img, p, 0, size, colCell)
			hline(img, 0, size, p, colCell)
		}
	}

	// Axes through the origin
	vline(img, size/2, 0, size, colAxis)
	hline(img, 0, size, size/2, colAxis)

	// Border
	vline(img, 0, 0, size, colBorder)
	vline(img, size-1, 0, size, colBorder)
	hline(img, 0, size, 0, colBorder)
	hline(img, 0, size, size-1, colBorder)
}

func drawEntities(img *image.RGBA, a *config.Area, reg *board.Registry) {
	half := float64(img.Bounds().Dx()) / 2

	for _, e := range reg.Elements() {
		p := e.Final()
		x := int(half + p.East*a.PxPerMeter)
		y := int(half - p.North*a.PxPerMeter)
		fillRect(img, x-6, y-6, x+6, y+6, colElement)
	}
	for _, e := range reg.Waypoints() {
		p := e.Final()
		x := int(half + p.East*a.PxPerMeter)
		y := int(half - p.North*a.PxPerMeter)
		fillDisc(img, x, y, 5, colWaypoint)
	}
}

// LoadBackdrop opens and decodes a backdrop image from disk. The blank
// decoder imports cover png/jpeg/bmp/tiff/webp sources.
func LoadBackdrop(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	log.Debug().Str("path", path).Str("format", format).Msg("Backdrop decoded")
	return img, nil
}

// EncodeWebP writes the snapshot as lossy WebP.
func EncodeWebP(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: 85})
}

// Save renders nothing itself; it encodes an already rendered snapshot to
// the given path.
func Save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	return EncodeWebP(f, img)
}

func hline(img *image.RGBA, x0, x1, y int, c color.RGBA) {
	for x := x0; x < x1; x++ {
		img.SetRGBA(x, y, c)
	}
}

func vline(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	for y := y0; y < y1; y++ {
		img.SetRGBA(x, y, c)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func fillDisc(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				img.SetRGBA(cx+x, cy+y, c)
			}
		}
	}
}
