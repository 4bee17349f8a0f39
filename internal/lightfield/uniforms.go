// Package lightfield turns a quilt into the interleaved image a lenticular
// display shows, using the same uniforms the display's shader consumes.
package lightfield

import (
	"fmt"
	"math"

	"holoquilt/internal/calibration"
	"holoquilt/internal/quilt"
)

// Uniforms are the per-frame shader inputs derived from a calibration and a
// quilt layout.
type Uniforms struct {
	Pitch  float64
	Slope  float64
	Center float64
	Subp   float64

	// Tile is (columns, rows, views, columns*rows).
	Tile [4]float64
	// ViewPortion is the share of the quilt texture covered by tiles.
	ViewPortion [2]float64
	// Aspect is (quilt content aspect, display aspect, overscan flag).
	Aspect [3]float64
}

// NewUniforms collects the shader inputs. A quilt aspect of zero or less
// falls back to the calibration's aspect.
func NewUniforms(cal calibration.Calibration, s quilt.Settings) Uniforms {
	l := s.Setup()
	cols, rows := s.ViewColumns, s.ViewRows
	if cols == 0 || rows == 0 {
		cols, rows = 1, 1
	}
	views := s.NumViews
	if views <= 0 {
		views = 1
	}
	contentAspect := s.Aspect
	if contentAspect <= 0 {
		contentAspect = cal.GetAspect()
	}
	overscan := 0.0
	if s.Overscan {
		overscan = 1
	}
	return Uniforms{
		Pitch:       cal.Pitch,
		Slope:       cal.Slope,
		Center:      cal.Center,
		Subp:        cal.Subp,
		Tile:        [4]float64{float64(cols), float64(rows), float64(views), float64(cols * rows)},
		ViewPortion: [2]float64{l.ViewPortionHorizontal, l.ViewPortionVertical},
		Aspect:      [3]float64{contentAspect, cal.GetAspect(), overscan},
	}
}

func (u Uniforms) String() string {
	return fmt.Sprintf("pitch=%.4f slope=%.4f center=%.4f subp=%.6f tile=%v portion=%v aspect=%v",
		u.Pitch, u.Slope, u.Center, u.Subp, u.Tile, u.ViewPortion, u.Aspect)
}

// ViewAt returns the view a subpixel shows. x and y are normalized screen
// coordinates with y pointing up; channel is 0, 1 or 2 for R, G and B.
func (u Uniforms) ViewAt(x, y float64, channel int) int {
	z := (x+float64(channel)*u.Subp+y*u.Slope)*u.Pitch - u.Center
	z -= math.Floor(z)
	views := int(u.Tile[2])
	view := int(z * u.Tile[2])
	if view >= views {
		view = views - 1
	}
	return view
}

// contentUV maps a screen coordinate onto the quilt content, letterboxing
// or cropping when the content and display aspects differ. ok is false
// outside the content.
func (u Uniforms) contentUV(x, y float64) (float64, float64, bool) {
	content, display := u.Aspect[0], u.Aspect[1]
	if content <= 0 || display <= 0 || content == display {
		return x, y, true
	}
	// Without overscan the whole view is shown; with it the display is filled.
	scaleX := (content >= display) == (u.Aspect[2] > 0.5)
	if scaleX {
		x = (x-0.5)*display/content + 0.5
	} else {
		y = (y-0.5)*content/display + 0.5
	}
	return x, y, x >= 0 && x <= 1 && y >= 0 && y <= 1
}
