package calibration

import (
	"math"
	"strings"

	"holoquilt/internal/quilt"
)

const (
	XPosDefault     = 0
	YPosDefault     = 0
	DefaultSerial   = "PORT"
	DefaultViewCone = 35.0
)

// Calibration holds the optical and geometric properties of one display.
//
// Pitch, Slope, Subp and Aspect are the values adjusted for the current
// render size. RawPitch, RawSlope, DPI and FlipImageX are the device's fixed
// properties and are what every resize is computed from.
type Calibration struct {
	Index        int     `json:"index"`
	UnityIndex   int     `json:"unity_index"`
	ScreenWidth  int     `json:"screen_width"`
	ScreenHeight int     `json:"screen_height"`
	Subp         float64 `json:"subp"`
	ViewCone     float64 `json:"view_cone"`
	Aspect       float64 `json:"aspect"` // renderer viewport aspect
	Pitch        float64 `json:"pitch"`
	Slope        float64 `json:"slope"`
	Center       float64 `json:"center"`
	Fringe       float64 `json:"fringe"`
	Serial       string  `json:"serial"`
	Name         string  `json:"name"`
	XPos         int     `json:"xpos"`
	YPos         int     `json:"ypos"`

	RawPitch   float64 `json:"raw_pitch"`
	RawSlope   float64 `json:"raw_slope"`
	FlipImageX float64 `json:"flip_image_x"`
	DPI        float64 `json:"dpi"`
}

// Default builds an emulated calibration for a device model, used when no
// physical display has been detected.
func Default(index int, t quilt.DeviceType) Calibration {
	d := quilt.Device(t)
	return Calibration{
		Index:        index,
		ScreenWidth:  d.ScreenWidth,
		ScreenHeight: d.ScreenHeight,
		Aspect:       RecalculateAspect(d.ScreenWidth, d.ScreenHeight),
		Pitch:        10,
		Slope:        1,
		Serial:       DefaultSerial,
		XPos:         XPosDefault,
		YPos:         YPosDefault,
	}
}

// ForScreen builds an emulated calibration of an arbitrary size.
func ForScreen(index, width, height int) Calibration {
	return Calibration{
		Index:        index,
		ScreenWidth:  width,
		ScreenHeight: height,
		Aspect:       RecalculateAspect(width, height),
		Pitch:        1,
		Slope:        1,
		Serial:       DefaultSerial,
		XPos:         XPosDefault,
		YPos:         YPosDefault,
	}
}

// IsValid reports whether c describes a usable display.
func (c Calibration) IsValid() bool {
	return c.ScreenWidth > 0 && c.ScreenHeight > 0 && strings.TrimSpace(c.Name) != ""
}

func (c Calibration) IsPortrait() bool {
	return c.Serial == "" || strings.Contains(c.Serial, "PORT") || strings.Contains(c.Serial, "Portrait")
}

func (c Calibration) ScreenSize() (int, int) {
	return c.ScreenWidth, c.ScreenHeight
}

// DefaultAspect is ScreenWidth / ScreenHeight. Check IsValid first: a zero
// height gives ±Inf or NaN.
func (c Calibration) DefaultAspect() float64 {
	return RecalculateAspect(c.ScreenWidth, c.ScreenHeight)
}

// GetAspect returns Aspect when positive, DefaultAspect otherwise.
func (c Calibration) GetAspect() float64 {
	if c.Aspect > 0 {
		return c.Aspect
	}
	return c.DefaultAspect()
}

// CopyWithCustomResolution returns a calibration for rendering at
// renderWidth x renderHeight at the given window position. The derived
// values come from the device's raw properties only, so repeated resizes
// never compound. Emulated displays have no raw optics and keep their pitch
// and slope. c is left untouched.
func (c Calibration) CopyWithCustomResolution(xpos, ypos, renderWidth, renderHeight int) Calibration {
	out := c
	out.XPos = xpos
	out.YPos = ypos
	out.ScreenWidth = renderWidth
	out.ScreenHeight = renderHeight

	out.Subp = RecalculateSubpixelSize(renderWidth, c.FlipImageX)
	out.Aspect = RecalculateAspect(renderWidth, renderHeight)
	if c.HasRawOptics() {
		out.Pitch = RecalculatePitch(c.RawPitch, renderWidth, c.DPI, c.RawSlope)
		out.Slope = RecalculateSlope(renderWidth, renderHeight, c.RawSlope, c.FlipImageX)
	}
	return out
}

// HasRawOptics reports whether the raw lens properties can derive pitch and
// slope. Default and ForScreen leave them zero.
func (c Calibration) HasRawOptics() bool {
	return c.DPI > 0 && c.RawSlope != 0
}

// FlipMultiplier is -1 for horizontally flipped panels, 1 otherwise.
func FlipMultiplier(flipImageX float64) float64 {
	if flipImageX > 0.5 {
		return -1
	}
	return 1
}

// RecalculateSubpixelSize is the width of one RGB subpixel in UV units.
func RecalculateSubpixelSize(renderWidth int, flipImageX float64) float64 {
	return 1 / (float64(renderWidth) * 3) * FlipMultiplier(flipImageX)
}

func RecalculateAspect(renderWidth, renderHeight int) float64 {
	return float64(renderWidth) / float64(renderHeight)
}

// RecalculatePitch converts the lens pitch from lenticules per inch to
// lenticules per render width, corrected for the lenticule tilt.
func RecalculatePitch(rawPitch float64, renderWidth int, dpi, rawSlope float64) float64 {
	return rawPitch * (float64(renderWidth) / dpi) * math.Cos(math.Atan(1/rawSlope))
}

func RecalculateSlope(renderWidth, renderHeight int, rawSlope, flipImageX float64) float64 {
	return float64(renderHeight) / (float64(renderWidth) * rawSlope) * FlipMultiplier(flipImageX)
}
