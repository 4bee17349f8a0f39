package calibration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Display points at one display's visual.json calibration file.
// Name and the window position are not part of the file.
type Display struct {
	Path string `json:"visual"`
	Name string `json:"name"`
	XPos int    `json:"xpos"`
	YPos int    `json:"ypos"`
}

// VisualSource reads Looking Glass visual.json calibration files.
type VisualSource struct {
	Displays []Display
}

type visualValue struct {
	Value float64 `json:"value"`
}

// visualFile matches the visual.json schema written by the display's
// calibration tool.
type visualFile struct {
	ConfigVersion string       `json:"configVersion"`
	Serial        string       `json:"serial"`
	Pitch         visualValue  `json:"pitch"`
	Slope         visualValue  `json:"slope"`
	Center        visualValue  `json:"center"`
	Fringe        *visualValue `json:"fringe"`
	ViewCone      *visualValue `json:"viewCone"`
	DPI           visualValue  `json:"DPI"`
	ScreenW       visualValue  `json:"screenW"`
	ScreenH       visualValue  `json:"screenH"`
	FlipImageX    visualValue  `json:"flipImageX"`
}

func (s VisualSource) Calibrations(ctx context.Context) ([]Calibration, error) {
	out := make([]Calibration, 0, len(s.Displays))
	for i, d := range s.Displays {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cal, err := LoadVisual(d.Path)
		if err != nil {
			return nil, err
		}
		cal.Index = i
		cal.UnityIndex = i
		cal.Name = d.Name
		if cal.Name == "" {
			cal.Name = defaultDisplayName(d.Path, cal.Serial)
		}
		cal.XPos = d.XPos
		cal.YPos = d.YPos
		out = append(out, cal)
	}
	return out, nil
}

// LoadVisual parses a visual.json file. The adjusted Pitch, Slope, Subp and
// Aspect are derived for the display's native resolution.
func LoadVisual(path string) (Calibration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Calibration{}, fmt.Errorf("calibration: read %s: %w", path, err)
	}
	cal, err := ParseVisual(raw)
	if err != nil {
		return Calibration{}, fmt.Errorf("calibration: parse %s: %w", path, err)
	}
	return cal, nil
}

// ParseVisual decodes the contents of a visual.json file.
func ParseVisual(raw []byte) (Calibration, error) {
	var v visualFile
	if err := json.Unmarshal(raw, &v); err != nil {
		return Calibration{}, err
	}
	w, h := int(v.ScreenW.Value), int(v.ScreenH.Value)
	if w <= 0 || h <= 0 {
		return Calibration{}, fmt.Errorf("screen size %dx%d", w, h)
	}
	if v.DPI.Value <= 0 {
		return Calibration{}, fmt.Errorf("DPI %v", v.DPI.Value)
	}
	if v.Slope.Value == 0 {
		return Calibration{}, fmt.Errorf("slope is zero")
	}

	cal := Calibration{
		Serial:     v.Serial,
		Center:     v.Center.Value,
		ViewCone:   DefaultViewCone,
		RawPitch:   v.Pitch.Value,
		RawSlope:   v.Slope.Value,
		FlipImageX: v.FlipImageX.Value,
		DPI:        v.DPI.Value,
	}
	if v.ViewCone != nil {
		cal.ViewCone = v.ViewCone.Value
	}
	if v.Fringe != nil {
		cal.Fringe = v.Fringe.Value
	}
	native := cal.CopyWithCustomResolution(XPosDefault, YPosDefault, w, h)
	return native, nil
}

func defaultDisplayName(path, serial string) string {
	if serial != "" {
		return serial
	}
	return filepath.Base(filepath.Dir(path))
}
