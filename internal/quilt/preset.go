package quilt

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Preset names a fixed quilt layout. Automatic picks one from the display.
type Preset int

const (
	Custom         Preset = -2
	Automatic      Preset = -1
	Portrait       Preset = 0
	HiResPortrait  Preset = 1
	FourKStandard  Preset = 2
	EightKStandard Preset = 3
)

var presetSettings = [...]Settings{
	New(3360, 3360, 8, 6, 48, DefaultAspect, false), // portrait
	New(3840, 3840, 8, 6, 48, DefaultAspect, false), // hi res portrait
	New(4096, 4096, 5, 9, 45, DefaultAspect, false), // 4k standard
	New(8192, 8192, 5, 9, 45, DefaultAspect, false), // 8k standard
}

// Screen is the part of a display calibration needed to pick a preset.
// It must describe the display's unmodified native resolution.
type Screen interface {
	ScreenSize() (width, height int)
	IsPortrait() bool
}

// PresetSettings returns the table entry for a concrete preset.
// Custom and Automatic are not table entries and panic.
func PresetSettings(p Preset) Settings {
	return presetSettings[p]
}

// AutomaticPreset picks the preset matching screen's native resolution.
// Portrait displays always get Portrait.
func AutomaticPreset(screen Screen, logger *zap.SugaredLogger) Preset {
	if screen == nil || screen.IsPortrait() {
		return Portrait
	}
	w, h := screen.ScreenSize()
	if d, ok := deviceFor(w, h); ok {
		return d.QuiltPreset
	}
	if logger != nil {
		logger.Warnw("no device preset matches calibration screen size, defaulting to portrait quilt",
			"width", w, "height", h)
	}
	return Portrait
}

// FromPreset returns the quilt settings for p, resolving Automatic against
// screen first. Custom has no table entry and falls back to Portrait.
func FromPreset(p Preset, screen Screen, logger *zap.SugaredLogger) Settings {
	switch p {
	case Automatic:
		p = AutomaticPreset(screen, logger)
	case Custom:
		if logger != nil {
			logger.Warnw("custom quilt preset has no fixed settings, using portrait")
		}
		p = Portrait
	}
	return PresetSettings(p)
}

// ForDevice returns the default quilt for an emulated device, with the
// aspect forced to the device's native aspect.
func ForDevice(t DeviceType) Settings {
	d := Device(t)
	s := PresetSettings(d.QuiltPreset)
	s.Aspect = d.AspectRatio
	return s
}

func (p Preset) String() string {
	switch p {
	case Custom:
		return "custom"
	case Automatic:
		return "automatic"
	case Portrait:
		return "portrait"
	case HiResPortrait:
		return "hires-portrait"
	case FourKStandard:
		return "4k"
	case EightKStandard:
		return "8k"
	}
	return fmt.Sprintf("Preset(%d)", int(p))
}

// ParsePreset accepts the names produced by Preset.String.
func ParsePreset(s string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "custom":
		return Custom, nil
	case "automatic", "auto", "":
		return Automatic, nil
	case "portrait":
		return Portrait, nil
	case "hires-portrait", "hiresportrait":
		return HiResPortrait, nil
	case "4k", "4k-standard":
		return FourKStandard, nil
	case "8k", "8k-standard":
		return EightKStandard, nil
	}
	return 0, fmt.Errorf("quilt: unknown preset %q", s)
}
