package quilt

import (
	"fmt"
	"strings"
)

// DeviceType identifies a known Looking Glass display model.
type DeviceType int

const (
	DevicePortrait DeviceType = iota
	DeviceFourK
	DeviceEightK
	DeviceEightPointNineLegacy
)

// DeviceSettings describes the native geometry of a display model.
type DeviceSettings struct {
	Name         string
	ScreenWidth  int
	ScreenHeight int
	AspectRatio  float64
	NearClip     float64
	QuiltPreset  Preset
}

func newDevice(name string, w, h int, nearClip float64, preset Preset) DeviceSettings {
	return DeviceSettings{
		Name:         name,
		ScreenWidth:  w,
		ScreenHeight: h,
		AspectRatio:  float64(w) / float64(h),
		NearClip:     nearClip,
		QuiltPreset:  preset,
	}
}

var devices = [...]DeviceSettings{
	newDevice("Looking Glass - Portrait", 1536, 2048, 0.5, Portrait),
	newDevice("Looking Glass - 4k", 3840, 2160, 1.5, FourKStandard),
	newDevice("Looking Glass - 8K", 7680, 4320, 1.5, EightKStandard),
	newDevice("Looking Glass - 8.9inch(Legacy)", 2560, 1600, 1.5, FourKStandard),
}

// Device returns the table entry for t. An unknown t panics like any
// out-of-range array index.
func Device(t DeviceType) DeviceSettings {
	return devices[t]
}

// Devices returns a copy of the device table in DeviceType order.
func Devices() []DeviceSettings {
	out := make([]DeviceSettings, len(devices))
	copy(out, devices[:])
	return out
}

// DefaultDevice is the entry used when nothing better is known.
func DefaultDevice() DeviceSettings {
	return devices[DevicePortrait]
}

// DeviceName returns the name of the device whose native resolution matches
// screen, or the default device name.
func DeviceName(screen Screen) string {
	if screen != nil {
		if d, ok := deviceFor(screen.ScreenSize()); ok {
			return d.Name
		}
	}
	return DefaultDevice().Name
}

// deviceFor finds the device whose native resolution is w x h.
func deviceFor(w, h int) (DeviceSettings, bool) {
	for _, d := range devices {
		if d.ScreenWidth == w && d.ScreenHeight == h {
			return d, true
		}
	}
	return DeviceSettings{}, false
}

func (t DeviceType) String() string {
	switch t {
	case DevicePortrait:
		return "portrait"
	case DeviceFourK:
		return "4k"
	case DeviceEightK:
		return "8k"
	case DeviceEightPointNineLegacy:
		return "8.9-legacy"
	}
	return fmt.Sprintf("DeviceType(%d)", int(t))
}

// ParseDeviceType accepts the names produced by DeviceType.String.
func ParseDeviceType(s string) (DeviceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "portrait":
		return DevicePortrait, nil
	case "4k":
		return DeviceFourK, nil
	case "8k":
		return DeviceEightK, nil
	case "8.9-legacy", "8.9", "legacy":
		return DeviceEightPointNineLegacy, nil
	}
	return 0, fmt.Errorf("quilt: unknown device type %q", s)
}
