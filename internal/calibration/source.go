package calibration

import (
	"context"
	"fmt"

	"holoquilt/internal/quilt"
)

// Source queries the calibrations of the currently connected displays.
type Source interface {
	Calibrations(ctx context.Context) ([]Calibration, error)
}

// StaticSource always returns the same calibrations.
type StaticSource []Calibration

func (s StaticSource) Calibrations(ctx context.Context) ([]Calibration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Calibration, len(s))
	copy(out, s)
	return out, nil
}

// EmulatedSource reports one emulated display per listed device model.
type EmulatedSource struct {
	Devices []quilt.DeviceType
}

func (s EmulatedSource) Calibrations(ctx context.Context) ([]Calibration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Calibration, 0, len(s.Devices))
	for i, t := range s.Devices {
		cal := Default(i, t)
		cal.Name = fmt.Sprintf("Emulated %s", quilt.Device(t).Name)
		cal.ViewCone = DefaultViewCone
		out = append(out, cal)
	}
	return out, nil
}
