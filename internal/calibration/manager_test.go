package calibration

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"holoquilt/internal/quilt"
)

type sourceFunc func(ctx context.Context) ([]Calibration, error)

func (f sourceFunc) Calibrations(ctx context.Context) ([]Calibration, error) { return f(ctx) }

func newObservedManager(src Source) (*Manager, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return NewManager(src, zap.New(core).Sugar()), logs
}

func twoDisplays() StaticSource {
	a := portraitDevice()
	b := portraitDevice()
	b.Index = 1
	b.Name = "LKG-4K-1"
	b.Serial = "LKG-4K-0042"
	b.ScreenWidth, b.ScreenHeight = 3840, 2160
	return StaticSource{a, b}
}

func TestGetByIndexBeforeRefresh(t *testing.T) {
	m, logs := newObservedManager(twoDisplays())
	if m.Initialized() {
		t.Fatal("new manager reports initialized")
	}
	if got := m.GetByIndex(0); got != (Calibration{}) {
		t.Errorf("GetByIndex before refresh = %+v; want zero value", got)
	}
	if logs.Len() != 1 {
		t.Errorf("logged %d warnings; want 1", logs.Len())
	}
	if m.IsIndexValid(0) {
		t.Error("IsIndexValid(0) before refresh = true")
	}
}

func TestGetByIndexEmptySet(t *testing.T) {
	m, logs := newObservedManager(StaticSource{})
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if m.HasAny() {
		t.Error("HasAny() = true for empty source")
	}
	for _, i := range []int{-1, 0, 3} {
		if got := m.GetByIndex(i); got != (Calibration{}) {
			t.Errorf("GetByIndex(%d) = %+v; want zero value", i, got)
		}
	}
	if logs.Len() != 3 {
		t.Errorf("logged %d warnings; want 3", logs.Len())
	}
	if _, ok := m.TryGetByIndex(0); ok {
		t.Error("TryGetByIndex(0) on empty set reported ok")
	}
}

func TestGetByIndex(t *testing.T) {
	m, logs := newObservedManager(twoDisplays())
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if m.Count() != 2 {
		t.Fatalf("Count() = %d; want 2", m.Count())
	}
	if got := m.GetByIndex(1); got.Name != "LKG-4K-1" {
		t.Errorf("GetByIndex(1).Name = %q", got.Name)
	}
	if logs.Len() != 0 {
		t.Errorf("valid lookup logged %d warnings", logs.Len())
	}

	// out of range falls back to the first calibration
	if got := m.GetByIndex(7); got.Name != "LKG-PORT-0" {
		t.Errorf("GetByIndex(7).Name = %q; want first calibration", got.Name)
	}
	if logs.FilterMessage("calibration index is invalid").Len() != 1 {
		t.Errorf("missing invalid index warning: %v", logs.All())
	}
	if cal, ok := m.TryGetByIndex(1); !ok || cal.Index != 1 {
		t.Errorf("TryGetByIndex(1) = %+v, %v", cal, ok)
	}
}

func TestFindByName(t *testing.T) {
	m, _ := newObservedManager(twoDisplays())
	if _, found := m.FindByName("LKG-4K-1"); found {
		t.Error("FindByName before refresh found a calibration")
	}
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	cal, found := m.FindByName("LKG-4K-1")
	if !found || cal.Index != 1 {
		t.Errorf("FindByName(LKG-4K-1) = index %d, %v", cal.Index, found)
	}

	// not found still hands back the first calibration
	cal, found = m.FindByName("nope")
	if found {
		t.Error("FindByName(nope) reported found")
	}
	if cal.Name != "LKG-PORT-0" {
		t.Errorf("FindByName(nope) fallback = %q; want first calibration", cal.Name)
	}
}

func TestRefreshSwapsSnapshotAndNotifies(t *testing.T) {
	calls := 0
	src := sourceFunc(func(ctx context.Context) ([]Calibration, error) {
		calls++
		if calls == 1 {
			return twoDisplays(), nil
		}
		return []Calibration{Default(0, quilt.DeviceEightK)}, nil
	})
	m, _ := newObservedManager(src)

	var seen []int
	unsubscribe := m.Subscribe(func(s *Set) {
		// the new set is already installed when listeners run
		if m.Snapshot() != s {
			t.Error("listener ran before the snapshot was swapped")
		}
		seen = append(seen, s.Len())
	})

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	before := m.Snapshot()

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if before.Len() != 2 {
		t.Errorf("captured snapshot changed after refresh: Len() = %d", before.Len())
	}
	if cal, _ := before.Get(1); cal.Name != "LKG-4K-1" {
		t.Errorf("captured snapshot content changed: %+v", cal)
	}
	if m.Count() != 1 {
		t.Errorf("Count() after second refresh = %d; want 1", m.Count())
	}
	if len(seen) != 2 || seen[0] != 2 || seen[1] != 1 {
		t.Errorf("listener saw %v; want [2 1]", seen)
	}

	unsubscribe()
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("listener ran after unsubscribe: %v", seen)
	}
}

func TestRefreshSourceError(t *testing.T) {
	boom := errors.New("service not running")
	m, logs := newObservedManager(sourceFunc(func(ctx context.Context) ([]Calibration, error) {
		return nil, boom
	}))
	notified := false
	m.Subscribe(func(s *Set) { notified = true })

	if err := m.Refresh(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Refresh() = %v; want %v", err, boom)
	}
	if !m.Initialized() || m.HasAny() {
		t.Errorf("after failed refresh: initialized=%v any=%v", m.Initialized(), m.HasAny())
	}
	if !notified {
		t.Error("listeners not notified after failed refresh")
	}
	if logs.Len() != 1 {
		t.Errorf("logged %d warnings; want 1", logs.Len())
	}
}

func TestSourcesHonorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, src := range map[string]Source{
		"static":   twoDisplays(),
		"emulated": EmulatedSource{Devices: []quilt.DeviceType{quilt.DeviceFourK}},
		"visual":   VisualSource{Displays: []Display{{Path: "missing.json"}}},
	} {
		if _, err := src.Calibrations(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: Calibrations(cancelled) = %v; want context.Canceled", name, err)
		}
	}
}

func TestEmulatedSource(t *testing.T) {
	cals, err := EmulatedSource{Devices: []quilt.DeviceType{quilt.DevicePortrait, quilt.DeviceFourK}}.Calibrations(context.Background())
	if err != nil {
		t.Fatalf("Calibrations: %v", err)
	}
	if len(cals) != 2 {
		t.Fatalf("got %d calibrations; want 2", len(cals))
	}
	for i, cal := range cals {
		if cal.Index != i || !cal.IsValid() {
			t.Errorf("calibration %d = %+v; want valid with index %d", i, cal, i)
		}
	}
	if cals[1].ScreenWidth != 3840 {
		t.Errorf("4k emulated width = %d", cals[1].ScreenWidth)
	}
}
