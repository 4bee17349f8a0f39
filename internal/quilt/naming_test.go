package quilt

import "testing"

func TestSuffix(t *testing.T) {
	if got := Suffix(8, 6, 0.75); got != "_qs8x6a0.75" {
		t.Errorf("Suffix(8, 6, 0.75) = %q", got)
	}
	if got := Suffix(5, 9, 16.0/9.0); got != "_qs5x9a1.7777778" {
		t.Errorf("Suffix(5, 9, 16/9) = %q", got)
	}
}

func TestParseSuffix(t *testing.T) {
	tests := []struct {
		name   string
		cols   int
		rows   int
		aspect float64
		ok     bool
	}{
		{"clip_qs8x6a0.75.mp4", 8, 6, 0.75, true},
		{"/tmp/frames/scene_qs5x9a1.7777778.webp", 5, 9, 1.7777778, true},
		{"a_qs1x1a1_qs4x8a.5.png", 4, 8, 0.5, true},
		{"plain.png", 0, 0, 0, false},
		{"broken_qs8xa0.75.png", 0, 0, 0, false},
	}
	for _, tc := range tests {
		cols, rows, aspect, ok := ParseSuffix(tc.name)
		if ok != tc.ok || cols != tc.cols || rows != tc.rows || aspect != tc.aspect {
			t.Errorf("ParseSuffix(%q) = %d, %d, %v, %v; want %d, %d, %v, %v",
				tc.name, cols, rows, aspect, ok, tc.cols, tc.rows, tc.aspect, tc.ok)
		}
	}
}

func TestAutoCorrectPath(t *testing.T) {
	tests := []struct {
		in   string
		ext  string
		want string
	}{
		{"", ".mp4", "output_qs8x6a0.75.mp4"},
		{"clip", "mp4", "clip_qs8x6a0.75.mp4"},
		{"clip.mov", ".mp4", "clip_qs8x6a0.75.mp4"},
		{"clip_qs8x6a0.75.mp4", ".mp4", "clip_qs8x6a0.75.mp4"},
		{"out/dir.v2/clip", ".webp", "out/dir.v2/clip_qs8x6a0.75.webp"},
	}
	for _, tc := range tests {
		if got := AutoCorrectPath(tc.in, 8, 6, 0.75, tc.ext); got != tc.want {
			t.Errorf("AutoCorrectPath(%q, %q) = %q; want %q", tc.in, tc.ext, got, tc.want)
		}
	}
}

func TestSettingsFromSuffix(t *testing.T) {
	s, ok := SettingsFromSuffix("shot_qs8x6a0.75.png", 3360, 3360)
	if !ok {
		t.Fatal("SettingsFromSuffix failed")
	}
	want := New(3360, 3360, 8, 6, 48, 0.75, false)
	if !s.Equal(want) {
		t.Errorf("SettingsFromSuffix = %+v; want %+v", s, want)
	}
	if _, ok := SettingsFromSuffix("shot.png", 10, 10); ok {
		t.Error("SettingsFromSuffix without suffix succeeded")
	}
}
