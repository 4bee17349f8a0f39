package frames

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScanSingleFrameOrdersViewsNumerically(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shot")
	for _, name := range []string{"view_10.png", "view_2.png", "view_1.jpg", "cover.webp", "notes.txt", "View_2.tga"} {
		touch(t, filepath.Join(dir, name))
	}

	got, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []Frame{{
		Name: "shot",
		Dir:  dir,
		Views: []string{
			filepath.Join(dir, "view_1.jpg"),
			filepath.Join(dir, "View_2.tga"),
			filepath.Join(dir, "view_2.png"),
			filepath.Join(dir, "view_10.png"),
			filepath.Join(dir, "cover.webp"),
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan mismatch (-want +got):\n%s", diff)
	}
}

func TestScanSubdirectoryFrames(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "frame_b", "0.png"))
	touch(t, filepath.Join(dir, "frame_a", "1.png"))
	touch(t, filepath.Join(dir, "frame_a", "0.png"))
	touch(t, filepath.Join(dir, "empty", "readme.md"))
	touch(t, filepath.Join(dir, "manifest.json"))

	got, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 2 || got[0].Name != "frame_a" || got[1].Name != "frame_b" {
		t.Fatalf("frames = %+v; want frame_a, frame_b", got)
	}
	if len(got[0].Views) != 2 || filepath.Base(got[0].Views[0]) != "0.png" {
		t.Errorf("frame_a views = %v", got[0].Views)
	}
}

func TestScanErrors(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Scan of a missing dir succeeded")
	}
	if _, err := Scan(t.TempDir()); err == nil {
		t.Error("Scan of an empty dir succeeded")
	}
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 8), uint8(y * 8), 128, 255})
		}
	}
	return img
}

func TestSaveAndLoadLossless(t *testing.T) {
	dir := t.TempDir()
	src := gradient(24, 16)
	for _, tc := range []struct {
		path   string
		format Format
	}{
		{filepath.Join(dir, "a", "q.png"), FormatPNG},
		{filepath.Join(dir, "b", "q.webp"), FormatWebP},
		{filepath.Join(dir, "c", "by_ext.webp"), ""},
	} {
		if err := SaveImage(tc.path, src, tc.format); err != nil {
			t.Fatalf("SaveImage(%s): %v", tc.path, err)
		}
		got, err := LoadImage(tc.path)
		if err != nil {
			t.Fatalf("LoadImage(%s): %v", tc.path, err)
		}
		if diff := cmp.Diff(src.Pix, got.Pix); diff != "" {
			t.Errorf("%s round trip differs (-want +got):\n%s", tc.path, diff)
		}
	}
}

func TestSaveImageRejectsUnknownFormat(t *testing.T) {
	if err := SaveImage(filepath.Join(t.TempDir(), "q.bmp"), gradient(2, 2), ""); err == nil {
		t.Error("SaveImage with a .bmp path succeeded")
	}
}

func TestSaveImageOverwritesAfterFailedEncode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.png")
	if err := SaveImage(path, gradient(4, 4), Format("gif")); err == nil {
		t.Fatal("SaveImage with format gif succeeded")
	}
	src := gradient(6, 3)
	for i := 0; i < 2; i++ {
		if err := SaveImage(path, src, FormatPNG); err != nil {
			t.Fatalf("SaveImage #%d: %v", i, err)
		}
	}
	got, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if diff := cmp.Diff(src.Pix, got.Pix); diff != "" {
		t.Errorf("overwritten image differs (-want +got):\n%s", diff)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"webp": FormatWebP, ".PNG": FormatPNG, "WebP": FormatWebP} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Error("ParseFormat(gif) succeeded")
	}
}
