package compose

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"holoquilt/internal/quilt"
)

func filled(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func viewColor(i int) color.NRGBA {
	return color.NRGBA{uint8(i * 20), uint8(255 - i*20), uint8(i), 255}
}

func TestComposePlacesViewsBottomLeftFirst(t *testing.T) {
	// 3x2 tiles of 100x50, two columns and one row of padding
	s := quilt.New(302, 101, 3, 2, 6, -1, false)
	views := make([]image.Image, 6)
	for i := range views {
		views[i] = filled(100, 50, viewColor(i))
	}
	q, err := Compose(s, views)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	checks := []struct {
		x, y int
		want color.NRGBA
	}{
		{0, 100, viewColor(0)},   // bottom-left
		{299, 100, viewColor(2)}, // bottom-right
		{0, 1, viewColor(3)},     // top-left below the padding
		{150, 30, viewColor(4)},
		{0, 0, color.NRGBA{}},    // vertical padding at the top
		{301, 60, color.NRGBA{}}, // horizontal padding at the right
	}
	for _, c := range checks {
		if got := q.NRGBAAt(c.x, c.y); got != c.want {
			t.Errorf("pixel (%d,%d) = %v; want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestComposeScalesAndSkipsMissing(t *testing.T) {
	s := quilt.New(256, 256, 2, 2, 4, -1, false)
	q, err := Compose(s, []image.Image{filled(16, 16, viewColor(1)), nil})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := q.NRGBAAt(64, 200); got != viewColor(1) {
		t.Errorf("scaled view pixel = %v; want %v", got, viewColor(1))
	}
	if got := q.NRGBAAt(200, 200); got != (color.NRGBA{}) {
		t.Errorf("missing view pixel = %v; want transparent", got)
	}
}

func TestComposeErrors(t *testing.T) {
	s := quilt.New(256, 256, 2, 2, 4, -1, false)
	if _, err := Compose(s, make([]image.Image, 5)); err == nil {
		t.Error("Compose accepted more views than the quilt holds")
	}
	s.NumViews = 9
	if _, err := Compose(s, nil); err == nil {
		t.Error("Compose accepted more views than tiles")
	}
}

func TestSplitInvertsCompose(t *testing.T) {
	s := quilt.New(302, 101, 3, 2, 5, -1, false)
	views := make([]image.Image, 5)
	for i := range views {
		views[i] = filled(100, 50, viewColor(i))
	}
	q, err := Compose(s, views)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	got, err := Split(s, q)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("Split returned %d views; want 5", len(got))
	}
	for i, v := range got {
		if diff := cmp.Diff(views[i].(*image.NRGBA).Pix, v.Pix); diff != "" {
			t.Errorf("view %d differs (-want +got):\n%s", i, diff)
		}
	}

	if _, err := Split(s, image.NewNRGBA(image.Rect(0, 0, 10, 10))); err == nil {
		t.Error("Split accepted an image of the wrong size")
	}
}
