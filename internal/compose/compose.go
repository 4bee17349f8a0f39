// Package compose tiles rendered views into a quilt and cuts quilts back
// into views.
package compose

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"holoquilt/internal/postprocess"
	"holoquilt/internal/quilt"
)

// Compose draws views[i] into the tile of view i. Views are scaled to the
// tile size when they differ. Missing views leave their tiles transparent.
func Compose(s quilt.Settings, views []image.Image) (*image.NRGBA, error) {
	if s.QuiltWidth <= 0 || s.QuiltHeight <= 0 {
		return nil, fmt.Errorf("compose: invalid quilt size %dx%d", s.QuiltWidth, s.QuiltHeight)
	}
	if len(views) > s.NumViews {
		return nil, fmt.Errorf("compose: %d views for a %d view quilt", len(views), s.NumViews)
	}
	if s.NumViews > s.TileCount() {
		return nil, fmt.Errorf("compose: %d views do not fit %s", s.NumViews, s)
	}

	l := s.Setup()
	dst := image.NewNRGBA(image.Rect(0, 0, s.QuiltWidth, s.QuiltHeight))
	for i, v := range views {
		if v == nil {
			continue
		}
		tile := postprocess.Fit(v, l.ViewWidth, l.ViewHeight)
		draw.Draw(dst, s.ViewRect(i), tile, image.Point{}, draw.Src)
	}
	return dst, nil
}

// Split cuts q into NumViews images of the view size. q must have the
// quilt's dimensions.
func Split(s quilt.Settings, q image.Image) ([]*image.NRGBA, error) {
	b := q.Bounds()
	if b.Dx() != s.QuiltWidth || b.Dy() != s.QuiltHeight {
		return nil, fmt.Errorf("compose: quilt image is %dx%d, settings expect %dx%d", b.Dx(), b.Dy(), s.QuiltWidth, s.QuiltHeight)
	}
	if s.NumViews < 1 || s.NumViews > s.TileCount() {
		return nil, fmt.Errorf("compose: %d views do not fit %s", s.NumViews, s)
	}

	l := s.Setup()
	views := make([]*image.NRGBA, s.NumViews)
	for i := range views {
		r := s.ViewRect(i).Add(b.Min)
		v := image.NewNRGBA(image.Rect(0, 0, l.ViewWidth, l.ViewHeight))
		draw.Draw(v, v.Bounds(), q, r.Min, draw.Src)
		views[i] = v
	}
	return views, nil
}
