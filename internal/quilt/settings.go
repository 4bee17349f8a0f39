package quilt

import (
	"fmt"
	"image"

	"go.uber.org/multierr"
)

// Limits accepted by Validate.
const (
	MinSize           = 256
	MaxSize           = 8192
	MinRowColumnCount = 1
	MaxRowColumnCount = 32
	MinViews          = 1
	MaxViews          = 128
	DefaultAspect     = -1.0
)

// Settings describes how views tile into a quilt texture.
// Aspect is the content aspect ratio (width / height); -1 means "use the
// display's aspect".
type Settings struct {
	QuiltWidth  int     `json:"quilt_width"`
	QuiltHeight int     `json:"quilt_height"`
	ViewColumns int     `json:"view_columns"`
	ViewRows    int     `json:"view_rows"`
	NumViews    int     `json:"num_views"`
	Aspect      float64 `json:"aspect"`
	Overscan    bool    `json:"overscan"`
}

// Layout holds the values derived from a Settings' tiling inputs.
type Layout struct {
	ViewWidth             int
	ViewHeight            int
	PaddingHorizontal     int
	PaddingVertical       int
	ViewPortionHorizontal float64
	ViewPortionVertical   float64
}

// New builds Settings, clamping columns and rows into range.
func New(quiltWidth, quiltHeight, columns, rows, numViews int, aspect float64, overscan bool) Settings {
	return Settings{
		QuiltWidth:  quiltWidth,
		QuiltHeight: quiltHeight,
		ViewColumns: clampInt(columns, MinRowColumnCount, MaxRowColumnCount),
		ViewRows:    clampInt(rows, MinRowColumnCount, MaxRowColumnCount),
		NumViews:    numViews,
		Aspect:      aspect,
		Overscan:    overscan,
	}
}

// Setup derives the per-view layout from the quilt size and tiling.
// Zero columns or rows make the whole quilt a single view.
func (s Settings) Setup() Layout {
	var l Layout
	if s.ViewColumns == 0 || s.ViewRows == 0 {
		l.ViewWidth = s.QuiltWidth
		l.ViewHeight = s.QuiltHeight
	} else {
		l.ViewWidth = s.QuiltWidth / s.ViewColumns
		l.ViewHeight = s.QuiltHeight / s.ViewRows
	}
	cols, rows := s.ViewColumns, s.ViewRows
	if cols == 0 || rows == 0 {
		cols, rows = 1, 1
	}
	if s.QuiltWidth != 0 {
		l.ViewPortionHorizontal = float64(cols*l.ViewWidth) / float64(s.QuiltWidth)
	}
	if s.QuiltHeight != 0 {
		l.ViewPortionVertical = float64(rows*l.ViewHeight) / float64(s.QuiltHeight)
	}
	l.PaddingHorizontal = s.QuiltWidth - cols*l.ViewWidth
	l.PaddingVertical = s.QuiltHeight - rows*l.ViewHeight
	return l
}

func (s Settings) ViewWidth() int { return s.Setup().ViewWidth }
func (s Settings) ViewHeight() int { return s.Setup().ViewHeight }
func (s Settings) PaddingHorizontal() int { return s.Setup().PaddingHorizontal }
func (s Settings) PaddingVertical() int { return s.Setup().PaddingVertical }
func (s Settings) ViewPortionHorizontal() float64 { return s.Setup().ViewPortionHorizontal }
func (s Settings) ViewPortionVertical() float64 { return s.Setup().ViewPortionVertical }

// Equal compares the seven primary fields.
func (s Settings) Equal(o Settings) bool {
	return s.QuiltWidth == o.QuiltWidth &&
		s.QuiltHeight == o.QuiltHeight &&
		s.ViewColumns == o.ViewColumns &&
		s.ViewRows == o.ViewRows &&
		s.NumViews == o.NumViews &&
		s.Aspect == o.Aspect &&
		s.Overscan == o.Overscan
}

// TileCount is the number of tiles in the grid, which may exceed NumViews.
func (s Settings) TileCount() int {
	if s.ViewColumns == 0 || s.ViewRows == 0 {
		return 1
	}
	return s.ViewColumns * s.ViewRows
}

// ViewRect returns the tile of view i in image coordinates (origin top-left).
// View 0 sits bottom-left and vertical padding is left at the top.
func (s Settings) ViewRect(i int) image.Rectangle {
	l := s.Setup()
	cols := s.ViewColumns
	if cols == 0 || s.ViewRows == 0 {
		return image.Rect(0, 0, l.ViewWidth, l.ViewHeight)
	}
	reversed := s.TileCount() - i - 1
	x := (i % cols) * l.ViewWidth
	y := (reversed/cols)*l.ViewHeight + l.PaddingVertical
	return image.Rect(x, y, x+l.ViewWidth, y+l.ViewHeight)
}

// Validate reports every field outside the accepted ranges.
func (s Settings) Validate() error {
	var err error
	if s.QuiltWidth < MinSize || s.QuiltWidth > MaxSize {
		err = multierr.Append(err, fmt.Errorf("quilt: width %d outside [%d, %d]", s.QuiltWidth, MinSize, MaxSize))
	}
	if s.QuiltHeight < MinSize || s.QuiltHeight > MaxSize {
		err = multierr.Append(err, fmt.Errorf("quilt: height %d outside [%d, %d]", s.QuiltHeight, MinSize, MaxSize))
	}
	if s.ViewColumns < MinRowColumnCount || s.ViewColumns > MaxRowColumnCount {
		err = multierr.Append(err, fmt.Errorf("quilt: columns %d outside [%d, %d]", s.ViewColumns, MinRowColumnCount, MaxRowColumnCount))
	}
	if s.ViewRows < MinRowColumnCount || s.ViewRows > MaxRowColumnCount {
		err = multierr.Append(err, fmt.Errorf("quilt: rows %d outside [%d, %d]", s.ViewRows, MinRowColumnCount, MaxRowColumnCount))
	}
	if s.NumViews < MinViews || s.NumViews > MaxViews {
		err = multierr.Append(err, fmt.Errorf("quilt: views %d outside [%d, %d]", s.NumViews, MinViews, MaxViews))
	} else if s.NumViews > s.TileCount() {
		err = multierr.Append(err, fmt.Errorf("quilt: %d views do not fit a %dx%d grid", s.NumViews, s.ViewColumns, s.ViewRows))
	}
	return err
}

func (s Settings) String() string {
	return fmt.Sprintf("%dx%d quilt, %dx%d tiles, %d views", s.QuiltWidth, s.QuiltHeight, s.ViewColumns, s.ViewRows, s.NumViews)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
