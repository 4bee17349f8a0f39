package lightfield

import (
	"context"
	"fmt"
	"image"
	"math"
	"runtime"
	"sync"

	"github.com/nfnt/resize"

	"holoquilt/internal/postprocess"
)

// Render interleaves a quilt into a width x height lightfield image the way
// the display's shader does: each RGB subpixel picks the view its lenticule
// points at and samples that view's tile. Rows are split across workers;
// workers <= 0 means one per CPU.
func Render(ctx context.Context, q image.Image, u Uniforms, width, height, workers int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("lightfield: invalid output size %dx%d", width, height)
	}
	if u.Tile[0] < 1 || u.Tile[1] < 1 || u.Tile[2] < 1 || u.Tile[2] > u.Tile[0]*u.Tile[1] {
		return nil, fmt.Errorf("lightfield: invalid tiling %v", u.Tile)
	}
	for _, v := range []float64{u.Pitch, u.Slope, u.Center, u.Subp} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("lightfield: non-finite uniforms %s", u)
		}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	src := postprocess.ToNRGBA(q)
	if src.Rect.Empty() {
		return nil, fmt.Errorf("lightfield: empty quilt")
	}
	tiles := newTileGrid(src.Rect.Dx(), src.Rect.Dy(), u)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	rowChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rowChan {
				renderRow(dst, src, tiles, u, y)
			}
		}()
	}

	var err error
	for y := 0; y < height; y++ {
		if err = ctx.Err(); err != nil {
			break
		}
		rowChan <- y
	}
	close(rowChan)
	wg.Wait()
	if err != nil {
		return nil, err
	}
	return dst, nil
}

func renderRow(dst, src *image.NRGBA, tiles tileGrid, u Uniforms, y int) {
	width, height := dst.Rect.Dx(), dst.Rect.Dy()
	// Screen v points up.
	sy := 1 - (float64(y)+0.5)/float64(height)
	for x := 0; x < width; x++ {
		sx := (float64(x) + 0.5) / float64(width)
		i := dst.PixOffset(x, y)
		dst.Pix[i+3] = 255

		cx, cy, ok := u.contentUV(sx, sy)
		if !ok {
			continue
		}
		for c := 0; c < 3; c++ {
			view := u.ViewAt(sx, sy, c)
			fx, fy, r := tiles.locate(view, cx, cy)
			red, green, blue, _ := sampleTile(src, r, fx, fy)
			dst.Pix[i+c] = [3]uint8{red, green, blue}[c]
		}
	}
}

// tileGrid maps views and in-view UVs to quilt pixel positions.
type tileGrid struct {
	cols       int
	height     float64
	viewWidth  float64
	viewHeight float64
}

func newTileGrid(quiltWidth, quiltHeight int, u Uniforms) tileGrid {
	cols, rows := u.Tile[0], u.Tile[1]
	return tileGrid{
		cols:       int(cols),
		height:     float64(quiltHeight),
		viewWidth:  float64(quiltWidth) * u.ViewPortion[0] / cols,
		viewHeight: float64(quiltHeight) * u.ViewPortion[1] / rows,
	}
}

// locate returns the pixel position of (cx, cy) inside view's tile together
// with the tile's rectangle. View 0 is the bottom-left tile.
func (g tileGrid) locate(view int, cx, cy float64) (float64, float64, image.Rectangle) {
	col := float64(view % g.cols)
	row := float64(view / g.cols)
	x0 := col * g.viewWidth
	top := g.height - (row+1)*g.viewHeight
	r := image.Rect(int(x0), int(top), int(x0+g.viewWidth), int(top+g.viewHeight))
	if r.Dx() < 1 {
		r.Max.X = r.Min.X + 1
	}
	if r.Dy() < 1 {
		r.Max.Y = r.Min.Y + 1
	}
	return x0 + cx*g.viewWidth, g.height - (row+cy)*g.viewHeight, r
}

// Preview returns a thumbnail of img, width pixels wide, keeping the aspect
// ratio.
func Preview(img image.Image, width int) *image.NRGBA {
	if width <= 0 || img.Bounds().Dx() <= width {
		return postprocess.ToNRGBA(img)
	}
	return postprocess.ToNRGBA(resize.Resize(uint(width), 0, img, resize.Lanczos3))
}
