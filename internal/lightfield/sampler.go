package lightfield

import (
	"image"
	"math"
)

// sampleTile performs bilinear filtering at pixel position (fx, fy), with
// texel centres at integer+0.5, clamped to the tile rectangle r so that
// neighbouring views never bleed in. Accesses tex.Pix directly for
// performance.
func sampleTile(tex *image.NRGBA, r image.Rectangle, fx, fy float64) (red, green, blue, alpha uint8) {
	fx -= 0.5
	fy -= 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	x1 := clampCoord(x0+1, r.Min.X, r.Max.X-1)
	y1 := clampCoord(y0+1, r.Min.Y, r.Max.Y-1)
	x0 = clampCoord(x0, r.Min.X, r.Max.X-1)
	y0 = clampCoord(y0, r.Min.Y, r.Max.Y-1)

	pix := tex.Pix

	// Four texels
	i00 := tex.PixOffset(x0, y0)
	i10 := tex.PixOffset(x1, y0)
	i01 := tex.PixOffset(x0, y1)
	i11 := tex.PixOffset(x1, y1)

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	fr := float64(pix[i00])*w00 + float64(pix[i10])*w10 + float64(pix[i01])*w01 + float64(pix[i11])*w11
	fg := float64(pix[i00+1])*w00 + float64(pix[i10+1])*w10 + float64(pix[i01+1])*w01 + float64(pix[i11+1])*w11
	fb := float64(pix[i00+2])*w00 + float64(pix[i10+2])*w10 + float64(pix[i01+2])*w01 + float64(pix[i11+2])*w11
	fa := float64(pix[i00+3])*w00 + float64(pix[i10+3])*w10 + float64(pix[i01+3])*w01 + float64(pix[i11+3])*w11

	return uint8(fr + 0.5), uint8(fg + 0.5), uint8(fb + 0.5), uint8(fa + 0.5)
}

func clampCoord(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
