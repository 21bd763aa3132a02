package preprocess

import "image"

// CLAHE applies contrast-limited adaptive histogram equalization.
//
// The image is divided into a tiles x tiles grid. Each tile gets its own
// clipped-histogram equalization lookup table; output pixels bilinearly
// interpolate between the four surrounding tile tables so tile seams do not
// show. The clip limit is relative, as in OpenCV: the per-bin cap is
// clipLimit * tileArea / 256, with clipped excess redistributed uniformly.
func CLAHE(src *image.Gray, tiles int, clipLimit float64) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width == 0 || height == 0 {
		return src
	}

	if tiles < 1 {
		tiles = 1
	}
	if tiles > width {
		tiles = width
	}
	if tiles > height {
		tiles = height
	}
	if clipLimit <= 0 {
		clipLimit = 1
	}

	tileW := float64(width) / float64(tiles)
	tileH := float64(height) / float64(tiles)

	// Per-tile equalization lookup tables
	luts := make([][][256]uint8, tiles)
	for ty := 0; ty < tiles; ty++ {
		luts[ty] = make([][256]uint8, tiles)
		for tx := 0; tx < tiles; tx++ {
			x0 := int(float64(tx) * tileW)
			x1 := int(float64(tx+1) * tileW)
			y0 := int(float64(ty) * tileH)
			y1 := int(float64(ty+1) * tileH)
			if tx == tiles-1 {
				x1 = width
			}
			if ty == tiles-1 {
				y1 = height
			}

			luts[ty][tx] = tileLUT(src, x0, y0, x1, y1, clipLimit)
		}
	}

	dst := image.NewGray(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		// Fractional tile coordinate relative to tile centers
		gy := (float64(y)+0.5)/tileH - 0.5
		ty0 := int(gy)
		if gy < 0 {
			ty0 = 0
		}
		fy := gy - float64(ty0)
		if fy < 0 {
			fy = 0
		}
		ty1 := ty0 + 1
		if ty0 > tiles-1 {
			ty0 = tiles - 1
		}
		if ty1 > tiles-1 {
			ty1 = tiles - 1
		}

		for x := 0; x < width; x++ {
			gx := (float64(x)+0.5)/tileW - 0.5
			tx0 := int(gx)
			if gx < 0 {
				tx0 = 0
			}
			fx := gx - float64(tx0)
			if fx < 0 {
				fx = 0
			}
			tx1 := tx0 + 1
			if tx0 > tiles-1 {
				tx0 = tiles - 1
			}
			if tx1 > tiles-1 {
				tx1 = tiles - 1
			}

			v := src.Pix[y*src.Stride+x]

			top := (1-fx)*float64(luts[ty0][tx0][v]) + fx*float64(luts[ty0][tx1][v])
			bottom := (1-fx)*float64(luts[ty1][tx0][v]) + fx*float64(luts[ty1][tx1][v])
			out := (1-fy)*top + fy*bottom

			dst.Pix[y*dst.Stride+x] = uint8(out + 0.5)
		}
	}

	return dst
}

// tileLUT builds the clipped-histogram equalization table for one tile
func tileLUT(src *image.Gray, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	area := (x1 - x0) * (y1 - y0)

	var lut [256]uint8
	if area == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	for y := y0; y < y1; y++ {
		row := src.Pix[y*src.Stride:]
		for x := x0; x < x1; x++ {
			hist[row[x]]++
		}
	}

	// Clip histogram and redistribute the excess uniformly
	clip := int(clipLimit * float64(area) / 256.0)
	if clip < 1 {
		clip = 1
	}

	excess := 0
	for i := range hist {
		if hist[i] > clip {
			excess += hist[i] - clip
			hist[i] = clip
		}
	}

	perBin := excess / 256
	residual := excess % 256
	for i := range hist {
		hist[i] += perBin
		if i < residual {
			hist[i]++
		}
	}

	// Cumulative distribution scaled to the full intensity range
	cum := 0
	for i := range hist {
		cum += hist[i]
		lut[i] = uint8((cum*255 + area/2) / area)
	}

	return lut
}
