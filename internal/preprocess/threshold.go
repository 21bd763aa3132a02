package preprocess

import "image"

// AdaptiveThreshold binarizes the image against a locally computed mean.
//
// For each pixel the threshold is the mean intensity of the surrounding
// window x window neighborhood minus offset; pixels above the threshold
// become white (255), the rest black (0). The local mean makes the result
// robust to uneven illumination that defeats a single global threshold.
// window must be odd; even values are bumped to the next odd number.
func AdaptiveThreshold(src *image.Gray, window, offset int) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))

	if width == 0 || height == 0 {
		return dst
	}

	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	radius := window / 2

	// Summed-area table, one extra row/column of zeros
	integral := make([]int64, (width+1)*(height+1))
	stride := width + 1
	for y := 0; y < height; y++ {
		row := src.Pix[y*src.Stride:]
		var rowSum int64
		for x := 0; x < width; x++ {
			rowSum += int64(row[x])
			integral[(y+1)*stride+(x+1)] = integral[y*stride+(x+1)] + rowSum
		}
	}

	for y := 0; y < height; y++ {
		y0 := y - radius
		y1 := y + radius + 1
		if y0 < 0 {
			y0 = 0
		}
		if y1 > height {
			y1 = height
		}

		for x := 0; x < width; x++ {
			x0 := x - radius
			x1 := x + radius + 1
			if x0 < 0 {
				x0 = 0
			}
			if x1 > width {
				x1 = width
			}

			count := int64((x1 - x0) * (y1 - y0))
			sum := integral[y1*stride+x1] - integral[y0*stride+x1] -
				integral[y1*stride+x0] + integral[y0*stride+x0]
			mean := sum / count

			if int64(src.Pix[y*src.Stride+x]) > mean-int64(offset) {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}

	return dst
}

// GlobalThreshold binarizes the image against a single fixed threshold:
// pixels strictly above it become white (255), the rest black (0).
func GlobalThreshold(src *image.Gray, threshold uint8) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := 0; y < bounds.Dy(); y++ {
		srcRow := src.Pix[y*src.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			if srcRow[x] > threshold {
				dstRow[x] = 255
			}
		}
	}

	return dst
}
