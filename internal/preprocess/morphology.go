package preprocess

import "image"

// Dilate grows white regions by taking the maximum intensity over a
// kernel x kernel neighborhood anchored at the pixel.
func Dilate(src *image.Gray, kernel int) *image.Gray {
	return morph(src, kernel, true)
}

// Erode shrinks white regions by taking the minimum intensity over a
// kernel x kernel neighborhood anchored at the pixel.
func Erode(src *image.Gray, kernel int) *image.Gray {
	return morph(src, kernel, false)
}

// Close applies a morphological closing (dilate then erode) with a square
// kernel. On a binarized captcha this reconnects character strokes broken
// by thresholding and fills pinhole noise inside glyphs.
func Close(src *image.Gray, kernel int) *image.Gray {
	if kernel <= 1 {
		return src
	}
	return Erode(Dilate(src, kernel), kernel)
}

// Open applies a morphological opening (erode then dilate) with a square
// kernel, removing isolated noise pixels smaller than the kernel.
func Open(src *image.Gray, kernel int) *image.Gray {
	if kernel <= 1 {
		return src
	}
	return Dilate(Erode(src, kernel), kernel)
}

func morph(src *image.Gray, kernel int, dilate bool) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))

	if kernel < 1 {
		kernel = 1
	}
	// Anchor matches an origin-anchored square structuring element
	lo := -(kernel - 1) / 2
	hi := kernel / 2

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var best uint8
			if !dilate {
				best = 255
			}

			for dy := lo; dy <= hi; dy++ {
				yy := y + dy
				if yy < 0 || yy >= height {
					continue
				}
				row := src.Pix[yy*src.Stride:]
				for dx := lo; dx <= hi; dx++ {
					xx := x + dx
					if xx < 0 || xx >= width {
						continue
					}
					v := row[xx]
					if dilate {
						if v > best {
							best = v
						}
					} else {
						if v < best {
							best = v
						}
					}
				}
			}

			dst.Pix[y*dst.Stride+x] = best
		}
	}

	return dst
}
