package golden

// Port of the pixelmatch perceptual diff: pixels are compared in YIQ space
// and differences that look like anti-aliasing are reported separately.

type pixelmatchOptions struct {
	threshold float64
	includeAA bool
	alpha     float64
	aaColor   [3]uint8
	diffColor [3]uint8
}

// pixelmatch compares two width*height NRGBA buffers and writes a diff
// visualisation into out. Returns the number of differing pixels.
func pixelmatch(img1, img2, out []uint8, width, height int, opts pixelmatchOptions) int {
	// 35215 is the maximum possible YIQ delta between two colours.
	maxDelta := 35215 * opts.threshold * opts.threshold
	diff := 0

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pos := (y*width + x) * 4

			delta := colorDelta(img1, img2, pos, pos, false)
			if abs(delta) > maxDelta {
				if !opts.includeAA && (antialiased(img1, x, y, width, height, img2) ||
					antialiased(img2, x, y, width, height, img1)) {
					drawPixel(out, pos, opts.aaColor)
					continue
				}
				drawPixel(out, pos, opts.diffColor)
				diff++
				continue
			}
			drawGrayPixel(img1, pos, opts.alpha, out)
		}
	}
	return diff
}

// antialiased reports whether the pixel at (x1, y1) of img looks like part of
// an anti-aliased edge, based on its neighbours in img and img2.
func antialiased(img []uint8, x1, y1, width, height int, img2 []uint8) bool {
	x0, y0 := max(x1-1, 0), max(y1-1, 0)
	x2, y2 := min(x1+1, width-1), min(y1+1, height-1)
	pos := (y1*width + x1) * 4

	zeroes := 0
	if x1 == x0 || x1 == x2 || y1 == y0 || y1 == y2 {
		zeroes = 1
	}

	var minDelta, maxDelta float64
	var minX, minY, maxX, maxY int

	for x := x0; x <= x2; x++ {
		for y := y0; y <= y2; y++ {
			if x == x1 && y == y1 {
				continue
			}
			delta := colorDelta(img, img, pos, (y*width+x)*4, true)
			switch {
			case delta == 0:
				zeroes++
				if zeroes > 2 {
					return false
				}
			case delta < minDelta:
				minDelta, minX, minY = delta, x, y
			case delta > maxDelta:
				maxDelta, maxX, maxY = delta, x, y
			}
		}
	}

	// No both darker and brighter neighbours: not anti-aliasing.
	if minDelta == 0 || maxDelta == 0 {
		return false
	}

	return (hasManySiblings(img, minX, minY, width, height) && hasManySiblings(img2, minX, minY, width, height)) ||
		(hasManySiblings(img, maxX, maxY, width, height) && hasManySiblings(img2, maxX, maxY, width, height))
}

// hasManySiblings reports whether the pixel has three or more identical neighbours.
func hasManySiblings(img []uint8, x1, y1, width, height int) bool {
	x0, y0 := max(x1-1, 0), max(y1-1, 0)
	x2, y2 := min(x1+1, width-1), min(y1+1, height-1)
	pos := (y1*width + x1) * 4

	zeroes := 0
	if x1 == x0 || x1 == x2 || y1 == y0 || y1 == y2 {
		zeroes = 1
	}

	for x := x0; x <= x2; x++ {
		for y := y0; y <= y2; y++ {
			if x == x1 && y == y1 {
				continue
			}
			pos2 := (y*width + x) * 4
			if img[pos] == img[pos2] && img[pos+1] == img[pos2+1] &&
				img[pos+2] == img[pos2+2] && img[pos+3] == img[pos2+3] {
				zeroes++
			}
			if zeroes > 2 {
				return true
			}
		}
	}
	return false
}

// colorDelta returns the squared YIQ distance between two pixels, negative
// when the first pixel is brighter. With yOnly it returns the luma delta only.
func colorDelta(img1, img2 []uint8, k, m int, yOnly bool) float64 {
	r1, g1, b1, a1 := float64(img1[k]), float64(img1[k+1]), float64(img1[k+2]), float64(img1[k+3])
	r2, g2, b2, a2 := float64(img2[m]), float64(img2[m+1]), float64(img2[m+2]), float64(img2[m+3])

	if a1 == a2 && r1 == r2 && g1 == g2 && b1 == b2 {
		return 0
	}

	if a1 < 255 {
		a1 /= 255
		r1, g1, b1 = blend(r1, a1), blend(g1, a1), blend(b1, a1)
	}
	if a2 < 255 {
		a2 /= 255
		r2, g2, b2 = blend(r2, a2), blend(g2, a2), blend(b2, a2)
	}

	y1, y2 := rgb2y(r1, g1, b1), rgb2y(r2, g2, b2)
	y := y1 - y2
	if yOnly {
		return y
	}

	i := rgb2i(r1, g1, b1) - rgb2i(r2, g2, b2)
	q := rgb2q(r1, g1, b1) - rgb2q(r2, g2, b2)
	delta := 0.5053*y*y + 0.299*i*i + 0.1957*q*q
	if y1 > y2 {
		return -delta
	}
	return delta
}

func rgb2y(r, g, b float64) float64 { return r*0.29889531 + g*0.58662247 + b*0.11448223 }
func rgb2i(r, g, b float64) float64 { return r*0.59597799 - g*0.27417610 - b*0.32180189 }
func rgb2q(r, g, b float64) float64 { return r*0.21147017 - g*0.52261711 + b*0.31114694 }

// blend composites a colour channel over white.
func blend(c, a float64) float64 {
	return 255 + (c-255)*a
}

func drawPixel(out []uint8, pos int, c [3]uint8) {
	out[pos] = c[0]
	out[pos+1] = c[1]
	out[pos+2] = c[2]
	out[pos+3] = 255
}

func drawGrayPixel(img []uint8, pos int, alpha float64, out []uint8) {
	r, g, b, a := float64(img[pos]), float64(img[pos+1]), float64(img[pos+2]), float64(img[pos+3])
	v := uint8(blend(rgb2y(r, g, b), alpha*a/255))
	drawPixel(out, pos, [3]uint8{v, v, v})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
