package quant

import (
	"image/color"
	"slices"
)

// refinePasses is the number of k-means iterations run after the median cut.
const refinePasses = 2

// bucket is one distinct opaque color and its pixel count.
type bucket struct {
	key uint32
	rgb [3]uint8
	n   int
}

// box is a contiguous run of buckets owned by one palette entry.
type box struct {
	buckets []bucket
}

func (b box) count() int {
	n := 0
	for _, e := range b.buckets {
		n += e.n
	}
	return n
}

// widest returns the channel with the largest value range and that range.
// Ties resolve to the lower channel (R, then G, then B).
func (b box) widest() (axis int, span int) {
	for ch := 0; ch < 3; ch++ {
		lo, hi := 255, 0
		for _, e := range b.buckets {
			v := int(e.rgb[ch])
			lo = min(lo, v)
			hi = max(hi, v)
		}
		if hi-lo > span || ch == 0 {
			axis, span = ch, hi-lo
		}
	}
	return axis, span
}

func (b box) mean() color.NRGBA {
	var sum [3]int
	total := 0
	for _, e := range b.buckets {
		for ch := range sum {
			sum[ch] += int(e.rgb[ch]) * e.n
		}
		total += e.n
	}
	if total == 0 {
		return color.NRGBA{A: 0xff}
	}
	return color.NRGBA{
		R: uint8((sum[0] + total/2) / total),
		G: uint8((sum[1] + total/2) / total),
		B: uint8((sum[2] + total/2) / total),
		A: 0xff,
	}
}

// medianCut reduces buckets to at most n representative colors.
// buckets must be sorted by key; the result depends only on their contents.
func medianCut(buckets []bucket, n int) []color.NRGBA {
	boxes := []box{{buckets: buckets}}
	for len(boxes) < n {
		pick, pickSpan, pickCount := -1, -1, -1
		for i, b := range boxes {
			if len(b.buckets) < 2 {
				continue
			}
			_, span := b.widest()
			c := b.count()
			if span > pickSpan || (span == pickSpan && c > pickCount) {
				pick, pickSpan, pickCount = i, span, c
			}
		}
		if pick < 0 {
			break
		}
		lo, hi := split(boxes[pick])
		boxes[pick] = lo
		boxes = append(boxes, hi)
	}

	colors := make([]color.NRGBA, len(boxes))
	for i, b := range boxes {
		colors[i] = b.mean()
	}
	return refine(buckets, colors)
}

// split cuts a box at the pixel-weighted median of its widest channel.
func split(b box) (box, box) {
	axis, _ := b.widest()
	slices.SortFunc(b.buckets, func(x, y bucket) int {
		if d := int(x.rgb[axis]) - int(y.rgb[axis]); d != 0 {
			return d
		}
		return int(x.key) - int(y.key)
	})

	half := (b.count() + 1) / 2
	acc, cut := 0, 1
	for i, e := range b.buckets {
		acc += e.n
		if acc >= half {
			cut = i + 1
			break
		}
	}
	cut = min(max(cut, 1), len(b.buckets)-1)
	return box{buckets: b.buckets[:cut]}, box{buckets: b.buckets[cut:]}
}

// refine moves each representative to the weighted mean of the colors
// nearest to it. Entries that attract no color keep their value.
func refine(buckets []bucket, colors []color.NRGBA) []color.NRGBA {
	for pass := 0; pass < refinePasses; pass++ {
		sums := make([][4]int, len(colors))
		for _, e := range buckets {
			c := color.NRGBA{R: e.rgb[0], G: e.rgb[1], B: e.rgb[2]}
			best, bestDist := 0, -1
			for i, p := range colors {
				if d := distance(c, p); bestDist < 0 || d < bestDist {
					best, bestDist = i, d
				}
			}
			for ch := 0; ch < 3; ch++ {
				sums[best][ch] += int(e.rgb[ch]) * e.n
			}
			sums[best][3] += e.n
		}
		for i, s := range sums {
			if s[3] == 0 {
				continue
			}
			colors[i] = color.NRGBA{
				R: uint8((s[0] + s[3]/2) / s[3]),
				G: uint8((s[1] + s[3]/2) / s[3]),
				B: uint8((s[2] + s[3]/2) / s[3]),
				A: 0xff,
			}
		}
	}
	return colors
}
