package quant

import (
	"image/color"

	"github.com/gogpu/spritegif/internal/cache"
	"github.com/gogpu/spritegif/raster"
)

// memoCapacity bounds the nearest-color memo of one Mapper.
const memoCapacity = 1 << 14

// Mapper finds the nearest palette entry for a color.
//
// Distance is squared Euclidean distance in 8-bit RGB; ties resolve to the
// lowest index. One entry can be excluded from the search, which keeps
// opaque colors away from the transparent slot.
type Mapper struct {
	entries []color.NRGBA
	exclude int
	memo    *cache.Cache[uint32, uint8]
}

// NewMapper returns a Mapper over pal. exclude is an index never returned,
// or -1.
func NewMapper(pal *raster.Palette, exclude int) *Mapper {
	entries := make([]color.NRGBA, pal.Len())
	for i := range entries {
		entries[i] = pal.At(i)
	}
	return &Mapper{
		entries: entries,
		exclude: exclude,
		memo:    cache.New[uint32, uint8](memoCapacity),
	}
}

// Index returns the palette index nearest to c. Alpha is ignored.
func (m *Mapper) Index(c color.NRGBA) uint8 {
	key := packRGB(c)
	return m.memo.GetOrCreate(key, func() uint8 { return m.search(c) })
}

func (m *Mapper) search(c color.NRGBA) uint8 {
	best, bestDist := -1, -1
	for i, e := range m.entries {
		if i == m.exclude {
			continue
		}
		d := distance(c, e)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	if best < 0 {
		// Only the excluded entry exists.
		return uint8(max(m.exclude, 0))
	}
	return uint8(best)
}

func distance(a, b color.NRGBA) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

func packRGB(c color.NRGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func unpackRGB(k uint32) color.NRGBA {
	return color.NRGBA{R: uint8(k >> 16), G: uint8(k >> 8), B: uint8(k), A: 0xff}
}
