// Package spritegif converts layered, animated sprites to and from GIF.
//
// # Overview
//
// A Sprite is a stack of layers over a sequence of frames. Each image layer
// holds at most one cel per frame. Saving flattens the visible layers of
// every frame into one raster, reduces it to at most 256 colors and writes a
// GIF89a stream. Loading reads a GIF87a or GIF89a stream back into a sprite
// with one layer and one full-canvas cel per frame. The sprite is indexed
// unless its frames' palettes cannot share indices.
//
// # Quick Start
//
//	import "github.com/gogpu/spritegif"
//
//	s := spritegif.NewSprite(raster.ModeRGB, 32, 32, 1)
//	img := raster.MustImage(raster.ModeRGB, 32, 32)
//	img.SetNRGBA(4, 4, color.NRGBA{R: 255, A: 255})
//	layer := spritegif.NewImageLayer("Layer 1")
//	layer.SetCel(0, spritegif.NewCel(img))
//	s.AddLayer(layer)
//
//	var buf bytes.Buffer
//	err := spritegif.Encode(&buf, s)
//
// # Color Modes
//
// RGB sprites are quantized: a frame with at most 256 distinct colors keeps
// them exactly, in order of first appearance, and larger frames go through a
// deterministic median cut. Indexed sprites are written with their own
// palette and indices unchanged. WithQuantization overrides both choices.
//
// # Transparency
//
// A sprite whose bottom layer is a background layer produces opaque frames.
// Any other sprite gets a transparent color in every frame: the declared
// transparent index of indexed sprites, or index 0 for RGB sprites. An RGB
// frame without transparent pixels whose colors fill all 256 entries is
// written without one. The decoder uses the same rule in reverse, so a round
// trip keeps the background flag.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Cel positions may be negative or exceed the canvas; they are clipped
package spritegif

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
