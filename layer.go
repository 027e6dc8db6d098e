package spritegif

import "github.com/gogpu/spritegif/raster"

// Layer is a node of a sprite's layer tree: an *ImageLayer or a *GroupLayer.
// The set is closed; code walking the tree switches on the concrete type.
type Layer interface {
	Name() string
	Visible() bool
	SetVisible(bool)

	sealed()
}

// Cel is the content of one image layer in one frame.
type Cel struct {
	// Image is in the sprite's color mode.
	Image *raster.Image

	// X and Y place the image's top-left corner on the canvas.
	X, Y int

	// Opacity multiplies the layer opacity. Indexed sprites only honor zero.
	Opacity uint8
}

// NewCel returns a fully opaque cel at the canvas origin.
func NewCel(img *raster.Image) *Cel {
	return &Cel{Image: img, Opacity: 0xff}
}

// ImageLayer holds pixels: at most one cel per frame.
type ImageLayer struct {
	name       string
	hidden     bool
	background bool
	opacity    uint8
	cels       map[int]*Cel
}

// NewImageLayer returns a visible, fully opaque layer without cels.
func NewImageLayer(name string) *ImageLayer {
	return &ImageLayer{
		name:    name,
		opacity: 0xff,
		cels:    make(map[int]*Cel),
	}
}

// Name returns the layer name.
func (l *ImageLayer) Name() string { return l.name }

// Visible reports whether the layer is drawn.
func (l *ImageLayer) Visible() bool { return !l.hidden }

// SetVisible shows or hides the layer.
func (l *ImageLayer) SetVisible(v bool) { l.hidden = !v }

// IsBackground reports whether the layer is flagged as background.
// Only a background layer at the bottom of the stack takes effect.
func (l *ImageLayer) IsBackground() bool { return l.background }

// SetBackground flags the layer as background. Background pixels are
// always opaque.
func (l *ImageLayer) SetBackground(b bool) { l.background = b }

// Opacity returns the layer opacity, 0..255.
func (l *ImageLayer) Opacity() uint8 { return l.opacity }

// SetOpacity sets the layer opacity.
func (l *ImageLayer) SetOpacity(a uint8) { l.opacity = a }

// Cel returns the cel for frame, or nil.
func (l *ImageLayer) Cel(frame int) *Cel { return l.cels[frame] }

// SetCel sets or, with a nil cel, removes the cel for frame.
func (l *ImageLayer) SetCel(frame int, c *Cel) {
	if c == nil {
		delete(l.cels, frame)
		return
	}
	l.cels[frame] = c
}

func (*ImageLayer) sealed() {}

// GroupLayer contains other layers, bottom first.
type GroupLayer struct {
	name     string
	hidden   bool
	children []Layer
}

// NewGroupLayer returns a visible group holding children, bottom first.
func NewGroupLayer(name string, children ...Layer) *GroupLayer {
	return &GroupLayer{name: name, children: children}
}

// Name returns the group name.
func (g *GroupLayer) Name() string { return g.name }

// Visible reports whether the group and therefore its children are drawn.
func (g *GroupLayer) Visible() bool { return !g.hidden }

// SetVisible shows or hides the group.
func (g *GroupLayer) SetVisible(v bool) { g.hidden = !v }

// Add appends a layer on top of the group's children.
func (g *GroupLayer) Add(l Layer) { g.children = append(g.children, l) }

// Children returns the layers in the group, bottom first.
func (g *GroupLayer) Children() []Layer { return g.children }

func (*GroupLayer) sealed() {}

// visibleImageLayers lists the image layers that are drawn, bottom first.
func visibleImageLayers(root *GroupLayer) []*ImageLayer {
	if root == nil {
		return nil
	}
	var out []*ImageLayer
	var walk func(l Layer)
	walk = func(l Layer) {
		if l == nil || !l.Visible() {
			return
		}
		switch l := l.(type) {
		case *ImageLayer:
			out = append(out, l)
		case *GroupLayer:
			for _, c := range l.children {
				walk(c)
			}
		}
	}
	walk(root)
	return out
}

// bottomImageLayer returns the first image layer of the tree, drawn or not.
func bottomImageLayer(root *GroupLayer) *ImageLayer {
	if root == nil {
		return nil
	}
	for _, c := range root.children {
		switch c := c.(type) {
		case *ImageLayer:
			return c
		case *GroupLayer:
			if l := bottomImageLayer(c); l != nil {
				return l
			}
		}
	}
	return nil
}
