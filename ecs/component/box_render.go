package component

import "image/color"

// BoxRender draws a filled rectangle centred on the entity transform.
type BoxRender struct {
	Width  float64
	Height float64
	Color  color.RGBA
	// Circle draws a disc of diameter Width instead.
	Circle bool
}

var BoxRenderComponent = NewComponent[BoxRender]()
