package component

// RenderLayer orders drawing; lower layers draw first and ties fall back to
// entity order.
type RenderLayer struct {
	Index int
}

var RenderLayerComponent = NewComponent[RenderLayer]()
