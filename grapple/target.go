package grapple

import "github.com/jakecoffman/cp"

// ResolveTarget casts the aim ray out to the configured range and returns
// the first blocking hit. It never changes state, so HUD code may call it
// every frame, including mid-flight.
func (c *Controller) ResolveTarget() (Hit, bool) {
	if c == nil {
		return Hit{}, false
	}
	origin, dir, ok := c.aim.Aim()
	if !ok || dir.LengthSq() == 0 {
		return Hit{}, false
	}
	end := origin.Add(dir.Normalize().Mult(c.activeConfig().MaxRange))
	return c.query.RayCast(origin, end)
}

// IsObstructed sweeps the obstruction box from the host along dir by the
// configured offset.
func (c *Controller) IsObstructed(dir cp.Vector) bool {
	if c == nil || dir.LengthSq() == 0 {
		return false
	}
	cfg := c.activeConfig()
	from := c.host.Position()
	to := from.Add(dir.Normalize().Mult(cfg.ObstructionOffset))
	return c.query.SweepBox(from, to, cfg.ObstructionHalfExtents)
}
