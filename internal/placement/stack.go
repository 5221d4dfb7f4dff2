package placement

import "github.com/xelth-com/eckwms3d/internal/geom"

// ProbeHeight is where the downward stacking probe starts.
const ProbeHeight = 100.0

// Body is anything the hit tester can report.
type Body interface {
	EntityID() string
	Bounds() geom.Box
	InZone() bool
}

// Hit is the nearest body along a ray.
type Hit struct {
	ID       string
	Point    geom.Vec3
	Distance float64
	Bounds   geom.Box
}

// HitTester casts rays against the positioned entities of a scene. accept
// filters candidates; nil accepts all.
type HitTester interface {
	CastRay(ray geom.Ray, accept func(Body) bool) (Hit, bool)
}

// FindStackBaseY returns the height a bin dropped at (position.X, position.Z)
// must rest at: the top of the highest zoned entity under that point, other
// than excludeID, or 0 for the floor.
func FindStackBaseY(tester HitTester, position geom.Vec3, excludeID string) float64 {
	if tester == nil {
		return 0
	}
	probe := geom.Down(position.X, position.Z, ProbeHeight)
	hit, ok := tester.CastRay(probe, func(b Body) bool {
		return b.EntityID() != excludeID && b.InZone()
	})
	if !ok {
		return 0
	}
	return hit.Bounds.Max.Y
}
