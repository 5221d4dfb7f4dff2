// Package geom holds the small amount of 3D math the scene needs:
// vectors, rays and axis-aligned boxes.
package geom

import "math"

// Vec3 is a point or direction in world space (meters). Y is up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Length() float64      { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length; the zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Ray is a half-line starting at Origin.
type Ray struct {
	Origin    Vec3 `json:"origin"`
	Direction Vec3 `json:"direction"`
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 { return r.Origin.Add(r.Direction.Scale(t)) }

// Down builds a vertical probe cast from the given height above (x, z).
func Down(x, z, fromY float64) Ray {
	return Ray{Origin: V(x, fromY, z), Direction: V(0, -1, 0)}
}

// IntersectGround intersects the ray with the horizontal plane y = planeY.
func (r Ray) IntersectGround(planeY float64) (Vec3, bool) {
	if r.Direction.Y == 0 {
		return Vec3{}, false
	}
	t := (planeY - r.Origin.Y) / r.Direction.Y
	if t < 0 {
		return Vec3{}, false
	}
	p := r.At(t)
	p.Y = planeY
	return p, true
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// BoxFromBase builds a box whose bottom face is centered on base.
func BoxFromBase(base Vec3, width, height, depth float64) Box {
	return Box{
		Min: V(base.X-width/2, base.Y, base.Z-depth/2),
		Max: V(base.X+width/2, base.Y+height, base.Z+depth/2),
	}
}

func (b Box) Center() Vec3 {
	return V((b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2, (b.Min.Z+b.Max.Z)/2)
}

// IntersectRay runs the slab test and returns the entry distance.
// A ray starting inside the box reports t = 0.
func (b Box) IntersectRay(r Ray) (float64, bool) {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	axes := [3][4]float64{
		{r.Origin.X, r.Direction.X, b.Min.X, b.Max.X},
		{r.Origin.Y, r.Direction.Y, b.Min.Y, b.Max.Y},
		{r.Origin.Z, r.Direction.Z, b.Min.Z, b.Max.Z},
	}
	for _, a := range axes {
		o, d, lo, hi := a[0], a[1], a[2], a[3]
		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return 0, true
	}
	return tmin, true
}
