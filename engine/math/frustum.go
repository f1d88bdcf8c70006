package math

// Plane is a half-space in the form a*x + b*y + c*z + d >= 0.
type Plane struct {
	Normal Vec3
	D      float32
}

// DistanceTo returns the signed distance from the plane to the point,
// positive on the inside.
func (p Plane) DistanceTo(point Vec3) float32 {
	return p.Normal.Dot(point) + p.D
}

// Frustum is the six bounding planes of a view volume, all facing inward.
type Frustum struct {
	Planes [6]Plane
}

/**
 * @brief Extracts the frustum planes from a combined view-projection
 * matrix in the row-vector convention (clip = v * M). Planes are not
 * normalized; containment tests only need the sign.
 */
func NewFrustumFromViewProjection(m Mat4) Frustum {
	col := func(c int) Vec4 {
		return Vec4{m.Data[0+c], m.Data[4+c], m.Data[8+c], m.Data[12+c]}
	}
	c0, c1, c2, c3 := col(0), col(1), col(2), col(3)

	plane := func(v Vec4) Plane {
		return Plane{Normal: Vec3{v.X, v.Y, v.Z}, D: v.W}
	}

	f := Frustum{}
	f.Planes[0] = plane(c3.Add(c0))               // left:   w + x >= 0
	f.Planes[1] = plane(c3.Add(c0.MulScalar(-1))) // right:  w - x >= 0
	f.Planes[2] = plane(c3.Add(c1))               // bottom: w + y >= 0
	f.Planes[3] = plane(c3.Add(c1.MulScalar(-1))) // top:    w - y >= 0
	f.Planes[4] = plane(c3.Add(c2))               // near:   w + z >= 0
	f.Planes[5] = plane(c3.Add(c2.MulScalar(-1))) // far:    w - z >= 0
	return f
}

// IntersectsExtents returns false only when the box is provably outside
// the frustum; borderline boxes are treated as visible.
func (f Frustum) IntersectsExtents(e Extents3D) bool {
	for _, p := range f.Planes {
		// Positive vertex: the box corner furthest along the plane normal.
		v := e.Min
		if p.Normal.X >= 0 {
			v.X = e.Max.X
		}
		if p.Normal.Y >= 0 {
			v.Y = e.Max.Y
		}
		if p.Normal.Z >= 0 {
			v.Z = e.Max.Z
		}
		if p.DistanceTo(v) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether the point lies inside all six planes.
func (f Frustum) ContainsPoint(point Vec3) bool {
	for _, p := range f.Planes {
		if p.DistanceTo(point) < 0 {
			return false
		}
	}
	return true
}

// TransformExtents returns the axis-aligned box enclosing the eight
// corners of e transformed by m.
func TransformExtents(e Extents3D, m Mat4) Extents3D {
	corners := e.Corners()
	out := Extents3D{
		Min: Vec3{Infinity, Infinity, Infinity},
		Max: Vec3{-Infinity, -Infinity, -Infinity},
	}
	for _, c := range corners {
		w := c.Transform(m)
		out.Min.X = Min(out.Min.X, w.X)
		out.Min.Y = Min(out.Min.Y, w.Y)
		out.Min.Z = Min(out.Min.Z, w.Z)
		out.Max.X = Max(out.Max.X, w.X)
		out.Max.Y = Max(out.Max.Y, w.Y)
		out.Max.Z = Max(out.Max.Z, w.Z)
	}
	return out
}
