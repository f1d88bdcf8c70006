package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief A quaternion, used to represent rotational orientation. */
type Quaternion Vec4

/**
 * @brief A 4x4 matrix, typically used to represent object transformations.
 * Storage is row-major with the translation in elements 12..14; vectors
 * transform as rows (v' = v * M), so composed transforms apply left to
 * right: v * Local * ParentWorld.
 */
type Mat4 struct {
	Data [16]float32
}

/**
 * @brief Represents the extents of a 3d object in some space.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min Vec3
	/** @brief The maximum extents of the object. */
	Max Vec3
}

// NewExtents3D builds a box from a min and max corner.
func NewExtents3D(min, max Vec3) Extents3D {
	return Extents3D{Min: min, Max: max}
}

// Center returns the midpoint of the box.
func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

// Corners returns the eight corners of the box.
func (e Extents3D) Corners() [8]Vec3 {
	return [8]Vec3{
		{e.Min.X, e.Min.Y, e.Min.Z},
		{e.Max.X, e.Min.Y, e.Min.Z},
		{e.Min.X, e.Max.Y, e.Min.Z},
		{e.Max.X, e.Max.Y, e.Min.Z},
		{e.Min.X, e.Min.Y, e.Max.Z},
		{e.Max.X, e.Min.Y, e.Max.Z},
		{e.Min.X, e.Max.Y, e.Max.Z},
		{e.Max.X, e.Max.Y, e.Max.Z},
	}
}
