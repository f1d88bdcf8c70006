package math

/**
 * @brief Creates an identity quaternion.
 */
func NewQuatIdentity() Quaternion {
	return Quaternion{0, 0, 0, 1.0}
}

/**
 * @brief Creates a quaternion from the given axis and angle.
 *
 * @param axis The axis of rotation, assumed normalized.
 * @param angle The angle of rotation in radians.
 */
func NewQuatFromAxisAngle(axis Vec3, angle float32) Quaternion {
	halfAngle := 0.5 * angle
	s := Sin(halfAngle)
	c := Cos(halfAngle)
	return Quaternion{s * axis.X, s * axis.Y, s * axis.Z, c}
}

func (q Quaternion) Normal() float32 {
	return Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

func (q Quaternion) Normalized() Quaternion {
	n := q.Normal()
	if n == 0 {
		return NewQuatIdentity()
	}
	return Quaternion{q.X / n, q.Y / n, q.Z / n, q.W / n}
}

func (q Quaternion) Mul(other Quaternion) Quaternion {
	out := Quaternion{}
	out.X = q.X*other.W + q.Y*other.Z - q.Z*other.Y + q.W*other.X
	out.Y = -q.X*other.Z + q.Y*other.W + q.Z*other.X + q.W*other.Y
	out.Z = q.X*other.Y - q.Y*other.X + q.Z*other.W + q.W*other.Z
	out.W = -q.X*other.X - q.Y*other.Y - q.Z*other.Z + q.W*other.W
	return out
}

/**
 * @brief Creates a rotation matrix from the given quaternion, which is
 * normalized first.
 */
func (q Quaternion) ToMat4() Mat4 {
	out := NewMat4Identity()
	n := q.Normalized()

	// Row-vector layout: rotating v by q is v.Transform(q.ToMat4()).
	out.Data[0] = 1.0 - 2.0*n.Y*n.Y - 2.0*n.Z*n.Z
	out.Data[1] = 2.0*n.X*n.Y + 2.0*n.Z*n.W
	out.Data[2] = 2.0*n.X*n.Z - 2.0*n.Y*n.W

	out.Data[4] = 2.0*n.X*n.Y - 2.0*n.Z*n.W
	out.Data[5] = 1.0 - 2.0*n.X*n.X - 2.0*n.Z*n.Z
	out.Data[6] = 2.0*n.Y*n.Z + 2.0*n.X*n.W

	out.Data[8] = 2.0*n.X*n.Z + 2.0*n.Y*n.W
	out.Data[9] = 2.0*n.Y*n.Z - 2.0*n.X*n.W
	out.Data[10] = 1.0 - 2.0*n.X*n.X - 2.0*n.Y*n.Y

	return out
}
