package math

/**
 * @brief The local transform of an object: position, rotation and scale
 * with a lazily rebuilt local matrix. Parenting is not stored here; the
 * scene graph owns the hierarchy and composes world matrices itself.
 */
type Transform struct {
	Position Vec3
	Rotation Quaternion
	Scale    Vec3
	// Indicates that position, rotation or scale changed and the local
	// matrix needs to be recalculated.
	isDirty bool
	local   Mat4
}

func TransformCreate() *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
	t.local = NewMat4Identity()
	return t
}

func TransformFromPosition(position Vec3) *Transform {
	t := TransformCreate()
	t.SetPosition(position)
	return t
}

func TransformFromRotation(rotation Quaternion) *Transform {
	t := TransformCreate()
	t.SetRotation(rotation)
	return t
}

func TransformFromMatrix(m Mat4) *Transform {
	t := TransformCreate()
	t.local = m
	t.isDirty = false
	return t
}

func (t *Transform) SetPosition(position Vec3) {
	t.Position = position
	t.isDirty = true
}

func (t *Transform) Translate(translation Vec3) {
	t.Position = t.Position.Add(translation)
	t.isDirty = true
}

func (t *Transform) SetRotation(rotation Quaternion) {
	t.Rotation = rotation
	t.isDirty = true
}

func (t *Transform) Rotate(rotation Quaternion) {
	t.Rotation = t.Rotation.Mul(rotation)
	t.isDirty = true
}

func (t *Transform) SetScale(scale Vec3) {
	t.Scale = scale
	t.isDirty = true
}

func (t *Transform) SetPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) {
	t.Position = position
	t.Rotation = rotation
	t.Scale = scale
	t.isDirty = true
}

// GetLocal returns the local matrix, rebuilding it when dirty. A nil
// transform yields identity.
func (t *Transform) GetLocal() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	if t.isDirty {
		m := t.Rotation.ToMat4().Mul(NewMat4Translation(t.Position))
		t.local = NewMat4Scale(t.Scale).Mul(m)
		t.isDirty = false
	}
	return t.local
}
