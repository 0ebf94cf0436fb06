package math

func TransformCreate() *Transform {
	return &Transform{
		Rotation: NewQuatIdentity(),
		Scale:    NewVec3One(),
	}
}

func TransformFromPosition(position Vec3) *Transform {
	t := TransformCreate()
	t.Position = position
	return t
}

func (t *Transform) SetPosition(position Vec3) {
	t.Position = position
}

func (t *Transform) Translate(translation Vec3) {
	t.Position = t.Position.Add(translation)
}

func (t *Transform) SetRotation(rotation Quaternion) {
	t.Rotation = rotation
}

func (t *Transform) SetScale(scale Vec3) {
	t.Scale = scale
}

// SetParent links t under parent. A nil parent detaches it.
func (t *Transform) SetParent(parent *Transform) {
	t.Parent = parent
}

// GlobalPosition composes the parent chain: parent rotation and scale apply to
// the local position before the parent translation.
func (t *Transform) GlobalPosition() Vec3 {
	if t == nil {
		return NewVec3Zero()
	}
	if t.Parent == nil {
		return t.Position
	}
	p := t.Parent
	local := t.Position.Mul(p.GlobalScale())
	return p.GlobalPosition().Add(p.GlobalRotation().Rotate(local))
}

func (t *Transform) GlobalRotation() Quaternion {
	if t == nil {
		return NewQuatIdentity()
	}
	if t.Parent == nil {
		return t.Rotation
	}
	return t.Parent.GlobalRotation().Mul(t.Rotation)
}

func (t *Transform) GlobalScale() Vec3 {
	if t == nil {
		return NewVec3One()
	}
	if t.Parent == nil {
		return t.Scale
	}
	return t.Parent.GlobalScale().Mul(t.Scale)
}
