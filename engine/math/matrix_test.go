package math

import "testing"

const tolerance = 1e-5

func TestMat4TranslationMovesPoints(t *testing.T) {
	m := NewMat4Translation(Vec3{X: 1, Y: 2, Z: 3})
	got := Vec3{X: 1, Y: 1, Z: 1}.Transform(m)
	if !got.Compare(Vec3{X: 2, Y: 3, Z: 4}, tolerance) {
		t.Fatalf("translated point = %+v", got)
	}
	// Directions ignore translation.
	dir := Vec3{X: 1}.TransformDirection(m)
	if !dir.Compare(Vec3{X: 1}, tolerance) {
		t.Fatalf("translated direction = %+v", dir)
	}
}

func TestMat4CompositionOrder(t *testing.T) {
	// Row-vector convention: v' = v * A * B applies A first.
	scale := NewMat4Scale(Vec3{X: 2, Y: 2, Z: 2})
	translate := NewMat4Translation(Vec3{X: 10})

	scaleThenTranslate := scale.Mul(translate)
	got := Vec3{X: 1, Y: 1, Z: 1}.Transform(scaleThenTranslate)
	if !got.Compare(Vec3{X: 12, Y: 2, Z: 2}, tolerance) {
		t.Fatalf("scale-then-translate = %+v, want (12,2,2)", got)
	}

	translateThenScale := translate.Mul(scale)
	got = Vec3{X: 1, Y: 1, Z: 1}.Transform(translateThenScale)
	if !got.Compare(Vec3{X: 22, Y: 2, Z: 2}, tolerance) {
		t.Fatalf("translate-then-scale = %+v, want (22,2,2)", got)
	}
}

func TestMat4ThreeWayComposition(t *testing.T) {
	a := NewMat4EulerY(0.7)
	b := NewMat4Translation(Vec3{X: 3, Y: -1, Z: 2})
	c := NewMat4Scale(Vec3{X: 0.5, Y: 0.5, Z: 0.5})

	product := a.Mul(b).Mul(c)
	p := Vec3{X: 1, Y: 2, Z: 3}

	stepwise := p.Transform(a)
	stepwise = stepwise.Transform(b)
	stepwise = stepwise.Transform(c)

	if !p.Transform(product).Compare(stepwise, 1e-4) {
		t.Fatalf("composed product %+v != stepwise %+v", p.Transform(product), stepwise)
	}
}

func TestMat4InverseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"translation", NewMat4Translation(Vec3{X: 5, Y: -3, Z: 1})},
		{"rotation", NewMat4EulerXYZ(0.3, -1.1, 0.5)},
		{"composite", NewMat4Scale(Vec3{X: 2, Y: 3, Z: 4}).Mul(NewMat4EulerY(1.2)).Mul(NewMat4Translation(Vec3{Z: -7}))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.m.Mul(tt.m.Inverse()).Compare(NewMat4Identity(), 1e-4) {
				t.Fatalf("M * M^-1 != I for %+v", tt.m)
			}
		})
	}
}

func TestMat4PerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.1), float32(10)
	proj := NewMat4Perspective(60*Deg2Rad, 1, near, far)

	// View space looks down -z; the near plane maps to ndc z = -1 and
	// the far plane to +1.
	clipNear := Vec4{Z: -near, W: 1}.Transform(proj)
	if Abs(clipNear.Z/clipNear.W+1) > 1e-4 {
		t.Fatalf("near plane ndc z = %v, want -1", clipNear.Z/clipNear.W)
	}
	clipFar := Vec4{Z: -far, W: 1}.Transform(proj)
	if Abs(clipFar.Z/clipFar.W-1) > 1e-3 {
		t.Fatalf("far plane ndc z = %v, want 1", clipFar.Z/clipFar.W)
	}
	// Points behind the camera get a negative w.
	behind := Vec4{Z: near, W: 1}.Transform(proj)
	if behind.W >= 0 {
		t.Fatalf("behind-camera w = %v, want negative", behind.W)
	}
}

func TestQuaternionMatchesEulerRotation(t *testing.T) {
	angle := float32(0.9)
	p := Vec3{X: 1, Y: 0.3, Z: 0.5}
	cases := []struct {
		name  string
		axis  Vec3
		euler func(float32) Mat4
	}{
		{"x", Vec3{X: 1}, NewMat4EulerX},
		{"y", NewVec3Up(), NewMat4EulerY},
		{"z", Vec3{Z: 1}, NewMat4EulerZ},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := NewQuatFromAxisAngle(tc.axis, angle)
			got := p.Transform(q.ToMat4())
			want := p.Transform(tc.euler(angle))
			if !got.Compare(want, 1e-4) {
				t.Fatalf("quaternion rotation %+v != euler rotation %+v", got, want)
			}
			inverse := p.Transform(tc.euler(-angle))
			if got.Compare(inverse, 1e-4) {
				t.Fatalf("quaternion rotation %+v matches the inverse euler rotation", got)
			}
		})
	}
}

func TestQuaternionMulAppliesRightOperandFirst(t *testing.T) {
	tilt := NewQuatFromAxisAngle(Vec3{X: 1}, 0.4)
	spin := NewQuatFromAxisAngle(NewVec3Up(), 1.1)
	p := Vec3{X: 1, Y: 0.3, Z: 0.5}

	got := p.Transform(spin.Mul(tilt).ToMat4())
	want := p.Transform(NewMat4EulerX(0.4).Mul(NewMat4EulerY(1.1)))
	if !got.Compare(want, 1e-4) {
		t.Fatalf("composed quaternion rotation %+v != tilt-then-spin matrix %+v", got, want)
	}
}

func TestFrustumCullsBehindCamera(t *testing.T) {
	view := NewMat4Translation(Vec3{Z: -5})
	proj := NewMat4Perspective(60*Deg2Rad, 1, 0.1, 100)
	frustum := NewFrustumFromViewProjection(view.Mul(proj))

	inside := Extents3D{Min: Vec3{X: -1, Y: -1, Z: -1}, Max: Vec3{X: 1, Y: 1, Z: 1}}
	if !frustum.IntersectsExtents(inside) {
		t.Fatal("origin-centered box should be visible")
	}
	behind := Extents3D{Min: Vec3{Z: 20}, Max: Vec3{X: 1, Y: 1, Z: 21}}
	if frustum.IntersectsExtents(behind) {
		t.Fatal("box behind the camera should be culled")
	}
	farAway := Extents3D{Min: Vec3{Z: -200}, Max: Vec3{X: 1, Y: 1, Z: -199}}
	if frustum.IntersectsExtents(farAway) {
		t.Fatal("box past the far plane should be culled")
	}
}

func TestTransformComposesScaleRotationTranslation(t *testing.T) {
	tr := TransformCreate()
	tr.SetPosition(Vec3{X: 4})
	tr.SetScale(Vec3{X: 2, Y: 2, Z: 2})

	got := Vec3{X: 1}.Transform(tr.GetLocal())
	if !got.Compare(Vec3{X: 6}, tolerance) {
		t.Fatalf("local transform applied = %+v, want scale before translation", got)
	}

	// A quarter turn about Y sits between the scale and the translation.
	tr.SetRotation(NewQuatFromAxisAngle(NewVec3Up(), Pi/2))
	got = Vec3{X: 1}.Transform(tr.GetLocal())
	if !got.Compare(Vec3{X: 4, Z: -2}, 1e-4) {
		t.Fatalf("rotated local transform applied = %+v, want {4 0 -2}", got)
	}
}
