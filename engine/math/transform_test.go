package math

import "testing"

func TestTransform_GlobalPosition(t *testing.T) {
	parent := TransformFromPosition(NewVec3(10, 0, 0))
	parent.SetScale(NewVec3(2, 2, 2))
	parent.SetRotation(NewQuatFromAxisAngle(NewVec3(0, 0, 1), 3.14159265/2))

	child := TransformFromPosition(NewVec3(1, 0, 0))
	child.SetParent(parent)

	// Scaled to (2,0,0), rotated 90 degrees about z to (0,2,0), then translated.
	if got := child.GlobalPosition(); !got.Compare(NewVec3(10, 2, 0), 0.0001) {
		t.Fatalf("global position = %+v", got)
	}
	if got := child.GlobalScale(); got != NewVec3(2, 2, 2) {
		t.Fatalf("global scale = %+v", got)
	}

	child.SetParent(nil)
	if got := child.GlobalPosition(); got != NewVec3(1, 0, 0) {
		t.Fatalf("detached position = %+v", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 || Clamp(-1.5, 0, 3) != 0 || Clamp(2, 0, 3) != 2 {
		t.Fatalf("clamp out of range")
	}
	if Abs(float32(-2)) != 2 || Abs(-3) != 3 {
		t.Fatalf("abs")
	}
}
