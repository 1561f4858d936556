package sprite

import (
	"math"
	"testing"
)

func TestMatrixIdentity(t *testing.T) {
	m := Identity()
	if !m.IsIdentity() {
		t.Error("Identity().IsIdentity() = false")
	}
	p := m.TransformPoint(Point{X: 3, Y: 4})
	if p != (Point{X: 3, Y: 4}) {
		t.Errorf("identity transformed point to %v", p)
	}
}

func TestMatrixTranslate(t *testing.T) {
	p := Translate(10, -5).TransformPoint(Point{X: 1, Y: 2})
	if p != (Point{X: 11, Y: -3}) {
		t.Errorf("Translate(10,-5) point = %v, want (11,-3)", p)
	}
}

func TestMatrixScale(t *testing.T) {
	p := Scale(2, 3).TransformPoint(Point{X: 4, Y: 5})
	if p != (Point{X: 8, Y: 15}) {
		t.Errorf("Scale(2,3) point = %v, want (8,15)", p)
	}
}

func TestMatrixRotate(t *testing.T) {
	// 90 degrees maps (1,0) to (0,1).
	p := Rotate(math.Pi / 2).TransformPoint(Point{X: 1, Y: 0})
	if math.Abs(p.X) > 1e-9 || math.Abs(p.Y-1) > 1e-9 {
		t.Errorf("Rotate(pi/2)(1,0) = %v, want (0,1)", p)
	}
}

func TestMatrixMultiplyOrder(t *testing.T) {
	// Translate then scale is not scale then translate.
	ts := Translate(10, 0).Multiply(Scale(2, 2))
	st := Scale(2, 2).Multiply(Translate(10, 0))

	p := Point{X: 1, Y: 1}
	got1 := ts.TransformPoint(p)
	got2 := st.TransformPoint(p)
	if got1 != (Point{X: 12, Y: 2}) {
		t.Errorf("translate*scale point = %v, want (12,2)", got1)
	}
	if got2 != (Point{X: 22, Y: 2}) {
		t.Errorf("scale*translate point = %v, want (22,2)", got2)
	}
}

func TestMatrixMultiplyIdentity(t *testing.T) {
	m := Translate(3, 4).Multiply(Rotate(1))
	if got := m.Multiply(Identity()); got != m {
		t.Errorf("m * I = %v, want %v", got, m)
	}
	if got := Identity().Multiply(m); got != m {
		t.Errorf("I * m = %v, want %v", got, m)
	}
}
