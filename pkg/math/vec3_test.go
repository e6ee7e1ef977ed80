package math

import (
	gomath "math"
	"testing"
)

func TestVec3Add(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}
	got := a.Add(b)
	want := Vec3{5, 7, 9}
	if got != want {
		t.Errorf("Vec3.Add() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}

	zero := Vec3{}.Normalize()
	if !zero.IsZero() {
		t.Errorf("Normalize of zero vector = %v, want zero", zero)
	}
}

func TestVec3MirrorFlip(t *testing.T) {
	v := Vec3{1, 2, 3}
	tests := []struct {
		bits int
		want Vec3
	}{
		{0, Vec3{1, 2, 3}},
		{1, Vec3{-1, 2, 3}},
		{2, Vec3{1, -2, 3}},
		{4, Vec3{1, 2, -3}},
		{7, Vec3{-1, -2, -3}},
	}
	for _, tt := range tests {
		got := v.MirrorFlip(tt.bits)
		if got != tt.want {
			t.Errorf("MirrorFlip(%d) = %v, want %v", tt.bits, got, tt.want)
		}
	}
}

func TestSafeAcos(t *testing.T) {
	if got := SafeAcos(1.5); got != 0 {
		t.Errorf("SafeAcos(1.5) = %v, want 0", got)
	}
	if got := SafeAcos(-1.5); got != float32(gomath.Pi) {
		t.Errorf("SafeAcos(-1.5) = %v, want pi", got)
	}
	got := SafeAcos(0)
	want := float32(gomath.Pi / 2)
	if gomath.Abs(float64(got-want)) > 1e-6 {
		t.Errorf("SafeAcos(0) = %v, want %v", got, want)
	}
}

func TestSmoothstep(t *testing.T) {
	if got := Smoothstep(0); got != 0 {
		t.Errorf("Smoothstep(0) = %v, want 0", got)
	}
	if got := Smoothstep(1); got != 1 {
		t.Errorf("Smoothstep(1) = %v, want 1", got)
	}
	if got := Smoothstep(0.5); got != 0.5 {
		t.Errorf("Smoothstep(0.5) = %v, want 0.5", got)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-0.5, 0, 1); got != 0 {
		t.Errorf("Clamp(-0.5) = %v, want 0", got)
	}
	if got := Clamp(1.5, 0, 1); got != 1 {
		t.Errorf("Clamp(1.5) = %v, want 1", got)
	}
	if got := Clamp(0.25, 0, 1); got != 0.25 {
		t.Errorf("Clamp(0.25) = %v, want 0.25", got)
	}
}
