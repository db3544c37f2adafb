package floatutils

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	if v := Clip(2.0, -1.0, 1.0); v != 1.0 {
		t.Errorf("clip above \n\twant(%v) \n\thave(%v)", 1.0, v)
	}
	if v := Clip(-2.0, -1.0, 1.0); v != -1.0 {
		t.Errorf("clip below \n\twant(%v) \n\thave(%v)", -1.0, v)
	}
	if v := Clip(0.5, -1.0, 1.0); v != 0.5 {
		t.Errorf("clip within bounds \n\twant(%v) \n\thave(%v)", 0.5, v)
	}
}

func TestClipInterval(t *testing.T) {
	interval := r1.Interval{Min: -2.0, Max: 2.0}
	if v := ClipInterval(3.0, interval); v != 2.0 {
		t.Errorf("clip above \n\twant(%v) \n\thave(%v)", 2.0, v)
	}
	if v := ClipInterval(-3.0, interval); v != -2.0 {
		t.Errorf("clip below \n\twant(%v) \n\thave(%v)", -2.0, v)
	}
}

func TestClipSliceInPlace(t *testing.T) {
	s := []float64{-5.0, -0.5, 0.0, 0.5, 5.0}
	out := ClipSlice(s, -1.0, 1.0)

	want := []float64{-1.0, -0.5, 0.0, 0.5, 1.0}
	for i := range want {
		if s[i] != want[i] {
			t.Errorf("element %v \n\twant(%v) \n\thave(%v)", i, want[i],
				s[i])
		}
		if out[i] != s[i] {
			t.Error("ClipSlice should clip in place and return its argument")
		}
	}
}

func TestMinMaxMean(t *testing.T) {
	if v := Min(3.0, -1.0, 2.0); v != -1.0 {
		t.Errorf("min \n\twant(%v) \n\thave(%v)", -1.0, v)
	}
	if v := Max(3.0, -1.0, 2.0); v != 3.0 {
		t.Errorf("max \n\twant(%v) \n\thave(%v)", 3.0, v)
	}
	if v := Mean(1.0, 2.0, 3.0); v != 2.0 {
		t.Errorf("mean \n\twant(%v) \n\thave(%v)", 2.0, v)
	}
}
