package sightread

import "testing"

func TestBeatSecondRoundTrip(t *testing.T) {
	b := Beat(2.5)
	mbpm := int64(150000)
	s := b.ToSecond(mbpm)
	got := s.ToBeat(mbpm)
	if diff := float64(got - b); diff > 1e-9 || diff < -1e-9 {
		t.Errorf("round trip through Second: got %v, want %v", got, b)
	}
}

func TestFretbarBeatRoundTrip(t *testing.T) {
	rate := 2.0
	f := Fretbar(3.0)
	b := f.ToBeat(rate)
	if got := b.ToFretbar(rate); got != f {
		t.Errorf("round trip through Beat: got %v, want %v", got, f)
	}
}

func TestMeasureBeatRoundTrip(t *testing.T) {
	rate := 4.0
	m := Measure(1.25)
	b := m.ToBeat(rate)
	if got := b.ToMeasure(rate); got != m {
		t.Errorf("round trip through Beat: got %v, want %v", got, m)
	}
}

func TestOdBeatRoundTrip(t *testing.T) {
	rate := 4.0
	o := OdBeat(6.0)
	b := o.ToBeat(rate)
	if got := b.ToOdBeat(rate); got != o {
		t.Errorf("round trip through Beat: got %v, want %v", got, o)
	}
}
