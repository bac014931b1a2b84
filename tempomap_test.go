package sightread

import "testing"

func approxEqual(a, b, tolerance float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

// TestTempoMapMixedTimeSignatures exercises a map built from time
// signatures at (0, 5/4), (1000, 4/4), (1200, 4/16), resolution 200, and
// checks measure conversion at and around the junctions, including
// extrapolation before the first entry.
func TestTempoMapMixedTimeSignatures(t *testing.T) {
	timeSigs := []TimeSignature{
		{Position: 0, Numerator: 5, Denominator: 4},
		{Position: 1000, Numerator: 4, Denominator: 4},
		{Position: 1200, Numerator: 4, Denominator: 16},
	}
	tm, err := NewTempoMap(200, nil, timeSigs, nil)
	if err != nil {
		t.Fatalf("NewTempoMap: %v", err)
	}

	cases := []struct {
		beat Beat
		want Measure
	}{
		{5.5, 1.125},
		{6.5, 1.75},
		{-1, -0.25},
	}
	for _, c := range cases {
		got := tm.ToMeasures(c.beat)
		if !approxEqual(float64(got), float64(c.want), 1e-9) {
			t.Errorf("ToMeasures(%v) = %v, want %v", c.beat, got, c.want)
		}
	}
}

func TestTempoMapTickBeatRoundTrip(t *testing.T) {
	tm, err := NewTempoMap(192, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewTempoMap: %v", err)
	}
	for _, tick := range []Tick{0, 96, 192, 768, -192, 100000} {
		beat := tm.ToBeats(tick)
		if got := tm.ToTicks(beat); got != tick {
			t.Errorf("ToTicks(ToBeats(%d)) = %d, want %d", tick, got, tick)
		}
	}
}

func TestTempoMapBPMsAndTimeSignaturesAccessors(t *testing.T) {
	bpms := []BPM{{Position: 480, MilliBeatsPerMinute: 140000}}
	timeSigs := []TimeSignature{{Position: 960, Numerator: 3, Denominator: 4}}
	tm, err := NewTempoMap(192, bpms, timeSigs, nil)
	if err != nil {
		t.Fatalf("NewTempoMap: %v", err)
	}

	gotBPMs := tm.BPMs()
	if len(gotBPMs) != 2 || gotBPMs[0].Position != 0 || gotBPMs[1].Position != 480 {
		t.Errorf("BPMs() = %v, want synthetic tick-0 entry plus the supplied one", gotBPMs)
	}
	gotBPMs[0].MilliBeatsPerMinute = 1 // mutate the copy
	if tm.BPMs()[0].MilliBeatsPerMinute == 1 {
		t.Errorf("BPMs() must return a defensive copy")
	}

	gotTS := tm.TimeSignatures()
	if len(gotTS) != 2 || gotTS[0].Position != 0 || gotTS[1].Position != 960 {
		t.Errorf("TimeSignatures() = %v, want synthetic tick-0 entry plus the supplied one", gotTS)
	}
}

func TestTempoMapSpeedupIdentityAndScaling(t *testing.T) {
	bpms := []BPM{{Position: 0, MilliBeatsPerMinute: 120000}}
	tm, err := NewTempoMap(192, bpms, nil, nil)
	if err != nil {
		t.Fatalf("NewTempoMap: %v", err)
	}

	same, err := tm.Speedup(100)
	if err != nil {
		t.Fatalf("Speedup(100): %v", err)
	}
	for _, tick := range []Tick{0, 192, 384, 1000} {
		if got, want := same.ToSecondsFromTick(tick), tm.ToSecondsFromTick(tick); !approxEqual(float64(got), float64(want), 1e-9) {
			t.Errorf("Speedup(100) changed timing at tick %d: got %v, want %v", tick, got, want)
		}
	}

	doubled, err := tm.Speedup(200)
	if err != nil {
		t.Fatalf("Speedup(200): %v", err)
	}
	secAtBeat4Normal := tm.ToSecondsFromTick(768)
	secAtBeat4Doubled := doubled.ToSecondsFromTick(768)
	if !approxEqual(float64(secAtBeat4Doubled)*2, float64(secAtBeat4Normal), 1e-9) {
		t.Errorf("Speedup(200) should halve timestamps: got %v, want %v", secAtBeat4Doubled, secAtBeat4Normal/2)
	}
}

func TestTempoMapRejectsNonPositiveResolution(t *testing.T) {
	if _, err := NewTempoMap(0, nil, nil, nil); err == nil {
		t.Error("expected error for zero resolution")
	}
	if _, err := NewTempoMap(-1, nil, nil, nil); err == nil {
		t.Error("expected error for negative resolution")
	}
}

func TestTempoMapRejectsNonPositiveBPM(t *testing.T) {
	_, err := NewTempoMap(192, []BPM{{Position: 0, MilliBeatsPerMinute: 0}}, nil, nil)
	if err == nil {
		t.Error("expected error for non-positive BPM")
	}
}
