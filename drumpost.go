package sightread

import "math"

const drumFillJitterSeconds = 0.25

// sustainTrimThreshold reuses the chart HOPO-gap constant: both describe
// "the shortest gap a human can reliably intend," so the two share a
// formula in the original source.
func sustainTrimThreshold(resolution int) Tick {
	return Tick(defaultHopoGap * resolution / defaultHopoGapResolution)
}

// GenerateDrumFills emits one drum fill per note in the track, covering
// from half a measure before the note to the measure boundary at or
// above it. A note within drumFillJitterSeconds of a measure boundary
// snaps to that boundary rather than the next one; a note whose fill
// would end at or before the end of the previous fill does not get a
// duplicate.
func (t *NoteTrack) GenerateDrumFills() {
	tm := t.Global.TempoMap
	var fills []DrumFill
	for _, n := range t.Notes {
		end := snapToMeasureBoundary(tm, n.Position)
		if len(fills) > 0 {
			prev := fills[len(fills)-1]
			if n.Position < prev.Position+prev.Length || end <= prev.Position+prev.Length {
				continue
			}
		}

		endMeasure := tm.ToMeasuresFromTick(end)
		start := tm.ToTicksFromMeasures(Measure(float64(endMeasure) - 0.5))
		fills = append(fills, DrumFill{Position: start, Length: end - start})
	}
	t.DrumFills = fills
}

func snapToMeasureBoundary(tm *TempoMap, tick Tick) Tick {
	measure := tm.ToMeasuresFromTick(tick)
	rounded := Measure(math.Round(float64(measure)))
	roundedTick := tm.ToTicksFromMeasures(rounded)

	tolerance := jitterToleranceTicks(tm, tick)
	if absTick(roundedTick-tick) <= tolerance {
		return roundedTick
	}
	return tm.ToTicksFromMeasures(Measure(math.Ceil(float64(measure))))
}

func jitterToleranceTicks(tm *TempoMap, tick Tick) Tick {
	sec := tm.ToSecondsFromTick(tick)
	later := tm.ToTicksFromSeconds(sec + drumFillJitterSeconds)
	return absTick(later - tick)
}

func absTick(t Tick) Tick {
	if t < 0 {
		return -t
	}
	return t
}

// DisableDynamics strips the Ghost and Accent flags from every note.
func (t *NoteTrack) DisableDynamics() {
	for i := range t.Notes {
		t.Notes[i].Flags &^= FlagGhost | FlagAccent
	}
}

// SnapChords collapses runs of notes whose positions differ by at most
// window ticks into a single note at the earliest position, with every
// lane the run touched ORed together.
func (t *NoteTrack) SnapChords(window Tick) {
	if len(t.Notes) == 0 {
		return
	}

	var out []Note
	run := t.Notes[0]
	for _, n := range t.Notes[1:] {
		if n.Position-run.Position <= window {
			for lane, length := range n.Lengths {
				if length != absentLane {
					run.Lengths[lane] = length
				}
			}
			run.Flags |= n.Flags
			continue
		}
		out = append(out, run)
		run = n
	}
	out = append(out, run)
	t.Notes = out
}

// TrimSustains zeroes any per-lane sustain shorter than the
// resolution-dependent minimum.
func (t *NoteTrack) TrimSustains() {
	threshold := sustainTrimThreshold(t.Global.Resolution)
	for i := range t.Notes {
		for lane, length := range t.Notes[i].Lengths {
			if length != absentLane && length < threshold {
				t.Notes[i].Lengths[lane] = 0
			}
		}
	}
}
