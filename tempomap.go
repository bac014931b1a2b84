package sightread

import "sort"

// BPM is a tempo change at a tick. MilliBeatsPerMinute is stored as an
// integer (thousandths of a beat per minute) so that Speedup can scale
// tempo without floating point drift.
type BPM struct {
	Position            Tick
	MilliBeatsPerMinute int64
}

// TimeSignature is a time-signature change at a tick.
type TimeSignature struct {
	Position              Tick
	Numerator, Denominator int
}

type axisPoint[T ~float64] struct {
	beat  Beat
	value T
}

// TempoMap converts between the six time coordinates defined in time.go.
// It is built once from a resolution, a set of BPM changes, a set of
// time-signature changes, and an optional explicit overdrive-beat tick
// list, and is immutable afterwards; every query is a binary search
// against a table precomputed at construction.
type TempoMap struct {
	resolution int
	bpms       []BPM
	timeSigs   []TimeSignature
	odBeats    []Tick

	beatSeconds  []axisPoint[Second]
	beatFretbars []axisPoint[Fretbar]
	beatMeasures []axisPoint[Measure]
	beatOdBeats  []axisPoint[OdBeat]

	lastBPM         int64
	lastFretbarRate float64
	lastBeatRate    float64
}

// NewTempoMap validates and builds a TempoMap. Resolution must be
// positive (an invalid-argument error, not a ParseError: it is a
// construction-site misuse, not a malformed file). BPM values and
// time-signature numerator/denominator must all be positive (ParseError:
// these originate from untrusted file content).
func NewTempoMap(resolution int, bpms []BPM, timeSigs []TimeSignature, odBeats []Tick) (*TempoMap, error) {
	if resolution <= 0 {
		return nil, invalidArgument("resolution must be positive, got %d", resolution)
	}
	for _, b := range bpms {
		if b.MilliBeatsPerMinute <= 0 {
			return nil, newParseError("non-positive BPM at tick %d", b.Position)
		}
	}
	for _, ts := range timeSigs {
		if ts.Numerator <= 0 || ts.Denominator <= 0 {
			return nil, newParseError("non-positive time signature at tick %d", ts.Position)
		}
	}

	tm := &TempoMap{
		resolution: resolution,
		bpms:       prepareBPMs(bpms),
		timeSigs:   prepareTimeSignatures(timeSigs),
		odBeats:    append([]Tick(nil), odBeats...),
	}
	tm.build()
	return tm, nil
}

func prepareBPMs(bpms []BPM) []BPM {
	all := make([]BPM, 0, len(bpms)+1)
	all = append(all, BPM{Position: 0, MilliBeatsPerMinute: defaultMilliBeatsPerMinute})
	all = append(all, bpms...)
	return dedupByPosition(all, func(b BPM) Tick { return b.Position })
}

func prepareTimeSignatures(timeSigs []TimeSignature) []TimeSignature {
	all := make([]TimeSignature, 0, len(timeSigs)+1)
	all = append(all, TimeSignature{Position: 0, Numerator: 4, Denominator: 4})
	all = append(all, timeSigs...)
	return dedupByPosition(all, func(ts TimeSignature) Tick { return ts.Position })
}

// dedupByPosition stable-sorts by position and keeps the last value seen
// at each distinct position, so a caller-supplied entry at tick 0 beats
// the synthetic default seeded ahead of it.
func dedupByPosition[T any](all []T, pos func(T) Tick) []T {
	sort.SliceStable(all, func(i, j int) bool { return pos(all[i]) < pos(all[j]) })
	out := all[:0:0]
	for _, v := range all {
		if len(out) > 0 && pos(out[len(out)-1]) == pos(v) {
			out[len(out)-1] = v
			continue
		}
		out = append(out, v)
	}
	return out
}

func (tm *TempoMap) build() {
	tm.buildBeatSeconds()
	tm.buildFretbarsAndMeasures()
	tm.buildOdBeats()
}

func (tm *TempoMap) buildBeatSeconds() {
	lastTime := Second(0)
	lastTick := Tick(0)
	lastBPM := defaultMilliBeatsPerMinute

	table := make([]axisPoint[Second], 0, len(tm.bpms))
	for _, b := range tm.bpms {
		delta := tm.ToBeats(b.Position - lastTick)
		lastTime += delta.ToSecond(lastBPM)
		table = append(table, axisPoint[Second]{beat: tm.ToBeats(b.Position), value: lastTime})
		lastBPM = b.MilliBeatsPerMinute
		lastTick = b.Position
	}
	tm.beatSeconds = table
	tm.lastBPM = lastBPM
}

func (tm *TempoMap) buildFretbarsAndMeasures() {
	lastFretbar := Fretbar(0)
	lastMeasure := Measure(0)
	lastTick := Tick(0)
	lastBeatRate := defaultBeatRate
	lastFretbarRate := defaultFretbarRate

	fretbars := make([]axisPoint[Fretbar], 0, len(tm.timeSigs))
	measures := make([]axisPoint[Measure], 0, len(tm.timeSigs))
	for _, ts := range tm.timeSigs {
		increment := tm.ToBeats(ts.Position - lastTick)
		lastFretbar += increment.ToFretbar(lastFretbarRate)
		lastMeasure += increment.ToMeasure(lastBeatRate)

		beat := tm.ToBeats(ts.Position)
		fretbars = append(fretbars, axisPoint[Fretbar]{beat: beat, value: lastFretbar})
		measures = append(measures, axisPoint[Measure]{beat: beat, value: lastMeasure})

		lastBeatRate = float64(ts.Numerator) * 4.0 / float64(ts.Denominator)
		lastFretbarRate = float64(ts.Denominator) / 4.0
		lastTick = ts.Position
	}
	tm.beatFretbars = fretbars
	tm.beatMeasures = measures
	tm.lastBeatRate = lastBeatRate
	tm.lastFretbarRate = lastFretbarRate
}

func (tm *TempoMap) buildOdBeats() {
	if len(tm.odBeats) == 0 {
		tm.beatOdBeats = []axisPoint[OdBeat]{{beat: 0, value: 0}}
		return
	}
	table := make([]axisPoint[OdBeat], len(tm.odBeats))
	for i, tick := range tm.odBeats {
		table[i] = axisPoint[OdBeat]{beat: tm.ToBeats(tick), value: OdBeat(float64(i) / 4.0)}
	}
	tm.beatOdBeats = table
}

// Resolution returns the ticks-per-quarter-note the map was built with.
func (tm *TempoMap) Resolution() int { return tm.resolution }

// BPMs returns the sorted, deduplicated tempo changes the map was built
// from, including the synthetic tick-0 entry.
func (tm *TempoMap) BPMs() []BPM { return append([]BPM(nil), tm.bpms...) }

// TimeSignatures returns the sorted, deduplicated time-signature changes
// the map was built from, including the synthetic tick-0 entry.
func (tm *TempoMap) TimeSignatures() []TimeSignature {
	return append([]TimeSignature(nil), tm.timeSigs...)
}

// ToBeats converts an absolute or relative Tick to Beat. This is an
// exact division by resolution, independent of tempo.
func (tm *TempoMap) ToBeats(t Tick) Beat {
	return Beat(float64(t) / float64(tm.resolution))
}

// ToTicks converts a Beat back to Tick, the exact inverse of ToBeats.
func (tm *TempoMap) ToTicks(b Beat) Tick {
	return Tick(roundHalfAwayFromZero(float64(b) * float64(tm.resolution)))
}

func roundHalfAwayFromZero(v float64) int64 {
	if v >= 0 {
		return int64(v + 0.5)
	}
	return int64(v - 0.5)
}

// ToSeconds converts Beat to Second.
func (tm *TempoMap) ToSeconds(b Beat) Second {
	return toOther(tm.beatSeconds, b, 60000.0/float64(tm.lastBPM), 60000.0/float64(defaultMilliBeatsPerMinute))
}

// ToBeatsFromSeconds converts Second to Beat.
func (tm *TempoMap) ToBeatsFromSeconds(s Second) Beat {
	return toBeat(tm.beatSeconds, s, 60000.0/float64(tm.lastBPM), 60000.0/float64(defaultMilliBeatsPerMinute))
}

// ToFretbars converts Beat to Fretbar.
func (tm *TempoMap) ToFretbars(b Beat) Fretbar {
	return toOther(tm.beatFretbars, b, tm.lastFretbarRate, defaultFretbarRate)
}

// ToBeatsFromFretbars converts Fretbar to Beat.
func (tm *TempoMap) ToBeatsFromFretbars(f Fretbar) Beat {
	return toBeat(tm.beatFretbars, f, tm.lastFretbarRate, defaultFretbarRate)
}

// ToMeasures converts Beat to Measure.
func (tm *TempoMap) ToMeasures(b Beat) Measure {
	return toOther(tm.beatMeasures, b, 1.0/tm.lastBeatRate, 1.0/defaultBeatRate)
}

// ToBeatsFromMeasures converts Measure to Beat.
func (tm *TempoMap) ToBeatsFromMeasures(m Measure) Beat {
	return toBeat(tm.beatMeasures, m, 1.0/tm.lastBeatRate, 1.0/defaultBeatRate)
}

// ToOdBeats converts Beat to OdBeat.
func (tm *TempoMap) ToOdBeats(b Beat) OdBeat {
	return toOther(tm.beatOdBeats, b, 1.0/defaultOdBeatRate, 1.0/defaultOdBeatRate)
}

// ToBeatsFromOdBeats converts OdBeat to Beat.
func (tm *TempoMap) ToBeatsFromOdBeats(o OdBeat) Beat {
	return toBeat(tm.beatOdBeats, o, 1.0/defaultOdBeatRate, 1.0/defaultOdBeatRate)
}

// ToSecondsFromTick is a convenience composing ToBeats and ToSeconds.
func (tm *TempoMap) ToSecondsFromTick(t Tick) Second { return tm.ToSeconds(tm.ToBeats(t)) }

// ToTicksFromSeconds is a convenience composing ToBeatsFromSeconds and ToTicks.
func (tm *TempoMap) ToTicksFromSeconds(s Second) Tick { return tm.ToTicks(tm.ToBeatsFromSeconds(s)) }

// ToMeasuresFromTick is a convenience composing ToBeats and ToMeasures.
func (tm *TempoMap) ToMeasuresFromTick(t Tick) Measure { return tm.ToMeasures(tm.ToBeats(t)) }

// ToTicksFromMeasures is a convenience composing ToBeatsFromMeasures and ToTicks.
func (tm *TempoMap) ToTicksFromMeasures(m Measure) Tick { return tm.ToTicks(tm.ToBeatsFromMeasures(m)) }

// toOther looks up the Beat-keyed axis table and returns the
// corresponding value on the other axis, interpolating between
// neighbouring entries, extrapolating forward past the last entry at
// lastRate, and extrapolating backward before the first entry at
// defaultRate (never the in-region rate: ticks before 0 are not assumed
// to share the first region's tempo).
func toOther[T ~float64](table []axisPoint[T], beat Beat, lastRate, defaultRate float64) T {
	n := len(table)
	i := sort.Search(n, func(i int) bool { return table[i].beat >= beat })
	switch {
	case i == n:
		last := table[n-1]
		return last.value + T(float64(beat-last.beat)*lastRate)
	case i == 0:
		first := table[0]
		return first.value + T(float64(beat-first.beat)*defaultRate)
	default:
		prev, next := table[i-1], table[i]
		frac := float64(beat-prev.beat) / float64(next.beat-prev.beat)
		return prev.value + T(float64(next.value-prev.value)*frac)
	}
}

// toBeat is the mirror of toOther: given a value on the other axis,
// returns the corresponding Beat.
func toBeat[T ~float64](table []axisPoint[T], value T, lastRate, defaultRate float64) Beat {
	n := len(table)
	i := sort.Search(n, func(i int) bool { return table[i].value >= value })
	switch {
	case i == n:
		last := table[n-1]
		return last.beat + Beat(float64(value-last.value)/lastRate)
	case i == 0:
		first := table[0]
		return first.beat + Beat(float64(value-first.value)/defaultRate)
	default:
		prev, next := table[i-1], table[i]
		frac := float64(value-prev.value) / float64(next.value-prev.value)
		return prev.beat + Beat(float64(next.beat-prev.beat)*frac)
	}
}

// Speedup returns a new TempoMap with every BPM scaled by percent/100 and
// every beat-to-second timestamp divided by that same factor. Time
// signature, measure, and fretbar tables are unaffected: those axes
// track musical position, not wall-clock time. percent must be
// positive; 100 returns an equivalent map.
func (tm *TempoMap) Speedup(percent int) (*TempoMap, error) {
	if percent <= 0 {
		return nil, invalidArgument("speedup percent must be positive, got %d", percent)
	}

	scaled := &TempoMap{
		resolution:      tm.resolution,
		timeSigs:        tm.timeSigs,
		odBeats:         tm.odBeats,
		beatFretbars:    tm.beatFretbars,
		beatMeasures:    tm.beatMeasures,
		beatOdBeats:     tm.beatOdBeats,
		lastBeatRate:    tm.lastBeatRate,
		lastFretbarRate: tm.lastFretbarRate,
	}

	factor := float64(percent) / 100.0
	timestampFactor := 100.0 / float64(percent)

	scaled.bpms = make([]BPM, len(tm.bpms))
	for i, b := range tm.bpms {
		scaled.bpms[i] = BPM{Position: b.Position, MilliBeatsPerMinute: scaleMilliBPM(b.MilliBeatsPerMinute, factor)}
	}
	scaled.lastBPM = scaleMilliBPM(tm.lastBPM, factor)

	scaled.beatSeconds = make([]axisPoint[Second], len(tm.beatSeconds))
	for i, p := range tm.beatSeconds {
		scaled.beatSeconds[i] = axisPoint[Second]{beat: p.beat, value: Second(float64(p.value) * timestampFactor)}
	}

	return scaled, nil
}

func scaleMilliBPM(mbpm int64, factor float64) int64 {
	return int64(float64(mbpm) * factor)
}
