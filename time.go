package sightread

// Time coordinates. Each is a distinct type; there is no implicit
// conversion between them; every conversion goes through a TempoMap,
// which is the only component that knows how tempo and time signature
// relate the axes to each other.

// Tick is the raw chart unit, quantised at the song's resolution (ticks
// per quarter note).
type Tick int64

// Beat is Tick divided by resolution.
type Beat float64

// Second is wall-clock time from the start of the song, per the BPM
// schedule.
type Second float64

// Measure accumulates over time-signature regions; one measure is
// numerator*(4/denominator) beats.
type Measure float64

// Fretbar accumulates at a rate of denominator/4 per beat.
type Fretbar float64

// OdBeat is the overdrive-beat coordinate: i/4 at each explicit
// overdrive-beat tick, or scaled like a measure when none are present.
type OdBeat float64

const (
	defaultBeatRate       = 4.0
	defaultFretbarRate    = 1.0
	defaultOdBeatRate     = 4.0
	defaultMilliBeatsPerMinute int64 = 120000
	defaultResolution          = 192
)

// ToBeat converts a Fretbar delta to a Beat delta at the given fretbars-
// per-beat rate.
func (f Fretbar) ToBeat(fretbarRate float64) Beat {
	return Beat(float64(f) / fretbarRate)
}

// ToFretbar converts a Beat delta to a Fretbar delta at the given
// fretbars-per-beat rate.
func (b Beat) ToFretbar(fretbarRate float64) Fretbar {
	return Fretbar(float64(b) * fretbarRate)
}

// ToBeat converts a Measure delta to a Beat delta at the given
// beats-per-measure rate.
func (m Measure) ToBeat(beatRate float64) Beat {
	return Beat(float64(m) * beatRate)
}

// ToMeasure converts a Beat delta to a Measure delta at the given
// beats-per-measure rate.
func (b Beat) ToMeasure(beatRate float64) Measure {
	return Measure(float64(b) / beatRate)
}

// ToBeat converts an OdBeat delta to a Beat delta at the given
// OdBeats-per-beat rate.
func (o OdBeat) ToBeat(odBeatRate float64) Beat {
	return Beat(float64(o) / odBeatRate)
}

// ToOdBeat converts a Beat delta to an OdBeat delta at the given
// OdBeats-per-beat rate.
func (b Beat) ToOdBeat(odBeatRate float64) OdBeat {
	return OdBeat(float64(b) * odBeatRate)
}

// ToSecond converts a Beat delta to a Second delta at the given tempo,
// expressed in millibeats per minute.
func (b Beat) ToSecond(milliBeatsPerMinute int64) Second {
	return Second(float64(b) * 60000.0 / float64(milliBeatsPerMinute))
}

// ToBeat converts a Second delta to a Beat delta at the given tempo.
func (s Second) ToBeat(milliBeatsPerMinute int64) Beat {
	return Beat(float64(s) * float64(milliBeatsPerMinute) / 60000.0)
}
