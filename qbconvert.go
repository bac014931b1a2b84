package sightread

import (
	"hash/crc32"
	"math"
)

const qbResolution = 1920

const (
	qbFlagForceFlip = 1 << 5
	qbLaneBits      = 5
)

// QbConverter turns a decoded QbFile into a Song. Unlike the chart and
// MIDI converters it only ever produces one instrument's tracks: the QB
// container holds one song part per short name, and the part's
// instrument identity has to be supplied by the caller since nothing in
// the item tree names it.
type QbConverter struct {
	metadata   Metadata
	shortName  string
	instrument Instrument
}

// NewQbConverter returns a converter for the song part named shortName,
// defaulting to Guitar.
func NewQbConverter(metadata Metadata, shortName string) *QbConverter {
	return &QbConverter{metadata: metadata, shortName: shortName, instrument: Guitar}
}

func (c *QbConverter) Instrument(i Instrument) *QbConverter {
	c.instrument = i
	return c
}

var qbDifficultyNames = map[Difficulty]string{
	Easy: "easy", Medium: "medium", Hard: "hard", Expert: "expert",
}

// Convert builds a Song from qb per §4.7: fretbars and time signatures
// reconstruct a tempo map in milliseconds-to-ticks terms, then each
// present difficulty's notes and star power are reprojected through it.
func (c *QbConverter) Convert(qb *QbFile) (*Song, error) {
	byID := make(map[uint32]*QbItem, len(qb.Items))
	for i := range qb.Items {
		byID[qb.Items[i].ID] = &qb.Items[i]
	}

	fretbarsItem, ok := byID[c.qbKey("_fretbars")]
	if !ok {
		return nil, newParseError("qb: %q has no fretbars", c.shortName)
	}
	fretbarsMs := flatInts(fretbarsItem)
	if len(fretbarsMs) == 0 {
		return nil, newParseError("qb: %q has empty fretbars", c.shortName)
	}

	var tsChanges []qbTimeSigChange
	if item, ok := byID[c.qbKey("_timesig")]; ok {
		for _, tuple := range item.Array {
			vals := tupleInts(tuple.Struct, 3)
			tsChanges = append(tsChanges, qbTimeSigChange{ms: int64(vals[0]), num: int(vals[1]), den: int(vals[2])})
		}
	}

	proj := buildQbTempoProjection(fretbarsMs, tsChanges)

	tempoMap, err := NewTempoMap(qbResolution, proj.bpms, proj.timeSigs, nil)
	if err != nil {
		return nil, err
	}

	global := &SongGlobalData{
		Resolution: qbResolution,
		TempoMap:   tempoMap,
		Metadata:   c.metadata,
	}

	song := NewSong(global)

	for _, diff := range AllDifficulties {
		name := qbDifficultyNames[diff]
		notesItem, ok := byID[c.qbKey("_song_"+name)]
		if !ok {
			continue
		}
		flat := flatInts(notesItem)
		if len(flat)%3 != 0 {
			return nil, newParseError("qb: %q %s note array length not a multiple of 3", c.shortName, name)
		}

		notes := make([]Note, 0, len(flat)/3)
		for i := 0; i < len(flat); i += 3 {
			positionMs, lengthMs, flags := flat[i], flat[i+1], flat[i+2]
			tick := proj.tickAt(float64(positionMs))
			n := NewNote(tick)
			n.Flags |= FlagFiveFretGuitar
			if flags&qbFlagForceFlip != 0 {
				n.Flags |= FlagForceFlip
			}
			length := proj.sustainTicks(float64(positionMs), float64(lengthMs))
			for lane := 0; lane < qbLaneBits; lane++ {
				if flags&(1<<uint(lane)) != 0 {
					n.SetLane(Colour(lane), length)
				}
			}
			notes = append(notes, n)
		}

		var starPower []StarPowerPhrase
		if item, ok := byID[c.qbKey("_"+name+"_star")]; ok {
			for _, tuple := range item.Array {
				vals := tupleInts(tuple.Struct, 3)
				startTick := proj.tickAt(float64(vals[0]))
				endTick := proj.tickAt(float64(vals[0]) + float64(vals[1]))
				starPower = append(starPower, StarPowerPhrase{Position: startTick, Length: endTick - startTick})
			}
		}

		track := NewNoteTrack(c.instrument, diff, notes, starPower, nil, HopoThreshold{Type: HopoThresholdResolution}.MidiMaxHopoGap(qbResolution), global)
		song.AddNoteTrack(c.instrument, diff, track)
	}

	return song, nil
}

func (c *QbConverter) qbKey(suffix string) uint32 {
	return crc32.ChecksumIEEE([]byte(c.shortName + suffix))
}

func flatInts(item *QbItem) []int64 {
	out := make([]int64, 0, len(item.Array))
	for _, e := range item.Array {
		out = append(out, int64(e.Int))
	}
	return out
}

func tupleInts(items []QbItem, n int) []int64 {
	out := make([]int64, n)
	for i := 0; i < n && i < len(items); i++ {
		out[i] = int64(items[i].Int)
	}
	return out
}

type qbTimeSigChange struct {
	ms  int64
	num int
	den int
}

// qbTempoProjection is the fretbar-beat/fretbar-ms table §4.7 describes,
// plus the derived BPM and time signature lists for a TempoMap and the
// ms->tick conversion it makes possible.
type qbTempoProjection struct {
	ms       []int64
	beats    []float64
	bpms     []BPM
	timeSigs []TimeSignature
}

func buildQbTempoProjection(fretbarsMs []int64, tsChanges []qbTimeSigChange) *qbTempoProjection {
	n := len(fretbarsMs)
	beats := make([]float64, n)

	type sortableChange = qbTimeSigChange
	changes := make([]sortableChange, len(tsChanges))
	copy(changes, tsChanges)
	for i := 1; i < len(changes); i++ {
		for j := i; j > 0 && changes[j].ms < changes[j-1].ms; j-- {
			changes[j], changes[j-1] = changes[j-1], changes[j]
		}
	}

	var timeSigs []TimeSignature
	currentNum, currentDen := 4, 4
	tsIdx := 0
	for i := 0; i < n; i++ {
		changed := i == 0
		for tsIdx < len(changes) && changes[tsIdx].ms <= fretbarsMs[i] {
			currentNum, currentDen = changes[tsIdx].num, changes[tsIdx].den
			changed = true
			tsIdx++
		}
		if changed {
			tick := Tick(math.Round(qbResolution * beats[i]))
			timeSigs = append(timeSigs, TimeSignature{Position: tick, Numerator: currentNum, Denominator: currentDen})
		}
		if i+1 < n {
			beats[i+1] = beats[i] + 4.0/float64(currentDen)
		}
	}

	var bpms []BPM
	for i := 0; i+1 < n; i++ {
		dMs := fretbarsMs[i+1] - fretbarsMs[i]
		if dMs <= 0 {
			continue
		}
		dBeat := beats[i+1] - beats[i]
		milliBPM := int64(math.Round(60e6 * dBeat / float64(dMs)))
		tick := Tick(math.Round(qbResolution * beats[i]))
		bpms = append(bpms, BPM{Position: tick, MilliBeatsPerMinute: milliBPM})
	}
	if len(bpms) == 0 {
		bpms = append(bpms, BPM{Position: 0, MilliBeatsPerMinute: 120000})
	}

	return &qbTempoProjection{ms: fretbarsMs, beats: beats, bpms: bpms, timeSigs: timeSigs}
}

// tickAt converts a millisecond position to a tick by locating the
// fretbar bracket containing it (extrapolating past either end at the
// bracket's own rate) and interpolating linearly.
func (p *qbTempoProjection) tickAt(ms float64) Tick {
	n := len(p.ms)
	if n == 1 {
		return 0
	}

	i := 0
	switch {
	case ms < float64(p.ms[0]):
		i = 0
	case ms >= float64(p.ms[n-1]):
		i = n - 2
	default:
		for i = 0; i+1 < n && float64(p.ms[i+1]) < ms; i++ {
		}
	}

	dMs := float64(p.ms[i+1] - p.ms[i])
	if dMs == 0 {
		return Tick(math.Round(qbResolution * p.beats[i]))
	}
	frac := (ms - float64(p.ms[i])) / dMs
	beat := p.beats[i] + frac*(p.beats[i+1]-p.beats[i])
	return Tick(math.Round(qbResolution * beat))
}

// sustainTicks applies §4.7's sustain conversion rule: short sustains
// collapse to zero length; longer ones are reprojected end-to-end
// through the fretbar table.
func (p *qbTempoProjection) sustainTicks(positionMs, lengthMs float64) Tick {
	threshold := 0.0
	if len(p.ms) > 1 {
		threshold = float64(p.ms[1]) / 2
	}
	if lengthMs <= threshold {
		return 0
	}
	start := p.tickAt(positionMs)
	end := p.tickAt(positionMs + lengthMs)
	return end - start
}
