package sightread

import (
	"sort"
	"strings"
)

// chartTrackInfo maps a text chart's literal `[SectionName]` header to the
// (instrument, difficulty) pair it feeds, mirroring the closed table every
// chart editor agrees on.
var chartTrackInfo = buildChartTrackInfo()

func buildChartTrackInfo() map[string]trackKey {
	type family struct {
		prefix     string
		instrument Instrument
	}
	families := []family{
		{"Single", Guitar},
		{"DoubleGuitar", GuitarCoop},
		{"DoubleBass", Bass},
		{"DoubleRhythm", Rhythm},
		{"Drums", Drums},
		{"Keyboard", Keys},
		{"GHLGuitar", GHLGuitar},
		{"GHLBass", GHLBass},
		{"GHLRhythm", GHLRhythm},
		{"GHLCoop", GHLGuitarCoop},
	}
	prefixes := map[Difficulty]string{Easy: "Easy", Medium: "Medium", Hard: "Hard", Expert: "Expert"}

	out := make(map[string]trackKey)
	for _, fam := range families {
		for diff, pre := range prefixes {
			out[pre+fam.prefix] = trackKey{Instrument: fam.instrument, Difficulty: diff}
		}
	}
	return out
}

// ChartConverter turns a ChartFile (the lexer's mechanical product) into a
// Song. It mirrors the MIDI semantic converter's role but against the text
// chart's simpler, colour-by-fret-number grammar.
type ChartConverter struct {
	metadata            Metadata
	hopoThreshold       HopoThreshold
	permittedInstruments map[Instrument]struct{}
	permitSolos         bool
}

// NewChartConverter returns a converter with the defaults §4.8 specifies:
// resolution-derived HOPO gap, every instrument permitted, solos parsed.
func NewChartConverter(metadata Metadata) *ChartConverter {
	return &ChartConverter{
		metadata:             metadata,
		hopoThreshold:        HopoThreshold{Type: HopoThresholdResolution},
		permittedInstruments: AllInstruments(),
		permitSolos:          true,
	}
}

func (c *ChartConverter) HopoThreshold(t HopoThreshold) *ChartConverter {
	c.hopoThreshold = t
	return c
}

func (c *ChartConverter) PermitInstruments(instruments map[Instrument]struct{}) *ChartConverter {
	c.permittedInstruments = instruments
	return c
}

func (c *ChartConverter) ParseSolos(permit bool) *ChartConverter {
	c.permitSolos = permit
	return c
}

// Convert builds a Song from chart.
func (c *ChartConverter) Convert(chart *ChartFile) (*Song, error) {
	resolution := chart.Resolution
	if resolution == 0 {
		resolution = defaultResolution
	}

	bpms := make([]BPM, len(chart.BPMEvents))
	for i, b := range chart.BPMEvents {
		bpms[i] = BPM{Position: Tick(b.Tick), MilliBeatsPerMinute: int64(b.MilliBPM)}
	}

	timeSigs := make([]TimeSignature, len(chart.TimeSigEvents))
	for i, ts := range chart.TimeSigEvents {
		timeSigs[i] = TimeSignature{
			Position:    Tick(ts.Tick),
			Numerator:   int(ts.Numerator),
			Denominator: 1 << ts.DenominatorPow2,
		}
	}

	tempoMap, err := NewTempoMap(resolution, bpms, timeSigs, nil)
	if err != nil {
		return nil, err
	}

	global := &SongGlobalData{
		Resolution: resolution,
		TempoMap:   tempoMap,
		Metadata: Metadata{
			Name:    firstNonEmpty(c.metadata.Name, chart.Name),
			Artist:  firstNonEmpty(c.metadata.Artist, chart.Artist),
			Charter: firstNonEmpty(c.metadata.Charter, chart.Charter),
		},
		PracticeSections: parseChartPracticeSections(chart.GlobalEvents),
	}

	song := NewSong(global)
	hopoGap := c.hopoThreshold.ChartMaxHopoGap(resolution)

	sectionNames := make([]string, 0, len(chart.Tracks))
	for name := range chart.Tracks {
		sectionNames = append(sectionNames, name)
	}
	sort.Strings(sectionNames)

	for _, name := range sectionNames {
		key, ok := chartTrackInfo[name]
		if !ok {
			continue
		}
		if _, permitted := c.permittedInstruments[key.Instrument]; !permitted {
			continue
		}

		track, err := c.convertTrack(chart.Tracks[name], key.Instrument, key.Difficulty, hopoGap, global)
		if err != nil {
			return nil, newParseError("section %s: %v", name, err)
		}
		song.AddNoteTrack(key.Instrument, key.Difficulty, track)
	}

	return song, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func parseChartPracticeSections(events []ChartTextEvent) []PracticeSection {
	var out []PracticeSection
	for _, e := range events {
		name, ok := practiceSectionName(e.Text)
		if !ok {
			continue
		}
		out = append(out, PracticeSection{Position: Tick(e.Tick), Name: name})
	}
	return out
}

func practiceSectionName(text string) (string, bool) {
	t := strings.TrimSpace(text)
	t = strings.TrimPrefix(t, "[")
	t = strings.TrimSuffix(t, "]")
	switch {
	case strings.HasPrefix(t, "section "):
		return strings.TrimPrefix(t, "section "), true
	case strings.HasPrefix(t, "section_"):
		return strings.TrimPrefix(t, "section_"), true
	case strings.HasPrefix(t, "prc_"):
		return strings.TrimPrefix(t, "prc_"), true
	default:
		return "", false
	}
}

// convertTrack applies the fret-number grammar for one instrument family to
// one track's raw events.
func (c *ChartConverter) convertTrack(track *ChartTrack, instrument Instrument, difficulty Difficulty, hopoGap Tick, global *SongGlobalData) (*NoteTrack, error) {
	if track == nil {
		return nil, nil
	}

	var forceFlip, tap IntervalSet
	var forceIntervals, tapIntervals [][2]Tick

	notes := make([]Note, 0, len(track.Notes))
	byPosition := map[Tick]*Note{}

	addLane := func(tick Tick, lane Colour, length Tick) *Note {
		n, ok := byPosition[tick]
		if !ok {
			nn := NewNote(tick)
			notes = append(notes, nn)
			n = &notes[len(notes)-1]
			byPosition[tick] = n
		}
		n.SetLane(lane, length)
		return n
	}

	isSixFret := instrument.isSixFret()
	isDrums := instrument == Drums

	for _, ev := range track.Notes {
		tick := Tick(ev.Tick)
		length := Tick(ev.Length)

		switch {
		case isDrums:
			switch {
			case ev.Fret >= 0 && ev.Fret <= 5:
				addLane(tick, drumsFretToColour(ev.Fret), length)
			case ev.Fret == 32:
				addLane(tick, DoubleKick, length)
			case ev.Fret >= 34 && ev.Fret <= 39:
				if n, ok := byPosition[tick]; ok {
					n.Flags |= FlagAccent
				}
			case ev.Fret >= 40 && ev.Fret <= 45:
				if n, ok := byPosition[tick]; ok {
					n.Flags |= FlagGhost
				}
			case ev.Fret >= 66 && ev.Fret <= 68:
				if n, ok := byPosition[tick]; ok {
					n.Flags |= FlagCymbal
				}
			default:
				return nil, invalidArgument("drum note has invalid fret %d", ev.Fret)
			}
		case isSixFret:
			switch {
			case ev.Fret >= 0 && ev.Fret <= 6:
				addLane(tick, Colour(ev.Fret), length)
			case ev.Fret == 7:
				forceIntervals = append(forceIntervals, [2]Tick{tick, tick + length + 1})
			case ev.Fret == 8:
				tapIntervals = append(tapIntervals, [2]Tick{tick, tick + length + 1})
			default:
				return nil, invalidArgument("six-fret note has invalid fret %d", ev.Fret)
			}
		default:
			switch {
			case ev.Fret >= 0 && ev.Fret <= 4:
				addLane(tick, Colour(ev.Fret), length)
			case ev.Fret == 5:
				forceIntervals = append(forceIntervals, [2]Tick{tick, tick + length + 1})
			case ev.Fret == 6:
				tapIntervals = append(tapIntervals, [2]Tick{tick, tick + length + 1})
			case ev.Fret == 7:
				addLane(tick, FiveFretOpen, length)
			default:
				return nil, invalidArgument("note has invalid fret %d", ev.Fret)
			}
		}
	}

	forceFlip = NewIntervalSet(forceIntervals)
	tap = NewIntervalSet(tapIntervals)
	familyFlag := familyFlagFor(isSixFret, isDrums)
	for i := range notes {
		if forceFlip.Contains(notes[i].Position) {
			notes[i].Flags |= FlagForceFlip
		}
		if tap.Contains(notes[i].Position) {
			notes[i].Flags |= FlagTap
		}
		notes[i].Flags |= familyFlag
	}

	var starPower []StarPowerPhrase
	var drumFills []DrumFill
	var bre *BigRockEnding
	for _, s := range track.Specials {
		switch s.Key {
		case 2:
			starPower = append(starPower, StarPowerPhrase{Position: Tick(s.Tick), Length: Tick(s.Length)})
		case 64:
			if isDrums {
				drumFills = append(drumFills, DrumFill{Position: Tick(s.Tick), Length: Tick(s.Length)})
			}
		case 65:
			bre = &BigRockEnding{Position: Tick(s.Tick), Length: Tick(s.Length)}
		}
	}

	var solos []Solo
	if c.permitSolos {
		solos = parseChartSolos(track.TextEvents)
	}

	if len(starPower) == 0 && len(solos) > 1 {
		for _, s := range solos {
			starPower = append(starPower, StarPowerPhrase{Position: s.Position, Length: s.Length})
		}
		solos = nil
	}

	nt := NewNoteTrack(instrument, difficulty, notes, starPower, solos, hopoGap, global)
	nt.DrumFills = drumFills
	nt.BRE = bre
	return nt, nil
}

func familyFlagFor(isSixFret, isDrums bool) NoteFlags {
	switch {
	case isDrums:
		return FlagDrums
	case isSixFret:
		return FlagSixFretGuitar
	default:
		return FlagFiveFretGuitar
	}
}

func drumsFretToColour(fret int) Colour {
	switch fret {
	case 0:
		return Kick
	case 1:
		return DrumRed
	case 2:
		return DrumYellow
	case 3:
		return DrumBlue
	case 4:
		return DrumGreen
	default:
		return DrumGreen
	}
}

func parseChartSolos(events []ChartTextEvent) []Solo {
	var solos []Solo
	var start Tick
	open := false
	for _, e := range events {
		switch strings.TrimSpace(e.Text) {
		case "solo":
			start = Tick(e.Tick)
			open = true
		case "soloend":
			if open {
				solos = append(solos, Solo{Position: start, Length: Tick(e.Tick) - start})
				open = false
			}
		}
	}
	return solos
}
