package sightread

import (
	"fmt"
	"sort"
)

// Metadata carries the song/artist/charter strings a parser is
// configured with. All three fields are optional display text.
type Metadata struct {
	Name    string
	Artist  string
	Charter string
}

// PracticeSection is a named practice-mode marker, collected from the
// EVENTS track (§4.5) or a chart's [Events] section.
type PracticeSection struct {
	Position Tick
	Name     string
}

// SongGlobalData is shared, read-only (after Parse returns) state every
// NoteTrack in a Song holds a handle to: resolution, the tempo map,
// display metadata, overdrive-beat ticks, and practice sections. Song is
// the only type that mutates it in place, and only via Speedup.
type SongGlobalData struct {
	Resolution       int
	TempoMap         *TempoMap
	Metadata         Metadata
	OdBeats          []Tick
	PracticeSections []PracticeSection
}

type trackKey struct {
	Instrument Instrument
	Difficulty Difficulty
}

// Song owns a SongGlobalData and a mapping from (Instrument, Difficulty)
// to NoteTrack. It is the product every public parser returns.
type Song struct {
	global *SongGlobalData
	tracks map[trackKey]*NoteTrack
}

// NewSong constructs an empty Song over the given shared global data.
func NewSong(global *SongGlobalData) *Song {
	return &Song{global: global, tracks: make(map[trackKey]*NoteTrack)}
}

// Global returns the song's shared data.
func (s *Song) Global() *SongGlobalData { return s.global }

// AddNoteTrack records track under (instrument, difficulty) unless its
// note list is empty, in which case the call is a silent no-op: an
// instrument/difficulty combination with zero notes is not meaningfully
// different from one that was never authored.
func (s *Song) AddNoteTrack(instrument Instrument, difficulty Difficulty, track *NoteTrack) {
	if track == nil || len(track.Notes) == 0 {
		return
	}
	s.tracks[trackKey{instrument, difficulty}] = track
}

// Instruments returns the sorted, de-duplicated set of instruments with
// at least one note track.
func (s *Song) Instruments() []Instrument {
	seen := map[Instrument]struct{}{}
	for k := range s.tracks {
		seen[k.Instrument] = struct{}{}
	}
	out := make([]Instrument, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Difficulties returns the sorted difficulties available for instrument.
func (s *Song) Difficulties(instrument Instrument) []Difficulty {
	var out []Difficulty
	for _, d := range AllDifficulties {
		if _, ok := s.tracks[trackKey{instrument, d}]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Track returns the NoteTrack for (instrument, difficulty), failing with
// a descriptive invalid-argument error if either is absent.
func (s *Song) Track(instrument Instrument, difficulty Difficulty) (*NoteTrack, error) {
	if len(s.Difficulties(instrument)) == 0 {
		return nil, invalidArgument("chosen instrument not present in song: %s", instrument)
	}
	track, ok := s.tracks[trackKey{instrument, difficulty}]
	if !ok {
		return nil, invalidArgument("difficulty not available for chosen instrument: %s/%s", instrument, difficulty)
	}
	return track, nil
}

// UnisonPhrasePositions returns the sorted ticks at which star-power
// phrases begin simultaneously in more than one non-six-fret instrument.
func (s *Song) UnisonPhrasePositions() []Tick {
	byPosition := map[Tick]map[Instrument]struct{}{}
	for key, track := range s.tracks {
		if key.Instrument.isSixFret() {
			continue
		}
		for _, phrase := range track.StarPower {
			if byPosition[phrase.Position] == nil {
				byPosition[phrase.Position] = map[Instrument]struct{}{}
			}
			byPosition[phrase.Position][key.Instrument] = struct{}{}
		}
	}

	var positions []Tick
	for pos, instruments := range byPosition {
		if len(instruments) > 1 {
			positions = append(positions, pos)
		}
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
	return positions
}

// Speedup rebuilds the tempo map at the given percent and appends
// " (<percent>%)" to the song name. percent must be positive; 100 is a
// no-op. The new tempo map and name are written into the shared
// SongGlobalData in place, so every NoteTrack observes them.
func (s *Song) Speedup(percent int) error {
	if percent == 100 {
		return nil
	}
	if percent <= 0 {
		return invalidArgument("speedup percent must be positive, got %d", percent)
	}

	scaled, err := s.global.TempoMap.Speedup(percent)
	if err != nil {
		return err
	}
	s.global.TempoMap = scaled
	s.global.Metadata.Name = fmt.Sprintf("%s (%d%%)", s.global.Metadata.Name, percent)
	return nil
}
