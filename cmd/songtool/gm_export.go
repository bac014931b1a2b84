package main

import (
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/leafo/sightread"
)

// gmEvent is one MIDI event with an absolute tick, used while accumulating a
// track before it is sorted and delta-encoded.
type gmEvent struct {
	Tick    uint32
	Message smf.Message
}

// gmTrack is the not-yet-finalised event list for one exported GM track.
type gmTrack struct {
	Name    string
	Channel uint8
	Program uint8 // ignored when Channel == 9 (GM percussion)
	Events  []gmEvent
}

// GeneralMidiExporter builds a General MIDI file from a parsed Song: a tempo
// track derived from the Song's TempoMap, plus one track per instrument the
// caller adds.
type GeneralMidiExporter struct {
	smf    *smf.SMF
	tracks []gmTrack
}

// NewGeneralMidiExporter returns an exporter with the tempo track already
// populated from song's shared global data.
func NewGeneralMidiExporter(song *sightread.Song) *GeneralMidiExporter {
	e := &GeneralMidiExporter{smf: smf.NewSMF1()}
	e.smf.TimeFormat = smf.MetricTicks(song.Global().Resolution)
	e.smf.Add(buildTempoTrack(song))
	return e
}

func buildTempoTrack(song *sightread.Song) smf.Track {
	global := song.Global()
	track := smf.Track{}
	track = append(track, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName("Tempo"))})

	type tickEvent struct {
		tick    uint32
		message smf.Message
	}
	var events []tickEvent
	for _, b := range global.TempoMap.BPMs() {
		bpm := float64(b.MilliBeatsPerMinute) / 1000.0
		events = append(events, tickEvent{tick: uint32(b.Position), message: smf.Message(smf.MetaTempo(bpm))})
	}
	for _, ts := range global.TempoMap.TimeSignatures() {
		events = append(events, tickEvent{
			tick:    uint32(ts.Position),
			message: smf.Message(smf.MetaTimeSig(uint8(ts.Numerator), uint8(ts.Denominator), 24, 8)),
		})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })

	var lastTick uint32
	for _, ev := range events {
		track = append(track, smf.Event{Delta: ev.tick - lastTick, Message: ev.message})
		lastTick = ev.tick
	}
	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})
	return track
}

func (e *GeneralMidiExporter) addTrack(t gmTrack) error {
	if len(t.Events) == 0 {
		return fmt.Errorf("no events to add to track %q", t.Name)
	}
	e.tracks = append(e.tracks, t)
	return nil
}

// WriteTo finalises every added track (sorted, delta-encoded, program
// change inserted) and writes the complete SMF to writer.
func (e *GeneralMidiExporter) WriteTo(writer io.Writer) error {
	if len(e.tracks) == 0 {
		return fmt.Errorf("no tracks to export")
	}
	for _, t := range e.tracks {
		e.smf.Add(finalizeTrack(t))
	}
	if _, err := e.smf.WriteTo(writer); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

func finalizeTrack(t gmTrack) smf.Track {
	track := smf.Track{}
	track = append(track, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName(t.Name))})
	if t.Channel != 9 {
		track = append(track, smf.Event{Delta: 0, Message: smf.Message(midi.ProgramChange(t.Channel, t.Program))})
	}

	events := make([]gmEvent, len(t.Events))
	copy(events, t.Events)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Tick < events[j].Tick })

	var lastTick uint32
	for _, ev := range events {
		track = append(track, smf.Event{Delta: ev.Tick - lastTick, Message: ev.Message})
		lastTick = ev.Tick
	}
	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})
	return track
}
