package main

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/leafo/sightread"
)

const gmBassChannel uint8 = 1

// bassLanePitch gives each five-fret Colour lane a fixed GM pitch on a
// standard 4-string bass (E-A-D-G), with the fifth (Orange) lane an octave
// above the low E string; there is no fret/string data in the Song model to
// do better than one pitch per lane, unlike the original Pro Bass format's
// continuous fretboard.
var bassLanePitch = map[sightread.Colour]uint8{
	sightread.Green:        28, // E1
	sightread.Red:          33, // A1
	sightread.Yellow:       38, // D2
	sightread.Blue:         43, // G2
	sightread.Orange:       40, // E2 (octave above Green)
	sightread.FiveFretOpen: 28, // open string, same as Green
}

// AddBassTrack exports track (the song's Bass instrument at some
// difficulty) as a single melodic GM bass track.
func (e *GeneralMidiExporter) AddBassTrack(track *sightread.NoteTrack) error {
	var events []gmEvent
	for _, note := range track.Notes {
		for colour, pitch := range bassLanePitch {
			length := note.Lengths[colour]
			if length < 0 {
				continue
			}
			start := uint32(note.Position)
			end := start + uint32(length) + 1
			events = append(events,
				gmEvent{Tick: start, Message: smf.Message(midi.NoteOn(gmBassChannel, pitch, 100))},
				gmEvent{Tick: end, Message: smf.Message(midi.NoteOff(gmBassChannel, pitch))},
			)
		}
	}

	if len(events) == 0 {
		return fmt.Errorf("no bass notes found in track")
	}

	return e.addTrack(gmTrack{Name: "Bass", Channel: gmBassChannel, Program: GMElectricBassFinger, Events: events})
}
