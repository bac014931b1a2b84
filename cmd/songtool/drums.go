package main

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/leafo/sightread"
)

const gmDrumChannel uint8 = 9

// hitDurationTicks is a fixed note-on/note-off span for drum hits: a
// sixteenth note at the song's own resolution, since sightread.Note stores
// lane sustain rather than a strike duration.
func hitDurationTicks(resolution int) uint32 {
	return uint32(resolution / 4)
}

// AddDrumTrack exports track (expected to be the song's highest-difficulty
// PART DRUMS track) as a single GM percussion track. Per-note cymbal/tom
// classification is already resolved by the library's FlagCymbal bit, so
// this export no longer needs to re-derive tom-modifier ranges the way the
// original Rock Band MIDI scanner did.
func (e *GeneralMidiExporter) AddDrumTrack(song *sightread.Song, track *sightread.NoteTrack) error {
	resolution := song.Global().Resolution
	hit := hitDurationTicks(resolution)

	var events []gmEvent
	for _, note := range track.Notes {
		for lane := 0; lane < 6; lane++ {
			if !note.HasLane(sightread.Colour(lane)) {
				continue
			}
			gmKey, ok := drumGmKey(lane, note.Flags&sightread.FlagCymbal != 0)
			if !ok {
				continue
			}
			velocity := uint8(100)
			switch {
			case note.Flags&sightread.FlagAccent != 0:
				velocity = 127
			case note.Flags&sightread.FlagGhost != 0:
				velocity = 1
			}

			tick := uint32(note.Position)
			events = append(events,
				gmEvent{Tick: tick, Message: smf.Message(midi.NoteOn(gmDrumChannel, gmKey, velocity))},
				gmEvent{Tick: tick + hit, Message: smf.Message(midi.NoteOff(gmDrumChannel, gmKey))},
			)
		}
	}

	if len(events) == 0 {
		return fmt.Errorf("no drum notes found in track")
	}

	return e.addTrack(gmTrack{Name: "Drums", Channel: gmDrumChannel, Events: events})
}

// drumGmKey resolves one drum Colour lane (by index) to a GM percussion
// key, consulting the cymbal map only for the lanes that carry a
// cymbal/tom distinction (Yellow/Blue/Green, per §6's "3, 4, 5 mod 12").
func drumGmKey(lane int, isCymbal bool) (uint8, bool) {
	if isCymbal {
		if key, ok := gmCymbalLaneMap[lane]; ok {
			return key, true
		}
	}
	key, ok := gmDrumLaneMap[lane]
	return key, ok
}
