package sightread

import (
	"io"

	"gitlab.com/gomidi/midi/v2/smf"
)

// MidiEventKind tags which variant a MidiTrackEvent carries.
type MidiEventKind int

const (
	MidiEventMeta MidiEventKind = iota
	MidiEventChannel
	MidiEventSysex
)

// MidiTrackEvent is one decoded SMF event, re-tagged from the underlying
// smf.Event/midi.Message into the variant shape described in §4.4: a Meta
// (type + data), a channel voice MidiEvent (status + up to two data bytes,
// zero-padded), or a Sysex (raw data, terminating 0xF7 included).
type MidiTrackEvent struct {
	Tick     Tick
	Kind     MidiEventKind
	MetaType byte
	Status   byte
	Data     [2]byte
	Raw      []byte
}

// MidiTrack is one decoded SMF track: its events in file order with
// absolute tick positions.
type MidiTrack []MidiTrackEvent

// MidiFile is the decoded product of DecodeMidi: a resolution (ticks per
// quarter note) and the track list in file order, tempo track first.
type MidiFile struct {
	Resolution int
	Tracks     []MidiTrack
}

// DecodeMidi reads an SMF 1.0 stream and re-tags it into the Meta/
// MidiEvent/Sysex variant sequence §4.4 describes. Chunk framing, VLQ
// delta-time decoding, and status dispatch are all performed by
// gitlab.com/gomidi/midi/v2/smf; this function itself rejects only SMPTE
// division, which that library leaves to the caller, and decodes the rest
// into the library's own tagged representation.
func DecodeMidi(r io.Reader) (*MidiFile, error) {
	smfData, err := smf.ReadFrom(r)
	if err != nil {
		return nil, newParseError("decoding SMF: %v", err)
	}

	ticks, ok := smfData.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, newParseError("SMPTE format not supported")
	}

	file := &MidiFile{Resolution: int(ticks)}
	for _, track := range smfData.Tracks {
		file.Tracks = append(file.Tracks, decodeMidiTrack(track))
	}
	return file, nil
}

func decodeMidiTrack(track smf.Track) MidiTrack {
	out := make(MidiTrack, 0, len(track))
	var tick Tick
	for _, event := range track {
		tick += Tick(event.Delta)
		raw := []byte(event.Message)
		if len(raw) == 0 {
			continue
		}
		out = append(out, decodeMidiEvent(tick, raw))
	}
	return out
}

// skipVLQLength reads the VLQ length prefix starting at data[0] (as found
// after a meta type byte or a sysex 0xF0/0xF7 lead byte in the on-disk
// event form) and returns how many bytes it occupies, so the caller can
// slice past it to reach the length-prefixed payload itself.
func skipVLQLength(data []byte) int {
	n := 0
	for n < len(data) && n < 4 {
		b := data[n]
		n++
		if b&0x80 == 0 {
			break
		}
	}
	return n
}

func decodeMidiEvent(tick Tick, raw []byte) MidiTrackEvent {
	switch {
	case raw[0] == 0xFF:
		ev := MidiTrackEvent{Tick: tick, Kind: MidiEventMeta}
		if len(raw) > 1 {
			ev.MetaType = raw[1]
		}
		if len(raw) > 2 {
			start := 2 + skipVLQLength(raw[2:])
			if start <= len(raw) {
				ev.Raw = raw[start:]
			}
		}
		return ev
	case raw[0] == 0xF0 || raw[0] == 0xF7:
		var data []byte
		if len(raw) > 1 {
			start := 1 + skipVLQLength(raw[1:])
			if start <= len(raw) {
				data = raw[start:]
			}
		}
		return MidiTrackEvent{Tick: tick, Kind: MidiEventSysex, Raw: data}
	default:
		ev := MidiTrackEvent{Tick: tick, Kind: MidiEventChannel, Status: raw[0]}
		if len(raw) > 1 {
			ev.Data[0] = raw[1]
		}
		if len(raw) > 2 {
			ev.Data[1] = raw[2]
		}
		return ev
	}
}

// statusNibble returns the high nibble of a channel voice status byte.
func statusNibble(status byte) byte { return status >> 4 }

// statusChannel returns the low nibble (channel) of a channel voice
// status byte.
func statusChannel(status byte) byte { return status & 0x0F }
