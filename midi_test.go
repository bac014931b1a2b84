package sightread

import (
	"bytes"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TestDecodeMidiEventVariants feeds decodeMidiEvent the actual on-disk SMF
// event form: FF <type> <VLQ-length> <data...> for meta, F0 <VLQ-length>
// <data...> for sysex. Raw must carry the data only, with the VLQ length
// prefix skipped, not kept as a leading byte.
func TestDecodeMidiEventVariants(t *testing.T) {
	meta := decodeMidiEvent(100, []byte{0xFF, 0x51, 0x03, 0x08, 0x6B, 0xC3})
	if meta.Kind != MidiEventMeta || meta.MetaType != 0x51 {
		t.Errorf("meta event = %+v", meta)
	}
	if string(meta.Raw) != "\x08\x6b\xc3" {
		t.Errorf("meta raw = %v, want the three tempo bytes with the length byte skipped", meta.Raw)
	}

	channel := decodeMidiEvent(200, []byte{0x90, 60, 100})
	if channel.Kind != MidiEventChannel || channel.Status != 0x90 || channel.Data[0] != 60 || channel.Data[1] != 100 {
		t.Errorf("channel event = %+v", channel)
	}
	if statusNibble(channel.Status) != 0x9 || statusChannel(channel.Status) != 0 {
		t.Errorf("statusNibble/statusChannel(%x) = %x/%x", channel.Status, statusNibble(channel.Status), statusChannel(channel.Status))
	}

	sysex := decodeMidiEvent(300, []byte{0xF0, 0x03, 0x50, 0x53, 0xF7})
	if sysex.Kind != MidiEventSysex {
		t.Errorf("sysex event = %+v", sysex)
	}
	if string(sysex.Raw) != "\x50\x53\xf7" {
		t.Errorf("sysex raw = %v, want payload with the leading 0xF0 and its VLQ length stripped", sysex.Raw)
	}
}

// TestDecodeMidiEndToEnd builds a real SMF byte stream with the same
// gomidi/midi/v2/smf helpers the teacher's gm_export.go uses to write one,
// then decodes it and checks that meta event Raw never retains the VLQ
// length byte smf.WriteTo emits ahead of the payload (regression for the
// track-name/tempo/time-sig misparse this caused).
func TestDecodeMidiEndToEnd(t *testing.T) {
	tempoTrack := smf.Track{}
	tempoTrack = append(tempoTrack, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName("Tempo"))})
	tempoTrack = append(tempoTrack, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTempo(120.0))})
	tempoTrack = append(tempoTrack, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTimeSig(4, 4, 24, 8))})
	tempoTrack = append(tempoTrack, smf.Event{Delta: 0, Message: smf.EOT})

	guitarTrack := smf.Track{}
	guitarTrack = append(guitarTrack, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName("PART GUITAR"))})
	guitarTrack = append(guitarTrack, smf.Event{Delta: 0, Message: smf.Message(midi.NoteOn(0, 96, 100))})
	guitarTrack = append(guitarTrack, smf.Event{Delta: 192, Message: smf.Message(midi.NoteOff(0, 96))})
	guitarTrack = append(guitarTrack, smf.Event{Delta: 0, Message: smf.EOT})

	file := smf.NewSMF1()
	file.TimeFormat = smf.MetricTicks(192)
	file.Add(tempoTrack)
	file.Add(guitarTrack)

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	midiFile, err := DecodeMidi(&buf)
	if err != nil {
		t.Fatalf("DecodeMidi: %v", err)
	}
	if midiFile.Resolution != 192 || len(midiFile.Tracks) != 2 {
		t.Fatalf("midiFile = %+v", midiFile)
	}

	nameEvent := midiFile.Tracks[1][0]
	if nameEvent.Kind != MidiEventMeta || nameEvent.MetaType != metaTrackName {
		t.Fatalf("track name event = %+v", nameEvent)
	}
	if string(nameEvent.Raw) != "PART GUITAR" {
		t.Errorf("track name Raw = %q, want %q with no leading length byte", nameEvent.Raw, "PART GUITAR")
	}

	song, err := NewMidiConverter(Metadata{}).Convert(midiFile)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	track, err := song.Track(Guitar, Expert)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if len(track.Notes) != 1 || !track.Notes[0].HasLane(Green) {
		t.Errorf("notes = %+v, want a single Green note", track.Notes)
	}
}

// TestParseTempoTrackSetTempoConversion checks the microseconds-per-quarter
// to milli-BPM conversion against a known value: 0x086BC3 us/qn converts to
// 108720 milli-BPM.
func TestParseTempoTrackSetTempoConversion(t *testing.T) {
	track := MidiTrack{
		{Tick: 0, Kind: MidiEventMeta, MetaType: metaSetTempo, Raw: []byte{0x08, 0x6B, 0xC3}},
		{Tick: 0, Kind: MidiEventMeta, MetaType: metaTimeSig, Raw: []byte{4, 2}},
	}
	bpms, timeSigs, err := parseTempoTrack(track)
	if err != nil {
		t.Fatalf("parseTempoTrack: %v", err)
	}
	if len(bpms) != 1 || bpms[0].MilliBeatsPerMinute != 108720 {
		t.Errorf("bpms = %+v, want a single 108720 milli-BPM entry", bpms)
	}
	if len(timeSigs) != 1 || timeSigs[0].Numerator != 4 || timeSigs[0].Denominator != 4 {
		t.Errorf("timeSigs = %+v, want numerator 4 denominator 4", timeSigs)
	}
}

func TestParseTempoTrackRejectsNonPositiveTempo(t *testing.T) {
	track := MidiTrack{{Tick: 0, Kind: MidiEventMeta, MetaType: metaSetTempo, Raw: []byte{0, 0, 0}}}
	if _, _, err := parseTempoTrack(track); err == nil {
		t.Error("expected error for a zero microseconds-per-quarter tempo")
	}
}

// TestNotePairerRankOrder exercises the (tick, rank) FIFO pairing rule: two
// overlapping note-ons for the same key pair with their note-offs in the
// order the offs arrive, not by which on started first in wall time beyond
// FIFO order.
func TestNotePairerRankOrder(t *testing.T) {
	p := newNotePairer()
	p.on(60, 0, 100)
	p.on(60, 10, 90)
	if err := p.off(60, 20); err != nil {
		t.Fatalf("off: %v", err)
	}
	if err := p.off(60, 30); err != nil {
		t.Fatalf("off: %v", err)
	}
	if err := p.finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}

	paired := p.paired[60]
	if len(paired) != 2 {
		t.Fatalf("expected 2 paired notes, got %d: %+v", len(paired), paired)
	}
	if paired[0].start != 0 || paired[0].end != 20 || paired[0].velocity != 100 {
		t.Errorf("first pair = %+v, want start 0 end 20 velocity 100", paired[0])
	}
	if paired[1].start != 10 || paired[1].end != 30 || paired[1].velocity != 90 {
		t.Errorf("second pair = %+v, want start 10 end 30 velocity 90", paired[1])
	}
}

func TestNotePairerUnmatchedNoteOffIsError(t *testing.T) {
	p := newNotePairer()
	if err := p.off(60, 0); err == nil {
		t.Error("expected error for note-off with no pending note-on")
	}
}

func TestNotePairerUnmatchedNoteOnIsError(t *testing.T) {
	p := newNotePairer()
	p.on(60, 0, 100)
	if err := p.finish(); err == nil {
		t.Error("expected error for an unmatched note-on at end of track")
	}
}

// TestMidiConverterConvertEndToEnd builds a minimal two-track MidiFile by
// hand (tempo track plus a PART GUITAR track) and checks that Convert
// resolves it into a Song with the expected note.
func TestMidiConverterConvertEndToEnd(t *testing.T) {
	tempoTrack := MidiTrack{
		{Tick: 0, Kind: MidiEventMeta, MetaType: metaSetTempo, Raw: []byte{0x07, 0xA1, 0x20}},
		{Tick: 0, Kind: MidiEventMeta, MetaType: metaTimeSig, Raw: []byte{4, 2}},
	}
	guitarTrack := MidiTrack{
		{Tick: 0, Kind: MidiEventMeta, MetaType: metaTrackName, Raw: []byte("PART GUITAR")},
		{Tick: 0, Kind: MidiEventChannel, Status: 0x90, Data: [2]byte{96, 100}},
		{Tick: 192, Kind: MidiEventChannel, Status: 0x80, Data: [2]byte{96, 0}},
	}
	midi := &MidiFile{Resolution: 192, Tracks: []MidiTrack{tempoTrack, guitarTrack}}

	song, err := NewMidiConverter(Metadata{}).Convert(midi)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	track, err := song.Track(Guitar, Expert)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if len(track.Notes) != 1 {
		t.Fatalf("expected 1 note, got %d: %+v", len(track.Notes), track.Notes)
	}
	if !track.Notes[0].HasLane(Green) || track.Notes[0].Lengths[Green] != 192 {
		t.Errorf("note = %+v, want Green lane with sustain 192", track.Notes[0])
	}
	if track.Notes[0].Flags&FlagFiveFretGuitar == 0 {
		t.Errorf("note should carry FlagFiveFretGuitar: %+v", track.Notes[0])
	}
}

func TestMidiConverterConvertRejectsEmptyFile(t *testing.T) {
	if _, err := NewMidiConverter(Metadata{}).Convert(&MidiFile{Resolution: 192}); err == nil {
		t.Error("expected error for a MIDI file with no tracks")
	}
}

// TestDiscoFlipEventParsing checks the flip-on `...drums<N>d]` and flip-off
// `...drums<N>]` marker shapes are told apart, per the original's
// append_disco_flip (FLIP_START_SIZE vs FLIP_END_SIZE).
func TestDiscoFlipEventParsing(t *testing.T) {
	diff, on, ok := discoFlipEvent("[mix 2 drums0d]")
	if !ok || diff != Hard || !on {
		t.Errorf("on marker = diff %v on %v ok %v, want Hard/true/true", diff, on, ok)
	}

	diff, on, ok = discoFlipEvent("[mix 2 drums0]")
	if !ok || diff != Hard || on {
		t.Errorf("off marker = diff %v on %v ok %v, want Hard/false/true", diff, on, ok)
	}

	if _, _, ok := discoFlipEvent("[mix 2 drums]"); ok {
		t.Error("expected no match for a marker with no mix number")
	}
	if _, _, ok := discoFlipEvent("[ENABLE_CHART_DYNAMICS]"); ok {
		t.Error("expected no match for an unrelated text event")
	}
}

// TestConvertInstrumentTrackDiscoFlipPairing exercises an on/off pair
// forming one region, a lone on with no matching off producing no region,
// and an off with no pending on being ignored rather than pairing
// backwards.
func TestConvertInstrumentTrackDiscoFlipPairing(t *testing.T) {
	track := MidiTrack{
		{Tick: 0, Kind: MidiEventMeta, MetaType: metaTrackName, Raw: []byte("PART DRUMS")},
		{Tick: 0, Kind: MidiEventChannel, Status: 0x99, Data: [2]byte{97, 100}},
		{Tick: 600, Kind: MidiEventChannel, Status: 0x89, Data: [2]byte{97, 0}},
		{Tick: 100, Kind: MidiEventMeta, MetaType: metaText, Raw: []byte("[mix 3 drums0]")},
		{Tick: 200, Kind: MidiEventMeta, MetaType: metaText, Raw: []byte("[mix 3 drums0d]")},
		{Tick: 400, Kind: MidiEventMeta, MetaType: metaText, Raw: []byte("[mix 3 drums0]")},
		{Tick: 500, Kind: MidiEventMeta, MetaType: metaText, Raw: []byte("[mix 3 drums0d]")},
	}

	tracks, err := NewMidiConverter(Metadata{}).convertInstrumentTrack(track, Drums, 64, &SongGlobalData{Resolution: 192})
	if err != nil {
		t.Fatalf("convertInstrumentTrack: %v", err)
	}
	nt, ok := tracks[Expert]
	if !ok {
		t.Fatal("expected an Expert drum track")
	}
	if len(nt.DiscoFlips) != 1 {
		t.Fatalf("DiscoFlips = %+v, want exactly one on/off region", nt.DiscoFlips)
	}
	if nt.DiscoFlips[0].Position != 200 || nt.DiscoFlips[0].Length != 200 {
		t.Errorf("DiscoFlips[0] = %+v, want position 200 length 200", nt.DiscoFlips[0])
	}
}
