package sightread

import "testing"

func TestSongAddNoteTrackSkipsEmptyTracks(t *testing.T) {
	global := newTestGlobal(t, 192)
	song := NewSong(global)

	empty := NewNoteTrack(Guitar, Expert, nil, nil, nil, 0, global)
	song.AddNoteTrack(Guitar, Expert, empty)
	if len(song.Instruments()) != 0 {
		t.Errorf("expected an empty track to be a no-op, got instruments %v", song.Instruments())
	}

	nonEmpty := NewNoteTrack(Guitar, Expert, []Note{noteAt(0, Green, 0)}, nil, nil, 0, global)
	song.AddNoteTrack(Guitar, Expert, nonEmpty)
	if len(song.Instruments()) != 1 {
		t.Fatalf("expected 1 instrument after adding a non-empty track, got %v", song.Instruments())
	}
}

func TestSongInstrumentsAndDifficulties(t *testing.T) {
	global := newTestGlobal(t, 192)
	song := NewSong(global)
	song.AddNoteTrack(Guitar, Expert, NewNoteTrack(Guitar, Expert, []Note{noteAt(0, Green, 0)}, nil, nil, 0, global))
	song.AddNoteTrack(Guitar, Hard, NewNoteTrack(Guitar, Hard, []Note{noteAt(0, Green, 0)}, nil, nil, 0, global))
	song.AddNoteTrack(Bass, Expert, NewNoteTrack(Bass, Expert, []Note{noteAt(0, Green, 0)}, nil, nil, 0, global))

	instruments := song.Instruments()
	if len(instruments) != 2 || instruments[0] != Guitar || instruments[1] != Bass {
		t.Errorf("Instruments() = %v, want [Guitar Bass] in ascending order", instruments)
	}

	diffs := song.Difficulties(Guitar)
	if len(diffs) != 2 || diffs[0] != Hard || diffs[1] != Expert {
		t.Errorf("Difficulties(Guitar) = %v, want [Hard Expert]", diffs)
	}
}

func TestSongTrackMissingInstrumentAndDifficulty(t *testing.T) {
	global := newTestGlobal(t, 192)
	song := NewSong(global)
	song.AddNoteTrack(Guitar, Expert, NewNoteTrack(Guitar, Expert, []Note{noteAt(0, Green, 0)}, nil, nil, 0, global))

	if _, err := song.Track(Bass, Expert); err == nil {
		t.Error("expected error for an instrument not present in the song")
	}
	if _, err := song.Track(Guitar, Easy); err == nil {
		t.Error("expected error for a difficulty not present for the instrument")
	}
	if _, err := song.Track(Guitar, Expert); err != nil {
		t.Errorf("Track(Guitar, Expert): %v", err)
	}
}

func TestSongUnisonPhrasePositionsExcludesSixFretAndSingleInstrumentPhrases(t *testing.T) {
	global := newTestGlobal(t, 192)
	song := NewSong(global)

	sp := []StarPowerPhrase{{Position: 1000, Length: 100}}
	song.AddNoteTrack(Guitar, Expert, NewNoteTrack(Guitar, Expert, []Note{noteAt(0, Green, 0)}, sp, nil, 0, global))
	song.AddNoteTrack(Bass, Expert, NewNoteTrack(Bass, Expert, []Note{noteAt(0, Green, 0)}, sp, nil, 0, global))
	song.AddNoteTrack(GHLGuitar, Expert, NewNoteTrack(GHLGuitar, Expert, []Note{noteAt(0, GHLWhite1, 0)}, sp, nil, 0, global))

	loneSP := []StarPowerPhrase{{Position: 2000, Length: 50}}
	song.AddNoteTrack(Keys, Expert, NewNoteTrack(Keys, Expert, []Note{noteAt(0, Green, 0)}, loneSP, nil, 0, global))

	positions := song.UnisonPhrasePositions()
	if len(positions) != 1 || positions[0] != 1000 {
		t.Errorf("UnisonPhrasePositions() = %v, want [1000] (Guitar+Bass only; six-fret excluded, a phrase in one instrument is not a unison)", positions)
	}
}

func TestSongSpeedupNoOpAtOneHundredPercent(t *testing.T) {
	global := newTestGlobal(t, 192)
	global.Metadata.Name = "Test Song"
	song := NewSong(global)
	tempoBefore := song.Global().TempoMap

	if err := song.Speedup(100); err != nil {
		t.Fatalf("Speedup(100): %v", err)
	}
	if song.Global().TempoMap != tempoBefore {
		t.Error("Speedup(100) should not rebuild the tempo map")
	}
	if song.Global().Metadata.Name != "Test Song" {
		t.Errorf("Speedup(100) should not touch the name, got %q", song.Global().Metadata.Name)
	}
}

func TestSongSpeedupRenamesAndRejectsNonPositive(t *testing.T) {
	global := newTestGlobal(t, 192)
	global.Metadata.Name = "Test Song"
	song := NewSong(global)

	if err := song.Speedup(150); err != nil {
		t.Fatalf("Speedup(150): %v", err)
	}
	if want := "Test Song (150%)"; song.Global().Metadata.Name != want {
		t.Errorf("name = %q, want %q", song.Global().Metadata.Name, want)
	}

	if err := song.Speedup(0); err == nil {
		t.Error("expected error for non-positive speedup percent")
	}
}
