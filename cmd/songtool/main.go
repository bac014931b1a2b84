package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leafo/sightread"
)

func main() {
	exportGmDrums := flag.Bool("export-gm-drums", false, "Export the highest-difficulty drum track to a General MIDI file")
	exportGmBass := flag.Bool("export-gm-bass", false, "Export the highest-difficulty bass track to a General MIDI file")
	console := flag.String("console", "pc", "Console a QB MIDI file was built for: pc, ps2, ps3, wii, xbox360")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <file> [output]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	filename := flag.Arg(0)
	song, err := parseFile(filename, *console)
	if err != nil {
		log.Printf("Error parsing %s: %v\n", filename, err)
		os.Exit(1)
	}

	printSummary(filename, song)

	if *exportGmDrums || *exportGmBass {
		outputFile := flag.Arg(1)
		if outputFile == "" {
			outputFile = defaultExportName(filename, *exportGmDrums, *exportGmBass)
		}
		if err := exportGm(song, outputFile, *exportGmDrums, *exportGmBass); err != nil {
			log.Printf("Error exporting General MIDI file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("General MIDI exported to: %s\n", outputFile)
	}
}

// parseFile sniffs filename's extension and runs the matching public parser:
// .chart -> ChartParser, .mid/.midi -> MidiParser, anything else is treated
// as a QB MIDI container for the chosen console.
func parseFile(filename, console string) (*sightread.Song, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	meta := sightread.Metadata{}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".chart":
		return sightread.NewChartParser(meta).Parse(bytes.NewReader(data))
	case ".mid", ".midi":
		return sightread.NewMidiParser(meta).Parse(bytes.NewReader(data))
	default:
		c, err := parseConsole(console)
		if err != nil {
			return nil, err
		}
		shortName := strings.TrimSuffix(filepath.Base(filename), ext)
		return sightread.NewQbMidiParser(meta, shortName).ForConsole(c).Parse(data)
	}
}

func parseConsole(name string) (sightread.Console, error) {
	switch strings.ToLower(name) {
	case "pc":
		return sightread.ConsolePC, nil
	case "ps2":
		return sightread.ConsolePS2, nil
	case "ps3":
		return sightread.ConsolePS3, nil
	case "wii":
		return sightread.ConsoleWii, nil
	case "xbox360":
		return sightread.ConsoleXbox360, nil
	default:
		return 0, fmt.Errorf("unknown console %q", name)
	}
}

func printSummary(filename string, song *sightread.Song) {
	global := song.Global()
	fmt.Printf("%s\n", filename)
	fmt.Printf("  name:       %s\n", global.Metadata.Name)
	fmt.Printf("  artist:     %s\n", global.Metadata.Artist)
	fmt.Printf("  charter:    %s\n", global.Metadata.Charter)
	fmt.Printf("  resolution: %d\n", global.Resolution)
	fmt.Printf("  tempo map:  %d BPM changes, %d time signatures\n",
		len(global.TempoMap.BPMs()), len(global.TempoMap.TimeSignatures()))
	fmt.Printf("  practice sections: %d\n", len(global.PracticeSections))
	fmt.Printf("  overdrive beats:   %d\n", len(global.OdBeats))

	for _, instrument := range song.Instruments() {
		for _, difficulty := range song.Difficulties(instrument) {
			track, err := song.Track(instrument, difficulty)
			if err != nil {
				continue
			}
			fmt.Printf("  %s/%s: %d notes, %d star power, %d solos, %d drum fills, %d disco flips, BRE=%v\n",
				instrument, difficulty, len(track.Notes), len(track.StarPower), len(track.Solos),
				len(track.DrumFills), len(track.DiscoFlips), track.BRE != nil)
		}
	}

	if positions := song.UnisonPhrasePositions(); len(positions) > 0 {
		fmt.Printf("  unison phrases: %d\n", len(positions))
	}
}

func defaultExportName(source string, drums, bass bool) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	switch {
	case drums && bass:
		return base + "_gm.mid"
	case drums:
		return base + "_drums_gm.mid"
	default:
		return base + "_bass_gm.mid"
	}
}

// exportGm writes a General MIDI file carrying whichever of the drum/bass
// tracks the caller asked for, taken from the song's highest available
// difficulty.
func exportGm(song *sightread.Song, outputFile string, drums, bass bool) error {
	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer file.Close()

	exporter := NewGeneralMidiExporter(song)

	if drums {
		track, err := highestDifficultyTrack(song, sightread.Drums)
		if err != nil {
			return fmt.Errorf("no drum track to export: %w", err)
		}
		if err := exporter.AddDrumTrack(song, track); err != nil {
			return err
		}
	}

	if bass {
		track, err := highestDifficultyTrack(song, sightread.Bass)
		if err != nil {
			return fmt.Errorf("no bass track to export: %w", err)
		}
		if err := exporter.AddBassTrack(track); err != nil {
			return err
		}
	}

	return exporter.WriteTo(file)
}

func highestDifficultyTrack(song *sightread.Song, instrument sightread.Instrument) (*sightread.NoteTrack, error) {
	for i := len(sightread.AllDifficulties) - 1; i >= 0; i-- {
		diff := sightread.AllDifficulties[i]
		if track, err := song.Track(instrument, diff); err == nil {
			return track, nil
		}
	}
	return nil, errors.New("instrument not present in song")
}
