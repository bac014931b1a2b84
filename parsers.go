package sightread

import "io"

// Console selects a QB file's endianness: every console except the PS2
// stores QB data big-endian.
type Console int

const (
	ConsolePC Console = iota
	ConsolePS2
	ConsolePS3
	ConsoleWii
	ConsoleXbox360
)

func (c Console) qbEndian() QbEndian {
	if c == ConsolePS2 {
		return QbLittleEndian
	}
	return QbBigEndian
}

// ChartParser is the public entry point for the text chart format: a
// chainable configurator over ChartConverter, feeding ParseChartFile.
type ChartParser struct {
	converter *ChartConverter
}

// NewChartParser returns a parser with every §4.8 default applied.
func NewChartParser(metadata Metadata) *ChartParser {
	return &ChartParser{converter: NewChartConverter(metadata)}
}

func (p *ChartParser) HopoThreshold(t HopoThreshold) *ChartParser {
	p.converter.HopoThreshold(t)
	return p
}

func (p *ChartParser) PermitInstruments(instruments map[Instrument]struct{}) *ChartParser {
	p.converter.PermitInstruments(instruments)
	return p
}

func (p *ChartParser) ParseSolos(permit bool) *ChartParser {
	p.converter.ParseSolos(permit)
	return p
}

// Parse reads a text chart from r and converts it to a Song.
func (p *ChartParser) Parse(r io.Reader) (*Song, error) {
	chart, err := ParseChartFile(r)
	if err != nil {
		return nil, err
	}
	return p.converter.Convert(chart)
}

// MidiParser is the public entry point for the standard-MIDI chart
// variant: a chainable configurator over MidiConverter, feeding
// DecodeMidi.
type MidiParser struct {
	converter *MidiConverter
}

// NewMidiParser returns a parser with every §4.8 default applied.
func NewMidiParser(metadata Metadata) *MidiParser {
	return &MidiParser{converter: NewMidiConverter(metadata)}
}

func (p *MidiParser) HopoThreshold(t HopoThreshold) *MidiParser {
	p.converter.HopoThreshold(t)
	return p
}

func (p *MidiParser) PermitInstruments(instruments map[Instrument]struct{}) *MidiParser {
	p.converter.PermitInstruments(instruments)
	return p
}

func (p *MidiParser) ParseSolos(permit bool) *MidiParser {
	p.converter.ParseSolos(permit)
	return p
}

// Parse reads an SMF stream from r and converts it to a Song.
func (p *MidiParser) Parse(r io.Reader) (*Song, error) {
	midi, err := DecodeMidi(r)
	if err != nil {
		return nil, err
	}
	return p.converter.Convert(midi)
}

// QbMidiParser is the public entry point for the proprietary binary QB
// container: a chainable configurator over QbConverter, feeding
// DecodeQb with the endianness the chosen Console implies.
type QbMidiParser struct {
	converter *QbConverter
	console   Console
}

// NewQbMidiParser returns a parser for the song part named shortName,
// defaulting to PC (big-endian) and the Guitar instrument.
func NewQbMidiParser(metadata Metadata, shortName string) *QbMidiParser {
	return &QbMidiParser{converter: NewQbConverter(metadata, shortName), console: ConsolePC}
}

func (p *QbMidiParser) ForConsole(c Console) *QbMidiParser {
	p.console = c
	return p
}

func (p *QbMidiParser) Instrument(i Instrument) *QbMidiParser {
	p.converter.Instrument(i)
	return p
}

// Parse decodes a QB file's bytes and converts it to a Song.
func (p *QbMidiParser) Parse(data []byte) (*Song, error) {
	qb, err := DecodeQb(data, p.console.qbEndian())
	if err != nil {
		return nil, err
	}
	return p.converter.Convert(qb)
}
