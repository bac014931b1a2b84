package main

// General MIDI Drum/Percussion Key Map.
// Reference: https://computermusicresource.com/GM.Percussion.KeyMap.html
const (
	AcousticBassDrum = 35 // B0 - Acoustic Bass Drum
	BassDrum1        = 36 // C1 - Bass Drum 1
	SideStick        = 37 // C#1 - Side Stick
	AcousticSnare    = 38 // D1 - Acoustic Snare
	HandClap         = 39 // Eb1 - Hand Clap
	ElectricSnare    = 40 // E1 - Electric Snare
	LowFloorTom      = 41 // F1 - Low Floor Tom
	ClosedHiHat      = 42 // F#1 - Closed Hi Hat
	HighFloorTom     = 43 // G1 - High Floor Tom
	PedalHiHat       = 44 // Ab1 - Pedal Hi-Hat
	LowTom           = 45 // A1 - Low Tom
	OpenHiHat        = 46 // Bb1 - Open Hi-Hat
	LowMidTom        = 47 // B1 - Low-Mid Tom
	HiMidTom         = 48 // C2 - Hi Mid Tom
	CrashCymbal1     = 49 // C#2 - Crash Cymbal 1
	HighTom          = 50 // D2 - High Tom
	RideCymbal1      = 51 // Eb2 - Ride Cymbal 1
)

// General MIDI program numbers (0-indexed) for the melodic instruments the
// exporter assigns outside channel 9.
const (
	GMElectricBassFinger = 33 // Electric Bass (finger)
)

// gmDrumLaneMap is the four-lane/five-lane drum Colour -> GM percussion key,
// used when the lane's FlagCymbal bit is not set (i.e. it is a pad/tom hit or
// has no cymbal/tom distinction).
var gmDrumLaneMap = map[int]uint8{
	0: BassDrum1,  // DoubleKick
	1: BassDrum1,  // Kick
	2: AcousticSnare, // DrumRed
	3: LowMidTom,  // DrumYellow, tom
	4: LowTom,     // DrumBlue, tom
	5: LowFloorTom, // DrumGreen, tom
}

// gmCymbalLaneMap is the same lanes when FlagCymbal is set.
var gmCymbalLaneMap = map[int]uint8{
	3: ClosedHiHat,  // DrumYellow, cymbal
	4: RideCymbal1,  // DrumBlue, cymbal
	5: CrashCymbal1, // DrumGreen, cymbal
}
