package sightread

// Instrument identifies one of the playable parts a Song can carry notes
// for.
type Instrument int

const (
	Guitar Instrument = iota
	GuitarCoop
	Bass
	Rhythm
	Keys
	GHLGuitar
	GHLBass
	GHLRhythm
	GHLGuitarCoop
	Drums
	FortniteGuitar
	FortniteBass
	FortniteVocals
)

func (i Instrument) String() string {
	switch i {
	case Guitar:
		return "Guitar"
	case GuitarCoop:
		return "GuitarCoop"
	case Bass:
		return "Bass"
	case Rhythm:
		return "Rhythm"
	case Keys:
		return "Keys"
	case GHLGuitar:
		return "GHLGuitar"
	case GHLBass:
		return "GHLBass"
	case GHLRhythm:
		return "GHLRhythm"
	case GHLGuitarCoop:
		return "GHLGuitarCoop"
	case Drums:
		return "Drums"
	case FortniteGuitar:
		return "FortniteGuitar"
	case FortniteBass:
		return "FortniteBass"
	case FortniteVocals:
		return "FortniteVocals"
	default:
		return "Unknown"
	}
}

// AllInstruments returns every Instrument value, the default permitted
// set for a public parser.
func AllInstruments() map[Instrument]struct{} {
	all := map[Instrument]struct{}{}
	for i := Guitar; i <= FortniteVocals; i++ {
		all[i] = struct{}{}
	}
	return all
}

// isSixFret reports whether an instrument is one of the GHL six-fret
// family; unison phrase detection excludes these (§4.9).
func (i Instrument) isSixFret() bool {
	switch i {
	case GHLGuitar, GHLBass, GHLRhythm, GHLGuitarCoop:
		return true
	default:
		return false
	}
}

// Difficulty is one of the four authored skill levels.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
	Expert
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "Easy"
	case Medium:
		return "Medium"
	case Hard:
		return "Hard"
	case Expert:
		return "Expert"
	default:
		return "Unknown"
	}
}

// AllDifficulties lists the four difficulties in ascending order.
var AllDifficulties = []Difficulty{Easy, Medium, Hard, Expert}

// Colour identifies a lane within a note's instrument family. The
// concrete meaning of a value depends on which family constant block it
// was drawn from; NumLanes bounds every family's lane count so Note can
// use one fixed-size array regardless of family.
type Colour int

// Five-fret / Fortnite Festival colours. Open is never produced directly
// from a key lookup: it is assigned by relocating notes that fall inside
// an open-strum sysex interval (§4.5).
const (
	Green Colour = iota
	Red
	Yellow
	Blue
	Orange
	FiveFretOpen
)

// Six-fret (GHL) colours.
const (
	GHLOpen Colour = iota
	GHLWhite1
	GHLWhite2
	GHLWhite3
	GHLBlack1
	GHLBlack2
	GHLBlack3
)

// Four-lane drum colours. Five-lane charts additionally produce a
// duplicate DrumGreen via the five-lane fold (§4.5).
const (
	DoubleKick Colour = iota
	Kick
	DrumRed
	DrumYellow
	DrumBlue
	DrumGreen
)

// NumLanes is the widest lane count across all instrument families
// (six-fret has seven), used to size Note.Lengths.
const NumLanes = 7

type keyRange struct {
	min, max int
}

var fiveFretKeyRanges = map[Difficulty]keyRange{
	Expert: {96, 102},
	Hard:   {84, 90},
	Medium: {72, 78},
	Easy:   {60, 66},
}

var sixFretKeyRanges = map[Difficulty]keyRange{
	Expert: {94, 102},
	Hard:   {82, 90},
	Medium: {70, 78},
	Easy:   {58, 66},
}

var drumKeyRanges = map[Difficulty]keyRange{
	Expert: {95, 101},
	Hard:   {83, 89},
	Medium: {71, 77},
	Easy:   {59, 65},
}

// difficultyAndColourFromKey looks a MIDI key up against the given
// family's range table. ok is false for keys outside every block, or
// inside a block but past the number of colours that family defines
// directly from key offset (e.g. the force-hopo/force-strum slots at
// the top of a five-fret/six-fret block, or the unused seventh slot of
// a four-lane drum block).
func difficultyAndColourFromKey(key int, ranges map[Difficulty]keyRange, numColours int) (Difficulty, Colour, bool) {
	for _, diff := range AllDifficulties {
		r := ranges[diff]
		if key < r.min || key > r.max {
			continue
		}
		offset := key - r.min
		if offset >= numColours {
			return 0, 0, false
		}
		return diff, Colour(offset), true
	}
	return 0, 0, false
}

func fiveFretColourFromKey(key int) (Difficulty, Colour, bool) {
	return difficultyAndColourFromKey(key, fiveFretKeyRanges, 5)
}

func sixFretColourFromKey(key int) (Difficulty, Colour, bool) {
	return difficultyAndColourFromKey(key, sixFretKeyRanges, 7)
}

func drumColourFromKey(key int) (Difficulty, Colour, bool) {
	return difficultyAndColourFromKey(key, drumKeyRanges, 6)
}

// forceHopoKeyByDifficulty and forceStrumKeyByDifficulty are the
// trailing two slots of the five-fret/six-fret key blocks, reinterpreted
// as forcing markers rather than colours. They are never consulted for
// Drums.
var forceHopoKeyByDifficulty = map[int]Difficulty{65: Easy, 77: Medium, 89: Hard, 101: Expert}
var forceStrumKeyByDifficulty = map[int]Difficulty{66: Easy, 78: Medium, 90: Hard, 102: Expert}

// fiveLaneGreenKeyByDifficulty marks the five-lane drum chart's extra
// green key, one per difficulty, which is also the key that identifies
// a drum chart as five-lane in the first place.
var fiveLaneGreenKeyByDifficulty = map[int]Difficulty{65: Easy, 77: Medium, 89: Hard, 101: Expert}
