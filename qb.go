package sightread

import "math"

// QbEndian selects how multi-byte integers in a QB file are decoded. The
// per-item "info" byte pair is always read at fixed byte offsets
// regardless of this setting; only id/name/value/pointer words and
// payload integers follow it.
type QbEndian int

const (
	QbLittleEndian QbEndian = iota
	QbBigEndian
)

// QbItemType is the QB type alphabet (§4.6).
type QbItemType int

const (
	QbStructFlag QbItemType = 0
	QbInteger    QbItemType = 1
	QbFloat      QbItemType = 2
	QbString     QbItemType = 3
	QbWideString QbItemType = 4
	QbStruct     QbItemType = 10
	QbArray      QbItemType = 12
	QbKeyType    QbItemType = 13
	QbPointer    QbItemType = 26
)

// structItemLETranslation is the little-endian dialect's struct-item
// type byte table; the big-endian dialect uses the top-level codes
// directly.
var structItemLETranslation = map[byte]QbItemType{
	3:  QbInteger,
	5:  QbFloat,
	7:  QbString,
	21: QbStruct,
	27: QbKeyType,
	53: QbPointer,
}

// QbItem is one decoded node of the item tree: a top-level item, a
// struct member, or an array element. Only the field(s) matching Type
// are meaningful.
type QbItem struct {
	ID      uint32
	Name    uint32
	Type    QbItemType
	Flags   byte
	Int     int32
	Float   float32
	Str     string
	Wide    string
	Struct  []QbItem
	Array   []QbItem
	Pointer uint32
}

// QbFile is the decoded product of DecodeQb: the header fields plus the
// flat top-level item list.
type QbFile struct {
	Flags    uint32
	FileSize uint32
	Items    []QbItem
}

const qbHeaderSize = 28

// DecodeQb parses a QB file's 28-byte header and top-level item list
// per §4.6. Struct and array bodies are read as each item is decoded, by
// following its value pointer; decoding is otherwise a single forward
// pass over the top-level list.
func DecodeQb(data []byte, endian QbEndian) (*QbFile, error) {
	if len(data) < qbHeaderSize {
		return nil, newParseError("qb file shorter than header")
	}

	c := &qbCursor{data: data, endian: endian}
	flags, err := c.u32()
	if err != nil {
		return nil, err
	}
	fileSize, err := c.u32()
	if err != nil {
		return nil, err
	}
	c.seek(qbHeaderSize)

	limit := int(fileSize)
	if limit > len(data) {
		limit = len(data)
	}

	qb := &QbFile{Flags: flags, FileSize: fileSize}
	for c.pos < limit {
		item, err := readTopLevelItem(c)
		if err != nil {
			return nil, err
		}
		qb.Items = append(qb.Items, item)
	}
	if c.pos != limit {
		return nil, newParseError("qb: top-level item list overran file_size")
	}
	return qb, nil
}

// qbCursor is an absolute, file-wide byte offset with 4-byte-aligned
// advances, matching §4.6's "follow a pointer by seeking absolute, not
// relative to any residual span" requirement.
type qbCursor struct {
	data   []byte
	endian QbEndian
	pos    int
}

func (c *qbCursor) seek(off int) { c.pos = off }

func (c *qbCursor) align4() {
	if m := c.pos % 4; m != 0 {
		c.pos += 4 - m
	}
}

// rawInfoBytes reads the 4-byte info word at fixed byte positions,
// independent of declared endianness.
func (c *qbCursor) rawInfoBytes() ([4]byte, error) {
	var b [4]byte
	if c.pos+4 > len(c.data) {
		return b, newParseError("qb: read past end of file at offset %d", c.pos)
	}
	copy(b[:], c.data[c.pos:c.pos+4])
	c.pos += 4
	c.align4()
	return b, nil
}

func (c *qbCursor) u32() (uint32, error) {
	if c.pos+4 > len(c.data) {
		return 0, newParseError("qb: read past end of file at offset %d", c.pos)
	}
	b := c.data[c.pos : c.pos+4]
	var v uint32
	if c.endian == QbBigEndian {
		v = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	} else {
		v = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	}
	c.pos += 4
	c.align4()
	return v, nil
}

func readTopLevelItem(c *qbCursor) (QbItem, error) {
	info, err := c.rawInfoBytes()
	if err != nil {
		return QbItem{}, err
	}
	typ := QbItemType(info[2])
	flags := info[1]

	id, err := c.u32()
	if err != nil {
		return QbItem{}, err
	}
	name, err := c.u32()
	if err != nil {
		return QbItem{}, err
	}
	value, err := c.u32()
	if err != nil {
		return QbItem{}, err
	}

	item := QbItem{ID: id, Name: name, Type: typ, Flags: flags}
	if err := populateItemBody(c.data, c.endian, &item, value); err != nil {
		return QbItem{}, err
	}
	return item, nil
}

// populateItemBody fills item's payload given its already-decoded type
// and raw value word. String/WideString/Struct/Array treat value as a
// file-absolute pointer and read the referenced body independently of
// any caller cursor's position.
func populateItemBody(data []byte, endian QbEndian, item *QbItem, value uint32) error {
	switch item.Type {
	case QbInteger, QbKeyType:
		item.Int = int32(value)
	case QbFloat:
		item.Float = math.Float32frombits(value)
	case QbString:
		s, err := readCString(data, int(value))
		if err != nil {
			return err
		}
		item.Str = s
	case QbWideString:
		s, err := readWideCString(data, int(value), endian)
		if err != nil {
			return err
		}
		item.Wide = s
	case QbStruct:
		items, err := readStructChain(data, endian, int(value))
		if err != nil {
			return err
		}
		item.Struct = items
	case QbArray:
		elems, err := readArrayNode(data, endian, int(value), item.Flags)
		if err != nil {
			return err
		}
		item.Array = elems
	case QbPointer:
		item.Pointer = value
	case QbStructFlag:
		// Array sentinel only; no payload of its own.
	default:
		return newParseError("qb: unknown item type %d", item.Type)
	}
	return nil
}

func readCString(data []byte, off int) (string, error) {
	if off < 0 || off > len(data) {
		return "", newParseError("qb: string pointer %d out of range", off)
	}
	end := off
	for end < len(data) && data[end] != 0 {
		end++
	}
	if end >= len(data) {
		return "", newParseError("qb: unterminated string at offset %d", off)
	}
	return string(data[off:end]), nil
}

func readWideCString(data []byte, off int, endian QbEndian) (string, error) {
	var runes []rune
	pos := off
	for {
		if pos < 0 || pos+2 > len(data) {
			return "", newParseError("qb: unterminated wide string at offset %d", off)
		}
		var unit uint16
		if endian == QbBigEndian {
			unit = uint16(data[pos])<<8 | uint16(data[pos+1])
		} else {
			unit = uint16(data[pos]) | uint16(data[pos+1])<<8
		}
		if unit == 0 {
			break
		}
		runes = append(runes, rune(unit))
		pos += 2
	}
	return string(runes), nil
}

// readStructChain reads a struct's (header_marker, first_item_offset)
// pair at off, then follows the item chain until a zero "next" offset.
func readStructChain(data []byte, endian QbEndian, off int) ([]QbItem, error) {
	if off == 0 {
		return nil, nil
	}
	c := &qbCursor{data: data, endian: endian, pos: off}
	if _, err := c.u32(); err != nil { // header_marker, unused
		return nil, err
	}
	firstOffset, err := c.u32()
	if err != nil {
		return nil, err
	}

	var items []QbItem
	next := firstOffset
	for next != 0 {
		item, nextOffset, err := readStructItem(data, endian, int(next))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		next = nextOffset
	}
	return items, nil
}

// readStructItem reads one struct member at off: an info word whose
// primary byte chooses the type (unless it is 1 and a secondary byte is
// non-zero, in which case the secondary wins), then id/name/value/next.
func readStructItem(data []byte, endian QbEndian, off int) (QbItem, uint32, error) {
	c := &qbCursor{data: data, endian: endian, pos: off}
	info, err := c.rawInfoBytes()
	if err != nil {
		return QbItem{}, 0, err
	}
	primary, secondary := info[1], info[3]
	rawType := primary
	if primary == 1 && secondary != 0 {
		rawType = secondary
	}

	typ, err := structItemType(rawType, endian)
	if err != nil {
		return QbItem{}, 0, err
	}

	id, err := c.u32()
	if err != nil {
		return QbItem{}, 0, err
	}
	name, err := c.u32()
	if err != nil {
		return QbItem{}, 0, err
	}
	value, err := c.u32()
	if err != nil {
		return QbItem{}, 0, err
	}
	nextOffset, err := c.u32()
	if err != nil {
		return QbItem{}, 0, err
	}

	item := QbItem{ID: id, Name: name, Type: typ, Flags: primary}
	if err := populateItemBody(data, endian, &item, value); err != nil {
		return QbItem{}, 0, err
	}
	return item, nextOffset, nil
}

func structItemType(raw byte, endian QbEndian) (QbItemType, error) {
	if endian == QbBigEndian {
		return QbItemType(raw), nil
	}
	typ, ok := structItemLETranslation[raw]
	if !ok {
		return 0, newParseError("qb: unknown struct item type byte %d", raw)
	}
	return typ, nil
}

// readArrayNode reads an array's (descriptor, count) pair at off and
// resolves its elements per §4.6's per-element-type rules. elementFlag
// is the owning item's flags byte, used as the element type selector.
func readArrayNode(data []byte, endian QbEndian, off int, elementFlag byte) ([]QbItem, error) {
	if off == 0 {
		return nil, nil
	}
	c := &qbCursor{data: data, endian: endian, pos: off}
	descriptor, err := c.u32()
	if err != nil {
		return nil, err
	}
	count, err := c.u32()
	if err != nil {
		return nil, err
	}

	elementType := QbItemType(elementFlag)
	switch elementType {
	case QbStructFlag:
		return nil, nil
	case QbInteger:
		if count <= 1 {
			return []QbItem{{Type: QbInteger, Int: int32(descriptor)}}, nil
		}
		ic := &qbCursor{data: data, endian: endian, pos: int(descriptor)}
		items := make([]QbItem, 0, count)
		for i := uint32(0); i < count; i++ {
			v, err := ic.u32()
			if err != nil {
				return nil, err
			}
			items = append(items, QbItem{Type: QbInteger, Int: int32(v)})
		}
		return items, nil
	case QbStruct, QbArray:
		if count <= 1 {
			elem := QbItem{Type: elementType}
			if err := populateItemBody(data, endian, &elem, descriptor); err != nil {
				return nil, err
			}
			return []QbItem{elem}, nil
		}
		ic := &qbCursor{data: data, endian: endian, pos: int(descriptor)}
		items := make([]QbItem, 0, count)
		for i := uint32(0); i < count; i++ {
			ptr, err := ic.u32()
			if err != nil {
				return nil, err
			}
			elem := QbItem{Type: elementType}
			if err := populateItemBody(data, endian, &elem, ptr); err != nil {
				return nil, err
			}
			items = append(items, elem)
		}
		return items, nil
	default:
		return nil, newParseError("qb: unsupported array element type %d", elementType)
	}
}
