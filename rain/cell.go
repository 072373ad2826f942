package rain

// State is the role a cell plays in the simulation
type State uint8

const (
	StateNone State = iota // backdrop
	StateDrop              // falling head
	StateTail              // trailing cell owned by the drop below it
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateDrop:
		return "drop"
	case StateTail:
		return "tail"
	default:
		return "invalid"
	}
}

// Printable character range
const (
	CharMin = 32
	CharMax = 126
)

// Tail length range for newly spawned drops
const (
	TailMin = 8
	TailMax = 63
)

// Packed layout, 16 bits per cell
//
//	15          10 9   8 7             0
//	|    size     | state |    char     |
const (
	maskChar  = 0x00FF
	maskState = 0x0300
	maskSize  = 0xFC00

	shiftState = 8
	shiftSize  = 10

	// SizeMax is the largest value the packed size field holds
	SizeMax = maskSize >> shiftSize
)

// Cell holds one grid position
// Size is the tail length for a drop, the color index for a tail and 0 otherwise
type Cell struct {
	Char  byte
	State State
	Size  uint8
}

// NewCell builds a cell, zeroing size when state is none
func NewCell(char byte, state State, size uint8) Cell {
	if state == StateNone {
		size = 0
	}
	return Cell{Char: char, State: state, Size: size}
}

// WithChar returns a copy with the character replaced
func (c Cell) WithChar(char byte) Cell {
	c.Char = char
	return c
}

// WithState returns a copy with the state replaced; none clears size
func (c Cell) WithState(state State) Cell {
	return NewCell(c.Char, state, c.Size)
}

// WithSize returns a copy with size replaced; a none cell keeps size 0
func (c Cell) WithSize(size uint8) Cell {
	return NewCell(c.Char, c.State, size)
}

// Active reports whether the cell belongs to a drop
func (c Cell) Active() bool {
	return c.State != StateNone
}

// Pack returns the 16-bit encoding of the cell
func (c Cell) Pack() uint16 {
	return Encode(c.Char, c.State, c.Size)
}

// Unpack decodes a 16-bit value into a cell
func Unpack(v uint16) Cell {
	char, state, size := Decode(v)
	return Cell{Char: char, State: state, Size: size}
}

// Encode packs char, state and size into one value
// Out-of-range inputs are masked, not rejected
func Encode(char byte, state State, size uint8) uint16 {
	return (maskSize & (uint16(size) << shiftSize)) |
		(maskState & (uint16(state) << shiftState)) |
		(maskChar & uint16(char))
}

// Decode splits a packed value into char, state and size
func Decode(v uint16) (char byte, state State, size uint8) {
	return byte(v & maskChar), State((v & maskState) >> shiftState), uint8((v & maskSize) >> shiftSize)
}
