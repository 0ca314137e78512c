package rbtree

import "fmt"

// Color is a red-black tree node's color bit. Encoded as a small integer
// internally but serialized as the literal strings "red"/"black" so a
// dumped index file is legible without decoding a magic number.
type Color int8

const (
	ColorBlack Color = iota
	ColorRed
)

// String renders the color the way it appears on the wire.
func (c Color) String() string {
	if c == ColorRed {
		return "red"
	}
	return "black"
}

// MarshalJSON encodes the color as "red" or "black".
func (c Color) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON decodes "red"/"black" back into a Color, rejecting any other
// literal — an index file with an unrecognized color is corrupt, not a
// forward-compatible extension.
func (c *Color) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"red"`:
		*c = ColorRed
	case `"black"`:
		*c = ColorBlack
	default:
		return fmt.Errorf("rbtree: invalid color literal %s", data)
	}
	return nil
}
