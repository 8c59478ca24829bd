package game

import "fmt"

// Point identifies a cell by row and column.
type Point struct {
	Row int
	Col int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Kind is what a cell hides: a mine, or a clear cell with the number of
// mines in its Moore neighbourhood.
type Kind int8

// Mine is the Kind of a mined cell.
const Mine Kind = -1

// Clear returns the Kind of a safe cell with n neighbouring mines.
func Clear(n int) Kind {
	if n < 0 || n > 8 {
		panic(fmt.Sprintf("game: invalid neighbour count %d", n))
	}
	return Kind(n)
}

// IsMine reports whether the cell is mined.
func (k Kind) IsMine() bool { return k == Mine }

// Count returns the neighbouring mine count, or -1 for a mine.
func (k Kind) Count() int { return int(k) }

func (k Kind) String() string {
	if k.IsMine() {
		return "mine"
	}
	return fmt.Sprintf("clear(%d)", int(k))
}

// Interaction is the player-visible state of a cell.
type Interaction uint8

const (
	Untouched Interaction = iota
	Cleared
	Flagged
)

func (i Interaction) String() string {
	switch i {
	case Untouched:
		return "untouched"
	case Cleared:
		return "cleared"
	case Flagged:
		return "flagged"
	default:
		return fmt.Sprintf("interaction(%d)", uint8(i))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (i Interaction) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// CellState is the snapshot delivered to cell observers.
type CellState struct {
	Interaction Interaction
	Kind        Kind
}

// Symbol returns the single-character rendering of the cell: blank when
// untouched, F when flagged, * for a cleared mine, and the digit (or a dot
// for zero) for a cleared safe cell.
func (s CellState) Symbol() string {
	switch s.Interaction {
	case Flagged:
		return "F"
	case Cleared:
		if s.Kind.IsMine() {
			return "*"
		}
		if s.Kind == 0 {
			return "."
		}
		return fmt.Sprintf("%d", s.Kind.Count())
	default:
		return " "
	}
}
