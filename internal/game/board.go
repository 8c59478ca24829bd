package game

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
)

// Board holds the kind and interaction of every cell plus the aggregates
// derived from them. Cells are stored row-major.
type Board struct {
	rows    int
	cols    int
	mines   int
	kinds   []Kind
	states  []Interaction
	cleared int
	flagged int
}

func newBoard(p Params, mines []int) *Board {
	b := &Board{
		rows:   p.Rows,
		cols:   p.Columns,
		mines:  len(mines),
		kinds:  make([]Kind, p.Cells()),
		states: make([]Interaction, p.Cells()),
	}
	b.layMines(mines)
	return b
}

// layMines replaces the mine layout and recomputes every neighbour count.
// Interactions are left untouched.
func (b *Board) layMines(mines []int) {
	for i := range b.kinds {
		b.kinds[i] = 0
	}
	for _, i := range mines {
		b.kinds[i] = Mine
	}
	for _, i := range mines {
		b.eachNeighbour(b.point(i), func(n Point) {
			j := b.index(n)
			if !b.kinds[j].IsMine() {
				b.kinds[j]++
			}
		})
	}
	b.mines = len(mines)
}

// dealMines picks count distinct cell indices uniformly at random from the
// cells for which exclude returns false.
func dealMines(total, count int, rng *rand.Rand, exclude func(int) bool) []int {
	candidates := make([]int, 0, total)
	for i := 0; i < total; i++ {
		if exclude != nil && exclude(i) {
			continue
		}
		candidates = append(candidates, i)
	}
	// Partial Fisher-Yates: only the first count slots need to be random.
	for i := 0; i < count; i++ {
		j := i + rng.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	return candidates[:count]
}

func (b *Board) size() int { return b.rows * b.cols }

func (b *Board) contains(p Point) bool {
	return p.Row >= 0 && p.Row < b.rows && p.Col >= 0 && p.Col < b.cols
}

func (b *Board) index(p Point) int { return p.Row*b.cols + p.Col }

func (b *Board) point(i int) Point { return Point{Row: i / b.cols, Col: i % b.cols} }

func (b *Board) kind(p Point) Kind { return b.kinds[b.index(p)] }

func (b *Board) interaction(p Point) Interaction { return b.states[b.index(p)] }

func (b *Board) state(p Point) CellState {
	i := b.index(p)
	return CellState{Interaction: b.states[i], Kind: b.kinds[i]}
}

// set changes a cell's interaction and keeps the aggregates in step.
func (b *Board) set(p Point, to Interaction) {
	i := b.index(p)
	from := b.states[i]
	if from == to {
		return
	}
	switch from {
	case Cleared:
		b.cleared--
	case Flagged:
		b.flagged--
	}
	switch to {
	case Cleared:
		b.cleared++
	case Flagged:
		b.flagged++
	}
	b.states[i] = to
}

// eachNeighbour calls fn for every in-bounds Moore neighbour of p.
func (b *Board) eachNeighbour(p Point, fn func(Point)) {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Point{Row: p.Row + dr, Col: p.Col + dc}
			if b.contains(n) {
				fn(n)
			}
		}
	}
}

// safeCells is the number of cells that must be cleared to win.
func (b *Board) safeCells() int { return b.size() - b.mines }

// String renders the board with row and column headers, using the same
// symbols as CellState.Symbol and '-' for untouched cells.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("   ")
	for c := 0; c < b.cols; c++ {
		fmt.Fprintf(&sb, "%d ", c%10)
	}
	sb.WriteByte('\n')
	for r := 0; r < b.rows; r++ {
		fmt.Fprintf(&sb, "%2d ", r)
		for c := 0; c < b.cols; c++ {
			s := b.state(Point{Row: r, Col: c})
			sym := s.Symbol()
			if s.Interaction == Untouched {
				sym = "-"
			}
			sb.WriteString(sym)
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
