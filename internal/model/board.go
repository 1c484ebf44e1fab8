package model

// BoardSize is the fixed grid dimension
const BoardSize = 3

// Cell is the content of a single board cell
type Cell uint8

const (
	CellEmpty Cell = iota
	CellX
	CellO
)

// CellFor returns the cell value for a symbol
func CellFor(s Symbol) Cell {
	if s == SymbolX {
		return CellX
	}
	return CellO
}

// Symbol returns the symbol occupying the cell, or "" if empty
func (c Cell) Symbol() Symbol {
	switch c {
	case CellX:
		return SymbolX
	case CellO:
		return SymbolO
	}
	return ""
}

// Board is the 3x3 grid, row-major
type Board [BoardSize][BoardSize]Cell

// InBounds returns true if the position is within the grid
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// IsFull returns true if all nine cells are occupied
func (b *Board) IsFull() bool {
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if b[row][col] == CellEmpty {
				return false
			}
		}
	}
	return true
}

// Line returns the winning symbol if a completed line exists.
// Checked in a fixed order: the three rows, the three columns, then the
// two diagonals. At most one line can be complete right after the move
// that created it, so the order only matters for determinism.
func (b *Board) Line() (Symbol, bool) {
	for i := 0; i < BoardSize; i++ {
		if b[i][0] != CellEmpty && b[i][0] == b[i][1] && b[i][1] == b[i][2] {
			return b[i][0].Symbol(), true
		}
	}
	for i := 0; i < BoardSize; i++ {
		if b[0][i] != CellEmpty && b[0][i] == b[1][i] && b[1][i] == b[2][i] {
			return b[0][i].Symbol(), true
		}
	}
	if b[0][0] != CellEmpty && b[0][0] == b[1][1] && b[1][1] == b[2][2] {
		return b[0][0].Symbol(), true
	}
	if b[0][2] != CellEmpty && b[0][2] == b[1][1] && b[1][1] == b[2][0] {
		return b[0][2].Symbol(), true
	}
	return "", false
}

// Strings renders the board as a grid of "X"/"O"/"" strings for transport
func (b *Board) Strings() [][]string {
	cells := make([][]string, BoardSize)
	for row := 0; row < BoardSize; row++ {
		cells[row] = make([]string, BoardSize)
		for col := 0; col < BoardSize; col++ {
			cells[row][col] = string(b[row][col].Symbol())
		}
	}
	return cells
}
