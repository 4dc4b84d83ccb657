// Package position computes float sort keys that place a task relative to
// its siblings in the same status group, without a server-side renumbering
// pass. Positions are advisory: two tasks may share a value, and reads break
// ties by task id.
package position

// Base is the position assigned to the first task in an empty column, and
// Gap is the spacing between appended tasks. Repeated midpoint insertion
// erodes float precision over many reorders; the renorm job restores the
// Base/Gap ladder per column.
const (
	Base = 1000.0
	Gap  = 1000.0
)

// Append returns a position after every existing position in a column,
// or Base when the column is empty.
func Append(existing []float64) float64 {
	if len(existing) == 0 {
		return Base
	}
	max := existing[0]
	for _, p := range existing[1:] {
		if p > max {
			max = p
		}
	}
	return max + Gap
}

// Between returns the midpoint position for a drop between two siblings.
func Between(prev, next float64) float64 {
	return (prev + next) / 2
}

// Before returns the position for a drop ahead of the first task in a column.
func Before(first float64) float64 {
	return first / 2
}

// Ladder returns the normalized position for 0-based index i on the
// Base/Gap ladder: 1000, 2000, 3000…
func Ladder(i int) float64 {
	return Base + Gap*float64(i)
}
