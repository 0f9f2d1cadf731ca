// Package dirty tracks which rows of a character grid changed since they were
// last rendered.
package dirty

// Rows is a per-row dirty flag set for a grid of fixed height.
// It is not safe for concurrent use; the owning screen serialises access.
type Rows struct {
	flags []bool
	count int
}

// NewRows creates a clean tracker for height rows.
// Negative heights are treated as zero.
func NewRows(height int) *Rows {
	if height < 0 {
		height = 0
	}
	return &Rows{flags: make([]bool, height)}
}

// Height returns the number of tracked rows.
func (r *Rows) Height() int {
	return len(r.flags)
}

// Mark flags a row as dirty. Rows outside the tracked range are ignored
// and false is returned.
func (r *Rows) Mark(row int) bool {
	if row < 0 || row >= len(r.flags) {
		return false
	}
	if !r.flags[row] {
		r.flags[row] = true
		r.count++
	}
	return true
}

// MarkAll flags every row as dirty.
func (r *Rows) MarkAll() {
	for i := range r.flags {
		r.flags[i] = true
	}
	r.count = len(r.flags)
}

// IsDirty returns true if the given row needs redrawing.
func (r *Rows) IsDirty(row int) bool {
	if row < 0 || row >= len(r.flags) {
		return false
	}
	return r.flags[row]
}

// Any returns true if at least one row is dirty.
func (r *Rows) Any() bool {
	return r.count > 0
}

// Count returns the number of dirty rows.
func (r *Rows) Count() int {
	return r.count
}

// Take returns the dirty rows in ascending order and clears every flag.
// A second call without intervening marks returns an empty slice.
func (r *Rows) Take() []int {
	if r.count == 0 {
		return []int{}
	}
	rows := make([]int, 0, r.count)
	for i, d := range r.flags {
		if d {
			rows = append(rows, i)
			r.flags[i] = false
		}
	}
	r.count = 0
	return rows
}

