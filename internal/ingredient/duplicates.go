package ingredient

import "github.com/zeebo/xxh3"

// Duplicates remembers stored names by hash and reports repeats. A repeated
// name is still written; ON CONFLICT (name) DO NOTHING drops it at load time.
//
// Keys are 64-bit xxh3 hashes. A collision can only cause a spurious warning,
// never a change in output.
type Duplicates struct {
	first map[uint64]int
	count int
}

// NewDuplicates returns an empty tracker.
func NewDuplicates() *Duplicates {
	return &Duplicates{first: make(map[uint64]int)}
}

// Seen records name at row and reports whether it was seen before, along with
// the row that first used it.
func (d *Duplicates) Seen(name string, row int) (firstRow int, dup bool) {
	h := xxh3.HashString(name)
	if r, ok := d.first[h]; ok {
		d.count++
		return r, true
	}
	d.first[h] = row
	return 0, false
}

// Count returns the number of repeats observed.
func (d *Duplicates) Count() int { return d.count }
