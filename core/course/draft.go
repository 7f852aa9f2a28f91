package course

import "reflect"

// Draft is a working copy of a course list on top of the last state known
// to be saved. Mutations go to Current; Commit adopts a saved list and
// Rollback drops the pending changes.
type Draft struct {
	base List
	work List
}

func NewDraft(base List) *Draft {
	return &Draft{
		base: base.Clone(),
		work: base.Clone(),
	}
}

// Base returns a copy of the last saved list.
func (d *Draft) Base() List {
	return d.base.Clone()
}

// Current returns the working list, to be mutated in place.
func (d *Draft) Current() *List {
	return &d.work
}

// Dirty reports whether the working list differs from the saved one.
func (d *Draft) Dirty() bool {
	return !reflect.DeepEqual(d.base, d.work)
}

// Commit adopts the list the store returned after a successful save.
func (d *Draft) Commit(saved List) {
	d.base = saved.Clone()
	d.work = saved.Clone()
}

// Rollback discards pending changes.
func (d *Draft) Rollback() {
	d.work = d.base.Clone()
}
