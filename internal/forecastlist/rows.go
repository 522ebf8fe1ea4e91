package forecastlist

// Rows is an arena of row handles indexed by display slot. Binding a slot
// reuses the handle already stored there, so scrolling through a long list
// only ever allocates as many handles as there are visible slots (plus one
// per template switch).
type Rows struct {
	slots []*Row
}

// Bind populates the handle in slot with the row at position
func (r *Rows) Bind(a *Adapter, slot, position int) *Row {
	if slot < 0 {
		return nil
	}
	for len(r.slots) <= slot {
		r.slots = append(r.slots, nil)
	}
	row := a.BindRow(position, r.slots[slot])
	if row != nil {
		r.slots[slot] = row
	}
	return row
}

// Len returns the number of slots materialized so far
func (r *Rows) Len() int {
	return len(r.slots)
}

// Reset drops every handle, e.g. after the terminal is resized
func (r *Rows) Reset() {
	r.slots = nil
}
