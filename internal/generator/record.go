package generator

// Record is the composite record being built: committed values per field, in
// resolution order. Once a field is committed it is never removed or altered.
type Record struct {
	values map[string][]string
	order  []string
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: map[string][]string{}}
}

// Has reports whether field has been committed.
func (r *Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Values returns the committed values for field.
func (r *Record) Values(field string) ([]string, bool) {
	vals, ok := r.values[field]
	if !ok {
		return nil, false
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out, true
}

// Contains reports whether field was committed with value among its values.
func (r *Record) Contains(field, value string) bool {
	for _, v := range r.values[field] {
		if v == value {
			return true
		}
	}
	return false
}

// Fields returns the committed field names in resolution order.
func (r *Record) Fields() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports the number of committed fields.
func (r *Record) Len() int {
	return len(r.order)
}

// Clone returns a deep copy, used to hand out the finished record without
// aliasing builder state.
func (r *Record) Clone() *Record {
	clone := &Record{
		values: make(map[string][]string, len(r.values)),
		order:  make([]string, len(r.order)),
	}
	copy(clone.order, r.order)
	for field, vals := range r.values {
		cp := make([]string, len(vals))
		copy(cp, vals)
		clone.values[field] = cp
	}
	return clone
}

func (r *Record) commit(field string, values []string) {
	cp := make([]string, len(values))
	copy(cp, values)
	r.values[field] = cp
	r.order = append(r.order, field)
}

func (r *Record) hasAll(fields []string) bool {
	for _, field := range fields {
		if !r.Has(field) {
			return false
		}
	}
	return true
}
