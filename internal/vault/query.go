package vault

import "strings"

// NodeField names a filterable column of the nodes table.
type NodeField int

const (
	FieldName NodeField = iota
	FieldType
	FieldMeta
)

func (f NodeField) column() string {
	switch f {
	case FieldName:
		return "name"
	case FieldType:
		return "type"
	case FieldMeta:
		return "meta"
	}
	return "name"
}

type filterOp int

const (
	opEquals filterOp = iota
	opNotEquals
	opLike
)

// Filter is a composable node query condition. The zero Filter matches
// everything.
type Filter struct {
	conds []condition
}

type condition struct {
	field NodeField
	op    filterOp
	value string
}

// Eq matches nodes whose field equals value.
func Eq(field NodeField, value string) Filter {
	return Filter{conds: []condition{{field: field, op: opEquals, value: value}}}
}

// Ne matches nodes whose field differs from value.
func Ne(field NodeField, value string) Filter {
	return Filter{conds: []condition{{field: field, op: opNotEquals, value: value}}}
}

// Like matches nodes whose field matches a SQL LIKE pattern.
func Like(field NodeField, pattern string) Filter {
	return Filter{conds: []condition{{field: field, op: opLike, value: pattern}}}
}

// And combines filters conjunctively.
func (f Filter) And(other Filter) Filter {
	return Filter{conds: append(append([]condition{}, f.conds...), other.conds...)}
}

// clause renders the filter as a parameterized WHERE body.
func (f Filter) clause() (string, []any) {
	if len(f.conds) == 0 {
		return "1=1", nil
	}
	parts := make([]string, 0, len(f.conds))
	args := make([]any, 0, len(f.conds))
	for _, cond := range f.conds {
		op := "="
		switch cond.op {
		case opNotEquals:
			op = "!="
		case opLike:
			op = "LIKE"
		}
		parts = append(parts, "("+cond.field.column()+" "+op+" ?)")
		args = append(args, cond.value)
	}
	return strings.Join(parts, " AND "), args
}
