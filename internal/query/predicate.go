// Package query builds the ownership-scoped predicates and orderings used to
// select tasks and projects from the store.
//
// Predicates are immutable values. Every combinator returns a new predicate and
// never modifies its operands, so a filter can be assembled stage by stage and
// each stage inspected on its own.
package query

import (
	"fmt"
	"strings"
	"time"
)

// Field is a stored column that predicates may reference.
type Field string

const (
	FieldID          Field = "id"
	FieldUserID      Field = "user_id"
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldCompleted   Field = "completed"
	FieldArchived    Field = "archived"
	FieldDueDate     Field = "due_date"
	FieldProjectID   Field = "project_id"
	FieldProject     Field = "project"
	FieldName        Field = "name"
)

// FoldFunc is the SQL function the store registers for case-insensitive
// substring matching: contains_fold(haystack, needle) returns 1 or 0.
const FoldFunc = "contains_fold"

// Predicate is a boolean condition over a stored record.
type Predicate interface {
	compile(w *writer)
}

// Compile renders p as a SQL boolean expression with positional arguments.
func Compile(p Predicate) (string, []any) {
	w := &writer{}
	p.compile(w)
	return w.sb.String(), w.args
}

// String renders p for logs and test failure messages.
func String(p Predicate) string {
	sql, args := Compile(p)
	return fmt.Sprintf("%s %v", sql, args)
}

type writer struct {
	sb   strings.Builder
	args []any
}

func (w *writer) bind(v any) {
	switch x := v.(type) {
	case time.Time:
		w.args = append(w.args, x.UTC().UnixMilli())
	case bool:
		if x {
			w.args = append(w.args, 1)
		} else {
			w.args = append(w.args, 0)
		}
	default:
		w.args = append(w.args, v)
	}
	w.sb.WriteString("?")
}

type always bool

// True matches every record.
func True() Predicate { return always(true) }

// False matches no record.
func False() Predicate { return always(false) }

func (a always) compile(w *writer) {
	if a {
		w.sb.WriteString("1")
	} else {
		w.sb.WriteString("0")
	}
}

type comparison struct {
	field Field
	op    string
	value any
}

func (c comparison) compile(w *writer) {
	w.sb.WriteString(string(c.field))
	w.sb.WriteString(" ")
	w.sb.WriteString(c.op)
	w.sb.WriteString(" ")
	w.bind(c.value)
}

// Eq matches records whose field equals value.
func Eq(f Field, value any) Predicate { return comparison{field: f, op: "=", value: value} }

// Lt matches records whose field is strictly less than value. Records where
// the field is unset never match.
func Lt(f Field, value any) Predicate { return comparison{field: f, op: "<", value: value} }

// Gte matches records whose field is greater than or equal to value.
func Gte(f Field, value any) Predicate { return comparison{field: f, op: ">=", value: value} }

type notNull struct {
	field Field
}

func (n notNull) compile(w *writer) {
	w.sb.WriteString(string(n.field))
	w.sb.WriteString(" IS NOT NULL")
}

// NotNull matches records where the field is set.
func NotNull(f Field) Predicate { return notNull{field: f} }

type containsFold struct {
	field  Field
	needle string
}

func (c containsFold) compile(w *writer) {
	fmt.Fprintf(&w.sb, "%s(COALESCE(%s, ''), ", FoldFunc, c.field)
	w.bind(c.needle)
	w.sb.WriteString(") = 1")
}

// ContainsFold matches records whose field contains needle as a literal,
// case-insensitive substring.
func ContainsFold(f Field, needle string) Predicate {
	return containsFold{field: f, needle: needle}
}

type junction struct {
	op    string
	terms []Predicate
}

func (j junction) compile(w *writer) {
	w.sb.WriteString("(")
	for i, t := range j.terms {
		if i > 0 {
			w.sb.WriteString(" ")
			w.sb.WriteString(j.op)
			w.sb.WriteString(" ")
		}
		t.compile(w)
	}
	w.sb.WriteString(")")
}

// And matches records satisfying every term. Nil and True terms are skipped,
// nested conjunctions are flattened, and an empty conjunction matches
// everything.
func And(terms ...Predicate) Predicate {
	return join("AND", True(), terms)
}

// Or matches records satisfying at least one term. Nil and False terms are
// skipped and an empty disjunction matches nothing. A disjunction nested in
// a conjunction stays parenthesised, so And(Or(a, b), Or(c, d)) never
// degrades into one flat OR group.
func Or(terms ...Predicate) Predicate {
	return join("OR", False(), terms)
}

func join(op string, empty Predicate, terms []Predicate) Predicate {
	flat := make([]Predicate, 0, len(terms))
	for _, t := range terms {
		if t == nil || t == empty {
			continue
		}
		if j, ok := t.(junction); ok && j.op == op {
			flat = append(flat, j.terms...)
			continue
		}
		flat = append(flat, t)
	}
	switch len(flat) {
	case 0:
		return empty
	case 1:
		return flat[0]
	}
	return junction{op: op, terms: flat}
}
