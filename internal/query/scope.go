package query

import (
	"errors"
	"strings"
)

// ErrUnscoped is returned when a query is built without a caller identity.
var ErrUnscoped = errors.New("query has no owner scope")

// Scope restricts every predicate built through it to records owned by one
// user. It is the only way store queries over tasks and projects are
// compiled, so the owner constraint cannot be left out.
type Scope struct {
	owner string
}

// Owner returns the scope of the given user id.
func Owner(userID string) (Scope, error) {
	if strings.TrimSpace(userID) == "" {
		return Scope{}, ErrUnscoped
	}
	return Scope{owner: userID}, nil
}

// MustOwner is Owner for ids that are known to be valid, such as ids taken
// from a verified token. It panics on a blank id.
func MustOwner(userID string) Scope {
	s, err := Owner(userID)
	if err != nil {
		panic(err)
	}
	return s
}

// UserID returns the owning user id.
func (s Scope) UserID() string {
	return s.owner
}

// Valid reports whether the scope carries an owner.
func (s Scope) Valid() bool {
	return s.owner != ""
}

// Match returns owner = caller AND p.
func (s Scope) Match(p Predicate) (Predicate, error) {
	if !s.Valid() {
		return nil, ErrUnscoped
	}
	return And(Eq(FieldUserID, s.owner), p), nil
}

// ByID returns owner = caller AND id = id.
func (s Scope) ByID(id string) (Predicate, error) {
	return s.Match(Eq(FieldID, id))
}

// Where compiles owner = caller AND p into SQL.
func (s Scope) Where(p Predicate) (string, []any, error) {
	m, err := s.Match(p)
	if err != nil {
		return "", nil, err
	}
	sql, args := Compile(m)
	return sql, args, nil
}
