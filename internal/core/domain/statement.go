package domain

// ObjectKind distinguishes resource objects from literal objects in a
// statement. The store never interprets literals.
type ObjectKind string

const (
	ObjectIRI     ObjectKind = "iri"
	ObjectLiteral ObjectKind = "literal"
)

// Statement is one subject-predicate-object fact. Statements are append-only
// from the caller's perspective; corrections are retract+insert pairs.
type Statement struct {
	Subject   string     `json:"subject"`
	Predicate string     `json:"predicate"`
	Object    string     `json:"object"`
	Kind      ObjectKind `json:"kind"`
}

// TriplePattern selects statements by any combination of fields. Empty
// fields are wildcards.
type TriplePattern struct {
	Subject   string
	Predicate string
	Object    string
}

// Matches reports whether the statement satisfies the pattern.
func (p TriplePattern) Matches(s Statement) bool {
	if p.Subject != "" && p.Subject != s.Subject {
		return false
	}
	if p.Predicate != "" && p.Predicate != s.Predicate {
		return false
	}
	if p.Object != "" && p.Object != s.Object {
		return false
	}
	return true
}
