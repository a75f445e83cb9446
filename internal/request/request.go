// Package request models service requests: a main request with zero or
// more alternatives, grouped into mutually-exclusive groups of which at
// most one member may be accepted.
package request

import "github.com/oran-mano/vnf-ga-placer/internal/service"

// Kind distinguishes a main request from one of its alternatives.
type Kind int

const (
	KindMain Kind = iota
	KindAlternative
)

// Request is one evaluated request: a main or an alternative, each with
// its own requested Service and revenue.
type Request struct {
	// Index is the request's 1-based identifier from the input file,
	// stable across runs. The output's id_richiesta is the evaluated-order
	// position instead, not this value.
	Index   int
	Kind    Kind
	Service service.Service
	Revenue float64
}

// Group is a mutually-exclusive group: a main request plus its ordered
// alternatives. At most one member may be accepted in any valid
// placement.
type Group struct {
	Main         Request
	Alternatives []Request
}

// Members returns the main request followed by its alternatives, the
// order used both for group exclusivity checks and for the
// evaluated-requests row ordering of the placement matrix.
func (g Group) Members() []Request {
	out := make([]Request, 0, len(g.Alternatives)+1)
	out = append(out, g.Main)
	out = append(out, g.Alternatives...)
	return out
}

// EvaluatedRequests flattens groups into the chromosome row order: main
// requests followed, in registration order, by their alternatives, for
// each main in registration order. This ordering is part of the
// chromosome format and must never be recomputed differently elsewhere.
func EvaluatedRequests(groups []Group) []Request {
	var out []Request
	for _, g := range groups {
		out = append(out, g.Members()...)
	}
	return out
}

// GroupIndexByRequest maps each request's Index to the index of its group
// within groups, for O(1) group-exclusivity lookups.
func GroupIndexByRequest(groups []Group) map[int]int {
	out := make(map[int]int)
	for gi, g := range groups {
		for _, r := range g.Members() {
			out[r.Index] = gi
		}
	}
	return out
}
