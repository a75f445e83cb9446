package placement

import (
	"github.com/google/uuid"

	"github.com/oran-mano/vnf-ga-placer/internal/network"
	"github.com/oran-mano/vnf-ga-placer/internal/request"
)

// Matrix is the GA chromosome representation: a rectangular array indexed
// by [request_row][vnf_column]. request_row follows the evaluated-requests
// order (main requests, then their alternatives, per main in registration
// order); vnf_column is the VNF's position in its chain. A cell holds the
// sorted-node index of the assignment, or -1 for rejected. A row is
// "rejected" iff every cell is -1; a row with a mix of negative and
// non-negative cells is malformed and decoded as rejected (this mirrors
// the source's implicit behavior — see the design note on ambiguous rows).
//
// Every evaluated request is assumed to have the same chain length
// (num_vnfs_per_request from the input file), so a fully-accepted row
// never legitimately needs a trailing -1 cell.
type Matrix [][]int

func newRow(cols int) []int {
	row := make([]int, cols)
	for i := range row {
		row[i] = -1
	}
	return row
}

func rowIsRejected(row []int) bool {
	for _, v := range row {
		if v >= 0 {
			return false
		}
	}
	return true
}

func rowIsAccepted(row []int) bool {
	for _, v := range row {
		if v < 0 {
			return false
		}
	}
	return len(row) > 0
}

// RowAccepted reports whether every cell of row is non-negative.
func RowAccepted(row []int) bool { return rowIsAccepted(row) }

// RowRejected reports whether every cell of row is negative.
func RowRejected(row []int) bool { return rowIsRejected(row) }

// Encode produces the chromosome matrix for s, with cols columns (the
// uniform chain length across evaluated requests).
func Encode(s *Snapshot, cols int) Matrix {
	labels := s.Topology.SortedLabels()
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	m := make(Matrix, len(s.Evaluated))
	for i, r := range s.Evaluated {
		row := newRow(cols)
		path := s.Designated[r.Index]
		if len(path) == r.Service.ChainLength()+2 {
			for j := 0; j < r.Service.ChainLength() && j < cols; j++ {
				row[j] = index[path[j+1]]
			}
		}
		m[i] = row
	}
	return m
}

// Decode rebuilds a Snapshot from a chromosome matrix against a fixed
// topology, request set, and configuration. Rows are matched to
// evaluated requests positionally; malformed (partially-negative) rows
// decode as rejected.
func Decode(m Matrix, topo *network.Topology, groups []request.Group, incompatible map[uuid.UUID]map[string]bool, minRatioMain float64) *Snapshot {
	evaluated := request.EvaluatedRequests(groups)
	labels := topo.SortedLabels()

	s := New(topo, groups, incompatible, minRatioMain)
	for i, r := range evaluated {
		if i >= len(m) {
			break
		}
		row := m[i]
		if rowIsRejected(row) || !rowIsAccepted(row) {
			continue
		}
		ingressLabel := r.Service.Ingress.NetworkNodeLabel
		egressLabel := r.Service.Egress.NetworkNodeLabel
		path := make([]string, 0, len(row)+2)
		path = append(path, ingressLabel)
		valid := true
		for j := 0; j < r.Service.ChainLength(); j++ {
			idx := row[j]
			if idx < 0 || idx >= len(labels) {
				valid = false
				break
			}
			path = append(path, labels[idx])
		}
		if !valid {
			continue
		}
		path = append(path, egressLabel)
		s = s.WithAssignment(r.Index, path)
	}
	return s
}
