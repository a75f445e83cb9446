// Package placement implements the central entity of the searcher: the
// MultiFlavouredVNFChainPlacement snapshot, its derived accounting
// (residuals, costs, profit) and its validity predicate, plus the
// placement-matrix encoding used as the GA chromosome representation.
package placement

import (
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/oran-mano/vnf-ga-placer/internal/network"
	"github.com/oran-mano/vnf-ga-placer/internal/request"
	"github.com/oran-mano/vnf-ga-placer/internal/service"
)

// epsilon is the numeric tolerance used for latency and bandwidth
// feasibility comparisons, absorbing floating-point error the way the
// source's six-significant-digit rounding does. Resource counts are
// exact integers and never use this tolerance.
const epsilon = 1e-6

func feasible(used, limit float64) bool { return used <= limit+epsilon }

// Snapshot is an immutable candidate assignment of every evaluated
// request to either "rejected" or a full substrate path. Derived
// quantities are computed lazily on first access and memoized: because
// snapshots never mutate, there is no cache-invalidation concern.
type Snapshot struct {
	Topology     *network.Topology
	Groups       []request.Group
	Evaluated    []request.Request // cache of request.EvaluatedRequests(Groups)
	Designated   map[int][]string  // request.Index -> substrate node labels, length k+2; absent = rejected
	Incompatible map[uuid.UUID]map[string]bool
	MinRatioMain float64

	once    sync.Once
	derived derived
}

type derived struct {
	nodeAlloc      map[string]map[network.ResourceType]int
	linkAlloc      map[[2]string]float64
	requestLatency map[int]float64
	vnfsByNode     map[string][]service.Node
	nodeCost       map[string]float64
	linkCost       map[[2]string]float64
	profit         float64
	valid          bool
}

// New builds the all-rejected snapshot for a fixed set of groups over a
// topology.
func New(topo *network.Topology, groups []request.Group, incompatible map[uuid.UUID]map[string]bool, minRatioMain float64) *Snapshot {
	return &Snapshot{
		Topology:     topo,
		Groups:       groups,
		Evaluated:    request.EvaluatedRequests(groups),
		Designated:   make(map[int][]string),
		Incompatible: incompatible,
		MinRatioMain: minRatioMain,
	}
}

// IsAccepted reports whether r is currently accepted in this snapshot.
func (s *Snapshot) IsAccepted(reqIndex int) bool {
	path, ok := s.Designated[reqIndex]
	return ok && len(path) > 0
}

// Path returns the designated substrate node labels for reqIndex, or nil
// if rejected.
func (s *Snapshot) Path(reqIndex int) []string { return s.Designated[reqIndex] }

// requestByIndex finds the request.Request for a given Index among the
// evaluated requests.
func (s *Snapshot) requestByIndex(reqIndex int) (request.Request, bool) {
	for _, r := range s.Evaluated {
		if r.Index == reqIndex {
			return r, true
		}
	}
	return request.Request{}, false
}

// WithAssignment returns a new snapshot identical to s except reqIndex is
// accepted along path (length k+2: ingress, ..., egress). Copy-on-write:
// s itself is untouched.
func (s *Snapshot) WithAssignment(reqIndex int, path []string) *Snapshot {
	next := s.shallowCopyDesignated()
	cp := make([]string, len(path))
	copy(cp, path)
	next.Designated[reqIndex] = cp
	return next
}

// WithRejection returns a new snapshot identical to s except reqIndex is
// rejected.
func (s *Snapshot) WithRejection(reqIndex int) *Snapshot {
	next := s.shallowCopyDesignated()
	delete(next.Designated, reqIndex)
	return next
}

func (s *Snapshot) shallowCopyDesignated() *Snapshot {
	d := make(map[int][]string, len(s.Designated))
	for k, v := range s.Designated {
		d[k] = v
	}
	return &Snapshot{
		Topology:     s.Topology,
		Groups:       s.Groups,
		Evaluated:    s.Evaluated,
		Designated:   d,
		Incompatible: s.Incompatible,
		MinRatioMain: s.MinRatioMain,
	}
}

func (s *Snapshot) ensure() *derived {
	s.once.Do(func() {
		s.derived = s.compute()
	})
	return &s.derived
}

func (s *Snapshot) compute() derived {
	d := derived{
		nodeAlloc:      make(map[string]map[network.ResourceType]int),
		linkAlloc:      make(map[[2]string]float64),
		requestLatency: make(map[int]float64),
		vnfsByNode:     make(map[string][]service.Node),
		nodeCost:       make(map[string]float64),
		linkCost:       make(map[[2]string]float64),
	}

	for _, r := range s.Evaluated {
		path := s.Designated[r.Index]
		if len(path) == 0 {
			continue
		}
		svc := r.Service
		// path[0]=ingress node, path[1..k]=VNF hosts, path[k+1]=egress.
		var latency float64
		for i := 0; i+1 < len(path); i++ {
			tail, head := path[i], path[i+1]
			if lk, ok := s.Topology.Link(tail, head); ok {
				latency += lk.Latency
			}
			bw := 0.0
			if i < len(svc.Links) {
				bw = svc.Links[i].MinimumGuaranteedBandwidth
			}
			key := [2]string{tail, head}
			d.linkAlloc[key] += bw
		}
		d.requestLatency[r.Index] = latency

		for i, vnf := range svc.VNFChain {
			nodeLabel := path[i+1]
			d.vnfsByNode[nodeLabel] = append(d.vnfsByNode[nodeLabel], vnf)
			if d.nodeAlloc[nodeLabel] == nil {
				d.nodeAlloc[nodeLabel] = make(map[network.ResourceType]int)
			}
			for rt, amt := range vnf.ResourcesNeeded {
				d.nodeAlloc[nodeLabel][rt] += amt
			}
		}
	}

	for label, byType := range d.nodeAlloc {
		n, ok := s.Topology.Node(label)
		if !ok {
			continue
		}
		var cost float64
		for rt, amt := range byType {
			cost += float64(amt) * n.UnitCost[rt]
		}
		d.nodeCost[label] = cost
	}
	for key, bw := range d.linkAlloc {
		lk, ok := s.Topology.Link(key[0], key[1])
		if !ok {
			continue
		}
		d.linkCost[key] = bw * lk.BandwidthUnitCost
	}

	var revenue float64
	acceptedMain, accepted := 0, 0
	for _, r := range s.Evaluated {
		if !s.IsAccepted(r.Index) {
			continue
		}
		revenue += r.Revenue
		accepted++
		if r.Kind == request.KindMain {
			acceptedMain++
		}
	}
	var nodeCostTotal, linkCostTotal float64
	for _, c := range d.nodeCost {
		nodeCostTotal += c
	}
	for _, c := range d.linkCost {
		linkCostTotal += c
	}
	d.profit = revenue - nodeCostTotal - linkCostTotal

	d.valid = s.checkValidity(d, acceptedMain, accepted)
	return d
}

func (s *Snapshot) checkValidity(d derived, acceptedMain, accepted int) bool {
	// Resource feasibility.
	for label, byType := range d.nodeAlloc {
		n, ok := s.Topology.Node(label)
		if !ok {
			return false
		}
		for rt, amt := range byType {
			if amt > n.Capacity[rt] {
				return false
			}
		}
	}
	// Bandwidth feasibility.
	for key, bw := range d.linkAlloc {
		lk, ok := s.Topology.Link(key[0], key[1])
		if !ok {
			return false
		}
		if !feasible(bw, lk.Bandwidth) {
			return false
		}
	}
	// Latency feasibility.
	for _, r := range s.Evaluated {
		if !s.IsAccepted(r.Index) {
			continue
		}
		if !feasible(d.requestLatency[r.Index], r.Service.MaximumToleratedLatency) {
			return false
		}
	}
	// Compatibility.
	if s.Incompatible != nil {
		for label, vnfs := range d.vnfsByNode {
			for _, v := range vnfs {
				if blocked, ok := s.Incompatible[v.ID()]; ok && blocked[label] {
					return false
				}
			}
		}
	}
	// Mutual exclusivity.
	for _, g := range s.Groups {
		count := 0
		for _, m := range g.Members() {
			if s.IsAccepted(m.Index) {
				count++
			}
		}
		if count > 1 {
			return false
		}
	}
	// Main-ratio floor.
	if accepted > 0 {
		ratio := float64(acceptedMain) / float64(accepted)
		if ratio < s.MinRatioMain-epsilon {
			return false
		}
	}
	return true
}

// IsValid reports whether s satisfies every placement invariant.
func (s *Snapshot) IsValid() bool { return s.ensure().valid }

// Profit is total accepted revenue minus node and link bandwidth costs.
func (s *Snapshot) Profit() float64 { return s.ensure().profit }

// ResidualResources returns capacity minus allocated demand per resource
// type for a node; values may be negative for an infeasible snapshot.
func (s *Snapshot) ResidualResources(label string) map[network.ResourceType]int {
	n, ok := s.Topology.Node(label)
	if !ok {
		return nil
	}
	d := s.ensure()
	out := make(map[network.ResourceType]int, len(n.Capacity))
	for rt, cap := range n.Capacity {
		out[rt] = cap - d.nodeAlloc[label][rt]
	}
	return out
}

// ResidualBandwidth returns bandwidth minus allocated bandwidth for a
// substrate link; may be negative for an infeasible snapshot.
func (s *Snapshot) ResidualBandwidth(tail, head string) float64 {
	lk, ok := s.Topology.Link(tail, head)
	if !ok {
		return math.Inf(-1)
	}
	d := s.ensure()
	return lk.Bandwidth - d.linkAlloc[[2]string{tail, head}]
}

// VNFsByNode partitions placed VNFs by host node label.
func (s *Snapshot) VNFsByNode() map[string][]service.Node { return s.ensure().vnfsByNode }

// NodeCost returns the allocation-weighted cost for a node (0 if unused).
func (s *Snapshot) NodeCost(label string) float64 { return s.ensure().nodeCost[label] }

// LinkCost returns the allocation-weighted cost for a substrate link (0
// if unused).
func (s *Snapshot) LinkCost(tail, head string) float64 {
	return s.ensure().linkCost[[2]string{tail, head}]
}

// AcceptedCounts returns (accepted main, accepted alternative, total
// accepted) across all evaluated requests. The CLI logs these after a
// search; the JSON output writer counts its num_ric* fields itself.
func (s *Snapshot) AcceptedCounts() (main, alt, total int) {
	for _, r := range s.Evaluated {
		if !s.IsAccepted(r.Index) {
			continue
		}
		total++
		if r.Kind == request.KindMain {
			main++
		} else {
			alt++
		}
	}
	return
}
