// Package accepter implements the incremental request accepter: a
// constructive procedure that greedily places one request's VNF chain on
// the substrate while maintaining residual resources, bandwidth, and
// latency budgets, preserving every placement constraint.
package accepter

import (
	"math/rand"

	"github.com/oran-mano/vnf-ga-placer/internal/network"
	"github.com/oran-mano/vnf-ga-placer/internal/placement"
	"github.com/oran-mano/vnf-ga-placer/internal/request"
	"github.com/oran-mano/vnf-ga-placer/pkg/vnferrors"
)

// Accepter holds a committed placement snapshot plus the mutable residual
// state derived from it. It belongs to a single goroutine: never share an
// Accepter between threads, and never reuse one across an unrelated
// search run.
type Accepter struct {
	committed  *placement.Snapshot
	groupIndex map[int]int

	residualResources map[string]map[network.ResourceType]int
	residualBandwidth map[[2]string]float64
}

// New creates an accepter seeded from committed's current residuals.
func New(committed *placement.Snapshot, groups []request.Group) *Accepter {
	a := &Accepter{committed: committed, groupIndex: request.GroupIndexByRequest(groups)}
	a.resync()
	return a
}

func (a *Accepter) resync() {
	topo := a.committed.Topology
	a.residualResources = make(map[string]map[network.ResourceType]int)
	for _, n := range topo.SortedNodes() {
		a.residualResources[n.Label] = a.committed.ResidualResources(n.Label)
	}
	a.residualBandwidth = make(map[[2]string]float64)
	for _, l := range topo.Links() {
		a.residualBandwidth[[2]string{l.Tail, l.Head}] = a.committed.ResidualBandwidth(l.Tail, l.Head)
	}
}

// Committed returns the current committed snapshot.
func (a *Accepter) Committed() *placement.Snapshot { return a.committed }

func copyResources(m map[network.ResourceType]int) map[network.ResourceType]int {
	out := make(map[network.ResourceType]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Accept tries to place r on the current committed placement, per the
// greedy-chain-over-a-shuffled-node-order algorithm. Returns true and
// commits a new snapshot on success; returns false with no state change
// on failure. rng supplies every random draw this call makes.
func (a *Accepter) Accept(r request.Request, rng *rand.Rand) (bool, error) {
	if _, known := a.groupIndex[r.Index]; !known {
		return false, vnferrors.NewUsageError("accept called on unknown request")
	}
	if a.committed.IsAccepted(r.Index) {
		return false, vnferrors.NewUsageError("accept called on an already-accepted request")
	}

	// 1. Group exclusivity check.
	gi := a.groupIndex[r.Index]
	for _, m := range a.committed.Groups[gi].Members() {
		if m.Index != r.Index && a.committed.IsAccepted(m.Index) {
			return false, nil
		}
	}

	// 2. Main-ratio forecast (alternatives only).
	if r.Kind != request.KindMain {
		main, _, accepted := a.committed.AcceptedCounts()
		ratio := float64(main) / float64(accepted+1)
		if ratio < a.committed.MinRatioMain-1e-6 {
			return false, nil
		}
	}

	topo := a.committed.Topology
	sortedLabels := topo.SortedLabels()

	resResources := make(map[string]map[network.ResourceType]int, len(a.residualResources))
	for k, v := range a.residualResources {
		resResources[k] = copyResources(v)
	}
	resBandwidth := make(map[[2]string]float64, len(a.residualBandwidth))
	for k, v := range a.residualBandwidth {
		resBandwidth[k] = v
	}

	svc := r.Service
	currentNode := svc.Ingress.NetworkNodeLabel
	remainingLatency := svc.MaximumToleratedLatency
	chainNodes := make([]string, 0, len(svc.VNFChain))

	for i, vnf := range svc.VNFChain {
		shuffled := append([]string(nil), sortedLabels...)
		rng.Shuffle(len(shuffled), func(x, y int) { shuffled[x], shuffled[y] = shuffled[y], shuffled[x] })

		hopBandwidth := 0.0
		if i < len(svc.Links) {
			hopBandwidth = svc.Links[i].MinimumGuaranteedBandwidth
		}

		found := ""
		for _, n := range shuffled {
			if !residualCovers(resResources[n], vnf.ResourcesNeeded) {
				continue
			}
			if blocked, ok := a.committed.Incompatible[vnf.ID()]; ok && blocked[n] {
				continue
			}
			lk, ok := topo.Link(currentNode, n)
			if !ok {
				continue
			}
			if resBandwidth[[2]string{currentNode, n}] < hopBandwidth-1e-9 {
				continue
			}
			if lk.Latency > remainingLatency+1e-9 {
				continue
			}
			found = n
			break
		}
		if found == "" {
			return false, nil
		}

		for rt, amt := range vnf.ResourcesNeeded {
			resResources[found][rt] -= amt
		}
		lk, _ := topo.Link(currentNode, found)
		resBandwidth[[2]string{currentNode, found}] -= hopBandwidth
		remainingLatency -= lk.Latency
		currentNode = found
		chainNodes = append(chainNodes, found)
	}

	// 4. Egress link check.
	egressLabel := svc.Egress.NetworkNodeLabel
	lastHopBandwidth := 0.0
	if len(svc.Links) > 0 {
		lastHopBandwidth = svc.Links[len(svc.Links)-1].MinimumGuaranteedBandwidth
	}
	lk, ok := topo.Link(currentNode, egressLabel)
	if !ok {
		return false, nil
	}
	if resBandwidth[[2]string{currentNode, egressLabel}] < lastHopBandwidth-1e-9 {
		return false, nil
	}
	if lk.Latency > remainingLatency+1e-9 {
		return false, nil
	}
	resBandwidth[[2]string{currentNode, egressLabel}] -= lastHopBandwidth

	// 5. Commit.
	path := make([]string, 0, len(chainNodes)+2)
	path = append(path, svc.Ingress.NetworkNodeLabel)
	path = append(path, chainNodes...)
	path = append(path, egressLabel)

	next := a.committed.WithAssignment(r.Index, path)
	if !next.IsValid() {
		return false, vnferrors.NewInvariantError("accepter produced an invalid placement")
	}
	a.committed = next
	a.residualResources = resResources
	a.residualBandwidth = resBandwidth
	return true, nil
}

func residualCovers(residual, demand map[network.ResourceType]int) bool {
	for rt, amt := range demand {
		if residual[rt] < amt {
			return false
		}
	}
	return true
}
