// Package inputfile parses the whitespace/newline-delimited input file
// format (§6 of the external-interfaces contract): a fixed sequence of
// thirteen row groups describing the substrate, the requests, and their
// VNF chains, and builds the domain objects (internal/network,
// internal/service, internal/request) the rest of the system operates on.
package inputfile

import (
	"fmt"
	"strconv"

	"github.com/oran-mano/vnf-ga-placer/pkg/vnferrors"
)

func parseInt(field string, line int, tok string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, vnferrors.NewParseError(line, "expected integer for "+field+", got "+tok)
	}
	return v, nil
}

func parseFloat(field string, line int, tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, vnferrors.NewParseError(line, "expected number for "+field+", got "+tok)
	}
	return v, nil
}

func expectLen(field string, line, want, got int) error {
	if want != got {
		return vnferrors.NewParseError(line, fmt.Sprintf("%s: expected exactly %d tokens, got %d", field, want, got))
	}
	return nil
}

func intsOf(field string, r row) ([]int, error) {
	out := make([]int, len(r.tokens))
	for i, t := range r.tokens {
		v, err := parseInt(field, r.line, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func floatsOf(field string, r row) ([]float64, error) {
	out := make([]float64, len(r.tokens))
	for i, t := range r.tokens {
		v, err := parseFloat(field, r.line, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// RawRequest is one row-10/11/12 worth of per-request data, keyed by its
// file-declared request_index.
type RawRequest struct {
	Index          int
	IngressIdx     int
	EgressIdx      int
	MaxLatency     float64
	Revenue        float64
	ChainLength    int
	VNFTypes       []int
	LinkBandwidths []float64 // length ChainLength+1
	ResourceMatrix [][]int   // [vnfIdx][resourceIdx], ChainLength rows
}

// Raw is the unvalidated, purely syntactic parse of the input file: every
// row-group in file order, before being assembled into network/service/
// request domain objects.
type Raw struct {
	NumNodes          int
	NumResources      int
	NumVNFsPerRequest int

	MinRatioMain float64

	AltCounts   []int
	MainIndices []int
	AltIndices  []int

	VNFTypeTags []string

	Latency      [][]float64 // [tail][head]
	Bandwidth    [][]float64
	NodeUnitCost [][]float64 // [node][resourceIdx]
	LinkUnitCost [][]float64 // [tail][head]

	// Incompatibility[requestIndex][vnfSlot] = 1-based substrate node
	// indices the VNF may not be placed on.
	Incompatibility map[[2]int][]int

	Requests []RawRequest // in file order

	NodeCapacity [][]int // [node][resourceIdx]
}

// Parse reads and syntactically parses path, returning the raw row
// groups. Truncation (premature EOF) is reported as a *vnferrors.ParseError.
func Parse(path string) (*Raw, error) {
	sc, err := newScannerFromFile(path)
	if err != nil {
		return nil, err
	}
	raw := &Raw{Incompatibility: make(map[[2]int][]int)}

	// 1. Six integers: num_nodes, _, _, num_resources, _, num_vnfs_per_request.
	r, err := sc.next()
	if err != nil {
		return nil, err
	}
	if err := expectLen("header row", r.line, 6, len(r.tokens)); err != nil {
		return nil, err
	}
	header, err := intsOf("header row", r)
	if err != nil {
		return nil, err
	}
	raw.NumNodes, raw.NumResources, raw.NumVNFsPerRequest = header[0], header[3], header[5]

	// 2. One real: minimum_ratio_of_main_requests.
	r, err = sc.next()
	if err != nil {
		return nil, err
	}
	minRatio, err := floatsOf("minimum_ratio_of_main_requests", r)
	if err != nil {
		return nil, err
	}
	if len(minRatio) != 1 {
		return nil, vnferrors.NewParseError(r.line, "minimum_ratio_of_main_requests: expected one value")
	}
	raw.MinRatioMain = minRatio[0]

	// 3. Three rows: alt counts per main, main indices, alt indices.
	if r, err = sc.next(); err != nil {
		return nil, err
	}
	if raw.AltCounts, err = intsOf("alternative counts", r); err != nil {
		return nil, err
	}
	if r, err = sc.next(); err != nil {
		return nil, err
	}
	if raw.MainIndices, err = intsOf("main indices", r); err != nil {
		return nil, err
	}
	if r, err = sc.next(); err != nil {
		return nil, err
	}
	if raw.AltIndices, err = intsOf("alternative indices", r); err != nil {
		return nil, err
	}

	numMains := len(raw.MainIndices)
	totalAlts := 0
	for _, c := range raw.AltCounts {
		totalAlts += c
	}
	numRequests := numMains + totalAlts

	// 4. VNF type tags (informational).
	if r, err = sc.next(); err != nil {
		return nil, err
	}
	raw.VNFTypeTags = append([]string(nil), r.tokens...)

	// 5-8. Four num_nodes x num_nodes (or x num_resources) matrices.
	if raw.Latency, err = readMatrix(sc, "link latency matrix", raw.NumNodes, raw.NumNodes); err != nil {
		return nil, err
	}
	if raw.Bandwidth, err = readMatrix(sc, "link bandwidth matrix", raw.NumNodes, raw.NumNodes); err != nil {
		return nil, err
	}
	if raw.NodeUnitCost, err = readMatrix(sc, "node resource unit-cost matrix", raw.NumNodes, raw.NumResources); err != nil {
		return nil, err
	}
	if raw.LinkUnitCost, err = readMatrix(sc, "link bandwidth unit-cost matrix", raw.NumNodes, raw.NumNodes); err != nil {
		return nil, err
	}

	// 9. num_requests * num_vnfs_per_request incompatibility rows.
	for reqIdx := 0; reqIdx < numRequests; reqIdx++ {
		for slot := 0; slot < raw.NumVNFsPerRequest; slot++ {
			if r, err = sc.next(); err != nil {
				return nil, err
			}
			if len(r.tokens) < 2 {
				return nil, vnferrors.NewParseError(r.line, "incompatibility row too short")
			}
			var nodes []int
			for _, tok := range r.tokens[2:] {
				if v, convErr := strconv.Atoi(tok); convErr == nil {
					nodes = append(nodes, v)
				}
			}
			raw.Incompatibility[[2]int{reqIdx, slot}] = nodes
		}
	}

	// 10. num_requests request-info rows.
	reqByIndex := make(map[int]*RawRequest, numRequests)
	for i := 0; i < numRequests; i++ {
		if r, err = sc.next(); err != nil {
			return nil, err
		}
		if err := expectLen("request info row", r.line, 6, len(r.tokens)); err != nil {
			return nil, err
		}
		idx, err := parseInt("request_index", r.line, r.tokens[0])
		if err != nil {
			return nil, err
		}
		ingress, err := parseInt("ingress_idx", r.line, r.tokens[1])
		if err != nil {
			return nil, err
		}
		egress, err := parseInt("egress_idx", r.line, r.tokens[2])
		if err != nil {
			return nil, err
		}
		maxLatency, err := parseFloat("max_latency", r.line, r.tokens[3])
		if err != nil {
			return nil, err
		}
		revenue, err := parseFloat("revenue", r.line, r.tokens[5])
		if err != nil {
			return nil, err
		}
		rr := &RawRequest{Index: idx, IngressIdx: ingress, EgressIdx: egress, MaxLatency: maxLatency, Revenue: revenue}
		raw.Requests = append(raw.Requests, *rr)
		reqByIndex[idx] = &raw.Requests[len(raw.Requests)-1]
	}

	// 11. num_requests VNF chain rows: request_index, chain_length,
	// vnf_types..., virtual_link_bandwidths... (chain_length+1 of them).
	for i := 0; i < numRequests; i++ {
		if r, err = sc.next(); err != nil {
			return nil, err
		}
		if len(r.tokens) < 2 {
			return nil, vnferrors.NewParseError(r.line, "VNF chain row too short")
		}
		idx, err := parseInt("request_index", r.line, r.tokens[0])
		if err != nil {
			return nil, err
		}
		chainLen, err := parseInt("chain_length", r.line, r.tokens[1])
		if err != nil {
			return nil, err
		}
		want := 2 + chainLen + (chainLen + 1)
		if err := expectLen("VNF chain row", r.line, want, len(r.tokens)); err != nil {
			return nil, err
		}
		vnfTypes := make([]int, chainLen)
		for j := 0; j < chainLen; j++ {
			v, err := parseInt("vnf_type", r.line, r.tokens[2+j])
			if err != nil {
				return nil, err
			}
			vnfTypes[j] = v
		}
		bw := make([]float64, chainLen+1)
		for j := 0; j < chainLen+1; j++ {
			v, err := parseFloat("virtual_link_bandwidth", r.line, r.tokens[2+chainLen+j])
			if err != nil {
				return nil, err
			}
			bw[j] = v
		}
		rr, ok := reqByIndex[idx]
		if !ok {
			return nil, vnferrors.NewParseError(r.line, "VNF chain row references unknown request_index")
		}
		rr.ChainLength = chainLen
		rr.VNFTypes = vnfTypes
		rr.LinkBandwidths = bw
	}

	// 12. num_requests VNF resource-requirement rows: num_vnfs followed by
	// a flattened (num_vnfs, num_resources) row-major matrix.
	for i := 0; i < numRequests; i++ {
		if r, err = sc.next(); err != nil {
			return nil, err
		}
		if len(r.tokens) < 1 {
			return nil, vnferrors.NewParseError(r.line, "VNF resource row too short")
		}
		numVNFs, err := parseInt("num_vnfs", r.line, r.tokens[0])
		if err != nil {
			return nil, err
		}
		want := 1 + numVNFs*raw.NumResources
		if err := expectLen("VNF resource row", r.line, want, len(r.tokens)); err != nil {
			return nil, err
		}
		matrix := make([][]int, numVNFs)
		pos := 1
		for v := 0; v < numVNFs; v++ {
			matrix[v] = make([]int, raw.NumResources)
			for rtIdx := 0; rtIdx < raw.NumResources; rtIdx++ {
				val, err := parseInt("vnf_resource_requirement", r.line, r.tokens[pos])
				if err != nil {
					return nil, err
				}
				matrix[v][rtIdx] = val
				pos++
			}
		}
		// The request-index for this row group is positional: rows 10, 11
		// and 12 all iterate num_requests in the same file order.
		idx := raw.Requests[i].Index
		rr := reqByIndex[idx]
		rr.ResourceMatrix = matrix
	}

	// 13. num_nodes node resource capacity rows.
	capMatrix, err := readIntMatrix(sc, "node resource capacities", raw.NumNodes, raw.NumResources)
	if err != nil {
		return nil, err
	}
	raw.NodeCapacity = capMatrix

	return raw, nil
}

func readMatrix(sc *scanner, field string, rows, cols int) ([][]float64, error) {
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		r, err := sc.next()
		if err != nil {
			return nil, err
		}
		if err := expectLen(field, r.line, cols, len(r.tokens)); err != nil {
			return nil, err
		}
		vals, err := floatsOf(field, r)
		if err != nil {
			return nil, err
		}
		out[i] = vals
	}
	return out, nil
}

func readIntMatrix(sc *scanner, field string, rows, cols int) ([][]int, error) {
	out := make([][]int, rows)
	for i := 0; i < rows; i++ {
		r, err := sc.next()
		if err != nil {
			return nil, err
		}
		if err := expectLen(field, r.line, cols, len(r.tokens)); err != nil {
			return nil, err
		}
		vals, err := intsOf(field, r)
		if err != nil {
			return nil, err
		}
		out[i] = vals
	}
	return out, nil
}
