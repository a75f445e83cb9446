// Package output serializes a search result to the JSON output file
// format (§6 of the external-interfaces contract): summary counts, the
// objective value, and one entry per evaluated request.
package output

import (
	"encoding/json"
	"os"

	"github.com/oran-mano/vnf-ga-placer/internal/network"
	"github.com/oran-mano/vnf-ga-placer/internal/placement"
	"github.com/oran-mano/vnf-ga-placer/internal/request"
)

// vnfEntry is one placed VNF within an accepted request.
type vnfEntry struct {
	IDVNF     int   `json:"id_vnf"`
	Position  int   `json:"position"`
	Resources []int `json:"resources"`
	ValueY    float64 `json:"value_y"`
}

// requestEntry is one evaluated request's outcome.
type requestEntry struct {
	IDRichiesta int        `json:"id_richiesta"`
	ReqType     int        `json:"req_type"`
	Status      int        `json:"status"`
	ValueY      float64    `json:"value_y"`
	VNFs        []vnfEntry `json:"vnfs,omitempty"`
}

// document is the top-level JSON object. num_ric* count every evaluated
// request; num_ric_serv* count only the accepted ones ("serv" = served).
type document struct {
	NumRic         int            `json:"num_ric"`
	NumRicMain     int            `json:"num_ric_main"`
	NumRicSec      int            `json:"num_ric_sec"`
	NumRicServ     int            `json:"num_ric_serv"`
	NumRicServMain int            `json:"num_ric_serv_main"`
	NumRicServSec  int            `json:"num_ric_serv_sec"`
	ObjVal         float64        `json:"obj_val"`
	Requests       []requestEntry `json:"requests"`
}

// WriteResult writes the full result document for a valid snapshot.
func WriteResult(path string, snap *placement.Snapshot) error {
	doc := document{ObjVal: snap.Profit()}

	for i, r := range snap.Evaluated {
		doc.NumRic++
		if r.Kind == request.KindMain {
			doc.NumRicMain++
		} else {
			doc.NumRicSec++
		}

		// id_richiesta is the evaluated-order position, not r.Index: the
		// original enumerates over evaluated_requests, independent of the
		// file's own request numbering.
		entry := requestEntry{IDRichiesta: i, ReqType: reqType(r.Kind)}
		if snap.IsAccepted(r.Index) {
			entry.Status = 0
			entry.ValueY = 1.0
			doc.NumRicServ++
			if r.Kind == request.KindMain {
				doc.NumRicServMain++
			} else {
				doc.NumRicServSec++
			}
			entry.VNFs = vnfsFor(snap, r)
		} else {
			entry.Status = 1
			entry.ValueY = 0.0
		}
		doc.Requests = append(doc.Requests, entry)
	}

	return writeJSON(path, doc)
}

// WriteEmpty writes the empty-file "no solution" outcome.
func WriteEmpty(path string) error {
	return os.WriteFile(path, []byte{}, 0o644)
}

func reqType(k request.Kind) int {
	if k == request.KindMain {
		return 0
	}
	return 1
}

func vnfsFor(snap *placement.Snapshot, r request.Request) []vnfEntry {
	path := snap.Path(r.Index)
	out := make([]vnfEntry, 0, len(r.Service.VNFChain))
	for i, vnf := range r.Service.VNFChain {
		nodeLabel := path[i+1]
		resources := make([]int, 0, len(vnf.ResourcesNeeded))
		for _, rt := range network.SortedResourceTypes(vnf.ResourcesNeeded) {
			resources = append(resources, vnf.ResourcesNeeded[rt])
		}
		out = append(out, vnfEntry{
			IDVNF:     i,
			Position:  snap.Topology.IndexOf(nodeLabel),
			Resources: resources,
			ValueY:    1.0,
		})
	}
	return out
}

func writeJSON(path string, doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
