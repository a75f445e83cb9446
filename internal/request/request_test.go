package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func req(idx int, kind Kind) Request { return Request{Index: idx, Kind: kind} }

func TestEvaluatedRequests_MainThenAlternativesInRegistrationOrder(t *testing.T) {
	groups := []Group{
		{Main: req(1, KindMain), Alternatives: []Request{req(2, KindAlternative), req(3, KindAlternative)}},
		{Main: req(4, KindMain)},
	}
	evaluated := EvaluatedRequests(groups)
	got := make([]int, len(evaluated))
	for i, r := range evaluated {
		got[i] = r.Index
	}
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestGroupIndexByRequest(t *testing.T) {
	groups := []Group{
		{Main: req(1, KindMain), Alternatives: []Request{req(2, KindAlternative)}},
		{Main: req(3, KindMain)},
	}
	idx := GroupIndexByRequest(groups)
	assert.Equal(t, 0, idx[1])
	assert.Equal(t, 0, idx[2])
	assert.Equal(t, 1, idx[3])
}
