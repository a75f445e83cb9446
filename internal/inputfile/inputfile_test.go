package inputfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalInput describes 2 substrate nodes, 1 resource type, one main
// request (no alternatives) with a single-VNF chain ingress(n0)->vnf->egress(n1).
const minimalInput = `
2 0 0 1 0 1
0
0
1
0
0
0 1
1 0
100 100
100 100
1
1
0.1 0.1
0.1 0.1
0 0
1 0 1 10 0 50
1 1 0 2 2
1 4
10
10
`

func writeTempInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_MinimalInput(t *testing.T) {
	path := writeTempInput(t, minimalInput)
	raw, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, 2, raw.NumNodes)
	assert.Equal(t, 1, raw.NumResources)
	assert.Equal(t, 1, raw.NumVNFsPerRequest)
	assert.Equal(t, []int{1}, raw.MainIndices)
	require.Len(t, raw.Requests, 1)
	assert.Equal(t, 1, raw.Requests[0].Index)
	assert.Equal(t, 50.0, raw.Requests[0].Revenue)
}

func TestParse_CommentsAndBlankLinesIgnored(t *testing.T) {
	commented := "# full-line comment\n" + minimalInput + "\n; trailing comment\n"
	path := writeTempInput(t, commented)
	_, err := Parse(path)
	assert.NoError(t, err)
}

func TestParse_TruncatedFileIsParseError(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(minimalInput), "\n")
	truncated := strings.Join(lines[:len(lines)-3], "\n")
	path := writeTempInput(t, truncated)
	_, err := Parse(path)
	assert.Error(t, err)
}

func TestBuild_ProducesCompleteTopologyAndGroups(t *testing.T) {
	path := writeTempInput(t, minimalInput)
	raw, err := Parse(path)
	require.NoError(t, err)

	built, err := Build(raw)
	require.NoError(t, err)

	assert.Equal(t, 2, built.Topology.NumNodes())
	assert.NoError(t, built.Topology.Validate())
	require.Len(t, built.Groups, 1)
	assert.Equal(t, 1, built.Groups[0].Main.Index)
	assert.Equal(t, 1, built.Cols)
}
