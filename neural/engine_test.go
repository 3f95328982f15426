package neural

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepruin/neurographite/graph"
)

func chainStore(t *testing.T) (store *graph.MemoryStore, a, b, c, d, e graph.NodeID) {
	t.Helper()
	store = graph.NewMemoryStore()
	a, b, c, d, e = graph.NewNodeID(), graph.NewNodeID(), graph.NewNodeID(), graph.NewNodeID(), graph.NewNodeID()
	for _, id := range []graph.NodeID{a, b, c, d, e} {
		require.NoError(t, store.AddNode(id, nil))
	}
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{a, b}, "r", 0.8))
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{b, c}, "r", 0.8))
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{c, d}, "r", 0.8))
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{d, e}, "r", 0.8))
	return
}

func TestSimulateCascadeChain(t *testing.T) {
	// chain cascade A-B-C-D-E, each edge strength 0.8, decay 0.99.
	store, a, b, c, d, e := chainStore(t)

	results, err := SimulateCascade(store, a, 1.0, 10, 0.99)
	require.NoError(t, err)
	require.Len(t, results, 4)

	byNode := make(map[graph.NodeID]float64, len(results))
	for _, r := range results {
		byNode[r.Node] = r.Strength
	}
	for _, id := range []graph.NodeID{b, c, d, e} {
		_, ok := byNode[id]
		assert.True(t, ok)
	}
	for _, r := range results {
		assert.NotEqual(t, a, r.Node)
	}

	expected := 1.0
	for _, id := range []graph.NodeID{b, c, d, e} {
		expected *= 0.8 * 0.99
		assert.InDelta(t, expected, byNode[id], 1e-9)
	}
}

func TestSimulateCascadeVisitsEachNodeOnce(t *testing.T) {
	store := graph.NewMemoryStore()
	a, b := graph.NewNodeID(), graph.NewNodeID()
	require.NoError(t, store.AddNode(a, nil))
	require.NoError(t, store.AddNode(b, nil))
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{a, b}, "r", 0.9))
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{b, a}, "other", 0.9))

	results, err := SimulateCascade(store, a, 1.0, 10, 0.99)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestPropagateSpikeRefractorySuppression(t *testing.T) {
	// a second spike within the refractory window does not recount.
	cfg := DefaultConfig()
	cfg.RefractoryPeriod = 100 * time.Millisecond
	e := New(cfg)

	x := graph.NewNodeID()
	e.PropagateSpike([]graph.NodeID{x}, 0.9)
	e.PropagateSpike([]graph.NodeID{x}, 0.5)

	stats := e.Stats()
	assert.Equal(t, uint64(1), stats.TotalSpikes)
	assert.Equal(t, 0.9, e.Activation(x))
}

func TestFindSimilarNodesStructural(t *testing.T) {
	// X,Y,Z fully connected; both-silent temporal + equal activation.
	store := graph.NewMemoryStore()
	x, y, z := graph.NewNodeID(), graph.NewNodeID(), graph.NewNodeID()
	for _, id := range []graph.NodeID{x, y, z} {
		require.NoError(t, store.AddNode(id, nil))
	}
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{x, y}, "r", 0.5))
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{x, z}, "r", 0.5))
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{y, z}, "r", 0.5))

	e := New(DefaultConfig())
	results, err := e.FindSimilarNodes(store, x, 0.0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.InDelta(t, 1.0, r.Score, 1e-9)
	}
}

func TestFindSimilarNodesSortedDescending(t *testing.T) {
	store := graph.NewMemoryStore()
	target := graph.NewNodeID()
	require.NoError(t, store.AddNode(target, nil))

	var others []graph.NodeID
	for i := 0; i < 5; i++ {
		id := graph.NewNodeID()
		require.NoError(t, store.AddNode(id, nil))
		others = append(others, id)
	}

	e := New(DefaultConfig())
	results, err := e.FindSimilarNodes(store, target, 0.0)
	require.NoError(t, err)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestUpdateSynapticWeightsClamped(t *testing.T) {
	e := New(DefaultConfig())
	a, b := graph.NewNodeID(), graph.NewNodeID()

	for i := 0; i < 500; i++ {
		e.UpdateSynapticWeights(a, b, 1.0)
	}
	assert.Equal(t, 1.0, e.SynapticWeight(a, b))
	assert.Equal(t, e.SynapticWeight(a, b), e.SynapticWeight(b, a))

	for i := 0; i < 500; i++ {
		e.UpdateSynapticWeights(a, b, -1.0)
	}
	assert.Equal(t, -1.0, e.SynapticWeight(a, b))
}

func TestApplyTemporalDecay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DecayRate = 0.5
	e := New(cfg)

	x := graph.NewNodeID()
	e.PropagateSpike([]graph.NodeID{x}, 0.8)
	e.ApplyTemporalDecay()

	assert.InDelta(t, 0.4, e.Activation(x), 1e-9)
	assert.Equal(t, uint64(1), e.Stats().ProcessingCycles)
}

func TestStableMatchingScoresWithinUnitRange(t *testing.T) {
	store := graph.NewMemoryStore()
	a, b := graph.NewNodeID(), graph.NewNodeID()
	require.NoError(t, store.AddNode(a, nil))
	require.NoError(t, store.AddNode(b, nil))

	e := New(DefaultConfig())
	e.PropagateSpike([]graph.NodeID{a, b}, 0.5)

	matches, err := e.StableMatching(store, 10)
	require.NoError(t, err)
	for _, m := range matches {
		assert.GreaterOrEqual(t, m.Score, 0.0)
		assert.LessOrEqual(t, m.Score, 1.0)
	}
}

func TestActivationDefaultsToZero(t *testing.T) {
	e := New(DefaultConfig())
	assert.Equal(t, 0.0, e.Activation(graph.NewNodeID()))
}
