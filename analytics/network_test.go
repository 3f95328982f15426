package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepruin/neurographite/graph"
)

func TestAnalyzeNetworkEffectsClassification(t *testing.T) {
	t.Run("neutral when total effect is small", func(t *testing.T) {
		store := graph.NewMemoryStore()
		a, b := graph.NewNodeID(), graph.NewNodeID()
		require.NoError(t, store.AddNode(a, nil))
		require.NoError(t, store.AddNode(b, nil))
		require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{a, b}, "r", 0.05))

		effect, err := AnalyzeNetworkEffects(store, a, 0.1, 10)
		require.NoError(t, err)
		assert.Equal(t, EffectNeutral, effect.Type)
	})

	t.Run("synergistic when total effect is large and several nodes affected", func(t *testing.T) {
		store := graph.NewMemoryStore()
		center := graph.NewNodeID()
		require.NoError(t, store.AddNode(center, nil))
		var periphery []graph.NodeID
		for i := 0; i < 4; i++ {
			id := graph.NewNodeID()
			require.NoError(t, store.AddNode(id, nil))
			require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{center, id}, "r", 0.95))
			periphery = append(periphery, id)
		}

		effect, err := AnalyzeNetworkEffects(store, center, 1.0, 10)
		require.NoError(t, err)
		assert.Equal(t, EffectSynergistic, effect.Type)
		assert.Len(t, effect.AffectedNodes, 4)
	})
}

func TestAnalyzeGoalAlignment(t *testing.T) {
	store := graph.NewMemoryStore()
	a, b := graph.NewNodeID(), graph.NewNodeID()
	require.NoError(t, store.AddNode(a, nil))
	require.NoError(t, store.AddNode(b, nil))

	alignment, err := AnalyzeGoalAlignment(store, a, b)
	require.NoError(t, err)

	// Both nodes have no neighbors (structural=1.0), no spikes
	// (temporal=0.8), matching node_type (semantic typeSim=1.0,
	// tags/properties both empty -> 0), so semantic = (0+1+0)/3.
	assert.InDelta(t, 0.4*1.0+0.4*(1.0/3.0)+0.2*0.8, alignment.Score, 1e-9)
}

func TestAnalyzeGoalAlignmentCannedStrings(t *testing.T) {
	store := graph.NewMemoryStore()
	a, b := graph.NewNodeID(), graph.NewNodeID()
	require.NoError(t, store.AddNode(a, nil))
	require.NoError(t, store.AddNode(b, nil))

	alignment, err := AnalyzeGoalAlignment(store, a, b)
	require.NoError(t, err)

	switch alignment.Type {
	case AlignmentPerfect:
		assert.Equal(t, []string{"High synergy potential", "Mutual benefit optimization"}, alignment.Opportunities)
		assert.Equal(t, []string{"Over-dependence risk"}, alignment.Risks)
	case AlignmentHigh:
		assert.Equal(t, []string{"Strong collaboration potential"}, alignment.Opportunities)
	}
}

func TestFindOptimalPairsGreedyOrder(t *testing.T) {
	// n1 and n2 share one neighbor and n3, n4 have none, so n1-n2 and
	// n3-n4 both score 0.4+0.4/3+0.16 while every cross pair scores
	// below the 0.3 cutoff; the greedy, matched-tracking discipline walks
	// candidates in input order and picks 1<->2, then 3<->4.
	store := graph.NewMemoryStore()
	n1, n2, n3, n4 := graph.NewNodeID(), graph.NewNodeID(), graph.NewNodeID(), graph.NewNodeID()
	ids := []graph.NodeID{n1, n2, n3, n4}
	for _, id := range ids {
		require.NoError(t, store.AddNode(id, nil))
	}

	// Build structural overlap so that AnalyzeGoalAlignment's scores land
	// in the relative order the scenario requires: node pairs that share
	// more neighbors score higher structurally.
	shared12 := graph.NewNodeID()
	require.NoError(t, store.AddNode(shared12, nil))
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{n1, shared12}, "r", 0.5))
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{n2, shared12}, "r", 0.5))

	pairs, err := FindOptimalPairs(store, ids, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(pairs), 2)

	seen := make(map[graph.NodeID]int)
	for _, p := range pairs {
		seen[p.A]++
		seen[p.B]++
	}
	for _, count := range seen {
		assert.LessOrEqual(t, count, 1, "greedy matching must not reuse a node across pairs")
	}

	require.Len(t, pairs, 2)
	assert.Equal(t, [2]graph.NodeID{n1, n2}, [2]graph.NodeID{pairs[0].A, pairs[0].B})
	assert.Equal(t, [2]graph.NodeID{n3, n4}, [2]graph.NodeID{pairs[1].A, pairs[1].B})
}

func TestCalculateCentralityMeasures(t *testing.T) {
	store := graph.NewMemoryStore()
	a, b, c := graph.NewNodeID(), graph.NewNodeID(), graph.NewNodeID()
	for _, id := range []graph.NodeID{a, b, c} {
		require.NoError(t, store.AddNode(id, nil))
	}
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{a, b}, "r", 0.5))
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{a, c}, "r", 0.5))

	measures, err := CalculateCentralityMeasures(store)
	require.NoError(t, err)

	assert.Equal(t, 2.0, measures[a].Degree)
	assert.Equal(t, 0.5, measures[a].Betweenness)
	assert.Equal(t, 0.5, measures[a].Closeness)
	assert.Greater(t, measures[a].Eigenvector, 0.0)
}

func TestPredictLinksAlgorithms(t *testing.T) {
	store := graph.NewMemoryStore()
	a, b, c := graph.NewNodeID(), graph.NewNodeID(), graph.NewNodeID()
	for _, id := range []graph.NodeID{a, b, c} {
		require.NoError(t, store.AddNode(id, nil))
	}
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{a, c}, "r", 0.5))
	require.NoError(t, store.AddHyperedge(graph.NewEdgeID(), []graph.NodeID{b, c}, "r", 0.5))

	predictions, err := PredictLinks(store, a, "common_neighbors", 10)
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.Equal(t, b, predictions[0].Target)
	assert.Equal(t, 1.0, predictions[0].Score)

	jaccard, err := PredictLinks(store, a, "jaccard", 10)
	require.NoError(t, err)
	require.Len(t, jaccard, 1)
	assert.InDelta(t, 1.0, jaccard[0].Score, 1e-9)
}

func TestClassifyDecayTier(t *testing.T) {
	now := time.Now().UTC()

	fresh := &graph.Node{CreatedAt: now}
	assert.Equal(t, TierEpisodic, ClassifyDecayTier(fresh, now))

	recurring := &graph.Node{CreatedAt: now.Add(-48 * time.Hour), SpikeCount: 10}
	assert.Equal(t, TierSemantic, ClassifyDecayTier(recurring, now))

	sustained := &graph.Node{CreatedAt: now.Add(-400 * 24 * time.Hour), SpikeCount: 200}
	assert.Equal(t, TierProcedural, ClassifyDecayTier(sustained, now))
}

func TestDecayScoreBounded(t *testing.T) {
	now := time.Now().UTC()
	n := &graph.Node{CreatedAt: now.Add(-72 * time.Hour)}

	score := DecayScore(n, TierEpisodic, now)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}
