package analytics

import (
	"math"
	"sort"

	"github.com/deepruin/neurographite/graph"
)

// Prediction is a candidate edge suggested by topological link
// prediction over hypergraph neighbor sets.
type Prediction struct {
	Target    graph.NodeID
	Score     float64
	Algorithm string
}

// PredictLinks scores every node other than source by the named
// algorithm and returns the top results sorted by score descending:
//
//   - "common_neighbors": |N(source) ∩ N(candidate)|
//   - "jaccard": |N(source) ∩ N(candidate)| / |N(source) ∪ N(candidate)|
//   - "adamic_adar": Σ 1/ln(|N(z)|) over shared neighbors z with |N(z)|>1
//   - "preferential_attachment": |N(source)| * |N(candidate)|
//   - "resource_allocation": Σ 1/|N(z)| over shared neighbors z
//
// Candidates already adjacent to source, and source itself, are
// excluded. Unrecognized algorithm names score every candidate 0.
func PredictLinks(store graph.Store, source graph.NodeID, algorithm string, limit int) ([]Prediction, error) {
	sourceNeighbors, err := store.GetNeighbors(source)
	if err != nil {
		return nil, err
	}
	sourceSet := idSet(sourceNeighbors)

	adjacent := make(map[graph.NodeID]struct{}, len(sourceSet))
	for id := range sourceSet {
		adjacent[id] = struct{}{}
	}

	var out []Prediction
	for _, n := range store.AllNodes() {
		if n.ID == source {
			continue
		}
		if _, already := adjacent[n.ID]; already {
			continue
		}
		neighbors, err := store.GetNeighbors(n.ID)
		if err != nil {
			return nil, err
		}
		candidateSet := idSet(neighbors)

		score, err := scoreLink(store, algorithm, sourceSet, candidateSet)
		if err != nil {
			return nil, err
		}
		if score > 0 {
			out = append(out, Prediction{Target: n.ID, Score: score, Algorithm: algorithm})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func scoreLink(store graph.Store, algorithm string, a, b map[graph.NodeID]struct{}) (float64, error) {
	switch algorithm {
	case "common_neighbors":
		return float64(overlap(a, b)), nil
	case "jaccard":
		shared := overlap(a, b)
		union := len(a) + len(b) - shared
		if union == 0 {
			return 0, nil
		}
		return float64(shared) / float64(union), nil
	case "adamic_adar":
		return weightedSharedScore(store, a, b, func(degree int) float64 {
			if degree <= 1 {
				return 0
			}
			return 1.0 / math.Log(float64(degree))
		})
	case "preferential_attachment":
		return float64(len(a) * len(b)), nil
	case "resource_allocation":
		return weightedSharedScore(store, a, b, func(degree int) float64 {
			if degree == 0 {
				return 0
			}
			return 1.0 / float64(degree)
		})
	default:
		return 0, nil
	}
}

// weightedSharedScore sums weight(degree(z)) over every shared neighbor
// z, where degree(z) is z's own neighbor count — the common machinery
// behind Adamic-Adar and Resource Allocation.
func weightedSharedScore(store graph.Store, a, b map[graph.NodeID]struct{}, weight func(int) float64) (float64, error) {
	small, big := a, b
	if len(big) < len(small) {
		small, big = big, small
	}
	var total float64
	for id := range small {
		if _, ok := big[id]; !ok {
			continue
		}
		neighbors, err := store.GetNeighbors(id)
		if err != nil {
			return 0, err
		}
		total += weight(len(neighbors))
	}
	return total, nil
}
