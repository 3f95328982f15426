// Package analytics implements the stateless analytical layer built atop
// the hypergraph store and the neural engine: network-effect
// classification, goal-alignment scoring, greedy pairing, centrality
// approximations, plus two supplementary features: topological link
// prediction and decay-tier classification.
package analytics

import (
	"math"
	"sort"

	"github.com/deepruin/neurographite/graph"
	"github.com/deepruin/neurographite/neural"
)

// EffectType classifies the shape of a cascading network effect.
type EffectType int

const (
	EffectNeutral EffectType = iota
	EffectSynergistic
	EffectAsymmetric
	EffectCompetitive
)

func (t EffectType) String() string {
	switch t {
	case EffectSynergistic:
		return "synergistic"
	case EffectAsymmetric:
		return "asymmetric"
	case EffectCompetitive:
		return "competitive"
	default:
		return "neutral"
	}
}

// NetworkEffect is the result of AnalyzeNetworkEffects.
type NetworkEffect struct {
	Source         graph.NodeID
	AffectedNodes  []neural.NodeStrength
	TotalEffect    float64
	CascadeDepth   int
	Type           EffectType
	PrimaryBeneficiary graph.NodeID // only meaningful when Type == EffectAsymmetric
}

// networkEffectDecay is the fixed per-hop decay factor used by
// AnalyzeNetworkEffects, distinct from the neural engine's configurable
// decay_rate.
const networkEffectDecay = 0.9

type effectFrame struct {
	node     graph.NodeID
	strength float64
	depth    int
}

// AnalyzeNetworkEffects reuses the cascade traversal skeleton with a
// fixed 0.9 per-hop decay factor, then classifies the resulting pattern:
// Synergistic if total_effect > 0.5 and more than 2 nodes were affected;
// else Neutral if total_effect < 0.1; else Asymmetric if the first
// affected node's strength exceeds 0.7·total_effect; else Competitive.
func AnalyzeNetworkEffects(store graph.Store, source graph.NodeID, strength float64, maxDepth int) (NetworkEffect, error) {
	visited := make(map[graph.NodeID]struct{})
	stack := []effectFrame{{node: source, strength: strength, depth: 0}}

	var affected []neural.NodeStrength
	var total float64
	maxDepthReached := 0

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.depth >= maxDepth {
			continue
		}
		if _, seen := visited[top.node]; seen {
			continue
		}
		visited[top.node] = struct{}{}
		if top.depth > maxDepthReached {
			maxDepthReached = top.depth
		}

		if top.node != source {
			affected = append(affected, neural.NodeStrength{Node: top.node, Strength: top.strength})
			total += top.strength
		}

		neighbors, err := store.GetNeighbors(top.node)
		if err != nil {
			return NetworkEffect{}, err
		}
		incident, err := store.GetNodeEdges(top.node)
		if err != nil {
			return NetworkEffect{}, err
		}

		for _, neighbor := range neighbors {
			if _, seen := visited[neighbor.ID]; seen {
				continue
			}
			propagated := 0.0
			for _, edge := range incident {
				if edgeNamesNode(edge, neighbor.ID) {
					candidate := top.strength * edge.Conductance * networkEffectDecay
					if candidate > propagated {
						propagated = candidate
					}
				}
			}
			if propagated > 0.01 {
				stack = append(stack, effectFrame{node: neighbor.ID, strength: propagated, depth: top.depth + 1})
			}
		}
	}

	effect := NetworkEffect{
		Source:        source,
		AffectedNodes: affected,
		TotalEffect:   total,
		CascadeDepth:  maxDepthReached,
	}
	effect.Type, effect.PrimaryBeneficiary = classifyEffect(affected, total)
	return effect, nil
}

func classifyEffect(affected []neural.NodeStrength, total float64) (EffectType, graph.NodeID) {
	if total > 0.5 && len(affected) > 2 {
		return EffectSynergistic, graph.NodeID{}
	}
	if total < 0.1 {
		return EffectNeutral, graph.NodeID{}
	}
	if len(affected) > 0 {
		first := affected[0]
		if first.Strength > 0.7*total {
			return EffectAsymmetric, first.Node
		}
	}
	return EffectCompetitive, graph.NodeID{}
}

func edgeNamesNode(e *graph.Edge, id graph.NodeID) bool {
	for _, n := range e.NodeIDs {
		if n == id {
			return true
		}
	}
	return false
}

// AlignmentType classifies a GoalAlignment score.
type AlignmentType int

const (
	AlignmentIncompatible AlignmentType = iota
	AlignmentConflicting
	AlignmentModerate
	AlignmentHigh
	AlignmentPerfect
)

func (t AlignmentType) String() string {
	switch t {
	case AlignmentPerfect:
		return "perfect"
	case AlignmentHigh:
		return "high"
	case AlignmentModerate:
		return "moderate"
	case AlignmentConflicting:
		return "conflicting"
	default:
		return "incompatible"
	}
}

// GoalAlignment is the result of AnalyzeGoalAlignment.
type GoalAlignment struct {
	A, B           graph.NodeID
	Score          float64
	Type           AlignmentType
	PotentialValue float64
	Risks          []string
	Opportunities  []string
}

// canned risk/opportunity text, stable and part of the API contract.
var riskOpportunity = map[AlignmentType]struct {
	opps  []string
	risks []string
}{
	AlignmentPerfect: {
		opps:  []string{"High synergy potential", "Mutual benefit optimization"},
		risks: []string{"Over-dependence risk"},
	},
	AlignmentHigh: {
		opps:  []string{"Strong collaboration potential"},
		risks: []string{"Minor goal conflicts to resolve"},
	},
	AlignmentModerate: {
		opps:  []string{"Partial collaboration possible"},
		risks: []string{"Significant alignment work needed"},
	},
	AlignmentConflicting: {
		opps:  []string{"Negotiation and compromise potential"},
		risks: []string{"High coordination costs", "Potential for disputes"},
	},
	AlignmentIncompatible: {
		opps:  nil,
		risks: []string{"Fundamental incompatibility", "Likely negative outcomes"},
	},
}

var potentialValueMultiplier = map[AlignmentType]float64{
	AlignmentPerfect:      10,
	AlignmentHigh:         7,
	AlignmentModerate:     4,
	AlignmentConflicting:  2,
	AlignmentIncompatible: 0,
}

// AnalyzeGoalAlignment scores the compatibility of two nodes as
// score = 0.4·structural + 0.4·semantic + 0.2·temporal, classifies it,
// and attaches the canned risk/opportunity text for that classification.
func AnalyzeGoalAlignment(store graph.Store, a, b graph.NodeID) (GoalAlignment, error) {
	nodeA, err := store.GetNode(a)
	if err != nil {
		return GoalAlignment{}, err
	}
	nodeB, err := store.GetNode(b)
	if err != nil {
		return GoalAlignment{}, err
	}

	structural, err := structuralAlignment(store, a, b)
	if err != nil {
		return GoalAlignment{}, err
	}
	semantic := semanticAlignment(nodeA, nodeB)
	temporal := temporalAlignment(nodeA, nodeB)

	score := 0.4*structural + 0.4*semantic + 0.2*temporal
	alignType := classifyAlignment(score)
	opps, risks := riskOpportunity[alignType].opps, riskOpportunity[alignType].risks

	return GoalAlignment{
		A:              a,
		B:              b,
		Score:          score,
		Type:           alignType,
		PotentialValue: score * potentialValueMultiplier[alignType],
		Risks:          append([]string(nil), risks...),
		Opportunities:  append([]string(nil), opps...),
	}, nil
}

func classifyAlignment(score float64) AlignmentType {
	switch {
	case score >= 0.8:
		return AlignmentPerfect
	case score >= 0.6:
		return AlignmentHigh
	case score >= 0.4:
		return AlignmentModerate
	case score >= 0.2:
		return AlignmentConflicting
	default:
		return AlignmentIncompatible
	}
}

func structuralAlignment(store graph.Store, a, b graph.NodeID) (float64, error) {
	neighborsA, err := store.GetNeighbors(a)
	if err != nil {
		return 0, err
	}
	neighborsB, err := store.GetNeighbors(b)
	if err != nil {
		return 0, err
	}
	if len(neighborsA) == 0 && len(neighborsB) == 0 {
		return 1.0, nil
	}
	setA := idSet(neighborsA)
	setB := idSet(neighborsB)
	shared := overlap(setA, setB)
	denom := len(setA) + len(setB) - shared
	if denom == 0 {
		return 1.0, nil
	}
	return float64(shared) / float64(denom), nil
}

// semanticAlignment averages three Jaccard-shaped terms: tag overlap,
// node-type equality, and property-key overlap. Each ratio uses
// shared/(|A|+|B|) with the denominator floored at 1, matching the
// reference implementation exactly.
func semanticAlignment(a, b *graph.Node) float64 {
	tagShared := stringOverlap(a.Tags, b.Tags)
	tagTotal := maxInt(len(a.Tags)+len(b.Tags), 1)
	tagSim := float64(tagShared) / float64(tagTotal)

	typeSim := 0.0
	if a.NodeType == b.NodeType {
		typeSim = 1.0
	}

	propShared := 0
	for k := range a.Properties {
		if _, ok := b.Properties[k]; ok {
			propShared++
		}
	}
	propTotal := maxInt(len(a.Properties)+len(b.Properties), 1)
	propSim := float64(propShared) / float64(propTotal)

	return (tagSim + typeSim + propSim) / 3.0
}

func temporalAlignment(a, b *graph.Node) float64 {
	bothActive := a.LastSpikeTime != nil && b.LastSpikeTime != nil
	bothInactive := a.LastSpikeTime == nil && b.LastSpikeTime == nil
	if bothActive || bothInactive {
		return 0.8
	}
	return 0.2
}

// FindOptimalPairs builds each candidate's preference list (every other
// candidate sorted by alignment score descending), then greedily matches
// unmatched candidates in input order to their first unmatched partner
// scoring above 0.3, stopping at maxPairs matches, finally sorting the
// result by potential_value descending.
func FindOptimalPairs(store graph.Store, candidates []graph.NodeID, maxPairs int) ([]GoalAlignment, error) {
	preferences := make(map[graph.NodeID][]graph.NodeID)
	scores := make(map[[2]graph.NodeID]GoalAlignment)

	for _, a := range candidates {
		type pref struct {
			id    graph.NodeID
			score float64
		}
		var prefs []pref
		for _, b := range candidates {
			if a == b {
				continue
			}
			alignment, err := AnalyzeGoalAlignment(store, a, b)
			if err != nil {
				continue
			}
			scores[[2]graph.NodeID{a, b}] = alignment
			prefs = append(prefs, pref{id: b, score: alignment.Score})
		}
		sort.SliceStable(prefs, func(i, j int) bool { return prefs[i].score > prefs[j].score })
		ids := make([]graph.NodeID, len(prefs))
		for i, p := range prefs {
			ids[i] = p.id
		}
		preferences[a] = ids
	}

	matched := make(map[graph.NodeID]struct{})
	var pairs []GoalAlignment

	for _, a := range candidates {
		if _, done := matched[a]; done {
			continue
		}
		for _, b := range preferences[a] {
			if _, done := matched[b]; done {
				continue
			}
			alignment := scores[[2]graph.NodeID{a, b}]
			if alignment.Score > 0.3 {
				pairs = append(pairs, alignment)
				matched[a] = struct{}{}
				matched[b] = struct{}{}
				break
			}
		}
		if len(pairs) >= maxPairs {
			break
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].PotentialValue > pairs[j].PotentialValue })
	if len(pairs) > maxPairs {
		pairs = pairs[:maxPairs]
	}
	return pairs, nil
}

// Centrality holds the four per-node centrality measures.
// Betweenness and closeness are documented placeholders, not meaningful
// values — see the doc comment on CalculateCentralityMeasures.
type Centrality struct {
	Degree      float64
	Betweenness float64
	Closeness   float64
	Eigenvector float64
}

// CalculateCentralityMeasures computes degree exactly and eigenvector as
// an approximation (ln(|neighbors|)/10); betweenness and closeness are
// fixed 0.5 placeholders, surfaced unchanged so a future real
// implementation is observable as a behavior change rather than a silent one.
func CalculateCentralityMeasures(store graph.Store) (map[graph.NodeID]Centrality, error) {
	out := make(map[graph.NodeID]Centrality)
	for _, n := range store.AllNodes() {
		edges, err := store.GetNodeEdges(n.ID)
		if err != nil {
			return nil, err
		}
		neighbors, err := store.GetNeighbors(n.ID)
		if err != nil {
			return nil, err
		}
		eigen := 0.0
		if len(neighbors) > 0 {
			eigen = math.Log(float64(len(neighbors))) / 10.0
		}
		out[n.ID] = Centrality{
			Degree:      float64(len(edges)),
			Betweenness: 0.5,
			Closeness:   0.5,
			Eigenvector: eigen,
		}
	}
	return out, nil
}

func idSet(nodes []*graph.Node) map[graph.NodeID]struct{} {
	set := make(map[graph.NodeID]struct{}, len(nodes))
	for _, n := range nodes {
		set[n.ID] = struct{}{}
	}
	return set
}

func overlap(a, b map[graph.NodeID]struct{}) int {
	count := 0
	for id := range a {
		if _, ok := b[id]; ok {
			count++
		}
	}
	return count
}

func stringOverlap(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	count := 0
	for _, s := range b {
		if _, ok := set[s]; ok {
			count++
		}
	}
	return count
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
