// Package neural implements the spiking-neural overlay: per
// node activation, spike history, refractory periods, synaptic weights
// learned via a Hebbian update rule, bounded cascade traversal, and the
// temporal decay sweep that keeps all of the above bounded over time.
//
// The engine owns its neural state independently of the hypergraph store
// it is handed for traversal.
// It never mutates the store.
package neural

import (
	"sort"
	"time"

	"github.com/deepruin/neurographite/graph"
)

// Config holds the tunable parameters of the neural engine. Zero-value
// Config is invalid; use DefaultConfig.
type Config struct {
	SpikeThreshold      float64
	DecayRate           float64
	RefractoryPeriod    time.Duration
	MaxCascadeDepth     int
}

// DefaultConfig returns conservative defaults for all tunable parameters.
func DefaultConfig() Config {
	return Config{
		SpikeThreshold:   0.7,
		DecayRate:        0.99,
		RefractoryPeriod: 100 * time.Millisecond,
		MaxCascadeDepth:  10,
	}
}

// SpikeEvent records a single spike for temporal-similarity queries and
// is pruned by ApplyTemporalDecay once older than one hour.
type SpikeEvent struct {
	NodeID            graph.NodeID
	Timestamp         time.Time
	Intensity         float64
	PropagationDepth  int
}

// synapseKey canonicalizes an unordered node pair as (min, max) so that
// (a,b) and (b,a) address the same synaptic weight.
type synapseKey struct {
	a, b graph.NodeID
}

func canonicalPair(a, b graph.NodeID) synapseKey {
	if a.String() <= b.String() {
		return synapseKey{a, b}
	}
	return synapseKey{b, a}
}

// Stats summarizes the engine's neural state.
type Stats struct {
	TotalSpikes       uint64
	ActiveNeurons     int
	AverageActivation float64
	ProcessingCycles  uint64
}

// Engine is the neural propagation engine. It is safe for
// concurrent use: an internal sync.RWMutex (see state.go) guards all
// neural state, acquired independently of any graph.Store lock.
type Engine struct {
	cfg   Config
	state *neuralState
}

// New creates an engine with the given configuration.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg, state: newNeuralState()}
}

// ProcessNewNode seeds activations[id] = 0 for a freshly created node
//. Called by the coordinator after graph.Store.AddNode.
func (e *Engine) ProcessNewNode(id graph.NodeID) {
	e.state.mu.Lock()
	defer e.state.mu.Unlock()
	if _, exists := e.state.activations[id]; !exists {
		e.state.activations[id] = 0
	}
}

// PropagateSpike spikes every source node not currently in its
// refractory period: sets its activation to intensity, opens a new
// refractory window, records a depth-0 SpikeEvent, and increments
// TotalSpikes. Nodes still refractory are silently skipped — this never
// recursively propagates to neighbors; multi-hop spreading is
// SimulateCascade's job.
func (e *Engine) PropagateSpike(sources []graph.NodeID, intensity float64) {
	e.state.mu.Lock()
	defer e.state.mu.Unlock()

	now := time.Now().UTC()
	for _, id := range sources {
		if until, ok := e.state.refractoryUntil[id]; ok && now.Before(until) {
			continue
		}
		e.state.activations[id] = intensity
		e.state.refractoryUntil[id] = now.Add(e.cfg.RefractoryPeriod)
		e.state.spikeHistory = append(e.state.spikeHistory, SpikeEvent{
			NodeID:           id,
			Timestamp:        now,
			Intensity:        intensity,
			PropagationDepth: 0,
		})
		e.state.totalSpikes++
	}
	e.state.lastUpdate = now
}

// cascadeFrame is a traversal stack entry for SimulateCascade. The
// analytics layer's network-effect traversal keeps its own frame type.
type cascadeFrame struct {
	node     graph.NodeID
	strength float64
	depth    int
}

// SimulateCascade performs a bounded, depth-first traversal from source,
// propagating activation strength hop by hop. Each hop's propagated
// strength is `strength * maxConductance(incident edges to neighbor) *
// decayFactor`, where maxConductance is the maximum conductance among
// edges incident to the current node that also name the neighbor;
// propagation below 0.01 is not queued further.
//
// Every node is visited at most once; emitted depth never exceeds
// MaxCascadeDepth-1. The result excludes source
// itself.
func SimulateCascade(store graph.Store, source graph.NodeID, initialStrength float64, maxDepth int, decayFactor float64) ([]NodeStrength, error) {
	visited := make(map[graph.NodeID]struct{})
	stack := []cascadeFrame{{node: source, strength: initialStrength, depth: 0}}
	var results []NodeStrength

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

		if top.node != source {
			results = append(results, NodeStrength{Node: top.node, Strength: top.strength})
		}

		neighbors, err := store.GetNeighbors(top.node)
		if err != nil {
			return nil, err
		}
		incident, err := store.GetNodeEdges(top.node)
		if err != nil {
			return nil, err
		}

		for _, neighbor := range neighbors {
			if _, seen := visited[neighbor.ID]; seen {
				continue
			}
			maxConductance := 0.0
			for _, edge := range incident {
				if containsNode(edge.NodeIDs, neighbor.ID) {
					if edge.Conductance > maxConductance {
						maxConductance = edge.Conductance
					}
				}
			}
			propagated := top.strength * maxConductance * decayFactor
			if propagated > 0.01 {
				stack = append(stack, cascadeFrame{node: neighbor.ID, strength: propagated, depth: top.depth + 1})
			}
		}
	}

	return results, nil
}

// NodeStrength pairs a node with an activation/effect strength, the
// common result shape of SimulateCascade and the analytics layer's
// network-effect traversal.
type NodeStrength struct {
	Node     graph.NodeID
	Strength float64
}

func containsNode(haystack []graph.NodeID, needle graph.NodeID) bool {
	for _, n := range haystack {
		if n == needle {
			return true
		}
	}
	return false
}

// SimulateCascade runs the engine's configured cascade traversal
// (decay_rate, max_cascade_depth) from source.
func (e *Engine) SimulateCascade(store graph.Store, source graph.NodeID, initialStrength float64) ([]NodeStrength, error) {
	return SimulateCascade(store, source, initialStrength, e.cfg.MaxCascadeDepth, e.cfg.DecayRate)
}

// NodeScore pairs a node with a similarity or complementarity score in
// [0, 1].
type NodeScore struct {
	Node  graph.NodeID
	Score float64
}

// FindSimilarNodes scores every node other than target by S = 0.4·A +
// 0.4·T_struct + 0.2·T_temp and returns those scoring at
// least threshold, sorted strictly non-increasing by score.
func (e *Engine) FindSimilarNodes(store graph.Store, target graph.NodeID, threshold float64) ([]NodeScore, error) {
	e.state.mu.RLock()
	defer e.state.mu.RUnlock()

	targetActivation := e.state.activations[target]
	targetNeighbors, err := store.GetNeighbors(target)
	if err != nil {
		return nil, err
	}
	targetNeighborSet := neighborIDSet(targetNeighbors)

	allNodes := store.AllNodes()
	var out []NodeScore

	for _, n := range allNodes {
		if n.ID == target {
			continue
		}
		nodeActivation := e.state.activations[n.ID]
		nodeNeighbors, err := store.GetNeighbors(n.ID)
		if err != nil {
			return nil, err
		}
		nodeNeighborSet := neighborIDSet(nodeNeighbors)

		activationSim := 1.0 - absFloat(targetActivation-nodeActivation)
		structSim := jaccardLikeOverlap(targetNeighborSet, nodeNeighborSet)
		temporalSim := e.temporalSimilarityLocked(target, n.ID)

		score := 0.4*activationSim + 0.4*structSim + 0.2*temporalSim
		if score >= threshold {
			out = append(out, NodeScore{Node: n.ID, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// PairScore is an unordered node pair with a complementarity score, the
// result shape of StableMatching.
type PairScore struct {
	A, B  graph.NodeID
	Score float64
}

// StableMatching is a misnomer carried over from its origins: the
// discipline is greedy input-order pairing, not Gale-Shapley stable
// matching. It runs over every node with activation > 0.1: for every
// unordered pair enumerated in upper-triangular nested-loop order,
// compute complementarity and keep pairs scoring above 0.5, early-exiting
// once maxResults pairs are collected, then sort descending and truncate.
func (e *Engine) StableMatching(store graph.Store, maxResults int) ([]PairScore, error) {
	e.state.mu.RLock()
	defer e.state.mu.RUnlock()

	type activeNode struct {
		id         graph.NodeID
		activation float64
	}
	var active []activeNode
	for id, a := range e.state.activations {
		if a > 0.1 {
			active = append(active, activeNode{id: id, activation: a})
		}
	}
	// Deterministic enumeration order for identical inputs.
	sort.Slice(active, func(i, j int) bool { return active[i].id.String() < active[j].id.String() })

	var matches []PairScore
outer:
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			score, err := e.complementarityLocked(store, active[i].id, active[j].id)
			if err != nil {
				return nil, err
			}
			if score > 0.5 {
				matches = append(matches, PairScore{A: active[i].id, B: active[j].id, Score: score})
			}
			if len(matches) >= maxResults {
				break outer
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, nil
}

// complementarityLocked computes 0.3·AC + 0.7·BP for (a,b).
// Caller must hold e.state.mu (read or write).
func (e *Engine) complementarityLocked(store graph.Store, a, b graph.NodeID) (float64, error) {
	actA := e.state.activations[a]
	actB := e.state.activations[b]
	ac := 1.0 - minFloat(1.0, absFloat(actA-actB))

	neighborsA, err := store.GetNeighbors(a)
	if err != nil {
		return 0, err
	}
	neighborsB, err := store.GetNeighbors(b)
	if err != nil {
		return 0, err
	}
	setA := neighborIDSet(neighborsA)
	setB := neighborIDSet(neighborsB)

	shared := intersectionSize(setA, setB)
	denom := len(setA) + len(setB) - shared
	var bp float64
	if denom > 0 {
		bp = 1.0 - float64(shared)/float64(denom)
	}

	return 0.3*ac + 0.7*bp, nil
}

// UpdateSynapticWeights applies the Hebbian update rule:
// w_new = clamp(w_old + 0.01·correlation, -1, 1), keyed on the
// canonical (min, max) ordering of the pair.
func (e *Engine) UpdateSynapticWeights(a, b graph.NodeID, correlation float64) {
	e.state.mu.Lock()
	defer e.state.mu.Unlock()

	key := canonicalPair(a, b)
	w := e.state.synapticWeights[key] + 0.01*correlation
	e.state.synapticWeights[key] = clamp(w, -1, 1)
}

// SynapticWeight returns the current learned weight for the unordered
// pair (a, b), defaulting to 0 if no update has ever been applied.
func (e *Engine) SynapticWeight(a, b graph.NodeID) float64 {
	e.state.mu.RLock()
	defer e.state.mu.RUnlock()
	return e.state.synapticWeights[canonicalPair(a, b)]
}

// ApplyTemporalDecay multiplies every activation by decay_rate, drops
// spike_history entries older than one hour, drops expired
// refractory_until entries, and increments processing_cycles (spec
// §4.2).
func (e *Engine) ApplyTemporalDecay() {
	e.state.mu.Lock()
	defer e.state.mu.Unlock()

	now := time.Now().UTC()
	for id, a := range e.state.activations {
		e.state.activations[id] = a * e.cfg.DecayRate
	}

	cutoff := now.Add(-1 * time.Hour)
	kept := e.state.spikeHistory[:0]
	for _, s := range e.state.spikeHistory {
		if s.Timestamp.After(cutoff) {
			kept = append(kept, s)
		}
	}
	e.state.spikeHistory = kept

	for id, until := range e.state.refractoryUntil {
		if !until.After(now) {
			delete(e.state.refractoryUntil, id)
		}
	}

	e.state.processingCycles++
	e.state.lastUpdate = now
}

// Stats reports total_spikes, active_neurons (|{n: act > 0.01}|),
// average_activation, and processing_cycles.
func (e *Engine) Stats() Stats {
	e.state.mu.RLock()
	defer e.state.mu.RUnlock()

	active := 0
	var sum float64
	for _, a := range e.state.activations {
		sum += a
		if a > 0.01 {
			active++
		}
	}
	avg := 0.0
	if len(e.state.activations) > 0 {
		avg = sum / float64(len(e.state.activations))
	}

	return Stats{
		TotalSpikes:       e.state.totalSpikes,
		ActiveNeurons:     active,
		AverageActivation: avg,
		ProcessingCycles:  e.state.processingCycles,
	}
}

// Activation returns the engine's current activation for id, defaulting
// to 0 for a node the engine has never seen — the neural engine never
// fails structurally on a missing activation entry.
func (e *Engine) Activation(id graph.NodeID) float64 {
	e.state.mu.RLock()
	defer e.state.mu.RUnlock()
	return e.state.activations[id]
}

// temporalSimilarityLocked computes the 10-minute-window temporal term
// of FindSimilarNodes. Caller must hold e.state.mu.
func (e *Engine) temporalSimilarityLocked(a, b graph.NodeID) float64 {
	cutoff := time.Now().UTC().Add(-10 * time.Minute)
	var countA, countB int
	for _, s := range e.state.spikeHistory {
		if !s.Timestamp.After(cutoff) {
			continue
		}
		switch s.NodeID {
		case a:
			countA++
		case b:
			countB++
		}
	}

	switch {
	case countA == 0 && countB == 0:
		return 1.0
	case countA == 0 || countB == 0:
		return 0.0
	default:
		max, min := float64(countA), float64(countB)
		if min > max {
			max, min = min, max
		}
		return min / max
	}
}

func neighborIDSet(nodes []*graph.Node) map[graph.NodeID]struct{} {
	set := make(map[graph.NodeID]struct{}, len(nodes))
	for _, n := range nodes {
		set[n.ID] = struct{}{}
	}
	return set
}

func intersectionSize(a, b map[graph.NodeID]struct{}) int {
	small, big := a, b
	if len(big) < len(small) {
		small, big = big, small
	}
	count := 0
	for id := range small {
		if _, ok := big[id]; ok {
			count++
		}
	}
	return count
}

// jaccardLikeOverlap implementsordinary T_struct term:
// |N(target) ∩ N(n)| / max(|N(target)|, |N(n)|), 0 when both are empty.
func jaccardLikeOverlap(a, b map[graph.NodeID]struct{}) float64 {
	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	if max == 0 {
		return 0
	}
	return float64(intersectionSize(a, b)) / float64(max)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
