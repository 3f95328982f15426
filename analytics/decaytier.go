package analytics

import (
	"math"
	"time"

	"github.com/deepruin/neurographite/graph"
)

// DecayTier classifies how durable a node's activity pattern looks. It
// is advisory: it never substitutes for graph.Store.ApplyDecay or
// neural.Engine.ApplyTemporalDecay, which remain the two mandatory
// decay sweeps.
type DecayTier int

const (
	// TierEpisodic suits nodes spiked once or twice and otherwise idle —
	// short-lived context, ~7-day half-life.
	TierEpisodic DecayTier = iota
	// TierSemantic suits nodes with moderate, recurring spike activity —
	// ~69-day half-life.
	TierSemantic
	// TierProcedural suits nodes with sustained, frequent spike activity —
	// ~693-day half-life.
	TierProcedural
)

func (t DecayTier) String() string {
	switch t {
	case TierSemantic:
		return "semantic"
	case TierProcedural:
		return "procedural"
	default:
		return "episodic"
	}
}

// tierLambda is the per-hour exponential decay constant for each tier,
// chosen so ln(2)/lambda reproduces the named half-life.
var tierLambda = map[DecayTier]float64{
	TierEpisodic:   0.00412,
	TierSemantic:   0.000418,
	TierProcedural: 0.0000417,
}

// ClassifyDecayTier recommends a tier for a node from its spike count and
// age: fewer than 3 spikes in its lifetime suggests Episodic; fewer than
// 20 suggests Semantic; otherwise Procedural. A node with zero spikes
// and less than an hour of age is always Episodic (too little history
// to judge).
func ClassifyDecayTier(n *graph.Node, now time.Time) DecayTier {
	age := now.Sub(n.CreatedAt)
	switch {
	case n.SpikeCount == 0 && age < time.Hour:
		return TierEpisodic
	case n.SpikeCount < 3:
		return TierEpisodic
	case n.SpikeCount < 20:
		return TierSemantic
	default:
		return TierProcedural
	}
}

// DecayScore computes an exponential recency score in [0, 1] for a node
// under the given tier: exp(-lambda * hours_since_last_activity). A node
// that has never spiked is scored from its CreatedAt instead.
func DecayScore(n *graph.Node, tier DecayTier, now time.Time) float64 {
	last := n.CreatedAt
	if n.LastSpikeTime != nil {
		last = *n.LastSpikeTime
	}
	hours := now.Sub(last).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Exp(-tierLambda[tier] * hours)
}
