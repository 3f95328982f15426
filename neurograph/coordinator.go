// Package neurograph is the coordinator façade: it owns the
// hypergraph store, the neural engine, and a persistence collaborator,
// and exposes the public API. Write operations take the store's
// exclusive lock, mutate, release, then drive the neural engine and
// request a persistence snapshot — store-before-engine, always in that
// order.
package neurograph

import (
	"fmt"
	"log"

	"github.com/deepruin/neurographite/config"
	"github.com/deepruin/neurographite/graph"
	"github.com/deepruin/neurographite/neural"
	"github.com/deepruin/neurographite/persistence"
)

// Stats is a point-in-time summary of the coordinator's aggregate state.
type Stats struct {
	NodeCount         int
	EdgeCount         int
	TotalSpikes       uint64
	ActiveNeurons     int
	AverageActivation float64
}

// Coordinator is the public entry point of neurographite. It is safe
// for concurrent use: all mutation flows through graph.Store and
// neural.Engine, which carry their own locks.
type Coordinator struct {
	store   graph.Store
	engine  *neural.Engine
	persist persistence.Contract
	cfg     *config.Config
}

// New constructs a Coordinator, loading a prior snapshot from persist if
// one exists. A load failure from persist is logged prominently and the
// coordinator starts empty rather than silently dropping data.
func New(cfg *config.Config, persist persistence.Contract) (*Coordinator, error) {
	c := &Coordinator{
		store:   graph.NewMemoryStore(),
		engine:  neural.New(neural.Config{SpikeThreshold: cfg.SpikeThreshold, DecayRate: cfg.DecayRate, RefractoryPeriod: cfg.RefractoryPeriod, MaxCascadeDepth: cfg.MaxCascadeDepth}),
		persist: persist,
		cfg:     cfg,
	}

	snap, err := persist.Load()
	if err != nil {
		log.Printf("neurograph: failed to load snapshot, starting empty: %v", err)
		return c, nil
	}
	if snap != nil {
		c.store.Restore(snap)
		for _, n := range snap.Nodes {
			c.engine.ProcessNewNode(n.ID)
		}
		log.Printf("neurograph: restored %d nodes, %d edges from snapshot", len(snap.Nodes), len(snap.Edges))
	}
	return c, nil
}

// AddNode creates a node holding data, seeds its neural activation, and
// persists the resulting state.
func (c *Coordinator) AddNode(data any) (graph.NodeID, error) {
	id := graph.NewNodeID()
	if err := c.store.AddNode(id, data); err != nil {
		return graph.NodeID{}, err
	}

	c.engine.ProcessNewNode(id)

	if err := c.sync(); err != nil {
		return graph.NodeID{}, err
	}
	return id, nil
}

// ConnectNodes creates a hyperedge linking ids, fails with
// graph.ErrUnknownNode if any participant is missing, otherwise
// propagates a spike of strength through every participant.
func (c *Coordinator) ConnectNodes(ids []graph.NodeID, relationship string, strength float64) (graph.EdgeID, error) {
	edgeID := graph.NewEdgeID()
	if err := c.store.AddHyperedge(edgeID, ids, relationship, strength); err != nil {
		return graph.EdgeID{}, err
	}

	c.engine.PropagateSpike(ids, strength)

	if err := c.sync(); err != nil {
		return graph.EdgeID{}, err
	}
	return edgeID, nil
}

// FindSimilar returns every node scoring at least threshold against
// node, descending by score.
func (c *Coordinator) FindSimilar(node graph.NodeID, threshold float64) ([]neural.NodeScore, error) {
	return c.engine.FindSimilarNodes(c.store, node, threshold)
}

// DiscoverRelationships runs the neural engine's greedy pairing
// discipline over currently active nodes.
func (c *Coordinator) DiscoverRelationships(maxResults int) ([]neural.PairScore, error) {
	return c.engine.StableMatching(c.store, maxResults)
}

// SimulateNetworkEffect runs a bounded cascade from node using the
// engine's configured decay_rate and max_cascade_depth.
func (c *Coordinator) SimulateNetworkEffect(node graph.NodeID, strength float64) ([]neural.NodeStrength, error) {
	return c.engine.SimulateCascade(c.store, node, strength)
}

// Stats reports the coordinator's aggregate view.
func (c *Coordinator) Stats() Stats {
	engineStats := c.engine.Stats()
	return Stats{
		NodeCount:         c.store.NodeCount(),
		EdgeCount:         c.store.EdgeCount(),
		TotalSpikes:       engineStats.TotalSpikes,
		ActiveNeurons:     engineStats.ActiveNeurons,
		AverageActivation: engineStats.AverageActivation,
	}
}

// ApplyDecaySweep runs both decay sweeps (store conductance/activation
// decay and the engine's temporal decay), intended to be driven by an
// external ticker on sync_interval rather than the request path.
func (c *Coordinator) ApplyDecaySweep() {
	c.store.ApplyDecay(c.cfg.DecayRate)
	c.engine.ApplyTemporalDecay()
}

// sync requests a persistence snapshot after a successful mutation. A
// failure here is re-raised rather than rolled back: the in-memory
// mutation already happened and is visible to other readers, so undoing
// it would just be a second race-prone mutation (see DESIGN.md).
func (c *Coordinator) sync() error {
	if err := c.persist.Save(c.store.Snapshot()); err != nil {
		return fmt.Errorf("neurograph: persistence error: %w", err)
	}
	return nil
}
