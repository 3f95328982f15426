// Package graph implements the hypergraph store: entities (nodes) and
// named group relationships (hyperedges) linking one or more nodes, with
// adjacency indices maintained for traversal locality.
//
// Nodes and edges are identified by opaque 128-bit identifiers (uuid.UUID).
// The store never deletes a node or edge once created; deletion is an open
// question carried over from the original design (see DESIGN.md).
//
// Example:
//
//	store := graph.NewMemoryStore()
//	a, _ := uuid.NewRandom()
//	store.AddNode(graph.NodeID(a), map[string]any{"name": "alice"})
package graph

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common store errors. Callers should compare with errors.Is.
var (
	ErrDuplicateID   = errors.New("graph: duplicate id")
	ErrUnknownNode   = errors.New("graph: unknown node")
	ErrUnknownEdge   = errors.New("graph: unknown edge")
	ErrInvariant     = errors.New("graph: invariant violation")
	ErrEmptyEdge     = errors.New("graph: hyperedge must have at least one participant")
)

// NodeID is a strongly-typed 128-bit node identifier.
type NodeID uuid.UUID

// String renders the canonical UUID form.
func (id NodeID) String() string { return uuid.UUID(id).String() }

// EdgeID is a strongly-typed 128-bit edge identifier.
type EdgeID uuid.UUID

// String renders the canonical UUID form.
func (id EdgeID) String() string { return uuid.UUID(id).String() }

// NewNodeID mints a fresh random node identifier.
func NewNodeID() NodeID { return NodeID(uuid.New()) }

// NewEdgeID mints a fresh random edge identifier.
func NewEdgeID() EdgeID { return EdgeID(uuid.New()) }

// SpikeThreshold is the activation level above which an update to a node's
// activation counts as a spike.
const SpikeThreshold = 0.7

// EdgeKind tags the metadata variant of a hyperedge. Propagation is
// direction-agnostic regardless of kind in this revision; see DESIGN.md
// for the open question on whether directional edges should restrict
// propagation.
type EdgeKind int

const (
	// EdgeSymmetric is the default: a bidirectional relationship.
	EdgeSymmetric EdgeKind = iota
	// EdgeDirectional marks a one-way influence, from one source to a set
	// of targets.
	EdgeDirectional
	// EdgeHub marks one central node with many peripheral participants.
	EdgeHub
	// EdgeChain marks a sequential-dependency relationship.
	EdgeChain
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeDirectional:
		return "directional"
	case EdgeHub:
		return "hub"
	case EdgeChain:
		return "chain"
	default:
		return "symmetric"
	}
}

// Node is an entity in the hypergraph. Data is a free-form structured
// value; only Tags and Properties are lifted out for fast lookup.
type Node struct {
	ID   NodeID
	Data any

	CreatedAt time.Time
	UpdatedAt time.Time

	ActivationLevel float64
	LastSpikeTime   *time.Time
	SpikeCount      uint64

	NodeType   string
	Tags       []string
	Properties map[string]any
}

// Clone returns a deep-enough copy of the node suitable for returning to
// callers without exposing internal store state to external mutation.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Tags != nil {
		c.Tags = append([]string(nil), n.Tags...)
	}
	if n.Properties != nil {
		c.Properties = make(map[string]any, len(n.Properties))
		for k, v := range n.Properties {
			c.Properties[k] = v
		}
	}
	if n.LastSpikeTime != nil {
		t := *n.LastSpikeTime
		c.LastSpikeTime = &t
	}
	return &c
}

// Edge is a hyperedge: a named relationship linking one or more nodes.
// NodeIDs MUST all exist in the store at creation time. Duplicates
// within NodeIDs are legal but carry no extra semantics.
type Edge struct {
	ID           EdgeID
	NodeIDs      []NodeID
	Relationship string
	Strength     float64

	Conductance float64
	WeightDecay float64

	Kind EdgeKind
	// DirectionalFrom/DirectionalTo and HubCenter/HubPeriphery hold the
	// extra participants implied by Kind; they are metadata only, never
	// consulted by propagation.
	DirectionalFrom  NodeID
	DirectionalTo    []NodeID
	HubCenter        NodeID
	HubPeriphery     []NodeID

	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastActivation *time.Time
	ActivationCount uint64

	Properties map[string]any
}

// Clone returns a deep-enough copy of the edge for safe external return.
func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}
	c := *e
	if e.NodeIDs != nil {
		c.NodeIDs = append([]NodeID(nil), e.NodeIDs...)
	}
	if e.DirectionalTo != nil {
		c.DirectionalTo = append([]NodeID(nil), e.DirectionalTo...)
	}
	if e.HubPeriphery != nil {
		c.HubPeriphery = append([]NodeID(nil), e.HubPeriphery...)
	}
	if e.Properties != nil {
		c.Properties = make(map[string]any, len(e.Properties))
		for k, v := range e.Properties {
			c.Properties[k] = v
		}
	}
	if e.LastActivation != nil {
		t := *e.LastActivation
		c.LastActivation = &t
	}
	return &c
}

// defaultWeightDecay is applied to a new edge's Conductance every decay
// sweep unless overridden.
const defaultWeightDecay = 0.99
