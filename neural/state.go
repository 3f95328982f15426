package neural

import (
	"sync"
	"time"

	"github.com/deepruin/neurographite/graph"
)

// neuralState holds the mutable neural overlay, keyed by node id and
// owned exclusively by Engine, guarded by its own RWMutex independent
// of any graph.Store lock.
type neuralState struct {
	mu sync.RWMutex

	activations     map[graph.NodeID]float64
	spikeHistory    []SpikeEvent
	refractoryUntil map[graph.NodeID]time.Time
	synapticWeights map[synapseKey]float64

	totalSpikes      uint64
	processingCycles uint64
	lastUpdate       time.Time
}

func newNeuralState() *neuralState {
	return &neuralState{
		activations:     make(map[graph.NodeID]float64),
		refractoryUntil: make(map[graph.NodeID]time.Time),
		synapticWeights: make(map[synapseKey]float64),
		lastUpdate:      time.Now().UTC(),
	}
}
