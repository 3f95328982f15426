// Package main provides the neurographite CLI entry point.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/deepruin/neurographite/config"
	"github.com/deepruin/neurographite/graph"
	"github.com/deepruin/neurographite/neurograph"
	"github.com/deepruin/neurographite/persistence"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "neurographite",
		Short: "neurographite - an in-memory hypergraph database with a spiking-neural overlay",
		Long: `neurographite stores entities as hypergraph nodes and their
relationships as hyperedges, then layers a spiking-neural model on top
for activation propagation, similarity scoring, and relationship
discovery.`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("neurographite v%s\n", version)
		},
	})

	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (overrides NEUROGRAPHITE_DATA_DIR)")

	addNodeCmd := &cobra.Command{
		Use:   "add-node [json-data]",
		Short: "Add a node holding an arbitrary JSON value",
		Args:  cobra.ExactArgs(1),
		RunE:  runAddNode,
	}
	rootCmd.AddCommand(addNodeCmd)

	connectCmd := &cobra.Command{
		Use:   "connect [relationship] [strength] [node-id...]",
		Short: "Connect one or more existing nodes with a hyperedge",
		Args:  cobra.MinimumNArgs(3),
		RunE:  runConnect,
	}
	rootCmd.AddCommand(connectCmd)

	similarCmd := &cobra.Command{
		Use:   "similar [node-id] [threshold]",
		Short: "Find nodes similar to the given node",
		Args:  cobra.ExactArgs(2),
		RunE:  runSimilar,
	}
	rootCmd.AddCommand(similarCmd)

	discoverCmd := &cobra.Command{
		Use:   "discover [max-results]",
		Short: "Discover candidate relationships via greedy pairing",
		Args:  cobra.ExactArgs(1),
		RunE:  runDiscover,
	}
	rootCmd.AddCommand(discoverCmd)

	cascadeCmd := &cobra.Command{
		Use:   "cascade [node-id] [strength]",
		Short: "Simulate a network-effect cascade from a node",
		Args:  cobra.ExactArgs(2),
		RunE:  runCascade,
	}
	rootCmd.AddCommand(cascadeCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print aggregate store/engine statistics",
		RunE:  runStats,
	}
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildCoordinator(cmd *cobra.Command) (*neurograph.Coordinator, error) {
	cfg := config.LoadFromEnv()
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var store persistence.Contract
	switch cfg.PersistenceMode {
	case config.PersistenceFile:
		fileStore, err := persistence.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		store = fileStore
	case config.PersistenceBadger:
		badgerStore, err := persistence.NewBadgerStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		store = badgerStore
	default:
		store = persistence.NoopStore{}
	}

	return neurograph.New(cfg, store)
}

func parseNodeID(s string) (graph.NodeID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return graph.NodeID{}, fmt.Errorf("invalid node id %q: %w", s, err)
	}
	return graph.NodeID(id), nil
}

func runAddNode(cmd *cobra.Command, args []string) error {
	var data any
	if err := json.Unmarshal([]byte(args[0]), &data); err != nil {
		return fmt.Errorf("invalid JSON data: %w", err)
	}

	coord, err := buildCoordinator(cmd)
	if err != nil {
		return err
	}
	id, err := coord.AddNode(data)
	if err != nil {
		return err
	}
	fmt.Println(id.String())
	return nil
}

func runConnect(cmd *cobra.Command, args []string) error {
	relationship := args[0]
	var strength float64
	if _, err := fmt.Sscanf(args[1], "%f", &strength); err != nil {
		return fmt.Errorf("invalid strength %q: %w", args[1], err)
	}

	ids := make([]graph.NodeID, 0, len(args)-2)
	for _, raw := range args[2:] {
		id, err := parseNodeID(raw)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	coord, err := buildCoordinator(cmd)
	if err != nil {
		return err
	}
	edgeID, err := coord.ConnectNodes(ids, relationship, strength)
	if err != nil {
		return err
	}
	fmt.Println(edgeID.String())
	return nil
}

func runSimilar(cmd *cobra.Command, args []string) error {
	id, err := parseNodeID(args[0])
	if err != nil {
		return err
	}
	var threshold float64
	if _, err := fmt.Sscanf(args[1], "%f", &threshold); err != nil {
		return fmt.Errorf("invalid threshold %q: %w", args[1], err)
	}

	coord, err := buildCoordinator(cmd)
	if err != nil {
		return err
	}
	results, err := coord.FindSimilar(id, threshold)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%s\t%.4f\n", r.Node, r.Score)
	}
	return nil
}

func runDiscover(cmd *cobra.Command, args []string) error {
	var maxResults int
	if _, err := fmt.Sscanf(args[0], "%d", &maxResults); err != nil {
		return fmt.Errorf("invalid max-results %q: %w", args[0], err)
	}

	coord, err := buildCoordinator(cmd)
	if err != nil {
		return err
	}
	pairs, err := coord.DiscoverRelationships(maxResults)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		fmt.Printf("%s\t%s\t%.4f\n", p.A, p.B, p.Score)
	}
	return nil
}

func runCascade(cmd *cobra.Command, args []string) error {
	id, err := parseNodeID(args[0])
	if err != nil {
		return err
	}
	var strength float64
	if _, err := fmt.Sscanf(args[1], "%f", &strength); err != nil {
		return fmt.Errorf("invalid strength %q: %w", args[1], err)
	}

	coord, err := buildCoordinator(cmd)
	if err != nil {
		return err
	}
	results, err := coord.SimulateNetworkEffect(id, strength)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%s\t%.4f\n", r.Node, r.Strength)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	coord, err := buildCoordinator(cmd)
	if err != nil {
		return err
	}
	stats := coord.Stats()
	fmt.Printf("nodes: %d\n", stats.NodeCount)
	fmt.Printf("edges: %d\n", stats.EdgeCount)
	fmt.Printf("total_spikes: %d\n", stats.TotalSpikes)
	fmt.Printf("active_neurons: %d\n", stats.ActiveNeurons)
	fmt.Printf("average_activation: %.4f\n", stats.AverageActivation)
	return nil
}
