package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/candidhq/candid/pkg/adapters/sqlite"
	"github.com/candidhq/candid/pkg/knowledge"
	"github.com/candidhq/candid/pkg/ports"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect the knowledge base",
}

var kbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Index a knowledge directory and report what was loaded",
	Long:  `Walks the knowledge directory, embeds every markdown and text file, and lists the documents that would serve the retrieval gate. With --sqlite the entries are persisted so the server loads them at startup; without it the command is a dry run that validates the corpus.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		sqlitePath, _ := cmd.Flags().GetString("sqlite")

		embedder, err := newEmbedder(cmd)
		if err != nil {
			return err
		}

		index := knowledge.NewIndex(embedder)
		sink := knowledge.DocumentSink(index)
		if sqlitePath != "" {
			store, err := sqlite.NewKnowledgeStore(sqlitePath)
			if err != nil {
				return err
			}
			defer store.Close()
			sink = knowledge.MultiSink(index, knowledge.SinkFunc(store.Put))
		}

		n, err := knowledge.SeedFromDir(cmd.Context(), sink, dir)
		if err != nil {
			return fmt.Errorf("seed knowledge base: %w", err)
		}
		for _, id := range index.IDs() {
			fmt.Println(id)
		}
		fmt.Printf("\nIndexed %d documents from %s (dimension %d)\n", n, dir, embedder.Dimension())
		if sqlitePath != "" {
			fmt.Printf("Persisted %d entries to %s\n", n, sqlitePath)
		}
		return nil
	},
}

var kbQueryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Run a question through the retrieval gate",
	Long:  `Seeds an index from the knowledge directory and shows the gate decision for the question: the matched entries with their distances, and whether the question would escalate to web search. With GEMINI_API_KEY set, real embeddings are used; otherwise a deterministic offline engine.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		question := strings.Join(args, " ")

		embedder, err := newEmbedder(cmd)
		if err != nil {
			return err
		}

		index := knowledge.NewIndex(embedder)
		n, err := knowledge.SeedFromDir(cmd.Context(), index, dir)
		if err != nil {
			return fmt.Errorf("seed knowledge base: %w", err)
		}
		fmt.Printf("Indexed %d documents from %s\n\n", n, dir)

		opts := []knowledge.GateOption{}
		if threshold > 0 {
			opts = append(opts, knowledge.WithThreshold(threshold))
		}
		gate := knowledge.NewGate(index, opts...)

		decision, err := gate.Decide(cmd.Context(), question)
		if err != nil {
			return err
		}

		for _, hit := range decision.Hits {
			preview := hit.Content
			if len(preview) > 80 {
				preview = preview[:77] + "..."
			}
			fmt.Printf("distance=%.4f  %s\n", hit.Distance, preview)
		}
		if decision.Escalate {
			fmt.Println("\nDecision: escalate to web search")
			return nil
		}
		fmt.Println("\nDecision: answer from knowledge base")
		return nil
	},
}

func newEmbedder(cmd *cobra.Command) (ports.EmbeddingEngine, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return knowledge.NewGenAIEngine(cmd.Context(), key, "")
	}
	fmt.Println("GEMINI_API_KEY not set, using offline embeddings")
	return knowledge.NewHashEngine(256), nil
}

func init() {
	rootCmd.AddCommand(kbCmd)
	kbCmd.AddCommand(kbSeedCmd)
	kbCmd.AddCommand(kbQueryCmd)
	kbSeedCmd.Flags().String("dir", ".", "Directory of markdown/text files to index")
	kbSeedCmd.Flags().String("sqlite", "", "Persist seeded entries to this SQLite database")
	kbQueryCmd.Flags().String("dir", ".", "Directory of markdown/text files to index")
	kbQueryCmd.Flags().Float64("threshold", 0, "Gate distance threshold (0: default)")
}
