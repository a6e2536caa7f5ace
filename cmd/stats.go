package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/hrdesk/internal/config"
	"github.com/ziadkadry99/hrdesk/internal/ledger"
	"github.com/ziadkadry99/hrdesk/internal/pipeline"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise recorded answer outcomes",
	Long:  `Reads the outcome ledger and prints how questions were handled: refusals, failures, answers, token usage and the most cited documents.`,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Duration("since", 0, "only include questions asked within this window (e.g. 24h); 0 covers everything")
	statsCmd.Flags().Int("top", 5, "number of most cited documents to list")
	statsCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}

type statsJSON struct {
	Total         int            `json:"total"`
	ByOutcome     map[string]int `json:"by_outcome"`
	AvgDurationMS int64          `json:"avg_duration_ms"`
	InputTokens   int            `json:"input_tokens"`
	OutputTokens  int            `json:"output_tokens"`
	CostUSD       float64        `json:"cost_usd"`
	TopSources    []sourceCount  `json:"top_sources"`
}

type sourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

func runStats(cmd *cobra.Command, args []string) error {
	window, _ := cmd.Flags().GetDuration("since")
	top, _ := cmd.Flags().GetInt("top")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Ledger.Path == "" {
		return fmt.Errorf("ledger.path is not set in %s; enable the ledger to record outcomes", cfgFile)
	}
	if _, err := os.Stat(cfg.Ledger.Path); err != nil {
		return fmt.Errorf("ledger %s: %w", cfg.Ledger.Path, err)
	}

	l, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer l.Close()

	var since time.Time
	if window > 0 {
		since = time.Now().Add(-window)
	}
	st, err := l.Stats(context.Background(), since, top)
	if err != nil {
		return err
	}

	if jsonOutput {
		out := statsJSON{
			Total:         st.Total,
			ByOutcome:     make(map[string]int, len(st.ByOutcome)),
			AvgDurationMS: st.AvgDuration.Milliseconds(),
			InputTokens:   st.InputTokens,
			OutputTokens:  st.OutputTokens,
			CostUSD:       st.CostUSD,
			TopSources:    []sourceCount{},
		}
		for o, n := range st.ByOutcome {
			out.ByOutcome[string(o)] = n
		}
		for _, s := range st.TopSources {
			out.TopSources = append(out.TopSources, sourceCount{Source: s.Source, Count: s.Count})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Questions: %d\n", st.Total)
	if st.Total == 0 {
		return nil
	}
	for _, o := range pipeline.Outcomes {
		n := st.ByOutcome[o]
		fmt.Printf("  %-16s %5d  (%.1f%%)\n", o, n, float64(n)*100/float64(st.Total))
	}
	fmt.Printf("Average duration:  %s\n", st.AvgDuration.Round(time.Millisecond))
	fmt.Printf("Tokens:            %d input, %d output\n", st.InputTokens, st.OutputTokens)
	if st.CostUSD > 0 {
		fmt.Printf("Estimated cost:    $%.4f\n", st.CostUSD)
	}
	if len(st.TopSources) > 0 {
		fmt.Println("Most cited documents:")
		for i, s := range st.TopSources {
			fmt.Printf("  %d. %s (%d)\n", i+1, s.Source, s.Count)
		}
	}
	return nil
}
