package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/hrdesk/internal/pipeline"
	"github.com/ziadkadry99/hrdesk/internal/server"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one HR question from the indexed documents",
	Long:  `Runs a single question through admission, retrieval and grounded generation, and prints the answer.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().Bool("json", false, "output the result as JSON")
	askCmd.Flags().Bool("sources", false, "list the documents the answer is grounded in")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	showSources, _ := cmd.Flags().GetBool("sources")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := buildApp(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.pipeline.Answer(context.Background(), strings.Join(args, " "))

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(server.ToJSON(res)); err != nil {
			return err
		}
	} else {
		printAnswer(out, res, showSources)
	}

	if res.Outcome.Failed() {
		return fmt.Errorf("question not answered: %s", res.Outcome)
	}
	return nil
}

func printAnswer(w io.Writer, res pipeline.AnswerResult, showSources bool) {
	fmt.Fprintln(w, res.Text)
	if !showSources || len(res.Sources) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	for _, c := range res.Sources {
		location := c.SourceID
		if c.Page > 0 {
			location = fmt.Sprintf("%s, page %d", location, c.Page)
		}
		fmt.Fprintf(w, "  %d. [%.1f%%] %s\n", c.Rank, c.Score*100, location)
	}
}
