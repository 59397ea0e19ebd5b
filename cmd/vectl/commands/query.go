package commands

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vectl/vectl/pkg/agent"
	"github.com/vectl/vectl/pkg/cli"
)

var queryCmd = &cobra.Command{
	Use:   "query <collection>",
	Short: "Semantic search over a collection",
	Long: `Embed the query text and return the nearest documents, best first.

Filters restrict results by payload fields: key=value for equality,
key>=n / key<=n / key>n / key<n for numeric ranges. All filters must
hold.

Example:
  vectl query articles -t "vector similarity search"
  vectl query articles -t "deployment" -k 10 --filter topic=infra
  vectl query articles -t "pricing" --filter "year>=2024" --threshold 0.3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection := args[0]

		text, err := cmd.Flags().GetString("text")
		if err != nil {
			return err
		}
		if text == "" {
			return fmt.Errorf("no query text: use -t")
		}
		topK, err := cmd.Flags().GetInt("top-k")
		if err != nil {
			return err
		}
		filterExprs, err := cmd.Flags().GetStringArray("filter")
		if err != nil {
			return err
		}
		threshold, err := cmd.Flags().GetFloat32("threshold")
		if err != nil {
			return err
		}

		filter, err := parseFilters(filterExprs)
		if err != nil {
			return err
		}
		opts := agent.QueryOptions{TopK: topK, Filter: filter}
		if cmd.Flags().Changed("threshold") {
			opts.ScoreThreshold = &threshold
		}

		a, err := buildAgent()
		if err != nil {
			return err
		}

		start := time.Now()
		matches, err := a.Query(cmd.Context(), collection, text, opts)
		if err != nil {
			return err
		}
		slog.Debug("query done", "matches", len(matches),
			"elapsed", cli.FormatDuration(int(time.Since(start).Milliseconds())))

		if isJSONOutput() || getOutputFile() != "" {
			return outputResult(matches)
		}

		if len(matches) == 0 {
			fmt.Println("No matches")
			return nil
		}
		tbl := cli.NewTable("SCORE", "ID", "PAYLOAD")
		for _, m := range matches {
			tbl.AddRow(fmt.Sprintf("%.4f", m.Score), m.ID, payloadSummary(m.Payload))
		}
		fmt.Print(tbl.Render())
		return nil
	},
}

// payloadSummary renders a payload as a compact one-line string with
// keys in sorted order.
func payloadSummary(payload map[string]any) string {
	if len(payload) == 0 {
		return ""
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := ""
	for _, k := range keys {
		if s != "" {
			s += " "
		}
		s += fmt.Sprintf("%s=%v", k, payload[k])
	}
	return s
}

func init() {
	queryCmd.Flags().StringP("text", "t", "", "query text (required)")
	queryCmd.Flags().IntP("top-k", "k", 0, "maximum results (default 5)")
	queryCmd.Flags().StringArray("filter", nil, "payload filter, repeatable (key=value, key>=n, ...)")
	queryCmd.Flags().Float32("threshold", 0, "minimum similarity score")
}
