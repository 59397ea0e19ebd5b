package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vectl/vectl/pkg/agent"
	"github.com/vectl/vectl/pkg/cli"
	"github.com/vectl/vectl/pkg/docs"
)

var addCmd = &cobra.Command{
	Use:   "add <collection>",
	Short: "Ingest documents into a collection",
	Long: `Ingest documents from a file into a collection.

The source format follows the file extension: a JSON array of strings
or objects (.json), JSON Lines (.jsonl, .ndjson), or one document per
line for anything else. Object sources take their text from the "text"
field by default; --text-field or a --jq expression override that.

Documents are embedded and upserted in batches. Documents that fail
validation (empty text, unsupported metadata) are skipped individually;
a batch failure stops the ingest unless --continue-on-error is given.
Committed batches stay committed either way.

Example:
  vectl add articles -f articles.json
  vectl add articles -f notes.jsonl --text-field body
  vectl add articles -f export.json --jq '.title + ": " + .abstract'
  vectl add articles -f big.json --batch-size 50 --continue-on-error`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection := args[0]

		source := getInputFile()
		if source == "" {
			return fmt.Errorf("no input file: use -f to point at a document source")
		}
		textField, err := cmd.Flags().GetString("text-field")
		if err != nil {
			return err
		}
		jqExpr, err := cmd.Flags().GetString("jq")
		if err != nil {
			return err
		}
		batchSize, err := cmd.Flags().GetInt("batch-size")
		if err != nil {
			return err
		}
		continueOnError, err := cmd.Flags().GetBool("continue-on-error")
		if err != nil {
			return err
		}

		documents, err := docs.Load(source, docs.Options{TextField: textField, JQ: jqExpr})
		if err != nil {
			return fmt.Errorf("load %s: %w", source, err)
		}
		if st, err := os.Stat(source); err == nil {
			slog.Debug("documents loaded", "source", source, "count", len(documents), "size", cli.FormatBytes(st.Size()))
		}

		a, err := buildAgent()
		if err != nil {
			return err
		}

		opts := agent.IngestOptions{
			BatchSize:       batchSize,
			ContinueOnError: continueOnError,
			OnBatch: func(b agent.BatchResult) {
				switch b.Status {
				case agent.BatchSucceeded:
					slog.Debug("batch done", "batch", b.Index, "upserted", b.Upserted, "invalid", len(b.Invalid))
				case agent.BatchFailed:
					cli.PrintError("batch %d failed: %s", b.Index, b.Error)
				case agent.BatchSkipped:
					slog.Debug("batch skipped", "batch", b.Index)
				}
			},
		}

		report, ingestErr := a.AddDocuments(cmd.Context(), collection, documents, opts)

		// The report is worth printing even when the ingest failed
		// partway: it says which batches committed.
		if report != nil {
			if isJSONOutput() || getOutputFile() != "" {
				if err := outputResult(report); err != nil {
					return err
				}
			} else {
				cli.PrintInfo("Ingested %d/%d documents into %q (%d invalid, %d batches)",
					report.Upserted, report.Total, report.Collection, report.Invalid, len(report.Batches))
				if failed := report.FailedBatches(); len(failed) > 0 {
					cli.PrintWarning("Failed batches: %v", failed)
				}
			}
		}

		return ingestErr
	},
}

func init() {
	addCmd.Flags().String("text-field", "", `object field holding the text (default "text")`)
	addCmd.Flags().String("jq", "", "jq expression producing the text from each object")
	addCmd.Flags().Int("batch-size", 0, "documents per batch (default from config)")
	addCmd.Flags().Bool("continue-on-error", false, "keep ingesting after a failed batch")
}
