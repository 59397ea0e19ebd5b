package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vectl/vectl/pkg/agent"
	"github.com/vectl/vectl/pkg/cli"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Dispatch a request file through the agent",
	Long: `Run a single operation described by a YAML or JSON request file.

The request names an operation and its parameters:

  op: query
  query:
    collection: articles
    text: vector similarity search
    top_k: 3

Operations: list_collections, create_collection, add_documents, query,
collection_info, delete_collection. The normalized response is printed
whether the operation succeeded or failed; a failed operation also
exits non-zero.

Example:
  vectl run -f request.yaml
  vectl run -f request.json --json | jq '.matches'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := getInputFile()
		if path == "" {
			return fmt.Errorf("no request file: use -f")
		}

		var req agent.Request
		if err := cli.LoadRequest(path, &req); err != nil {
			return err
		}

		a, err := buildAgent()
		if err != nil {
			return err
		}

		resp := a.Dispatch(cmd.Context(), req)
		if err := outputResult(resp); err != nil {
			return err
		}
		if !resp.OK {
			return fmt.Errorf("%s failed: %s: %s", resp.Op, resp.Error.Kind, resp.Error.Message)
		}
		return nil
	},
}
