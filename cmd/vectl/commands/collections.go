package commands

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vectl/vectl/pkg/cli"
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"coll"},
	Short:   "Manage vector collections",
	Long: `Manage vector collections: list, create, inspect, delete.

Examples:
  vectl collections list
  vectl collections create articles --dimension 1536 --metric cosine
  vectl collections info articles
  vectl collections delete articles --force`,
}

var collectionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildAgent()
		if err != nil {
			return err
		}

		infos, err := a.ListCollections(cmd.Context())
		if err != nil {
			return err
		}

		if isJSONOutput() || getOutputFile() != "" {
			return outputResult(infos)
		}

		if len(infos) == 0 {
			fmt.Println("No collections")
			return nil
		}
		tbl := cli.NewTable("NAME", "DIMENSION", "METRIC", "POINTS")
		for _, info := range infos {
			tbl.AddRow(info.Name,
				strconv.Itoa(info.Dimension),
				string(info.Metric),
				strconv.FormatUint(info.Points, 10))
		}
		fmt.Print(tbl.Render())
		return nil
	},
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a collection",
	Long: `Create a collection with a fixed vector dimension and distance metric.

The dimension defaults to the configured embedding dimension; the
metric defaults to cosine (accepted: cosine, dot, euclid).

Example:
  vectl collections create articles --dimension 1536
  vectl collections create scores --dimension 8 --metric dot --exists-ok`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dimension, err := cmd.Flags().GetInt("dimension")
		if err != nil {
			return err
		}
		metric, err := cmd.Flags().GetString("metric")
		if err != nil {
			return err
		}
		existsOK, err := cmd.Flags().GetBool("exists-ok")
		if err != nil {
			return err
		}

		a, err := buildAgent()
		if err != nil {
			return err
		}

		info, err := a.CreateCollection(cmd.Context(), args[0], dimension, metric, existsOK)
		if err != nil {
			return err
		}

		if isJSONOutput() || getOutputFile() != "" {
			return outputResult(info)
		}
		cli.PrintSuccess("Collection %q ready (dimension %d, metric %s)", info.Name, info.Dimension, info.Metric)
		return nil
	},
}

var collectionsInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show collection metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildAgent()
		if err != nil {
			return err
		}

		info, err := a.DescribeCollection(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return outputResult(info)
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a collection and all its points",
	Long: `Delete a collection and every point in it.

Asks for confirmation unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}
		name := args[0]

		if !force && !confirm(fmt.Sprintf("Delete collection %q and all its points?", name)) {
			fmt.Println("Aborted")
			return nil
		}

		a, err := buildAgent()
		if err != nil {
			return err
		}

		if err := a.DeleteCollection(cmd.Context(), name); err != nil {
			return err
		}

		cli.PrintSuccess("Collection %q deleted", name)
		return nil
	},
}

// confirm prompts for a yes/no answer on the terminal.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	collectionsCreateCmd.Flags().Int("dimension", 0, "Vector dimension (default: embedding dimension)")
	collectionsCreateCmd.Flags().String("metric", "", "Distance metric: cosine, dot, euclid (default: cosine)")
	collectionsCreateCmd.Flags().Bool("exists-ok", false, "Succeed if the collection already exists with the same dimension")

	collectionsDeleteCmd.Flags().Bool("force", false, "Skip the confirmation prompt")

	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsCreateCmd)
	collectionsCmd.AddCommand(collectionsInfoCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
}
