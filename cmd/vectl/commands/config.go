package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vectl/vectl/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts allow you to manage multiple backend/provider pairings,
similar to kubectl's context management.

Configuration is stored in ~/.vectl/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name.

Example:
  vectl config add-context local --openai-api-key YOUR_KEY
  vectl config add-context cloud --qdrant-url https://xyz.cloud.qdrant.io:6333 \
    --qdrant-api-key QKEY --openai-api-key YOUR_KEY --embedding-dimension 1536`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		ctx := &cli.Context{}
		var err error
		if ctx.QdrantURL, err = cmd.Flags().GetString("qdrant-url"); err != nil {
			return err
		}
		if ctx.QdrantAPIKey, err = cmd.Flags().GetString("qdrant-api-key"); err != nil {
			return err
		}
		if ctx.OpenAIAPIKey, err = cmd.Flags().GetString("openai-api-key"); err != nil {
			return err
		}
		if ctx.OpenAIBaseURL, err = cmd.Flags().GetString("openai-base-url"); err != nil {
			return err
		}
		if ctx.EmbeddingModel, err = cmd.Flags().GetString("embedding-model"); err != nil {
			return err
		}
		if ctx.EmbeddingDimension, err = cmd.Flags().GetInt("embedding-dimension"); err != nil {
			return err
		}
		if ctx.BatchSize, err = cmd.Flags().GetInt("batch-size"); err != nil {
			return err
		}
		if ctx.Timeout, err = cmd.Flags().GetInt("timeout"); err != nil {
			return err
		}
		if ctx.MaxRetries, err = cmd.Flags().GetInt("max-retries"); err != nil {
			return err
		}

		cfg := getConfig()
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q added successfully", name)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <context> <key> <value>",
	Short: "Set a single field on a context",
	Long: `Set one configuration field on an existing context.

Keys: qdrant_url, qdrant_api_key, openai_api_key, openai_base_url,
embedding_model, embedding_dimension, batch_size, timeout, max_retries

Example:
  vectl config set local embedding_model text-embedding-3-large
  vectl config set local embedding_dimension 3072`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, key, value := args[0], args[1], args[2]

		cfg := getConfig()
		ctx, err := cfg.GetContext(name)
		if err != nil {
			return err
		}

		switch key {
		case "qdrant_url":
			ctx.QdrantURL = value
		case "qdrant_api_key":
			ctx.QdrantAPIKey = value
		case "openai_api_key":
			ctx.OpenAIAPIKey = value
		case "openai_base_url":
			ctx.OpenAIBaseURL = value
		case "embedding_model":
			ctx.EmbeddingModel = value
		case "embedding_dimension", "batch_size", "timeout", "max_retries":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s must be an integer: %w", key, err)
			}
			switch key {
			case "embedding_dimension":
				ctx.EmbeddingDimension = n
			case "batch_size":
				ctx.BatchSize = n
			case "timeout":
				ctx.Timeout = n
			case "max_retries":
				ctx.MaxRetries = n
			}
		default:
			ctx.SetExtra(key, value)
		}

		if err := cfg.Save(); err != nil {
			return err
		}

		cli.PrintSuccess("Set %s on context %q", key, name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg := getConfig()
		if err := cfg.DeleteContext(name); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q deleted", name)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg := getConfig()
		if err := cfg.UseContext(name); err != nil {
			return err
		}

		cli.PrintSuccess("Switched to context %q", name)
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:     "get-context",
	Aliases: []string{"current"},
	Short:   "Display the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		if cfg.CurrentContext == "" {
			fmt.Println("No current context set")
			return nil
		}

		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"list"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		if len(cfg.Contexts) == 0 {
			fmt.Println("No contexts configured")
			return nil
		}

		tbl := cli.NewTable("CURRENT", "NAME", "QDRANT_URL", "MODEL")
		for name, ctx := range cfg.Contexts {
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			url := ctx.QdrantURL
			if url == "" {
				url = "(default)"
			}
			tbl.AddRow(current, name, url, ctx.EmbeddingModel)
		}
		fmt.Print(tbl.Render())
		return nil
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		fmt.Printf("Config file: %s\n", cfg.Path())
		fmt.Printf("Current context: %s\n", cfg.CurrentContext)
		fmt.Printf("Contexts: %d\n", len(cfg.Contexts))

		if len(cfg.Contexts) > 0 {
			fmt.Println("\nContext details:")
			for name, ctx := range cfg.Contexts {
				fmt.Printf("\n  %s:\n", name)
				if ctx.QdrantURL != "" {
					fmt.Printf("    Qdrant URL: %s\n", ctx.QdrantURL)
				}
				if ctx.QdrantAPIKey != "" {
					fmt.Printf("    Qdrant API Key: %s\n", cli.MaskAPIKey(ctx.QdrantAPIKey))
				}
				fmt.Printf("    OpenAI API Key: %s\n", cli.MaskAPIKey(ctx.OpenAIAPIKey))
				if ctx.OpenAIBaseURL != "" {
					fmt.Printf("    OpenAI Base URL: %s\n", ctx.OpenAIBaseURL)
				}
				if ctx.EmbeddingModel != "" {
					fmt.Printf("    Embedding Model: %s\n", ctx.EmbeddingModel)
				}
				if ctx.EmbeddingDimension > 0 {
					fmt.Printf("    Embedding Dimension: %d\n", ctx.EmbeddingDimension)
				}
				if ctx.BatchSize > 0 {
					fmt.Printf("    Batch Size: %d\n", ctx.BatchSize)
				}
				if ctx.Timeout > 0 {
					fmt.Printf("    Timeout: %ds\n", ctx.Timeout)
				}
				if ctx.MaxRetries > 0 {
					fmt.Printf("    Max Retries: %d\n", ctx.MaxRetries)
				}
			}
		}

		return nil
	},
}

func init() {
	// add-context flags
	configAddContextCmd.Flags().String("qdrant-url", "", "Qdrant server URL")
	configAddContextCmd.Flags().String("qdrant-api-key", "", "Qdrant API key")
	configAddContextCmd.Flags().String("openai-api-key", "", "OpenAI API key")
	configAddContextCmd.Flags().String("openai-base-url", "", "OpenAI-compatible base URL")
	configAddContextCmd.Flags().String("embedding-model", "", "Embedding model name")
	configAddContextCmd.Flags().Int("embedding-dimension", 0, "Embedding vector dimension")
	configAddContextCmd.Flags().Int("batch-size", 0, "Documents per ingestion batch")
	configAddContextCmd.Flags().Int("timeout", 0, "Per-call timeout in seconds")
	configAddContextCmd.Flags().Int("max-retries", 0, "Maximum retries")

	// Add subcommands
	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configViewCmd)
}
