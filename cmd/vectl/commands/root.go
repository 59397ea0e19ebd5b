package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vectl/vectl/pkg/agent"
	"github.com/vectl/vectl/pkg/cli"
	"github.com/vectl/vectl/pkg/embed"
	"github.com/vectl/vectl/pkg/qdrant"
)

var (
	// Global flags
	cfgFile     string
	contextName string
	outputFile  string
	inputFile   string
	outputJSON  bool
	verbose     bool

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vectl",
	Short: "Vector database CLI tool",
	Long: `vectl - A command line interface for a Qdrant vector database.

This tool manages collections, ingests documents (computing embeddings
via the OpenAI API), and answers free-text semantic queries:
  - Collection management (list, create, info, delete)
  - Document ingestion from JSON, JSON Lines, and plain-text sources
  - Semantic query with payload filters

Configuration is stored in ~/.vectl/config.yaml and supports multiple
contexts, similar to kubectl's context management. Settings not present
in the context fall back to the environment (QDRANT_URL, QDRANT_API_KEY,
OPENAI_API_KEY, OPENAI_BASE_URL, EMBEDDING_MODEL, EMBEDDING_DIMENSION,
BATCH_SIZE).

Examples:
  # Set up a new context
  vectl config add-context local --qdrant-url http://localhost:6333 --openai-api-key YOUR_KEY

  # Create a collection and ingest documents
  vectl collections create articles --dimension 1536
  vectl add articles -f articles.json

  # Query and pipe the result to another command
  vectl query articles -t "vector similarity search" -k 3 --json | jq '.[0]'
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "", "", "config file (default is ~/.vectl/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "input file (documents or request, YAML or JSON)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(runCmd)
}

func initConfig() {
	// Configure slog based on verbose flag
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	globalConfig, err = cli.LoadConfigWithPath(cfgFile)
	if err != nil {
		// Log but don't exit — settings can still come from the
		// environment, and commands like 'vectl version' need no config.
		fmt.Fprintf(os.Stderr, "Warning: config: %v\n", err)
	}
}

// getConfig returns the global configuration
func getConfig() *cli.Config {
	return globalConfig
}

// settings are the resolved connection parameters for one invocation.
// A context provides the base; the environment fills anything the
// context leaves empty.
type settings struct {
	QdrantURL    string
	QdrantAPIKey string

	OpenAIAPIKey  string
	OpenAIBaseURL string

	EmbeddingModel     string
	EmbeddingDimension int

	BatchSize  int
	Timeout    int // seconds
	MaxRetries int
}

// resolveSettings merges the selected context with environment
// fallbacks. A missing context is not an error: a pure-env setup (CI,
// containers) is supported.
func resolveSettings() *settings {
	s := &settings{}

	if cfg := getConfig(); cfg != nil {
		if ctx, err := cfg.ResolveContext(contextName); err == nil {
			s.QdrantURL = ctx.QdrantURL
			s.QdrantAPIKey = ctx.QdrantAPIKey
			s.OpenAIAPIKey = ctx.OpenAIAPIKey
			s.OpenAIBaseURL = ctx.OpenAIBaseURL
			s.EmbeddingModel = ctx.EmbeddingModel
			s.EmbeddingDimension = ctx.EmbeddingDimension
			s.BatchSize = ctx.BatchSize
			s.Timeout = ctx.Timeout
			s.MaxRetries = ctx.MaxRetries
		} else if contextName != "" {
			// An explicitly named context that does not exist should be
			// loud, not silently replaced by env vars.
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	applyEnv(s)
	return s
}

// applyEnv fills empty settings from the environment.
func applyEnv(s *settings) {
	setIfEmpty(&s.QdrantURL, "QDRANT_URL")
	setIfEmpty(&s.QdrantAPIKey, "QDRANT_API_KEY")
	setIfEmpty(&s.OpenAIAPIKey, "OPENAI_API_KEY")
	setIfEmpty(&s.OpenAIBaseURL, "OPENAI_BASE_URL")
	setIfEmpty(&s.EmbeddingModel, "EMBEDDING_MODEL")
	setIntIfZero(&s.EmbeddingDimension, "EMBEDDING_DIMENSION")
	setIntIfZero(&s.BatchSize, "BATCH_SIZE")
}

func setIfEmpty(dst *string, env string) {
	if *dst == "" {
		*dst = os.Getenv(env)
	}
}

func setIntIfZero(dst *int, env string) {
	if *dst != 0 {
		return
	}
	v := os.Getenv(env)
	if v == "" {
		return
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
		*dst = n
	} else {
		fmt.Fprintf(os.Stderr, "Warning: %s=%q is not an integer, ignored\n", env, v)
	}
}

// buildAgent constructs the agent from the resolved settings.
func buildAgent() (*agent.Agent, error) {
	s := resolveSettings()

	if s.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("no OpenAI API key: set OPENAI_API_KEY or configure a context with --openai-api-key")
	}

	var storeOpts []qdrant.Option
	if s.QdrantAPIKey != "" {
		storeOpts = append(storeOpts, qdrant.WithAPIKey(s.QdrantAPIKey))
	}
	if s.Timeout > 0 {
		storeOpts = append(storeOpts, qdrant.WithTimeout(time.Duration(s.Timeout)*time.Second))
	}
	store := qdrant.NewClient(s.QdrantURL, storeOpts...)

	var embedOpts []embed.Option
	if s.EmbeddingModel != "" {
		embedOpts = append(embedOpts, embed.WithModel(s.EmbeddingModel))
	}
	if s.EmbeddingDimension > 0 {
		embedOpts = append(embedOpts, embed.WithDimension(s.EmbeddingDimension))
	}
	if s.OpenAIBaseURL != "" {
		embedOpts = append(embedOpts, embed.WithBaseURL(s.OpenAIBaseURL))
	}
	embedder := embed.NewOpenAI(s.OpenAIAPIKey, embedOpts...)

	cfg := agent.Config{
		EmbeddingDimension: s.EmbeddingDimension,
		BatchSize:          s.BatchSize,
		MaxRetries:         s.MaxRetries,
	}
	if s.Timeout > 0 {
		cfg.CallTimeout = time.Duration(s.Timeout) * time.Second
	}

	slog.Debug("agent configured",
		"qdrant_url", store.BaseURL(),
		"model", embedder.Model(),
		"dimension", embedder.Dimension())

	return agent.New(store, embedder, cfg)
}

// getInputFile returns the input file path
func getInputFile() string {
	return inputFile
}

// getOutputFile returns the output file path
func getOutputFile() string {
	return outputFile
}

// isJSONOutput returns whether output should be JSON
func isJSONOutput() bool {
	return outputJSON
}

// isVerbose returns whether verbose mode is enabled
func isVerbose() bool {
	return verbose
}

// outputResult outputs the result using cli package
func outputResult(result any) error {
	format := cli.FormatYAML
	if outputJSON {
		format = cli.FormatJSON
	}
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		File:   outputFile,
	})
}
