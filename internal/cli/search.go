package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nleskov/modelscout/internal/pipeline"
)

var (
	searchAttrs    []string
	searchTimeout  time.Duration
	noCache        bool
	llmProvider    string
	llmModel       string
	searchHTTPUA   string
	httpProxy      string
	httpsProxy     string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <product>",
	Short: "Find recommended product models for a category",
	Long: `Search configured sources for model recommendations.

The product argument is a category ("vacuum cleaner", "graphics card");
attributes narrow the search without being mandatory filters.

Example:
  modelscout search "vacuum cleaner"
  modelscout search "vacuum cleaner" --attr cordless --attr cheap
  modelscout search laptop --llm openai --timeout 45s`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringArrayVar(&searchAttrs, "attr", nil, "desired attribute (repeatable)")
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 30*time.Second, "overall query deadline")
	searchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetches)")
	searchCmd.Flags().StringVar(&llmProvider, "llm", "", "LLM provider for extraction/sentiment (openai, anthropic, ollama)")
	searchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	searchCmd.Flags().StringVar(&searchHTTPUA, "ua", "", "HTTP User-Agent override")
	searchCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	searchCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cfg.Pipeline.Deadline = searchTimeout
	cfg.Cache.Enabled = cfg.Cache.Enabled && !noCache
	if searchHTTPUA != "" {
		cfg.HTTP.UserAgent = searchHTTPUA
	}
	if httpProxy != "" {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}
	}
	if err := resolveLLMKey(cfg); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	product := strings.Join(args, " ")
	result, err := p.HandleQuery(cmd.Context(), product, searchAttrs)
	if err != nil {
		return err
	}

	if len(result) == 0 {
		fmt.Fprintln(os.Stderr, "No recommendations found.")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
