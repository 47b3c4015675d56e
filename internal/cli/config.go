package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Modelscout configuration",
	Long: `Manage Modelscout configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (MODELSCOUT_*)
3. Config file (~/.modelscout/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Println(string(yamlData))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.modelscout/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("find home directory: %w", err)
		}

		configDir := home + "/.modelscout"
		configPath := configDir + "/config.yaml"

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'modelscout config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("create config file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close config file: %w", closeErr)
			}
		}()

		if _, err := f.WriteString(defaultConfigYAML); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		fmt.Fprintf(os.Stderr, "Created %s\n", configPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

const defaultConfigYAML = `# Modelscout configuration
# Environment variables (MODELSCOUT_*) override these values.

search:
  # Google Custom Search credentials; also read from GOOGLE_API_KEY
  # and GOOGLE_CSE_ID when empty here.
  google_api_key: ""
  google_engine_id: ""
  # YouTube Data API key; also read from YOUTUBE_API_KEY.
  youtube_api_key: ""
  max_results: 10
  max_threads: 3

http:
  timeout: 15s
  user_agent: "Modelscout/0.1 (+https://github.com/nleskov/modelscout)"
  max_body_bytes: 2000000

pipeline:
  deadline: 30s
  strategy_timeout: 12s
  max_description_len: 280

scoring:
  mention_weight: 1.0
  popularity_weight: 0.5
  sentiment_weight: 2.0
  attribute_bonus: 0.25
  sentiment_threshold: -0.2

llm:
  # openai, anthropic, ollama, or empty to disable
  provider: ""
  model: ""
  timeout: 20
  max_tokens: 300

cache:
  enabled: true
  # Set a directory to persist cached pages across runs
  dir: ""
  ttl: 15m

rate_limit:
  requests_per_second: 2
  burst: 4

server:
  port: 5001

logging:
  level: info
  development: false
`
