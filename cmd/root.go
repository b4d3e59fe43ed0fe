package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/careerbot/internal/careerbot"
)

const (
	app       = "careerbot"
	envPrefix = "CAREERBOT"
)

type Config struct {
	APIURL    string        `mapstructure:"api-url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user-agent"`
	StorePath string        `mapstructure:"store-path"`
	Theme     *ThemeConfig  `mapstructure:"theme"`
	Chat      *ChatConfig   `mapstructure:"chat"`
	AI        *AIConfig     `mapstructure:"ai"`
}

type ThemeConfig struct {
	DefaultDark bool `mapstructure:"default-dark"`
}

type ChatConfig struct {
	// Temperature is forwarded to the backend when set.
	Temperature *float64 `mapstructure:"temperature"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
	OpenAI   *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKeyFile   string  `mapstructure:"api-key-file"`
	Model        string  `mapstructure:"model"`
	Temperature  float32 `mapstructure:"temperature"`
	MaxRetries   int     `mapstructure:"max-retries"`
	MaxLogLength int     `mapstructure:"max-log-length"`
}

type OpenAIConfig struct {
	APIKeyFile  string  `mapstructure:"api-key-file"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "careerbot is a terminal client for the AI career assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// reportedError wraps an error the user has already been notified about.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func silent(err error) error { return reportedError{err: err} }

// Execute executes the root command. Ctrl+C cancels in-flight requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	var reported reportedError
	if err != nil && !errors.As(err, &reported) && !errors.Is(err, errAborted) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is careerbot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("api-url", careerbot.DefaultAPIURL, "base URL of the careerbot backend")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api-url", careerbot.DefaultAPIURL)
	v.SetDefault("timeout", careerbot.DefaultTimeout)
	v.SetDefault("user-agent", careerbot.DefaultUserAgent)
	v.SetDefault("store-path", defaultStorePath())
	v.SetDefault("theme.default-dark", false)
	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.provider", providerGemini)
	v.SetDefault("ai.gemini.max-retries", 1)
}

func initConfig() {
	// A missing .env is fine, a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional, a broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}
	if config.Theme == nil {
		config.Theme = &ThemeConfig{}
	}
	if config.Chat == nil {
		config.Chat = &ChatConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.AI.OpenAI == nil {
		config.AI.OpenAI = &OpenAIConfig{}
	}

	return config, nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return app + ".db"
	}
	return filepath.Join(home, "."+app, "state.db")
}
