package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/lingo/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lingo",
		Short: "Multi-provider translation and speech gateway",
		Long: `lingo serves a translation and speech-synthesis API over HTTP.

It orchestrates multiple AI providers with timeout-bound fallback,
layered caching, learned correction overrides, and domain terminology
post-processing.

Examples:
  lingo                          # Serve on :8080 with the default database
  lingo --addr :9000             # Serve on another port
  lingo --db-path /var/lib/lingo/lingo.db`,
		Args:    cobra.NoArgs,
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	home, _ := os.UserHomeDir()
	defaultDBPath := filepath.Join(home, ".local", "state", "lingo", "lingo.db")

	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.lingo.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.Addr, "addr", "a", flags.Addr, "HTTP listen address")
	cmd.Flags().StringVar(&flags.DBPath, "db-path", defaultDBPath, "SQLite database path")
	cmd.Flags().DurationVar(&flags.CacheTTL, "cache-ttl", flags.CacheTTL, "Ephemeral cache entry lifetime")
	cmd.Flags().DurationVar(&flags.FastTimeout, "fast-timeout", flags.FastTimeout, "Fast-provider timeout before falling back")
	cmd.Flags().IntVar(&flags.MaxTextLen, "max-text-length", flags.MaxTextLen, "Maximum request text length in characters")
	cmd.Flags().BoolVar(&flags.DisableGemini, "disable-gemini", false, "Disable the Gemini fast provider")
	cmd.Flags().BoolVar(&flags.DisableGoogleTTS, "disable-google-tts", false, "Disable the Google speech backend")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	viper.BindPFlag("server.db_path", cmd.Flags().Lookup("db-path"))
	viper.BindPFlag("cache.ttl", cmd.Flags().Lookup("cache-ttl"))
	viper.BindPFlag("providers.fast_timeout", cmd.Flags().Lookup("fast-timeout"))
	viper.BindPFlag("server.max_text_length", cmd.Flags().Lookup("max-text-length"))
	viper.BindPFlag("providers.disable_gemini", cmd.Flags().Lookup("disable-gemini"))
	viper.BindPFlag("providers.disable_google_tts", cmd.Flags().Lookup("disable-google-tts"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".lingo" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".lingo")
	}

	// Environment variables
	viper.SetEnvPrefix("LINGO")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("providers.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("providers.gemini_key")
}

// GetGoogleTTSKey retrieves the Google Cloud Text-to-Speech API key from
// environment or config
func GetGoogleTTSKey() string {
	if key := os.Getenv("GOOGLE_TTS_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("providers.google_tts_key")
}

// GetFeedbackToken retrieves the shared token that authorizes feedback
// submissions
func GetFeedbackToken() string {
	if token := os.Getenv("LINGO_FEEDBACK_TOKEN"); token != "" {
		return token
	}
	return viper.GetString("auth.feedback_token")
}
