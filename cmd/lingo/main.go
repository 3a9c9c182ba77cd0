package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeberg.org/snonux/lingo/internal/cache"
	"codeberg.org/snonux/lingo/internal/cli"
	"codeberg.org/snonux/lingo/internal/feedback"
	"codeberg.org/snonux/lingo/internal/gateway"
	"codeberg.org/snonux/lingo/internal/httpapi"
	"codeberg.org/snonux/lingo/internal/speech"
	"codeberg.org/snonux/lingo/internal/store"
	"codeberg.org/snonux/lingo/internal/translation"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	godotenv.Load()

	flags := cli.NewFlags()
	rootCmd := cli.CreateRootCommand(flags)

	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context(), flags)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(ctx context.Context, flags *cli.Flags) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(flags.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	db, err := store.Open(flags.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	svc, err := buildService(ctx, flags, log, db)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         flags.Addr,
		Handler:      httpapi.NewServer(log, svc).Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", flags.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// buildService wires the provider adapters and the orchestrator from the
// configured credentials. Missing optional credentials disable the matching
// provider instead of failing startup.
func buildService(ctx context.Context, flags *cli.Flags, log *zap.SugaredLogger, db *store.Store) (*gateway.Service, error) {
	openAIKey := cli.GetOpenAIKey()
	if openAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	deep, err := translation.NewOpenAITranslator(openAIKey, log)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI translator: %w", err)
	}

	var fast translation.Provider
	if key := cli.GetGeminiKey(); key != "" && !flags.DisableGemini {
		gemini, err := translation.NewGeminiTranslator(ctx, key, log)
		if err != nil {
			log.Warnw("Gemini unavailable, continuing without fast provider", "error", err)
		} else {
			fast = gemini
		}
	}

	var googleTTS speech.Synthesizer
	if key := cli.GetGoogleTTSKey(); key != "" && !flags.DisableGoogleTTS {
		googleTTS = speech.NewGoogleSynthesizer(key, log)
	}
	openAITTS := speech.NewOpenAISynthesizer(openAIKey, log)

	cfg := gateway.DefaultConfig()
	cfg.MaxTextLength = flags.MaxTextLen
	cfg.FastTimeout = flags.FastTimeout

	var verifier gateway.TokenVerifier
	if token := cli.GetFeedbackToken(); token != "" {
		verifier = &sharedTokenVerifier{token: token}
	}

	return gateway.New(cfg, gateway.Deps{
		Log:           log,
		Deep:          deep,
		Fast:          fast,
		GoogleTTS:     googleTTS,
		OpenAITTS:     openAITTS,
		Ephemeral:     cache.New(flags.CacheTTL),
		Public:        db,
		Feedback:      feedback.NewResolver(db),
		FeedbackStore: db,
		Keys:          db,
		Usage:         db,
		Verifier:      verifier,
	}), nil
}

// sharedTokenVerifier accepts one deployment-wide token. Per-user identity
// providers can replace it without touching the gateway.
type sharedTokenVerifier struct {
	token string
}

func (v *sharedTokenVerifier) Verify(ctx context.Context, token string) (*gateway.Identity, error) {
	if token == "" || token != v.token {
		return nil, fmt.Errorf("invalid token")
	}
	return &gateway.Identity{UserID: "shared"}, nil
}
