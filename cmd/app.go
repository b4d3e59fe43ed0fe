package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spigell/careerbot/internal/ai"
	"github.com/spigell/careerbot/internal/ai/gemini"
	"github.com/spigell/careerbot/internal/ai/langchain"
	"github.com/spigell/careerbot/internal/careerbot"
	"github.com/spigell/careerbot/internal/kvstore"
	"github.com/spigell/careerbot/internal/logger"
	"github.com/spigell/careerbot/internal/notify"
	"github.com/spigell/careerbot/internal/operation"
	"github.com/spigell/careerbot/internal/secrets"
	"github.com/spigell/careerbot/internal/session"
	"github.com/spigell/careerbot/internal/theme"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"

	routeHome      = "/"
	routeChat      = "/chat"
	routeHistory   = "/history"
	routeAnalysis  = "/analysis"
	routeInterview = "/interview"
)

// application holds the process-wide state shared by all commands.
type application struct {
	config   *Config
	logger   *zap.Logger
	store    kvstore.Store
	session  *session.Manager
	theme    *theme.Preference
	client   *careerbot.Client
	notifier notify.Notifier
	nav      *session.History
	guard    *session.Guard
}

// newApp builds the application. Setup failures are fatal.
func newApp(ctx context.Context) *application {
	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig(viper.GetViper())
	if err != nil {
		lg.Fatal("getting a config", zap.Error(err))
	}

	store, err := kvstore.NewSQLite(config.StorePath)
	if err != nil {
		lg.Fatal("opening the state store", zap.String("path", config.StorePath), zap.Error(err))
	}

	a, err := assemble(ctx, config, store, os.Stdout, lg)
	if err != nil {
		store.Close()
		lg.Fatal("restoring the session", zap.Error(err))
	}

	lg.Debug("careerbot started",
		zap.String("version", version),
		zap.String("api", config.APIURL),
		zap.Bool("authenticated", a.session.IsAuthenticated()),
	)
	return a
}

// assemble wires the components on top of an open store. Notifications are
// written to out.
func assemble(ctx context.Context, config *Config, store kvstore.Store, out io.Writer, lg *zap.Logger) (*application, error) {
	sess, err := session.Restore(ctx, store, lg.Named("session"))
	if err != nil {
		return nil, err
	}

	pref, err := theme.Load(ctx, store, config.Theme.DefaultDark, lg.Named("theme"))
	if err != nil {
		return nil, err
	}

	if current := sess.Current(); current.User != nil {
		lg = logger.WithUser(lg, current.User.ID)
	}

	color := false
	if f, ok := out.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	console := notify.NewConsole(out, pref.IsDark(), color)
	pref.Subscribe(console.SetDark)
	notifier := notify.Multi{console, notify.NewLogger(lg)}

	store.Subscribe(func(c kvstore.Change) {
		lg.Debug("state persisted", zap.String("key", c.Key), zap.Bool("deleted", c.Deleted))
	})

	client := careerbot.New(lg.Named("api"), sess)
	if config.APIURL != "" {
		client.APIURL = strings.TrimRight(config.APIURL, "/")
	}
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	if config.Timeout > 0 {
		client.HTTPClient.Timeout = config.Timeout
	}

	nav := session.NewHistory(routeHome)

	// Losing the session always lands on the login screen.
	sess.Subscribe(func(current session.Session) {
		if !current.IsAuthenticated {
			nav.Replace(session.LoginRoute)
		}
	})

	// Any 401 on an authenticated call ends the session everywhere.
	client.OnUnauthorized = func(ctx context.Context) {
		if !sess.IsAuthenticated() {
			return
		}
		if err := sess.Invalidate(ctx); err != nil {
			lg.Warn("invalidating the session", zap.Error(err))
			return
		}
		notifier.Error(careerbot.DefaultMessage(careerbot.KindUnauthorized))
	}

	return &application{
		config:   config,
		logger:   lg,
		store:    store,
		session:  sess,
		theme:    pref,
		client:   client,
		notifier: notifier,
		nav:      nav,
		guard:    session.NewGuard(sess, nav),
	}, nil
}

func (a *application) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing the state store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// enter runs view behind the login guard.
func (a *application) enter(route string, view func() error) error {
	err := a.guard.Enter(route, view)
	if errors.Is(err, session.ErrLoginRequired) {
		return fmt.Errorf("%w: run `%s login` first", err, app)
	}
	return err
}

// pending returns a subscriber that announces msg whenever an operation
// starts.
func pending[T any](n notify.Notifier, msg string) func(operation.State[T]) {
	return func(s operation.State[T]) {
		if s.IsPending() {
			n.Info(msg)
		}
	}
}

// questionGenerator builds the configured AI provider.
func (a *application) questionGenerator(ctx context.Context) (ai.QuestionGenerator, error) {
	cfg := a.config.AI
	if !cfg.Enabled {
		return nil, errors.New("AI question generation is disabled (ai.enabled)")
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case "", providerGemini:
		key, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: cfg.Gemini.APIKeyFile,
			Env:  "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, err
		}

		opts := gemini.Options{APIKey: key, Model: cfg.Gemini.Model, MaxRetries: cfg.Gemini.MaxRetries}
		if cfg.Gemini.Temperature > 0 {
			t := cfg.Gemini.Temperature
			opts.Temperature = &t
		}

		gen, err := gemini.NewGenerator(ctx, opts, a.logger.Named("gemini"))
		if err != nil {
			return nil, err
		}
		return ai.NewQuestionMaker(gen, providerGemini, a.logger, cfg.Gemini.MaxLogLength), nil

	case providerOpenAI:
		key, err := secrets.Load(secrets.Source{
			Name: "openai api key",
			File: cfg.OpenAI.APIKeyFile,
			Env:  "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, err
		}

		gen, err := langchain.NewGenerator(langchain.Options{
			APIKey:      key,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.OpenAI.Temperature,
		})
		if err != nil {
			return nil, err
		}
		return ai.NewQuestionMaker(gen, providerOpenAI, a.logger, 0), nil

	default:
		return nil, fmt.Errorf("unknown ai provider %q, use %s or %s", cfg.Provider, providerGemini, providerOpenAI)
	}
}
