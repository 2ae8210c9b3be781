package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/rubrix/internal/auth"
	"github.com/abhisek/rubrix/internal/config"
	"github.com/abhisek/rubrix/internal/knowledge"
	"github.com/abhisek/rubrix/internal/llm"
	"github.com/abhisek/rubrix/internal/logger"
	"github.com/abhisek/rubrix/internal/quizgen"
	"github.com/abhisek/rubrix/internal/store"
	"github.com/abhisek/rubrix/internal/workspace"
)

// env holds the resolved configuration and the resources a command opens
// from it. Resources are opened on first use and released by close.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
	kb    *knowledge.Store
}

func newEnv(cmd *cobra.Command) (*env, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{File: file, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	if cfg.File != "" {
		log.Debug("config loaded", zap.String("file", cfg.File))
	}
	return &env{cfg: cfg, log: log}, nil
}

func (e *env) close() {
	if e.store != nil {
		e.store.Close()
	}
	_ = e.log.Sync()
}

// openStore opens the database named by db.path, or the default XDG path.
func (e *env) openStore() (*store.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	path := e.cfg.DB.Path
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		path = p
	} else if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	e.log.Debug("database opened", zap.String("path", path))
	e.store = s
	return s, nil
}

func (e *env) knowledge(ctx context.Context) (*knowledge.Store, error) {
	if e.kb != nil {
		return e.kb, nil
	}
	kb, err := knowledge.Load(ctx, knowledge.Options{Dir: e.cfg.Knowledge.Dir, Logger: e.log})
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}
	e.kb = kb
	return kb, nil
}

// subject loads the knowledge base and checks that it has name.
func (e *env) subject(ctx context.Context, name string) (*knowledge.Store, error) {
	kb, err := e.knowledge(ctx)
	if err != nil {
		return nil, err
	}
	if !kb.HasSubject(name) {
		return nil, fmt.Errorf("%w: %q (see `rubrix subjects`)", knowledge.ErrUnknownSubject, name)
	}
	return kb, nil
}

// llmConfig resolves the provider configuration. A Bedrock provider
// without a configured token uses the one cached by `rubrix auth login`.
func (e *env) llmConfig(ctx context.Context) (llm.Config, error) {
	cfg := e.cfg.LLMConfig()
	if cfg.Provider == llm.ProviderBedrock && cfg.Bedrock.APIKey == "" {
		s, err := e.openStore()
		if err != nil {
			return cfg, err
		}
		cred, err := s.CredentialRepo().LoadCredential(ctx, auth.CredentialName)
		if err != nil {
			return cfg, fmt.Errorf("load cached credential: %w", err)
		}
		if cred != nil {
			cfg.Bedrock.APIKey = cred.Secret
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (e *env) provider(ctx context.Context) (llm.Provider, llm.Config, error) {
	cfg, err := e.llmConfig(ctx)
	if err != nil {
		return nil, cfg, err
	}
	s, err := e.openStore()
	if err != nil {
		return nil, cfg, err
	}
	p, err := llm.NewProvider(ctx, cfg, s.EventRepo(), e.log)
	if err != nil {
		return nil, cfg, err
	}
	return p, cfg, nil
}

func (e *env) generatorConfig() quizgen.Config {
	cfg := quizgen.DefaultConfig()
	g := e.cfg.Generation
	if g.MaxExamples > 0 {
		cfg.MaxExamples = g.MaxExamples
	}
	if g.MaxTokens > 0 {
		cfg.MaxTokens = g.MaxTokens
	}
	if g.Temperature > 0 {
		cfg.Temperature = g.Temperature
	}
	return cfg
}

// generator builds a Generator backed by the configured provider. The
// returned context carries the provider timeout; call cancel when done.
func (e *env) generator(ctx context.Context) (*quizgen.Generator, context.Context, context.CancelFunc, error) {
	kb, err := e.knowledge(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	p, cfg, err := e.provider(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	var cancel context.CancelFunc
	if cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	return quizgen.New(p, kb, e.generatorConfig(), e.log), ctx, cancel, nil
}

// workspace restores the working question set saved by earlier commands.
// gen may be nil for commands that never call the model.
func (e *env) workspace(ctx context.Context, gen workspace.Generator) (*workspace.Workspace, error) {
	s, err := e.openStore()
	if err != nil {
		return nil, err
	}
	repo := s.QuestionSetRepo()
	qs, err := repo.LatestQuestionSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("load question set: %w", err)
	}
	ws := workspace.New(gen, repo, e.log)
	ws.Load(qs)
	return ws, nil
}

// withEnv adapts a command body that needs an env.
func withEnv(run func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()
		return run(cmd, args, e)
	}
}
