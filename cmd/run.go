package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizdeck/internal/analysis"
	"github.com/abhisek/quizdeck/internal/app"
	"github.com/abhisek/quizdeck/internal/bank"
	"github.com/abhisek/quizdeck/internal/cache"
	"github.com/abhisek/quizdeck/internal/config"
	"github.com/abhisek/quizdeck/internal/curriculum"
	"github.com/abhisek/quizdeck/internal/llm"
	"github.com/abhisek/quizdeck/internal/logger"
	"github.com/abhisek/quizdeck/internal/questiongen"
	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/store"
)

// env holds the collaborators a command runs with.
type env struct {
	cfg   *config.Config
	store *store.Store
	tree  *curriculum.Tree

	// provider is nil when no LLM is configured.
	provider     llm.Provider
	providerName string
}

type envOptions struct {
	// logToFile keeps log output off the terminal. Used by the TUI.
	logToFile bool

	// llm builds the provider chain.
	llm bool
}

// newEnv loads configuration, initializes logging and opens the store.
func newEnv(cmd *cobra.Command, opts envOptions) (*env, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	dbPath, err := resolveDBPath(cmd, cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	logCfg := cfg.Logger()
	if opts.logToFile && logCfg.File == "" {
		logCfg.File = filepath.Join(filepath.Dir(dbPath), "quizdeck.log")
	}
	if err := logger.Initialize(logCfg); err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	tree := curriculum.Default()
	if cfg.Curriculum.Path != "" {
		tree, err = curriculum.LoadFile(cfg.Curriculum.Path)
		if err != nil {
			return nil, fmt.Errorf("load curriculum: %w", err)
		}
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	e := &env{cfg: cfg, store: st, tree: tree}
	if opts.llm {
		e.connect(commandContext(cmd))
	}
	return e, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// connect builds the provider chain. A missing or broken provider leaves
// generation unavailable rather than failing the command.
func (e *env) connect(ctx context.Context) {
	log := logger.Get()

	var c cache.Cache
	if e.cfg.Cache.Enabled {
		c = e.newCache(ctx)
	}

	lcfg := e.cfg.LLMProvider()
	provider, err := llm.NewProvider(ctx, lcfg, llm.Options{
		EventRepo: e.store.EventRepo(),
		Cache:     c,
		CacheTTL:  e.cfg.Cache.TTL,
	})
	if err != nil {
		log.Warn("LLM provider unavailable", zap.String("provider", lcfg.Provider), zap.Error(err))
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Question generation will be unavailable.")
		return
	}
	e.provider = provider
	e.providerName = lcfg.Provider + "/" + provider.ModelID()
}

func (e *env) newCache(ctx context.Context) cache.Cache {
	if e.cfg.Cache.Backend != "redis" {
		return cache.NewMemoryCache()
	}
	rc, err := cache.NewRedisCache(ctx, e.cfg.Redis())
	if err != nil {
		logger.Get().Warn("redis cache unavailable, using in-memory cache", zap.Error(err))
		return cache.NewMemoryCache()
	}
	return rc
}

// generator returns the question generator, or nil without a provider.
func (e *env) generator() questiongen.Generator {
	if e.provider == nil {
		return nil
	}
	return questiongen.New(e.provider, e.cfg.QuestionGen())
}

func (e *env) analyzer() analysis.Analyzer {
	if e.cfg.Analysis.UseLLM && e.provider != nil {
		cfg := analysis.DefaultConfig()
		cfg.Threshold = e.cfg.Analysis.Threshold
		return analysis.NewLLMAnalyzer(e.provider, e.tree, cfg)
	}
	return analysis.RuleAnalyzer{Threshold: e.cfg.Analysis.Threshold}
}

func (e *env) history() store.HistoryRepo {
	return e.store.HistoryRepo(e.cfg.History.MaxItems)
}

func (e *env) close() {
	_ = e.store.Close()
	_ = logger.Sync()
}

// bankPaths returns the paths given on the command line, else the
// configured banks.
func (e *env) bankPaths(flagPaths []string) []string {
	if len(flagPaths) > 0 {
		return flagPaths
	}
	return e.cfg.Assessment.Banks
}

// examples loads bank questions as style examples. Unreadable banks are
// logged and skipped.
func (e *env) examples(paths []string) []quiz.Question {
	if len(paths) == 0 {
		return nil
	}
	res, err := bank.NewLoader(e.tree).LoadFiles(paths)
	if err != nil {
		logger.Get().Warn("style examples unavailable", zap.Strings("banks", paths), zap.Error(err))
		return nil
	}
	return res.Questions
}

// services builds the collaborators of the TUI screens.
func (e *env) services(bankPaths []string) *screen.Services {
	counts := make(map[quiz.Mode]int)
	for _, m := range quiz.AllModes() {
		counts[m] = e.cfg.QuestionCount(m)
	}
	return &screen.Services{
		Tree:          e.tree,
		Generator:     e.generator(),
		ProviderName:  e.providerName,
		History:       e.history(),
		Analyzer:      e.analyzer(),
		BankPaths:     bankPaths,
		Distribution:  e.cfg.Distribution(),
		Strict:        e.cfg.Assessment.Strict,
		Examples:      e.examples(bankPaths),
		Counts:        counts,
		WeakThreshold: e.cfg.Analysis.Threshold,
	}
}

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command, banks []string) error {
	e, err := newEnv(cmd, envOptions{logToFile: true, llm: true})
	if err != nil {
		return err
	}
	defer e.close()

	return app.Run(e.services(e.bankPaths(banks)))
}
