// cmd/eligibility-checker/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jborgese/benefit-finder-sub003/internal/common/config"
	"github.com/jborgese/benefit-finder-sub003/internal/common/database"
	apperrors "github.com/jborgese/benefit-finder-sub003/internal/common/errors"
	"github.com/jborgese/benefit-finder-sub003/internal/common/logger"
	"github.com/jborgese/benefit-finder-sub003/internal/common/observability"
	"github.com/jborgese/benefit-finder-sub003/internal/common/validation"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/catalog"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/categorize"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/explain"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/orchestrator"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/program"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/refdata"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/ruleeval"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/threshold"
	"github.com/jborgese/benefit-finder-sub003/internal/models"
	"github.com/jborgese/benefit-finder-sub003/internal/storage"
	"github.com/jborgese/benefit-finder-sub003/pkg/rulespec"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	var (
		profilePath = flag.String("profile", "", "path to the applicant profile JSON (required)")
		configPath  = flag.String("config", "", "explicit config file path (defaults to the config search paths)")
		ruleSetDir  = flag.String("rulesets", "", "override the rule set directory")
		profileID   = flag.String("profile-id", "", "profile identifier for persisted results")
		save        = flag.Bool("save", false, "persist results to PostgreSQL")
		pretty      = flag.Bool("pretty", true, "indent the JSON output")
		serve       = flag.Bool("serve", false, "stay alive serving /health and /metrics after the run")
	)
	flag.Parse()

	if *profilePath == "" {
		fmt.Fprintln(os.Stderr, "usage: eligibility-checker -profile <profile.json> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	zapLog := logger.New("info", "console")

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger with the configured level and format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting eligibility checker...")

	obs := observability.New("eligibility-checker")
	defer obs.Shutdown()

	ctx := context.Background()

	profile, err := loadProfile(*profilePath)
	if err != nil {
		zapLog.Fatal("profile load failed", zap.Error(err))
	}
	if *profileID != "" {
		profile.ID = *profileID
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}

	// --- Init PostgreSQL (optional) ---
	var pg *database.PostgresClient
	if cfg.Database.Postgres.Host != "" {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries",
				zap.Error(apperrors.NewDatabaseConnectionFailedError(err)))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Redis (optional, rule set cache) ---
	var rdb *database.RedisClient
	if pg != nil && cfg.Database.Redis.Address != "" {
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries",
				zap.Error(apperrors.NewDatabaseConnectionFailedError(err)))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")
	}

	ruleSets, err := loadRuleSets(ctx, cfg, pg, rdb, *ruleSetDir, log)
	if err != nil {
		zapLog.Fatal("rule set load failed", zap.Error(err))
	}
	if len(ruleSets) == 0 {
		zapLog.Fatal("no enabled rule sets found")
	}

	// --- Build the evaluation pipeline ---
	resolver := threshold.NewResolver(log)
	rules := ruleeval.New(ruleeval.WithMultiplyResolver(resolver))

	var loader refdata.Loader = refdata.NewFileLoader(cfg.Cache.DataDir, log)
	if cfg.Cache.DataURL != "" {
		loader = refdata.NewHTTPLoader(cfg.Cache.DataURL, log)
	}
	cache := refdata.NewCache(loader, log,
		refdata.WithTTL(time.Duration(cfg.Cache.TTLHours)*time.Hour),
		refdata.WithMaxEntries(cfg.Cache.MaxEntries),
	)

	evaluator := program.NewEvaluator(rules, log, program.WithReferenceData(cache))
	categorizer := categorize.NewCategorizer(cfg.Engine.ConfidenceThreshold, buildCatalog(cfg), explain.NewGenerator())

	orch := orchestrator.New(evaluator, categorizer, log,
		orchestrator.WithConcurrency(cfg.Engine.MaxConcurrency),
		orchestrator.WithObservability(obs),
	)

	results, err := orch.Run(ctx, profile, ruleSets)
	if err != nil {
		zapLog.Fatal("evaluation run failed", zap.Error(err))
	}

	if err := printResults(results, *pretty); err != nil {
		zapLog.Fatal("output encoding failed", zap.Error(err))
	}

	if *save {
		if pg == nil {
			zapLog.Fatal("-save requires a configured PostgreSQL database")
		}
		store := storage.NewResultStore(pg.DB, log)
		if err := store.Save(ctx, profile.ID, results); err != nil {
			zapLog.Fatal("result save failed", zap.Error(err))
		}
		zapLog.Info("Results saved", zap.String("profileId", profile.ID), zap.String("runId", results.RunID))
	}

	if !*serve {
		return
	}

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Eligibility checker stopped gracefully")
}

// loadProfile reads and validates a profile document before decoding it
// into the typed model.
func loadProfile(path string) (*models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("profile is not valid JSON: %w", err)
	}

	if result := validation.ValidateProfile(raw); !result.Valid {
		return nil, apperrors.NewProfileInvalidError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	return &profile, nil
}

// loadRuleSets pulls rule sets from PostgreSQL when configured, falling
// back to the rule set directory. Disabled programs are skipped either
// way.
func loadRuleSets(ctx context.Context, cfg *config.Config, pg *database.PostgresClient, rdb *database.RedisClient, dirOverride string, log logger.Logger) ([]*models.RuleSet, error) {
	if pg != nil {
		var redisClient *redis.Client
		if rdb != nil {
			redisClient = rdb.Client
		}
		client := storage.NewRuleSetStore(pg.DB, redisClient, log)

		programs, err := client.ListPrograms(ctx)
		if err != nil {
			return nil, err
		}

		ruleSets := make([]*models.RuleSet, 0, len(programs))
		for _, programID := range programs {
			if !config.IsProgramEnabled(cfg, programID) {
				continue
			}
			ruleSet, err := client.Get(ctx, programID)
			if err != nil {
				return nil, err
			}
			ruleSets = append(ruleSets, ruleSet)
		}
		return ruleSets, nil
	}

	dir := cfg.Engine.RuleSetDir
	if dirOverride != "" {
		dir = dirOverride
	}

	byProgram, err := rulespec.LoadDir(dir)
	if err != nil {
		return nil, err
	}

	programs := make([]string, 0, len(byProgram))
	for programID := range byProgram {
		programs = append(programs, programID)
	}
	// Stable run order regardless of map iteration.
	sort.Strings(programs)

	ruleSets := make([]*models.RuleSet, 0, len(programs))
	for _, programID := range programs {
		if !config.IsProgramEnabled(cfg, programID) {
			continue
		}
		ruleSets = append(ruleSets, byProgram[programID])
	}
	return ruleSets, nil
}

// buildCatalog overlays configured program metadata on the built-in
// catalog entries.
func buildCatalog(cfg *config.Config) *catalog.Catalog {
	cat := catalog.New()
	for programID, pc := range cfg.Programs {
		if pc.Name == "" && pc.Category == "" && pc.Agency == "" &&
			len(pc.RequiredDocuments) == 0 && len(pc.NextSteps) == 0 && pc.EstimatedBenefit == nil {
			continue
		}

		entry := catalog.Entry{
			Info: models.ProgramInfo{
				ID:       programID,
				Name:     pc.Name,
				Category: pc.Category,
				Agency:   pc.Agency,
			},
			RequiredDocuments: pc.RequiredDocuments,
			NextSteps:         pc.NextSteps,
		}
		if pc.EstimatedBenefit != nil {
			entry.EstimatedBenefit = &models.EstimatedBenefit{
				Amount:    pc.EstimatedBenefit.Amount,
				Frequency: pc.EstimatedBenefit.Frequency,
			}
		}
		cat.Register(entry)
	}
	return cat
}

func printResults(results *models.EligibilityResults, pretty bool) error {
	encoder := json.NewEncoder(os.Stdout)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(results)
}
