package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wallet-credit-scores/internal/alerting"
	"wallet-credit-scores/internal/artifacts"
	"wallet-credit-scores/internal/features"
	"wallet-credit-scores/internal/ingest"
	"wallet-credit-scores/internal/scoring"
	"wallet-credit-scores/internal/storage"
)

// Score runs the full pipeline: load batch, normalize, aggregate, align to
// the trained schema, score, and deliver the results.
func (a *App) Score(ctx context.Context, opts ScoreOptions) error {
	if opts.InputPath == "" {
		return errors.New("--input is required")
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = a.Config.Scoring.OutputPath
	}
	modelsDir := opts.ModelsDir
	if modelsDir == "" {
		modelsDir = a.Config.Artifacts.Dir
	}

	records, err := ingest.ReadFile(opts.InputPath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.Logger.Info().Str("input", opts.InputPath).Msg("input batch is empty, no scores to generate")
		return writeScores(outputPath, map[string]int{})
	}

	normalizer := ingest.NewNormalizer(a.Logger)
	txs, err := normalizer.Normalize(records)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		a.Logger.Warn().Msg("no usable transactions after normalization")
		return writeScores(outputPath, map[string]int{})
	}

	bundle, err := artifacts.LoadBundle(artifacts.NewFileStore(modelsDir))
	if err != nil {
		return err
	}

	vectors := features.Aggregate(txs)

	matrix, err := scoring.NewAligner(a.Logger).Align(vectors, bundle.FeatureColumns)
	if err != nil {
		return err
	}

	scores, err := scoring.NewPipeline(bundle, a.Logger).Score(matrix)
	if err != nil {
		return err
	}

	if err := writeScores(outputPath, scores); err != nil {
		return err
	}

	summary := summarize(scores, a.Config.Alerting.LowScore)
	a.Logger.Info().
		Int("transactions", len(txs)).
		Int("wallets", summary.wallets).
		Float64("mean_score", summary.mean).
		Int("neutral", summary.neutral).
		Str("output", outputPath).
		Msg("scoring run complete")

	if opts.DryRun {
		a.Logger.Info().Msg("dry-run: skipping persistence and alerting")
		return nil
	}

	a.persistRun(ctx, opts.InputPath, scores, summary)
	a.maybeNotify(ctx, opts.InputPath, summary)
	return nil
}

type runSummary struct {
	wallets  int
	mean     float64
	neutral  int
	lowCount int
}

func summarize(scores map[string]int, lowScore int) runSummary {
	summary := runSummary{wallets: len(scores)}
	if len(scores) == 0 {
		return summary
	}

	total := 0
	for _, score := range scores {
		total += score
		if score == scoring.NeutralScore {
			summary.neutral++
		}
		if score < lowScore {
			summary.lowCount++
		}
	}
	summary.mean = float64(total) / float64(len(scores))
	return summary
}

// persistRun records the run in Postgres when configured. Persistence
// failures are logged but never fail a completed scoring run.
func (a *App) persistRun(ctx context.Context, source string, scores map[string]int, summary runSummary) {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to open score store")
		return
	}
	if store == nil {
		a.Logger.Debug().Msg("database.dsn not configured; persistence disabled")
		return
	}
	if closeStore != nil {
		defer closeStore()
	}

	walletScores := make([]storage.WalletScore, 0, len(scores))
	for wallet, score := range scores {
		walletScores = append(walletScores, storage.WalletScore{Wallet: wallet, Score: score})
	}

	run := storage.ScoreRun{
		Source:       filepath.Base(source),
		WalletCount:  summary.wallets,
		NeutralCount: summary.neutral,
		MeanScore:    summary.mean,
	}
	persisted, err := store.InsertRun(ctx, run, walletScores)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to persist score run")
		return
	}
	a.Logger.Info().Int64("run_id", persisted.ID).Msg("score run persisted")
}

// maybeNotify sends a run summary when the low-score share breaches the
// configured threshold.
func (a *App) maybeNotify(ctx context.Context, source string, summary runSummary) {
	if !a.Config.Alerting.Enabled || summary.wallets == 0 {
		return
	}
	notifier := a.newNotifier()
	if notifier == nil {
		return
	}

	share := float64(summary.lowCount) / float64(summary.wallets)
	if share < a.Config.Alerting.MinShare {
		return
	}

	note := alerting.Notification{
		Source:       filepath.Base(source),
		ScoredAt:     time.Now().UTC(),
		WalletCount:  summary.wallets,
		MeanScore:    summary.mean,
		NeutralCount: summary.neutral,
		LowScore:     a.Config.Alerting.LowScore,
		LowCount:     summary.lowCount,
		LowSharePct:  share * 100,
	}
	if err := notifier.Notify(ctx, note); err != nil {
		a.Logger.Error().Err(err).Msg("failed to dispatch run summary")
	}
}

func writeScores(path string, scores map[string]int) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(scores, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write scores: %w", err)
	}
	return nil
}
