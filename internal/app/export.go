package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"

	"wallet-credit-scores/internal/storage"
)

// Export writes a persisted run's scores as CSV and/or a score-distribution
// histogram PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	runID := opts.RunID
	if runID == 0 {
		runID, err = store.LatestRunID(ctx)
		if err != nil {
			return err
		}
	}

	scores, err := store.ListRunScores(ctx, runID)
	if err != nil {
		return err
	}
	if len(scores) == 0 {
		a.Logger.Info().Int64("run_id", runID).Msg("run has no scores to export")
		return nil
	}

	a.Logger.Info().Int64("run_id", runID).Int("wallets", len(scores)).Msg("exporting scores")

	if opts.CSVPath != "" {
		if err := writeScoresCSV(opts.CSVPath, scores); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeHistogramPNG(opts.PNGPath, scores, a.Config.Export.BucketSize); err != nil {
			return err
		}
	}

	return nil
}

func writeScoresCSV(path string, scores []storage.WalletScore) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"wallet", "score"}); err != nil {
		return err
	}
	for _, score := range scores {
		if err := writer.Write([]string{score.Wallet, strconv.Itoa(score.Score)}); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeHistogramPNG(path string, scores []storage.WalletScore, bucketSize int) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	buckets := 1000/bucketSize + 1
	counts := make([]int, buckets)
	for _, score := range scores {
		bucket := score.Score / bucketSize
		if bucket < 0 {
			bucket = 0
		}
		if bucket >= buckets {
			bucket = buckets - 1
		}
		counts[bucket]++
	}

	bars := make([]chart.Value, 0, buckets)
	for i, count := range counts {
		bars = append(bars, chart.Value{
			Value: float64(count),
			Label: fmt.Sprintf("%d", i*bucketSize),
		})
	}

	graph := chart.BarChart{
		Title:    "Score distribution",
		Width:    1280,
		Height:   720,
		BarWidth: 1100 / buckets,
		Bars:     bars,
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
