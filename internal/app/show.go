package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// Show prints recent persisted score runs.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show runs")
	}
	if closeStore != nil {
		defer closeStore()
	}

	runs, err := store.ListRecentRuns(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "no score runs found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tCreated (UTC)\tSource\tWallets\tMean\tNeutral")

	for _, run := range runs {
		fmt.Fprintf(
			writer,
			"%d\t%s\t%s\t%d\t%.1f\t%d\n",
			run.ID,
			run.CreatedAt.UTC().Format(time.RFC3339),
			run.Source,
			run.WalletCount,
			run.MeanScore,
			run.NeutralCount,
		)
	}

	writer.Flush()
	return nil
}
