package features

import (
	"math"
	"sort"
	"time"

	"wallet-credit-scores/internal/ingest"
)

// epsilon guards the behavioral ratio denominators against division by zero.
const epsilon = 1e-9

// Aggregate computes one WalletFeatures vector per distinct wallet in the
// batch. Recency is measured against the latest timestamp across the whole
// batch, so that latest instant is reduced upfront before the per-wallet
// pass. An empty batch yields an empty map.
func Aggregate(txs []ingest.Transaction) map[string]*WalletFeatures {
	result := make(map[string]*WalletFeatures)
	if len(txs) == 0 {
		return result
	}

	latestOverall := txs[0].Timestamp
	for _, tx := range txs[1:] {
		if tx.Timestamp.After(latestOverall) {
			latestOverall = tx.Timestamp
		}
	}

	groups := make(map[string]*walletGroup)
	for _, tx := range txs {
		group, ok := groups[tx.Wallet]
		if !ok {
			group = newWalletGroup()
			groups[tx.Wallet] = group
		}
		group.add(tx)
	}

	for wallet, group := range groups {
		result[wallet] = group.features(latestOverall)
	}
	return result
}

// walletGroup accumulates one wallet's transactions during the grouping pass.
type walletGroup struct {
	times   []time.Time
	dates   map[time.Time]struct{}
	tokens  map[string]struct{}
	sums    map[string]float64
	counts  map[string]int
	amounts map[string][]float64
}

func newWalletGroup() *walletGroup {
	return &walletGroup{
		dates:   make(map[time.Time]struct{}),
		tokens:  make(map[string]struct{}),
		sums:    make(map[string]float64),
		counts:  make(map[string]int),
		amounts: make(map[string][]float64),
	}
}

func (g *walletGroup) add(tx ingest.Transaction) {
	g.times = append(g.times, tx.Timestamp)
	g.dates[calendarDate(tx.Timestamp)] = struct{}{}
	g.tokens[tx.Asset] = struct{}{}
	g.sums[tx.Action] += tx.Amount
	g.counts[tx.Action]++
	switch tx.Action {
	case ActionDeposit, ActionBorrow, ActionRepay:
		g.amounts[tx.Action] = append(g.amounts[tx.Action], tx.Amount)
	}
}

func (g *walletGroup) features(latestOverall time.Time) *WalletFeatures {
	sort.Slice(g.times, func(i, j int) bool { return g.times[i].Before(g.times[j]) })

	first := g.times[0]
	last := g.times[len(g.times)-1]

	f := &WalletFeatures{
		TotalTransactions: float64(len(g.times)),
		ActiveDays:        float64(len(g.dates)),
		DurationDays:      durationDays(g.dates, calendarDate(first), calendarDate(last)),
		UniqueTokens:      float64(len(g.tokens)),
		LastTxRecencyDays: wholeDays(latestOverall.Sub(last)),

		TotalDeposit:     g.sums[ActionDeposit],
		TotalBorrow:      g.sums[ActionBorrow],
		TotalRepay:       g.sums[ActionRepay],
		TotalRedeem:      g.sums[ActionRedeem],
		TotalLiquidation: g.sums[ActionLiquidation],

		CountDeposit:     float64(g.counts[ActionDeposit]),
		CountBorrow:      float64(g.counts[ActionBorrow]),
		CountRepay:       float64(g.counts[ActionRepay]),
		CountRedeem:      float64(g.counts[ActionRedeem]),
		CountLiquidation: float64(g.counts[ActionLiquidation]),
	}

	f.TransactionsPerDay = f.TotalTransactions / f.DurationDays
	f.AvgTimeBetweenTxHours = avgGapHours(g.times)

	f.AvgDeposit = safeDiv(f.TotalDeposit, f.CountDeposit)
	f.AvgBorrow = safeDiv(f.TotalBorrow, f.CountBorrow)
	f.AvgRepay = safeDiv(f.TotalRepay, f.CountRepay)
	f.AvgRedeem = safeDiv(f.TotalRedeem, f.CountRedeem)
	f.AvgLiquidation = safeDiv(f.TotalLiquidation, f.CountLiquidation)

	f.BorrowToDeposit = f.TotalBorrow / (f.TotalDeposit + epsilon)
	f.RepayToBorrow = f.TotalRepay / (f.TotalBorrow + epsilon)
	f.RedeemToDeposit = f.TotalRedeem / (f.TotalDeposit + epsilon)
	f.NetBorrowRepay = f.TotalBorrow - f.TotalRepay

	f.StdDeposit = sampleStd(g.amounts[ActionDeposit])
	f.StdBorrow = sampleStd(g.amounts[ActionBorrow])
	f.StdRepay = sampleStd(g.amounts[ActionRepay])

	f.sanitize()
	return f
}

// sanitize clamps any residual NaN or infinite value to zero so every
// produced column is finite.
func (f *WalletFeatures) sanitize() {
	vals := []*float64{
		&f.TotalTransactions, &f.ActiveDays, &f.DurationDays, &f.UniqueTokens,
		&f.TransactionsPerDay, &f.AvgTimeBetweenTxHours, &f.LastTxRecencyDays,
		&f.TotalDeposit, &f.TotalBorrow, &f.TotalRepay, &f.TotalRedeem, &f.TotalLiquidation,
		&f.CountDeposit, &f.CountBorrow, &f.CountRepay, &f.CountRedeem, &f.CountLiquidation,
		&f.AvgDeposit, &f.AvgBorrow, &f.AvgRepay, &f.AvgRedeem, &f.AvgLiquidation,
		&f.BorrowToDeposit, &f.RepayToBorrow, &f.RedeemToDeposit, &f.NetBorrowRepay,
		&f.StdDeposit, &f.StdBorrow, &f.StdRepay,
	}
	for _, v := range vals {
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			*v = 0
		}
	}
}

// durationDays spans first to last calendar date inclusive, with a floor of
// one day when the wallet only ever traded on a single date.
func durationDays(dates map[time.Time]struct{}, first, last time.Time) float64 {
	if len(dates) <= 1 {
		return 1
	}
	return last.Sub(first).Hours()/24 + 1
}

// avgGapHours is the mean gap between consecutive transactions, requiring
// the times to be sorted already. Fewer than two transactions yield zero.
func avgGapHours(times []time.Time) float64 {
	if len(times) < 2 {
		return 0
	}
	total := times[len(times)-1].Sub(times[0])
	return total.Hours() / float64(len(times)-1)
}

// sampleStd is the sample standard deviation, zero for fewer than two values.
func sampleStd(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= n
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / (n - 1))
}

func safeDiv(total, count float64) float64 {
	if count <= 0 {
		return 0
	}
	return total / count
}

func wholeDays(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return float64(int64(d.Hours() / 24))
}

func calendarDate(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
