package features

// Column names produced by the aggregator. The trained artifact schema uses
// these exact names; the aligner reconciles any drift between the two sets.
const (
	ColTotalTransactions     = "total_transactions"
	ColActiveDays            = "active_days"
	ColDurationDays          = "duration_days"
	ColUniqueTokens          = "unique_tokens_interacted"
	ColTransactionsPerDay    = "transactions_per_day"
	ColAvgTimeBetweenTxHours = "avg_time_between_tx_hours"
	ColLastTxRecencyDays     = "last_transaction_recency_days"

	ColTotalDeposit     = "total_deposit_amount"
	ColTotalBorrow      = "total_borrow_amount"
	ColTotalRepay       = "total_repay_amount"
	ColTotalRedeem      = "total_redeem_amount"
	ColTotalLiquidation = "total_liquidation_call_amount"

	ColCountDeposit     = "count_deposit"
	ColCountBorrow      = "count_borrow"
	ColCountRepay       = "count_repay"
	ColCountRedeem      = "count_redeemunderlying"
	ColCountLiquidation = "count_liquidationcall"

	ColAvgDeposit     = "avg_deposit_amount"
	ColAvgBorrow      = "avg_borrow_amount"
	ColAvgRepay       = "avg_repay_amount"
	ColAvgRedeem      = "avg_redeem_amount"
	ColAvgLiquidation = "avg_liquidation_amount"

	ColBorrowToDeposit = "borrow_to_deposit_ratio"
	ColRepayToBorrow   = "repay_to_borrow_ratio"
	ColRedeemToDeposit = "redeem_to_deposit_ratio"
	ColNetBorrowRepay  = "net_borrow_repay"

	ColStdDeposit = "std_deposit_amount"
	ColStdBorrow  = "std_borrow_amount"
	ColStdRepay   = "std_repay_amount"
)

// Action kinds tracked with dedicated financial columns. Anything else
// still counts toward the behavioral and temporal aggregates.
const (
	ActionDeposit     = "deposit"
	ActionBorrow      = "borrow"
	ActionRepay       = "repay"
	ActionRedeem      = "redeemunderlying"
	ActionLiquidation = "liquidationcall"
)

// WalletFeatures is the fixed-width numeric feature vector for one wallet.
type WalletFeatures struct {
	TotalTransactions     float64
	ActiveDays            float64
	DurationDays          float64
	UniqueTokens          float64
	TransactionsPerDay    float64
	AvgTimeBetweenTxHours float64
	LastTxRecencyDays     float64

	TotalDeposit     float64
	TotalBorrow      float64
	TotalRepay       float64
	TotalRedeem      float64
	TotalLiquidation float64

	CountDeposit     float64
	CountBorrow      float64
	CountRepay       float64
	CountRedeem      float64
	CountLiquidation float64

	AvgDeposit     float64
	AvgBorrow      float64
	AvgRepay       float64
	AvgRedeem      float64
	AvgLiquidation float64

	BorrowToDeposit float64
	RepayToBorrow   float64
	RedeemToDeposit float64
	NetBorrowRepay  float64

	StdDeposit float64
	StdBorrow  float64
	StdRepay   float64
}

// Columns lists the aggregator's output columns in their canonical order.
func Columns() []string {
	return []string{
		ColTotalTransactions,
		ColActiveDays,
		ColDurationDays,
		ColUniqueTokens,
		ColTransactionsPerDay,
		ColAvgTimeBetweenTxHours,
		ColLastTxRecencyDays,
		ColTotalDeposit,
		ColTotalBorrow,
		ColTotalRepay,
		ColTotalRedeem,
		ColTotalLiquidation,
		ColCountDeposit,
		ColCountBorrow,
		ColCountRepay,
		ColCountRedeem,
		ColCountLiquidation,
		ColAvgDeposit,
		ColAvgBorrow,
		ColAvgRepay,
		ColAvgRedeem,
		ColAvgLiquidation,
		ColBorrowToDeposit,
		ColRepayToBorrow,
		ColRedeemToDeposit,
		ColNetBorrowRepay,
		ColStdDeposit,
		ColStdBorrow,
		ColStdRepay,
	}
}

// Values maps column names to the vector's values for schema alignment.
func (f *WalletFeatures) Values() map[string]float64 {
	return map[string]float64{
		ColTotalTransactions:     f.TotalTransactions,
		ColActiveDays:            f.ActiveDays,
		ColDurationDays:          f.DurationDays,
		ColUniqueTokens:          f.UniqueTokens,
		ColTransactionsPerDay:    f.TransactionsPerDay,
		ColAvgTimeBetweenTxHours: f.AvgTimeBetweenTxHours,
		ColLastTxRecencyDays:     f.LastTxRecencyDays,
		ColTotalDeposit:          f.TotalDeposit,
		ColTotalBorrow:           f.TotalBorrow,
		ColTotalRepay:            f.TotalRepay,
		ColTotalRedeem:           f.TotalRedeem,
		ColTotalLiquidation:      f.TotalLiquidation,
		ColCountDeposit:          f.CountDeposit,
		ColCountBorrow:           f.CountBorrow,
		ColCountRepay:            f.CountRepay,
		ColCountRedeem:           f.CountRedeem,
		ColCountLiquidation:      f.CountLiquidation,
		ColAvgDeposit:            f.AvgDeposit,
		ColAvgBorrow:             f.AvgBorrow,
		ColAvgRepay:              f.AvgRepay,
		ColAvgRedeem:             f.AvgRedeem,
		ColAvgLiquidation:        f.AvgLiquidation,
		ColBorrowToDeposit:       f.BorrowToDeposit,
		ColRepayToBorrow:         f.RepayToBorrow,
		ColRedeemToDeposit:       f.RedeemToDeposit,
		ColNetBorrowRepay:        f.NetBorrowRepay,
		ColStdDeposit:            f.StdDeposit,
		ColStdBorrow:             f.StdBorrow,
		ColStdRepay:              f.StdRepay,
	}
}
