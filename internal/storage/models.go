package storage

import (
	"time"
)

// ScoreRun records one completed scoring invocation.
type ScoreRun struct {
	ID           int64
	Source       string
	WalletCount  int
	NeutralCount int
	MeanScore    float64
	CreatedAt    time.Time
}

// WalletScore is one wallet's persisted score within a run.
type WalletScore struct {
	RunID  int64
	Wallet string
	Score  int
}
