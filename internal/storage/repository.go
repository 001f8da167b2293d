package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
	// ErrNoRuns indicates no score run has been persisted yet.
	ErrNoRuns = errors.New("storage: no score runs recorded")
)

const (
	insertScoreRunSQL = `INSERT INTO score_runs (
        source,
        wallet_count,
        neutral_count,
        mean_score
    ) VALUES (
        $1,$2,$3,$4
    )
    RETURNING id, created_at;`

	insertWalletScoreSQL = `INSERT INTO wallet_scores (
        run_id,
        wallet,
        score
    ) VALUES (
        $1,$2,$3
    )
    ON CONFLICT (run_id, wallet) DO UPDATE
    SET score = EXCLUDED.score;`

	listRecentRunsSQL = `SELECT
        id,
        source,
        wallet_count,
        neutral_count,
        mean_score,
        created_at
    FROM score_runs
    ORDER BY created_at DESC
    LIMIT $1;`

	latestRunIDSQL = `SELECT id FROM score_runs ORDER BY created_at DESC LIMIT 1;`

	listRunScoresSQL = `SELECT
        run_id,
        wallet,
        score
    FROM wallet_scores
    WHERE run_id = $1
    ORDER BY wallet;`

	countWalletScoresSQL = `SELECT COUNT(*) FROM wallet_scores;`
)

// ScoreRunStore defines operations for score-run persistence.
type ScoreRunStore interface {
	InsertRun(ctx context.Context, run ScoreRun, scores []WalletScore) (ScoreRun, error)
	ListRecentRuns(ctx context.Context, limit int) ([]ScoreRun, error)
	LatestRunID(ctx context.Context) (int64, error)
	ListRunScores(ctx context.Context, runID int64) ([]WalletScore, error)
}

// Store aggregates access to score runs and per-wallet scores.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// InsertRun persists a run header and its per-wallet scores in one
// transaction.
func (s *Store) InsertRun(ctx context.Context, run ScoreRun, scores []WalletScore) (ScoreRun, error) {
	pool, err := s.getPool()
	if err != nil {
		return ScoreRun{}, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return ScoreRun{}, fmt.Errorf("begin score run tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, insertScoreRunSQL,
		run.Source,
		run.WalletCount,
		run.NeutralCount,
		run.MeanScore,
	)
	if err := row.Scan(&run.ID, &run.CreatedAt); err != nil {
		return ScoreRun{}, fmt.Errorf("insert score run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, score := range scores {
		batch.Queue(insertWalletScoreSQL, run.ID, score.Wallet, score.Score)
	}
	results := tx.SendBatch(ctx, batch)
	for range scores {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return ScoreRun{}, fmt.Errorf("insert wallet score: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return ScoreRun{}, fmt.Errorf("close score batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return ScoreRun{}, fmt.Errorf("commit score run tx: %w", err)
	}
	return run, nil
}

// ListRecentRuns lists the most recent runs ordered by descending creation.
func (s *Store) ListRecentRuns(ctx context.Context, limit int) ([]ScoreRun, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentRunsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent runs: %w", queryErr)
	}
	defer rows.Close()

	runs := make([]ScoreRun, 0, limit)
	for rows.Next() {
		var run ScoreRun
		if err := rows.Scan(
			&run.ID,
			&run.Source,
			&run.WalletCount,
			&run.NeutralCount,
			&run.MeanScore,
			&run.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return runs, nil
}

// LatestRunID returns the most recent run id.
func (s *Store) LatestRunID(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	var id int64
	if scanErr := pool.QueryRow(ctx, latestRunIDSQL).Scan(&id); scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return 0, ErrNoRuns
		}
		return 0, fmt.Errorf("latest run id: %w", scanErr)
	}
	return id, nil
}

// ListRunScores lists a run's wallet scores ordered by wallet.
func (s *Store) ListRunScores(ctx context.Context, runID int64) ([]WalletScore, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRunScoresSQL, runID)
	if queryErr != nil {
		return nil, fmt.Errorf("list run scores: %w", queryErr)
	}
	defer rows.Close()

	scores := make([]WalletScore, 0)
	for rows.Next() {
		var score WalletScore
		if err := rows.Scan(&score.RunID, &score.Wallet, &score.Score); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return scores, nil
}

// CountWalletScores counts persisted wallet scores across all runs.
func (s *Store) CountWalletScores(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countWalletScoresSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count wallet scores: %w", scanErr)
	}
	return count, nil
}

var _ ScoreRunStore = (*Store)(nil)
