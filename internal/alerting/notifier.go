package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Notification summarises a finished scoring run whose low-score share
// breached the configured threshold.
type Notification struct {
	Source       string
	ScoredAt     time.Time
	WalletCount  int
	MeanScore    float64
	NeutralCount int
	LowScore     int
	LowCount     int
	LowSharePct  float64
}

// Notifier dispatches run notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify sends the run summary via the sendMessage API.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram unexpected status: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram responded ok=false")
		}
	}

	n.logger.Info().Str("source", note.Source).
		Int("wallets", note.WalletCount).
		Int("low_count", note.LowCount).
		Msg("run summary sent (Telegram)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Wallet Credit Scores]\n")
	builder.WriteString(fmt.Sprintf("Source: %s\n", note.Source))
	builder.WriteString(fmt.Sprintf("Scored: %s UTC\n", note.ScoredAt.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf("Wallets: %d\n", note.WalletCount))
	builder.WriteString(fmt.Sprintf("Mean score: %.1f\n", note.MeanScore))
	builder.WriteString(fmt.Sprintf("Below %d: %d (%.1f%%)\n", note.LowScore, note.LowCount, note.LowSharePct))
	if note.NeutralCount > 0 {
		builder.WriteString(fmt.Sprintf("Neutral fallbacks: %d\n", note.NeutralCount))
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
