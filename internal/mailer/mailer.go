package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"app/internal/usecase"
)

// メール送信APIクライアント（Resend互換のJSON API）。
// usecase.NotificationSenderの実装。冪等ガードは持たない（まれな競合での
// 重複送信は許容する設計）。
type Config struct {
	APIKey  string
	From    string
	APIBase string // テストで差し替える。空なら本番エンドポイント。
}

type Mailer struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Mailer {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.resend.com"
	}
	return &Mailer{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *Mailer) SendOrderStatus(ctx context.Context, n usecase.OrderNotification) error {
	mail, err := render(n)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"from":    m.cfg.From,
		"to":      []string{n.CustomerEmail},
		"subject": mail.Subject,
		"text":    mail.Body,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.APIBase+"/emails", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := m.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("mail api: status %d: %s", res.StatusCode, string(body))
	}
	return nil
}
