package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PayPal REST APIクライアント。
// create/capture/署名検証だけを薄く包む。金額はアプリ内はcent、wire上は"20.00"形式。
type Config struct {
	ClientID     string
	ClientSecret string
	APIBase      string // 例: https://api-m.sandbox.paypal.com
	WebhookID    string
	Currency     string // 例: USD
}

type PayPalClient struct {
	cfg  Config
	http *http.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func NewPayPalClient(cfg Config) *PayPalClient {
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &PayPalClient{
		cfg: cfg,
		//外部呼び出しは必ず打ち切る
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// キャプチャ結果
type CaptureResult struct {
	CaptureID   string
	AmountCents int64
	Currency    string
	Status      string
	Completed   bool
}

// Webhook署名検証に必要な転送ヘッダ一式
type WebhookSignatureHeaders struct {
	TransmissionID   string
	TransmissionTime string
	TransmissionSig  string
	CertURL          string
	AuthAlgo         string
}

func (h WebhookSignatureHeaders) Complete() bool {
	return h.TransmissionID != "" && h.TransmissionTime != "" &&
		h.TransmissionSig != "" && h.CertURL != "" && h.AuthAlgo != ""
}

// access tokenを取得（期限までキャッシュ）
func (c *PayPalClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.APIBase+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("paypal token: status %d: %s", res.StatusCode, string(body))
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}

	c.token = out.AccessToken
	//期限ぎりぎりは使わない
	c.tokenExp = time.Now().Add(time.Duration(out.ExpiresIn-60) * time.Second)
	return c.token, nil
}

// requestIDが空でなければPayPal-Request-Idヘッダに載せる（processor側の二重作成防止）
func (c *PayPalClient) postJSON(ctx context.Context, path string, requestID string, in interface{}, out interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBase+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("PayPal-Request-Id", requestID)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("paypal %s: status %d: %s", path, res.StatusCode, string(b))
	}

	if out != nil {
		return json.NewDecoder(res.Body).Decode(out)
	}
	return nil
}

// 注文作成（intent=CAPTURE）。返ってきたPayPal order idが保留注文のキーになる。
func (c *PayPalClient) CreateOrder(ctx context.Context, amountCents int64) (string, error) {
	in := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency_code": c.cfg.Currency,
					"value":         FormatAmount(amountCents),
				},
			},
		},
	}

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := c.postJSON(ctx, "/v2/checkout/orders", uuid.NewString(), in, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("paypal create order: empty order id")
	}
	return out.ID, nil
}

// 承認済み注文のキャプチャ（実際の資金回収）
func (c *PayPalClient) CaptureOrder(ctx context.Context, paypalOrderID string) (CaptureResult, error) {
	var out struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
					Amount struct {
						CurrencyCode string `json:"currency_code"`
						Value        string `json:"value"`
					} `json:"amount"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}

	if err := c.postJSON(ctx, "/v2/checkout/orders/"+url.PathEscape(paypalOrderID)+"/capture", "", map[string]interface{}{}, &out); err != nil {
		return CaptureResult{}, err
	}

	res := CaptureResult{Status: out.Status}
	if len(out.PurchaseUnits) > 0 && len(out.PurchaseUnits[0].Payments.Captures) > 0 {
		cap0 := out.PurchaseUnits[0].Payments.Captures[0]
		res.CaptureID = cap0.ID
		res.Currency = cap0.Amount.CurrencyCode

		cents, err := ParseAmount(cap0.Amount.Value)
		if err != nil {
			return CaptureResult{}, fmt.Errorf("paypal capture amount %q: %w", cap0.Amount.Value, err)
		}
		res.AmountCents = cents
		res.Completed = out.Status == "COMPLETED" && cap0.Status == "COMPLETED"
	}
	return res, nil
}

// Webhook署名検証。PayPalの公式verify APIに委譲する（自前のヘッダ存在チェックで済ませない）。
func (c *PayPalClient) VerifyWebhookSignature(ctx context.Context, h WebhookSignatureHeaders, rawBody []byte) (bool, error) {
	if !h.Complete() {
		return false, nil
	}

	in := map[string]interface{}{
		"auth_algo":         h.AuthAlgo,
		"cert_url":          h.CertURL,
		"transmission_id":   h.TransmissionID,
		"transmission_sig":  h.TransmissionSig,
		"transmission_time": h.TransmissionTime,
		"webhook_id":        c.cfg.WebhookID,
		"webhook_event":     json.RawMessage(rawBody),
	}

	var out struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := c.postJSON(ctx, "/v1/notifications/verify-webhook-signature", "", in, &out); err != nil {
		return false, err
	}
	return out.VerificationStatus == "SUCCESS", nil
}
