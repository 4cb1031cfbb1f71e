package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// token + APIを一体で立てるfake PayPal
func newFakePayPal(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/", handle)
	return httptest.NewServer(mux)
}

func testConfig(base string) Config {
	return Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		APIBase:      base,
		WebhookID:    "WH-ID",
		Currency:     "USD",
	}
}

func TestPayPalClient_CreateOrder(t *testing.T) {
	var gotAuth, gotRequestID string
	var gotBody map[string]interface{}

	srv := newFakePayPal(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/checkout/orders", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("PayPal-Request-Id")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "PAYPAL-1", "status": "CREATED"})
	})
	defer srv.Close()

	c := NewPayPalClient(testConfig(srv.URL))

	id, err := c.CreateOrder(context.Background(), 5500)
	assert.NoError(t, err)
	assert.Equal(t, "PAYPAL-1", id)

	assert.Equal(t, "Bearer test-token", gotAuth)
	// 作成リクエストには冪等キーを必ず載せる
	assert.NotEmpty(t, gotRequestID)

	// 金額はwire上は"55.00"形式
	units := gotBody["purchase_units"].([]interface{})
	amount := units[0].(map[string]interface{})["amount"].(map[string]interface{})
	assert.Equal(t, "55.00", amount["value"])
	assert.Equal(t, "USD", amount["currency_code"])
}

func TestPayPalClient_CreateOrder_EmptyID(t *testing.T) {
	srv := newFakePayPal(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "CREATED"})
	})
	defer srv.Close()

	c := NewPayPalClient(testConfig(srv.URL))
	_, err := c.CreateOrder(context.Background(), 5500)
	assert.Error(t, err)
}

func TestPayPalClient_CaptureOrder_Completed(t *testing.T) {
	srv := newFakePayPal(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/checkout/orders/PAYPAL-1/capture", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": "PAYPAL-1",
			"status": "COMPLETED",
			"purchase_units": [{
				"payments": {"captures": [{
					"id": "CAP-1",
					"status": "COMPLETED",
					"amount": {"currency_code": "USD", "value": "55.00"}
				}]}
			}]
		}`))
	})
	defer srv.Close()

	c := NewPayPalClient(testConfig(srv.URL))

	res, err := c.CaptureOrder(context.Background(), "PAYPAL-1")
	assert.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, "CAP-1", res.CaptureID)
	assert.Equal(t, int64(5500), res.AmountCents)
	assert.Equal(t, "USD", res.Currency)
}

// 注文はCOMPLETEDでもcapture自体がPENDINGなら未完了扱い
func TestPayPalClient_CaptureOrder_PendingCapture(t *testing.T) {
	srv := newFakePayPal(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": "PAYPAL-1",
			"status": "COMPLETED",
			"purchase_units": [{
				"payments": {"captures": [{
					"id": "CAP-1",
					"status": "PENDING",
					"amount": {"currency_code": "USD", "value": "55.00"}
				}]}
			}]
		}`))
	})
	defer srv.Close()

	c := NewPayPalClient(testConfig(srv.URL))

	res, err := c.CaptureOrder(context.Background(), "PAYPAL-1")
	assert.NoError(t, err)
	assert.False(t, res.Completed)
}

func TestPayPalClient_CaptureOrder_HTTPError(t *testing.T) {
	srv := newFakePayPal(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name": "UNPROCESSABLE_ENTITY"}`))
	})
	defer srv.Close()

	c := NewPayPalClient(testConfig(srv.URL))
	_, err := c.CaptureOrder(context.Background(), "PAYPAL-1")
	assert.Error(t, err)
}

func completeHeaders() WebhookSignatureHeaders {
	return WebhookSignatureHeaders{
		TransmissionID:   "tid",
		TransmissionTime: "2026-01-01T00:00:00Z",
		TransmissionSig:  "sig",
		CertURL:          "https://api.paypal.com/cert",
		AuthAlgo:         "SHA256withRSA",
	}
}

func TestPayPalClient_VerifyWebhookSignature(t *testing.T) {
	var gotBody map[string]interface{}

	srv := newFakePayPal(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/notifications/verify-webhook-signature", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"verification_status": "SUCCESS"})
	})
	defer srv.Close()

	c := NewPayPalClient(testConfig(srv.URL))

	ok, err := c.VerifyWebhookSignature(context.Background(), completeHeaders(), []byte(`{"id":"WH-1"}`))
	assert.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, "WH-ID", gotBody["webhook_id"])
	assert.Equal(t, "tid", gotBody["transmission_id"])
	// イベントbodyは生のまま埋め込む
	assert.Equal(t, map[string]interface{}{"id": "WH-1"}, gotBody["webhook_event"])
}

func TestPayPalClient_VerifyWebhookSignature_Failure(t *testing.T) {
	srv := newFakePayPal(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"verification_status": "FAILURE"})
	})
	defer srv.Close()

	c := NewPayPalClient(testConfig(srv.URL))

	ok, err := c.VerifyWebhookSignature(context.Background(), completeHeaders(), []byte(`{}`))
	assert.NoError(t, err)
	assert.False(t, ok)
}

// ヘッダが欠けていたらAPIを呼ぶまでもなく不合格
func TestPayPalClient_VerifyWebhookSignature_IncompleteHeaders(t *testing.T) {
	c := NewPayPalClient(testConfig("http://127.0.0.1:0"))

	h := completeHeaders()
	h.TransmissionSig = ""

	ok, err := c.VerifyWebhookSignature(context.Background(), h, []byte(`{}`))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestPayPalClient_TokenIsCached(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "t", "expires_in": 3600})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "PAYPAL-1"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewPayPalClient(testConfig(srv.URL))

	_, err := c.CreateOrder(context.Background(), 100)
	assert.NoError(t, err)
	_, err = c.CreateOrder(context.Background(), 200)
	assert.NoError(t, err)

	assert.Equal(t, 1, tokenCalls)
}
