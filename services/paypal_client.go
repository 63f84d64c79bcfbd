package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/boubamga9/Pattyly-sub000/config"
)

// PayPalVerificationError marks signature verification failures so callers
// can map them to a 400 instead of a retryable 500.
type PayPalVerificationError struct {
	Reason string
}

func (e *PayPalVerificationError) Error() string {
	return "paypal webhook verification failed: " + e.Reason
}

// Required transmission headers on every PayPal webhook delivery.
var paypalTransmissionHeaders = []string{
	"Paypal-Transmission-Id",
	"Paypal-Transmission-Time",
	"Paypal-Transmission-Sig",
	"Paypal-Cert-Url",
	"Paypal-Auth-Algo",
}

type PayPalClient interface {
	// VerifyWebhookSignature calls PayPal's verify-webhook-signature API for
	// the raw delivery. A *PayPalVerificationError means the payload must not
	// be trusted; other errors are transport failures.
	VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error
	// CreateOrder creates a checkout order on the merchant's behalf and
	// returns its id plus the buyer approval URL.
	CreateOrder(ctx context.Context, req PayPalOrderRequest) (orderID, approveURL string, err error)
}

type PayPalOrderRequest struct {
	Amount     string
	Currency   string
	MerchantID string
	ReturnURL  string
	CancelURL  string
}

type paypalClientImpl struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	webhookID    string
}

func NewPayPalClient(cfg *config.Config) PayPalClient {
	return &paypalClientImpl{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      cfg.PayPalBaseURL,
		clientID:     cfg.PayPalClientID,
		clientSecret: cfg.PayPalClientSecret,
		webhookID:    cfg.PayPalWebhookID,
	}
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.clientID + ":" + c.clientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal token error %d: %s", resp.StatusCode, string(b))
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	return res.AccessToken, nil
}

func (c *paypalClientImpl) VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error {
	for _, h := range paypalTransmissionHeaders {
		if headers.Get(h) == "" {
			return &PayPalVerificationError{Reason: "missing header " + h}
		}
	}

	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("get paypal access token: %w", err)
	}

	payload := map[string]interface{}{
		"auth_algo":         headers.Get("Paypal-Auth-Algo"),
		"cert_url":          headers.Get("Paypal-Cert-Url"),
		"transmission_id":   headers.Get("Paypal-Transmission-Id"),
		"transmission_sig":  headers.Get("Paypal-Transmission-Sig"),
		"transmission_time": headers.Get("Paypal-Transmission-Time"),
		"webhook_id":        c.webhookID,
		"webhook_event":     json.RawMessage(body),
	}
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal verification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/notifications/verify-webhook-signature",
		bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal verify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paypal verify error %d: %s", resp.StatusCode, string(b))
	}

	var res struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return fmt.Errorf("decode verify response: %w", err)
	}
	if res.VerificationStatus != "SUCCESS" {
		return &PayPalVerificationError{Reason: "verification_status=" + res.VerificationStatus}
	}
	return nil
}

func (c *paypalClientImpl) CreateOrder(ctx context.Context, orderReq PayPalOrderRequest) (string, string, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return "", "", fmt.Errorf("get paypal access token: %w", err)
	}

	purchaseUnit := map[string]interface{}{
		"amount": map[string]string{
			"currency_code": orderReq.Currency,
			"value":         orderReq.Amount,
		},
	}
	if orderReq.MerchantID != "" {
		purchaseUnit["payee"] = map[string]string{"merchant_id": orderReq.MerchantID}
	}

	payload := map[string]interface{}{
		"intent":         "CAPTURE",
		"purchase_units": []map[string]interface{}{purchaseUnit},
		"application_context": map[string]string{
			"return_url": orderReq.ReturnURL,
			"cancel_url": orderReq.CancelURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("marshal req payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/checkout/orders",
		bytes.NewBuffer(body))
	if err != nil {
		return "", "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("paypal create order failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("paypal error %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		ID    string `json:"id"`
		Links []struct {
			Rel  string `json:"rel"`
			Href string `json:"href"`
		} `json:"links"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", fmt.Errorf("decode paypal response: %w", err)
	}

	approveURL := ""
	for _, link := range result.Links {
		if link.Rel == "approve" {
			approveURL = link.Href
		}
	}
	return result.ID, approveURL, nil
}
