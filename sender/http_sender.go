package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSender sends through a Brevo-style transactional email API: one POST
// per message, template resolved by name on the provider side.
type HTTPSender struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	fromName   string
	fromAddr   string
}

func NewHTTPSender(apiURL, apiKey, fromName, fromAddr string) (*HTTPSender, error) {
	if apiURL == "" {
		return nil, fmt.Errorf("EMAIL_API_URL not set")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("EMAIL_API_KEY not set")
	}
	return &HTTPSender{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     apiURL,
		apiKey:     apiKey,
		fromName:   fromName,
		fromAddr:   fromAddr,
	}, nil
}

func (s *HTTPSender) Send(ctx context.Context, template, to string, params map[string]interface{}) (SendResult, error) {
	payload := map[string]interface{}{
		"sender": map[string]string{
			"name":  s.fromName,
			"email": s.fromAddr,
		},
		"to":       []map[string]string{{"email": to}},
		"template": template,
		"params":   params,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return SendResult{}, fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return SendResult{}, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("email api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return SendResult{}, fmt.Errorf("email api error %d: %s", resp.StatusCode, string(b))
	}

	var res struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return SendResult{}, fmt.Errorf("decode email api response: %w", err)
	}

	return SendResult{MessageID: res.MessageID, SentAt: time.Now()}, nil
}
