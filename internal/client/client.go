package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/princegrewall/quiz-app/internal/question/external"
	"github.com/princegrewall/quiz-app/internal/session"
)

// Client talks to the backend proxy on behalf of a session: question fetches
// and the best-effort submission write.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var (
	_ session.QuestionSource = (*Client)(nil)
	_ session.SubmissionSink = (*Client)(nil)
)

func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:4000"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// FetchQuestions requests amount questions through the proxy. A non-zero
// response_code is a failure regardless of HTTP status.
func (c *Client) FetchQuestions(ctx context.Context, amount int) ([]external.OpenTDBQuestion, error) {
	values := url.Values{}
	values.Set("amount", fmt.Sprint(amount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/quiz?%s", c.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("quiz fetch non-200: %d", resp.StatusCode)
	}

	var envelope external.QuestionEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	if envelope.ResponseCode != 0 {
		return nil, fmt.Errorf("trivia source response code %d", envelope.ResponseCode)
	}
	return envelope.Results, nil
}

// SubmitResult posts the final payload to the proxy.
func (c *Client) SubmitResult(ctx context.Context, payload session.SubmissionPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("submit non-200: %d", resp.StatusCode)
	}
	return nil
}
