// Package genai calls the external lesson-generation API.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/lesson"
)

type Client struct {
	baseURL     string
	apiKey      string
	maxAttempts int
	http        *http.Client
	logger      core.Logger
}

var _ lesson.Generator = (*Client)(nil)

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		baseURL:     conf.GenAI.BaseURL,
		apiKey:      conf.GenAI.APIKey,
		maxAttempts: conf.GenAI.MaxAttempts,
		http:        &http.Client{Timeout: conf.GenAI.Timeout},
		logger:      logger,
	}
}

// Generate posts one generation request. Transient failures (network errors,
// 5xx, 429) are retried with increasing backoff; every attempt carries the
// same Idempotency-Key so the server can deduplicate. 4xx responses are
// final.
func (c *Client) Generate(ctx context.Context, req lesson.GenerationRequest, idemKey string, onAttempt func(attempt int)) (lesson.Generated, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return lesson.Generated{}, errors.Wrap(err, "encoding generation request")
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if onAttempt != nil {
			onAttempt(attempt)
		}
		if attempt > 1 {
			select {
			case <-time.After(time.Duration(attempt-1) * time.Second):
			case <-ctx.Done():
				return lesson.Generated{}, ctx.Err()
			}
		}

		gen, retryable, err := c.post(ctx, payload, idemKey)
		if err == nil {
			return gen, nil
		}
		lastErr = err
		if !retryable {
			return lesson.Generated{}, err
		}
		c.logger.Warn("genai: generation attempt failed", map[string]interface{}{
			"attempt": attempt, "error": err.Error(),
		})
	}
	return lesson.Generated{}, errors.Wrapf(lastErr, "generation failed after %d attempts", c.maxAttempts)
}

func (c *Client) post(ctx context.Context, payload []byte, idemKey string) (lesson.Generated, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate-lesson", bytes.NewReader(payload))
	if err != nil {
		return lesson.Generated{}, false, errors.Wrap(err, "building generation request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", idemKey)

	res, err := c.http.Do(req)
	if err != nil {
		return lesson.Generated{}, true, errors.Wrap(err, "calling generation API")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		body, _ := ioutil.ReadAll(io.LimitReader(res.Body, 1<<10))
		err := fmt.Errorf("generation API returned %d: %s", res.StatusCode, body)
		retryable := res.StatusCode >= http.StatusInternalServerError || res.StatusCode == http.StatusTooManyRequests
		return lesson.Generated{}, retryable, err
	}

	var gen lesson.Generated
	if err = json.NewDecoder(res.Body).Decode(&gen); err != nil {
		return lesson.Generated{}, false, errors.Wrap(err, "decoding generation response")
	}
	return gen, false, nil
}
