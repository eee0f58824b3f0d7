package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/config"
	"git.campusqa.org/campusqa/campusqa/src/logging"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
)

// Classifies text with an OpenAI-compatible moderations endpoint.
type OpenAIClassifier struct {
	Client   *http.Client
	Endpoint string
	APIKey   string
	Model    string
}

func NewOpenAIClassifier(cfg config.ModerationConfig) *OpenAIClassifier {
	return &OpenAIClassifier{
		Client:   RobustHTTPClient(cfg.Timeout, cfg.HTTPRetryMax),
		Endpoint: cfg.Endpoint,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
	}
}

type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// schema: https://platform.openai.com/docs/api-reference/moderations/object
type moderationResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Results []moderationResult `json:"results"`
}

type moderationResult struct {
	Flagged        bool               `json:"flagged"`
	Categories     map[string]bool    `json:"categories"`
	CategoryScores map[string]float64 `json:"category_scores"`
}

func unavailable(format string, args ...any) error {
	return &qaerr.UnavailableError{Cause: fmt.Errorf(format, args...)}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, content string) (Verdict, error) {
	reqBody, err := json.Marshal(moderationRequest{Model: c.Model, Input: content})
	if err != nil {
		return Verdict{}, unavailable("failed to encode moderation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return Verdict{}, unavailable("failed to build moderation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "campusqa-moderation")

	start := time.Now()
	defer func() {
		classifierAPIDuration.Observe(time.Since(start).Seconds())
	}()

	res, err := c.Client.Do(req)
	if err != nil {
		classifierAPICount.WithLabelValues("error").Inc()
		return Verdict{}, unavailable("moderation request failed: %w", err)
	}
	defer res.Body.Close()

	classifierAPICount.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Verdict{}, unavailable("moderation request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return Verdict{}, unavailable("failed to read moderation response body: %w", err)
	}

	var respObj moderationResponse
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return Verdict{}, unavailable("failed to parse moderation response JSON: %w", err)
	}
	if len(respObj.Results) == 0 {
		return Verdict{}, unavailable("moderation response had no results")
	}

	result := respObj.Results[0]
	logging.ExtractLogger(ctx).Debug().
		Str("model", respObj.Model).
		Bool("flagged", result.Flagged).
		Msg("moderation response")

	return Verdict{
		Flagged:        result.Flagged,
		Categories:     result.Categories,
		CategoryScores: result.CategoryScores,
	}, nil
}
