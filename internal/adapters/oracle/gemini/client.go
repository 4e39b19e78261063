// Package gemini implements the school ranking oracle on top of the Gemini
// generative API.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/okian/playmatch/internal/domain/ranking"
	"github.com/okian/playmatch/pkg/logger"
	"github.com/okian/playmatch/pkg/metrics"
)

const (
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 20 * time.Second
)

// Client ranks candidate schools with a single generateContent call.
type Client struct {
	genai      *genai.Client
	model      string
	timeout    time.Duration
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

var _ ranking.Ranker = (*Client)(nil)

// NewClient creates a Gemini-backed ranker.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		model:   defaultModel,
		timeout: defaultTimeout,
		logger:  logger.Named("gemini"),
	}
	for _, opt := range opts {
		opt(c)
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClientInit, err)
	}
	c.genai = client
	return c, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Rank sends the rubric and the candidate payload and returns the proposed
// school ids. The result is not sanitized.
func (c *Client) Rank(ctx context.Context, req ranking.Request) ([]string, error) {
	instruction, payload, err := ranking.BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(instruction),
			genai.NewPartFromText(payload),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
	}

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, config)
	metrics.RecordOracleLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordOracleRequest("error")
		metrics.RecordErrorByComponent("oracle", "request")
		c.logger.Warn(ctx, "gemini request failed",
			logger.String("model", c.model),
			logger.Int("candidates", len(req.Candidates)),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrOracleRequest, err)
	}
	metrics.RecordOracleRequest("ok")

	ids, err := ranking.ParseRanking(resp.Text())
	if err != nil {
		metrics.RecordErrorByComponent("oracle", "malformed")
		return nil, err
	}

	c.logger.Debug(ctx, "gemini ranking received",
		logger.String("model", c.model),
		logger.Strings("school_ids", ids),
		logger.Duration("elapsed", time.Since(start)),
	)
	return ids, nil
}
