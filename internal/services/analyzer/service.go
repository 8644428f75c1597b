package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/chartnote/chartnote/internal/common"
	"github.com/chartnote/chartnote/internal/interfaces"
	"github.com/chartnote/chartnote/internal/models"
)

// Service analyzes candlestick chart images with the Gemini API.
// All upstream configuration (key, model, endpoint, timeout) arrives at
// construction; nothing is read from the environment at call time.
type Service struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// NewService creates a new analyzer service
func NewService(config *common.GeminiConfig, logger arbor.ILogger) (*Service, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set via CHARTNOTE_GEMINI_API_KEY or gemini.api_key in config)")
	}

	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}
	if config.Timeout == "" {
		config.Timeout = "60s"
	}
	if config.MaxPoints <= 0 {
		config.MaxPoints = DefaultMaxPoints
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.Endpoint != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.Endpoint}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	var limiter *rate.Limiter
	if config.RateLimit != "" {
		interval, err := time.ParseDuration(config.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit duration '%s': %w", config.RateLimit, err)
		}
		if interval > 0 {
			limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}

	service := &Service{
		config:  config,
		logger:  logger,
		client:  client,
		limiter: limiter,
		timeout: timeout,
	}

	logger.Info().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Int("max_points", config.MaxPoints).
		Msg("Analyzer service initialized")

	return service, nil
}

// Analyze sends the chart plus trade context to the model and returns the
// extracted points with token usage
func (s *Service) Analyze(ctx context.Context, req interfaces.AnalyzeRequest) (*models.AnalysisResult, error) {
	prompt := req.PromptOverride
	if prompt == "" {
		prompt = buildAnalysisPrompt(req.PlanType, req.TradeContext)
	}

	return s.generate(ctx, prompt, req.Image, req.MimeType, endpointTag(req.PlanType))
}

// AnalyzeImageOnly analyzes a chart without any trade context
func (s *Service) AnalyzeImageOnly(ctx context.Context, image []byte, mimeType string) (*models.AnalysisResult, error) {
	return s.generate(ctx, imageOnlyPrompt, image, mimeType, "analyze_image_only")
}

// generate performs one generateContent call and post-processes the output
func (s *Service) generate(ctx context.Context, prompt string, image []byte, mimeType, endpoint string) (*models.AnalysisResult, error) {
	if len(image) == 0 {
		return nil, common.NewValidationError("image data is required")
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait cancelled: %w", err)
		}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				genai.NewPartFromText(prompt),
				genai.NewPartFromBytes(image, mimeType),
			},
		},
	}

	start := time.Now()
	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	})
	if err != nil {
		classified := classifyUpstreamError(err)
		s.logger.Warn().
			Err(err).
			Str("endpoint", endpoint).
			Str("model", s.config.Model).
			Msg("Gemini call failed")
		return nil, classified
	}

	text := extractText(resp)
	if text == "" {
		return nil, &common.UpstreamProtocolError{Detail: "invalid response from Gemini: no candidate text"}
	}

	usage := models.TokenUsage{
		Endpoint: endpoint,
		Model:    s.config.Model,
	}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CandidateTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	s.logger.Info().
		Str("endpoint", endpoint).
		Str("model", s.config.Model).
		Int("prompt_tokens", usage.PromptTokens).
		Int("candidate_tokens", usage.CandidateTokens).
		Int("total_tokens", usage.TotalTokens).
		Dur("duration", time.Since(start)).
		Msg("Gemini usage")

	return &models.AnalysisResult{
		Analysis: ExtractPoints(text, s.config.MaxPoints),
		Usage:    usage,
	}, nil
}

// extractText concatenates candidate part text the way the API returns it
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				b.WriteString(part.Text)
			}
		}
	}
	return b.String()
}

// classifyUpstreamError maps genai errors onto the service error taxonomy.
// 403 means the key or billing is rejected; any other API status is a
// generic upstream failure carrying the upstream message for the logs.
func classifyUpstreamError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 403 {
			return &common.UpstreamAuthError{Detail: "Gemini permission denied (API / billing / project)"}
		}
		return &common.UpstreamError{StatusCode: apiErr.Code, Detail: apiErr.Message}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &common.UpstreamError{StatusCode: 0, Detail: "Gemini request timed out"}
	}

	return &common.UpstreamError{StatusCode: 0, Detail: err.Error()}
}
