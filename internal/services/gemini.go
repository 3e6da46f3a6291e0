package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"

	"hoctap-backend/internal/logger"
)

// Generator produces model text for a prompt, an optional system prompt and
// optional base64 image data. Errors are *UpstreamError or, for a bad image,
// *ValidationError.
type Generator interface {
	Generate(ctx context.Context, prompt, systemPrompt, imageData string) (string, error)
}

const defaultImagePrompt = "Vui lòng giải bài tập trong hình ảnh này."

var dataURLPrefix = regexp.MustCompile(`^data:(image/[\w.+-]+);base64,`)

type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	ConcurrentReqs  int
	Timeout         time.Duration
}

type GeminiClient struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	timeout  time.Duration
	rateChan chan struct{} // Token bucket
	log      *logger.Logger
}

func NewGeminiClient(cfg GeminiConfig, log *logger.Logger) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(float32(cfg.Temperature))
	model.SetMaxOutputTokens(int32(cfg.MaxOutputTokens))
	model.SafetySettings = safetySettings()

	// Token bucket bounding in-flight calls
	rateChan := make(chan struct{}, cfg.ConcurrentReqs)
	for i := 0; i < cfg.ConcurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiClient{
		client:   client,
		model:    model,
		timeout:  cfg.Timeout,
		rateChan: rateChan,
		log:      log.With("component", "gemini"),
	}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, cat := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  cat,
			Threshold: genai.HarmBlockMediumAndAbove,
		})
	}
	return settings
}

// acquireRate blocks until a slot is free or ctx is done.
func (c *GeminiClient) acquireRate(ctx context.Context) error {
	select {
	case <-c.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *GeminiClient) releaseRate() {
	c.rateChan <- struct{}{}
}

func (c *GeminiClient) Generate(ctx context.Context, prompt, systemPrompt, imageData string) (string, error) {
	ctx, span := tracer.Start(ctx, "gemini.generate")
	defer span.End()
	span.SetAttributes(
		attribute.Bool("gemini.has_image", imageData != ""),
		attribute.Bool("gemini.has_system_prompt", systemPrompt != ""),
	)

	parts := []genai.Part{}
	if imageData != "" {
		blob, err := parseImageData(imageData)
		if err != nil {
			span.SetStatus(codes.Error, "invalid image")
			return "", newValidationError("imageData", err.Error())
		}
		if strings.TrimSpace(prompt) == "" {
			prompt = defaultImagePrompt
		}
		parts = append(parts, genai.Text(composePrompt(prompt, systemPrompt)), blob)
	} else {
		parts = append(parts, genai.Text(composePrompt(prompt, systemPrompt)))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.acquireRate(ctx); err != nil {
		return "", c.fail(span, classifyUpstream(ctx, err))
	}
	defer c.releaseRate()

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", c.fail(span, classifyUpstream(ctx, err))
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			c.log.Warn("Gemini candidate did not stop cleanly",
				"candidate", i, "finish_reason", cand.FinishReason.String())
		}
	}

	text := extractText(resp)
	span.SetAttributes(attribute.Int("gemini.response_chars", len(text)))
	c.log.Debug("Gemini call finished", "duration", time.Since(start), "chars", len(text))
	return text, nil
}

func (c *GeminiClient) fail(span trace.Span, err *UpstreamError) error {
	span.RecordError(err.Err)
	span.SetStatus(codes.Error, err.Error())
	c.log.Error("Gemini call failed", "timeout", err.Timeout, "error", err.Err)
	return err
}

// composePrompt prepends the system prompt separated by a blank line.
func composePrompt(prompt, systemPrompt string) string {
	if systemPrompt == "" {
		return prompt
	}
	return systemPrompt + "\n\n" + prompt
}

// parseImageData accepts raw base64 or a data URL. The MIME type comes from
// the data URL prefix and defaults to image/jpeg.
func parseImageData(imageData string) (genai.Blob, error) {
	mimeType := "image/jpeg"
	data := strings.TrimSpace(imageData)
	if m := dataURLPrefix.FindStringSubmatch(data); m != nil {
		mimeType = m[1]
		data = data[len(m[0]):]
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return genai.Blob{}, fmt.Errorf("image is not valid base64")
	}
	if len(decoded) == 0 {
		return genai.Blob{}, fmt.Errorf("image is empty")
	}
	return genai.Blob{MIMEType: mimeType, Data: decoded}, nil
}

// classifyUpstream marks err as a timeout when the call's deadline elapsed.
func classifyUpstream(ctx context.Context, err error) *UpstreamError {
	timeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
	return &UpstreamError{Timeout: timeout, Err: err}
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
