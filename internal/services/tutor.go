package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"hoctap-backend/internal/formatter"
	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/models"
	"hoctap-backend/internal/practice"
)

var tracer = otel.Tracer("hoctap-backend/services")

// ExplanationCache stores processed explanations. Implementations must be
// safe for concurrent use.
type ExplanationCache interface {
	Get(ctx context.Context, term, systemPrompt string) (string, bool, error)
	Set(ctx context.Context, term, systemPrompt, explanation string) error
}

// TutorService runs the chat, explain and practice flows.
type TutorService struct {
	gen       Generator
	chatLog   *ChatLog
	cache     ExplanationCache
	processor *formatter.Processor
	log       *logger.Logger
}

// NewTutorService wires the flows together. cache may be nil.
func NewTutorService(gen Generator, chatLog *ChatLog, cache ExplanationCache, log *logger.Logger) *TutorService {
	return &TutorService{
		gen:       gen,
		chatLog:   chatLog,
		cache:     cache,
		processor: formatter.NewProcessor(nil),
		log:       log.With("component", "tutor"),
	}
}

// Chat asks the model, stores the user and assistant messages together and
// returns the stored assistant message.
func (s *TutorService) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatMessage, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, newValidationError("message", "Message is required")
	}
	if req.Action != nil && !models.IsValidAction(*req.Action) {
		return nil, newValidationError("action", "Action must be one of complete, concise, hint")
	}

	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = SystemPromptForAction(req.Action)
	}

	raw, err := s.generate(ctx, message, systemPrompt, req.ImageData)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, &EmptyResponseError{Raw: raw}
	}

	user := &models.ChatMessage{
		Role:    models.RoleUser,
		Content: formatter.PlainToHTML(message),
		Action:  req.Action,
	}
	if req.ImageData != "" {
		image := req.ImageData
		user.ImageData = &image
	}
	assistant := &models.ChatMessage{
		Role:    models.RoleAssistant,
		Content: s.render(ctx, raw),
		Action:  req.Action,
	}

	if err := s.chatLog.Ensure(ctx); err != nil {
		return nil, err
	}
	if err := s.chatLog.Append(ctx, user, assistant); err != nil {
		return nil, err
	}
	return assistant, nil
}

// Explain returns the processed explanation of one term.
func (s *TutorService) Explain(ctx context.Context, req models.ExplainRequest) (string, error) {
	term := strings.TrimSpace(req.Term)
	if term == "" {
		return "", newValidationError("term", "Term is required")
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, term, req.SystemPrompt)
		if err != nil {
			s.log.Warn("Explanation cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	raw, err := s.generate(ctx, explainPrompt(term), req.SystemPrompt, "")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", &EmptyResponseError{Raw: raw}
	}

	explanation := s.render(ctx, raw)
	if s.cache != nil {
		if err := s.cache.Set(ctx, term, req.SystemPrompt, explanation); err != nil {
			s.log.Warn("Explanation cache write failed", "error", err)
		}
	}
	return explanation, nil
}

// Practice generates questions for a subject and grade. It fails only on
// validation, an upstream error or an empty reply; unstructured replies
// degrade to a single fallback question.
func (s *TutorService) Practice(ctx context.Context, req models.PracticeRequest) ([]models.PracticeQuestion, error) {
	subject := strings.TrimSpace(req.Subject)
	grade := strings.TrimSpace(req.Grade)
	fields := map[string]string{}
	if subject == "" {
		fields["subject"] = "Subject is required"
	}
	if grade == "" {
		fields["grade"] = "Grade is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	count := clampPracticeCount(req.QuestionCount())
	includeAnswers := req.WantsAnswers()
	topic := strings.TrimSpace(req.Topic)

	raw, err := s.generate(ctx,
		buildPracticePrompt(subject, grade, topic, count, includeAnswers),
		buildPracticeSystemPrompt(subject, grade),
		"",
	)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, &EmptyResponseError{Raw: raw}
	}

	_, span := tracer.Start(ctx, "practice.extract")
	res := practice.Extract(raw, practice.Options{
		ExpectCount:    count,
		IncludeAnswers: includeAnswers,
		Subject:        subject,
		Grade:          grade,
	})
	span.SetAttributes(
		attribute.String("practice.strategy", string(res.Strategy)),
		attribute.Int("practice.questions", len(res.Questions)),
	)
	span.End()

	if res.Degraded() {
		s.log.Warn("Practice reply had no recognisable questions, using fallback",
			"subject", subject, "grade", grade, "chars", len(raw))
	} else if res.CountMismatch(count) {
		s.log.Warn("Practice question count differs from request",
			"requested", count, "received", len(res.Questions), "strategy", res.Strategy)
	}

	questions := make([]models.PracticeQuestion, len(res.Questions))
	for i, q := range res.Questions {
		questions[i] = models.PracticeQuestion{
			Question:    s.cleanField(q.Question, res.Strategy),
			Answer:      s.cleanField(q.Answer, res.Strategy),
			Explanation: s.cleanField(q.Explanation, res.Strategy),
		}
	}
	return questions, nil
}

// cleanField sanitizes one practice field. Fields built from labeled text
// also get their math delimiters normalized; JSON fields arrive formatted and
// only have stray angle brackets escaped.
func (s *TutorService) cleanField(field string, strategy practice.Strategy) string {
	if field == "" {
		return ""
	}
	if strategy == practice.StrategyLabeled || strategy == practice.StrategyFallback {
		field = formatter.NormalizeLaTeX(field)
	} else {
		field = formatter.EscapeAngles(field)
	}
	return formatter.Sanitize(field)
}

// generate calls the model and makes sure failures carry a typed error.
func (s *TutorService) generate(ctx context.Context, prompt, systemPrompt, imageData string) (string, error) {
	raw, err := s.gen.Generate(ctx, prompt, systemPrompt, imageData)
	if err == nil {
		return raw, nil
	}

	var ve *ValidationError
	var ue *UpstreamError
	switch {
	case errors.As(err, &ve), errors.As(err, &ue):
		return "", err
	default:
		return "", &UpstreamError{Timeout: errors.Is(err, context.DeadlineExceeded), Err: err}
	}
}

func (s *TutorService) render(ctx context.Context, raw string) string {
	_, span := tracer.Start(ctx, "formatter.process")
	defer span.End()

	out := formatter.Sanitize(s.processor.Process(raw))
	span.SetAttributes(attribute.Int("formatter.input_chars", len(raw)), attribute.Int("formatter.output_chars", len(out)))
	return out
}
