package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/quizdesk/quizdesk-web/internal/backend"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/notify"
	"github.com/quizdesk/quizdesk-web/internal/validator"
	"github.com/rs/zerolog"
)

// QuizListPath is where the client goes after a successful generation.
const QuizListPath = "/quiz"

// DraftStore keeps the last unsuccessfully submitted generation form.
type DraftStore interface {
	SaveDraft(ctx context.Context, userID string, form *model.GenerateQuizRequest) error
	LoadDraft(ctx context.Context, userID string) (*model.GenerateQuizRequest, error)
	DeleteDraft(ctx context.Context, userID string) error
}

// QuizFormService backs the quiz generation form.
type QuizFormService struct {
	upstream backend.Client
	docs     *DocumentService
	drafts   DraftStore
	notifier notify.Notifier
	log      zerolog.Logger
}

// NewQuizFormService creates a new QuizFormService.
func NewQuizFormService(upstream backend.Client, docs *DocumentService, drafts DraftStore, notifier notify.Notifier, log zerolog.Logger) *QuizFormService {
	return &QuizFormService{
		upstream: upstream,
		docs:     docs,
		drafts:   drafts,
		notifier: notifier,
		log:      log.With().Str("component", "quiz_form_service").Logger(),
	}
}

// FormOptions returns every selector list the form needs.
func (s *QuizFormService) FormOptions(ctx context.Context, id model.Identity, pages int) (*model.FormOptions, error) {
	docs, err := s.docs.Options(ctx, id, pages)
	if err != nil {
		return nil, err
	}
	return &model.FormOptions{
		Documents:        docs,
		QuestionTypes:    model.QuestionTypes,
		DifficultyLevels: model.DifficultyLevels,
	}, nil
}

// Draft returns the preserved form of the last failed submission, or nil.
func (s *QuizFormService) Draft(ctx context.Context, id model.Identity) (*model.GenerateQuizRequest, error) {
	return s.drafts.LoadDraft(ctx, id.UserID)
}

// Submit validates the form and makes exactly one generation call. Identical
// submissions are not deduplicated.
func (s *QuizFormService) Submit(ctx context.Context, id model.Identity, form model.GenerateQuizRequest) (*model.GenerateQuizResult, error) {
	if fields := validator.Check(&form); fields != nil {
		return nil, &FormError{Fields: fields}
	}

	payload := BuildPayload(form)
	log := s.log.With().Str("user_id", id.UserID).Str("title", payload.Title).Logger()

	res, err := s.upstream.GenerateQuiz(ctx, id.Token, payload)
	if err != nil {
		log.Error().Err(err).Msg("Quiz generation request failed")
		s.keepDraft(ctx, log, id, &form)
		_ = s.notifier.Publish(ctx, id.UserID, model.ToastEvent(model.ToastError,
			"Failed to generate quiz", "An error occurred while generating the quiz."))
		return nil, unavailable("generate quiz", err)
	}
	if res.Failed() {
		log.Warn().Str("reason", res.Error).Msg("Quiz generation rejected")
		s.keepDraft(ctx, log, id, &form)
		_ = s.notifier.Publish(ctx, id.UserID, model.ToastEvent(model.ToastError,
			"Failed to generate quiz", res.Error))
		return nil, rejected("generate quiz", res.Error)
	}

	quiz := model.GeneratedQuiz{Title: payload.Title}
	if res.Data != nil {
		quiz = *res.Data
	}

	if err := s.drafts.DeleteDraft(ctx, id.UserID); err != nil {
		log.Warn().Err(err).Msg("Draft reset failed")
	}
	_ = s.notifier.Publish(ctx, id.UserID, model.ToastEvent(model.ToastSuccess,
		"Quiz Generated Successfully", quiz.Title))
	log.Info().Str("quiz_id", quiz.ID).Msg("Quiz generated")

	return &model.GenerateQuizResult{Quiz: quiz, Redirect: QuizListPath}, nil
}

func (s *QuizFormService) keepDraft(ctx context.Context, log zerolog.Logger, id model.Identity, form *model.GenerateQuizRequest) {
	if err := s.drafts.SaveDraft(ctx, id.UserID, form); err != nil {
		log.Warn().Err(err).Msg("Draft save failed")
	}
}

// BuildPayload converts a validated form into the upstream request body.
func BuildPayload(form model.GenerateQuizRequest) model.GenerateQuizPayload {
	return model.GenerateQuizPayload{
		Title:          strings.TrimSpace(form.Title),
		TimeLimit:      MinutesToDuration(int(form.TimeLimit)),
		TotalQuestions: int(form.TotalQuestions),
		QuestionsType:  dedupe(form.QuestionsType),
		Difficulty:     form.Difficulty,
		UserPrompt:     form.UserPrompt,
		UserFileIDs:    dedupe(form.FileIDs),
	}
}

// MinutesToDuration renders whole minutes as an ISO-8601 duration:
// 30 -> PT30M, 90 -> PT1H30M, 120 -> PT2H.
func MinutesToDuration(minutes int) string {
	if minutes <= 0 {
		return "PT0M"
	}
	h, m := minutes/60, minutes%60
	var b strings.Builder
	b.WriteString("PT")
	if h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	return b.String()
}

func dedupe[T comparable](in []T) []T {
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
