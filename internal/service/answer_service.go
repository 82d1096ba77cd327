package service

import (
	"context"
	"sync"

	"github.com/quizdesk/quizdesk-web/internal/backend"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/rs/zerolog"
)

// AnswerService saves one answer at a time per attempt and then advances it.
type AnswerService struct {
	upstream backend.Client
	attempts *AttemptService
	log      zerolog.Logger

	mu   sync.Mutex
	busy map[busyKey]bool
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(upstream backend.Client, attempts *AttemptService, log zerolog.Logger) *AnswerService {
	return &AnswerService{
		upstream: upstream,
		attempts: attempts,
		log:      log.With().Str("component", "answer_service").Logger(),
		busy:     make(map[busyKey]bool),
	}
}

// Submit validates and saves the answer to the current question. A second
// submit for the same attempt while one is in flight gets ErrSubmitBusy.
// Failed saves are not retried and leave the pointer where it was.
func (s *AnswerService) Submit(ctx context.Context, id model.Identity, attemptID string, in model.SubmitAnswerRequest) (*model.SubmitAnswerResult, error) {
	key := busyKey{userID: id.UserID, attemptID: attemptID}
	if !s.acquire(key) {
		return nil, ErrSubmitBusy
	}
	defer s.release(key)

	q, err := s.attempts.CurrentQuestion(ctx, id, attemptID)
	if err != nil {
		return nil, err
	}
	if in.QuestionID != q.ID {
		return nil, ErrQuestionMismatch
	}

	form, err := NewAnswerForm(*q, in)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	log := s.log.With().
		Str("attempt_id", attemptID).
		Str("question_id", q.ID).
		Str("question_type", string(q.QuestionType)).
		Logger()

	res, err := s.upstream.SaveQuizAnswer(ctx, id.Token, form.Answer(attemptID))
	if err != nil {
		log.Error().Err(err).Msg("Save answer request failed")
		return nil, unavailable("save answer", err)
	}
	if res.Failed() {
		log.Warn().Str("reason", res.Error).Msg("Save answer rejected")
		return nil, rejected("save answer", res.Error)
	}
	log.Debug().Msg("Answer saved")

	return s.attempts.Advance(ctx, id, attemptID)
}

// busyKey scopes the in-flight flag to one user's view of an attempt.
type busyKey struct {
	userID    string
	attemptID string
}

func (s *AnswerService) acquire(key busyKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[key] {
		return false
	}
	s.busy[key] = true
	return true
}

func (s *AnswerService) release(key busyKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, key)
}
