package service

import (
	"context"

	"github.com/quizdesk/quizdesk-web/internal/backend"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/notify"
	"github.com/rs/zerolog"
)

const (
	SubmitLabelNext   = "Next Question"
	SubmitLabelFinish = "Submit Quiz"
)

// AttemptStore caches attempts and owns their current-question pointer,
// per user. A miss sends the request to the upstream, which checks the token.
type AttemptStore interface {
	GetAttempt(ctx context.Context, userID, attemptID string) (*model.Attempt, error)
	SaveAttempt(ctx context.Context, userID string, a *model.Attempt) error
	GetState(ctx context.Context, userID, attemptID string) (*model.AttemptState, error)
	SaveState(ctx context.Context, userID string, st *model.AttemptState) error
}

// AttemptService is the only writer of an attempt's pointer. Answer forms
// ask it to advance; they never move the pointer themselves.
type AttemptService struct {
	upstream backend.Client
	store    AttemptStore
	notifier notify.Notifier
	log      zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(upstream backend.Client, store AttemptStore, notifier notify.Notifier, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		upstream: upstream,
		store:    store,
		notifier: notifier,
		log:      log.With().Str("component", "attempt_service").Logger(),
	}
}

// Current returns the view of the question the user is on.
func (s *AttemptService) Current(ctx context.Context, id model.Identity, attemptID string) (*model.QuestionView, error) {
	a, st, err := s.load(ctx, id, attemptID)
	if err != nil {
		return nil, err
	}
	return buildView(id, a, st), nil
}

// CurrentQuestion returns the question an answer must target.
func (s *AttemptService) CurrentQuestion(ctx context.Context, id model.Identity, attemptID string) (*model.Question, error) {
	a, st, err := s.load(ctx, id, attemptID)
	if err != nil {
		return nil, err
	}
	if st.Status == model.AttemptStatusCompleted {
		return nil, ErrAttemptCompleted
	}
	q := a.Questions[st.Current]
	return &q, nil
}

// Advance moves to the next question, or finishes the attempt when the
// current question was the last one.
func (s *AttemptService) Advance(ctx context.Context, id model.Identity, attemptID string) (*model.SubmitAnswerResult, error) {
	a, st, err := s.load(ctx, id, attemptID)
	if err != nil {
		return nil, err
	}
	if st.Status == model.AttemptStatusCompleted {
		return nil, ErrAttemptCompleted
	}

	if st.Current+1 < st.Total {
		st.Current++
		if err := s.store.SaveState(ctx, id.UserID, st); err != nil {
			return nil, err
		}
		return &model.SubmitAnswerResult{Next: buildView(id, a, st)}, nil
	}

	return s.finish(ctx, id, a, st)
}

func (s *AttemptService) finish(ctx context.Context, id model.Identity, a *model.Attempt, st *model.AttemptState) (*model.SubmitAnswerResult, error) {
	log := s.log.With().Str("attempt_id", a.ID).Str("user_id", id.UserID).Logger()

	res, err := s.upstream.FinishAttempt(ctx, id.Token, a.ID)
	if err != nil {
		log.Error().Err(err).Msg("Finish attempt request failed")
		return nil, unavailable("finish attempt", err)
	}
	if res.Failed() {
		log.Warn().Str("reason", res.Error).Msg("Finish attempt rejected")
		return nil, rejected("finish attempt", res.Error)
	}

	st.Status = model.AttemptStatusCompleted
	if err := s.store.SaveState(ctx, id.UserID, st); err != nil {
		return nil, err
	}
	_ = s.notifier.Publish(ctx, id.UserID, model.ToastEvent(model.ToastSuccess, "Quiz submitted", a.QuizTitle))
	log.Info().Int("questions", st.Total).Msg("Attempt finished")

	return &model.SubmitAnswerResult{Finalized: true}, nil
}

func (s *AttemptService) load(ctx context.Context, id model.Identity, attemptID string) (*model.Attempt, *model.AttemptState, error) {
	a, err := s.store.GetAttempt(ctx, id.UserID, attemptID)
	if err != nil {
		s.log.Warn().Err(err).Str("attempt_id", attemptID).Msg("Attempt cache read failed")
		a = nil
	}
	if a == nil {
		res, err := s.upstream.FetchAttempt(ctx, id.Token, attemptID)
		if err != nil {
			return nil, nil, unavailable("fetch attempt", err)
		}
		if res.Failed() {
			return nil, nil, rejected("fetch attempt", res.Error)
		}
		if res.Data == nil {
			return nil, nil, ErrAttemptEmpty
		}
		a = res.Data
		if a.ID == "" {
			a.ID = attemptID
		}
		if err := s.store.SaveAttempt(ctx, id.UserID, a); err != nil {
			s.log.Warn().Err(err).Str("attempt_id", attemptID).Msg("Attempt cache write failed")
		}
	}
	if len(a.Questions) == 0 {
		return nil, nil, ErrAttemptEmpty
	}

	st, err := s.store.GetState(ctx, id.UserID, attemptID)
	if err != nil {
		return nil, nil, err
	}
	if st == nil {
		st = &model.AttemptState{
			AttemptID: attemptID,
			Total:     len(a.Questions),
			Status:    model.AttemptStatusInProgress,
		}
		if err := s.store.SaveState(ctx, id.UserID, st); err != nil {
			return nil, nil, err
		}
	}
	if st.Current >= len(a.Questions) {
		st.Current = len(a.Questions) - 1
	}
	return a, st, nil
}

func buildView(id model.Identity, a *model.Attempt, st *model.AttemptState) *model.QuestionView {
	view := &model.QuestionView{
		AttemptID:      a.ID,
		Status:         st.Status,
		TotalQuestions: st.Total,
		TopBar:         model.NewTopBar(id, a.QuizTitle),
	}
	if st.Status == model.AttemptStatusCompleted {
		view.CurrentQuestion = st.Total
		view.IsLastQuestion = true
		return view
	}

	q := a.Questions[st.Current]
	view.Question = &q
	view.CurrentQuestion = st.Current + 1
	view.IsLastQuestion = st.Current == st.Total-1
	view.SubmitLabel = SubmitLabelNext
	if view.IsLastQuestion {
		view.SubmitLabel = SubmitLabelFinish
	}
	return view
}
