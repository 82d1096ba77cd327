package service

import (
	"context"
	"sync"
	"testing"

	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/notify"
	"github.com/quizdesk/quizdesk-web/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAttempt() *model.Attempt {
	return &model.Attempt{
		QuizTitle: "Geography",
		Questions: []model.Question{
			choiceQuestion("q1", model.QuestionTypeSingleSelect, "o1", "o2", "o3", "o4"),
			choiceQuestion("q2", model.QuestionTypeMultiSelect, "o1", "o2", "o3"),
			{ID: "q3", QuestionText: "Capital of France?", QuestionType: model.QuestionTypeOpenText},
		},
	}
}

type attemptFixture struct {
	up       *fakeUpstream
	store    *repository.MemoryStore
	recorder *notify.Recorder
	attempts *AttemptService
	answers  *AnswerService
}

func newAttemptFixture() *attemptFixture {
	f := &attemptFixture{
		up:       &fakeUpstream{attempt: sampleAttempt()},
		store:    repository.NewMemoryStore(),
		recorder: notify.NewRecorder(),
	}
	f.attempts = NewAttemptService(f.up, f.store, f.recorder, zerolog.Nop())
	f.answers = NewAnswerService(f.up, f.attempts, zerolog.Nop())
	return f
}

func TestAttemptCurrentView(t *testing.T) {
	f := newAttemptFixture()

	view, err := f.attempts.Current(context.Background(), testIdentity, "att-1")
	require.NoError(t, err)
	assert.Equal(t, "q1", view.Question.ID)
	assert.Equal(t, 1, view.CurrentQuestion)
	assert.Equal(t, 3, view.TotalQuestions)
	assert.False(t, view.IsLastQuestion)
	assert.Equal(t, "Next Question", view.SubmitLabel)
	assert.Equal(t, model.TopBar{DisplayName: "ada", Title: "Quiz: Geography", ExitHref: "/"}, view.TopBar)
}

func TestAnswerFlowToCompletion(t *testing.T) {
	f := newAttemptFixture()
	ctx := context.Background()

	res, err := f.answers.Submit(ctx, testIdentity, "att-1", model.SubmitAnswerRequest{
		QuestionID: "q1", SelectedOption: strPtr("o2"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Next)
	assert.Equal(t, "q2", res.Next.Question.ID)

	res, err = f.answers.Submit(ctx, testIdentity, "att-1", model.SubmitAnswerRequest{
		QuestionID: "q2", SelectedOptions: []string{"o3"},
	})
	require.NoError(t, err)
	assert.True(t, res.Next.IsLastQuestion)
	assert.Equal(t, "Submit Quiz", res.Next.SubmitLabel)

	res, err = f.answers.Submit(ctx, testIdentity, "att-1", model.SubmitAnswerRequest{
		QuestionID: "q3", AnswerText: strPtr("Paris"),
	})
	require.NoError(t, err)
	assert.True(t, res.Finalized)
	assert.Equal(t, []string{"att-1"}, f.up.finished)

	sent := f.up.answerCalls()
	require.Len(t, sent, 3)
	assert.Equal(t, []string{"o2"}, sent[0].SelectedOptions)
	assert.Equal(t, []string{"o3"}, sent[1].SelectedOptions)
	assert.Equal(t, "Paris", sent[2].AnswerText)

	toasts := f.recorder.Toasts(testIdentity.UserID)
	require.Len(t, toasts, 1)
	assert.Equal(t, "Quiz submitted", toasts[0].Title)

	_, err = f.answers.Submit(ctx, testIdentity, "att-1", model.SubmitAnswerRequest{
		QuestionID: "q3", AnswerText: strPtr("Paris"),
	})
	assert.ErrorIs(t, err, ErrAttemptCompleted)

	view, err := f.attempts.Current(ctx, testIdentity, "att-1")
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStatusCompleted, view.Status)
	assert.Nil(t, view.Question)
}

func TestAnswerRejectedDoesNotAdvance(t *testing.T) {
	f := newAttemptFixture()
	f.up.answerError = "attempt is locked"
	ctx := context.Background()

	_, err := f.answers.Submit(ctx, testIdentity, "att-1", model.SubmitAnswerRequest{
		QuestionID: "q1", SelectedOption: strPtr("o1"),
	})
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "attempt is locked", ue.Message)

	view, err := f.attempts.Current(ctx, testIdentity, "att-1")
	require.NoError(t, err)
	assert.Equal(t, "q1", view.Question.ID)
}

func TestAnswerTransportFailureDoesNotAdvance(t *testing.T) {
	f := newAttemptFixture()
	f.up.answerErr = errConnRefused

	_, err := f.answers.Submit(context.Background(), testIdentity, "att-1", model.SubmitAnswerRequest{
		QuestionID: "q1", SelectedOption: strPtr("o1"),
	})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Len(t, f.up.answerCalls(), 1)

	view, err := f.attempts.Current(context.Background(), testIdentity, "att-1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.CurrentQuestion)
}

func TestAnswerValidationMakesNoCall(t *testing.T) {
	f := newAttemptFixture()
	ctx := context.Background()

	_, err := f.answers.Submit(ctx, testIdentity, "att-1", model.SubmitAnswerRequest{QuestionID: "q1"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.answers.Submit(ctx, testIdentity, "att-1", model.SubmitAnswerRequest{
		QuestionID: "q2", SelectedOptions: []string{"o1"},
	})
	assert.ErrorIs(t, err, ErrQuestionMismatch)

	assert.Empty(t, f.up.answerCalls())
}

func TestAnswerSubmitIsSerializedPerAttempt(t *testing.T) {
	f := newAttemptFixture()
	ctx := context.Background()
	_, err := f.attempts.Current(ctx, testIdentity, "att-1")
	require.NoError(t, err)

	entered := make(chan struct{})
	unblock := make(chan struct{})
	var once sync.Once
	f.up.onAnswer = func() {
		once.Do(func() {
			close(entered)
			<-unblock
		})
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.answers.Submit(ctx, testIdentity, "att-1", model.SubmitAnswerRequest{
			QuestionID: "q1", SelectedOption: strPtr("o1"),
		})
		done <- err
	}()

	<-entered
	_, err = f.answers.Submit(ctx, testIdentity, "att-1", model.SubmitAnswerRequest{
		QuestionID: "q1", SelectedOption: strPtr("o1"),
	})
	assert.ErrorIs(t, err, ErrSubmitBusy)

	close(unblock)
	require.NoError(t, <-done)

	res, err := f.answers.Submit(ctx, testIdentity, "att-1", model.SubmitAnswerRequest{
		QuestionID: "q2", SelectedOptions: []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, "q3", res.Next.Question.ID)
	assert.Len(t, f.up.answerCalls(), 2)
}

func TestAttemptCacheIsScopedPerUser(t *testing.T) {
	f := newAttemptFixture()
	ctx := context.Background()

	_, err := f.attempts.Current(ctx, testIdentity, "att-1")
	require.NoError(t, err)

	// The upstream refuses everyone else; a cached copy must not answer for it.
	f.up.setAttempt(nil)

	view, err := f.attempts.Current(ctx, otherIdentity, "att-1")
	assert.ErrorIs(t, err, ErrUpstreamRejected)
	assert.Nil(t, view)

	_, err = f.answers.Submit(ctx, otherIdentity, "att-1", model.SubmitAnswerRequest{
		QuestionID: "q1", SelectedOption: strPtr("o1"),
	})
	assert.ErrorIs(t, err, ErrUpstreamRejected)
	assert.Empty(t, f.up.answerCalls())

	view, err = f.attempts.Current(ctx, testIdentity, "att-1")
	require.NoError(t, err)
	assert.Equal(t, "q1", view.Question.ID)
}

func TestAttemptPointerIsPerUser(t *testing.T) {
	f := newAttemptFixture()
	ctx := context.Background()

	_, err := f.answers.Submit(ctx, testIdentity, "att-1", model.SubmitAnswerRequest{
		QuestionID: "q1", SelectedOption: strPtr("o2"),
	})
	require.NoError(t, err)

	view, err := f.attempts.Current(ctx, otherIdentity, "att-1")
	require.NoError(t, err)
	assert.Equal(t, "q1", view.Question.ID)

	view, err = f.attempts.Current(ctx, testIdentity, "att-1")
	require.NoError(t, err)
	assert.Equal(t, "q2", view.Question.ID)
}

func TestSubmitBusyFlagIsPerUser(t *testing.T) {
	f := newAttemptFixture()
	ctx := context.Background()

	entered := make(chan struct{})
	unblock := make(chan struct{})
	var once sync.Once
	f.up.onAnswer = func() {
		once.Do(func() {
			close(entered)
			<-unblock
		})
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.answers.Submit(ctx, testIdentity, "att-1", model.SubmitAnswerRequest{
			QuestionID: "q1", SelectedOption: strPtr("o1"),
		})
		done <- err
	}()

	<-entered
	_, err := f.answers.Submit(ctx, otherIdentity, "att-1", model.SubmitAnswerRequest{
		QuestionID: "q1", SelectedOption: strPtr("o1"),
	})
	require.NoError(t, err)

	close(unblock)
	require.NoError(t, <-done)
}
