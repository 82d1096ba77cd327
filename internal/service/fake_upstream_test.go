package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/quizdesk/quizdesk-web/internal/backend"
	"github.com/quizdesk/quizdesk-web/internal/model"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")

// fakeUpstream is a scriptable backend.Client that records every call.
type fakeUpstream struct {
	mu sync.Mutex

	pages      map[int]model.DocumentPage
	pageCalls  int
	uploadFail map[string]string
	uploadErr  map[string]error
	uploads    []string
	// uploadGates holds an upload until its channel is closed.
	uploadGates map[string]chan struct{}

	generateErr   error
	generateError string
	generated     []model.GenerateQuizPayload

	attempt     *model.Attempt
	attemptErr  string
	answerErr   error
	answerError string
	answers     []model.QuizAttemptAnswer
	finished    []string

	// onAnswer runs inside SaveQuizAnswer before it returns.
	onAnswer func()
}

func (f *fakeUpstream) FetchDocuments(_ context.Context, _ string, page int) (backend.Result[model.DocumentPage], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls++
	p, ok := f.pages[page]
	if !ok {
		return backend.Result[model.DocumentPage]{Data: &model.DocumentPage{}}, nil
	}
	return backend.Result[model.DocumentPage]{Data: &p}, nil
}

func (f *fakeUpstream) UploadDocument(_ context.Context, _ string, fileName string, content io.Reader) (backend.Result[model.DocumentMeta], error) {
	_, _ = io.Copy(io.Discard, content)

	f.mu.Lock()
	gate := f.uploadGates[fileName]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, fileName)
	if err := f.uploadErr[fileName]; err != nil {
		return backend.Result[model.DocumentMeta]{}, err
	}
	if msg := f.uploadFail[fileName]; msg != "" {
		return backend.Result[model.DocumentMeta]{Error: msg}, nil
	}
	return backend.Result[model.DocumentMeta]{Data: &model.DocumentMeta{ID: "doc-" + fileName, FileName: fileName}}, nil
}

func (f *fakeUpstream) GenerateQuiz(_ context.Context, _ string, payload model.GenerateQuizPayload) (backend.Result[model.GeneratedQuiz], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generated = append(f.generated, payload)
	if f.generateErr != nil {
		return backend.Result[model.GeneratedQuiz]{}, f.generateErr
	}
	if f.generateError != "" {
		return backend.Result[model.GeneratedQuiz]{Error: f.generateError}, nil
	}
	return backend.Result[model.GeneratedQuiz]{Data: &model.GeneratedQuiz{ID: "quiz-1", Title: payload.Title}}, nil
}

func (f *fakeUpstream) SaveQuizAnswer(_ context.Context, _ string, answer model.QuizAttemptAnswer) (backend.Result[backend.AnswerReceipt], error) {
	if f.onAnswer != nil {
		f.onAnswer()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, answer)
	if f.answerErr != nil {
		return backend.Result[backend.AnswerReceipt]{}, f.answerErr
	}
	if f.answerError != "" {
		return backend.Result[backend.AnswerReceipt]{Error: f.answerError}, nil
	}
	return backend.Result[backend.AnswerReceipt]{Data: &backend.AnswerReceipt{ID: "ans", QuestionID: answer.QuestionID}}, nil
}

func (f *fakeUpstream) FetchAttempt(_ context.Context, _ string, attemptID string) (backend.Result[model.Attempt], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attemptErr != "" {
		return backend.Result[model.Attempt]{Error: f.attemptErr}, nil
	}
	if f.attempt == nil {
		return backend.Result[model.Attempt]{Error: "attempt not found"}, nil
	}
	a := *f.attempt
	a.ID = attemptID
	return backend.Result[model.Attempt]{Data: &a}, nil
}

func (f *fakeUpstream) FinishAttempt(_ context.Context, _ string, attemptID string) (backend.Result[backend.AttemptReceipt], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, attemptID)
	return backend.Result[backend.AttemptReceipt]{Data: &backend.AttemptReceipt{ID: attemptID, Status: "completed"}}, nil
}

// setAttempt changes what FetchAttempt serves; nil makes it refuse.
func (f *fakeUpstream) setAttempt(a *model.Attempt) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempt = a
}

func (f *fakeUpstream) generateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.generated)
}

func (f *fakeUpstream) answerCalls() []model.QuizAttemptAnswer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.QuizAttemptAnswer(nil), f.answers...)
}

// memLedger collects ledger events.
type memLedger struct {
	mu     sync.Mutex
	events []model.UploadEvent
}

func (l *memLedger) Record(_ context.Context, ev model.UploadEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	return nil
}

func (l *memLedger) states(index int) []model.UploadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []model.UploadState
	for _, ev := range l.events {
		if ev.Index == index {
			out = append(out, ev.State)
		}
	}
	return out
}

var (
	testIdentity  = model.Identity{UserID: "user-1", Username: "ada", Token: "tok"}
	otherIdentity = model.Identity{UserID: "user-2", Username: "bob", Token: "tok-2"}
)
