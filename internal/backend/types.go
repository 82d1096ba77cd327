package backend

import (
	"context"
	"errors"
	"io"

	"github.com/quizdesk/quizdesk-web/internal/model"
)

// Result is the upstream reply convention: either Data or an application
// level Error string. Transport failures are returned as Go errors instead.
type Result[T any] struct {
	Data  *T     `json:"data"`
	Error string `json:"error,omitempty"`
}

// Failed reports whether the upstream rejected the call.
func (r Result[T]) Failed() bool {
	return r.Error != ""
}

// ErrUnexpectedResponse is returned when the upstream reply is not a result
// envelope at all (proxy error pages, truncated bodies).
var ErrUnexpectedResponse = errors.New("unexpected upstream response")

// Client is the set of upstream calls the quiz frontend depends on.
type Client interface {
	// FetchDocuments lists one page of the caller's uploaded documents.
	FetchDocuments(ctx context.Context, token string, page int) (Result[model.DocumentPage], error)

	// UploadDocument posts one file as multipart field "file".
	UploadDocument(ctx context.Context, token, fileName string, content io.Reader) (Result[model.DocumentMeta], error)

	// GenerateQuiz asks the upstream to generate a quiz.
	GenerateQuiz(ctx context.Context, token string, payload model.GenerateQuizPayload) (Result[model.GeneratedQuiz], error)

	// SaveQuizAnswer persists one answer of an attempt.
	SaveQuizAnswer(ctx context.Context, token string, answer model.QuizAttemptAnswer) (Result[AnswerReceipt], error)

	// FetchAttempt returns the attempt and its question sequence.
	FetchAttempt(ctx context.Context, token, attemptID string) (Result[model.Attempt], error)

	// FinishAttempt ends an attempt after its last answer.
	FinishAttempt(ctx context.Context, token, attemptID string) (Result[AttemptReceipt], error)
}

// AnswerReceipt acknowledges a saved answer.
type AnswerReceipt struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
}

// AttemptReceipt acknowledges a finished attempt.
type AttemptReceipt struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
