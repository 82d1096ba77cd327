package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, 5*time.Second)
}

func TestFetchDocuments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"data":{"total":1,"next_page":null,"prev_page":1,"data":[{"id":"d1","file_name":"a.pdf"}]}}`)
	})

	res, err := c.FetchDocuments(context.Background(), "tok", 2)
	require.NoError(t, err)
	require.False(t, res.Failed())
	require.NotNil(t, res.Data)
	assert.Equal(t, 1, res.Data.Total)
	assert.Nil(t, res.Data.NextPage)
	assert.Equal(t, "a.pdf", res.Data.Data[0].FileName)
}

func TestUploadDocumentSendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)
		assert.Equal(t, "notes.pdf", header.Filename)
		assert.Equal(t, "%PDF-1.4", string(body))
		_, _ = io.WriteString(w, `{"data":{"id":"d9","file_name":"notes.pdf"}}`)
	})

	res, err := c.UploadDocument(context.Background(), "tok", "notes.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	require.NotNil(t, res.Data)
	assert.Equal(t, "d9", res.Data.ID)
}

func TestApplicationErrorIsNotGoError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"data":null,"error":"quota exceeded"}`)
	})

	res, err := c.GenerateQuiz(context.Background(), "tok", model.GenerateQuizPayload{Title: "x"})
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Equal(t, "quota exceeded", res.Error)
}

func TestNonEnvelopeReplyIsTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := c.FetchAttempt(context.Background(), "tok", "a1")
	require.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestSaveQuizAnswerPayloadShape(t *testing.T) {
	var got map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/attempts/att-1/answers", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"data":{"id":"ans-1","question_id":"q1"}}`)
	})

	_, err := c.SaveQuizAnswer(context.Background(), "tok", model.QuizAttemptAnswer{
		AttemptID:    "att-1",
		QuestionID:   "q1",
		QuestionType: model.QuestionTypeOpenText,
		AnswerText:   "Paris",
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris", got["answerText"])
	assert.NotContains(t, got, "selectedOptions")
	assert.Equal(t, "open_text_question", got["questionType"])
}

func TestUnreachableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewHTTPClient(srv.URL, time.Second)

	_, err := c.FinishAttempt(context.Background(), "tok", "a1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnexpectedResponse)
}
