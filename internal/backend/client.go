package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/quizdesk/quizdesk-web/internal/model"
)

// maxReplyBytes caps how much of an upstream reply is read.
const maxReplyBytes = 4 << 20

// HTTPClient implements Client over the upstream's JSON HTTP API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the upstream rooted at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchDocuments lists one page of the caller's documents.
func (c *HTTPClient) FetchDocuments(ctx context.Context, token string, page int) (Result[model.DocumentPage], error) {
	var res Result[model.DocumentPage]
	q := url.Values{"page": {strconv.Itoa(page)}}
	err := c.doJSON(ctx, http.MethodGet, "/documents?"+q.Encode(), token, nil, &res)
	return res, err
}

// UploadDocument streams content to the upstream as a multipart form.
func (c *HTTPClient) UploadDocument(ctx context.Context, token, fileName string, content io.Reader) (Result[model.DocumentMeta], error) {
	var res Result[model.DocumentMeta]

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			pw.CloseWithError(fmt.Errorf("create form file: %w", err))
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(fmt.Errorf("write form file: %w", err))
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/documents", token, pr)
	if err != nil {
		pr.Close()
		return res, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	err = c.do(req, &res)
	return res, err
}

// GenerateQuiz asks the upstream to generate a quiz.
func (c *HTTPClient) GenerateQuiz(ctx context.Context, token string, payload model.GenerateQuizPayload) (Result[model.GeneratedQuiz], error) {
	var res Result[model.GeneratedQuiz]
	err := c.doJSON(ctx, http.MethodPost, "/quizzes/generate", token, payload, &res)
	return res, err
}

// SaveQuizAnswer persists one answer of an attempt.
func (c *HTTPClient) SaveQuizAnswer(ctx context.Context, token string, answer model.QuizAttemptAnswer) (Result[AnswerReceipt], error) {
	var res Result[AnswerReceipt]
	path := "/attempts/" + url.PathEscape(answer.AttemptID) + "/answers"
	err := c.doJSON(ctx, http.MethodPost, path, token, answer, &res)
	return res, err
}

// FetchAttempt returns the attempt and its question sequence.
func (c *HTTPClient) FetchAttempt(ctx context.Context, token, attemptID string) (Result[model.Attempt], error) {
	var res Result[model.Attempt]
	err := c.doJSON(ctx, http.MethodGet, "/attempts/"+url.PathEscape(attemptID), token, nil, &res)
	return res, err
}

// FinishAttempt ends an attempt after its last answer.
func (c *HTTPClient) FinishAttempt(ctx context.Context, token, attemptID string) (Result[AttemptReceipt], error) {
	var res Result[AttemptReceipt]
	path := "/attempts/" + url.PathEscape(attemptID) + "/finish"
	err := c.doJSON(ctx, http.MethodPost, path, token, struct{}{}, &res)
	return res, err
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, body interface{}, dst interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, token, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, dst)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do sends the request and decodes the result envelope. A non-2xx reply that
// still carries an envelope is an application failure, not a Go error.
func (c *HTTPClient) do(req *http.Request, dst interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: status %d: %v", ErrUnexpectedResponse, resp.StatusCode, err)
	}

	if resp.StatusCode >= 300 {
		// Envelope decoded but the status says failure; make sure callers see it.
		var probe struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &probe)
		if probe.Error == "" {
			return fmt.Errorf("%w: status %d", ErrUnexpectedResponse, resp.StatusCode)
		}
	}
	return nil
}
