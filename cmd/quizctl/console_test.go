package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleNotifier(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	n := newConsoleNotifier(&buf)
	ctx := context.Background()

	require.NoError(t, n.Publish(ctx, "u", model.ToastEvent(model.ToastError, "File upload failed.", "Your file b.pdf failed to upload.")))
	require.NoError(t, n.Publish(ctx, "u", model.Event{Type: model.EventUploadProgress, Progress: &model.UploadProgress{Progress: 50, Settled: 1, Total: 2}}))
	require.NoError(t, n.Publish(ctx, "u", model.Event{Type: model.EventUploadProgress, Progress: &model.UploadProgress{Total: 2}}))
	require.NoError(t, n.Publish(ctx, "u", model.Event{Type: model.EventBatchCompleted}))

	assert.Equal(t,
		"✘ File upload failed. Your file b.pdf failed to upload.\n"+
			"[##########----------]  50% (1/2)\n"+
			"Upload finished.\n",
		buf.String())
}

func TestProgressBarClamps(t *testing.T) {
	assert.Equal(t, "[----]", progressBar(-5, 4))
	assert.Equal(t, "[####]", progressBar(250, 4))
	assert.Equal(t, "[##--]", progressBar(200.0/3.0, 4))
}

func TestIdentityFromToken(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    "user-7",
		"emails": []string{"grace@example.com"},
	})
	signed, err := tok.SignedString([]byte("whatever"))
	require.NoError(t, err)

	id := identityFromToken(signed)
	assert.Equal(t, "user-7", id.UserID)
	assert.Equal(t, "grace@example.com", id.DisplayName())
	assert.Equal(t, signed, id.Token)

	assert.Equal(t, "cli", identityFromToken("opaque-token").UserID)
}

func TestOptionID(t *testing.T) {
	q := &model.Question{MCQOptions: []model.MCQOption{{ID: "o1"}, {ID: "o2"}}}
	assert.Equal(t, "o2", optionID(q, "2"))
	assert.Equal(t, "o1", optionID(q, "o1"))
	assert.Equal(t, "9", optionID(q, "9"))
}
