package service

import (
	"context"
	"testing"

	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestDocumentOptionsFlattensPages(t *testing.T) {
	up := &fakeUpstream{pages: map[int]model.DocumentPage{
		1: {Total: 3, NextPage: intPtr(2), Data: []model.DocumentMeta{{ID: "d1", FileName: "a.pdf"}, {ID: "d2", FileName: "b.pdf"}}},
		2: {Total: 3, PrevPage: intPtr(1), Data: []model.DocumentMeta{{ID: "d3", FileName: "c.pdf"}}},
	}}
	svc := NewDocumentService(up, repository.NewMemoryStore(), zerolog.Nop())

	opts, err := svc.Options(context.Background(), testIdentity, 5)
	require.NoError(t, err)
	assert.Equal(t, []model.DocumentOption{
		{Value: "d1", Label: "a.pdf"},
		{Value: "d2", Label: "b.pdf"},
		{Value: "d3", Label: "c.pdf"},
	}, opts)
	assert.Equal(t, 2, up.pageCalls)
}

func TestDocumentPageIsCachedUntilInvalidated(t *testing.T) {
	up := &fakeUpstream{pages: map[int]model.DocumentPage{
		1: {Total: 1, Data: []model.DocumentMeta{{ID: "d1", FileName: "a.pdf"}}},
	}}
	store := repository.NewMemoryStore()
	svc := NewDocumentService(up, store, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Page(ctx, testIdentity, 1)
	require.NoError(t, err)
	_, err = svc.Page(ctx, testIdentity, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, up.pageCalls)

	require.NoError(t, svc.Invalidate(ctx, testIdentity.UserID))
	_, err = svc.Page(ctx, testIdentity, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, up.pageCalls)
}
