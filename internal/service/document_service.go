package service

import (
	"context"

	"github.com/quizdesk/quizdesk-web/internal/backend"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/rs/zerolog"
)

// DocumentCache stores upstream document pages per user. It is only ever
// invalidated as a whole, never patched.
type DocumentCache interface {
	GetPage(ctx context.Context, userID string, page int) (*model.DocumentPage, bool, error)
	SetPage(ctx context.Context, userID string, page int, p *model.DocumentPage) error
	Invalidate(ctx context.Context, userID string) error
}

// DocumentService lists uploaded documents for selection.
type DocumentService struct {
	upstream backend.Client
	cache    DocumentCache
	log      zerolog.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(upstream backend.Client, cache DocumentCache, log zerolog.Logger) *DocumentService {
	return &DocumentService{
		upstream: upstream,
		cache:    cache,
		log:      log.With().Str("component", "document_service").Logger(),
	}
}

// Page returns one page of documents, from cache when possible.
func (s *DocumentService) Page(ctx context.Context, id model.Identity, page int) (*model.DocumentPage, error) {
	if page < 1 {
		page = 1
	}

	if p, ok, err := s.cache.GetPage(ctx, id.UserID, page); err != nil {
		s.log.Warn().Err(err).Int("page", page).Msg("Document cache read failed")
	} else if ok {
		return p, nil
	}

	res, err := s.upstream.FetchDocuments(ctx, id.Token, page)
	if err != nil {
		return nil, unavailable("fetch documents", err)
	}
	if res.Failed() {
		return nil, rejected("fetch documents", res.Error)
	}

	p := res.Data
	if p == nil {
		p = &model.DocumentPage{}
	}
	if p.Data == nil {
		p.Data = []model.DocumentMeta{}
	}

	if err := s.cache.SetPage(ctx, id.UserID, page, p); err != nil {
		s.log.Warn().Err(err).Int("page", page).Msg("Document cache write failed")
	}
	return p, nil
}

// Options flattens pages 1..pages into selector options, in page order.
// It stops early once the upstream reports no next page.
func (s *DocumentService) Options(ctx context.Context, id model.Identity, pages int) ([]model.DocumentOption, error) {
	if pages < 1 {
		pages = 1
	}

	options := []model.DocumentOption{}
	for page := 1; page <= pages; page++ {
		p, err := s.Page(ctx, id, page)
		if err != nil {
			return nil, err
		}
		for _, doc := range p.Data {
			options = append(options, doc.Option())
		}
		if p.NextPage == nil {
			break
		}
	}
	return options, nil
}

// Invalidate drops the user's cached document pages.
func (s *DocumentService) Invalidate(ctx context.Context, userID string) error {
	return s.cache.Invalidate(ctx, userID)
}
