package service

import (
	"context"
	"time"

	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/notify"
)

// UIStateStore persists per-user visibility flags.
type UIStateStore interface {
	GetDrawer(ctx context.Context, userID string) (bool, error)
	SetDrawer(ctx context.Context, userID string, open bool) error
}

// UIStateService is the single owner of the upload drawer's visibility.
// Forms ask it to open or close the drawer; nothing else writes the flag.
type UIStateService struct {
	store    UIStateStore
	notifier notify.Notifier
}

// NewUIStateService creates a new UIStateService.
func NewUIStateService(store UIStateStore, notifier notify.Notifier) *UIStateService {
	return &UIStateService{store: store, notifier: notifier}
}

// Drawer reports whether the upload drawer is open.
func (s *UIStateService) Drawer(ctx context.Context, userID string) (bool, error) {
	return s.store.GetDrawer(ctx, userID)
}

// SetDrawer opens or closes the drawer and tells the user's sessions.
func (s *UIStateService) SetDrawer(ctx context.Context, userID string, open bool) error {
	if err := s.store.SetDrawer(ctx, userID, open); err != nil {
		return err
	}
	_ = s.notifier.Publish(ctx, userID, model.Event{
		Type:       model.EventDrawer,
		DrawerOpen: &open,
		At:         time.Now().UTC(),
	})
	return nil
}

// ToggleDrawer flips the drawer and returns the new state.
func (s *UIStateService) ToggleDrawer(ctx context.Context, userID string) (bool, error) {
	open, err := s.store.GetDrawer(ctx, userID)
	if err != nil {
		return false, err
	}
	return !open, s.SetDrawer(ctx, userID, !open)
}
