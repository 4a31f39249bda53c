package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tutor-radar/internal/application/access"
	"github.com/tutor-radar/internal/domain"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldLat = "lat"
	fieldLng = "lng"
)

// Dashboard is what the dashboard needs on first load.
type Dashboard struct {
	Identity *domain.Identity `json:"identity"`
	Profile  *domain.Profile  `json:"profile"`
	Screen   Screen           `json:"screen"`
}

type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	// UpdateBasic saves username and role and returns the screen that follows.
	UpdateBasic(ctx context.Context, req domain.UpdateProfileRequest) (*domain.Profile, Screen, error)
	UpdateLocation(ctx context.Context, req domain.UpdateLocationRequest) error
	MapMarkers(ctx context.Context) ([]domain.Profile, error)
	Transition(ctx context.Context, from Screen, e Event) (Screen, error)
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Put(ctx context.Context, p *domain.Profile) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	ListByRole(ctx context.Context, role string) ([]domain.Profile, error)
}

type tutorStore interface {
	Ensure(ctx context.Context, tutorID string) error
}

type ServiceDeps struct {
	ProfileRepo profileStore
	TutorRepo   tutorStore
	Identity    access.IdentityProvider
}

type service struct {
	profiles profileStore
	tutors   tutorStore
	identity access.IdentityProvider
}

func NewService(deps ServiceDeps) Service {
	return &service{profiles: deps.ProfileRepo, tutors: deps.TutorRepo, identity: deps.Identity}
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	ident, err := access.Current(ctx, s.identity)
	if err != nil {
		return nil, err
	}
	p, err := s.find(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Identity: ident, Profile: p, Screen: InitialScreen(p)}, nil
}

func (s *service) UpdateBasic(ctx context.Context, req domain.UpdateProfileRequest) (*domain.Profile, Screen, error) {
	ident, err := access.Current(ctx, s.identity)
	if err != nil {
		return nil, ScreenBasicEdit, err
	}
	p, err := s.find(ctx, ident.UserID)
	if err != nil {
		return nil, ScreenBasicEdit, err
	}
	now := time.Now().UTC()
	if p == nil {
		p = &domain.Profile{UserID: ident.UserID, CreatedAt: now}
	}
	p.Username = req.Username
	p.Role = req.Role
	p.UpdatedAt = now
	if err := s.profiles.Put(ctx, p); err != nil {
		return nil, ScreenBasicEdit, fmt.Errorf("save profile: %w: %w", domain.ErrStore, err)
	}
	if p.Role == domain.RoleTutor {
		if err := s.tutors.Ensure(ctx, p.UserID); err != nil {
			return nil, ScreenBasicEdit, fmt.Errorf("create tutor row: %w: %w", domain.ErrStore, err)
		}
	}
	slog.InfoContext(ctx, "profile saved", "user_id", p.UserID, "role", p.Role)
	next, _ := Next(ScreenBasicEdit, EventBasicSaved, true)
	return p, next, nil
}

func (s *service) UpdateLocation(ctx context.Context, req domain.UpdateLocationRequest) error {
	ident, err := access.Current(ctx, s.identity)
	if err != nil {
		return err
	}
	if req.Lat == nil || req.Lng == nil {
		return fmt.Errorf("lat and lng are required: %w", domain.ErrBadRequest)
	}
	err = s.profiles.Update(ctx, ident.UserID, map[string]interface{}{
		fieldLat: *req.Lat,
		fieldLng: *req.Lng,
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("save location: %w: %w", domain.ErrStore, err)
	}
	return err
}

// MapMarkers lists located profiles of the caller's counterpart role.
func (s *service) MapMarkers(ctx context.Context) ([]domain.Profile, error) {
	ident, err := access.Current(ctx, s.identity)
	if err != nil {
		return nil, err
	}
	p, err := s.find(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	if !p.HasRole() {
		return nil, fmt.Errorf("choose a role before opening the map: %w", domain.ErrBadRequest)
	}
	found, err := s.profiles.ListByRole(ctx, p.Counterpart())
	if err != nil {
		return nil, fmt.Errorf("list %s profiles: %w: %w", p.Counterpart(), domain.ErrStore, err)
	}
	markers := found[:0]
	for _, m := range found {
		if m.UserID != ident.UserID {
			markers = append(markers, m)
		}
	}
	return markers, nil
}

func (s *service) Transition(ctx context.Context, from Screen, e Event) (Screen, error) {
	ident, err := access.Current(ctx, s.identity)
	if err != nil {
		return from, err
	}
	p, err := s.find(ctx, ident.UserID)
	if err != nil {
		return from, err
	}
	return Next(from, e, p.HasRole())
}

// find returns the caller's profile, or nil when none exists yet.
func (s *service) find(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w: %w", domain.ErrStore, err)
	}
	return p, nil
}
