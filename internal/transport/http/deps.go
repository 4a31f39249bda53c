package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/tutor-radar/internal/domain"
)

// ProfileRepository is the minimal interface the router requires from a profile store.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Put(ctx context.Context, p *domain.Profile) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	// ListByRole queries the `role-index` GSI and keeps only located profiles.
	ListByRole(ctx context.Context, role string) ([]domain.Profile, error)
}

// TutorRepository is the minimal interface the router requires from a tutor store.
type TutorRepository interface {
	Get(ctx context.Context, tutorID string) (*domain.Tutor, error)
	Ensure(ctx context.Context, tutorID string) error
	SetVarsityVerification(ctx context.Context, tutorID string, info domain.Affiliation) error
	SetDossier(ctx context.Context, tutorID, objectKey string) error
}

// VerificationCodeRepository is the minimal interface the router requires from a code store.
type VerificationCodeRepository interface {
	Insert(ctx context.Context, v *domain.VerificationCode) error
	LatestMatch(ctx context.Context, userID, code string) (*domain.VerificationCode, error)
}

// ObjectStore is the minimal interface the router requires from an object storage backend.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// CodeNotifier delivers verification codes.
type CodeNotifier interface {
	DeliverCode(ctx context.Context, email, code string) error
}

// MetricsRecorder records workflow counters and serves them.
type MetricsRecorder interface {
	IncCodesIssued()
	IncDispatchFailures()
	ObserveVerification(outcome string)
	Handler() http.Handler
}
