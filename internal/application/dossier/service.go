package dossier

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tutor-radar/internal/application/access"
	"github.com/tutor-radar/internal/domain"
	"github.com/tutor-radar/internal/pkg/id"
)

const (
	MaxSize     = 10 << 20
	DownloadTTL = 15 * time.Minute

	sniffLen = 3072
)

var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

type UploadInput struct {
	TutorID  string
	Reader   io.Reader
	Filename string
	Size     int64
}

// Dossier describes a stored CV object.
type Dossier struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Service interface {
	Upload(ctx context.Context, input UploadInput) (*Dossier, error)
	// DownloadURL returns a short-lived GET URL for the tutor's current CV.
	DownloadURL(ctx context.Context, tutorID string) (string, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type tutorStore interface {
	Get(ctx context.Context, tutorID string) (*domain.Tutor, error)
	SetDossier(ctx context.Context, tutorID, objectKey string) error
}

type ServiceDeps struct {
	Store     objectStore
	TutorRepo tutorStore
	Identity  access.IdentityProvider
}

type service struct {
	store    objectStore
	tutors   tutorStore
	identity access.IdentityProvider
}

func NewService(deps ServiceDeps) Service {
	return &service{store: deps.Store, tutors: deps.TutorRepo, identity: deps.Identity}
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*Dossier, error) {
	if _, err := access.RequireOwner(ctx, s.identity, input.TutorID); err != nil {
		return nil, err
	}
	if input.Size > MaxSize {
		return nil, fmt.Errorf("dossier is %d bytes, limit is %d: %w", input.Size, MaxSize, domain.ErrBadRequest)
	}
	tutor, err := s.tutors.Get(ctx, input.TutorID)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(input.Reader)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read dossier: %w", domain.ErrBadRequest)
	}
	contentType := mimetype.Detect(head).String()
	if !allowedTypes[contentType] {
		return nil, fmt.Errorf("dossier type %s not accepted: %w", contentType, domain.ErrBadRequest)
	}

	key := fmt.Sprintf("dossiers/%s/%s-%s", input.TutorID, id.New(), sanitizeFilename(input.Filename))
	if _, err := s.store.Upload(ctx, key, io.LimitReader(br, MaxSize), contentType); err != nil {
		return nil, fmt.Errorf("upload dossier: %w: %w", domain.ErrStore, err)
	}
	if err := s.tutors.SetDossier(ctx, input.TutorID, key); err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, fmt.Errorf("record dossier: %w: %w", domain.ErrStore, err)
	}
	if prev := tutor.DossierObject; prev != "" && prev != key {
		if err := s.store.Delete(ctx, prev); err != nil {
			slog.WarnContext(ctx, "previous dossier not removed", "tutor_id", input.TutorID, "key", prev, "err", err)
		}
	}
	slog.InfoContext(ctx, "dossier uploaded", "tutor_id", input.TutorID, "key", key)
	return &Dossier{Key: key, ContentType: contentType, Size: input.Size}, nil
}

func (s *service) DownloadURL(ctx context.Context, tutorID string) (string, error) {
	if _, err := access.Current(ctx, s.identity); err != nil {
		return "", err
	}
	tutor, err := s.tutors.Get(ctx, tutorID)
	if err != nil {
		return "", err
	}
	if tutor.DossierObject == "" {
		return "", fmt.Errorf("tutor %s has no dossier: %w", tutorID, domain.ErrNotFound)
	}
	url, err := s.store.PresignedURL(ctx, tutor.DossierObject, DownloadTTL)
	if err != nil {
		return "", fmt.Errorf("presign dossier: %w: %w", domain.ErrStore, err)
	}
	return url, nil
}

// sanitizeFilename strips directory components and keeps only alphanumerics,
// dot, dash and underscore.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." && result != ".." {
		return result
	}
	return "_"
}
