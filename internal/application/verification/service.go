package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/tutor-radar/internal/application/access"
	"github.com/tutor-radar/internal/domain"
	"github.com/tutor-radar/internal/infrastructure/metrics"
	"github.com/tutor-radar/internal/pkg/id"
)

const (
	codeMin  = 100000
	codeSpan = 900000 // codes fall in [100000, 999999]
)

type Service interface {
	// SendCode issues a code for email and hands it to the notifier.
	SendCode(ctx context.Context, tutorID, email string) (*domain.VerificationCode, error)
	// Verify matches code, parses email and stores the resulting affiliation.
	// When only the final save fails the parsed affiliation is returned with an
	// error wrapping domain.ErrNotSaved.
	Verify(ctx context.Context, tutorID, email, code string) (*domain.Affiliation, error)
	// SaveAffiliation re-runs only the profile write.
	SaveAffiliation(ctx context.Context, tutorID string, info domain.Affiliation) error
}

type codeStore interface {
	Insert(ctx context.Context, v *domain.VerificationCode) error
	LatestMatch(ctx context.Context, userID, code string) (*domain.VerificationCode, error)
}

type tutorStore interface {
	SetVarsityVerification(ctx context.Context, tutorID string, info domain.Affiliation) error
}

// Notifier delivers an issued code out of band.
type Notifier interface {
	DeliverCode(ctx context.Context, email, code string) error
}

// Recorder receives workflow metrics.
type Recorder interface {
	IncCodesIssued()
	IncDispatchFailures()
	ObserveVerification(outcome string)
}

type ServiceDeps struct {
	CodeRepo    codeStore
	TutorRepo   tutorStore
	Identity    access.IdentityProvider
	Notifier    Notifier
	Metrics     Recorder
	EmailDomain string
	Institution string
	CodeTTL     time.Duration
	// GenerateCode and Now default to GenerateCode and time.Now.
	GenerateCode func() (string, error)
	Now          func() time.Time
}

type service struct {
	codes       codeStore
	tutors      tutorStore
	identity    access.IdentityProvider
	notifier    Notifier
	metrics     Recorder
	emailDomain string
	institution string
	codeTTL     time.Duration
	genCode     func() (string, error)
	now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		codes:       deps.CodeRepo,
		tutors:      deps.TutorRepo,
		identity:    deps.Identity,
		notifier:    deps.Notifier,
		metrics:     deps.Metrics,
		emailDomain: deps.EmailDomain,
		institution: deps.Institution,
		codeTTL:     deps.CodeTTL,
		genCode:     deps.GenerateCode,
		now:         deps.Now,
	}
	if s.genCode == nil {
		s.genCode = GenerateCode
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	return s
}

// GenerateCode returns a uniformly random 6-digit decimal code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return strconv.FormatInt(codeMin+n.Int64(), 10), nil
}

// ValidateDomain accepts email only when it ends with suffix. The match is
// exact and case-sensitive.
func ValidateDomain(email, suffix string) error {
	if !strings.HasSuffix(email, suffix) {
		return fmt.Errorf("email %q outside %s: %w", email, suffix, domain.ErrBadRequest)
	}
	return nil
}

func (s *service) SendCode(ctx context.Context, tutorID, email string) (*domain.VerificationCode, error) {
	if _, err := access.RequireOwner(ctx, s.identity, tutorID); err != nil {
		slog.WarnContext(ctx, "varsity send-code rejected", "tutor_id", tutorID, "err", err)
		return nil, fail("Auth mismatch. Are you signed in as this tutor?", err)
	}
	if err := ValidateDomain(email, s.emailDomain); err != nil {
		return nil, fail(fmt.Sprintf("Only @%s emails are allowed.", s.emailDomain), err)
	}
	code, err := s.genCode()
	if err != nil {
		return nil, fail(genericFailure, err)
	}
	now := s.now().UTC()
	v := &domain.VerificationCode{
		UserID:    tutorID,
		CodeID:    id.NewAt(now),
		Email:     email,
		Code:      code,
		CreatedAt: now,
	}
	if s.codeTTL > 0 {
		v.ExpiresAt = now.Add(s.codeTTL).Unix()
	}
	if err := s.codes.Insert(ctx, v); err != nil {
		slog.ErrorContext(ctx, "verification code insert failed", "tutor_id", tutorID, "email", email, "err", err)
		return nil, fail("Could not store the code: "+err.Error(), fmt.Errorf("insert verification code: %w: %w", domain.ErrStore, err))
	}
	s.metrics.IncCodesIssued()
	slog.InfoContext(ctx, "verification code issued", "tutor_id", tutorID, "email", email, "code_id", v.CodeID)

	if err := s.notifier.DeliverCode(ctx, email, code); err != nil {
		s.metrics.IncDispatchFailures()
		slog.ErrorContext(ctx, "verification code dispatch failed", "tutor_id", tutorID, "email", email, "err", err)
		return nil, fail("The code could not be sent. Please try again.", fmt.Errorf("deliver code: %w: %w", domain.ErrStore, err))
	}
	return v, nil
}

func (s *service) Verify(ctx context.Context, tutorID, email, code string) (*domain.Affiliation, error) {
	if _, err := access.RequireOwner(ctx, s.identity, tutorID); err != nil {
		s.metrics.ObserveVerification(metrics.OutcomeUnauthorized)
		return nil, fail("Auth mismatch. Are you signed in as this tutor?", err)
	}
	match, err := s.codes.LatestMatch(ctx, tutorID, code)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.metrics.ObserveVerification(metrics.OutcomeInvalidCode)
		return nil, fail("Invalid code. Please try again.", err)
	case err != nil:
		s.metrics.ObserveVerification(metrics.OutcomeStoreError)
		slog.ErrorContext(ctx, "verification code lookup failed", "tutor_id", tutorID, "err", err)
		return nil, fail("System error during verification.", fmt.Errorf("match verification code: %w: %w", domain.ErrStore, err))
	case match.Expired(s.now()):
		s.metrics.ObserveVerification(metrics.OutcomeInvalidCode)
		return nil, fail("This code has expired. Request a new one.", fmt.Errorf("code %s expired: %w", match.CodeID, domain.ErrNotFound))
	}

	// A code only vouches for the address it was sent to.
	if email != match.Email {
		s.metrics.ObserveVerification(metrics.OutcomeInvalidCode)
		slog.WarnContext(ctx, "verification email mismatch", "tutor_id", tutorID, "code_id", match.CodeID)
		return nil, fail("Invalid code. Please try again.",
			fmt.Errorf("code %s was issued for another address: %w", match.CodeID, domain.ErrNotFound))
	}
	if err := ValidateDomain(email, s.emailDomain); err != nil {
		s.metrics.ObserveVerification(metrics.OutcomeInvalidCode)
		return nil, fail(fmt.Sprintf("Only @%s emails are allowed.", s.emailDomain), err)
	}

	info, err := ParseAffiliation(email, s.institution)
	if err != nil {
		s.metrics.ObserveVerification(metrics.OutcomeUnparseable)
		return nil, fail("Could not parse a student ID from the email.", err)
	}

	if err := s.save(ctx, tutorID, info); err != nil {
		s.metrics.ObserveVerification(metrics.OutcomeNotSaved)
		return &info, err
	}
	s.metrics.ObserveVerification(metrics.OutcomeVerified)
	return &info, nil
}

func (s *service) SaveAffiliation(ctx context.Context, tutorID string, info domain.Affiliation) error {
	if _, err := access.RequireOwner(ctx, s.identity, tutorID); err != nil {
		return fail("Auth mismatch. Are you signed in as this tutor?", err)
	}
	if err := s.save(ctx, tutorID, info); err != nil {
		return err
	}
	s.metrics.ObserveVerification(metrics.OutcomeVerified)
	return nil
}

func (s *service) save(ctx context.Context, tutorID string, info domain.Affiliation) error {
	if err := s.tutors.SetVarsityVerification(ctx, tutorID, info); err != nil {
		slog.ErrorContext(ctx, "tutor profile update failed", "tutor_id", tutorID, "err", err)
		return fail("Your code was accepted but the tutor profile could not be updated. Retry saving.",
			fmt.Errorf("update tutor %s: %w: %w", tutorID, domain.ErrNotSaved, err))
	}
	slog.InfoContext(ctx, "tutor varsity verified", "tutor_id", tutorID, "student_id", info.StudentID)
	return nil
}

type nopRecorder struct{}

func (nopRecorder) IncCodesIssued()             {}
func (nopRecorder) IncDispatchFailures()        {}
func (nopRecorder) ObserveVerification(string) {}
