package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tutor-radar/internal/application/dossier"
	"github.com/tutor-radar/internal/application/profile"
	"github.com/tutor-radar/internal/application/verification"
	"github.com/tutor-radar/internal/config"
	jwtinfra "github.com/tutor-radar/internal/infrastructure/jwt"
	"github.com/tutor-radar/internal/transport/http/handler"
	appmiddleware "github.com/tutor-radar/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	ProfileRepo ProfileRepository
	TutorRepo   TutorRepository
	CodeRepo    VerificationCodeRepository
	ObjectStore ObjectStore
	Notifier    CodeNotifier
	Metrics     MetricsRecorder
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 1 request/second, burst of 3: every send-code call writes a row and sends mail.
	sendCodeRL := appmiddleware.NewRateLimiter(rate.Limit(1), 3)
	// One verify attempt per 10s per caller, burst of 5, so the 6-digit space
	// cannot be walked even when codes never expire.
	verifyRL := appmiddleware.NewKeyedRateLimiter(rate.Every(10*time.Second), 5, appmiddleware.CallerKey)

	identity := appmiddleware.ContextIdentity{}
	verificationSvc := verification.NewService(verification.ServiceDeps{
		CodeRepo:    deps.CodeRepo,
		TutorRepo:   deps.TutorRepo,
		Identity:    identity,
		Notifier:    deps.Notifier,
		Metrics:     deps.Metrics,
		EmailDomain: cfg.Varsity.EmailDomain,
		Institution: cfg.Varsity.Institution,
		CodeTTL:     cfg.Varsity.CodeTTL,
	})
	profileSvc := profile.NewService(profile.ServiceDeps{
		ProfileRepo: deps.ProfileRepo,
		TutorRepo:   deps.TutorRepo,
		Identity:    identity,
	})
	dossierSvc := dossier.NewService(dossier.ServiceDeps{
		Store:     deps.ObjectStore,
		TutorRepo: deps.TutorRepo,
		Identity:  identity,
	})

	healthH := handler.NewHealthHandler()
	verificationH := handler.NewVerificationHandler(verificationSvc)
	profileH := handler.NewProfileHandler(profileSvc)
	tutorH := handler.NewTutorHandler(deps.TutorRepo, dossierSvc)

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health-check/{action}", healthH.Ping)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/dashboard", profileH.Dashboard)
			r.Put("/profiles/me", profileH.UpdateBasic)
			r.Put("/profiles/me/location", profileH.UpdateLocation)
			r.Get("/map/markers", profileH.Markers)
			r.Post("/onboarding/transition", profileH.Transition)

			r.Get("/tutors/{id}", tutorH.Get)
			r.With(sendCodeRL.Limit).Post("/tutors/{id}/varsity/send-code", verificationH.SendCode)
			r.With(verifyRL.Limit).Post("/tutors/{id}/varsity/verify", verificationH.Verify)
			r.Post("/tutors/{id}/dossier", tutorH.UploadDossier)
			r.Get("/tutors/{id}/dossier", tutorH.DossierURL)
		})
	})

	return r
}
