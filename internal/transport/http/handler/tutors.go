package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tutor-radar/internal/application/dossier"
	"github.com/tutor-radar/internal/domain"
)

type tutorReader interface {
	Get(ctx context.Context, tutorID string) (*domain.Tutor, error)
}

// TutorHandler serves tutor records and their dossier.
type TutorHandler struct {
	tutors  tutorReader
	dossier dossier.Service
}

func NewTutorHandler(tutors tutorReader, dossierSvc dossier.Service) *TutorHandler {
	return &TutorHandler{tutors: tutors, dossier: dossierSvc}
}

func (h *TutorHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.tutors.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TutorHandler) UploadDossier(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, dossier.MaxSize+1<<20)
	if err := r.ParseMultipartForm(dossier.MaxSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer f.Close()

	d, err := h.dossier.Upload(r.Context(), dossier.UploadInput{
		TutorID:  chi.URLParam(r, "id"),
		Reader:   f,
		Filename: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *TutorHandler) DossierURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.dossier.DownloadURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DossierURLEnvelope{URL: url, ExpiresIn: int(dossier.DownloadTTL.Seconds())})
}
