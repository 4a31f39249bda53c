package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tutor-radar/internal/application/profile"
	"github.com/tutor-radar/internal/domain"
	"github.com/tutor-radar/internal/pkg/validate"
)

// ProfileHandler serves the dashboard, onboarding editors and map.
type ProfileHandler struct {
	svc profile.Service
}

func NewProfileHandler(svc profile.Service) *ProfileHandler { return &ProfileHandler{svc: svc} }

func (h *ProfileHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *ProfileHandler) UpdateBasic(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	p, next, err := h.svc.UpdateBasic(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileEnvelope{Profile: p, Screen: next})
}

func (h *ProfileHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.UpdateLocation(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "location saved"})
}

func (h *ProfileHandler) Markers(w http.ResponseWriter, r *http.Request) {
	found, err := h.svc.MapMarkers(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MarkersEnvelope{Data: toMarkers(found)})
}

func (h *ProfileHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Screen profile.Screen `json:"screen"`
		Event  profile.Event  `json:"event"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	next, err := h.svc.Transition(r.Context(), body.Screen, body.Event)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ScreenEnvelope{Screen: next})
}
