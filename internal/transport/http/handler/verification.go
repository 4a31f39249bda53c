package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tutor-radar/internal/application/verification"
	"github.com/tutor-radar/internal/domain"
	"github.com/tutor-radar/internal/pkg/validate"
)

// VerificationHandler exposes the varsity verification workflow.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

func (h *VerificationHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req domain.SendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	wf := verification.NewWorkflow(h.svc, chi.URLParam(r, "id"))
	if err := wf.SendCode(r.Context(), req.Email); err != nil {
		writeStepError(w, wf, err)
		return
	}
	writeJSON(w, http.StatusOK, stepEnvelope(wf))
}

// Verify checks a code against the email entered at the send step. After a
// failed save the client resubmits the same code and email.
func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	wf := verification.ResumeWorkflow(h.svc, chi.URLParam(r, "id"), req.Email)
	if err := wf.Verify(r.Context(), req.Code); err != nil {
		writeStepError(w, wf, err)
		return
	}
	writeJSON(w, http.StatusOK, stepEnvelope(wf))
}

func stepEnvelope(wf *verification.Workflow) VerificationEnvelope {
	return VerificationEnvelope{
		Step:        string(wf.Step()),
		Email:       wf.Email(),
		Message:     wf.Message(),
		Affiliation: wf.Affiliation(),
	}
}

func writeStepError(w http.ResponseWriter, wf *verification.Workflow, err error) {
	status := statusFor(err)
	env := stepEnvelope(wf)
	env.Error = err.Error()
	env.ErrorCode = status
	env.Retryable = errors.Is(err, domain.ErrNotSaved) && wf.Pending()
	writeJSON(w, status, env)
}
