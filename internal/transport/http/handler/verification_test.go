package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tutor-radar/internal/domain"
)

// --- mock ---

type mockVerificationSvc struct{ mock.Mock }

func (m *mockVerificationSvc) SendCode(ctx context.Context, tutorID, email string) (*domain.VerificationCode, error) {
	args := m.Called(ctx, tutorID, email)
	if v, _ := args.Get(0).(*domain.VerificationCode); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationSvc) Verify(ctx context.Context, tutorID, email, code string) (*domain.Affiliation, error) {
	args := m.Called(ctx, tutorID, email, code)
	if a, _ := args.Get(0).(*domain.Affiliation); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationSvc) SaveAffiliation(ctx context.Context, tutorID string, info domain.Affiliation) error {
	return m.Called(ctx, tutorID, info).Error(0)
}

func decodeStep(t *testing.T, rr *httptest.ResponseRecorder) VerificationEnvelope {
	t.Helper()
	var env VerificationEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func TestSendCode_MovesToVerify(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockVerificationSvc{}
	svc.On("SendCode", mock.Anything, "t1", "1805055@cse.buet.ac.bd").Return(&domain.VerificationCode{CodeID: "c1"}, nil)
	h := NewVerificationHandler(svc)

	r := withChiID(bearerReq(t, p, http.MethodPost, "/v1/tutors/t1/varsity/send-code", "t1", "tutor",
		[]byte(`{"email":"1805055@cse.buet.ac.bd"}`)), "t1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.SendCode), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decodeStep(t, rr)
	assert.Equal(t, "VERIFY", env.Step)
	assert.Equal(t, "1805055@cse.buet.ac.bd", env.Email)
	svc.AssertExpectations(t)
}

func TestSendCode_InvalidEmailFailsValidation(t *testing.T) {
	svc := &mockVerificationSvc{}
	h := NewVerificationHandler(svc)

	r := withChiID(httptest.NewRequest(http.MethodPost, "/", nil), "t1")
	r.Body = http.NoBody
	rr := httptest.NewRecorder()
	h.SendCode(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	r = withChiID(httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"email":"not-an-email"}`)), "t1")
	rr = httptest.NewRecorder()
	h.SendCode(rr, r)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "SendCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendCode_OutsideDomainStaysAtInput(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("SendCode", mock.Anything, "t1", "alice@gmail.com").
		Return(nil, fmt.Errorf("outside domain: %w", domain.ErrBadRequest))
	h := NewVerificationHandler(svc)

	r := withChiID(httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"email":"alice@gmail.com"}`)), "t1")
	rr := httptest.NewRecorder()
	h.SendCode(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	env := decodeStep(t, rr)
	assert.Equal(t, "INPUT", env.Step)
	assert.False(t, env.Retryable)
}

func TestVerify_Success(t *testing.T) {
	svc := &mockVerificationSvc{}
	info := &domain.Affiliation{StudentID: "1906004", Batch: "Batch 19", Department: "Electrical Engineering (EEE)", Roll: "004"}
	svc.On("Verify", mock.Anything, "t1", "1906004@buet.ac.bd", "482913").Return(info, nil)
	h := NewVerificationHandler(svc)

	r := withChiID(httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"email":"1906004@buet.ac.bd","code":"482913"}`)), "t1")
	rr := httptest.NewRecorder()
	h.Verify(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decodeStep(t, rr)
	assert.Equal(t, "VERIFIED", env.Step)
	require.NotNil(t, env.Affiliation)
	assert.Equal(t, "004", env.Affiliation.Roll)
}

func TestVerify_CodeMustBeSixDigits(t *testing.T) {
	svc := &mockVerificationSvc{}
	h := NewVerificationHandler(svc)

	r := withChiID(httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"email":"1906004@buet.ac.bd","code":"12ab"}`)), "t1")
	rr := httptest.NewRecorder()
	h.Verify(rr, r)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_InvalidCode(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("Verify", mock.Anything, "t1", mock.Anything, "000000").Return(nil, domain.ErrNotFound)
	h := NewVerificationHandler(svc)

	r := withChiID(httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"email":"1906004@buet.ac.bd","code":"000000"}`)), "t1")
	rr := httptest.NewRecorder()
	h.Verify(rr, r)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "VERIFY", decodeStep(t, rr).Step)
}

func TestVerify_SaveFailureIsRetryable(t *testing.T) {
	svc := &mockVerificationSvc{}
	info := &domain.Affiliation{StudentID: "1906004"}
	svc.On("Verify", mock.Anything, "t1", mock.Anything, "482913").
		Return(info, fmt.Errorf("update tutor: %w", domain.ErrNotSaved))
	h := NewVerificationHandler(svc)

	r := withChiID(httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"email":"1906004@buet.ac.bd","code":"482913"}`)), "t1")
	rr := httptest.NewRecorder()
	h.Verify(rr, r)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	env := decodeStep(t, rr)
	assert.True(t, env.Retryable)
	assert.Equal(t, "VERIFY", env.Step)
}
