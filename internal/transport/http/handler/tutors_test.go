package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tutor-radar/internal/application/dossier"
	"github.com/tutor-radar/internal/domain"
)

// --- mocks ---

type mockTutorReader struct{ mock.Mock }

func (m *mockTutorReader) Get(ctx context.Context, tutorID string) (*domain.Tutor, error) {
	args := m.Called(ctx, tutorID)
	if t, _ := args.Get(0).(*domain.Tutor); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDossierSvc struct{ mock.Mock }

func (m *mockDossierSvc) Upload(ctx context.Context, input dossier.UploadInput) (*dossier.Dossier, error) {
	args := m.Called(ctx, input.TutorID, input.Filename)
	if d, _ := args.Get(0).(*dossier.Dossier); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDossierSvc) DownloadURL(ctx context.Context, tutorID string) (string, error) {
	args := m.Called(ctx, tutorID)
	return args.String(0), args.Error(1)
}

func TestTutorGet(t *testing.T) {
	tutors := &mockTutorReader{}
	tutors.On("Get", mock.Anything, "t1").Return(&domain.Tutor{
		TutorID: "t1", VarsityVerified: true, DossierObject: "dossiers/t1/x.pdf",
		VarsityInfos: &domain.Affiliation{StudentID: "1805055"},
	}, nil)
	h := NewTutorHandler(tutors, &mockDossierSvc{})

	rr := httptest.NewRecorder()
	h.Get(rr, withChiID(httptest.NewRequest(http.MethodGet, "/v1/tutors/t1", nil), "t1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, true, got["varsity_verified"])
	assert.NotContains(t, got, "dossier_object")
}

func TestTutorGet_NotFound(t *testing.T) {
	tutors := &mockTutorReader{}
	tutors.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)
	h := NewTutorHandler(tutors, &mockDossierSvc{})

	rr := httptest.NewRecorder()
	h.Get(rr, withChiID(httptest.NewRequest(http.MethodGet, "/v1/tutors/ghost", nil), "ghost"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUploadDossier(t *testing.T) {
	svc := &mockDossierSvc{}
	svc.On("Upload", mock.Anything, "t1", "cv.pdf").
		Return(&dossier.Dossier{Key: "dossiers/t1/01J-cv.pdf", ContentType: "application/pdf"}, nil)
	h := NewTutorHandler(&mockTutorReader{}, svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "cv.pdf")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("%PDF-1.7\n"))
	require.NoError(t, mw.Close())

	r := withChiID(httptest.NewRequest(http.MethodPost, "/v1/tutors/t1/dossier", &buf), "t1")
	r.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.UploadDossier(rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	svc.AssertExpectations(t)
}

func TestUploadDossier_MissingFile(t *testing.T) {
	h := NewTutorHandler(&mockTutorReader{}, &mockDossierSvc{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file"))
	require.NoError(t, mw.Close())

	r := withChiID(httptest.NewRequest(http.MethodPost, "/v1/tutors/t1/dossier", &buf), "t1")
	r.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.UploadDossier(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDossierURL_Forbidden(t *testing.T) {
	svc := &mockDossierSvc{}
	svc.On("DownloadURL", mock.Anything, "t1").Return("", domain.ErrUnauthorized)
	h := NewTutorHandler(&mockTutorReader{}, svc)

	rr := httptest.NewRecorder()
	h.DossierURL(rr, withChiID(httptest.NewRequest(http.MethodGet, "/v1/tutors/t1/dossier", nil), "t1"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestDossierURL(t *testing.T) {
	svc := &mockDossierSvc{}
	svc.On("DownloadURL", mock.Anything, "t1").Return("https://signed.example/cv", nil)
	h := NewTutorHandler(&mockTutorReader{}, svc)

	rr := httptest.NewRecorder()
	h.DossierURL(rr, withChiID(httptest.NewRequest(http.MethodGet, "/v1/tutors/t1/dossier", nil), "t1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	var env DossierURLEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Equal(t, 900, env.ExpiresIn)
}
