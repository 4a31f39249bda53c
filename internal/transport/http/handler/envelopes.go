package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tutor-radar/internal/application/profile"
	"github.com/tutor-radar/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// VerificationEnvelope wraps every varsity verification step response.
type VerificationEnvelope struct {
	Step        string              `json:"step"`
	Email       string              `json:"email,omitempty"`
	Message     string              `json:"message,omitempty"`
	Affiliation *domain.Affiliation `json:"affiliation,omitempty"`
	Retryable   bool                `json:"retryable,omitempty"`
	Error       string              `json:"error,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
}

// ProfileEnvelope wraps basic editor saves.
type ProfileEnvelope struct {
	Profile *domain.Profile `json:"profile"`
	Screen  profile.Screen  `json:"screen"`
}

// ScreenEnvelope wraps onboarding transitions.
type ScreenEnvelope struct {
	Screen profile.Screen `json:"screen"`
}

// MarkersEnvelope wraps the map marker list.
type MarkersEnvelope struct {
	Data []Marker `json:"data"`
}

// Marker is the public slice of a profile shown on the map.
type Marker struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Role     string  `json:"role"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// DossierURLEnvelope wraps a presigned download link.
type DossierURLEnvelope struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

func toMarkers(profiles []domain.Profile) []Marker {
	out := make([]Marker, 0, len(profiles))
	for _, p := range profiles {
		if p.Lat == nil || p.Lng == nil {
			continue
		}
		out = append(out, Marker{ID: p.UserID, Username: p.Username, Role: p.Role, Lat: *p.Lat, Lng: *p.Lng})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorCode: status})
}
