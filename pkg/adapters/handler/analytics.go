package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/wadjakorntonsri/folio/pkg/core/analytics"
	"github.com/wadjakorntonsri/folio/pkg/core/domain"
	"github.com/wadjakorntonsri/folio/pkg/ports"
)

const maxTrackBody = 4 << 10

type AnalyticsHandler struct {
	service  ports.AnalyticsService
	profiles ports.ProfileService
	clients  clientInfo
}

func NewAnalyticsHandler(service ports.AnalyticsService, profiles ports.ProfileService, trustProxy bool) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, profiles: profiles, clients: clientInfo{trustProxy: trustProxy}}
}

// TrackRequest payload
type TrackRequest struct {
	Referrer string `json:"referrer,omitempty"`
}

type trackResponse struct {
	Tracked bool `json:"tracked"`
}

// Track records a public portfolio view. Storage failures never surface to
// the viewer; only an unknown subject key is an error.
func (h *AnalyticsHandler) Track(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("subject_key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "subject key missing"})
		return
	}

	var body TrackRequest
	if r.Body != nil {
		err := json.NewDecoder(io.LimitReader(r.Body, maxTrackBody)).Decode(&body)
		if err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}
	if body.Referrer == "" {
		body.Referrer = r.Header.Get("Referer")
	}

	tracked, err := h.service.Track(r.Context(), ports.TrackRequest{
		SubjectKey: key,
		Addr:       h.clients.addr(r),
		UserAgent:  r.UserAgent(),
		Referrer:   body.Referrer,
		Location:   h.clients.location(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, trackResponse{Tracked: tracked})
}

// Summary returns the caller's own view summary, zeros if nothing was recorded yet.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := h.ownSubject(w, r)
	if !ok {
		return
	}
	if subjectID == "" {
		writeJSON(w, http.StatusOK, analytics.Summary{})
		return
	}

	summary, err := h.service.Summary(r.Context(), subjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Detail returns the caller's own detailed stats, empty if nothing was recorded yet.
func (h *AnalyticsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := h.ownSubject(w, r)
	if !ok {
		return
	}
	if subjectID == "" {
		writeJSON(w, http.StatusOK, analytics.BuildDetail(nil, time.Time{}))
		return
	}

	detail, err := h.service.Detail(r.Context(), subjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ownSubject resolves the authenticated owner to their profile id. An owner
// without a profile yields "" and true.
func (h *AnalyticsHandler) ownSubject(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := UserEmail(r.Context())
	if email == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return "", false
	}

	p, err := h.profiles.GetMine(r.Context(), email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", true
	}
	if err != nil {
		writeError(w, r, err)
		return "", false
	}
	return p.ID, true
}
