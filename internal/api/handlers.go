package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/neexbeast/tripweaver/internal/auth"
	"github.com/neexbeast/tripweaver/internal/render"
	"github.com/neexbeast/tripweaver/internal/storage"
	"github.com/neexbeast/tripweaver/internal/trip"
	"github.com/neexbeast/tripweaver/internal/workspace"
)

// Settings carries the handler options that come from configuration.
type Settings struct {
	// PublicURL is the externally visible base URL used in share links.
	PublicURL string
	// AllowedOrigins may open the event stream in addition to same-origin pages.
	AllowedOrigins []string
}

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	workspaces  Workspaces
	itineraries ItineraryReader
	metrics     Recorder
	settings    Settings
	upgrader    websocket.Upgrader
	log         *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(workspaces Workspaces, itineraries ItineraryReader, metrics Recorder, settings Settings, log *slog.Logger) *Handlers {
	h := &Handlers{
		workspaces:  workspaces,
		itineraries: itineraries,
		metrics:     metrics,
		settings:    settings,
		log:         log,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// itineraryResponse bundles an itinerary with its list and map renderings.
type itineraryResponse struct {
	Itinerary *trip.Itinerary `json:"itinerary"`
	View      render.View     `json:"view"`
	Map       render.MapView  `json:"map"`
}

func newItineraryResponse(it *trip.Itinerary) itineraryResponse {
	return itineraryResponse{Itinerary: it, View: render.NewView(it), Map: render.NewMapView(it)}
}

// shareURL is the public link to a saved itinerary.
func (h *Handlers) shareURL(it *trip.Itinerary) string {
	return h.settings.PublicURL + "/api/v1/itineraries/" + url.PathEscape(it.ID)
}

// Options handles GET /api/v1/options.
func (h *Handlers) Options(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"budgets":       trip.Budgets,
		"travel_styles": trip.TravelStyles,
		"interests":     trip.InterestOptions,
	})
}

// CreateWorkspace handles POST /api/v1/workspaces.
// An optional bearer token restores an existing session.
func (h *Handlers) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	ws := h.workspaces.Create(r.Context(), bearerToken(r))
	h.metrics.WorkspaceMounted()
	writeJSON(w, http.StatusCreated, ws.State())
}

// GetWorkspace handles GET /api/v1/workspaces/{id}.
func (h *Handlers) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, workspaceFrom(r.Context()).State())
}

// DeleteWorkspace handles DELETE /api/v1/workspaces/{id}.
func (h *Handlers) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	h.workspaces.Delete(workspaceFrom(r.Context()).ID())
	w.WriteHeader(http.StatusNoContent)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn handles POST /api/v1/workspaces/{id}/auth/signin.
func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	h.gate(w, r, "signin", (*workspace.Workspace).SignIn)
}

// SignUp handles POST /api/v1/workspaces/{id}/auth/signup.
func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	h.gate(w, r, "signup", (*workspace.Workspace).SignUp)
}

func (h *Handlers) gate(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	run func(*workspace.Workspace, context.Context, string, string) error,
) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ws := workspaceFrom(r.Context())
	err := run(ws, r.Context(), body.Email, body.Password)
	h.metrics.AuthAttempt(action, err == nil)
	if err != nil {
		status := gateStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error("auth action failed", "action", action, "workspace_id", ws.ID(), "err", err)
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ws.State())
}

func gateStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrMissingEmail), errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// SignOut handles POST /api/v1/workspaces/{id}/auth/signout.
func (h *Handlers) SignOut(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	ws.SignOut(r.Context())
	writeJSON(w, http.StatusOK, ws.State())
}

type fieldValue struct {
	Value string `json:"value"`
}

// SetField handles PUT /api/v1/workspaces/{id}/form/{field}.
func (h *Handlers) SetField(w http.ResponseWriter, r *http.Request) {
	var body fieldValue
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ws := workspaceFrom(r.Context())
	if err := ws.SetField(chi.URLParam(r, "field"), body.Value); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ws.Form())
}

// ToggleInterest handles POST /api/v1/workspaces/{id}/form/interests/{interest}/toggle.
func (h *Handlers) ToggleInterest(w http.ResponseWriter, r *http.Request) {
	interest := chi.URLParam(r, "interest")
	if !slices.Contains(trip.InterestOptions, interest) {
		writeError(w, http.StatusNotFound, "unknown interest "+strconv.Quote(interest))
		return
	}

	writeJSON(w, http.StatusOK, workspaceFrom(r.Context()).ToggleInterest(interest))
}

// Submit handles POST /api/v1/workspaces/{id}/itinerary.
// Generates an itinerary from the form and saves it.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	it, err := ws.Submit(r.Context())
	if err != nil {
		if errors.Is(err, workspace.ErrSignedOut) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.metrics.InsertFailed()
		writeError(w, http.StatusInternalServerError, "failed to generate itinerary")
		return
	}

	h.metrics.ItineraryGenerated()
	writeJSON(w, http.StatusCreated, newItineraryResponse(it))
}

// GetItinerary handles GET /api/v1/workspaces/{id}/itinerary.
func (h *Handlers) GetItinerary(w http.ResponseWriter, r *http.Request) {
	it := workspaceFrom(r.Context()).Itinerary()
	if it == nil {
		writeError(w, http.StatusNotFound, "no itinerary generated")
		return
	}
	writeJSON(w, http.StatusOK, newItineraryResponse(it))
}

// Share handles GET /api/v1/workspaces/{id}/itinerary/share.
func (h *Handlers) Share(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	it := ws.Itinerary()
	if it == nil {
		h.log.Warn("share requested without itinerary", "workspace_id", ws.ID())
		writeError(w, http.StatusNotFound, "no itinerary generated")
		return
	}

	h.metrics.Exported("share")
	writeJSON(w, http.StatusOK, render.Share(it, h.shareURL(it)))
}

// DownloadPDF handles GET /api/v1/workspaces/{id}/itinerary/pdf.
func (h *Handlers) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	it := ws.Itinerary()
	if it == nil {
		h.log.Warn("download requested without itinerary", "workspace_id", ws.ID())
		writeError(w, http.StatusNotFound, "no itinerary generated")
		return
	}

	doc, err := render.Export(it, h.shareURL(it))
	if err != nil {
		h.log.Error("pdf export failed", "itinerary_id", it.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to export itinerary")
		return
	}

	h.metrics.Exported("pdf")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Content)
}

// SharedItinerary handles GET /api/v1/itineraries/{itineraryID}, the target of
// share links.
func (h *Handlers) SharedItinerary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itineraryID")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusNotFound, "itinerary not found")
		return
	}

	it, err := h.itineraries.GetItinerary(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "itinerary not found")
			return
		}
		h.log.Error("db get failed", "itinerary_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, newItineraryResponse(it))
}
