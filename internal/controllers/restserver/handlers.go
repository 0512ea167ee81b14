package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/aeharding/skewt/internal/constants"
	"github.com/aeharding/skewt/internal/database"
	"github.com/aeharding/skewt/internal/metrics"
	"github.com/aeharding/skewt/pkg/parcel"
	"github.com/aeharding/skewt/pkg/responseformat"
)

// maxSteps bounds caller-supplied integration resolution so a single
// request cannot pin a CPU.
const maxSteps = 10000

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// trajectoryResponse reports a computed ascent. Convection is false
// when the parcel never became buoyant-negative within the sampled
// range; that is a valid outcome, not an error.
type trajectoryResponse struct {
	Convection bool           `json:"convection"`
	Trajectory *parcel.Result `json:"trajectory,omitempty"`
}

type soundingRequest struct {
	Name       string           `json:"name"`
	ObservedAt time.Time        `json:"observedAt"`
	Levels     []database.Level `json:"levels"`
}

type surfaceParams struct {
	Temperature float64 `json:"temperature"`
	Pressure    float64 `json:"pressure"`
	Dewpoint    float64 `json:"dewpoint"`
}

type inlineTrajectoryRequest struct {
	Levels  []database.Level `json:"levels"`
	Surface surfaceParams    `json:"surface"`
	Steps   int              `json:"steps"`
}

func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, status int, msg string) {
	h.formatter.WriteResponse(w, req, errorResponse{Error: msg}, status)
}

// Health reports service liveness and version
func (h *Handlers) Health(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, map[string]string{
		"status":  "ok",
		"version": constants.Version,
	}, http.StatusOK)
}

// CreateSounding stores a new sounding in the archive
func (h *Handlers) CreateSounding(w http.ResponseWriter, req *http.Request) {
	var body soundingRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		h.writeError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	snd := &database.Sounding{
		Name:       body.Name,
		ObservedAt: body.ObservedAt,
		Levels:     body.Levels,
	}
	if err := snd.Profile().Validate(); err != nil {
		h.writeError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.controller.store.SaveSounding(req.Context(), snd); err != nil {
		h.controller.logger.Errorf("saving sounding: %v", err)
		h.writeError(w, req, http.StatusInternalServerError, "failed to store sounding")
		return
	}

	h.formatter.WriteResponse(w, req, snd, http.StatusCreated)
}

// ListSoundings returns summaries of all stored soundings
func (h *Handlers) ListSoundings(w http.ResponseWriter, req *http.Request) {
	summaries, err := h.controller.store.ListSoundings(req.Context())
	if err != nil {
		h.controller.logger.Errorf("listing soundings: %v", err)
		h.writeError(w, req, http.StatusInternalServerError, "failed to list soundings")
		return
	}
	if summaries == nil {
		summaries = []database.Summary{}
	}
	h.formatter.WriteResponse(w, req, summaries, http.StatusOK)
}

// GetSounding returns one stored sounding with its levels
func (h *Handlers) GetSounding(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	snd, err := h.controller.store.GetSounding(req.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		h.writeError(w, req, http.StatusNotFound, "sounding not found")
		return
	}
	if err != nil {
		h.controller.logger.Errorf("fetching sounding %s: %v", id, err)
		h.writeError(w, req, http.StatusInternalServerError, "failed to fetch sounding")
		return
	}

	h.formatter.WriteResponse(w, req, snd, http.StatusOK)
}

// StoredTrajectory computes a parcel trajectory against a stored
// sounding. Surface temperature, pressure, and dewpoint come from
// query parameters; steps is optional.
func (h *Handlers) StoredTrajectory(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	snd, err := h.controller.store.GetSounding(req.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		h.writeError(w, req, http.StatusNotFound, "sounding not found")
		return
	}
	if err != nil {
		h.controller.logger.Errorf("fetching sounding %s: %v", id, err)
		h.writeError(w, req, http.StatusInternalServerError, "failed to fetch sounding")
		return
	}

	q := req.URL.Query()
	surface := surfaceParams{}
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"temperature", &surface.Temperature},
		{"pressure", &surface.Pressure},
		{"dewpoint", &surface.Dewpoint},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			h.writeError(w, req, http.StatusBadRequest, fmt.Sprintf("missing query parameter %q", p.name))
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.writeError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid %q: %v", p.name, err))
			return
		}
		*p.dst = v
	}

	steps := h.controller.cfg.Parcel.DefaultSteps
	if raw := q.Get("steps"); raw != "" {
		steps, err = strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid \"steps\": %v", err))
			return
		}
	}

	h.computeTrajectory(w, req, snd.Profile(), steps, surface)
}

// InlineTrajectory computes a parcel trajectory from a sounding
// supplied in the request body, without storing it.
func (h *Handlers) InlineTrajectory(w http.ResponseWriter, req *http.Request) {
	var body inlineTrajectoryRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		h.writeError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	steps := body.Steps
	if steps == 0 {
		steps = h.controller.cfg.Parcel.DefaultSteps
	}

	snd := database.Sounding{Levels: body.Levels}
	h.computeTrajectory(w, req, snd.Profile(), steps, body.Surface)
}

func (h *Handlers) computeTrajectory(w http.ResponseWriter, req *http.Request, snd parcel.Sounding, steps int, surface surfaceParams) {
	if steps < 1 || steps > maxSteps {
		h.writeError(w, req, http.StatusBadRequest, fmt.Sprintf("steps must be between 1 and %d", maxSteps))
		return
	}
	if err := snd.Validate(); err != nil {
		metrics.TrajectoryComputations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		h.writeError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	res, err := parcel.Trajectory(snd, steps, surface.Temperature, surface.Pressure, surface.Dewpoint)
	metrics.TrajectoryDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, parcel.ErrNoConvection):
		metrics.TrajectoryComputations.WithLabelValues(metrics.OutcomeNoConvection).Inc()
		h.formatter.WriteResponse(w, req, trajectoryResponse{Convection: false}, http.StatusOK)
	case err != nil:
		metrics.TrajectoryComputations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		h.writeError(w, req, http.StatusBadRequest, err.Error())
	default:
		metrics.TrajectoryComputations.WithLabelValues(metrics.OutcomeOK).Inc()
		h.formatter.WriteResponse(w, req, trajectoryResponse{Convection: true, Trajectory: res}, http.StatusOK)
	}
}
