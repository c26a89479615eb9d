// Package httpapi exposes the fleet registry over HTTP. The service is
// injected per handler so callers control session scope and storage.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fleetcore/internal/adapters/exports"
	"fleetcore/internal/core"
	"fleetcore/pkg/domain"
)

// Handler provides HTTP access to the ship registry and fleet operations.
type Handler struct {
	Service *core.Service
	Exports exports.Scheduler
}

// NewHandler constructs a registry HTTP handler.
func NewHandler(svc *core.Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusInternalServerError, "registry service not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/api/v1/ships":
		h.handleShips(w, r)
	case strings.HasPrefix(path, "/api/v1/ships/"):
		h.handleShip(w, r, strings.TrimPrefix(path, "/api/v1/ships/"))
	case path == "/api/v1/ports":
		h.handlePorts(w, r)
	case path == "/api/v1/ports/distance":
		h.handlePortDistance(w, r)
	case strings.HasPrefix(path, "/api/v1/ports/"):
		h.handlePort(w, r, strings.TrimPrefix(path, "/api/v1/ports/"))
	case path == "/api/v1/fleet/table":
		h.handleTable(w, r)
	case path == "/api/v1/fleet/import":
		h.handleImport(w, r)
	case path == "/api/v1/fleet/export":
		h.handleExport(w, r)
	case path == "/api/v1/fleet/sample":
		h.handleSample(w, r)
	case strings.HasPrefix(path, "/api/v1/fleet/exports"):
		if h.Exports == nil {
			http.NotFound(w, r)
			return
		}
		h.handleExportJobs(w, r, path)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleShips(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		status := strings.TrimSpace(r.URL.Query().Get("status"))
		var ships []core.Ship
		if status != "" {
			ships = h.Service.ShipsByStatus(core.ShipStatus(status))
		} else {
			ships = h.Service.ListShips()
		}
		writeJSON(w, http.StatusOK, map[string]any{"ships": ships})
	case http.MethodPost:
		var input core.ShipInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid ship payload")
			return
		}
		ship, _, err := h.Service.AddShip(r.Context(), input)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"ship": ship})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleShip(w http.ResponseWriter, r *http.Request, remainder string) {
	segments := strings.Split(remainder, "/")
	id := segments[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(segments) == 2 && segments[1] == "status" {
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid status payload")
			return
		}
		ship, _, err := h.Service.UpdateShipStatus(r.Context(), id, core.ShipStatus(req.Status))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ship": ship})
		return
	}

	if len(segments) != 1 {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		ship, ok := h.Service.GetShip(id)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("ship %s not found", id))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ship": ship})
	case http.MethodDelete:
		if _, err := h.Service.RemoveShip(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"removed": id})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handlePorts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"ports": h.Service.ListPorts()})
	case http.MethodPost:
		var input core.PortInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid port payload")
			return
		}
		port, _, err := h.Service.AddPort(r.Context(), input)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"port": port})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type dockRequest struct {
	ShipID string `json:"ship_id"`
}

func (h *Handler) handlePort(w http.ResponseWriter, r *http.Request, remainder string) {
	segments := strings.Split(remainder, "/")
	id := segments[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(segments) == 2 && (segments[1] == "dock" || segments[1] == "release") {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req dockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ShipID) == "" {
			writeError(w, http.StatusBadRequest, "invalid dock payload")
			return
		}
		var port core.Port
		var err error
		if segments[1] == "dock" {
			port, _, err = h.Service.DockShip(r.Context(), id, req.ShipID)
		} else {
			port, _, err = h.Service.ReleaseShip(r.Context(), id, req.ShipID)
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"port": port})
		return
	}

	if len(segments) != 1 {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		port, ok := h.Service.GetPort(id)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("port %s not found", id))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"port": port})
	case http.MethodDelete:
		if _, err := h.Service.RemovePort(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"removed": id})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handlePortDistance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to port ids are required")
		return
	}
	km, err := h.Service.PortDistanceKm(from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"from": from, "to": to, "distance_km": km})
}

// tableStats aggregates the fleet projection for display alongside the rows.
type tableStats struct {
	Count                 int     `json:"count"`
	TotalCapacityTEU      float64 `json:"total_capacity"`
	MeanSpeedKnots        float64 `json:"mean_speed"`
	MeanFuelLitersPerHour float64 `json:"mean_fuel_consumption"`
}

func (h *Handler) handleTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rows := h.Service.Table()
	stats := tableStats{Count: len(rows)}
	for _, row := range rows {
		stats.TotalCapacityTEU += row.CapacityTEU
		stats.MeanSpeedKnots += row.SpeedKnots
		stats.MeanFuelLitersPerHour += row.FuelLitersPerHour
	}
	if stats.Count > 0 {
		stats.MeanSpeedKnots /= float64(stats.Count)
		stats.MeanFuelLitersPerHour /= float64(stats.Count)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"columns": core.TableColumns,
		"rows":    rows,
		"stats":   stats,
	})
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read import payload")
		return
	}
	report, err := h.Service.ImportText(r.Context(), string(payload))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	text, err := h.Service.ExportText()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	filename := fmt.Sprintf("fleet-%s.csv", time.Now().UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = io.WriteString(w, text)
}

func (h *Handler) handleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ships, ports, _, err := h.Service.LoadSampleRegistry(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"loaded": ships, "ports": ports})
}

type exportJobRequest struct {
	Formats     []string `json:"formats"`
	RequestedBy string   `json:"requested_by"`
	Reason      string   `json:"reason"`
}

func (h *Handler) handleExportJobs(w http.ResponseWriter, r *http.Request, path string) {
	if path == "/api/v1/fleet/exports" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req exportJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			writeError(w, http.StatusBadRequest, "invalid export request payload")
			return
		}
		formats := make([]exports.Format, 0, len(req.Formats))
		for _, f := range req.Formats {
			formats = append(formats, exports.Format(strings.ToLower(strings.TrimSpace(f))))
		}
		record, err := h.Exports.Enqueue(r.Context(), exports.Input{
			Formats:     formats,
			RequestedBy: req.RequestedBy,
			Reason:      req.Reason,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"export": record})
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(path, "/api/v1/fleet/exports/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	record, ok := h.Exports.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "export not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"export": record})
}

// writeDomainError maps typed registry errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var dup domain.DuplicateIDError
	var missing domain.NotFoundError
	var invalid domain.ValidationError
	var parse domain.ParseError
	var ruleErr domain.RuleViolationError
	var noBerth domain.NoBerthAvailableError
	switch {
	case errors.As(err, &dup):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &noBerth):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &missing):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &parse):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &ruleErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
