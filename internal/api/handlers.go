package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"roadtrip/internal/metrics"
	"roadtrip/internal/model"
	"roadtrip/internal/plan"
	"roadtrip/internal/store"
)

// PlanHandler handles POST /v1/plan: a stateless planning pass over the
// segments, vehicle, and settings in the request body.
func (s *Server) PlanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validatePlanRequest(&req); err != nil {
		metrics.PlanRuns.WithLabelValues("invalid").Inc()
		writeProblem(w, http.StatusBadRequest, "Invalid plan request", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, s.runPlan(req))
}

// runPlan applies pricing defaults, runs the pipeline, and records
// metrics for the pass.
func (s *Server) runPlan(req model.PlanRequest) model.PlanResult {
	s.applyPricingDefaults(&req.Settings)
	start := time.Now()
	res := plan.BuildPlan(req)
	metrics.PlanDuration.Observe(float64(time.Since(start).Milliseconds()))
	metrics.PlanRuns.WithLabelValues("ok").Inc()
	for _, wn := range res.Warnings {
		metrics.PlanWarnings.WithLabelValues(wn.Code).Inc()
	}
	return res
}

func (s *Server) applyPricingDefaults(st *model.TripSettings) {
	if st.GasPricePerLiter <= 0 {
		st.GasPricePerLiter = s.Pricing.GasPricePerLiter
	}
	if st.HotelNightly <= 0 {
		st.HotelNightly = s.Pricing.HotelNightly
	}
	if st.MealPrice <= 0 {
		st.MealPrice = s.Pricing.MealPrice
	}
}

// VehiclesHandler handles POST/GET /v1/vehicles
func (s *Server) VehiclesHandler(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	switch r.Method {
	case http.MethodPost:
		if !p.CanWrite() {
			writeProblem(w, 403, "Forbidden", "planner or admin required", r.URL.Path)
			return
		}
		var v model.Vehicle
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if v.TankLiters <= 0 || v.LitersPer100Km <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid vehicle", "tankLiters and litersPer100Km must be > 0", r.URL.Path)
			return
		}
		created, err := s.Store.CreateVehicle(r.Context(), p.Tenant, v)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create vehicle failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		limit := queryInt(r, "limit", 100)
		items, next, err := s.Store.ListVehicles(r.Context(), p.Tenant, cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List vehicles failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// VehicleByIDHandler handles GET/PUT/DELETE /v1/vehicles/{id}
func (s *Server) VehicleByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/vehicles/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	p := s.getPrincipal(r)
	switch r.Method {
	case http.MethodGet:
		v, err := s.Store.GetVehicle(r.Context(), p.Tenant, id)
		if err != nil {
			s.storeProblem(w, r, "Get vehicle failed", err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	case http.MethodPut:
		if !p.CanWrite() {
			writeProblem(w, 403, "Forbidden", "planner or admin required", r.URL.Path)
			return
		}
		var v model.Vehicle
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		updated, err := s.Store.UpdateVehicle(r.Context(), p.Tenant, id, v)
		if err != nil {
			s.storeProblem(w, r, "Update vehicle failed", err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if !p.CanWrite() {
			writeProblem(w, 403, "Forbidden", "planner or admin required", r.URL.Path)
			return
		}
		if err := s.Store.DeleteVehicle(r.Context(), p.Tenant, id); err != nil {
			s.storeProblem(w, r, "Delete vehicle failed", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// TripsHandler handles POST/GET /v1/trips
func (s *Server) TripsHandler(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	switch r.Method {
	case http.MethodPost:
		if !p.CanWrite() {
			writeProblem(w, 403, "Forbidden", "planner or admin required", r.URL.Path)
			return
		}
		var t model.Trip
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if t.VehicleID != "" {
			v, err := s.Store.GetVehicle(r.Context(), p.Tenant, t.VehicleID)
			if err != nil {
				s.storeProblem(w, r, "Resolve vehicle failed", err)
				return
			}
			t.Vehicle = v
		}
		req := model.PlanRequest{Segments: t.Segments, Vehicle: t.Vehicle, Settings: t.Settings, Geometry: t.Geometry}
		if err := validatePlanRequest(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid trip", err.Error(), r.URL.Path)
			return
		}
		created, err := s.Store.CreateTrip(r.Context(), p.Tenant, t)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create trip failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		limit := queryInt(r, "limit", 100)
		items, next, err := s.Store.ListTrips(r.Context(), p.Tenant, cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List trips failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// TripByIDHandler handles /v1/trips/{id} plus the subresources
// /plan, /stops/{stopId}, /events/stream, and /events/ws.
func (s *Server) TripByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/trips/")
	if rest == r.URL.Path || rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	p := s.getPrincipal(r)

	if len(parts) > 1 {
		switch {
		case parts[1] == "plan":
			s.tripPlan(w, r, p, id)
		case parts[1] == "stops" && len(parts) > 2:
			s.tripStopOverride(w, r, p, id, parts[2])
		case parts[1] == "events" && len(parts) > 2 && parts[2] == "stream":
			s.tripEventsStream(w, r, p, id)
		case parts[1] == "events" && len(parts) > 2 && parts[2] == "ws":
			s.TripEventsWSHandler(w, r, p, id)
		default:
			writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := s.Store.GetTrip(r.Context(), p.Tenant, id)
		if err != nil {
			s.storeProblem(w, r, "Get trip failed", err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	case http.MethodPut:
		if !p.CanWrite() {
			writeProblem(w, 403, "Forbidden", "planner or admin required", r.URL.Path)
			return
		}
		var t model.Trip
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		req := model.PlanRequest{Segments: t.Segments, Vehicle: t.Vehicle, Settings: t.Settings, Geometry: t.Geometry}
		if err := validatePlanRequest(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid trip", err.Error(), r.URL.Path)
			return
		}
		updated, err := s.Store.UpdateTrip(r.Context(), p.Tenant, id, t)
		if err != nil {
			s.storeProblem(w, r, "Update trip failed", err)
			return
		}
		s.Broker.Publish(id, SSEEvent{Type: "trip.updated", Data: map[string]any{"tripId": id, "version": updated.Version}})
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if !p.CanWrite() {
			writeProblem(w, 403, "Forbidden", "planner or admin required", r.URL.Path)
			return
		}
		if err := s.Store.DeleteTrip(r.Context(), p.Tenant, id); err != nil {
			s.storeProblem(w, r, "Delete trip failed", err)
			return
		}
		s.Cache.Drop(id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// tripPlan handles POST /v1/trips/{id}/plan: run (or serve the cached)
// plan for the saved draft at its current version.
func (s *Server) tripPlan(w http.ResponseWriter, r *http.Request, p Principal, id string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	t, err := s.Store.GetTrip(r.Context(), p.Tenant, id)
	if err != nil {
		s.storeProblem(w, r, "Get trip failed", err)
		return
	}
	if res, ok := s.Cache.Get(t.ID, t.Version); ok {
		writeJSON(w, http.StatusOK, map[string]any{"tripId": t.ID, "version": t.Version, "plan": res})
		return
	}
	res := s.runPlan(model.PlanRequest{
		Segments:  t.Segments,
		Vehicle:   t.Vehicle,
		Settings:  t.Settings,
		Geometry:  t.Geometry,
		Overrides: t.Overrides,
	})
	s.Cache.Put(t.ID, t.Version, res)
	s.Broker.Publish(t.ID, SSEEvent{Type: "plan.updated", Data: map[string]any{
		"tripId":   t.ID,
		"version":  t.Version,
		"days":     len(res.Days),
		"warnings": len(res.Warnings),
	}})
	writeJSON(w, http.StatusOK, map[string]any{"tripId": t.ID, "version": t.Version, "plan": res})
}

// tripStopOverride handles PATCH /v1/trips/{id}/stops/{stopId}: persist
// one accept/dismiss/duration decision against a suggested stop.
func (s *Server) tripStopOverride(w http.ResponseWriter, r *http.Request, p Principal, id, stopID string) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !p.CanWrite() {
		writeProblem(w, 403, "Forbidden", "planner or admin required", r.URL.Path)
		return
	}
	var ov model.StopOverride
	if err := json.NewDecoder(r.Body).Decode(&ov); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if ov.Accepted == nil && ov.Dismissed == nil && ov.DurationMin == nil {
		writeProblem(w, http.StatusBadRequest, "Empty override", "set accepted, dismissed, or durationMin", r.URL.Path)
		return
	}
	if ov.DurationMin != nil && *ov.DurationMin <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid override", "durationMin must be > 0", r.URL.Path)
		return
	}
	t, err := s.Store.SaveStopOverride(r.Context(), p.Tenant, id, stopID, ov)
	if err != nil {
		s.storeProblem(w, r, "Save override failed", err)
		return
	}
	s.Broker.Publish(id, SSEEvent{Type: "stop.overridden", Data: map[string]any{
		"tripId":  id,
		"stopId":  stopID,
		"version": t.Version,
	}})
	writeJSON(w, http.StatusOK, t)
}

// tripEventsStream handles GET /v1/trips/{id}/events/stream (SSE).
func (s *Server) tripEventsStream(w http.ResponseWriter, r *http.Request, p Principal, id string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, err := s.Store.GetTrip(r.Context(), p.Tenant, id); err != nil {
		s.storeProblem(w, r, "Get trip failed", err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, 500, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)
	// initial heartbeat
	fmt.Fprintf(w, "event: heartbeat\n")
	fmt.Fprintf(w, "data: {\"tripId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
	flusher.Flush()
	notify := r.Context().Done()
	for {
		select {
		case <-notify:
			return
		case evt := <-ch:
			b, _ := json.Marshal(evt.Data)
			fmt.Fprintf(w, "event: %s\n", evt.Type)
			fmt.Fprintf(w, "data: %s\n\n", string(b))
			flusher.Flush()
		case <-time.After(15 * time.Second):
			fmt.Fprintf(w, "event: heartbeat\n")
			fmt.Fprintf(w, "data: {\"tripId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
			flusher.Flush()
		}
	}
}

// Health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	// Check DB connectivity when using Postgres store
	type pinger interface{ Ping(ctx context.Context) error }
	if pg, ok := s.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pg.Ping(ctx); err != nil {
			writeProblem(w, 503, "Not Ready", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, 200, map[string]string{"status": "ready"})
}

func (s *Server) storeProblem(w http.ResponseWriter, r *http.Request, title string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error(), r.URL.Path)
		return
	}
	writeProblem(w, http.StatusInternalServerError, title, err.Error(), r.URL.Path)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n := def
	fmt.Sscanf(v, "%d", &n)
	return n
}
