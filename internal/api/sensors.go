package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-onewire/internal/discovery"
)

// SensorListResponse wraps the sensor inventory.
type SensorListResponse struct {
	Sensors []discovery.Record `json:"sensors"`
	Count   int                `json:"count"`
}

// handleListSensors returns the discovered sensor inventory.
//
// Query parameters:
//   - present=true: only sensors seen on the most recent scan
func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	var (
		sensors []discovery.Record
		err     error
	)

	if r.URL.Query().Get("present") == "true" {
		sensors, err = s.repo.ListPresent(r.Context())
	} else {
		sensors, err = s.repo.List(r.Context())
	}
	if err != nil {
		s.logger.Error("listing sensors", "error", err)
		writeInternalError(w, "failed to list sensors")
		return
	}

	if sensors == nil {
		sensors = []discovery.Record{}
	}

	writeJSON(w, http.StatusOK, SensorListResponse{
		Sensors: sensors,
		Count:   len(sensors),
	})
}

// handleGetSensor returns a single sensor by its bus address.
//
// The id accepts both address forms: "28.AB12CD34EF00" and the
// topic-safe "28_AB12CD34EF00".
func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	id := denormalizeID(chi.URLParam(r, "id"))

	sensor, err := s.repo.GetBySensorID(r.Context(), id)
	if err != nil {
		if errors.Is(err, discovery.ErrNotFound) {
			writeNotFound(w, "sensor not found: "+id)
			return
		}
		s.logger.Error("getting sensor", "sensor", id, "error", err)
		writeInternalError(w, "failed to get sensor")
		return
	}

	writeJSON(w, http.StatusOK, sensor)
}

// denormalizeID converts a topic-safe underscore address back to its
// canonical dotted form. Dotted input passes through unchanged.
func denormalizeID(id string) string {
	if len(id) > 2 && id[2] == '_' {
		return id[:2] + "." + id[3:]
	}
	return id
}
