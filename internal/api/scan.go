package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-onewire/internal/discovery"
)

// ScanResponse summarises a completed on-demand scan.
type ScanResponse struct {
	ScanID       string `json:"scan_id"`
	SensorsFound int    `json:"sensors_found"`
	TopLevel     int    `json:"top_level"`
	Errors       int    `json:"errors"`
}

// handleTriggerScan runs an immediate bus scan and returns its outcome.
//
// The scan runs synchronously within the request: bus enumeration is
// bounded by the owserver timeouts, so the round trip stays well inside
// the server's write timeout. A scan already in flight yields 409.
func (s *Server) handleTriggerScan(w http.ResponseWriter, r *http.Request) {
	result, err := s.scanner.Scan(r.Context())
	if err != nil {
		if errors.Is(err, discovery.ErrScanInProgress) {
			writeConflict(w, "a scan is already in progress")
			return
		}
		s.logger.Error("on-demand scan", "error", err)
		writeInternalError(w, "scan failed")
		return
	}

	writeJSON(w, http.StatusOK, ScanResponse{
		ScanID:       result.Run.ID,
		SensorsFound: result.Run.SensorsFound,
		TopLevel:     len(result.Items),
		Errors:       result.Run.Errors,
	})
}
