package api

import (
	"net/http"

	"github.com/seenimoa/dashcore/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config        *config.Config `json:"config"`
	DefaultPeriod string         `json:"default_period,omitempty"`
}

// handleGetConfig returns the running configuration so a front end can pick
// up the default statement, period, pie dataset and palette.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	resp := ConfigResponse{Config: s.cfg}
	if st := s.dash.Statement(s.cfg.Dashboard.Statement); st != nil && s.cfg.Dashboard.Period < len(st.Periods) {
		resp.DefaultPeriod = st.Periods[s.cfg.Dashboard.Period]
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}
