package server

import (
	"encoding/json"
	"net/http"
)

// IndexHandler sends visitors to the dashboard; the silent-login gate and
// RequireSessionAuth between them sort out who needs to log in first.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
	}
}

// DashboardHandler renders the landing page for authenticated users
func (s *Server) DashboardHandler() http.HandlerFunc {
	tmpl, err := lookupTemplate("dashboard.html")
	if err != nil {
		panic("Failed to parse dashboard template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			redirectWithError(w, r, RouteLogin, "Silakan masuk terlebih dahulu")
			return
		}

		data := map[string]interface{}{
			"AppName": s.config.AppName,
			"User":    user,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			s.log.Err(err).Msg("Failed to render dashboard template")
			http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
		}
	}
}

// HealthzHandler reports process liveness
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
