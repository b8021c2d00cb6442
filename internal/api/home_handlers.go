package api

import (
	"net/http"

	"github.com/vytor/worddee/internal/logger"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Debug("rendering landing page")
	s.render(w, r, http.StatusOK, "pages/home.html", nil)
}
