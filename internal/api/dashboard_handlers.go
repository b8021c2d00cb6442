package api

import (
	"net/http"

	"github.com/vytor/worddee/internal/dashboard"
	"github.com/vytor/worddee/internal/errors"
	"github.com/vytor/worddee/internal/logger"
)

type dashboardJSON struct {
	DayStreak           int64            `json:"day_streak"`
	AverageScore        string           `json:"average_score"`
	TotalAttempts       int64            `json:"total_attempts"`
	LearningTime        string           `json:"learning_time"`
	LearningTimeSeconds int64            `json:"learning_time_seconds"`
	Ordering            string           `json:"ordering"`
	Chart               dashboard.Series `json:"chart"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Debug("rendering dashboard")

	view, err := s.Dashboard.Load(r.Context(), s.now())
	status := statusOf(err)

	if wantsJSON(r) {
		if err != nil {
			code := errors.ErrCodeInternal
			if appErr, ok := errors.As(err); ok {
				code = appErr.Code
			}
			writeJSON(w, r, status, errorBody(code, view.Error))
			return
		}
		writeJSON(w, r, status, dashboardJSON{
			DayStreak:           view.DayStreak,
			AverageScore:        view.AverageScore,
			TotalAttempts:       view.Summary.TotalAttempts,
			LearningTime:        view.LearningTime.String(),
			LearningTimeSeconds: view.LearningTime.TotalSeconds,
			Ordering:            string(view.Ordering),
			Chart:               view.Chart,
		})
		return
	}

	s.render(w, r, status, "pages/dashboard.html", pageData{
		"title": "My Progress",
		"view":  view,
	})
}
