package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vytor/worddee/internal/errors"
	"github.com/vytor/worddee/internal/logger"
	"github.com/vytor/worddee/internal/practice"
)

const defaultTimerTick = 250 * time.Millisecond

// practiceJSON is the practice page state for clients sending
// Accept: application/json.
type practiceJSON struct {
	State          practice.State       `json:"state"`
	Word           any                  `json:"word"`
	Sentence       string               `json:"sentence"`
	Result         *practice.ResultView `json:"result,omitempty"`
	OverlayOpen    bool                 `json:"overlay_open"`
	Error          string               `json:"error,omitempty"`
	ElapsedSeconds int64                `json:"elapsed_seconds"`
	Elapsed        string               `json:"elapsed"`
	StartedAt      string               `json:"started_at"`
	CanSubmit      bool                 `json:"can_submit"`
}

func newPracticeJSON(snap practice.Snapshot) practiceJSON {
	out := practiceJSON{
		State:          snap.State,
		Sentence:       snap.Sentence,
		Result:         snap.Result,
		OverlayOpen:    snap.OverlayOpen,
		Error:          snap.Error,
		ElapsedSeconds: snap.ElapsedSeconds,
		Elapsed:        snap.Elapsed,
		StartedAt:      snap.StartedAtLabel,
		CanSubmit:      snap.CanSubmit,
	}
	if snap.Word != nil {
		out.Word = snap.Word
	}
	return out
}

func (s *Server) respondPractice(w http.ResponseWriter, r *http.Request, snap practice.Snapshot, err error) {
	status := statusOf(err)
	if wantsJSON(r) {
		writeJSON(w, r, status, newPracticeJSON(snap))
		return
	}
	s.render(w, r, status, "pages/word_of_the_day.html", pageData{
		"title": "Word of the day",
		"page":  snap,
	})
}

// handleWordOfTheDay mounts a fresh practice page: a new word request and a
// new attempt timer. Any previous page of this browser is unmounted.
func (s *Server) handleWordOfTheDay(w http.ResponseWriter, r *http.Request) {
	id := sessionFromContext(r.Context())
	logger.FromContext(r.Context()).Debug("mounting practice page")

	snap, err := s.Practice.Mount(r.Context(), id)
	s.respondPractice(w, r, snap, err)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid form body"))
		return
	}
	id := sessionFromContext(r.Context())

	snap, err := s.Practice.Submit(r.Context(), id, r.PostFormValue("sentence"))
	if s.sessionGone(w, r, err) {
		return
	}
	s.respondPractice(w, r, snap, err)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Practice.Retry(sessionFromContext(r.Context()))
	if s.sessionGone(w, r, err) {
		return
	}
	s.respondPractice(w, r, snap, err)
}

func (s *Server) handleCloseResult(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Practice.CloseResult(sessionFromContext(r.Context()))
	if s.sessionGone(w, r, err) {
		return
	}
	s.respondPractice(w, r, snap, err)
}

// sessionGone handles actions posted for a page that is no longer mounted:
// browsers are sent to mount a fresh one, API clients get a 404.
func (s *Server) sessionGone(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		return false
	}
	if wantsJSON(r) {
		handleError(w, r, err)
		return true
	}
	logger.FromContext(r.Context()).Debug("practice page not mounted, remounting")
	http.Redirect(w, r, "/word-of-the-day", http.StatusSeeOther)
	return true
}

// handleTimer streams the attempt timer as Server-Sent Events. The stream
// ends when the client goes away or the page instance is unmounted.
func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	sess, err := s.Practice.Session(sessionFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		handleError(w, r, errors.NewInternalError(fmt.Errorf("streaming unsupported")))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(sess.Context(), cancel)
	defer stop()

	// The stream outlives the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	tick := s.TimerTick
	if tick <= 0 {
		tick = defaultTimerTick
	}

	log.Debug("timer stream opened")
	last := int64(-1)
	for sec := range sess.Timer().Ticks(ctx, tick) {
		if sec == last {
			continue
		}
		last = sec
		fmt.Fprintf(w, "event: tick\ndata: %s\n\n", practice.FormatElapsed(sec))
		flusher.Flush()
	}

	if sess.Context().Err() != nil {
		fmt.Fprint(w, "event: closed\ndata: unmounted\n\n")
		flusher.Flush()
	}
	log.Debug("timer stream closed")
}
