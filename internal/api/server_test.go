package api_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/worddee/internal/api"
	"github.com/vytor/worddee/internal/dashboard"
	"github.com/vytor/worddee/internal/i18n"
	"github.com/vytor/worddee/internal/jobs"
	"github.com/vytor/worddee/internal/metrics"
	"github.com/vytor/worddee/internal/practice"
	"github.com/vytor/worddee/internal/testutil"
	"github.com/vytor/worddee/internal/wordapi"
)

var (
	epoch = time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	ict   = time.FixedZone("ICT", 7*3600)

	runway = map[string]any{
		"id":               7,
		"word":             "runway",
		"definition":       "a strip of hard ground along which aircraft take off and land",
		"difficulty_level": "A2",
	}
)

type ServerSuite struct {
	suite.Suite
	backend *testutil.Backend
	clock   *testutil.FakeClock
	metrics *metrics.Metrics
	tr      i18n.Translator
	server  *api.Server
	web     *httptest.Server
	client  *http.Client
}

func (s *ServerSuite) SetupTest() {
	s.backend = testutil.NewBackend(s.T())
	s.clock = testutil.NewFakeClock(epoch)
	s.metrics = metrics.New()
	s.tr = i18n.New("en")

	client, err := wordapi.New(s.backend.URL, wordapi.WithMetrics(s.metrics))
	s.Require().NoError(err)

	registry := practice.NewRegistry(
		practice.WithClock(s.clock),
		practice.WithLocation(ict),
		practice.WithRegistryMetrics(s.metrics),
	)
	tmpl, err := api.LoadTemplates()
	s.Require().NoError(err)

	s.server = &api.Server{
		Practice:  practice.NewService(client, registry, s.tr, s.metrics),
		Dashboard: dashboard.NewAggregator(client, ict, s.tr),
		Backend:   client,
		Templates: tmpl,
		Metrics:   s.metrics,
		Clock:     s.clock,
		TimerTick: 5 * time.Millisecond,
	}
	s.web = httptest.NewServer(s.server.Routes())
	s.T().Cleanup(s.web.Close)

	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	s.client = &http.Client{
		Jar:     jar,
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) do(method, path string, form url.Values, accept string) (*http.Response, string) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, s.web.URL+path, body)
	s.Require().NoError(err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, string(b)
}

func (s *ServerSuite) get(path string) (*http.Response, string) {
	return s.do(http.MethodGet, path, nil, "")
}

func (s *ServerSuite) submit(sentence string) (*http.Response, string) {
	return s.do(http.MethodPost, "/word-of-the-day/submit", url.Values{"sentence": {sentence}}, "")
}

func (s *ServerSuite) sessionID() string {
	u, _ := url.Parse(s.web.URL)
	for _, c := range s.client.Jar.Cookies(u) {
		if c.Name == "worddee_session" {
			return c.Value
		}
	}
	return ""
}

func (s *ServerSuite) TestHome() {
	resp, body := s.get("/")

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "Welcome to Worddee.ai")
	s.Contains(body, `href="/word-of-the-day"`)
	s.NotEmpty(s.sessionID())
	s.Equal("nosniff", resp.Header.Get("X-Content-Type-Options"))
	s.NotEmpty(resp.Header.Get("X-Request-ID"))
}

func (s *ServerSuite) TestMountLoadsWordOnce() {
	s.backend.Respond(http.MethodGet, "/api/word", http.StatusOK, runway)

	resp, body := s.get("/word-of-the-day")

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "runway")
	s.Contains(body, "Level A2")
	s.Contains(body, "Started: 16:00")
	s.Contains(body, "0:00")
	s.Equal(1, s.backend.Count(http.MethodGet, "/api/word"))
}

func (s *ServerSuite) TestMountFailureShowsMessageWithoutRetry() {
	s.backend.Respond(http.MethodGet, "/api/word", http.StatusInternalServerError, map[string]string{"detail": "boom"})

	resp, body := s.get("/word-of-the-day")

	s.Equal(http.StatusBadGateway, resp.StatusCode)
	s.Contains(body, s.tr.T(i18n.WordLoadFailed))
	s.Contains(body, `data-state="error"`)
	s.Equal(1, s.backend.Count(http.MethodGet, "/api/word"))
}

func (s *ServerSuite) TestSubmitShowsResultOverlay() {
	s.backend.Respond(http.MethodGet, "/api/word", http.StatusOK, runway)
	s.backend.Respond(http.MethodPost, "/api/validate-sentence", http.StatusOK, map[string]any{
		"score":              8.5,
		"level":              "B1",
		"suggestion":         "Nice use of the word.",
		"corrected_sentence": "The plane landed on the runway.",
	})

	s.get("/word-of-the-day")
	s.clock.Advance(42 * time.Second)
	resp, body := s.submit("  The plane landed on the runway.  ")

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "Challenge completed")
	s.Contains(body, "Score 8.5")
	s.Contains(body, "Level B1")
	s.Contains(body, "View my progress")

	var sent *testutil.Recorded
	for _, r := range s.backend.Requests() {
		if r.Path == "/api/validate-sentence" {
			r := r
			sent = &r
		}
	}
	s.Require().NotNil(sent)
	s.Equal(float64(7), sent.Body["word_id"])
	s.Equal("The plane landed on the runway.", sent.Body["sentence"])
	s.Equal(float64(42), sent.Body["duration_seconds"])
	s.Equal("2025-03-04T16:00:42+07:00", sent.Body["client_time_iso"])
}

func (s *ServerSuite) TestBlankSubmitNeverReachesBackend() {
	s.backend.Respond(http.MethodGet, "/api/word", http.StatusOK, runway)
	s.get("/word-of-the-day")

	resp, body := s.submit("   \n\t ")

	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Contains(body, s.tr.T(i18n.SentenceRequired))
	s.Equal(0, s.backend.Count(http.MethodPost, "/api/validate-sentence"))
}

func (s *ServerSuite) TestSubmitFailureKeepsSentence() {
	s.backend.Respond(http.MethodGet, "/api/word", http.StatusOK, runway)
	s.backend.Respond(http.MethodPost, "/api/validate-sentence", http.StatusServiceUnavailable, nil)
	s.get("/word-of-the-day")

	resp, body := s.submit("Runways are long.")

	s.Equal(http.StatusBadGateway, resp.StatusCode)
	s.Contains(body, s.tr.T(i18n.SubmitFailed))
	s.Contains(body, "Runways are long.")
	s.Contains(body, `data-state="ready"`)
	s.NotContains(body, "Challenge completed")
	s.Equal(1, s.backend.Count(http.MethodPost, "/api/validate-sentence"))
}

func (s *ServerSuite) TestCloseAndRetry() {
	s.backend.Respond(http.MethodGet, "/api/word", http.StatusOK, runway)
	s.backend.Respond(http.MethodPost, "/api/validate-sentence", http.StatusOK, map[string]any{
		"score": 6, "level": "A2", "suggestion": "ok", "corrected_sentence": "",
	})
	s.get("/word-of-the-day")
	s.submit("Runway lights.")

	resp, body := s.do(http.MethodPost, "/word-of-the-day/close", url.Values{}, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.NotContains(body, "Challenge completed")
	s.Contains(body, "Runway lights.")

	s.clock.Advance(30 * time.Second)
	resp, body = s.do(http.MethodPost, "/word-of-the-day/retry", url.Values{}, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.NotContains(body, "Runway lights.")
	s.Contains(body, "Started: 16:00")
	s.Equal(1, s.backend.Count(http.MethodGet, "/api/word"))
}

func (s *ServerSuite) TestActionWithoutMountedPage() {
	s.get("/")

	resp, _ := s.submit("hello")
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.Equal("/word-of-the-day", resp.Header.Get("Location"))

	resp, body := s.do(http.MethodPost, "/word-of-the-day/retry", url.Values{}, "application/json")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Contains(body, `"NOT_FOUND"`)
}

func (s *ServerSuite) TestMountJSON() {
	s.backend.Respond(http.MethodGet, "/api/word", http.StatusOK, runway)

	resp, body := s.do(http.MethodGet, "/word-of-the-day", nil, "application/json")
	s.Equal(http.StatusOK, resp.StatusCode)

	var page map[string]any
	s.Require().NoError(json.Unmarshal([]byte(body), &page))
	s.Equal("ready", page["state"])
	s.Equal("0:00", page["elapsed"])
	s.Equal(true, page["can_submit"])
	word := page["word"].(map[string]any)
	s.Equal("runway", word["word"])
}

func (s *ServerSuite) TestTimerStream() {
	s.backend.Respond(http.MethodGet, "/api/word", http.StatusOK, runway)
	s.get("/word-of-the-day")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.web.URL+"/word-of-the-day/timer", nil)
	s.Require().NoError(err)
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	readUntil := func(want string) bool {
		for lines.Scan() {
			if lines.Text() == want {
				return true
			}
		}
		return false
	}

	s.Require().True(readUntil("data: 0:00"))
	s.clock.Advance(65 * time.Second)
	s.Require().True(readUntil("data: 1:05"))

	s.server.Practice.Unmount(s.sessionID())
	s.True(readUntil("event: closed"))
}

func (s *ServerSuite) TestTimerWithoutMountedPage() {
	resp, _ := s.get("/word-of-the-day/timer")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ServerSuite) TestDashboardBothFailShowsOneError() {
	s.backend.Respond(http.MethodGet, "/api/summary", http.StatusInternalServerError, nil)
	s.backend.Respond(http.MethodGet, "/api/history", http.StatusInternalServerError, nil)

	resp, body := s.get("/dashboard")

	s.Equal(http.StatusBadGateway, resp.StatusCode)
	s.Equal(1, strings.Count(body, s.tr.T(i18n.DashboardLoadFailed)))
	s.NotContains(body, "score-chart")
	s.NotContains(body, "Learning consistency")
}

func (s *ServerSuite) TestDashboardOneFailureShowsNoPartialData() {
	s.backend.Respond(http.MethodGet, "/api/summary", http.StatusOK, map[string]any{
		"total_attempts": 4, "average_score": 7.25, "total_minutes_learned": 3, "day_streak": 9,
	})
	s.backend.Respond(http.MethodGet, "/api/history", http.StatusInternalServerError, nil)

	_, body := s.get("/dashboard")

	s.Contains(body, s.tr.T(i18n.DashboardLoadFailed))
	s.NotContains(body, "Day streak")
}

func (s *ServerSuite) TestDashboardEmptyHistory() {
	s.backend.Respond(http.MethodGet, "/api/summary", http.StatusOK, map[string]any{
		"total_attempts": 0, "average_score": 0, "total_minutes_learned": 0,
	})
	s.backend.Respond(http.MethodGet, "/api/history", http.StatusOK, []any{})

	resp, body := s.get("/dashboard")

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "&lt;Create your own data visualization graph or table&gt;")
	s.NotContains(body, "score-chart")
	s.Contains(body, "0m")

	for _, r := range s.backend.Requests() {
		if r.Path == "/api/summary" {
			s.Equal("client_date=2025-03-04", r.Query)
		}
	}
}

func (s *ServerSuite) TestDashboardChartAndLearningTime() {
	s.backend.Respond(http.MethodGet, "/api/summary", http.StatusOK, map[string]any{
		"total_attempts": 3, "average_score": 6.5, "total_minutes_learned": 2, "day_streak": 2,
	})
	s.backend.Respond(http.MethodGet, "/api/history", http.StatusOK, []map[string]any{
		{"id": 3, "score": 9, "duration_seconds": 90, "practiced_at": "2025-03-03T10:00:00+07:00"},
		{"id": 2, "score": 4, "duration_seconds": -5, "practiced_at": "2025-03-02T10:00:00+07:00"},
		{"id": 1, "score": 7, "duration_seconds": 30, "practiced_at": "2025-03-01T10:00:00+07:00"},
	})

	resp, body := s.get("/dashboard")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "score-chart")
	s.Contains(body, "Attempt 3")
	s.Contains(body, "2m")

	resp, body = s.do(http.MethodGet, "/dashboard", nil, "application/json")
	s.Equal(http.StatusOK, resp.StatusCode)

	var view struct {
		DayStreak    int64            `json:"day_streak"`
		AverageScore string           `json:"average_score"`
		LearningTime string           `json:"learning_time"`
		Ordering     string           `json:"ordering"`
		Chart        dashboard.Series `json:"chart"`
	}
	s.Require().NoError(json.Unmarshal([]byte(body), &view))
	s.Equal(int64(2), view.DayStreak)
	s.Equal("6.5", view.AverageScore)
	s.Equal("2m", view.LearningTime)
	s.Equal(string(dashboard.OrderedByTimestamp), view.Ordering)
	s.Equal([]float64{7, 4, 9}, view.Chart.Scores)
	s.Equal([]string{"Attempt 1", "Attempt 2", "Attempt 3"}, view.Chart.Labels)
	s.Equal(float64(10), view.Chart.YMax)
}

func (s *ServerSuite) TestDashboardMalformedTimestampFallsBackToReversal() {
	s.backend.Respond(http.MethodGet, "/api/summary", http.StatusOK, map[string]any{
		"total_attempts": 2, "average_score": 6, "total_minutes_learned": 1,
	})
	s.backend.Respond(http.MethodGet, "/api/history", http.StatusOK, []map[string]any{
		{"id": 2, "score": 8, "practiced_at": "2025-03-03T10:00:00+0700"},
		{"id": 1, "score": 4, "practiced_at": "2025-03-02T10:00:00+07:00"},
	})

	resp, body := s.do(http.MethodGet, "/dashboard", nil, "application/json")
	s.Equal(http.StatusOK, resp.StatusCode)

	var view struct {
		Ordering string           `json:"ordering"`
		Chart    dashboard.Series `json:"chart"`
	}
	s.Require().NoError(json.Unmarshal([]byte(body), &view))
	s.Equal(string(dashboard.OrderedByReversal), view.Ordering)
	s.Equal([]float64{4, 8}, view.Chart.Scores)

	resp, body = s.get("/dashboard")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "score-chart")
	s.NotContains(body, s.tr.T(i18n.DashboardLoadFailed))
}

func (s *ServerSuite) TestDashboardErrorJSON() {
	s.backend.Respond(http.MethodGet, "/api/summary", http.StatusBadGateway, nil)
	s.backend.Respond(http.MethodGet, "/api/history", http.StatusOK, []any{})

	resp, body := s.do(http.MethodGet, "/dashboard", nil, "application/json")
	s.Equal(http.StatusBadGateway, resp.StatusCode)
	s.Contains(body, `"UPSTREAM_ERROR"`)
	s.Contains(body, s.tr.T(i18n.DashboardLoadFailed))
}

func (s *ServerSuite) TestHealthAndReadiness() {
	resp, body := s.get("/healthz")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("OK", body)

	resp, _ = s.get("/readyz")
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)

	s.backend.Respond(http.MethodGet, "/", http.StatusOK, map[string]string{"message": "ok"})
	resp, body = s.get("/readyz")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Ready", body)
}

func (s *ServerSuite) TestReadinessUsesProbeResult() {
	s.backend.Respond(http.MethodGet, "/", http.StatusOK, map[string]string{"message": "ok"})
	probe := &jobs.BackendProbe{Backend: failingPinger{}}
	s.Require().Error(probe.Run(context.Background()))
	s.server.Probe = probe

	resp, _ := s.get("/readyz")
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)
	s.Equal(0, s.backend.Count(http.MethodGet, "/"))
}

func (s *ServerSuite) TestMetricsEndpoint() {
	s.get("/")
	_, body := s.get("/metrics")

	s.Contains(body, `http_requests_total{method="GET",route="/",status="200"} 1`)
	s.Contains(body, "practice_sessions_active")
}

func (s *ServerSuite) TestStaticAssets() {
	resp, body := s.get("/static/app.css")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, ".overlay")
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error {
	return context.DeadlineExceeded
}
