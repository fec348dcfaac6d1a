// Package mock is an in-process stand-in for the AWX API. It serves the ping
// and jobs endpoints behind Basic auth and advances a small set of jobs
// through their lifecycle on a ticker, so the monitor can be demoed and
// tested without a controller.
package mock

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/awx-monitor/tui/internal/awx"
)

// Version is reported by the ping endpoint.
const Version = "24.6.1-mock"

const (
	defaultPageSize = 25
	maxPageSize     = 200
	spawnEvery      = 4
)

type mockJob struct {
	job      awx.Job
	runTicks int // ticks spent running before finishing
	fail     bool
	ran      int
}

var templates = []struct {
	name       string
	launchType string
	runTicks   int
	fail       bool
}{
	{"Deploy web tier", "manual", 3, false},
	{"Patch database hosts", "scheduled", 5, true},
	{"Rotate TLS certificates", "scheduled", 2, false},
	{"Provision staging", "manual", 4, true},
	{"Inventory sync", "scheduled", 1, false},
	{"Backup configs", "workflow", 2, false},
	{"Run compliance scan", "relaunch", 6, true},
}

// Server is the fake API. The zero value is not usable; call NewServer.
type Server struct {
	mu       sync.Mutex
	username string
	password string
	jobs     []*mockJob
	nextID   int
	tick     int
	expired  bool
	now      func() time.Time
}

// NewServer creates a server accepting username/password and seeds it with
// one job per lifecycle stage.
func NewServer(username, password string) *Server {
	s := &Server{
		username: username,
		password: password,
		nextID:   100,
		now:      time.Now,
	}
	s.seed()
	return s
}

func (s *Server) seed() {
	now := s.now()
	finished := func(ago, took time.Duration) (*time.Time, *time.Time) {
		start := now.Add(-ago)
		end := start.Add(took)
		return &start, &end
	}

	for i, tpl := range templates {
		mj := s.newJob(i)
		switch i % 4 {
		case 0, 1:
			mj.job.Started, mj.job.Finished = finished(time.Duration(len(templates)-i)*time.Hour, time.Duration(30+i*7)*time.Second)
			mj.job.Elapsed = mj.job.Finished.Sub(*mj.job.Started).Seconds()
			mj.job.Status = awx.StatusSuccessful
			if tpl.fail {
				mj.job.Status = awx.StatusFailed
				mj.job.JobExplanation = "Previous Task Failed: {\"job_type\": \"project_update\"}"
			}
		case 2:
			mj.job.Status = awx.StatusPending
		default:
			mj.job.Status = awx.StatusNew
		}
		s.jobs = append(s.jobs, mj)
	}
}

func (s *Server) newJob(n int) *mockJob {
	tpl := templates[n%len(templates)]
	s.nextID++
	return &mockJob{
		job: awx.Job{
			ID:         s.nextID,
			Status:     awx.StatusNew,
			Name:       tpl.name,
			Type:       "job",
			LaunchType: tpl.launchType,
		},
		runTicks: tpl.runTicks,
		fail:     tpl.fail,
	}
}

// Advance moves every unfinished job one step along
// new → pending → running → successful/failed and spawns a new job every few
// ticks.
func (s *Server) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	now := s.now()
	for _, mj := range s.jobs {
		s.advanceJob(mj, now)
	}
	if s.tick%spawnEvery == 0 {
		s.jobs = append(s.jobs, s.newJob(s.tick/spawnEvery+len(templates)))
	}
}

func (s *Server) advanceJob(mj *mockJob, now time.Time) {
	j := &mj.job
	switch j.Status {
	case awx.StatusNew:
		j.Status = awx.StatusPending
	case awx.StatusPending, awx.StatusWaiting:
		start := now
		j.Started = &start
		j.Status = awx.StatusRunning
	case awx.StatusRunning:
		mj.ran++
		j.Elapsed = now.Sub(*j.Started).Seconds()
		if mj.ran < mj.runTicks {
			return
		}
		end := now
		j.Finished = &end
		j.Status = awx.StatusSuccessful
		if mj.fail {
			j.Status = awx.StatusFailed
			j.JobExplanation = "Task failed on 1 host"
		}
	}
}

// Start advances the jobs every interval until ctx is done.
func (s *Server) Start(ctx context.Context, interval time.Duration) {
	go s.run(ctx, interval)
}

func (s *Server) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Advance()
		}
	}
}

// Expire makes every jobs request fail with 401 until the next successful
// ping, which is what a reconnect does.
func (s *Server) Expire() {
	s.mu.Lock()
	s.expired = true
	s.mu.Unlock()
	log.Info().Msg("mock: session expired")
}

// Jobs returns a copy of the current jobs, newest first.
func (s *Server) Jobs() []awx.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Server) snapshot() []awx.Job {
	out := make([]awx.Job, 0, len(s.jobs))
	for _, mj := range s.jobs {
		out = append(out, mj.job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// Handler returns the chi router serving the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(accessLog)

	r.Route("/api/v2", func(r chi.Router) {
		r.Use(s.basicAuth)
		r.Get("/ping/", s.handlePing)
		r.Get("/jobs/", s.handleJobs)
	})
	r.Post("/_mock/expire", s.handleExpire)
	r.Post("/_mock/advance", s.handleAdvance)
	return r
}

// Listen serves the API on addr until ctx is done and returns the base URL.
// An empty addr picks a free loopback port.
func (s *Server) Listen(ctx context.Context, addr string) (string, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", errors.Wrapf(err, "mock listen %s", addr)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("mock: serve")
		}
	}()

	url := "http://" + ln.Addr().String()
	log.Info().Str("url", url).Msg("mock: listening")
	return url, nil
}

func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || !s.validCredentials(user, pass) {
			w.Header().Set("WWW-Authenticate", `Basic realm="awx"`)
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) validCredentials(user, pass string) bool {
	u := subtle.ConstantTimeCompare([]byte(user), []byte(s.username))
	p := subtle.ConstantTimeCompare([]byte(pass), []byte(s.password))
	return u&p == 1
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.expired = false
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, awx.Ping{Version: Version, Active: "awx-mock"})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	expired := s.expired
	jobs := s.snapshot()
	s.mu.Unlock()

	if expired {
		writeDetail(w, http.StatusUnauthorized, "Invalid username/password.")
		return
	}

	if r.URL.Query().Get("order_by") == "id" {
		sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	}

	size := defaultPageSize
	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeDetail(w, http.StatusBadRequest, "Invalid page_size.")
			return
		}
		size = min(n, maxPageSize)
	}

	list := awx.JobList{Count: len(jobs), Results: jobs}
	if len(jobs) > size {
		list.Results = jobs[:size]
		list.Next = r.URL.Path + "?page=2&page_size=" + strconv.Itoa(size)
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleExpire(w http.ResponseWriter, r *http.Request) {
	s.Expire()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.Advance()
	w.WriteHeader(http.StatusNoContent)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("mock: request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
