package poller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awx-monitor/tui/internal/awx"
)

type fakeSession struct {
	connected bool
	epoch     uint64
	client    *awx.Client
	expired   int
}

func (f *fakeSession) Connected() bool { return f.connected }
func (f *fakeSession) Epoch() uint64 { return f.epoch }
func (f *fakeSession) Fetcher() *awx.Client { return f.client }

func (f *fakeSession) Expire() bool {
	if !f.connected {
		return false
	}
	f.connected = false
	f.client = nil
	f.epoch++
	f.expired++
	return true
}

type fakeRenderer struct {
	jobs    [][]awx.Job
	errs    []error
	expired int
}

func (r *fakeRenderer) SetJobs(jobs []awx.Job, _ time.Time) { r.jobs = append(r.jobs, jobs) }
func (r *fakeRenderer) SetError(err error) { r.errs = append(r.errs, err) }
func (r *fakeRenderer) SessionExpired() { r.expired++ }

func jobsServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func connectedSession(url string) *fakeSession {
	return &fakeSession{connected: true, epoch: 1, client: awx.NewClient(url, "Basic x")}
}

func TestNewDefaults(t *testing.T) {
	p := New(context.Background(), 0)
	assert.Equal(t, DefaultInterval, p.Interval())
	assert.True(t, p.AutoRefresh())
	assert.False(t, p.Active())
	assert.NotEqual(t, p.ID(), New(context.Background(), 0).ID())
}

func TestStartTwiceLeavesOneChain(t *testing.T) {
	s := &fakeSession{connected: true, epoch: 1}
	p := New(context.Background(), time.Second)

	require.NotNil(t, p.Start(s))
	firstTag := p.tag
	require.NotNil(t, p.Start(s))
	secondTag := p.tag

	assert.Nil(t, p.Update(TickMsg{ID: p.ID(), Tag: firstTag}, s, &fakeRenderer{}),
		"ticks from the replaced chain must die")
	assert.NotNil(t, p.Update(TickMsg{ID: p.ID(), Tag: secondTag}, s, &fakeRenderer{}),
		"the current chain keeps ticking")
	assert.True(t, p.Active())
}

func TestStopKillsChain(t *testing.T) {
	s := &fakeSession{connected: true, epoch: 1}
	p := New(context.Background(), time.Second)
	p.Start(s)
	tag := p.tag

	p.Stop()
	assert.False(t, p.Active())
	assert.Nil(t, p.Update(TickMsg{ID: p.ID(), Tag: tag}, s, &fakeRenderer{}))

	// safe when nothing is running
	p.Stop()
	assert.False(t, p.Active())
}

func TestTickForOtherPollerIgnored(t *testing.T) {
	s := &fakeSession{connected: true, epoch: 1}
	p := New(context.Background(), time.Second)
	p.Start(s)

	assert.Nil(t, p.Update(TickMsg{ID: p.ID() + 1000, Tag: p.tag}, s, &fakeRenderer{}))
}

func TestTickWhileDisconnectedStopsChain(t *testing.T) {
	srv, hits := jobsServer(t, http.StatusOK, `{"results":[]}`)
	s := connectedSession(srv.URL)
	p := New(context.Background(), time.Second)
	p.Start(s)

	s.connected = false
	assert.Nil(t, p.Update(TickMsg{ID: p.ID(), Tag: p.tag}, s, &fakeRenderer{}))
	assert.False(t, p.Active())
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestFetchWhileDisconnectedIsNoop(t *testing.T) {
	p := New(context.Background(), time.Second)
	assert.Nil(t, p.Refresh(&fakeSession{}))
}

func TestFetchRequestsJobsListing(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Write([]byte(`{"results":[{"id":5,"status":"successful"},{"id":3,"status":"failed"}]}`))
	}))
	defer srv.Close()

	s := connectedSession(srv.URL)
	p := New(context.Background(), time.Second)

	msg := p.Refresh(s)()
	jm, ok := msg.(JobsMsg)
	require.True(t, ok, "got %T", msg)
	require.NoError(t, jm.Err)
	assert.Equal(t, awx.JobsPath, gotPath)
	assert.Equal(t, "order_by=-id&page_size=20", gotQuery)
	assert.Equal(t, s.epoch, jm.Epoch)

	r := &fakeRenderer{}
	assert.Nil(t, p.Update(jm, s, r))
	require.Len(t, r.jobs, 1)
	assert.Equal(t, []int{5, 3}, []int{r.jobs[0][0].ID, r.jobs[0][1].ID})
}

func TestUnauthorizedExpiresOnce(t *testing.T) {
	srv, hits := jobsServer(t, http.StatusUnauthorized, "")
	s := connectedSession(srv.URL)
	p := New(context.Background(), time.Second)
	p.Start(s)
	tag := p.tag

	msg := p.Refresh(s)()
	r := &fakeRenderer{}
	p.Update(msg, s, r)

	assert.Equal(t, 1, s.expired)
	assert.Equal(t, 1, r.expired)
	assert.Empty(t, r.jobs)
	assert.Empty(t, r.errs)
	assert.False(t, p.Active())

	// a second 401 that was already in flight is dropped by epoch
	p.Update(msg, s, r)
	assert.Equal(t, 1, s.expired)
	assert.Equal(t, 1, r.expired)

	// no further polling until reconnect
	assert.Nil(t, p.Update(TickMsg{ID: p.ID(), Tag: tag}, s, r))
	assert.Nil(t, p.Refresh(s))
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestFetchErrorsReportedInline(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var e *awx.FetchError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name:   "malformed payload",
			status: http.StatusOK,
			body:   "not json",
			check: func(t *testing.T, err error) {
				var e *awx.RenderError
				assert.ErrorAs(t, err, &e)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := jobsServer(t, tt.status, tt.body)
			s := connectedSession(srv.URL)
			p := New(context.Background(), time.Second)
			p.Start(s)

			r := &fakeRenderer{}
			p.Update(p.Refresh(s)(), s, r)

			require.Len(t, r.errs, 1)
			tt.check(t, r.errs[0])
			assert.True(t, s.connected, "non-401 failures keep the session")
			assert.True(t, p.Active(), "the tick chain survives a failed cycle")
			assert.NotNil(t, p.Update(TickMsg{ID: p.ID(), Tag: p.tag}, s, r))
		})
	}
}

func TestMissingResultsRendersEmptyListing(t *testing.T) {
	srv, _ := jobsServer(t, http.StatusOK, `{"count":0}`)
	s := connectedSession(srv.URL)
	p := New(context.Background(), time.Second)
	p.Start(s)

	r := &fakeRenderer{}
	p.Update(p.Refresh(s)(), s, r)

	assert.Empty(t, r.errs)
	require.Len(t, r.jobs, 1)
	assert.Empty(t, r.jobs[0])
	assert.True(t, p.Active())
}

func TestStaleEpochDropped(t *testing.T) {
	srv, _ := jobsServer(t, http.StatusOK, `{"results":[{"id":1,"status":"running"}]}`)
	s := connectedSession(srv.URL)
	p := New(context.Background(), time.Second)

	msg := p.Refresh(s)()
	// disconnect and reconnect while the fetch was in flight
	s.epoch += 2

	r := &fakeRenderer{}
	p.Update(msg, s, r)
	assert.Empty(t, r.jobs)
	assert.Empty(t, r.errs)
}

func TestJobsForOtherPollerIgnored(t *testing.T) {
	s := &fakeSession{connected: true, epoch: 1}
	p := New(context.Background(), time.Second)
	r := &fakeRenderer{}
	p.Update(JobsMsg{ID: p.ID() + 1000, Epoch: 1}, s, r)
	assert.Empty(t, r.jobs)
}

func TestSetAutoRefresh(t *testing.T) {
	s := &fakeSession{connected: true, epoch: 1}
	p := New(context.Background(), time.Second)

	assert.Nil(t, p.SetAutoRefresh(false, s))
	assert.False(t, p.Active())
	assert.False(t, p.AutoRefresh())

	assert.NotNil(t, p.SetAutoRefresh(true, s))
	assert.True(t, p.Active())

	// enabling while disconnected only records the preference
	p.Stop()
	s.connected = false
	assert.Nil(t, p.SetAutoRefresh(true, s))
	assert.False(t, p.Active())
	assert.True(t, p.AutoRefresh())
}

func TestConnectedHonoursToggle(t *testing.T) {
	s := &fakeSession{connected: true, epoch: 1}
	p := New(context.Background(), time.Second)

	p.auto = false
	p.Connected(s)
	assert.False(t, p.Active())

	p.auto = true
	assert.NotNil(t, p.Connected(s))
	assert.True(t, p.Active())
}
