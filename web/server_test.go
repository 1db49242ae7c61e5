package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/batteryform/core/form"
	"github.com/kilianp07/batteryform/core/sink"
	"github.com/kilianp07/batteryform/web/session"
)

type memSink struct {
	mu   sync.Mutex
	subs []sink.Submission
}

func (m *memSink) Emit(_ context.Context, s sink.Submission) error {
	m.mu.Lock()
	m.subs = append(m.subs, s)
	m.mu.Unlock()
	return nil
}
func (m *memSink) Close() error { return nil }

func (m *memSink) all() []sink.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sink.Submission(nil), m.subs...)
}

// Rendered markup of the inline error and the success banner. The page
// script refers to the same class names, so tests match the elements.
const (
	errorDiv   = `<div class="error-message">`
	successDiv = `<div class="success-message">`
)

type harness struct {
	srv   *httptest.Server
	cli   *http.Client
	sink  *memSink
	store *session.Store
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	ms := &memSink{}
	store := session.NewStore(time.Hour, func(id string) *form.Controller {
		return form.NewController(ms, nil, form.WithID(id))
	})
	srv := httptest.NewServer(NewServer(store, opts).Handler())
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{srv: srv, cli: &http.Client{Jar: jar}, sink: ms, store: store}
}

func (h *harness) event(t *testing.T, ev eventRequest) snapshotResponse {
	t.Helper()
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	resp, err := h.cli.Post(h.srv.URL+"/api/events", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap snapshotResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	return snap
}

func (h *harness) post(t *testing.T, values url.Values) string {
	t.Helper()
	resp, err := h.cli.PostForm(h.srv.URL+"/", values)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func (h *harness) get(t *testing.T, path string) string {
	t.Helper()
	resp, err := h.cli.Get(h.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPage_Initial(t *testing.T) {
	h := newHarness(t, Options{})
	resp, err := h.cli.Get(h.srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	page := string(body)

	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	for _, s := range []string{"Batterie virtuelle", "Batterie physique", "Panneaux solaires", `placeholder="Ex: 12 panneaux 400W"`, "Valider"} {
		assert.Contains(t, page, s)
	}
	assert.NotContains(t, page, errorDiv)
	assert.NotContains(t, page, successDiv)
	assert.Empty(t, resp.Cookies())
}

func TestReads_DoNotCreateSessions(t *testing.T) {
	h := newHarness(t, Options{})
	for i := 0; i < 3; i++ {
		for _, path := range []string{"/", "/api/state"} {
			resp, err := http.Get(h.srv.URL + path)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode, path)
			assert.Empty(t, resp.Cookies(), path)
		}
	}
	assert.Equal(t, 0, h.store.Len())

	resp, err := http.Get(h.srv.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	var snap snapshotResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, form.Initial(), snap.Snapshot)
	assert.False(t, snap.Success)

	h.event(t, eventRequest{Type: "toggle_battery", Kind: "virtual", Checked: true})
	assert.Equal(t, 1, h.store.Len())

	page := h.get(t, "/")
	assert.Contains(t, page, `data-kind="virtual" checked`)
	assert.Equal(t, 1, h.store.Len())
}

func TestAPI_Scenarios(t *testing.T) {
	h := newHarness(t, Options{})

	snap := h.event(t, eventRequest{Type: "submit"})
	assert.True(t, snap.Success)
	assert.Empty(t, snap.Errors)

	snap = h.event(t, eventRequest{Type: "toggle_battery", Kind: "virtual", Checked: true})
	assert.False(t, snap.Submitted)
	snap = h.event(t, eventRequest{Type: "submit"})
	assert.False(t, snap.Submitted)
	assert.Equal(t, form.Errors{form.FieldSolarPanels: form.MsgSolarPanelsRequired}, snap.Errors)

	snap = h.event(t, eventRequest{Type: "edit_solar_panels", Text: "12 panneaux 400W"})
	assert.Empty(t, snap.Errors)
	snap = h.event(t, eventRequest{Type: "submit"})
	assert.True(t, snap.Success)

	subs := h.sink.all()
	require.Len(t, subs, 2)
	assert.True(t, subs[1].VirtualBattery)
	assert.False(t, subs[1].PhysicalBattery)
	assert.Equal(t, "12 panneaux 400W", subs[1].SolarPanels)
	assert.Equal(t, subs[0].SessionID, subs[1].SessionID)

	snap = h.event(t, eventRequest{Type: "edit_solar_panels", Text: ""})
	assert.False(t, snap.Submitted)
	assert.Empty(t, snap.Errors)

	snap = h.event(t, eventRequest{Type: "toggle_battery", Kind: "physical", Checked: true})
	assert.Equal(t, form.State{PhysicalBattery: true}, snap.State)

	resp, err := h.cli.Get(h.srv.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	var state snapshotResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, snap.State, state.State)
}

func TestAPI_BadRequests(t *testing.T) {
	h := newHarness(t, Options{})
	for _, body := range []string{`not json`, `{"type":"explode"}`, `{"type":"toggle_battery","kind":"hybrid"}`} {
		resp, err := h.cli.Post(h.srv.URL+"/api/events", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestFormPost(t *testing.T) {
	h := newHarness(t, Options{})

	page := h.post(t, url.Values{"virtualBattery": {"on"}, "solarPanels": {"   "}})
	assert.Contains(t, page, form.MsgSolarPanelsRequired)
	assert.Contains(t, page, `class="error"`)
	assert.Contains(t, page, errorDiv)
	assert.NotContains(t, page, successDiv)
	assert.Empty(t, h.sink.all())

	page = h.post(t, url.Values{"virtualBattery": {"on"}, "solarPanels": {"12 panneaux 400W"}})
	assert.Contains(t, page, "Formulaire soumis avec succès !")
	assert.Contains(t, page, `value="12 panneaux 400W"`)
	assert.Contains(t, page, successDiv)
	assert.NotContains(t, page, errorDiv)
	require.Len(t, h.sink.all(), 1)

	// virtual still checked in the browser, physical newly checked
	page = h.post(t, url.Values{"virtualBattery": {"on"}, "physicalBattery": {"on"}, "solarPanels": {""}})
	assert.Contains(t, page, successDiv)
	subs := h.sink.all()
	require.Len(t, subs, 2)
	assert.False(t, subs[1].VirtualBattery)
	assert.True(t, subs[1].PhysicalBattery)
}

func TestEventsFromPost(t *testing.T) {
	evs := eventsFromPost(form.State{}, url.Values{"virtualBattery": {"on"}, "physicalBattery": {"on"}, "solarPanels": {"x"}})
	assert.Equal(t, []form.Event{
		form.ToggleBattery{Kind: form.Virtual, Checked: true},
		form.ToggleBattery{Kind: form.Physical, Checked: true},
		form.EditSolarPanels{Text: "x"},
		form.Submit{},
	}, evs)

	evs = eventsFromPost(form.State{VirtualBattery: true, SolarPanels: "x"}, url.Values{"virtualBattery": {"on"}, "solarPanels": {"x"}})
	assert.Equal(t, []form.Event{form.Submit{}}, evs)
}

func TestHTMLEscaping(t *testing.T) {
	h := newHarness(t, Options{})
	page := h.post(t, url.Values{"solarPanels": {`"><script>alert(1)</script>`}})
	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.Equal(t, `"><script>alert(1)</script>`, h.sink.all()[0].SolarPanels)
}

func TestGzipAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("metrics")) })
	h := newHarness(t, Options{Gzip: true, Metrics: metrics})

	req, _ := http.NewRequest(http.MethodGet, h.srv.URL+"/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	// the default transport would transparently decompress
	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

	resp, err = h.cli.Get(h.srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "metrics", string(body))

	resp, err = h.cli.Get(h.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRecoverer(t *testing.T) {
	s := NewServer(nil, Options{})
	h := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
