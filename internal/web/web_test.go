package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"

	"datepicker/internal/config"
	"datepicker/internal/events"
	"datepicker/internal/picker"
)

func newTestServer(t *testing.T, auth *BasicAuth) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := events.NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	rec := &events.Recorder{}
	tz, format := "UTC", "YYYY-MM-DD"
	opts := config.Resolve(*config.DefaultOptions(), config.Partial{TimeZone: &tz, Format: &format})
	p, err := picker.New(opts, nil, rec,
		picker.WithID("web"),
		picker.WithMetrics(m),
		picker.WithClock(func() time.Time { return time.Date(2021, 5, 10, 9, 30, 0, 0, time.UTC) }))
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(NewServer(p, rec, reg, auth).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, req *http.Request) (int, string) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	return do(t, req)
}

func post(t *testing.T, url, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return do(t, req)
}

func TestScript(t *testing.T) {
	srv := newTestServer(t, nil)

	code, body := post(t, srv.URL+"/api/script", "set 2021-05-01\nday 3\nstate\n")
	if code != http.StatusOK {
		t.Fatalf("status %d: %s", code, body)
	}
	var resp scriptResponse
	if err := sonic.UnmarshalString(body, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.State.Text != "2021-05-03" || len(resp.State.Dates) != 1 {
		t.Errorf("state: %+v", resp.State)
	}
	if len(resp.Events) != 2 || resp.Events[0].Kind != "change" || resp.Events[1].OldDate != "2021-05-01T00:00:00Z" {
		t.Errorf("events: %+v", resp.Events)
	}
	if !strings.Contains(resp.Output, `dates="2021-05-03"`) {
		t.Errorf("output: %q", resp.Output)
	}

	code, body = post(t, srv.URL+"/api/script", "next\nbogus\n")
	if code != http.StatusUnprocessableEntity || !strings.Contains(body, "line 2") {
		t.Errorf("failing script: %d %s", code, body)
	}

	if code, _ := get(t, srv.URL+"/api/script"); code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/script: %d", code)
	}
}

func TestPage(t *testing.T) {
	srv := newTestServer(t, nil)

	code, body := get(t, srv.URL+"/api/page")
	if code != http.StatusOK {
		t.Fatalf("status %d: %s", code, body)
	}
	var page pageResponse
	if err := sonic.UnmarshalString(body, &page); err != nil {
		t.Fatal(err)
	}
	if page.Mode != "days" || page.Title != "May 2021" || len(page.Cells) != 42 || len(page.Weekdays) != 7 {
		t.Errorf("days page: mode %q title %q cells %d weekdays %v", page.Mode, page.Title, len(page.Cells), page.Weekdays)
	}

	code, body = get(t, srv.URL+"/api/page?mode=months")
	if err := sonic.UnmarshalString(body, &page); err != nil || code != http.StatusOK || len(page.Cells) != 12 {
		t.Errorf("months page: %d %v %d cells", code, err, len(page.Cells))
	}

	if code, _ := get(t, srv.URL+"/api/page?mode=weeks"); code != http.StatusBadRequest {
		t.Errorf("unknown mode: %d", code)
	}
}

func TestStateAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil)
	post(t, srv.URL+"/api/script", "set 2021-05-01\n")

	code, body := get(t, srv.URL+"/api/state")
	if code != http.StatusOK || !strings.Contains(body, `"text":"2021-05-01"`) {
		t.Errorf("state: %d %s", code, body)
	}
	code, body = get(t, srv.URL+"/metrics")
	if code != http.StatusOK || !strings.Contains(body, `datepicker_events_total{kind="change"} 1`) {
		t.Errorf("metrics: %d %s", code, body)
	}
}

func TestBasicAuth(t *testing.T) {
	srv := newTestServer(t, &BasicAuth{Username: "u", Password: "p"})

	if code, _ := get(t, srv.URL+"/health"); code != http.StatusOK {
		t.Errorf("health should not need auth: %d", code)
	}
	if code, _ := get(t, srv.URL+"/api/state"); code != http.StatusUnauthorized {
		t.Errorf("unauthenticated state: %d", code)
	}
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/state", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.SetBasicAuth("u", "p")
	if code, _ := do(t, req); code != http.StatusOK {
		t.Errorf("authenticated state: %d", code)
	}
}
