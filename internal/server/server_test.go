package server_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starquake/kuis/internal/auth"
	"github.com/starquake/kuis/internal/config"
	"github.com/starquake/kuis/internal/document"
	"github.com/starquake/kuis/internal/server"
	"github.com/starquake/kuis/internal/store"
)

func newTestServer(t *testing.T, env string) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	cfg := &config.Config{AppEnvironment: env}
	stores := store.New(document.NewMemoryStorage(), logger)
	if err := stores.Init(t.Context()); err != nil {
		t.Fatalf("error initialising stores: %v", err)
	}
	codes := auth.Codes{Admin: []string{"ADMIN1"}, User: []string{"USERSER1"}}
	gateway := auth.NewGateway(logger, codes, auth.NewMemorySessions(time.Now), "kuis_session", time.Hour, false)

	srv := httptest.NewServer(server.NewServer(logger, cfg, stores, gateway))
	t.Cleanup(srv.Close)

	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("error creating cookie jar: %v", err)
	}

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func do(t *testing.T, c *http.Client, method, url, body string) (int, string) {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("error creating request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.Do(req)
	if err != nil {
		t.Fatalf("error sending request: %v", err)
	}
	defer func() { _ = res.Body.Close() }()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("error reading body: %v", err)
	}

	return res.StatusCode, strings.TrimSpace(string(b))
}

func TestAddRoutes(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "test")
	c := newClient(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"Health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"Session", http.MethodGet, "/api/session", "", http.StatusOK},
		{"Categories", http.MethodGet, "/api/categories", "", http.StatusOK},
		{"Question List", http.MethodGet, "/api/questions/Fungsi", "", http.StatusOK},
		{"Question List Unknown Category", http.MethodGet, "/api/questions/Sejarah", "", http.StatusOK},
		{"Question Create Anonymous", http.MethodPost, "/api/questions/Fungsi", `{"question":"?"}`, http.StatusForbidden},
		{"Question Delete Anonymous", http.MethodDelete, "/api/questions/Fungsi/1", "", http.StatusForbidden},
		{"Leaderboard", http.MethodGet, "/api/leaderboard/Logika", "", http.StatusOK},
		{"Leaderboard All", http.MethodGet, "/api/leaderboard/all", "", http.StatusOK},
		{"Score Submit", http.MethodPost, "/api/leaderboard/Logika", `{"name":"Budi","score":10}`, http.StatusOK},
		{"Score Submit Unknown Category", http.MethodPost, "/api/leaderboard/Sejarah", `{"name":"Budi","score":10}`, http.StatusBadRequest},
		{"Login Wrong Code", http.MethodPost, "/login", `{"name":"Budi","code":"X"}`, http.StatusUnauthorized},
		{"Logout", http.MethodGet, "/logout", "", http.StatusOK},
		{"Client", http.MethodGet, "/client/", "", http.StatusOK},
		{"Root Redirects To Client", http.MethodGet, "/", "", http.StatusFound},
		{"Not Found", http.MethodGet, "/nope", "", http.StatusNotFound},
		{"Method Not Allowed", http.MethodPut, "/api/categories", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, body := do(t, c, tt.method, srv.URL+tt.path, tt.body)
			if got != tt.wantStatus {
				t.Errorf("%s %s: status = %d, want %d (body %q)", tt.method, tt.path, got, tt.wantStatus, body)
			}
		})
	}
}

func TestServer_AdminFlow(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "test")
	admin := newClient(t)
	user := newClient(t)

	if status, body := do(t, admin, http.MethodPost, srv.URL+"/login", `{"name":"Guru","code":"ADMIN1"}`); status != http.StatusOK ||
		body != `{"success":true,"role":"admin"}` {
		t.Fatalf("admin login: %d %q", status, body)
	}
	if status, body := do(t, user, http.MethodPost, srv.URL+"/login", `{"name":"Murid","code":"USERSER1"}`); status != http.StatusOK ||
		body != `{"success":true,"role":"user"}` {
		t.Fatalf("user login: %d %q", status, body)
	}

	_, body := do(t, admin, http.MethodPost, srv.URL+"/api/questions/Aritmatika%20Sosial",
		`{"question":"Diskon 10% dari 200?","options":["10","20"],"answer":"20"}`)
	if want := `{"success":true,"question":{"question":"Diskon 10% dari 200?","options":["10","20"],"answer":"20","id":1}}`; body != want {
		t.Errorf("create: got %q, want %q", body, want)
	}

	if status, body := do(t, user, http.MethodPost, srv.URL+"/api/questions/Fungsi", `{"question":"?"}`); status != http.StatusForbidden ||
		body != `{"success":false,"message":"Unauthorized"}` {
		t.Errorf("user create: got %d %q, want 403 Unauthorized", status, body)
	}

	if status, _ := do(t, admin, http.MethodPost, srv.URL+"/api/questions/Sejarah", `{"question":"?"}`); status != http.StatusBadRequest {
		t.Errorf("create in unknown category: status = %d, want %d", status, http.StatusBadRequest)
	}

	_, body = do(t, user, http.MethodGet, srv.URL+"/api/questions/Aritmatika%20Sosial", "")
	if want := `[{"question":"Diskon 10% dari 200?","options":["10","20"],"answer":"20","id":1}]`; body != want {
		t.Errorf("list: got %q, want %q", body, want)
	}

	if status, _ := do(t, admin, http.MethodDelete, srv.URL+"/api/questions/Aritmatika%20Sosial/1", ""); status != http.StatusOK {
		t.Errorf("delete: status = %d, want %d", status, http.StatusOK)
	}
	if _, body = do(t, user, http.MethodGet, srv.URL+"/api/questions/Aritmatika%20Sosial", ""); body != "[]" {
		t.Errorf("list after delete: got %q, want []", body)
	}

	if _, body = do(t, user, http.MethodGet, srv.URL+"/api/session", ""); body != `{"loggedIn":true,"name":"Murid","role":"user"}` {
		t.Errorf("session: got %q", body)
	}
	do(t, user, http.MethodPost, srv.URL+"/logout", "")
	if _, body = do(t, user, http.MethodGet, srv.URL+"/api/session", ""); body != `{"loggedIn":false}` {
		t.Errorf("session after logout: got %q", body)
	}
}

func TestServer_Leaderboard(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "test")
	c := newClient(t)

	for _, score := range []string{"30", "90", "60"} {
		if status, _ := do(t, c, http.MethodPost, srv.URL+"/api/leaderboard/Statistika", `{"name":"p`+score+`","score":`+score+`}`); status != http.StatusOK {
			t.Fatalf("submit %s: status = %d", score, status)
		}
	}

	_, body := do(t, c, http.MethodGet, srv.URL+"/api/leaderboard/all", "")
	var all map[string][]struct {
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(body), &all); err != nil {
		t.Fatalf("error decoding %q: %v", body, err)
	}
	if got, want := len(all), 5; got != want {
		t.Errorf("got %d categories, want %d", got, want)
	}
	got := all["Statistika"]
	if len(got) != 3 || got[0].Score != 90 || got[1].Score != 60 || got[2].Score != 30 {
		t.Errorf("got %+v, want scores 90, 60, 30", got)
	}
}

func TestServer_RequestID(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "test")
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/healthz", nil)
	if err != nil {
		t.Fatalf("error creating request: %v", err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("error sending request: %v", err)
	}
	_ = res.Body.Close()

	if got := res.Header.Get(server.RequestIDHeader); len(got) != 20 {
		t.Errorf("got request id %q, want a 20 character xid", got)
	}
}

func TestServer_Production(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "production")
	status, body := do(t, newClient(t), http.MethodGet, srv.URL+"/api/categories", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want %d", status, http.StatusOK)
	}

	var got []string
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("minified body is not valid json: %v: %q", err, body)
	}
	if len(got) != 5 {
		t.Errorf("got %d categories, want 5", len(got))
	}
}
