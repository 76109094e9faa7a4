package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ptaplan/internal/config"
	"ptaplan/internal/db"
	"ptaplan/internal/domain"
	"ptaplan/internal/engine"
	"ptaplan/internal/migrate"
)

type testServer struct {
	URL    string
	Engine engine.Engine
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	workspace := t.TempDir()
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := engine.New(conn, config.Default())
	e.Now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	seed := []engine.UserCreateOptions{
		{Name: "Admin", Email: "admin@pta.test", Password: "admin-secret", Role: domain.RoleAdmin},
		{Name: "Sup", Email: "sup@pta.test", Password: "sup-secret!", Role: domain.RoleSuperviseur},
		{Name: "Reader", Email: "reader@pta.test", Password: "reader-secret", Role: domain.RoleUser},
	}
	for _, opts := range seed {
		if _, err := e.CreateUser(ctx, opts); err != nil {
			t.Fatalf("seed user %s: %v", opts.Email, err)
		}
	}

	handler, err := New(Config{
		Engine:   e,
		BasePath: "/v1",
		Auth:     AuthConfig{JWTSecret: "test-secret"},
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	ts := &testServer{
		URL:    "http://" + ln.Addr().String(),
		Engine: e,
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, token string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func login(t *testing.T, ts *testServer, email, password string) string {
	t.Helper()
	res, body := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, res.StatusCode, body)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Token == "" {
		t.Fatalf("login %s: no token in %s", email, body)
	}
	return out.Token
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var out struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode error envelope %s: %v", body, err)
	}
	return out.Error.Code
}

func TestHealthOpenWithoutAuth(t *testing.T) {
	ts := newTestServer(t)
	res, _ := doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/health", nil, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health: status %d", res.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	res, _ := doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/activities", nil, "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: status %d", res.StatusCode)
	}
	res, _ = doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/activities", nil, "not-a-jwt")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bogus token: status %d", res.StatusCode)
	}
}

func TestLoginFlow(t *testing.T) {
	ts := newTestServer(t)

	res, body := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/auth/login", map[string]any{
		"email":    "admin@pta.test",
		"password": "wrong",
	}, "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d body %s", res.StatusCode, body)
	}
	if code := errorCode(t, body); code != "invalid_credentials" {
		t.Fatalf("wrong password code = %q", code)
	}

	token := login(t, ts, "admin@pta.test", "admin-secret")
	res, body = doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/auth/me", nil, token)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("me: status %d body %s", res.StatusCode, body)
	}
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		t.Fatal(err)
	}
	if me.Email != "admin@pta.test" || me.Role != "admin" {
		t.Fatalf("me = %+v", me)
	}
}

func TestRoleEnforcement(t *testing.T) {
	ts := newTestServer(t)
	admin := login(t, ts, "admin@pta.test", "admin-secret")
	sup := login(t, ts, "sup@pta.test", "sup-secret!")
	reader := login(t, ts, "reader@pta.test", "reader-secret")

	node := map[string]any{"code": "S1", "name": "Secrétariat Général"}

	// read-only role cannot write
	res, body := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/structures", node, reader)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("reader create: status %d body %s", res.StatusCode, body)
	}
	if code := errorCode(t, body); code != "forbidden" {
		t.Fatalf("reader create code = %q", code)
	}

	// superviseur can write but not delete
	res, body = doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/structures", node, sup)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("sup create: status %d body %s", res.StatusCode, body)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		t.Fatalf("sup create body %s", body)
	}
	res, body = doJSON(t, ts.Client(), http.MethodDelete, ts.URL+"/v1/structures/"+created.ID, nil, sup)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("sup delete: status %d body %s", res.StatusCode, body)
	}

	// reader can still list
	res, _ = doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/structures", nil, reader)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("reader list: status %d", res.StatusCode)
	}

	// admin deletes
	res, _ = doJSON(t, ts.Client(), http.MethodDelete, ts.URL+"/v1/structures/"+created.ID, nil, admin)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("admin delete: status %d", res.StatusCode)
	}

	// user management is admin-only
	res, body = doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/users", nil, sup)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("sup list users: status %d body %s", res.StatusCode, body)
	}
}

func TestSuiviLifecycleOverAPI(t *testing.T) {
	ts := newTestServer(t)
	admin := login(t, ts, "admin@pta.test", "admin-secret")

	res, body := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/activities", map[string]any{
		"description": "Former les agents de la direction",
		"end_date":    "2024-06-01",
		"unit_cost":   "1500.00",
		"quantity":    "3",
	}, admin)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create activity: status %d body %s", res.StatusCode, body)
	}
	var activity struct {
		ID     string  `json:"id"`
		Amount *string `json:"amount"`
		IsLate bool    `json:"is_late"`
		Status string  `json:"status"`
	}
	if err := json.Unmarshal(body, &activity); err != nil {
		t.Fatal(err)
	}
	if activity.Amount == nil {
		t.Fatal("amount not derived")
	}
	if got := decimal.RequireFromString(*activity.Amount); !got.Equal(decimal.NewFromInt(4500)) {
		t.Fatalf("derived amount = %s", *activity.Amount)
	}
	if !activity.IsLate {
		t.Fatal("activity past its end date must report late")
	}

	res, body = doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/suivis", map[string]any{
		"activity_id":      activity.ID,
		"observation_date": "2024-06-15",
		"advancement":      100,
		"remark":           "formation terminée",
	}, admin)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create suivi: status %d body %s", res.StatusCode, body)
	}
	var suivi struct {
		LateNotification    bool   `json:"late_notification"`
		NotificationMessage string `json:"notification_message"`
	}
	if err := json.Unmarshal(body, &suivi); err != nil {
		t.Fatal(err)
	}
	if !suivi.LateNotification || suivi.NotificationMessage == "" {
		t.Fatalf("late notification missing: %+v", suivi)
	}

	// 100% advancement completes the activity; complete means no longer late
	res, body = doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/activities/"+activity.ID, nil, admin)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get activity: status %d", res.StatusCode)
	}
	if err := json.Unmarshal(body, &activity); err != nil {
		t.Fatal(err)
	}
	if activity.Status != "complete" {
		t.Fatalf("status = %q, want complete", activity.Status)
	}
	if activity.IsLate {
		t.Fatal("complete activity still reports late")
	}
}

func TestValidationErrorEnvelope(t *testing.T) {
	ts := newTestServer(t)
	admin := login(t, ts, "admin@pta.test", "admin-secret")

	res, body := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/activities", map[string]any{
		"description": "x",
		"start_date":  "01/06/2024",
	}, admin)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad date: status %d body %s", res.StatusCode, body)
	}
	if code := errorCode(t, body); code != "bad_request" {
		t.Fatalf("bad date code = %q", code)
	}
}

func TestNotFoundEnvelope(t *testing.T) {
	ts := newTestServer(t)
	admin := login(t, ts, "admin@pta.test", "admin-secret")

	res, body := doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/activities/nope", nil, admin)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d body %s", res.StatusCode, body)
	}
	if code := errorCode(t, body); code != "not_found" {
		t.Fatalf("code = %q", code)
	}
}

func TestAdminCannotDeleteOwnAccount(t *testing.T) {
	ts := newTestServer(t)
	admin := login(t, ts, "admin@pta.test", "admin-secret")

	res, body := doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/auth/me", nil, admin)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("me: status %d", res.StatusCode)
	}
	var me struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		t.Fatal(err)
	}
	res, body = doJSON(t, ts.Client(), http.MethodDelete, ts.URL+"/v1/users/"+me.ID, nil, admin)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("self delete: status %d body %s", res.StatusCode, body)
	}
}

func TestExportDownload(t *testing.T) {
	ts := newTestServer(t)
	admin := login(t, ts, "admin@pta.test", "admin-secret")

	res, body := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/v1/activities", map[string]any{
		"description": "Acheter des fournitures",
	}, admin)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("seed activity: status %d body %s", res.StatusCode, body)
	}

	res, data := doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/v1/export/pta.xlsx", nil, admin)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("export: status %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("content type = %q", ct)
	}
	// xlsx files are zip archives
	if len(data) < 4 || data[0] != 'P' || data[1] != 'K' {
		t.Fatalf("export payload does not look like a workbook (%d bytes)", len(data))
	}
}
