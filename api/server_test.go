package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seenimoa/dashcore/internal/config"
	"github.com/seenimoa/dashcore/internal/feed"
	"github.com/seenimoa/dashcore/internal/fixtures"
	"github.com/seenimoa/dashcore/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default: %v", err)
	}
	return cfg
}

func testServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(testConfig(t), fixtures.Dashboard(), nil)
}

func do(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// decodeData unmarshals the envelope's data field into v.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if !env.Success {
		t.Fatalf("expected success, got error %q", env.Error)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// ════════════════════════════════════════════════════════════════════
// Health / Config
// ════════════════════════════════════════════════════════════════════

func TestHealth(t *testing.T) {
	srv := testServer(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := do(t, srv, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
		resp := decodeResponse(t, rec)
		data, ok := resp.Data.(map[string]interface{})
		if !resp.Success || !ok || data["status"] != "ok" {
			t.Errorf("%s: unexpected body %+v", path, resp)
		}
		if data["statements"] != float64(1) || data["pies"] != float64(3) {
			t.Errorf("%s: counts = %v / %v", path, data["statements"], data["pies"])
		}
	}
}

func TestGetConfig(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/config")
	var got struct {
		Config        config.Config `json:"config"`
		DefaultPeriod string        `json:"default_period"`
	}
	decodeData(t, rec, &got)
	if got.DefaultPeriod != "Q4 2024" {
		t.Errorf("DefaultPeriod = %q", got.DefaultPeriod)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/statements", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

// ════════════════════════════════════════════════════════════════════
// Statements
// ════════════════════════════════════════════════════════════════════

func TestStatements(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/statements")
	var got []StatementInfo
	decodeData(t, rec, &got)

	if len(got) != 1 || got[0].ID != fixtures.StatementID {
		t.Fatalf("statements = %+v", got)
	}
	if len(got[0].Periods) != 4 || got[0].Periods[0] != "Q4 2024" {
		t.Errorf("periods = %v", got[0].Periods)
	}
	want := []string{"revenue", "expenses", "otherIncome", "taxes"}
	if strings.Join(got[0].Sections, ",") != strings.Join(want, ",") {
		t.Errorf("sections = %v", got[0].Sections)
	}
}

func TestSummary(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/statements/income/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var got SummaryView
	decodeData(t, rec, &got)

	if got.Period != "Q4 2024" || got.PeriodIndex != 0 {
		t.Errorf("period = %q (%d)", got.Period, got.PeriodIndex)
	}
	if got.Revenue.Value == nil || *got.Revenue.Value != 1250000 {
		t.Errorf("revenue = %v", got.Revenue.Value)
	}
	if got.Revenue.Change == nil || !near(*got.Revenue.Change, 100000.0/1150000*100) {
		t.Errorf("revenue change = %v", got.Revenue.Change)
	}
	if got.NetIncome.Value == nil || *got.NetIncome.Value != 210000 {
		t.Errorf("net income = %v", got.NetIncome.Value)
	}
	if got.NetMargin == nil || !near(*got.NetMargin, 16.8) {
		t.Errorf("net margin = %v", got.NetMargin)
	}
}

func TestSummary_OldestPeriodOmitsComparison(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/statements/income/summary?period=3")
	body := rec.Body.String()
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, body)
	}
	if strings.Contains(body, `"previous"`) || strings.Contains(body, `"change"`) {
		t.Errorf("oldest period should have no comparison: %s", body)
	}
}

func TestSummary_InvalidPeriod(t *testing.T) {
	srv := testServer(t)
	for _, q := range []string{"abc", "4", "-1", "1.5"} {
		rec := do(t, srv, "/api/v1/statements/income/summary?period="+q)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("period=%s: status %d, want 400", q, rec.Code)
			continue
		}
		if resp := decodeResponse(t, rec); resp.Success || resp.Error == "" {
			t.Errorf("period=%s: expected error envelope", q)
		}
	}
}

func TestSummary_UnknownStatement(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/statements/balance/summary")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", rec.Code)
	}
}

func TestSummary_ZeroRevenueRendersNull(t *testing.T) {
	dash := &models.Dashboard{Statements: []*models.Statement{{
		ID:      "flat",
		Periods: []string{"P1"},
		Sections: []models.Section{
			{ID: models.SectionRevenue, Items: []models.LineItem{{Name: "Sales", Values: []float64{0}}}},
			{ID: models.SectionExpenses, Items: []models.LineItem{{Name: "Rent", Values: []float64{100}}}},
		},
	}}}
	srv := NewServer(testConfig(t), dash, nil)

	rec := do(t, srv, "/api/v1/statements/flat/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"net_margin":null`) {
		t.Errorf("expected null margin, got %s", rec.Body.String())
	}
}

func TestRows(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/statements/income/rows?period=1")
	var got RowsView
	decodeData(t, rec, &got)

	if got.Period != "Q3 2024" || len(got.Sections) != 4 {
		t.Fatalf("rows = %+v", got)
	}
	rev := got.Sections[0]
	if rev.ID != "revenue" || len(rev.Items) != 3 {
		t.Fatalf("revenue section = %+v", rev)
	}
	if rev.Total.Value == nil || *rev.Total.Value != 1150000 {
		t.Errorf("revenue total = %v", rev.Total.Value)
	}
	if rev.Total.PercentOfRevenue == nil || *rev.Total.PercentOfRevenue != 100 {
		t.Errorf("revenue share = %v", rev.Total.PercentOfRevenue)
	}
	if rev.Items[0].Tooltip == "" {
		t.Error("expected tooltip on first revenue item")
	}
}

func TestReport(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, "/api/v1/statements/income/report")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("html report: status %d, type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "Revenue by Region") {
		t.Error("expected configured pie in HTML report")
	}

	rec = do(t, srv, "/api/v1/statements/income/report?format=text&period=2")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Period: Q2 2024") {
		t.Errorf("text report: status %d body %q", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, "/api/v1/statements/income/report?format=pdf")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("pdf format: status %d, want 400", rec.Code)
	}
}

// ════════════════════════════════════════════════════════════════════
// Pies
// ════════════════════════════════════════════════════════════════════

func TestPies(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/pies")
	var got []PieInfo
	decodeData(t, rec, &got)
	if len(got) != 3 {
		t.Fatalf("pies = %+v", got)
	}
	for _, p := range got {
		if p.Total != 100 {
			t.Errorf("%s total = %v", p.ID, p.Total)
		}
	}
}

func TestPie(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/pies/region")
	var got PieView
	decodeData(t, rec, &got)

	if len(got.Wedges) != 4 {
		t.Fatalf("wedges = %d", len(got.Wedges))
	}
	first := got.Wedges[0]
	if !near(first.StartX, 160) || !near(first.StartY, 20) {
		t.Errorf("first wedge starts at (%v, %v), want (160, 20)", first.StartX, first.StartY)
	}
	if !near(first.EndAngle, 144) || first.LargeArc != 0 || first.SweepFlag != 1 {
		t.Errorf("first wedge = %+v", first)
	}
	if first.Color != "#2563eb" || first.Path == "" {
		t.Errorf("expected palette colour and path, got %+v", first)
	}
	last := got.Wedges[3]
	if !near(last.EndAngle, 360) || !near(last.EndX, 160) || !near(last.EndY, 20) {
		t.Errorf("last wedge should close the circle: %+v", last)
	}
}

func TestPie_Unknown(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/pies/segment")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", rec.Code)
	}
}

func TestPieSVG(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/pies/product/svg")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Revenue by Product") {
		t.Error("expected dataset title in SVG")
	}
}

func TestRenderCache(t *testing.T) {
	srv := testServer(t)

	first := do(t, srv, "/api/v1/pies/region/svg")
	second := do(t, srv, "/api/v1/pies/region/svg")
	if first.Header().Get("X-Cache") != "MISS" || second.Header().Get("X-Cache") != "HIT" {
		t.Errorf("X-Cache = %q then %q", first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
	}
	if first.Body.String() != second.Body.String() {
		t.Error("cached SVG should match the rendered one")
	}

	// period and format are part of the report key
	do(t, srv, "/api/v1/statements/income/report?format=text")
	if rec := do(t, srv, "/api/v1/statements/income/report?format=text&period=1"); rec.Header().Get("X-Cache") != "MISS" {
		t.Error("different period should not hit the cache")
	}

	cfg := testConfig(t)
	cfg.API.CacheTTLSec = 0
	uncached := NewServer(cfg, fixtures.Dashboard(), nil)
	do(t, uncached, "/api/v1/pies/region/svg")
	if rec := do(t, uncached, "/api/v1/pies/region/svg"); rec.Header().Get("X-Cache") != "MISS" {
		t.Error("disabled cache should never hit")
	}
}

// ════════════════════════════════════════════════════════════════════
// Live feed / WebSocket
// ════════════════════════════════════════════════════════════════════

func newTestFeed(t *testing.T) *feed.Producer {
	t.Helper()
	p, err := feed.New(fixtures.IncomeStatement(), config.FeedConfig{Enabled: true, IntervalSec: 1, JitterPct: 2, Seed: 7}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLatestSnapshot(t *testing.T) {
	srv := testServer(t)
	if rec := do(t, srv, "/api/v1/snapshots/latest"); rec.Code != http.StatusNotFound {
		t.Errorf("without feed: status %d, want 404", rec.Code)
	}

	p := newTestFeed(t)
	srv.SetFeed(p)
	if rec := do(t, srv, "/api/v1/snapshots/latest"); rec.Code != http.StatusNotFound {
		t.Errorf("before first tick: status %d, want 404", rec.Code)
	}

	snap := p.Next()
	rec := do(t, srv, "/api/v1/snapshots/latest")
	var got SnapshotView
	decodeData(t, rec, &got)
	if got.ID != snap.ID || got.Seq != 1 || len(got.Sections) != 4 {
		t.Errorf("snapshot = %+v", got)
	}
}

func TestWebSocketStreamsSnapshots(t *testing.T) {
	srv := testServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Hub().Run(ctx)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello WSMessage
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != MsgHello {
		t.Fatalf("hello = %+v, err %v", hello, err)
	}

	p := newTestFeed(t)
	srv.PublishSnapshot(p.Next())

	var msg struct {
		Type string       `json:"type"`
		Data SnapshotView `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if msg.Type != MsgSnapshot || msg.Data.StatementID != fixtures.StatementID || msg.Data.Seq != 1 {
		t.Errorf("snapshot message = %+v", msg)
	}
	if srv.Hub().ClientCount() != 1 {
		t.Errorf("ClientCount = %d", srv.Hub().ClientCount())
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewWSHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	slow := &WSClient{hub: hub, send: make(chan WSMessage)} // unbuffered: never ready
	hub.Register(slow)
	hub.Broadcast(WSMessage{Type: MsgSnapshot})

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow client was not dropped")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, ok := <-slow.send; ok {
		t.Error("slow client's channel should be closed")
	}
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewWSHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	c := &WSClient{hub: hub, send: make(chan WSMessage, 1)}
	hub.Register(c)
	cancel()

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client not closed on hub stop")
	}

	// neither call blocks once the hub is gone
	hub.Unregister(c)
	late := &WSClient{hub: hub, send: make(chan WSMessage, 1)}
	hub.Register(late)
	if _, ok := <-late.send; ok {
		t.Error("late client should be closed immediately")
	}
}

func TestOptional(t *testing.T) {
	if optional(math.NaN()) != nil || optional(math.Inf(1)) != nil {
		t.Error("non-finite values should map to nil")
	}
	if v := optional(1.5); v == nil || *v != 1.5 {
		t.Error("finite values should be kept")
	}
}

// ════════════════════════════════════════════════════════════════════
// Dashboard page
// ════════════════════════════════════════════════════════════════════

func TestDashboardPage(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<script src="app.js">`) {
		t.Error("index page should load app.js")
	}

	rec = do(t, srv, "/app.js")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/api/v1") {
		t.Errorf("app.js: code %d", rec.Code)
	}

	// unknown paths fall back to the page
	rec = do(t, srv, "/statements/income")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<title>dashcore</title>") {
		t.Errorf("fallback: code %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("fallback Content-Type = %q", ct)
	}
}

func TestDashboardPageDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.ServeUI = false
	srv := NewServer(cfg, fixtures.Dashboard(), nil)

	if rec := do(t, srv, "/"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 with the page disabled, got %d", rec.Code)
	}
	if rec := do(t, srv, "/api/v1/health"); rec.Code != http.StatusOK {
		t.Errorf("API should still be served, got %d", rec.Code)
	}
}
