// ABOUTME: Tests for the corkboard HTTP server: pages, card and decision mutations, imports, exports, dragging.
// ABOUTME: Services run against an in-memory store; requests go straight through ServeHTTP.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/2389-research/corkboard/app"
	"github.com/2389-research/corkboard/decisions"
	"github.com/2389-research/corkboard/kanban"
	"github.com/2389-research/corkboard/layout"
	"github.com/2389-research/corkboard/render"
	"github.com/2389-research/corkboard/store"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type stubSource struct {
	snap *kanban.Snapshot
	err  error
}

func (s *stubSource) Fetch(context.Context) (*kanban.Snapshot, error) { return s.snap, s.err }
func (s *stubSource) String() string                                  { return "stub" }

type testEnv struct {
	srv   *Server
	board *app.BoardService
	maps  *app.MapService
	kv    *store.MemoryKV
}

func fakeRender(_ context.Context, dotText, format string) ([]byte, error) {
	if format == "png" {
		return nil, render.ErrGraphvizMissing
	}
	return []byte("<svg><!-- " + strings.Fields(dotText)[0] + " --></svg>"), nil
}

func newTestEnv(t *testing.T, src *stubSource) *testEnv {
	t.Helper()
	ctx := context.Background()
	kv := store.NewMemoryKV()

	opts := app.BoardOptions{KV: kv, Now: func() time.Time { return testNow }}
	if src != nil {
		opts.Source = src
	}
	board := app.NewBoardService(opts)
	if err := board.Load(ctx); err != nil {
		t.Fatalf("board Load: %v", err)
	}

	maps := app.NewMapService(kv, "")
	if err := maps.Load(ctx); err != nil {
		t.Fatalf("map Load: %v", err)
	}

	srv, err := NewServer(ServerConfig{Board: board, Maps: maps, Render: fakeRender})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return &testEnv{srv: srv, board: board, maps: maps, kv: kv}
}

func newTestServer(t *testing.T) *testEnv {
	return newTestEnv(t, nil)
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

func (e *testEnv) postJSON(path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func (e *testEnv) delete(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodDelete, path, nil))
}

func TestServerHealth(t *testing.T) {
	env := newTestServer(t)
	rec := env.get("/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status %q, got %q", "ok", body["status"])
	}
}

func TestRootRedirectsToBoard(t *testing.T) {
	env := newTestServer(t)
	rec := env.get("/")
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/board" {
		t.Errorf("expected Location /board, got %q", loc)
	}
}

func TestBoardPageRendersColumnsAndCards(t *testing.T) {
	env := newTestServer(t)
	rec := env.get("/board")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"htmx.org", "Ideas", "Backlog", "In Progress", "Done", "Capture the first ideas", `data-status="in-progress"`} {
		if !strings.Contains(body, want) {
			t.Errorf("board page missing %q", want)
		}
	}
	if strings.Contains(body, "Reload shared board") {
		t.Error("reload button should be hidden without a remote")
	}
}

func TestStaticAssetsServed(t *testing.T) {
	env := newTestServer(t)
	for _, path := range []string{"/static/css/app.css", "/static/js/app.js", "/static/js/board.js", "/static/js/decisions.js"} {
		if rec := env.get(path); rec.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestCardCreateRendersBoard(t *testing.T) {
	env := newTestServer(t)
	before := len(env.board.Cards())

	rec := env.postForm("/board/cards", url.Values{
		"title":    {"Write release notes"},
		"status":   {"backlog"},
		"priority": {"high"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("HX-Trigger"); got != "closeDialog" {
		t.Errorf("expected closeDialog trigger, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Write release notes") {
		t.Error("board partial should include the new card")
	}
	if got := len(env.board.Cards()); got != before+1 {
		t.Errorf("expected %d cards, got %d", before+1, got)
	}
}

func TestCardCreateEmptyTitleIsRejected(t *testing.T) {
	env := newTestServer(t)
	before := len(env.board.Cards())
	writes := env.kv.Writes()

	rec := env.postForm("/board/cards", url.Values{"title": {"   "}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `class="error-msg"`) {
		t.Errorf("expected error fragment, got %q", rec.Body.String())
	}
	if len(env.board.Cards()) != before || env.kv.Writes() != writes {
		t.Error("rejected create must not change or persist the board")
	}
}

func TestCardCreateUnknownStatusIsRejected(t *testing.T) {
	env := newTestServer(t)
	rec := env.postForm("/board/cards", url.Values{"title": {"x"}, "status": {"<script>"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<script>") {
		t.Error("error message must be escaped")
	}
}

func TestCardEditFormAndUpdate(t *testing.T) {
	env := newTestServer(t)

	rec := env.get("/board/cards/1/edit")
	if rec.Code != http.StatusOK {
		t.Fatalf("edit form: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `hx-post="/board/cards/1"`) {
		t.Error("edit form should post to the card URL")
	}

	rec = env.postForm("/board/cards/1", url.Values{"title": {"Renamed"}, "description": {"new text"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	card, _ := env.board.Find("1")
	if card.Title != "Renamed" || card.Description != "new text" {
		t.Errorf("card not updated: %+v", card)
	}
}

func TestEditCardWithUnknownPriority(t *testing.T) {
	env := newTestServer(t)
	imported := `[{"id":"a","title":"Old","status":"backlog","priority":"urgent","createdAt":"2026-01-01T00:00:00Z"}]`
	if _, err := env.board.Import(context.Background(), []byte(imported)); err != nil {
		t.Fatalf("Import: %v", err)
	}

	rec := env.get("/board/cards/a/edit")
	if rec.Code != http.StatusOK {
		t.Fatalf("edit form: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<option value="urgent" selected>`) {
		t.Errorf("form should keep the stored priority selected:\n%s", rec.Body.String())
	}

	rec = env.postForm("/board/cards/a", url.Values{"title": {"Renamed"}, "status": {"backlog"}, "priority": {"urgent"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	card, _ := env.board.Find("a")
	if card.Title != "Renamed" || card.Priority != "urgent" {
		t.Errorf("card = %+v", card)
	}
}

func TestCardUnknownIDIs404(t *testing.T) {
	env := newTestServer(t)
	if rec := env.get("/board/cards/nope/edit"); rec.Code != http.StatusNotFound {
		t.Errorf("edit: expected 404, got %d", rec.Code)
	}
	if rec := env.postForm("/board/cards/nope", url.Values{"title": {"x"}}); rec.Code != http.StatusNotFound {
		t.Errorf("update: expected 404, got %d", rec.Code)
	}
	if rec := env.delete("/board/cards/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("delete: expected 404, got %d", rec.Code)
	}
}

func TestCardMoveAndDelete(t *testing.T) {
	env := newTestServer(t)

	rec := env.postForm("/board/cards/1/move", url.Values{"status": {"done"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("move: expected 200, got %d", rec.Code)
	}
	card, _ := env.board.Find("1")
	if card.Status != kanban.StatusDone {
		t.Errorf("expected done, got %s", card.Status)
	}

	if rec := env.postForm("/board/cards/1/move", url.Values{"status": {"archived"}}); rec.Code != http.StatusBadRequest {
		t.Errorf("move to unknown column: expected 400, got %d", rec.Code)
	}

	if rec := env.delete("/board/cards/1"); rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if _, ok := env.board.Find("1"); ok {
		t.Error("card should be gone")
	}
}

func TestBoardExportJSONRoundTripsThroughImport(t *testing.T) {
	env := newTestServer(t)
	rec := env.get("/board/export.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "attachment") {
		t.Error("export should be an attachment")
	}
	var snap kanban.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("export is not a snapshot: %v", err)
	}
	if snap.UpdatedBy != kanban.ExportedBy {
		t.Errorf("expected updatedBy %q, got %q", kanban.ExportedBy, snap.UpdatedBy)
	}
	exported := rec.Body.Bytes()

	if rec := env.delete("/board/cards/1"); rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/board/import", bytes.NewReader(exported))
	req.Header.Set("Content-Type", "application/json")
	rec = env.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("import: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, ok := env.board.Find("1"); !ok {
		t.Error("import should restore the deleted card")
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "Imported 4 cards") {
		t.Errorf("unexpected trigger %q", rec.Header().Get("HX-Trigger"))
	}
}

func TestBoardImportMultipartAndRejection(t *testing.T) {
	env := newTestServer(t)

	upload := func(content string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "board.json")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = fw.Write([]byte(content))
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/board/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return env.do(req)
	}

	rec := upload(`{"version": 9, "cards": [{"id":"x","title":"Imported","description":"","status":"done","priority":"low","createdAt":"2026-01-01T00:00:00Z"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("import: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := len(env.board.Cards()); got != 1 {
		t.Errorf("expected 1 card after import, got %d", got)
	}
	if got := env.board.Stashed(); got != 9 {
		t.Errorf("expected stash 9, got %d", got)
	}

	rec = upload(`{"not": "a board"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad import: expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Import failed") {
		t.Errorf("expected import failure message, got %q", rec.Body.String())
	}
	if got := len(env.board.Cards()); got != 1 {
		t.Errorf("rejected import changed the board: %d cards", got)
	}
}

func TestBoardExportYAML(t *testing.T) {
	env := newTestServer(t)
	rec := env.get("/board/export.yaml")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "lanes:") || !strings.Contains(body, "Capture the first ideas") {
		t.Errorf("unexpected YAML: %s", body)
	}
}

func TestBoardReload(t *testing.T) {
	t.Run("no remote", func(t *testing.T) {
		env := newTestServer(t)
		if rec := env.postForm("/board/reload", nil); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("fetch failure", func(t *testing.T) {
		env := newTestEnv(t, &stubSource{err: errors.New("connection refused")})
		before := env.board.Cards()
		rec := env.postForm("/board/reload", nil)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
		if len(env.board.Cards()) != len(before) {
			t.Error("failed reload must keep local cards")
		}
	})

	t.Run("adopts remote", func(t *testing.T) {
		snap := &kanban.Snapshot{Version: 2, Cards: []kanban.Card{
			{ID: "r1", Title: "Shared", Status: kanban.StatusBacklog, Priority: kanban.PriorityLow, CreatedAt: testNow},
		}}
		env := newTestEnv(t, &stubSource{snap: snap})
		rec := env.postForm("/board/reload", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "Shared") {
			t.Error("reloaded board should render the remote card")
		}
		if env.board.Stashed() != 2 {
			t.Errorf("expected stash 2, got %d", env.board.Stashed())
		}
	})
}

func TestDecisionsPageRendersNodes(t *testing.T) {
	env := newTestServer(t)
	rec := env.get("/decisions")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Open source license", "MIT License", "Apache 2.0", `data-id="1"`, "svg"} {
		if !strings.Contains(body, want) {
			t.Errorf("decisions page missing %q", want)
		}
	}
}

func TestDecisionCreateAndValidation(t *testing.T) {
	env := newTestServer(t)

	rec := env.postForm("/decisions", url.Values{"question": {""}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty question: expected 400, got %d", rec.Code)
	}

	rec = env.postForm("/decisions", url.Values{
		"question":    {"Pick a logo"},
		"option_id":   {"", "", ""},
		"option_text": {"Wordmark", "Mascot", ""},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	ds := env.maps.Decisions()
	if len(ds) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(ds))
	}
	logo := ds[1]
	if logo.Question != "Pick a logo" || len(logo.Options) != 2 {
		t.Errorf("unexpected decision: %+v", logo)
	}
	if logo.X != 450 || logo.Y != 100 {
		t.Errorf("expected new node at (450,100), got (%d,%d)", logo.X, logo.Y)
	}
}

func TestDecisionEditKeepsOptionState(t *testing.T) {
	env := newTestServer(t)
	if rec := env.postForm("/decisions/1/options/opt1/toggle", nil); rec.Code != http.StatusOK {
		t.Fatalf("toggle: %d", rec.Code)
	}

	rec := env.get("/decisions/1/edit")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `value="opt1"`) {
		t.Fatalf("edit form should carry option IDs: %d", rec.Code)
	}

	rec = env.postForm("/decisions/1", url.Values{
		"question":    {"License"},
		"option_id":   {"opt1", ""},
		"option_text": {"MIT", "BSD"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	d, _ := env.maps.Find("1")
	if len(d.Options) != 2 || !d.Options[0].Selected || d.Options[0].Text != "MIT" {
		t.Errorf("option state not kept: %+v", d.Options)
	}
}

func TestDecisionEditFormCanAddOptions(t *testing.T) {
	env := newTestServer(t)
	for _, path := range []string{"/decisions/new", "/decisions/1/edit"} {
		rec := env.get(path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "data-add-option") {
			t.Errorf("%s: form has no add-option control", path)
		}
	}

	// Three new rows arrive with blank IDs, as the added inputs submit them.
	rec := env.postForm("/decisions", url.Values{
		"question":    {"Database"},
		"option_id":   {"", "", ""},
		"option_text": {"Postgres", "SQLite", "Redis"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create: %d: %s", rec.Code, rec.Body.String())
	}
	var created decisions.Decision
	for _, d := range env.maps.Decisions() {
		if d.Question == "Database" {
			created = d
		}
	}
	if len(created.Options) != 3 {
		t.Errorf("expected 3 options, got %+v", created.Options)
	}
}

func TestMapShowsEmptyState(t *testing.T) {
	env := newTestServer(t)
	if rec := env.get("/decisions/partial"); strings.Contains(rec.Body.String(), "No decisions yet") {
		t.Fatal("empty state shown while decisions exist")
	}
	for _, d := range env.maps.Decisions() {
		if rec := env.delete("/decisions/" + d.ID); rec.Code != http.StatusOK {
			t.Fatalf("delete %s: %d", d.ID, rec.Code)
		}
	}

	for _, path := range []string{"/decisions/partial", "/decisions"} {
		rec := env.get(path)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "No decisions yet") {
			t.Errorf("%s: expected empty state, got %d", path, rec.Code)
		}
	}
}

func TestOptionToggleIsExclusive(t *testing.T) {
	env := newTestServer(t)
	env.postForm("/decisions/1/options/opt1/toggle", nil)
	rec := env.postForm("/decisions/1/options/opt2/toggle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: %d", rec.Code)
	}
	d, _ := env.maps.Find("1")
	selected := 0
	for _, o := range d.Options {
		if o.Selected {
			selected++
		}
	}
	if selected != 1 {
		t.Errorf("expected exactly one selected option, got %d", selected)
	}
	if rec := env.postForm("/decisions/1/options/nope/toggle", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown option: expected 404, got %d", rec.Code)
	}
}

func TestOptionLinkConnectAndDelete(t *testing.T) {
	env := newTestServer(t)
	env.postForm("/decisions", url.Values{"question": {"Hosting"}, "option_text": {"GitHub"}})
	target := env.maps.Decisions()[1].ID

	rec := env.get("/decisions/1/options/opt1/connect")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Hosting") {
		t.Fatalf("connect dialog should list targets: %d", rec.Code)
	}

	rec = env.postForm("/decisions/1/options/opt1/link", url.Values{"target": {target}})
	if rec.Code != http.StatusOK {
		t.Fatalf("link: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `data-to="`+target+`"`) {
		t.Error("map partial should draw a connector to the target")
	}

	if rec := env.postForm("/decisions/1/options/opt1/link", url.Values{"target": {"ghost"}}); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown target: expected 400, got %d", rec.Code)
	}
	if rec := env.postForm("/decisions/1/options/opt1/link", url.Values{"target": {"1"}}); rec.Code != http.StatusBadRequest {
		t.Errorf("self link: expected 400, got %d", rec.Code)
	}
	if rec := env.postForm("/decisions/ghost/options/opt1/link", url.Values{"target": {target}}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown source: expected 404, got %d", rec.Code)
	}

	if rec := env.delete("/decisions/" + target); rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	d, _ := env.maps.Find("1")
	for _, o := range d.Options {
		if o.Linked() {
			t.Errorf("option %s still links after target deletion", o.ID)
		}
	}
}

func TestOptionUnlink(t *testing.T) {
	env := newTestServer(t)
	env.postForm("/decisions", url.Values{"question": {"Hosting"}})
	target := env.maps.Decisions()[1].ID
	env.postForm("/decisions/1/options/opt2/link", url.Values{"target": {target}})

	if rec := env.delete("/decisions/1/options/opt2/link"); rec.Code != http.StatusOK {
		t.Fatalf("unlink: expected 200, got %d", rec.Code)
	}
	d, _ := env.maps.Find("1")
	if o, _ := d.Option("opt2"); o.Linked() {
		t.Error("option should be unlinked")
	}
}

func TestNodeDragSession(t *testing.T) {
	env := newTestServer(t)

	rec := env.postJSON("/decisions/1/drag/move", dragMoveRequest{})
	if rec.Code != http.StatusConflict {
		t.Fatalf("move without begin: expected 409, got %d", rec.Code)
	}

	rec = env.postJSON("/decisions/1/drag/begin", dragBeginRequest{
		Pointer: layout.Point{X: 110, Y: 110},
		Node:    layout.Rect{Left: 100, Top: 100, Width: 280, Height: 200},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("begin: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.postJSON("/decisions/1/drag/move", dragMoveRequest{
		Pointer: layout.Point{X: 210, Y: 160},
		Measurement: layout.Measurement{
			Nodes: map[string]layout.Rect{"1": {Left: 100, Top: 100, Width: 280, Height: 200}},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("move: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var pos positionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &pos); err != nil {
		t.Fatalf("decode move: %v", err)
	}
	if pos.X != 200 || pos.Y != 150 {
		t.Errorf("expected live position (200,150), got (%d,%d)", pos.X, pos.Y)
	}
	if d, _ := env.maps.Find("1"); d.X != 100 {
		t.Errorf("move must not persist, stored x=%d", d.X)
	}

	rec = env.postJSON("/decisions/1/drag/end", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("end: expected 200, got %d", rec.Code)
	}
	if d, _ := env.maps.Find("1"); d.X != 200 || d.Y != 150 {
		t.Errorf("expected stored (200,150), got (%d,%d)", d.X, d.Y)
	}

	if rec := env.postJSON("/decisions/1/drag/end", nil); rec.Code != http.StatusConflict {
		t.Errorf("second end: expected 409, got %d", rec.Code)
	}
	if rec := env.postJSON("/decisions/ghost/drag/begin", dragBeginRequest{}); rec.Code != http.StatusNotFound {
		t.Errorf("begin on unknown node: expected 404, got %d", rec.Code)
	}
}

func TestDragCancelLeavesNodeInPlace(t *testing.T) {
	env := newTestServer(t)
	env.postJSON("/decisions/1/drag/begin", dragBeginRequest{Node: layout.Rect{Left: 100, Top: 100}})
	if rec := env.postJSON("/decisions/1/drag/cancel", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("cancel: expected 204, got %d", rec.Code)
	}
	if rec := env.postJSON("/decisions/1/drag/end", nil); rec.Code != http.StatusConflict {
		t.Errorf("end after cancel: expected 409, got %d", rec.Code)
	}
}

func TestDragRoutesRejectAnotherDecision(t *testing.T) {
	env := newTestServer(t)
	other, err := env.maps.Create(context.Background(), decisions.Input{Question: "Hosting"})
	if err != nil {
		t.Fatal(err)
	}

	rec := env.postJSON("/decisions/1/drag/begin", dragBeginRequest{
		Pointer: layout.Point{X: 110, Y: 110},
		Node:    layout.Rect{Left: 100, Top: 100, Width: 280, Height: 200},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("begin: %d %s", rec.Code, rec.Body.String())
	}

	base := "/decisions/" + other.ID + "/drag/"
	if rec := env.postJSON(base+"move", dragMoveRequest{Pointer: layout.Point{X: 510, Y: 410}}); rec.Code != http.StatusConflict {
		t.Errorf("move on another decision: expected 409, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := env.postJSON(base+"end", nil); rec.Code != http.StatusConflict {
		t.Errorf("end on another decision: expected 409, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := env.postJSON(base+"cancel", nil); rec.Code != http.StatusConflict {
		t.Errorf("cancel on another decision: expected 409, got %d", rec.Code)
	}
	if d, _ := env.maps.Find("1"); d.X != 100 || d.Y != 100 {
		t.Errorf("decision 1 moved to (%d,%d)", d.X, d.Y)
	}
	if d, _ := env.maps.Find(other.ID); d.X != other.X || d.Y != other.Y {
		t.Errorf("decision %s moved to (%d,%d)", other.ID, d.X, d.Y)
	}

	// The original drag is still live and finishes normally.
	if rec := env.postJSON("/decisions/1/drag/end", nil); rec.Code != http.StatusOK {
		t.Errorf("end on the dragged decision: %d", rec.Code)
	}
}

func TestConnectorsFromMeasurement(t *testing.T) {
	env := newTestServer(t)
	env.postForm("/decisions", url.Values{"question": {"Hosting"}})
	target := env.maps.Decisions()[1].ID
	env.postForm("/decisions/1/options/opt1/link", url.Values{"target": {target}})

	m := layout.Measurement{
		Nodes: map[string]layout.Rect{
			"1":    {Left: 100, Top: 100, Width: 280, Height: 200},
			target: {Left: 600, Top: 100, Width: 280, Height: 150},
		},
		Options: map[string]map[string]layout.Rect{
			"1": {"opt1": {Left: 100, Top: 170, Width: 280, Height: 34}},
		},
	}
	rec := env.postJSON("/decisions/connectors", m)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var conns []layout.Connector
	if err := json.Unmarshal(rec.Body.Bytes(), &conns); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(conns) != 1 {
		t.Fatalf("expected 1 connector, got %d", len(conns))
	}
	if conns[0].Start != (layout.Point{X: 380, Y: 187}) || conns[0].End != (layout.Point{X: 600, Y: 175}) {
		t.Errorf("unexpected endpoints: %+v", conns[0])
	}

	if rec := env.postJSON("/decisions/connectors", "not geometry"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad body: expected 400, got %d", rec.Code)
	}
}

func TestFitAndExports(t *testing.T) {
	env := newTestServer(t)

	rec := env.get("/decisions/fit")
	var fit fitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &fit); err != nil {
		t.Fatalf("decode fit: %v", err)
	}
	if !fit.OK || fit.X != 60 || fit.Y != 60 {
		t.Errorf("unexpected fit: %+v", fit)
	}

	rec = env.get("/decisions/export.yaml")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Open source license") {
		t.Errorf("yaml export: %d %s", rec.Code, rec.Body.String())
	}

	rec = env.get("/decisions/export.dot")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "digraph") {
		t.Errorf("dot export: %d %s", rec.Code, rec.Body.String())
	}

	rec = env.get("/decisions/export.svg")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/svg+xml" {
		t.Errorf("svg export: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "<svg><!-- digraph") {
		t.Errorf("svg body = %q", rec.Body.String())
	}

	rec = env.get("/decisions/export.png")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("png export without graphviz: %d", rec.Code)
	}
}

func TestAPIListings(t *testing.T) {
	env := newTestServer(t)

	var cards []kanban.Card
	if err := json.Unmarshal(env.get("/api/cards").Body.Bytes(), &cards); err != nil {
		t.Fatalf("decode cards: %v", err)
	}
	if len(cards) != 4 {
		t.Errorf("expected 4 cards, got %d", len(cards))
	}

	var ds []map[string]any
	if err := json.Unmarshal(env.get("/api/decisions").Body.Bytes(), &ds); err != nil {
		t.Fatalf("decode decisions: %v", err)
	}
	if len(ds) != 1 || ds[0]["question"] != "Open source license" {
		t.Errorf("unexpected decisions: %v", ds)
	}
}

func TestMarkdownEvaluationRendersWithoutRawHTML(t *testing.T) {
	env := newTestServer(t)
	env.postForm("/decisions/1", url.Values{
		"question":    {"Open source license"},
		"option_id":   {"opt1"},
		"option_text": {"MIT License"},
		"evaluation":  {"**Strong** pick <script>alert(1)</script>"},
	})
	body := env.get("/decisions/partial").Body.String()
	if !strings.Contains(body, "<strong>Strong</strong>") {
		t.Error("evaluation markdown should render")
	}
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("raw HTML in evaluation must not pass through")
	}
}

func TestRelativeDate(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-time.Hour), "Today"},
		{now.Add(-30 * time.Hour), "Yesterday"},
		{now.Add(-4 * 24 * time.Hour), "4 days ago"},
		{time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "1 Feb"},
	}
	for _, tc := range cases {
		if got := relativeDate(tc.at, now); got != tc.want {
			t.Errorf("relativeDate(%v) = %q, want %q", tc.at, got, tc.want)
		}
	}
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	h := requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pot", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418 passed through, got %d", rec.Code)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	env := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}
