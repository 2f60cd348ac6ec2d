package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/FocuswithJustin/SchemaCanvas/core/dialect"
	"github.com/FocuswithJustin/SchemaCanvas/core/graph"
	"github.com/FocuswithJustin/SchemaCanvas/core/session"
	"github.com/FocuswithJustin/SchemaCanvas/core/sqlgen"
	"github.com/FocuswithJustin/SchemaCanvas/internal/logging"
)

func demoGraph() *graph.SchemaGraph {
	g := graph.NewSchemaGraph()

	users := graph.NewTable("users")
	users.Layout = graph.Layout{Position: graph.Position{X: 40, Y: 60}}
	id := graph.NewColumn("id", graph.TypeUUID)
	id.AddConstraint(graph.ConstraintPrimary)
	users.AddColumn(id)
	email := graph.NewColumn("email", graph.TypeVarchar)
	email.AddConstraint(graph.ConstraintNotNull)
	users.AddColumn(email)
	g.AddTable(users)

	orders := graph.NewTable("orders")
	oid := graph.NewColumn("id", graph.TypeUUID)
	oid.AddConstraint(graph.ConstraintPrimary)
	orders.AddColumn(oid)
	orders.AddColumn(graph.NewColumn("user_id", graph.TypeUUID))
	g.AddTable(orders)

	g.AddEdge(&graph.ForeignKeyEdge{
		SourceTable:  "orders",
		SourceColumn: "user_id",
		TargetTable:  "users",
		TargetColumn: "id",
		OnDelete:     graph.ActionCascade,
	})
	return g
}

func newTestAPI(t *testing.T) *http.ServeMux {
	t.Helper()
	ServerConfig = Config{}
	activeSession = session.New(dialect.Postgres, demoGraph())
	GlobalHub = NewHub()
	return setupRoutes()
}

func do(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) SessionStatus {
	t.Helper()
	var st SessionStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decoding status: %v\n%s", err, rec.Body.String())
	}
	return st
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding error payload: %v\n%s", err, rec.Body.String())
	}
	return payload.Message
}

// captureLogs rebuilds the logger onto a pipe for the duration of f and
// returns what it logged. The logger binds its writer at init time, so
// swapping os.Stdout alone is not enough.
func captureLogs(t *testing.T, f func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	logging.InitLogger(logging.LevelInfo, logging.FormatJSON)
	defer func() {
		os.Stdout = orig
		logging.InitLogger(logging.LevelInfo, logging.FormatJSON)
	}()

	f()

	w.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRootListsEndpoints(t *testing.T) {
	mux := newTestAPI(t)

	rec := do(t, mux, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "SchemaCanvas API") {
		t.Errorf("root response missing name:\n%s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "WS /ws") {
		t.Errorf("root response missing ws endpoint:\n%s", rec.Body.String())
	}
}

func TestUnknownPathNotFound(t *testing.T) {
	mux := newTestAPI(t)

	rec := do(t, mux, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "Endpoint not found" {
		t.Errorf("message = %q", msg)
	}
}

func TestHealth(t *testing.T) {
	mux := newTestAPI(t)

	rec := do(t, mux, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info HealthInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if info.Status != "healthy" {
		t.Errorf("status = %q", info.Status)
	}
	if info.State != string(session.Clean) {
		t.Errorf("state = %q, want clean", info.State)
	}
	if info.Dialect != string(dialect.Postgres) {
		t.Errorf("dialect = %q", info.Dialect)
	}
	if info.Tables != 2 {
		t.Errorf("tables = %d, want 2", info.Tables)
	}

	if rec := do(t, mux, http.MethodPost, "/health", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /health status = %d, want 405", rec.Code)
	}
}

func TestSchemaReturnsBlueprintDocument(t *testing.T) {
	mux := newTestAPI(t)

	rec := do(t, mux, http.MethodGet, "/schema", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	g, err := graph.ParseDocument(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("response is not a blueprint document: %v", err)
	}
	if _, ok := g.TableByLabel("users"); !ok {
		t.Error("users table missing from schema response")
	}
	if len(g.Edges) != 1 {
		t.Errorf("edges = %d, want 1", len(g.Edges))
	}
}

func TestDDLEndpoint(t *testing.T) {
	mux := newTestAPI(t)

	rec := do(t, mux, http.MethodGet, "/ddl", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "CREATE TABLE users") {
		t.Errorf("DDL missing users table:\n%s", rec.Body.String())
	}
	if got, want := rec.Header().Get("X-Schema-Fingerprint"), sqlgen.Fingerprint(rec.Body.String()); got != want {
		t.Errorf("fingerprint header = %q, want %q", got, want)
	}
}

func TestEditApplyFlow(t *testing.T) {
	mux := newTestAPI(t)

	ddl := do(t, mux, http.MethodGet, "/ddl", "").Body.String()
	edited := strings.Replace(ddl, "email varchar(255) NOT NULL",
		"email varchar(255) NOT NULL,\n  nickname text", 1)
	if edited == ddl {
		t.Fatalf("fixture DDL changed, cannot splice edit:\n%s", ddl)
	}

	rec := do(t, mux, http.MethodPost, "/edit", edited)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d: %s", rec.Code, rec.Body.String())
	}
	if st := decodeStatus(t, rec); st.State != string(session.Editing) {
		t.Errorf("state after edit = %q, want editing", st.State)
	}

	rec = do(t, mux, http.MethodPost, "/apply", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("apply status = %d: %s", rec.Code, rec.Body.String())
	}

	g, err := graph.ParseDocument(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("apply response is not a blueprint document: %v", err)
	}
	users, ok := g.TableByLabel("users")
	if !ok {
		t.Fatal("users table missing after apply")
	}
	if _, ok := users.ColumnByTitle("nickname"); !ok {
		t.Error("nickname column missing after apply")
	}
	if users.Layout.Position.X != 40 {
		t.Errorf("layout lost on apply: X = %v", users.Layout.Position.X)
	}

	var info HealthInfo
	health := do(t, mux, http.MethodGet, "/health", "")
	if err := json.Unmarshal(health.Body.Bytes(), &info); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if info.State != string(session.Clean) {
		t.Errorf("state after apply = %q, want clean", info.State)
	}
}

func TestApplyParseFailure(t *testing.T) {
	mux := newTestAPI(t)

	broken := "CREATE TABLE users (id notarealtype);"
	if rec := do(t, mux, http.MethodPost, "/edit", broken); rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d", rec.Code)
	}

	rec := do(t, mux, http.MethodPost, "/apply", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("apply status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
	if msg := decodeMessage(t, rec); msg == "" {
		t.Error("error message empty")
	}

	// The buffer keeps the broken text; the committed graph is untouched.
	if got := do(t, mux, http.MethodGet, "/ddl", "").Body.String(); got != broken {
		t.Errorf("DDL after failed apply = %q, want the broken text", got)
	}
	g, err := graph.ParseDocument(do(t, mux, http.MethodGet, "/schema", "").Body.Bytes())
	if err != nil {
		t.Fatalf("schema response: %v", err)
	}
	if _, ok := g.TableByLabel("orders"); !ok {
		t.Error("committed graph lost orders after failed apply")
	}
}

func TestApplyFailureLogged(t *testing.T) {
	mux := newTestAPI(t)

	if rec := do(t, mux, http.MethodPost, "/edit", "CREATE TABLE users (id notarealtype);"); rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d", rec.Code)
	}

	var rec *httptest.ResponseRecorder
	logged := captureLogs(t, func() {
		rec = do(t, mux, http.MethodPost, "/apply", "")
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("apply status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(logged, "pipeline_error") {
		t.Errorf("log output missing pipeline_error event:\n%s", logged)
	}
	if !strings.Contains(logged, `"stage":"apply"`) {
		t.Errorf("log output missing apply stage:\n%s", logged)
	}
}

func TestApplyWarningsLogged(t *testing.T) {
	ServerConfig = Config{}
	g := demoGraph()
	g.AddEnum(graph.NewEnumType("order_status", "pending", "shipped"))
	orders, ok := g.TableByLabel("orders")
	if !ok {
		t.Fatal("orders table missing from fixture")
	}
	status := graph.NewColumn("status", graph.TypeEnum)
	status.EnumRef = "order_status"
	orders.AddColumn(status)
	activeSession = session.New(dialect.Postgres, g)
	GlobalHub = NewHub()
	mux := setupRoutes()

	// Open an edit, then defer a switch to a dialect that cannot render
	// the enum column; the apply regenerates with a warning.
	ddl := do(t, mux, http.MethodGet, "/ddl", "").Body.String()
	if rec := do(t, mux, http.MethodPost, "/edit", ddl); rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodPost, "/settings", `{"dialect":"mysql"}`); rec.Code != http.StatusOK {
		t.Fatalf("settings status = %d", rec.Code)
	}

	var rec *httptest.ResponseRecorder
	logged := captureLogs(t, func() {
		rec = do(t, mux, http.MethodPost, "/apply", "")
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("apply status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(logged, "generation_warnings") {
		t.Errorf("log output missing generation_warnings event:\n%s", logged)
	}
	if !strings.Contains(logged, `"dialect":"mysql"`) {
		t.Errorf("log output missing dialect:\n%s", logged)
	}
}

func TestApplyWithoutEdit(t *testing.T) {
	mux := newTestAPI(t)

	rec := do(t, mux, http.MethodPost, "/apply", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
}

func TestCancelRestoresSnapshot(t *testing.T) {
	mux := newTestAPI(t)

	before := do(t, mux, http.MethodGet, "/ddl", "").Body.String()
	do(t, mux, http.MethodPost, "/edit", "CREATE TABLE scratch (id uuid);")

	rec := do(t, mux, http.MethodPost, "/cancel", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d: %s", rec.Code, rec.Body.String())
	}
	if st := decodeStatus(t, rec); st.State != string(session.Clean) {
		t.Errorf("state after cancel = %q, want clean", st.State)
	}
	if after := do(t, mux, http.MethodGet, "/ddl", "").Body.String(); after != before {
		t.Errorf("DDL not restored:\n%s", after)
	}
}

func TestCancelWithoutEdit(t *testing.T) {
	mux := newTestAPI(t)

	if rec := do(t, mux, http.MethodPost, "/cancel", ""); rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestSettingsImmediateWhenClean(t *testing.T) {
	mux := newTestAPI(t)

	rec := do(t, mux, http.MethodPost, "/settings", `{"dialect":"mysql"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("settings status = %d: %s", rec.Code, rec.Body.String())
	}
	if st := decodeStatus(t, rec); st.Dialect != string(dialect.MySQL) {
		t.Errorf("dialect = %q, want mysql", st.Dialect)
	}
	if ddl := do(t, mux, http.MethodGet, "/ddl", "").Body.String(); !strings.Contains(ddl, "VARCHAR(255)") {
		t.Errorf("DDL not regenerated for mysql:\n%s", ddl)
	}
}

func TestSettingsInlineConstraints(t *testing.T) {
	mux := newTestAPI(t)

	rec := do(t, mux, http.MethodPost, "/settings", `{"useInlineConstraints":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("settings status = %d", rec.Code)
	}

	ddl := do(t, mux, http.MethodGet, "/ddl", "").Body.String()
	if strings.Contains(ddl, "ALTER TABLE") {
		t.Errorf("inline mode still emits ALTER TABLE:\n%s", ddl)
	}
	if !strings.Contains(ddl, "REFERENCES users (id)") {
		t.Errorf("inline reference missing:\n%s", ddl)
	}
}

func TestSettingsDeferredWhileEditing(t *testing.T) {
	mux := newTestAPI(t)

	do(t, mux, http.MethodPost, "/edit", "CREATE TABLE scratch (id uuid);")

	rec := do(t, mux, http.MethodPost, "/settings", `{"dialect":"mysql"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("settings status = %d: %s", rec.Code, rec.Body.String())
	}
	st := decodeStatus(t, rec)
	if st.Dialect != string(dialect.Postgres) {
		t.Errorf("dialect changed mid-edit: %q", st.Dialect)
	}
	if len(st.Notices) == 0 || !strings.Contains(st.Notices[0], "deferred") {
		t.Errorf("notices = %v, want deferral notice", st.Notices)
	}
}

func TestSettingsUnknownDialect(t *testing.T) {
	mux := newTestAPI(t)

	rec := do(t, mux, http.MethodPost, "/settings", `{"dialect":"oracle"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	if msg := decodeMessage(t, rec); !strings.Contains(msg, "oracle") {
		t.Errorf("message = %q, want the rejected dialect named", msg)
	}
}

func TestSettingsBadJSON(t *testing.T) {
	mux := newTestAPI(t)

	rec := do(t, mux, http.MethodPost, "/settings", "{")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestExportDownload(t *testing.T) {
	mux := newTestAPI(t)

	rec := do(t, mux, http.MethodGet, "/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	disposition := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(disposition, `attachment; filename="schema_postgresql_`) {
		t.Errorf("disposition = %q", disposition)
	}
	if !strings.HasSuffix(disposition, `.sql"`) {
		t.Errorf("disposition = %q, want .sql filename", disposition)
	}

	ddl := do(t, mux, http.MethodGet, "/ddl", "").Body.String()
	if rec.Body.String() != ddl {
		t.Error("export body differs from /ddl")
	}
}

func TestEditMethodNotAllowed(t *testing.T) {
	mux := newTestAPI(t)

	for _, path := range []string{"/edit", "/apply", "/cancel", "/settings"} {
		if rec := do(t, mux, http.MethodGet, path, ""); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s status = %d, want 405", path, rec.Code)
		}
	}
	for _, path := range []string{"/schema", "/ddl", "/export"} {
		if rec := do(t, mux, http.MethodPost, path, "x"); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s status = %d, want 405", path, rec.Code)
		}
	}
}
