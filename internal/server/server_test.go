package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yourorg/scaffold/internal/config"
	"github.com/yourorg/scaffold/internal/store"
	"github.com/yourorg/scaffold/pkg/types"
)

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()

	cfg := &config.Config{}
	cfg.SetDefaults()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "scaffold.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(cfg, st, logger)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, st
}

func postJSON(t *testing.T, srv *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestGenerateFull(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"page_name": "Payment", "odata": {"DocNo": "INV001", "Amount": 150.5, "IsPosted": true, "CreatedDate": "2024-01-15"}}`
	rec := postJSON(t, srv, "/api/generate-full", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success   bool           `json:"success"`
		SessionID string         `json:"session_id"`
		Code      types.FullCode `json:"code"`
		Metadata  struct {
			PrimaryKey       string   `json:"primary_key"`
			UserFilterFields []string `json:"user_filter_fields"`
			DatatableFields  []string `json:"datatable_fields"`
		} `json:"metadata"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success")
	}
	if resp.Metadata.PrimaryKey != "DocNo" {
		t.Fatalf("unexpected primary key %q", resp.Metadata.PrimaryKey)
	}
	want := []string{"DocNo", "CreatedDate", "Amount", "IsPosted"}
	if len(resp.Metadata.DatatableFields) != len(want) {
		t.Fatalf("datatable fields = %v", resp.Metadata.DatatableFields)
	}
	for i, name := range want {
		if resp.Metadata.DatatableFields[i] != name {
			t.Fatalf("datatable fields = %v, want %v", resp.Metadata.DatatableFields, want)
		}
	}
	if !strings.Contains(resp.Code.Model, "public class PaymentVoucher") {
		t.Fatalf("unexpected model fragment:\n%s", resp.Code.Model)
	}
	if resp.SessionID == "" {
		t.Fatalf("expected a session id")
	}
}

func TestGenerateFullPersistsSession(t *testing.T) {
	srv, st := newTestServer(t)

	body := `{"page_name": "Payment", "odata": {"DocNo": "INV001"}}`
	rec := postJSON(t, srv, "/api/generate-full", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	sess, err := st.GetSession(resp.SessionID)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if sess.Kind != "full" || sess.FieldCount != 1 {
		t.Fatalf("unexpected session %+v", sess)
	}
	fragments, err := st.GetFragments(resp.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(fragments) != 5 {
		t.Fatalf("expected 5 fragments, got %d", len(fragments))
	}
}

func TestGenerateFullRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []string{
		`{"page_name": "Payment", "odata": [1, 2]}`,
		`{"page_name": "Payment", "odata": "text"}`,
		`{"page_name": "", "odata": {"A": 1}}`,
		`{broken`,
	}
	for _, body := range cases {
		rec := postJSON(t, srv, "/api/generate-full", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d", body, rec.Code)
		}
	}
}

func TestGenerateLines(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"page_name": "Payment", "odata": {"LineNo": 1, "Description": "x", "Amount": 5.5}}`
	rec := postJSON(t, srv, "/api/generate-lines", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool            `json:"success"`
		Code    types.LinesCode `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Code.Model, "public class PaymentLinesModel") {
		t.Fatalf("unexpected lines model:\n%s", resp.Code.Model)
	}
	if !strings.Contains(resp.Code.ControllerMethod, "PaymentLines(string documentNo)") {
		t.Fatalf("unexpected controller method:\n%s", resp.Code.ControllerMethod)
	}
}

func TestGenerateFunction(t *testing.T) {
	srv, _ := newTestServer(t)

	payload := map[string]any{
		"page_name": "Payment",
		"function_xml": `<s:element name="PostPayment"><s:complexType><s:sequence>
			<s:element minOccurs="1" maxOccurs="1" name="DocNo" type="s:string" />
			<s:element minOccurs="0" maxOccurs="1" name="Amount" type="s:decimal" />
		</s:sequence></s:complexType></s:element>`,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	rec := postJSON(t, srv, "/api/generate-function", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success        bool               `json:"success"`
		Parameters     []types.Parameter  `json:"parameters"`
		IsLineFunction bool               `json:"is_line_function"`
		Code           types.FunctionCode `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(resp.Parameters))
	}
	if !resp.IsLineFunction {
		t.Fatalf("DocNo parameter must mark a line function")
	}
	if !resp.Parameters[0].IsRequired || resp.Parameters[1].IsRequired {
		t.Fatalf("unexpected required flags %+v", resp.Parameters)
	}
	if !strings.Contains(resp.Code.RequestModel, "PostPaymentRequest") {
		t.Fatalf("unexpected request model:\n%s", resp.Code.RequestModel)
	}
}

func TestSessionsListAndDetail(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv, "/api/generate-full", `{"page_name": "Payment", "odata": {"DocNo": "1"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d", rec.Code)
	}
	var genResp struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&genResp); err != nil {
		t.Fatal(err)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	listRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(listRec, listReq)
	if listRec.Code != http.StatusOK {
		t.Fatalf("list status = %d", listRec.Code)
	}
	var sessions []types.Session
	if err := json.NewDecoder(listRec.Body).Decode(&sessions); err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}

	detailReq := httptest.NewRequest(http.MethodGet, "/api/sessions/"+genResp.SessionID, nil)
	detailRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(detailRec, detailReq)
	if detailRec.Code != http.StatusOK {
		t.Fatalf("detail status = %d", detailRec.Code)
	}
	var detail struct {
		Session   *types.Session   `json:"session"`
		Fragments []types.Fragment `json:"fragments"`
	}
	if err := json.NewDecoder(detailRec.Body).Decode(&detail); err != nil {
		t.Fatal(err)
	}
	if detail.Session == nil || detail.Session.ID != genResp.SessionID {
		t.Fatalf("unexpected session %+v", detail.Session)
	}
	if len(detail.Fragments) != 5 {
		t.Fatalf("expected 5 fragments, got %d", len(detail.Fragments))
	}

	delReq := httptest.NewRequest(http.MethodDelete, "/api/sessions/"+genResp.SessionID, nil)
	delRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(delRec, delReq)
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", delRec.Code)
	}
	missingRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(missingRec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+genResp.SessionID, nil))
	if missingRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", missingRec.Code)
	}
}

func TestIndexHTML(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("scaffold")) {
		t.Fatalf("expected body to contain scaffold")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/generate-full", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
