package server

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/apphelix/engagement-tracker/internal/entity"
	"github.com/apphelix/engagement-tracker/internal/extract"
	"github.com/apphelix/engagement-tracker/internal/llm"
	"github.com/apphelix/engagement-tracker/internal/pipeline"
	"github.com/apphelix/engagement-tracker/internal/repository"
	"github.com/apphelix/engagement-tracker/internal/risk"
	"github.com/apphelix/engagement-tracker/internal/validate"

	"github.com/apphelix/engagement-tracker/constants"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// scriptedCompletion answers sentiment and action-item calls with canned JSON,
// keyed off the system prompt.
type scriptedCompletion struct {
	sentimentJSON string
	itemsJSON     string
}

func (s *scriptedCompletion) Complete(ctx context.Context, system, user string) (string, error) {
	if strings.Contains(system, "actionable commitment") {
		return s.itemsJSON, nil
	}
	return s.sentimentJSON, nil
}

func newTestServer(t *testing.T, svc llm.CompletionService) *Server {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	store := repository.NewStore(db, "sqlite", nil)
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	insights := llm.NewExtractor(svc, nil)
	validator := validate.NewValidator(0, nil)
	registry := extract.NewRegistry(nil)
	assessor := risk.NewAssessor(insights, constants.StatusGreen, nil)
	processor := pipeline.NewProcessor(validator, registry, insights, assessor, store, nil)

	return NewServer(store, processor, t.TempDir(), nil)
}

func createEngagementViaAPI(t *testing.T, router *gin.Engine) uuid.UUID {
	t.Helper()
	body := `{"customer_id":"` + uuid.New().String() + `","name":"Acme rollout"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/engagements", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create engagement: status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.ID
}

func docxPayload(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	doc := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func multipartFile(t *testing.T, fieldFile, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(fieldFile, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &scriptedCompletion{sentimentJSON: `{}`, itemsJSON: `[]`})
	router := srv.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
}

func TestUploadDocumentHappyPath(t *testing.T) {
	t.Parallel()

	svc := &scriptedCompletion{
		sentimentJSON: `{"sentiment":"negative","score":-0.7,"risk_factors":["escalation"]}`,
		itemsJSON:     `[{"description":"Escalate to leadership","priority":"high"}]`,
	}
	srv := newTestServer(t, svc)
	router := srv.Router()
	engID := createEngagementViaAPI(t, router)

	body, contentType := multipartFile(t, "file", "complaint.docx",
		docxPayload(t, "Customer is unhappy with progress."),
		map[string]string{"file_type": "other", "uploaded_by": "am@example.com"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/engagements/"+engID.String()+"/documents", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Document struct {
			ID          uuid.UUID `json:"id"`
			TextContent string    `json:"text_content"`
			Sentiment   string    `json:"sentiment"`
		} `json:"document"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Document.TextContent != "Customer is unhappy with progress." {
		t.Fatalf("unexpected text: %q", resp.Document.TextContent)
	}
	if resp.Document.Sentiment != "negative" {
		t.Fatalf("unexpected sentiment: %q", resp.Document.Sentiment)
	}

	// The stored file exists under the upload dir.
	entries, err := os.ReadDir(srv.uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one stored file, got %d", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".docx" {
		t.Fatalf("extension not preserved: %s", entries[0].Name())
	}
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &scriptedCompletion{sentimentJSON: `{}`, itemsJSON: `[]`})
	router := srv.Router()
	engID := createEngagementViaAPI(t, router)

	body, contentType := multipartFile(t, "file", "photo.png",
		[]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/engagements/"+engID.String()+"/documents", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	// Rejected files are not kept.
	entries, err := os.ReadDir(srv.uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected upload left %d files behind", len(entries))
	}
}

func TestUploadUnknownEngagement(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &scriptedCompletion{sentimentJSON: `{}`, itemsJSON: `[]`})
	router := srv.Router()

	body, contentType := multipartFile(t, "file", "a.docx", docxPayload(t, "hello"), nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/engagements/"+uuid.New().String()+"/documents", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
}

func TestAnalyzeEngagementEndToEnd(t *testing.T) {
	t.Parallel()

	svc := &scriptedCompletion{
		sentimentJSON: `{"sentiment":"negative","score":-0.8,"risk_factors":["churn"]}`,
		itemsJSON:     `[{"description":"Save the account","priority":"high"}]`,
	}
	srv := newTestServer(t, svc)
	router := srv.Router()
	engID := createEngagementViaAPI(t, router)

	// Feed the engagement an email so there is text to analyze.
	emailBody := `{"subject":"frustrated","sender":"client@example.com","content":"We are considering other vendors."}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/engagements/"+engID.String()+"/emails", strings.NewReader(emailBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("ingest email: status %d, body %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/engagements/"+engID.String()+"/analyze", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("analyze: status %d, body %s", w.Code, w.Body.String())
	}

	var assessment struct {
		Status constants.RiskStatus `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &assessment); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if assessment.Status != constants.StatusRed {
		t.Fatalf("expected red, got %q", assessment.Status)
	}

	// The status is persisted and visible on the dashboard.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/at-risk", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("at-risk: status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), engID.String()) {
		t.Fatalf("engagement missing from at-risk list: %s", w.Body.String())
	}

	// Action items were written back.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/engagements/"+engID.String()+"/action-items", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("action items: status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Save the account") {
		t.Fatalf("action item missing: %s", w.Body.String())
	}
}

func TestStatusDistributionEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &scriptedCompletion{sentimentJSON: `{}`, itemsJSON: `[]`})
	router := srv.Router()
	createEngagementViaAPI(t, router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/status-distribution", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	var resp struct {
		Distribution map[constants.RiskStatus]int `json:"distribution"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Distribution[constants.StatusGreen] != 1 {
		t.Fatalf("unexpected distribution: %v", resp.Distribution)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &scriptedCompletion{sentimentJSON: `{}`, itemsJSON: `[]`})
	router := srv.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents/"+uuid.New().String(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents/not-a-uuid", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d for bad uuid", w.Code)
	}
}

func TestCustomerEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &scriptedCompletion{sentimentJSON: `{}`, itemsJSON: `[]`})
	router := srv.Router()

	create := func(body string) entity.Customer {
		t.Helper()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("create customer: status %d, body %s", w.Code, w.Body.String())
		}
		var c entity.Customer
		if err := json.Unmarshal(w.Body.Bytes(), &c); err != nil {
			t.Fatalf("decode customer: %v", err)
		}
		return c
	}

	acme := create(`{"name":"Acme Corp","industry":"Manufacturing","contact_email":"ops@acme.example.com"}`)
	create(`{"name":"Globex","industry":"Energy"}`)

	// Name is mandatory.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(`{"industry":"Retail"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("nameless create: status %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/customers", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	var listed []entity.Customer
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(listed))
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/customers?q=manufact", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("search: status %d", w.Code)
	}
	var hits []entity.Customer
	if err := json.Unmarshal(w.Body.Bytes(), &hits); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != acme.ID {
		t.Fatalf("unexpected search hits: %+v", hits)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/customers/"+acme.ID.String(), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get: status %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/customers/"+uuid.New().String(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("get missing: status %d", w.Code)
	}
}

func TestListCustomerEngagements(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &scriptedCompletion{sentimentJSON: `{}`, itemsJSON: `[]`})
	router := srv.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(`{"name":"Initech"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create customer: status %d, body %s", w.Code, w.Body.String())
	}
	var cust entity.Customer
	if err := json.Unmarshal(w.Body.Bytes(), &cust); err != nil {
		t.Fatalf("decode customer: %v", err)
	}

	body := `{"customer_id":"` + cust.ID.String() + `","name":"Migration"}`
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/engagements", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create engagement: status %d", w.Code)
	}
	createEngagementViaAPI(t, router) // belongs to a different customer

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/customers/"+cust.ID.String()+"/engagements", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list engagements: status %d", w.Code)
	}
	var engs []entity.Engagement
	if err := json.Unmarshal(w.Body.Bytes(), &engs); err != nil {
		t.Fatalf("decode engagements: %v", err)
	}
	if len(engs) != 1 || engs[0].Name != "Migration" {
		t.Fatalf("unexpected engagements: %+v", engs)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/customers/"+uuid.New().String()+"/engagements", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("engagements for missing customer: status %d", w.Code)
	}
}
