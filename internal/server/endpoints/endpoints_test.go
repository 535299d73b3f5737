package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cardexhq/cardex/internal/config"
	"github.com/cardexhq/cardex/internal/providers"
)

func testDeps(t *testing.T, client providers.VisionClient) Deps {
	t.Helper()
	cm, err := config.NewManager(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	reg := providers.NewRegistry()
	if client != nil {
		reg.Register(client)
	}
	return Deps{ConfigManager: cm, Registry: reg}
}

func TestHealthEndpoint(t *testing.T) {
	ep := &HealthEndpoint{}
	_, _, handler := ep.Route()

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestModelsEndpoint(t *testing.T) {
	ep := &ModelsEndpoint{Deps: testDeps(t, nil)}
	_, _, handler := ep.Route()

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/models", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp ModelsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Default == "" || len(resp.Allowed) == 0 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestBatchEndpointValidation(t *testing.T) {
	tests := []struct {
		name string
		req  BatchRequest
	}{
		{"no source", BatchRequest{}},
		{"both sources", BatchRequest{DriveFolderID: "x", LocalFolderPath: "/tmp/y"}},
		{"concurrency too high", BatchRequest{LocalFolderPath: "/tmp/y", Concurrency: 21}},
		{"concurrency negative", BatchRequest{LocalFolderPath: "/tmp/y", Concurrency: -1}},
		{"negative max files", BatchRequest{LocalFolderPath: "/tmp/y", MaxFiles: -5}},
		{"model not allowed", BatchRequest{LocalFolderPath: "/tmp/y", Model: "evil/model"}},
	}

	ep := &BatchEndpoint{Deps: testDeps(t, providers.NewMockClient())}
	_, _, handler := ep.Route()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.req)
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest("POST", "/batch/folder", bytes.NewReader(body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestBatchEndpointLocalDryRun(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "card.jpg"), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}

	mock := providers.NewMockClient(
		providers.MockResponse{Content: `{"rows":[{
			"timestamp": null, "fullName": "Jane", "jobTitle": null, "company": null,
			"phone1": null, "phone2": null, "email1": "jane@x.com", "email2": null,
			"website": null, "address": null, "notes": null, "confidence": 0.9,
			"rawText": null, "fileName": null, "fileId": null, "fileLink": null
		}]}`},
	)

	ep := &BatchEndpoint{Deps: testDeps(t, mock)}
	_, _, handler := ep.Route()

	body, _ := json.Marshal(BatchRequest{LocalFolderPath: dir, DryRun: true})
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/batch/folder", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp BatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.FolderMode != "local" {
		t.Errorf("folderMode = %q", resp.FolderMode)
	}
	if !resp.DryRun {
		t.Error("dryRun should echo back true")
	}
	if resp.FilesFound != 1 || resp.FilesProcessed != 1 || resp.RowsExtracted != 1 {
		t.Errorf("unexpected counts %+v", resp)
	}
	if resp.RowsAppended != 0 {
		t.Errorf("dry run appended %d rows", resp.RowsAppended)
	}
	if len(resp.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(resp.Rows))
	}

	// All 16 columns must be present in the row JSON, nulls included.
	var rawResp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &rawResp); err != nil {
		t.Fatal(err)
	}
	row := rawResp["rows"].([]any)[0].(map[string]any)
	if len(row) != 16 {
		t.Errorf("row JSON has %d keys, want 16", len(row))
	}
}

func TestBatchEndpointMissingLocalFolder(t *testing.T) {
	ep := &BatchEndpoint{Deps: testDeps(t, providers.NewMockClient())}
	_, _, handler := ep.Route()

	body, _ := json.Marshal(BatchRequest{LocalFolderPath: filepath.Join(t.TempDir(), "nope"), DryRun: true})
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/batch/folder", bytes.NewReader(body)))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 (%s)", rec.Code, rec.Body.String())
	}
}
