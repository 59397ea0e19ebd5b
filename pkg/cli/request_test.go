package cli

import (
	"os"
	"path/filepath"
	"testing"
)

type testRequest struct {
	Op   string `yaml:"op" json:"op"`
	Name string `yaml:"name" json:"name"`
}

func TestLoadRequest_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "request.yaml")
	if err := os.WriteFile(path, []byte("op: query\nname: support-kb\n"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	var req testRequest
	if err := LoadRequest(path, &req); err != nil {
		t.Fatalf("LoadRequest error: %v", err)
	}

	if req.Op != "query" || req.Name != "support-kb" {
		t.Errorf("req = %+v, want op=query name=support-kb", req)
	}
}

func TestLoadRequest_JSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "request.json")
	if err := os.WriteFile(path, []byte(`{"op":"list_collections"}`), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	var req testRequest
	if err := LoadRequest(path, &req); err != nil {
		t.Fatalf("LoadRequest error: %v", err)
	}

	if req.Op != "list_collections" {
		t.Errorf("Op = %q, want %q", req.Op, "list_collections")
	}
}

func TestLoadRequest_Missing(t *testing.T) {
	var req testRequest
	if err := LoadRequest(filepath.Join(t.TempDir(), "nope.yaml"), &req); err == nil {
		t.Error("LoadRequest should fail for a missing file")
	}
}

func TestParseRequest_UnknownExtension(t *testing.T) {
	// Unknown extensions try YAML first, then JSON
	var req testRequest
	if err := ParseRequest([]byte(`{"op":"query"}`), "request.txt", &req); err != nil {
		t.Fatalf("ParseRequest error: %v", err)
	}
	if req.Op != "query" {
		t.Errorf("Op = %q, want %q", req.Op, "query")
	}

	if err := ParseRequest([]byte("{not valid"), "request.txt", &req); err == nil {
		t.Error("ParseRequest should fail for unparseable content")
	}
}
