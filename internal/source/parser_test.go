package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeExport creates a temp JSONL file and returns a DiscoveredFile for it.
func writeExport(t *testing.T, lines ...string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path}
}

func TestParseFile_Events(t *testing.T) {
	df := writeExport(t,
		`{"conversationId":"c1","timestamp":1717236000000,"messageId":"m1","studentId":4,"moduleId":10,"question":"What is a vector?","response":"An ordered list.","modelUsed":"gpt-4o","provider":"openai","tokenCount":900,"responseTimeMs":1200}`,
		`{"conversationId":"c1","timestamp":"2024-06-01T10:01:00Z","messageId":"m2","moduleId":10,"question":"Thanks","hasFile":true,"fileName":"hw.pdf"}`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Events) != 2 {
		t.Fatalf("Events = %d, want 2", len(result.Events))
	}

	first := result.Events[0]
	if first.Tokens() != 900 || *first.ResponseTimeMs != 1200 {
		t.Errorf("first event tokens/response = %d/%d", first.Tokens(), *first.ResponseTimeMs)
	}

	second := result.Events[1]
	if second.Timestamp != 1717236060000 {
		t.Errorf("RFC3339 timestamp = %d, want 1717236060000", second.Timestamp)
	}
	if second.TokenCount != nil || second.ResponseTimeMs != nil {
		t.Error("missing measurements should stay nil")
	}
	if !second.Anonymous() {
		t.Error("studentId 0 should be anonymous")
	}
	if !second.HasFile || second.FileName != "hw.pdf" {
		t.Errorf("file fields = %v/%q", second.HasFile, second.FileName)
	}
}

func TestParseFile_DedupKeepsLast(t *testing.T) {
	df := writeExport(t,
		`{"conversationId":"c1","timestamp":1000,"messageId":"m1","tokenCount":10}`,
		`{"conversationId":"c1","timestamp":1000,"messageId":"m1","tokenCount":25}`,
	)

	result := ParseFile(df)
	if len(result.Events) != 1 {
		t.Fatalf("Events = %d, want 1 (dedup)", len(result.Events))
	}
	if result.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", result.Duplicates)
	}
	if result.Events[0].Tokens() != 25 {
		t.Errorf("Tokens = %d, want 25 (last wins)", result.Events[0].Tokens())
	}
}

func TestParseFile_BadLines(t *testing.T) {
	df := writeExport(t,
		`not json`,
		`{"timestamp":1000,"messageId":"m1"}`,
		`{"conversationId":"c1","timestamp":"yesterday"}`,
		`{"conversationId":"c1","timestamp":1000,"tokenCount":-5}`,
		``,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.ParseErrors != 3 {
		t.Errorf("ParseErrors = %d, want 3", result.ParseErrors)
	}
	if len(result.Events) != 1 {
		t.Fatalf("Events = %d, want 1", len(result.Events))
	}
	if result.Events[0].TokenCount != nil {
		t.Error("negative token count should be dropped")
	}
}

func TestParseFile_Missing(t *testing.T) {
	result := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "gone.jsonl")})
	if result.Err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestScanPath(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jsonl", "b.ndjson", "notes.txt", ".hidden/c.jsonl", "sub/d.JSONL"} {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("{}\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ScanPath(dir)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %d, want 3: %+v", len(files), files)
	}

	single, err := ScanPath(filepath.Join(dir, "notes.txt"))
	if err != nil || len(single) != 1 {
		t.Fatalf("explicit file should be returned as-is: %v %v", single, err)
	}

	none, err := ScanPath(filepath.Join(dir, "missing"))
	if err != nil || none != nil {
		t.Fatalf("missing path = %v, %v; want nil, nil", none, err)
	}
}

func TestLoadReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.yaml")
	body := `
courses:
  - {id: 1, universityId: 100}
modules:
  - {id: 10, courseId: 1, name: Algebra}
professors:
  - {professorId: 7, courseId: 1}
models:
  - {modelName: gpt-4o, provider: openai, inputCostPerMillionTokens: 2.5, outputCostPerMillionTokens: 10}
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	ref, err := LoadReference(path)
	if err != nil {
		t.Fatalf("LoadReference: %v", err)
	}
	if len(ref.Modules) != 1 || ref.Modules[0].Name != "Algebra" {
		t.Errorf("modules = %+v", ref.Modules)
	}
	if ref.Models[0].OutputCostPerMillionTokens != 10 {
		t.Errorf("models = %+v", ref.Models)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("courses: [{id: 1, universityId: 1}]\nmodules: [{id: 2, courseId: 9}]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadReference(bad); err == nil {
		t.Fatal("expected error for module with unknown course")
	}
}
