// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/casemap/pkg/types"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()
	s, err := Open(types.CatalogConfig{Dir: filepath.Join(tmpDir, ".casemap")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s, tmpDir
}

func writeOutput(t *testing.T, dir, name, content string) (string, string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, HashBytes([]byte(content))
}

func TestOpen_CreatesDatabase(t *testing.T) {
	_, tmpDir := testStore(t)
	if _, err := os.Stat(filepath.Join(tmpDir, ".casemap", dbFile)); err != nil {
		t.Fatalf("database not created: %v", err)
	}
}

func TestRecordAndLatest(t *testing.T) {
	s, tmpDir := testStore(t)
	ctx := context.Background()
	out, outHash := writeOutput(t, tmpDir, "login.xmind", "archive")

	got, err := s.Latest(ctx, types.KindOutline, "outlines/login.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("Latest on empty catalog = %+v, want nil", got)
	}

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, hash := range []string{"aaa", "bbb"} {
		err := s.Record(ctx, types.ConversionRecord{
			Kind:        types.KindOutline,
			Source:      "outlines/login.txt",
			SourceHash:  hash,
			Output:      out,
			OutputHash:  outHash,
			Items:       4 + i,
			ConvertedAt: at.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	got, err = s.Latest(ctx, types.KindOutline, "outlines/login.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("Latest returned nil")
	}
	if got.SourceHash != "bbb" || got.Items != 5 {
		t.Errorf("Latest = %+v, want hash bbb with 5 items", got)
	}
	if !got.ConvertedAt.Equal(at.Add(time.Minute)) {
		t.Errorf("ConvertedAt = %v", got.ConvertedAt)
	}

	// Kinds are separate namespaces.
	other, err := s.Latest(ctx, types.KindDocument, "outlines/login.txt")
	if err != nil {
		t.Fatal(err)
	}
	if other != nil {
		t.Errorf("document lookup found outline record: %+v", other)
	}
}

func TestRecord_RequiresKindAndSource(t *testing.T) {
	s, _ := testStore(t)
	if err := s.Record(context.Background(), types.ConversionRecord{Source: "x"}); err == nil {
		t.Error("expected error for missing kind")
	}
	if err := s.Record(context.Background(), types.ConversionRecord{Kind: types.KindOutline}); err == nil {
		t.Error("expected error for missing source")
	}
}

func TestRecord_TrimsHistory(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	for i := 0; i < historyLimit+5; i++ {
		if err := s.Record(ctx, types.ConversionRecord{Kind: types.KindDocument, Source: "docs/a.docx", SourceHash: "h", Output: "o", OutputHash: "o"}); err != nil {
			t.Fatal(err)
		}
	}
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM conversions`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != historyLimit {
		t.Errorf("rows = %d, want %d", n, historyLimit)
	}
}

func TestUnchanged(t *testing.T) {
	s, tmpDir := testStore(t)
	ctx := context.Background()
	out, outHash := writeOutput(t, tmpDir, "cases.xmind", "v1")

	recorded := types.ConversionRecord{
		Kind: types.KindOutline, Source: "cases.txt", SourceHash: "src1",
		Output: out, OutputHash: outHash, Settings: "indent=tab json=false",
	}
	if err := s.Record(ctx, recorded); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		setup func()
		edit  func(r *types.ConversionRecord)
		want  bool
	}{
		{name: "same input, output and settings", want: true},
		{name: "equivalent output path", edit: func(r *types.ConversionRecord) { r.Output = tmpDir + "/./cases.xmind" }, want: true},
		{name: "input changed", edit: func(r *types.ConversionRecord) { r.SourceHash = "src2" }, want: false},
		{name: "never converted", edit: func(r *types.ConversionRecord) { r.Source = "other.txt" }, want: false},
		{name: "different output path", edit: func(r *types.ConversionRecord) { r.Output = filepath.Join(tmpDir, "other.xmind") }, want: false},
		{name: "different settings", edit: func(r *types.ConversionRecord) { r.Settings = "indent=tab json=true" }, want: false},
		{
			name:  "output edited",
			setup: func() { writeOutput(t, tmpDir, "cases.xmind", "tampered") },
			want:  false,
		},
		{
			name:  "output deleted",
			setup: func() { os.Remove(out) },
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			want := recorded
			if tt.edit != nil {
				tt.edit(&want)
			}
			got, err := s.Unchanged(ctx, want)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Unchanged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpen_AddsSettingsColumn(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".casemap")
	s, err := Open(types.CatalogConfig{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(context.Background(), types.ConversionRecord{
		Kind: types.KindDocument, Source: "a.docx", SourceHash: "h", Output: "a.md", OutputHash: "o", Settings: "formatting=true",
	}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopening runs the schema again; the column already exists.
	s, err = Open(types.CatalogConfig{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	rec, err := s.Latest(context.Background(), types.KindDocument, "a.docx")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.Settings != "formatting=true" {
		t.Errorf("Latest = %+v, want settings formatting=true", rec)
	}
}

func TestList(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	records := []types.ConversionRecord{
		{Kind: types.KindOutline, Source: "b.txt", SourceHash: "1", Output: "b.xmind", OutputHash: "x"},
		{Kind: types.KindOutline, Source: "a.txt", SourceHash: "1", Output: "a.xmind", OutputHash: "x"},
		{Kind: types.KindOutline, Source: "a.txt", SourceHash: "2", Output: "a.xmind", OutputHash: "y"},
		{Kind: types.KindDocument, Source: "spec.docx", SourceHash: "1", Output: "spec.md", OutputHash: "z", Items: 3},
	}
	for _, r := range records {
		if err := s.Record(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, r := range all {
		got = append(got, string(r.Kind)+":"+r.Source+":"+r.SourceHash)
	}
	want := "document:spec.docx:1,outline:a.txt:2,outline:b.txt:1"
	if strings.Join(got, ",") != want {
		t.Errorf("List = %v, want %s", got, want)
	}

	outlines, err := s.List(ctx, types.KindOutline)
	if err != nil {
		t.Fatal(err)
	}
	if len(outlines) != 2 {
		t.Errorf("outline records = %d, want 2", len(outlines))
	}
}

func TestExport(t *testing.T) {
	s, tmpDir := testStore(t)
	ctx := context.Background()
	if err := s.Record(ctx, types.ConversionRecord{
		Kind: types.KindDocument, Source: "docs/req.docx", SourceHash: "abc", Output: "markdown/req.md", OutputHash: "def", Items: 2,
	}); err != nil {
		t.Fatal(err)
	}

	yamlPath, err := s.ExportYAML(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if yamlPath != filepath.Join(tmpDir, ".casemap", "export.yaml") {
		t.Errorf("yaml path = %s", yamlPath)
	}
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromYAML []types.ConversionRecord
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatal(err)
	}
	if len(fromYAML) != 1 || fromYAML[0].Source != "docs/req.docx" || fromYAML[0].Items != 2 {
		t.Errorf("yaml export = %+v", fromYAML)
	}

	jsonPath := filepath.Join(tmpDir, "catalog.json")
	if _, err := s.ExportJSON(ctx, jsonPath); err != nil {
		t.Fatal(err)
	}
	data, err = os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON []types.ConversionRecord
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatal(err)
	}
	if len(fromJSON) != 1 || fromJSON[0].Kind != types.KindDocument {
		t.Errorf("json export = %+v", fromJSON)
	}
}

func TestHashFile(t *testing.T) {
	path, want := writeOutput(t, t.TempDir(), "f", "hello")
	got, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("HashFile = %s, want %s", got, want)
	}
	if want != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("HashBytes(hello) = %s", want)
	}
	if _, err := HashFile(path + ".missing"); err == nil {
		t.Error("expected error for missing file")
	}
}
