package analysis

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExportFilename(t *testing.T) {
	cases := []struct {
		kind Kind
		want string
	}{
		{KindSimilarProjects, "photo_share_similar_projects.md"},
		{KindArchitecture, "photo_share_architecture.md"},
		{KindDiagram, "photo_share_diagram.xml"},
		{KindCDKTypeScript, "photo_share_cdk.ts"},
		{KindCDKPython, "photo_share_cdk.py"},
		{KindCostAnalysis, "photo_share_costs.md"},
		{KindDocumentation, "photo_share_docs.md"},
	}
	for _, tc := range cases {
		if got := ExportFilename("photo share", tc.kind); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.kind, tc.want, got)
		}
	}
}

func TestExportFilenameSanitizesProjectName(t *testing.T) {
	got := ExportFilename("a/b\\c:d e", KindArchitecture)
	want := "a_b_c_d_e_architecture.md"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := ExportFilename("   ", KindArchitecture); got != "project_architecture.md" {
		t.Errorf("expected fallback name, got %q", got)
	}
}

func TestExportWritesVerbatim(t *testing.T) {
	dir := t.TempDir()
	slot := Slot{Kind: KindDiagram, Status: StatusCompleted, Result: "<mxfile>\n</mxfile>\n"}

	path, err := Export(dir, "demo", slot)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != slot.Result {
		t.Errorf("expected verbatim content, got %q", data)
	}
}

func TestExportRejectsIncompleteSlot(t *testing.T) {
	for _, status := range []Status{StatusNotStarted, StatusRunning, StatusFailed} {
		_, err := Export(t.TempDir(), "demo", Slot{Kind: KindDiagram, Status: status})
		if !errors.Is(err, ErrNotCompleted) {
			t.Errorf("%s: expected ErrNotCompleted, got %v", status, err)
		}
	}
}

func TestExportAllSkipsIncompleteSlots(t *testing.T) {
	dir := t.TempDir()
	slots := []Slot{
		{Kind: KindRequirements, Status: StatusCompleted, Result: "requirements"},
		{Kind: KindArchitecture, Status: StatusFailed, Err: "boom"},
		{Kind: KindDiagram, Status: StatusCompleted, Result: "<xml/>"},
		{Kind: KindCostAnalysis, Status: StatusNotStarted},
	}

	paths, err := ExportAll(dir, "demo", slots)
	if err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 exports, got %v", paths)
	}
	for _, path := range paths {
		if filepath.Dir(path) != dir {
			t.Errorf("export landed outside dir: %s", path)
		}
	}
}

func TestExportDirName(t *testing.T) {
	if got := ExportDirName("photo share"); got != "photo_share" {
		t.Errorf("expected photo_share, got %q", got)
	}
}
