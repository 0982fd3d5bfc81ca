package ontology

import (
	"reflect"
	"testing"
)

func testClasses() []Class {
	return []Class{
		{Name: RootClass, Label: "Digital Information Carrier"},
		{Name: "SourceCodeFile", Parent: RootClass},
		{Name: "PythonSourceCodeFile", Parent: "SourceCodeFile"},
		{Name: "DocumentationFile", Parent: RootClass},
		{Name: "MarkdownFile", Parent: "DocumentationFile"},
	}
}

func TestPathWalksRootToLeaf(t *testing.T) {
	registry, err := NewRegistry(testClasses())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	path, err := registry.Path("PythonSourceCodeFile")
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	want := []string{RootClass, "SourceCodeFile", "PythonSourceCodeFile"}
	if !reflect.DeepEqual(path, want) {
		t.Fatalf("Path() = %v, want %v", path, want)
	}
}

func TestPathRejectsUnknownClass(t *testing.T) {
	registry, err := NewRegistry(testClasses())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if _, err := registry.Path("SpreadsheetFile"); err == nil {
		t.Fatalf("expected error for unknown class")
	}
}

func TestNewRegistryRejectsMissingRoot(t *testing.T) {
	_, err := NewRegistry([]Class{{Name: "SourceCodeFile"}})
	if err == nil {
		t.Fatalf("expected missing root error")
	}
}

func TestNewRegistryRejectsUnknownParent(t *testing.T) {
	_, err := NewRegistry([]Class{
		{Name: RootClass},
		{Name: "SourceCodeFile", Parent: "NoSuchClass"},
	})
	if err == nil {
		t.Fatalf("expected unknown parent error")
	}
}

func TestNewRegistryRejectsDuplicateClass(t *testing.T) {
	_, err := NewRegistry([]Class{
		{Name: RootClass},
		{Name: "SourceCodeFile", Parent: RootClass},
		{Name: "SourceCodeFile", Parent: RootClass},
	})
	if err == nil {
		t.Fatalf("expected duplicate class error")
	}
}

func TestNewRegistryRejectsParentCycle(t *testing.T) {
	_, err := NewRegistry([]Class{
		{Name: RootClass},
		{Name: "A", Parent: "B"},
		{Name: "B", Parent: "A"},
	})
	if err == nil {
		t.Fatalf("expected cycle error")
	}
}

func TestDepthCountsParentHops(t *testing.T) {
	registry, err := NewRegistry(testClasses())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if d := registry.Depth(RootClass); d != 0 {
		t.Fatalf("root depth = %d, want 0", d)
	}
	if d := registry.Depth("PythonSourceCodeFile"); d != 2 {
		t.Fatalf("leaf depth = %d, want 2", d)
	}
}

func TestLabelFallsBackToName(t *testing.T) {
	registry, err := NewRegistry(testClasses())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if got := registry.Label(RootClass); got != "Digital Information Carrier" {
		t.Fatalf("Label(root) = %q", got)
	}
	if got := registry.Label("SourceCodeFile"); got != "SourceCodeFile" {
		t.Fatalf("expected name fallback, got %q", got)
	}
}
