package smartbot

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadFromReader(t *testing.T) {
	loader := NewCorpusLoader(DiscardLogger{})

	input := `[
		{"id": 1, "keywords": ["hello", "hi"], "response": "Hello!", "category": "greeting"},
		{"id": 2, "keywords": ["bye"], "response": "Goodbye!", "category": "farewell"},
		{"id": 3, "keywords": ["thanks"], "response": "You're welcome!"}
	]`

	corpus, err := loader.LoadFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if corpus.Size() != 3 {
		t.Errorf("Expected 3 templates, got %d", corpus.Size())
	}
	if loader.SkippedEntries() != 0 {
		t.Errorf("Expected 0 skipped entries, got %d", loader.SkippedEntries())
	}

	greeting, ok := corpus.Get(1)
	if !ok {
		t.Fatal("Template 1 not found")
	}
	if !reflect.DeepEqual(greeting.Keywords, []string{"hello", "hi"}) {
		t.Errorf("Unexpected keywords: %v", greeting.Keywords)
	}

	// Missing category defaults to general
	courtesy, _ := corpus.Get(3)
	if courtesy.Category != CategoryGeneral {
		t.Errorf("Expected category %q, got %q", CategoryGeneral, courtesy.Category)
	}
}

func TestLoadFromReaderLenientCoercion(t *testing.T) {
	loader := NewCorpusLoader(DiscardLogger{})

	// String id and a space-separated keyword string are both accepted
	input := `[
		{"id": "7", "keywords": "hello hi hey", "response": "Hi there!"}
	]`

	corpus, err := loader.LoadFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	template, ok := corpus.Get(7)
	if !ok {
		t.Fatal("Template 7 not found")
	}

	expected := []string{"hello", "hi", "hey"}
	if !reflect.DeepEqual(template.Keywords, expected) {
		t.Errorf("Keywords = %v, expected %v", template.Keywords, expected)
	}
}

func TestLoadFromReaderSkipsMalformed(t *testing.T) {
	loader := NewCorpusLoader(DiscardLogger{})

	input := `[
		{"id": 1, "keywords": ["ok"], "response": "fine"},
		{"id": 2, "keywords": ["nope"]},
		{"id": "not-a-number", "keywords": ["bad"], "response": "x"},
		{"id": 1, "keywords": ["dup"], "response": "duplicate id"},
		{"keywords": ["missing"], "response": "no id"},
		{"id": 5, "keywords": ["fine"], "response": "also fine"}
	]`

	corpus, err := loader.LoadFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if corpus.Size() != 2 {
		t.Errorf("Expected 2 templates, got %d", corpus.Size())
	}
	if loader.SkippedEntries() != 4 {
		t.Errorf("Expected 4 skipped entries, got %d", loader.SkippedEntries())
	}
}

func TestLoadFromReaderAllInvalid(t *testing.T) {
	loader := NewCorpusLoader(DiscardLogger{})

	input := `[
		{"id": -1, "keywords": ["neg"], "response": "x"},
		{"id": 2, "response": "no keywords"}
	]`

	_, err := loader.LoadFromReader(strings.NewReader(input))
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("Expected ErrEmptyCorpus, got %v", err)
	}
}

func TestLoadFromReaderInvalidJSON(t *testing.T) {
	loader := NewCorpusLoader(DiscardLogger{})

	_, err := loader.LoadFromReader(strings.NewReader(`{"not": "an array"`))
	if !errors.Is(err, ErrInvalidCorpusFormat) {
		t.Errorf("Expected ErrInvalidCorpusFormat, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	corpusFile := filepath.Join(tmpDir, "templates.json")

	content := `[{"id": 1, "keywords": ["hello"], "response": "Hello! How can I help you today?", "category": "greeting"}]`
	if err := os.WriteFile(corpusFile, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create template file: %v", err)
	}

	loader := NewCorpusLoader(DiscardLogger{})
	corpus, err := loader.LoadFromFile(corpusFile)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if corpus.Size() != 1 {
		t.Errorf("Expected 1 template, got %d", corpus.Size())
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	loader := NewCorpusLoader(DiscardLogger{})

	_, err := loader.LoadFromFile("/nonexistent/templates.json")
	if !errors.Is(err, ErrCorpusFileNotFound) {
		t.Errorf("Expected ErrCorpusFileNotFound, got %v", err)
	}
}
