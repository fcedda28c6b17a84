package smartbot

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewDefaultCorpus(t *testing.T) {
	corpus := NewDefaultCorpus()

	if corpus.Size() == 0 {
		t.Fatal("Default corpus is empty")
	}

	greeting, ok := corpus.Get(1)
	if !ok {
		t.Fatal("Default corpus missing template 1")
	}
	if greeting.Response != "Hello! How can I help you today?" {
		t.Errorf("Unexpected template 1 response: %q", greeting.Response)
	}
	if greeting.Category != CategoryGreeting {
		t.Errorf("Expected category %q, got %q", CategoryGreeting, greeting.Category)
	}
}

func TestCorpusAdd(t *testing.T) {
	tests := []struct {
		name     string
		template Template
		wantErr  error
	}{
		{
			name: "valid template",
			template: Template{
				ID:       10,
				Keywords: []string{"joke", "funny"},
				Response: "Why did the gopher cross the road?",
				Category: CategorySmalltalk,
			},
			wantErr: nil,
		},
		{
			name: "missing category defaults to general",
			template: Template{
				ID:       11,
				Keywords: []string{"ping"},
				Response: "pong",
			},
			wantErr: nil,
		},
		{
			name: "non-positive id",
			template: Template{
				ID:       0,
				Keywords: []string{"zero"},
				Response: "never",
			},
			wantErr: ErrMalformedTemplate,
		},
		{
			name: "empty response",
			template: Template{
				ID:       12,
				Keywords: []string{"silent"},
				Response: "   ",
			},
			wantErr: ErrMalformedTemplate,
		},
		{
			name: "no usable keywords",
			template: Template{
				ID:       13,
				Keywords: []string{"!!!", "  "},
				Response: "unreachable",
			},
			wantErr: ErrMalformedTemplate,
		},
		{
			name: "unknown category",
			template: Template{
				ID:       14,
				Keywords: []string{"odd"},
				Response: "odd response",
				Category: Category("nonsense"),
			},
			wantErr: ErrMalformedTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corpus := NewCorpus()
			err := corpus.Add(tt.template)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Add() returned unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Add() error = %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

func TestCorpusAddDuplicateID(t *testing.T) {
	corpus := NewCorpus()

	first := Template{ID: 7, Keywords: []string{"lucky"}, Response: "seven"}
	if err := corpus.Add(first); err != nil {
		t.Fatalf("First Add() failed: %v", err)
	}

	second := Template{ID: 7, Keywords: []string{"again"}, Response: "still seven"}
	if err := corpus.Add(second); !errors.Is(err, ErrDuplicateTemplateID) {
		t.Errorf("Expected ErrDuplicateTemplateID, got %v", err)
	}

	if corpus.Size() != 1 {
		t.Errorf("Expected corpus size 1 after duplicate rejection, got %d", corpus.Size())
	}
}

func TestCorpusKeywordNormalization(t *testing.T) {
	corpus := NewCorpus()

	template := Template{
		ID:       20,
		Keywords: []string{"Hello!", "good morning", "HELLO"},
		Response: "Morning!",
	}
	if err := corpus.Add(template); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	stored, ok := corpus.Get(20)
	if !ok {
		t.Fatal("Get() did not find template 20")
	}

	expected := []string{"hello", "good", "morning"}
	if !reflect.DeepEqual(stored.Keywords, expected) {
		t.Errorf("Keywords = %v, expected %v", stored.Keywords, expected)
	}
}

func TestCorpusDefensiveCopies(t *testing.T) {
	corpus := NewCorpus()

	template := Template{ID: 30, Keywords: []string{"original"}, Response: "resp"}
	if err := corpus.Add(template); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	got, _ := corpus.Get(30)
	got.Keywords[0] = "mutated"

	again, _ := corpus.Get(30)
	if again.Keywords[0] != "original" {
		t.Error("Corpus returned a shared keyword slice")
	}

	all := corpus.Templates()
	all[0].Keywords[0] = "mutated"

	again, _ = corpus.Get(30)
	if again.Keywords[0] != "original" {
		t.Error("Templates() returned a shared keyword slice")
	}
}

func TestCorpusMaxID(t *testing.T) {
	corpus := NewCorpus()

	if corpus.MaxID() != 0 {
		t.Errorf("Empty corpus MaxID = %d, expected 0", corpus.MaxID())
	}

	for _, id := range []int{5, 3, 9, 2} {
		template := Template{ID: id, Keywords: []string{"kw"}, Response: "r"}
		if err := corpus.Add(template); err != nil {
			t.Fatalf("Add(%d) failed: %v", id, err)
		}
	}

	if corpus.MaxID() != 9 {
		t.Errorf("MaxID = %d, expected 9", corpus.MaxID())
	}
}

func TestIsValidCategory(t *testing.T) {
	for _, cat := range []Category{
		CategoryGreeting, CategoryFarewell, CategoryCourtesy,
		CategoryHelp, CategorySmalltalk, CategoryGeneral,
	} {
		if !IsValidCategory(cat) {
			t.Errorf("Expected %q to be valid", cat)
		}
	}

	if IsValidCategory(Category("bogus")) {
		t.Error("Expected bogus category to be invalid")
	}
}
