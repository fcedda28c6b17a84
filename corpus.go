package smartbot

import (
	"fmt"
	"strings"
	"sync"
)

// validCategories is the closed set of template categories
var validCategories = map[Category]Empty{
	CategoryGreeting:  {},
	CategoryFarewell:  {},
	CategoryCourtesy:  {},
	CategoryHelp:      {},
	CategorySmalltalk: {},
	CategoryGeneral:   {},
}

// IsValidCategory reports whether cat is one of the declared categories
func IsValidCategory(cat Category) bool {
	_, ok := validCategories[cat]
	return ok
}

// templateCorpus implements the TemplateCorpus interface with an id index
// over the load-ordered template slice
type templateCorpus struct {
	templates []Template
	byID      map[int]int // template id -> index into templates
	maxID     int
	mtx       sync.RWMutex
}

// NewCorpus creates an empty TemplateCorpus
func NewCorpus() TemplateCorpus {
	return &templateCorpus{
		byID: make(map[int]int),
	}
}

// NewDefaultCorpus creates a TemplateCorpus preloaded with the built-in
// conversational templates
func NewDefaultCorpus() TemplateCorpus {
	corpus := &templateCorpus{
		byID: make(map[int]int),
	}

	// Built-in templates are known valid
	for _, t := range defaultTemplates() {
		_ = corpus.Add(t)
	}

	return corpus
}

// Templates returns all templates in load order
func (tc *templateCorpus) Templates() []Template {
	tc.mtx.RLock()
	defer tc.mtx.RUnlock()

	result := make([]Template, len(tc.templates))
	for i, t := range tc.templates {
		result[i] = copyTemplate(t)
	}

	return result
}

// Get retrieves a template by id
func (tc *templateCorpus) Get(id int) (Template, bool) {
	tc.mtx.RLock()
	defer tc.mtx.RUnlock()

	idx, ok := tc.byID[id]
	if !ok {
		return Template{}, false
	}

	return copyTemplate(tc.templates[idx]), true
}

// Add validates and appends a template. Existing templates are never edited
// in place; ids are unique for the lifetime of the corpus
func (tc *templateCorpus) Add(t Template) error {
	normalized, err := normalizeTemplate(t)
	if err != nil {
		return err
	}

	tc.mtx.Lock()
	defer tc.mtx.Unlock()

	if _, exists := tc.byID[normalized.ID]; exists {
		return fmt.Errorf("%w: id %d", ErrDuplicateTemplateID, normalized.ID)
	}

	tc.byID[normalized.ID] = len(tc.templates)
	tc.templates = append(tc.templates, normalized)
	if normalized.ID > tc.maxID {
		tc.maxID = normalized.ID
	}

	return nil
}

// Size returns the number of templates
func (tc *templateCorpus) Size() int {
	tc.mtx.RLock()
	defer tc.mtx.RUnlock()
	return len(tc.templates)
}

// MaxID returns the highest template id, 0 for an empty corpus
func (tc *templateCorpus) MaxID() int {
	tc.mtx.RLock()
	defer tc.mtx.RUnlock()
	return tc.maxID
}

// normalizeTemplate validates a template and brings its keywords into
// canonical form: lowercased, punctuation-free, one token per keyword
// (multi-word keywords are split), deduplicated in first-seen order
func normalizeTemplate(t Template) (Template, error) {
	if t.ID <= 0 {
		return Template{}, fmt.Errorf("%w: id must be positive, got %d", ErrMalformedTemplate, t.ID)
	}

	if strings.TrimSpace(t.Response) == "" {
		return Template{}, fmt.Errorf("%w: template %d has an empty response", ErrMalformedTemplate, t.ID)
	}

	category := t.Category
	if category == "" {
		category = CategoryGeneral
	}
	if !IsValidCategory(category) {
		return Template{}, fmt.Errorf("%w: template %d has unknown category %q",
			ErrMalformedTemplate, t.ID, t.Category)
	}

	keywords := make([]string, 0, len(t.Keywords))
	seen := make(map[string]Empty, len(t.Keywords))

	for _, raw := range t.Keywords {
		for _, keyword := range strings.Fields(canonicalizeText(raw)) {
			if _, dup := seen[keyword]; dup {
				continue
			}
			seen[keyword] = Empty{}
			keywords = append(keywords, keyword)
		}
	}

	if len(keywords) == 0 {
		return Template{}, fmt.Errorf("%w: template %d has no usable keywords", ErrMalformedTemplate, t.ID)
	}

	return Template{
		ID:       t.ID,
		Keywords: keywords,
		Response: strings.TrimSpace(t.Response),
		Category: category,
	}, nil
}

// copyTemplate returns a deep copy to prevent external modification
func copyTemplate(t Template) Template {
	keywords := make([]string, len(t.Keywords))
	copy(keywords, t.Keywords)

	return Template{
		ID:       t.ID,
		Keywords: keywords,
		Response: t.Response,
		Category: t.Category,
	}
}

// defaultTemplates returns the built-in template set used when no template
// file is configured
func defaultTemplates() []Template {
	return []Template{
		{
			ID:       1,
			Keywords: []string{"hello", "hi", "hey"},
			Response: "Hello! How can I help you today?",
			Category: CategoryGreeting,
		},
		{
			ID:       2,
			Keywords: []string{"goodbye", "bye", "farewell"},
			Response: "Goodbye! Have a great day!",
			Category: CategoryFarewell,
		},
		{
			ID:       3,
			Keywords: []string{"thanks", "thank"},
			Response: "You're welcome!",
			Category: CategoryCourtesy,
		},
		{
			ID:       4,
			Keywords: []string{"help", "assist"},
			Response: "I can chat about simple things. Try saying hello!",
			Category: CategoryHelp,
		},
		{
			ID:       5,
			Keywords: []string{"name", "who"},
			Response: "I'm SBT, a small adaptive chat assistant.",
			Category: CategorySmalltalk,
		},
		{
			ID:       6,
			Keywords: []string{"weather", "today"},
			Response: "I can't see outside, but I hope it's nice where you are!",
			Category: CategorySmalltalk,
		},
	}
}
