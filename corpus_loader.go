package smartbot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cast"
)

// corpusLoader implements the CorpusLoader interface
type corpusLoader struct {
	logger  Logger
	skipped int
}

// NewCorpusLoader creates a new CorpusLoader instance
func NewCorpusLoader(logger Logger) CorpusLoader {
	return &corpusLoader{
		logger: logger,
	}
}

// LoadFromFile loads templates from a JSON array file
func (cl *corpusLoader) LoadFromFile(path string) (TemplateCorpus, error) {
	cl.logger.Infof("Loading template file, path: %s", path)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrCorpusFileNotFound
	}

	file, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to open template file: %w", err)
	}
	defer file.Close()

	return cl.LoadFromReader(file)
}

// LoadFromReader loads templates from any io.Reader. Malformed entries are
// skipped and counted; load continues. A source yielding zero valid
// templates is an error
func (cl *corpusLoader) LoadFromReader(reader io.Reader) (TemplateCorpus, error) {
	cl.skipped = 0

	var entries []map[string]any
	if err := json.NewDecoder(reader).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCorpusFormat, err)
	}

	corpus := NewCorpus()
	loaded := 0

	for i, entry := range entries {
		template, err := cl.parseEntry(entry)
		if err != nil {
			cl.skipped++
			cl.logger.Warnf("Skipping malformed template entry, index: %d, error: %v", i, err)
			continue
		}

		// Add re-validates and rejects duplicate ids
		if err := corpus.Add(template); err != nil {
			cl.skipped++
			cl.logger.Warnf("Skipping rejected template entry, index: %d, id: %d, error: %v",
				i, template.ID, err)
			continue
		}
		loaded++
	}

	if loaded == 0 {
		return nil, ErrEmptyCorpus
	}

	cl.logger.Infof("Template loading completed, loaded: %d, skipped: %d, max_id: %d",
		loaded, cl.skipped, corpus.MaxID())

	return corpus, nil
}

// SkippedEntries returns the number of malformed entries skipped during the
// last load
func (cl *corpusLoader) SkippedEntries() int {
	return cl.skipped
}

// parseEntry coerces one JSON object into a Template. The id accepts numeric
// and string forms; keywords accepts a list or a single space-separated
// string; category is optional
func (cl *corpusLoader) parseEntry(entry map[string]any) (Template, error) {
	rawID, ok := entry["id"]
	if !ok {
		return Template{}, fmt.Errorf("%w: missing id", ErrMalformedTemplate)
	}
	id, err := cast.ToIntE(rawID)
	if err != nil {
		return Template{}, fmt.Errorf("%w: invalid id %v", ErrMalformedTemplate, rawID)
	}

	rawKeywords, ok := entry["keywords"]
	if !ok {
		return Template{}, fmt.Errorf("%w: missing keywords", ErrMalformedTemplate)
	}
	keywords, err := cast.ToStringSliceE(rawKeywords)
	if err != nil {
		return Template{}, fmt.Errorf("%w: invalid keywords %v", ErrMalformedTemplate, rawKeywords)
	}

	response, err := cast.ToStringE(entry["response"])
	if err != nil || response == "" {
		return Template{}, fmt.Errorf("%w: missing response", ErrMalformedTemplate)
	}

	category, err := cast.ToStringE(entry["category"])
	if err != nil {
		return Template{}, fmt.Errorf("%w: invalid category %v", ErrMalformedTemplate, entry["category"])
	}

	return Template{
		ID:       id,
		Keywords: keywords,
		Response: response,
		Category: Category(category),
	}, nil
}
