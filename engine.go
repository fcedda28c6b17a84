package smartbot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type smartEngine struct {
	normalizer  Normalizer
	extractor   KeywordExtractor
	corpus      TemplateCorpus
	matcher     Matcher
	params      ParameterStore
	history     InteractionLog
	adapter     RatingAdapter
	store       BlobStore
	logger      Logger
	enableStats bool
	stats       *EngineStats
	mtx         sync.RWMutex
}

// NewEngine creates an Engine with default components on top of the given
// corpus and blob store
func NewEngine(corpus TemplateCorpus, store BlobStore) Engine {
	return NewEngineWithLogger(corpus, store, DiscardLogger{})
}

// NewEngineWithLogger creates an Engine with custom logger
func NewEngineWithLogger(corpus TemplateCorpus, store BlobStore, logger Logger) Engine {
	params := NewParameterStoreWithLogger(store, DefaultParamsKey, DefaultParameters(), logger)
	params.Load()
	history := NewInteractionLogWithLogger(store, DefaultHistoryKey, logger)

	return &smartEngine{
		normalizer:  NewNormalizer(),
		extractor:   NewKeywordExtractor(),
		corpus:      corpus,
		matcher:     NewMatcherWithLogger(NewTemplateScorer(), logger),
		params:      params,
		history:     history,
		adapter:     NewRatingAdapterWithLogger(params, history, logger),
		store:       store,
		logger:      logger,
		enableStats: DefaultEnableStats,
		stats: &EngineStats{
			LastUpdated: time.Now(),
		},
	}
}

// NewEngineFromConfig creates an Engine from a configuration
// This is the recommended way to initialize an Engine with all components
func NewEngineFromConfig(config *Config, logger Logger) (Engine, error) {
	if config == nil {
		return nil, ErrInvalidConfiguration
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	// Normalizer: built-in misspelling table, optionally merged with a
	// corrections file.
	var normalizer Normalizer
	if config.MisspellingsPath != "" {
		logger.Infof("Loading misspelling table, path: %s", config.MisspellingsPath)
		loaded, err := NewNormalizerWithTableFile(config.MisspellingsPath)
		if err != nil {
			logger.Errorf("Failed to load misspelling table, using built-in table, error: %v", err)
			normalizer = NewNormalizer()
		} else {
			logger.Infof("Misspelling table loaded successfully")
			normalizer = loaded
		}
	} else {
		normalizer = NewNormalizer()
	}

	// Keyword extractor with optional custom stop words.
	var extractor KeywordExtractor
	if len(config.StopWordsPaths) > 0 {
		logger.Infof("Loading keyword extractor with stop words, file_count: %d, paths: %v",
			len(config.StopWordsPaths), config.StopWordsPaths)
		loaded, err := NewKeywordExtractorWithStopWords(config.StopWordsPaths...)
		if err != nil {
			logger.Errorf("Failed to load stop words, using default extractor, error: %v", err)
			extractor = NewKeywordExtractor()
		} else {
			logger.Infof("Stop words loaded successfully")
			extractor = loaded
		}
	} else {
		extractor = NewKeywordExtractor()
	}

	// Template corpus: configured file or the built-in default set.
	var corpus TemplateCorpus
	if config.TemplatesPath != "" {
		loader := NewCorpusLoader(logger)
		logger.Infof("Loading template corpus, path: %s", config.TemplatesPath)
		loaded, err := loader.LoadFromFile(config.TemplatesPath)
		if err != nil {
			logger.Errorf("Failed to load template corpus, using built-in templates, error: %v", err)
			corpus = NewDefaultCorpus()
		} else {
			logger.Infof("Template corpus loaded, templates: %d, skipped: %d",
				loaded.Size(), loader.SkippedEntries())
			corpus = loaded
		}
	} else {
		logger.Infof("Using built-in template corpus")
		corpus = NewDefaultCorpus()
	}

	store, err := newStoreFromConfig(config, logger)
	if err != nil {
		logger.Errorf("Failed to initialize storage backend, error: %v", err)
		return nil, err
	}

	params := NewParameterStoreWithLogger(store, config.ParamsKey, config.Defaults, logger)
	params.Load()
	history := NewInteractionLogWithLogger(store, config.HistoryKey, logger)

	engine := &smartEngine{
		normalizer:  normalizer,
		extractor:   extractor,
		corpus:      corpus,
		matcher:     NewMatcherWithLogger(NewTemplateScorer(), logger),
		params:      params,
		history:     history,
		adapter:     NewRatingAdapterWithLogger(params, history, logger),
		store:       store,
		logger:      logger,
		enableStats: config.EnableStats,
		stats: &EngineStats{
			LastUpdated: time.Now(),
		},
	}

	logger.Infof(
		"Engine initialized successfully, storage: %s, templates: %d, history_entries: %d, "+
			"keyword_weight: %.4f, length_penalty_weight: %.4f, confidence_threshold: %.4f, "+
			"learning_rate: %.4f",
		config.Storage,
		corpus.Size(),
		len(history.Recent(0)),
		params.Current().KeywordWeight,
		params.Current().LengthPenaltyWeight,
		params.Current().ConfidenceThreshold,
		params.Current().LearningRate,
	)

	return engine, nil
}

// newStoreFromConfig selects and initializes the persistence backend
func newStoreFromConfig(config *Config, logger Logger) (BlobStore, error) {
	switch config.Storage {
	case StorageSQLite:
		path := config.SQLitePath
		if path == "" {
			path = filepath.Join(config.DataDir, DefaultSQLiteFile)
		}
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create directory %s: %w", dir, err)
			}
		}
		logger.Infof("Opening sqlite storage, path: %s", path)
		return NewSQLiteStore(path)

	case StorageFile:
		overrides := make(map[string]string)
		if config.ParamsFile != "" {
			overrides[config.ParamsKey] = config.ParamsFile
		}
		if config.HistoryFile != "" {
			overrides[config.HistoryKey] = config.HistoryFile
		}
		logger.Infof("Using file storage, dir: %s, overrides: %d", config.DataDir, len(overrides))
		if len(overrides) > 0 {
			return NewFileStoreWithOverrides(config.DataDir, overrides), nil
		}
		return NewFileStore(config.DataDir), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorageBackend, config.Storage)
	}
}

// ProcessMessage normalizes the input, matches it against the corpus and
// appends the exchange to the interaction log
func (se *smartEngine) ProcessMessage(text string) MatchResult {
	startTime := time.Now()

	normalized := se.normalizer.Normalize(text)
	se.logger.Debugf("Message normalized, raw_length: %d, normalized: %q", len(text), normalized)

	result := se.matcher.Match(normalized, se.corpus, se.params.Current())
	se.history.Append(text, normalized, result)

	duration := time.Since(startTime)
	se.updateStats(duration, result)

	se.logger.Infof(
		"Message processed, matched: %v, template_id: %v, confidence: %.4f, duration_ms: %d",
		result.Matched(), result.TemplateID, result.Confidence, duration.Milliseconds())

	return result
}

// SubmitFeedback rates the pending exchange and adapts the parameters
func (se *smartEngine) SubmitFeedback(fb Feedback) (Parameters, error) {
	updated, err := se.adapter.SubmitFeedback(fb)
	if err != nil {
		return updated, err
	}

	se.recordFeedback(fb)
	return updated, nil
}

// SubmitRating rates the pending exchange on the 1-10 scale
func (se *smartEngine) SubmitRating(score int) (Parameters, error) {
	updated, err := se.adapter.SubmitRating(score)
	if err != nil {
		return updated, err
	}

	fb := FeedbackNegative
	if float64(score) > neutralRating {
		fb = FeedbackPositive
	}
	se.recordFeedback(fb)

	return updated, nil
}

// RecentHistory returns the last n exchanges, most recent first
func (se *smartEngine) RecentHistory(n int) []LogEntry {
	return se.history.Recent(n)
}

// ClearHistory empties the interaction log
func (se *smartEngine) ClearHistory() error {
	return se.history.Clear()
}

// Params returns the current matching parameters
func (se *smartEngine) Params() Parameters {
	return se.params.Current()
}

// Stats returns a copy of the usage statistics
func (se *smartEngine) Stats() EngineStats {
	se.mtx.RLock()
	defer se.mtx.RUnlock()

	return *se.stats
}

// Normalize exposes the engine's normalizer
func (se *smartEngine) Normalize(text string) string {
	return se.normalizer.Normalize(text)
}

// CorrectSpelling exposes the engine's misspelling table
func (se *smartEngine) CorrectSpelling(text string) string {
	return se.normalizer.CorrectSpelling(text)
}

// AddTemplate validates and appends a template to the corpus
func (se *smartEngine) AddTemplate(t Template) error {
	if err := se.corpus.Add(t); err != nil {
		return err
	}

	se.logger.Infof("Template added, template_id: %d, keywords: %v, category: %s",
		t.ID, t.Keywords, t.Category)

	return nil
}

// AddTemplateFromPhrase derives trigger keywords from an example phrase and
// appends a template under the next free id
func (se *smartEngine) AddTemplateFromPhrase(
	phrase, response string,
	cat Category,
) (Template, error) {
	keywords := se.extractor.ExtractKeywords(phrase)
	if len(keywords) == 0 {
		return Template{}, fmt.Errorf("%w: %q", ErrNoKeywords, phrase)
	}

	tpl := Template{
		ID:       se.corpus.MaxID() + 1,
		Keywords: keywords,
		Response: response,
		Category: cat,
	}
	if err := se.corpus.Add(tpl); err != nil {
		return Template{}, err
	}

	// The corpus canonicalizes keywords and category on Add.
	stored, _ := se.corpus.Get(tpl.ID)

	se.logger.Infof("Template added from phrase, template_id: %d, keywords: %v, category: %s",
		stored.ID, stored.Keywords, stored.Category)

	return stored, nil
}

// Close releases the persistence backend when it holds resources
func (se *smartEngine) Close() error {
	if closer, ok := se.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// updateStats updates the internal statistics
func (se *smartEngine) updateStats(latency time.Duration, result MatchResult) {
	se.mtx.Lock()
	defer se.mtx.Unlock()

	se.stats.TotalRequests++
	if result.Matched() {
		se.stats.MatchedRequests++
	} else {
		se.stats.FallbackRequests++
	}

	// Incremental average: new_avg = old_avg + (new_value - old_avg) / count
	if se.stats.TotalRequests == 1 {
		se.stats.AverageLatency = latency
		se.stats.AverageConfidence = result.Confidence
	} else {
		delta := latency - se.stats.AverageLatency
		se.stats.AverageLatency += delta / time.Duration(se.stats.TotalRequests)
		se.stats.AverageConfidence +=
			(result.Confidence - se.stats.AverageConfidence) / float64(se.stats.TotalRequests)
	}
	se.stats.LastUpdated = time.Now()

	// Log every 100 requests for monitoring
	if se.enableStats && se.stats.TotalRequests%100 == 0 {
		se.logger.Infof(
			"Performance statistics, total_requests: %d, matched: %d, fallback: %d, "+
				"average_latency_ms: %d, average_confidence: %.4f",
			se.stats.TotalRequests,
			se.stats.MatchedRequests,
			se.stats.FallbackRequests,
			se.stats.AverageLatency.Milliseconds(),
			se.stats.AverageConfidence,
		)
	}
}

// recordFeedback updates the feedback counters
func (se *smartEngine) recordFeedback(fb Feedback) {
	se.mtx.Lock()
	defer se.mtx.Unlock()

	switch fb {
	case FeedbackPositive:
		se.stats.PositiveFeedback++
	case FeedbackNegative:
		se.stats.NegativeFeedback++
	}
	se.stats.LastUpdated = time.Now()
}
