package smartbot

import (
	"io"
	"time"
)

// Normalizer canonicalizes raw user text before matching
type Normalizer interface {
	// Normalize lowercases, strips punctuation, collapses whitespace and
	// applies the misspelling table to every token
	Normalize(text string) string

	// CorrectSpelling applies only the misspelling table to every token
	CorrectSpelling(text string) string
}

// KeywordExtractor derives trigger keywords from an example phrase using
// word segmentation and stop word filtering
type KeywordExtractor interface {
	// ExtractKeywords segments the phrase and filters stop words, punctuation
	// and purely numeric tokens; the result is deduplicated in first-seen order
	ExtractKeywords(phrase string) []string
}

// TemplateCorpus holds the ordered template set consumed by the Matcher
type TemplateCorpus interface {
	// Templates returns all templates in load order
	Templates() []Template

	// Get retrieves a template by id
	Get(id int) (Template, bool)

	// Add validates and appends a template (append-only, ids never reused)
	Add(t Template) error

	// Size returns the number of templates
	Size() int

	// MaxID returns the highest template id, 0 for an empty corpus
	MaxID() int
}

// CorpusLoader handles loading and validation of template files
type CorpusLoader interface {
	// LoadFromFile loads templates from a JSON array file
	LoadFromFile(path string) (TemplateCorpus, error)

	// LoadFromReader loads templates from any io.Reader
	LoadFromReader(reader io.Reader) (TemplateCorpus, error)

	// SkippedEntries returns the number of malformed entries skipped during the last load
	SkippedEntries() int
}

// TemplateScorer computes the weighted match score between input tokens and one template
type TemplateScorer interface {
	// Score computes keyword overlap, the length term and their weighted blend.
	// Tokens are treated as a set; duplicates are ignored
	Score(tokens []string, tpl Template, params Parameters) ScoreBreakdown
}

// Matcher selects the best-matching template for normalized input
type Matcher interface {
	// Match scores every template and returns the winner, tie-breaking on the
	// lowest id, or the fallback sentinel when the best score is below the
	// confidence threshold. Identical inputs always yield identical results
	Match(normalized string, corpus TemplateCorpus, params Parameters) MatchResult
}

// ParameterStore owns the tunable matching parameters
type ParameterStore interface {
	// Load reads persisted parameters, substituting defaults when the key is
	// absent or unreadable; it never fails the session
	Load() Parameters

	// Save persists the given parameters
	Save(p Parameters) error

	// Current returns the in-memory parameters
	Current() Parameters

	// Apply adds the delta, clamps every field to its declared bounds and
	// persists the result. A persistence failure is returned to the caller
	// but the in-memory value stands; the next mutation retries the write
	Apply(delta ParameterDelta) (Parameters, error)
}

// InteractionLog is the append-only record of exchanges
type InteractionLog interface {
	// Append records one exchange, arms the pending-feedback pointer and
	// persists the log write-through
	Append(raw, normalized string, result MatchResult) LogEntry

	// MostRecentWithoutFeedback returns the entry awaiting feedback, if any
	MostRecentWithoutFeedback() (LogEntry, bool)

	// AssignFeedback sets the pending entry's feedback exactly once and
	// clears the pending pointer
	AssignFeedback(fb Feedback) (LogEntry, error)

	// Recent returns the last n entries, most recent first; n <= 0 returns all
	Recent(n int) []LogEntry

	// Clear empties the in-memory and persisted log; irreversible
	Clear() error
}

// RatingAdapter consumes feedback for the pending exchange and nudges the
// matching parameters
type RatingAdapter interface {
	// SubmitFeedback applies a positive or negative signal to the pending
	// exchange. The keyword weight moves proportionally to how uncertain the
	// match was; the confidence threshold moves opposite to the signal
	SubmitFeedback(fb Feedback) (Parameters, error)

	// SubmitRating maps a 1-10 score onto a feedback signal whose strength
	// scales with the score's distance from neutral
	SubmitRating(score int) (Parameters, error)
}

// BlobStore is the opaque key-value persistence service behind parameters
// and history
type BlobStore interface {
	// Read returns the bytes stored under key, or ErrKeyNotFound
	Read(key string) ([]byte, error)

	// Write stores data under key
	Write(key string, data []byte) error
}

// Engine orchestrates the complete adaptive response pipeline
type Engine interface {
	// ProcessMessage normalizes, matches and logs one exchange
	ProcessMessage(text string) MatchResult

	// SubmitFeedback rates the pending exchange and adapts the parameters
	SubmitFeedback(fb Feedback) (Parameters, error)

	// SubmitRating rates the pending exchange on a 1-10 scale; the parameter
	// adjustment is scaled by how far the rating sits from neutral
	SubmitRating(score int) (Parameters, error)

	// RecentHistory returns the last n exchanges, most recent first; n <= 0 returns all
	RecentHistory(n int) []LogEntry

	// ClearHistory empties the interaction log
	ClearHistory() error

	// Params returns the current matching parameters
	Params() Parameters

	// Stats returns usage statistics
	Stats() EngineStats

	// Normalize exposes the engine's normalizer
	Normalize(text string) string

	// CorrectSpelling exposes the engine's misspelling table
	CorrectSpelling(text string) string

	// AddTemplate validates and appends a template to the corpus
	AddTemplate(t Template) error

	// AddTemplateFromPhrase derives trigger keywords from an example phrase
	// and appends a template under the next free id
	AddTemplateFromPhrase(phrase, response string, cat Category) (Template, error)

	// Close releases the underlying persistence backend
	Close() error
}

// Category classifies a template's conversational role
type Category string

const (
	CategoryGreeting  Category = "greeting"
	CategoryFarewell  Category = "farewell"
	CategoryCourtesy  Category = "courtesy"
	CategoryHelp      Category = "help"
	CategorySmalltalk Category = "smalltalk"
	CategoryGeneral   Category = "general"
)

// Template is a stored trigger/response pair, immutable once added
type Template struct {
	ID       int      `json:"id"`
	Keywords []string `json:"keywords"` // set semantics: lowercased, deduplicated
	Response string   `json:"response"`
	Category Category `json:"category"`
}

// MatchResult is the outcome of matching one normalized input
type MatchResult struct {
	TemplateID      *int     `json:"template_id"` // nil when no template cleared the threshold
	Response        string   `json:"response_text"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matched_keywords"` // sorted
}

// Matched reports whether a template cleared the confidence threshold
func (r MatchResult) Matched() bool {
	return r.TemplateID != nil
}

// ScoreBreakdown carries the intermediate terms of one template score
type ScoreBreakdown struct {
	Overlap         float64  // fraction of trigger keywords present in the input
	LengthTerm      float64  // closeness of input length to keyword count
	Score           float64  // weighted blend, in [0,1]
	MatchedKeywords []string // sorted
}

// Parameters are the tunable weights and thresholds governing matching.
// ConfidenceThreshold stays within [0,1] and LearningRate within
// [0.001,0.999] after every update; the weights are clamped to [0,10]
type Parameters struct {
	KeywordWeight       float64 `json:"keyword_weight"        mapstructure:"keyword_weight"`
	LengthPenaltyWeight float64 `json:"length_penalty_weight" mapstructure:"length_penalty_weight"`
	ConfidenceThreshold float64 `json:"confidence_threshold"  mapstructure:"confidence_threshold"`
	LearningRate        float64 `json:"learning_rate"         mapstructure:"learning_rate"`
}

// ParameterDelta is an additive change to Parameters; zero fields leave
// their counterparts untouched
type ParameterDelta struct {
	KeywordWeight       float64
	LengthPenaltyWeight float64
	ConfidenceThreshold float64
	LearningRate        float64
}

// Feedback is the closed set of rating signals for one exchange
type Feedback string

const (
	FeedbackNone     Feedback = ""
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)

// LogEntry is one recorded exchange. Feedback is the only mutable field,
// settable exactly once
type LogEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	RawInput   string    `json:"raw_input"`
	Normalized string    `json:"normalized_input"`
	TemplateID *int      `json:"template_id"`
	Response   string    `json:"response_text"`
	Confidence float64   `json:"confidence"`
	Feedback   Feedback  `json:"feedback,omitempty"`
}

// EngineStats provides usage statistics for one engine instance
type EngineStats struct {
	TotalRequests     int64         `json:"total_requests"`
	MatchedRequests   int64         `json:"matched_requests"`
	FallbackRequests  int64         `json:"fallback_requests"`
	PositiveFeedback  int64         `json:"positive_feedback"`
	NegativeFeedback  int64         `json:"negative_feedback"`
	AverageLatency    time.Duration `json:"average_latency"`
	AverageConfidence float64       `json:"average_confidence"`
	LastUpdated       time.Time     `json:"last_updated"`
}

// Logger interface for configurable logging
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)

	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
}
