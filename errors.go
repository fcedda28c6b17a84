package smartbot

import "errors"

// Error types for the adaptive response engine
var (
	// ErrKeyNotFound indicates the requested key does not exist in the blob store
	ErrKeyNotFound = errors.New("key not found")

	// ErrNoPendingExchange indicates feedback was submitted with no exchange awaiting a rating
	ErrNoPendingExchange = errors.New("no pending exchange to rate")

	// ErrFeedbackAlreadySet indicates the targeted log entry already carries feedback
	ErrFeedbackAlreadySet = errors.New("feedback already set for this exchange")

	// ErrInvalidFeedback indicates the feedback value is not a recognized signal
	ErrInvalidFeedback = errors.New("invalid feedback value")

	// ErrInvalidRating indicates a numeric rating outside the accepted 1-10 range
	ErrInvalidRating = errors.New("rating must be between 1 and 10")

	// ErrMalformedTemplate indicates a template is missing required fields
	ErrMalformedTemplate = errors.New("malformed template")

	// ErrDuplicateTemplateID indicates a template id is already present in the corpus
	ErrDuplicateTemplateID = errors.New("duplicate template id")

	// ErrNoKeywords indicates keyword extraction produced no usable keywords
	ErrNoKeywords = errors.New("no keywords extracted from phrase")

	// ErrCorpusFileNotFound indicates the template file could not be found
	ErrCorpusFileNotFound = errors.New("template file not found")

	// ErrInvalidCorpusFormat indicates the template file format is invalid
	ErrInvalidCorpusFormat = errors.New("invalid template file format")

	// ErrEmptyCorpus indicates a template source yielded no valid templates
	ErrEmptyCorpus = errors.New("no valid templates loaded")

	// ErrInvalidConfiguration indicates configuration parameters are invalid
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnknownStorageBackend indicates the configured storage backend is not supported
	ErrUnknownStorageBackend = errors.New("unknown storage backend")

	// ErrStoreClosed indicates an operation on a closed store
	ErrStoreClosed = errors.New("store is closed")
)
