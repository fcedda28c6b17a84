package smartbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Bounds enforced on every parameter update. Weights stay non-negative,
// the confidence threshold stays a valid probability, and the learning
// rate stays strictly inside (0, 1).
const (
	MinWeight = 0.0
	MaxWeight = 10.0

	MinConfidenceThreshold = 0.0
	MaxConfidenceThreshold = 1.0

	MinLearningRate = 0.001
	MaxLearningRate = 0.999
)

// Defaults applied when no persisted state exists. The length penalty
// starts at zero: out-of-the-box matching is driven purely by keyword
// overlap.
const (
	DefaultKeywordWeight       = 1.0
	DefaultLengthPenaltyWeight = 0.0
	DefaultConfidenceThreshold = 0.3
	DefaultLearningRate        = 0.1
)

// DefaultParameters returns the parameter set used when nothing has been
// persisted yet
func DefaultParameters() Parameters {
	return Parameters{
		KeywordWeight:       DefaultKeywordWeight,
		LengthPenaltyWeight: DefaultLengthPenaltyWeight,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		LearningRate:        DefaultLearningRate,
	}
}

// clampParameters forces every field back into its declared bounds
func clampParameters(p Parameters) Parameters {
	return Parameters{
		KeywordWeight:       clamp(p.KeywordWeight, MinWeight, MaxWeight),
		LengthPenaltyWeight: clamp(p.LengthPenaltyWeight, MinWeight, MaxWeight),
		ConfidenceThreshold: clamp(p.ConfidenceThreshold, MinConfidenceThreshold, MaxConfidenceThreshold),
		LearningRate:        clamp(p.LearningRate, MinLearningRate, MaxLearningRate),
	}
}

type paramStore struct {
	store    BlobStore
	key      string
	defaults Parameters
	current  Parameters
	logger   Logger
	mtx      sync.RWMutex
}

// NewParameterStore creates a new ParameterStore backed by the given blob
// store, starting from DefaultParameters
func NewParameterStore(store BlobStore, key string) ParameterStore {
	return NewParameterStoreWithLogger(store, key, DefaultParameters(), DiscardLogger{})
}

// NewParameterStoreWithLogger creates a new ParameterStore with custom
// defaults and logger
func NewParameterStoreWithLogger(
	store BlobStore,
	key string,
	defaults Parameters,
	logger Logger,
) ParameterStore {
	clamped := clampParameters(defaults)
	return &paramStore{
		store:    store,
		key:      key,
		defaults: clamped,
		current:  clamped,
		logger:   logger,
	}
}

// Load reads persisted parameters from the blob store. A missing key or an
// undecodable payload falls back to the configured defaults; Load never
// fails the session. Loaded values are clamped before use.
func (ps *paramStore) Load() Parameters {
	ps.mtx.Lock()
	defer ps.mtx.Unlock()

	data, err := ps.store.Read(ps.key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			ps.logger.Infof("No persisted parameters found, using defaults, key: %s", ps.key)
		} else {
			ps.logger.Warnf("Failed to read persisted parameters, using defaults, key: %s, error: %v",
				ps.key, err)
		}
		ps.current = ps.defaults
		return ps.current
	}

	var loaded Parameters
	if err := json.Unmarshal(data, &loaded); err != nil {
		ps.logger.Warnf("Failed to decode persisted parameters, using defaults, key: %s, error: %v",
			ps.key, err)
		ps.current = ps.defaults
		return ps.current
	}

	ps.current = clampParameters(loaded)
	ps.logger.Infof(
		"Parameters loaded, key: %s, keyword_weight: %.4f, length_penalty_weight: %.4f, "+
			"confidence_threshold: %.4f, learning_rate: %.4f",
		ps.key,
		ps.current.KeywordWeight,
		ps.current.LengthPenaltyWeight,
		ps.current.ConfidenceThreshold,
		ps.current.LearningRate,
	)

	return ps.current
}

// Save clamps and persists the given parameters, making them the current
// in-memory value
func (ps *paramStore) Save(p Parameters) error {
	ps.mtx.Lock()
	defer ps.mtx.Unlock()

	ps.current = clampParameters(p)
	return ps.persistLocked()
}

// Current returns the in-memory parameter values
func (ps *paramStore) Current() Parameters {
	ps.mtx.RLock()
	defer ps.mtx.RUnlock()

	return ps.current
}

// Apply adds the delta to the current parameters, clamps every field to its
// bounds, and persists the result. A persistence failure is returned to the
// caller but does not roll back the in-memory value; the next mutation will
// retry the write.
func (ps *paramStore) Apply(delta ParameterDelta) (Parameters, error) {
	ps.mtx.Lock()
	defer ps.mtx.Unlock()

	next := clampParameters(Parameters{
		KeywordWeight:       ps.current.KeywordWeight + delta.KeywordWeight,
		LengthPenaltyWeight: ps.current.LengthPenaltyWeight + delta.LengthPenaltyWeight,
		ConfidenceThreshold: ps.current.ConfidenceThreshold + delta.ConfidenceThreshold,
		LearningRate:        ps.current.LearningRate + delta.LearningRate,
	})
	ps.current = next

	ps.logger.Debugf(
		"Parameters updated, keyword_weight: %.4f, length_penalty_weight: %.4f, "+
			"confidence_threshold: %.4f, learning_rate: %.4f",
		next.KeywordWeight,
		next.LengthPenaltyWeight,
		next.ConfidenceThreshold,
		next.LearningRate,
	)

	if err := ps.persistLocked(); err != nil {
		ps.logger.Warnf("Failed to persist updated parameters, keeping in-memory values, error: %v",
			err)
		return next, err
	}

	return next, nil
}

func (ps *paramStore) persistLocked() error {
	data, err := json.MarshalIndent(ps.current, "", "  ")
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}

	if err := ps.store.Write(ps.key, data); err != nil {
		return fmt.Errorf("persist parameters: %w", err)
	}

	return nil
}
