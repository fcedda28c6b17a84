package smartbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type interactionLog struct {
	entries    []LogEntry
	pendingIdx int // index of the entry awaiting feedback, -1 when none
	store      BlobStore
	key        string
	logger     Logger
	mtx        sync.RWMutex
}

// NewInteractionLog creates an InteractionLog backed by the given blob
// store, loading any previously persisted history
func NewInteractionLog(store BlobStore, key string) InteractionLog {
	return NewInteractionLogWithLogger(store, key, DiscardLogger{})
}

// NewInteractionLogWithLogger creates an InteractionLog with custom logger.
// A missing or undecodable history blob starts the session with an empty
// log; it never fails. When the persisted history ends in an entry without
// feedback, that entry becomes the pending one again so a rating submitted
// after a restart still lands on the right exchange.
func NewInteractionLogWithLogger(store BlobStore, key string, logger Logger) InteractionLog {
	il := &interactionLog{
		entries:    make([]LogEntry, 0),
		pendingIdx: -1,
		store:      store,
		key:        key,
		logger:     logger,
	}

	data, err := store.Read(key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			logger.Infof("No persisted history found, starting empty, key: %s", key)
		} else {
			logger.Warnf("Failed to read persisted history, starting empty, key: %s, error: %v",
				key, err)
		}
		return il
	}

	var entries []LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warnf("Failed to decode persisted history, starting empty, key: %s, error: %v",
			key, err)
		return il
	}

	if entries != nil {
		il.entries = entries
	}
	if n := len(il.entries); n > 0 && il.entries[n-1].Feedback == FeedbackNone {
		il.pendingIdx = n - 1
	}

	logger.Infof("Interaction log loaded, key: %s, entries: %d, pending_feedback: %v",
		key, len(il.entries), il.pendingIdx >= 0)

	return il
}

// Append records one exchange and arms the pending-feedback pointer. The
// log is persisted write-through; a failed write is logged and the
// in-memory entry stands.
func (il *interactionLog) Append(raw, normalized string, result MatchResult) LogEntry {
	il.mtx.Lock()
	defer il.mtx.Unlock()

	entry := LogEntry{
		ID:         uuid.NewString(),
		Timestamp:  time.Now(),
		RawInput:   raw,
		Normalized: normalized,
		Response:   result.Response,
		Confidence: result.Confidence,
		Feedback:   FeedbackNone,
	}
	if result.TemplateID != nil {
		id := *result.TemplateID
		entry.TemplateID = &id
	}

	il.entries = append(il.entries, entry)
	il.pendingIdx = len(il.entries) - 1

	il.logger.Debugf("Exchange appended, entry_id: %s, template_id: %v, confidence: %.4f",
		entry.ID, result.TemplateID, result.Confidence)

	if err := il.persistLocked(); err != nil {
		il.logger.Warnf("Failed to persist history, entry kept in memory, error: %v", err)
	}

	return copyEntry(entry)
}

// MostRecentWithoutFeedback returns the entry the pending pointer refers to
func (il *interactionLog) MostRecentWithoutFeedback() (LogEntry, bool) {
	il.mtx.RLock()
	defer il.mtx.RUnlock()

	if il.pendingIdx < 0 {
		return LogEntry{}, false
	}

	return copyEntry(il.entries[il.pendingIdx]), true
}

// AssignFeedback marks the pending entry with fb and clears the pending
// pointer. Fails with ErrNoPendingExchange when no entry awaits feedback,
// so rating twice in a row rejects the second call even if older entries
// were never rated.
func (il *interactionLog) AssignFeedback(fb Feedback) (LogEntry, error) {
	if fb != FeedbackPositive && fb != FeedbackNegative {
		return LogEntry{}, fmt.Errorf("%w: %q", ErrInvalidFeedback, fb)
	}

	il.mtx.Lock()
	defer il.mtx.Unlock()

	if il.pendingIdx < 0 {
		return LogEntry{}, ErrNoPendingExchange
	}
	if il.entries[il.pendingIdx].Feedback != FeedbackNone {
		return LogEntry{}, ErrFeedbackAlreadySet
	}

	il.entries[il.pendingIdx].Feedback = fb
	entry := copyEntry(il.entries[il.pendingIdx])
	il.pendingIdx = -1

	il.logger.Debugf("Feedback assigned, entry_id: %s, feedback: %s", entry.ID, fb)

	if err := il.persistLocked(); err != nil {
		il.logger.Warnf("Failed to persist history after feedback, error: %v", err)
	}

	return entry, nil
}

// Recent returns the last n entries, most recent first. n <= 0 returns the
// whole log. Returned entries are copies.
func (il *interactionLog) Recent(n int) []LogEntry {
	il.mtx.RLock()
	defer il.mtx.RUnlock()

	total := len(il.entries)
	if n <= 0 || n > total {
		n = total
	}

	result := make([]LogEntry, 0, n)
	for i := total - 1; i >= total-n; i-- {
		result = append(result, copyEntry(il.entries[i]))
	}

	return result
}

// Clear empties the in-memory and persisted log and drops the pending
// pointer. Irreversible.
func (il *interactionLog) Clear() error {
	il.mtx.Lock()
	defer il.mtx.Unlock()

	il.entries = make([]LogEntry, 0)
	il.pendingIdx = -1

	il.logger.Infof("Interaction log cleared, key: %s", il.key)

	return il.persistLocked()
}

func (il *interactionLog) persistLocked() error {
	data, err := json.MarshalIndent(il.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err := il.store.Write(il.key, data); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}

	return nil
}

func copyEntry(e LogEntry) LogEntry {
	if e.TemplateID != nil {
		id := *e.TemplateID
		e.TemplateID = &id
	}
	return e
}
