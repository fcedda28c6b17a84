package smartbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func matchedResult(id int, response string, confidence float64) MatchResult {
	return MatchResult{
		TemplateID: &id,
		Response:   response,
		Confidence: confidence,
	}
}

func TestInteractionLogAppend(t *testing.T) {
	store := newMemStore()
	log := NewInteractionLog(store, DefaultHistoryKey)

	entry := log.Append("Hello!", "hello", matchedResult(1, "Hi there!", 0.9))

	if entry.ID == "" {
		t.Errorf("entry ID is empty, expected a generated id")
	}
	if entry.Timestamp.IsZero() {
		t.Errorf("entry timestamp is zero, expected current time")
	}
	if entry.RawInput != "Hello!" || entry.Normalized != "hello" {
		t.Errorf("entry inputs = (%q, %q), expected (%q, %q)",
			entry.RawInput, entry.Normalized, "Hello!", "hello")
	}
	if entry.TemplateID == nil || *entry.TemplateID != 1 {
		t.Errorf("entry TemplateID = %v, expected 1", entry.TemplateID)
	}
	if entry.Feedback != FeedbackNone {
		t.Errorf("entry Feedback = %q, expected none", entry.Feedback)
	}

	pending, ok := log.MostRecentWithoutFeedback()
	if !ok {
		t.Fatalf("MostRecentWithoutFeedback() = none, expected pending entry")
	}
	if pending.ID != entry.ID {
		t.Errorf("pending entry ID = %s, expected %s", pending.ID, entry.ID)
	}
}

func TestInteractionLogAssignFeedback(t *testing.T) {
	log := NewInteractionLog(newMemStore(), DefaultHistoryKey)
	log.Append("hi", "hi", matchedResult(1, "hello", 0.8))

	entry, err := log.AssignFeedback(FeedbackPositive)
	if err != nil {
		t.Fatalf("AssignFeedback() failed: %v", err)
	}
	if entry.Feedback != FeedbackPositive {
		t.Errorf("entry Feedback = %q, expected positive", entry.Feedback)
	}

	if _, ok := log.MostRecentWithoutFeedback(); ok {
		t.Errorf("MostRecentWithoutFeedback() = entry, expected none after feedback")
	}
}

func TestInteractionLogDoubleFeedbackFails(t *testing.T) {
	log := NewInteractionLog(newMemStore(), DefaultHistoryKey)
	log.Append("hi", "hi", matchedResult(1, "hello", 0.8))

	if _, err := log.AssignFeedback(FeedbackPositive); err != nil {
		t.Fatalf("first AssignFeedback() failed: %v", err)
	}
	if _, err := log.AssignFeedback(FeedbackNegative); !errors.Is(err, ErrNoPendingExchange) {
		t.Errorf("second AssignFeedback() error = %v, expected ErrNoPendingExchange", err)
	}
}

func TestInteractionLogFeedbackBeforeAnyExchange(t *testing.T) {
	log := NewInteractionLog(newMemStore(), DefaultHistoryKey)

	if _, err := log.AssignFeedback(FeedbackPositive); !errors.Is(err, ErrNoPendingExchange) {
		t.Errorf("AssignFeedback() error = %v, expected ErrNoPendingExchange", err)
	}
}

func TestInteractionLogInvalidFeedback(t *testing.T) {
	log := NewInteractionLog(newMemStore(), DefaultHistoryKey)
	log.Append("hi", "hi", matchedResult(1, "hello", 0.8))

	for _, fb := range []Feedback{FeedbackNone, Feedback("meh")} {
		if _, err := log.AssignFeedback(fb); !errors.Is(err, ErrInvalidFeedback) {
			t.Errorf("AssignFeedback(%q) error = %v, expected ErrInvalidFeedback", fb, err)
		}
	}
}

func TestInteractionLogPendingPointsToNewestEntry(t *testing.T) {
	log := NewInteractionLog(newMemStore(), DefaultHistoryKey)

	log.Append("first", "first", matchedResult(1, "a", 0.5))
	second := log.Append("second", "second", matchedResult(2, "b", 0.6))

	entry, err := log.AssignFeedback(FeedbackNegative)
	if err != nil {
		t.Fatalf("AssignFeedback() failed: %v", err)
	}
	if entry.ID != second.ID {
		t.Errorf("feedback landed on entry %s, expected newest %s", entry.ID, second.ID)
	}

	// The first entry never received feedback, but the pending pointer is
	// gone: another rating has nothing to attach to.
	if _, err := log.AssignFeedback(FeedbackPositive); !errors.Is(err, ErrNoPendingExchange) {
		t.Errorf("AssignFeedback() error = %v, expected ErrNoPendingExchange", err)
	}
}

func TestInteractionLogRecent(t *testing.T) {
	log := NewInteractionLog(newMemStore(), DefaultHistoryKey)
	for i := 1; i <= 5; i++ {
		log.Append(fmt.Sprintf("input %d", i), fmt.Sprintf("input %d", i),
			matchedResult(i, "r", 0.5))
	}

	tests := []struct {
		name          string
		n             int
		expectedCount int
		expectedFirst string
	}{
		{name: "last two", n: 2, expectedCount: 2, expectedFirst: "input 5"},
		{name: "zero returns all", n: 0, expectedCount: 5, expectedFirst: "input 5"},
		{name: "negative returns all", n: -3, expectedCount: 5, expectedFirst: "input 5"},
		{name: "more than available", n: 10, expectedCount: 5, expectedFirst: "input 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recent := log.Recent(tt.n)
			if len(recent) != tt.expectedCount {
				t.Fatalf("Recent(%d) returned %d entries, expected %d",
					tt.n, len(recent), tt.expectedCount)
			}
			if recent[0].RawInput != tt.expectedFirst {
				t.Errorf("Recent(%d)[0].RawInput = %q, expected %q",
					tt.n, recent[0].RawInput, tt.expectedFirst)
			}
		})
	}

	// Most recent first throughout.
	recent := log.Recent(0)
	for i := range len(recent) - 1 {
		if recent[i].Timestamp.Before(recent[i+1].Timestamp) {
			t.Errorf("Recent() not ordered most recent first at index %d", i)
		}
	}
}

func TestInteractionLogClear(t *testing.T) {
	store := newMemStore()
	log := NewInteractionLog(store, DefaultHistoryKey)
	log.Append("hi", "hi", matchedResult(1, "hello", 0.8))
	log.Append("bye", "bye", matchedResult(2, "goodbye", 0.7))

	if err := log.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}

	if got := log.Recent(5); len(got) != 0 {
		t.Errorf("Recent(5) after Clear() returned %d entries, expected 0", len(got))
	}
	if _, ok := log.MostRecentWithoutFeedback(); ok {
		t.Errorf("MostRecentWithoutFeedback() = entry after Clear(), expected none")
	}

	// The persisted blob is an empty array, not null.
	data, err := store.Read(DefaultHistoryKey)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	var persisted []LogEntry
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if len(persisted) != 0 {
		t.Errorf("persisted history has %d entries after Clear(), expected 0", len(persisted))
	}
}

func TestInteractionLogRoundTrip(t *testing.T) {
	store := newMemStore()

	first := NewInteractionLog(store, DefaultHistoryKey)
	first.Append("Hello!", "hello", matchedResult(1, "Hi there!", 0.9))
	first.Append("Tell me a joke", "tell me a joke", MatchResult{
		Response:   FallbackResponse,
		Confidence: 0.1,
	})
	if _, err := first.AssignFeedback(FeedbackNegative); err != nil {
		t.Fatalf("AssignFeedback() failed: %v", err)
	}

	second := NewInteractionLog(store, DefaultHistoryKey)
	reloaded := second.Recent(0)
	original := first.Recent(0)

	if len(reloaded) != len(original) {
		t.Fatalf("reloaded %d entries, expected %d", len(reloaded), len(original))
	}
	for i := range reloaded {
		if reloaded[i].ID != original[i].ID {
			t.Errorf("entry %d ID = %s, expected %s", i, reloaded[i].ID, original[i].ID)
		}
		if reloaded[i].RawInput != original[i].RawInput {
			t.Errorf("entry %d RawInput = %q, expected %q",
				i, reloaded[i].RawInput, original[i].RawInput)
		}
		if reloaded[i].Feedback != original[i].Feedback {
			t.Errorf("entry %d Feedback = %q, expected %q",
				i, reloaded[i].Feedback, original[i].Feedback)
		}
		if !reloaded[i].Timestamp.Equal(original[i].Timestamp) {
			t.Errorf("entry %d Timestamp = %v, expected %v",
				i, reloaded[i].Timestamp, original[i].Timestamp)
		}
		if (reloaded[i].TemplateID == nil) != (original[i].TemplateID == nil) {
			t.Errorf("entry %d TemplateID nil mismatch", i)
		}
	}
}

func TestInteractionLogReloadReArmsPending(t *testing.T) {
	store := newMemStore()

	first := NewInteractionLog(store, DefaultHistoryKey)
	first.Append("rated", "rated", matchedResult(1, "a", 0.5))
	if _, err := first.AssignFeedback(FeedbackPositive); err != nil {
		t.Fatalf("AssignFeedback() failed: %v", err)
	}
	unrated := first.Append("unrated", "unrated", matchedResult(2, "b", 0.6))

	second := NewInteractionLog(store, DefaultHistoryKey)
	pending, ok := second.MostRecentWithoutFeedback()
	if !ok {
		t.Fatalf("MostRecentWithoutFeedback() = none after reload, expected pending entry")
	}
	if pending.ID != unrated.ID {
		t.Errorf("pending entry ID = %s, expected %s", pending.ID, unrated.ID)
	}
}

func TestInteractionLogReloadNoPendingWhenTrailingEntryRated(t *testing.T) {
	store := newMemStore()

	first := NewInteractionLog(store, DefaultHistoryKey)
	first.Append("rated", "rated", matchedResult(1, "a", 0.5))
	if _, err := first.AssignFeedback(FeedbackPositive); err != nil {
		t.Fatalf("AssignFeedback() failed: %v", err)
	}

	second := NewInteractionLog(store, DefaultHistoryKey)
	if _, ok := second.MostRecentWithoutFeedback(); ok {
		t.Errorf("MostRecentWithoutFeedback() = entry, expected none when trailing entry is rated")
	}
}

func TestInteractionLogCorruptHistoryStartsEmpty(t *testing.T) {
	store := newMemStore()
	if err := store.Write(DefaultHistoryKey, []byte("{{{ not json")); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	log := NewInteractionLog(store, DefaultHistoryKey)
	if got := log.Recent(0); len(got) != 0 {
		t.Errorf("Recent(0) returned %d entries for corrupt history, expected 0", len(got))
	}
}

func TestInteractionLogWritesThrough(t *testing.T) {
	store := newMemStore()
	log := NewInteractionLog(store, DefaultHistoryKey)

	log.Append("hi", "hi", matchedResult(1, "hello", 0.8))

	data, err := store.Read(DefaultHistoryKey)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	var persisted []LogEntry
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if len(persisted) != 1 {
		t.Fatalf("persisted history has %d entries, expected 1 after Append", len(persisted))
	}
	if persisted[0].RawInput != "hi" {
		t.Errorf("persisted RawInput = %q, expected %q", persisted[0].RawInput, "hi")
	}
}

func TestInteractionLogAppendSurvivesWriteFailure(t *testing.T) {
	log := NewInteractionLog(&failingStore{inner: newMemStore()}, DefaultHistoryKey)

	entry := log.Append("hi", "hi", matchedResult(1, "hello", 0.8))
	if entry.ID == "" {
		t.Fatalf("Append() returned empty entry despite write failure")
	}

	if got := log.Recent(1); len(got) != 1 {
		t.Errorf("Recent(1) returned %d entries, expected in-memory entry to survive", len(got))
	}
}
