package smartbot

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Rating scale accepted by SubmitRating. Scores of 6 and above count as
// positive; the distance from the neutral midpoint scales the parameter
// adjustment.
const (
	MinRating     = 1
	MaxRating     = 10
	neutralRating = 5.5
	ratingSpan    = 4.5
)

// isValidFeedback reports whether fb is one of the two closed signal values
func isValidFeedback(fb Feedback) bool {
	switch fb {
	case FeedbackPositive, FeedbackNegative:
		return true
	default:
		return false
	}
}

type ratingAdapter struct {
	params  ParameterStore
	history InteractionLog
	logger  Logger
}

// NewRatingAdapter creates a RatingAdapter wiring the parameter store to
// the interaction log
func NewRatingAdapter(params ParameterStore, history InteractionLog) RatingAdapter {
	return NewRatingAdapterWithLogger(params, history, DiscardLogger{})
}

// NewRatingAdapterWithLogger creates a RatingAdapter with custom logger
func NewRatingAdapterWithLogger(
	params ParameterStore,
	history InteractionLog,
	logger Logger,
) RatingAdapter {
	return &ratingAdapter{
		params:  params,
		history: history,
		logger:  logger,
	}
}

// SubmitFeedback applies fb to the pending exchange at full strength
func (ra *ratingAdapter) SubmitFeedback(fb Feedback) (Parameters, error) {
	return ra.apply(fb, 1.0)
}

// SubmitRating converts a 1-10 score into a feedback signal. Scores above
// the neutral midpoint count as positive, the rest as negative; the
// parameter deltas shrink as the score approaches neutral, so a 6 barely
// moves the weights while a 10 or a 1 applies the full update.
func (ra *ratingAdapter) SubmitRating(score int) (Parameters, error) {
	if score < MinRating || score > MaxRating {
		return Parameters{}, fmt.Errorf("%w: got %d", ErrInvalidRating, score)
	}

	fb := FeedbackNegative
	if float64(score) > neutralRating {
		fb = FeedbackPositive
	}
	magnitude := clamp(math.Abs(float64(score)-neutralRating)/ratingSpan, 0.0, 1.0)

	ra.logger.Debugf("Rating converted, score: %d, feedback: %s, magnitude: %.4f",
		score, fb, magnitude)

	return ra.apply(fb, magnitude)
}

// apply performs the bounded parameter update for one feedback signal.
//
// Given the pending exchange's confidence and the current learning rate:
//
//	keyword_weight       += direction * learning_rate * (1 - confidence) * magnitude
//	confidence_threshold -= direction * learning_rate * 0.5 * magnitude
//
// Uncertain matches produce large corrections, confident ones small
// reinforcement. Positive feedback lowers the threshold, negative raises
// it. A persistence failure after the update is logged and swallowed; the
// in-memory parameters stay authoritative and the next mutation retries
// the write.
func (ra *ratingAdapter) apply(fb Feedback, magnitude float64) (Parameters, error) {
	if !isValidFeedback(fb) {
		return Parameters{}, fmt.Errorf("%w: %q", ErrInvalidFeedback, fb)
	}

	pending, ok := ra.history.MostRecentWithoutFeedback()
	if !ok {
		return Parameters{}, ErrNoPendingExchange
	}

	direction := 1.0
	if fb == FeedbackNegative {
		direction = -1.0
	}

	current := ra.params.Current()
	delta := ParameterDelta{
		KeywordWeight:       direction * current.LearningRate * (1.0 - pending.Confidence) * magnitude,
		ConfidenceThreshold: -direction * current.LearningRate * 0.5 * magnitude,
	}

	updated, err := ra.params.Apply(delta)
	if err != nil {
		ra.logger.Warnf("Parameter persistence failed, continuing with in-memory values, error: %v",
			err)
	}

	if _, err := ra.history.AssignFeedback(fb); err != nil {
		return updated, err
	}

	ra.logger.Infof(
		"Feedback applied, entry_id: %s, feedback: %s, confidence: %.4f, magnitude: %.4f, "+
			"keyword_weight: %.4f -> %.4f, confidence_threshold: %.4f -> %.4f",
		pending.ID,
		fb,
		pending.Confidence,
		magnitude,
		current.KeywordWeight,
		updated.KeywordWeight,
		current.ConfidenceThreshold,
		updated.ConfidenceThreshold,
	)

	return updated, nil
}

// ParseFeedback interprets a console rating argument. "good" and
// "positive" map to positive feedback, "bad" and "negative" to negative,
// and a bare number to a 1-10 rating (returned with FeedbackNone).
func ParseFeedback(arg string) (Feedback, int, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "good", "positive", "+":
		return FeedbackPositive, 0, nil
	case "bad", "negative", "-":
		return FeedbackNegative, 0, nil
	}

	score, err := cast.ToIntE(strings.TrimSpace(arg))
	if err != nil {
		return FeedbackNone, 0, fmt.Errorf("%w: %q", ErrInvalidFeedback, arg)
	}
	if score < MinRating || score > MaxRating {
		return FeedbackNone, 0, fmt.Errorf("%w: got %d", ErrInvalidRating, score)
	}

	return FeedbackNone, score, nil
}
