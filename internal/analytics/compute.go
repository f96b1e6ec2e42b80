package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsorted is returned by CheckOrder when word starts go backwards.
	ErrUnsorted = errors.New("words are not ordered by start time")

	// ErrInvalidWord is returned by CheckOrder when a word ends before it starts.
	ErrInvalidWord = errors.New("word ends before it starts")
)

// CheckOrder verifies the precondition Compute relies on: every word has
// end >= start and starts are non-decreasing.
func CheckOrder(words []Word) error {
	for i, w := range words {
		if w.EndMs < w.StartMs {
			return fmt.Errorf("word %d (%q): %w", i, w.Text, ErrInvalidWord)
		}
		if i > 0 && w.StartMs < words[i-1].StartMs {
			return fmt.Errorf("word %d (%q) starts at %dms after %dms: %w",
				i, w.Text, w.StartMs, words[i-1].StartMs, ErrUnsorted)
		}
	}
	return nil
}

// Compute derives the full set of delivery metrics from a word-level
// transcript and its text. An empty word list yields zero metrics, not an
// error.
func Compute(words []Word, transcript string) DeliveryMetrics {
	if len(words) == 0 {
		return DeliveryMetrics{TalkTimeBySpeakerMs: map[string]int64{}}
	}

	basics := Aggregate(words)
	m := DeliveryMetrics{
		WordCount:           basics.WordCount,
		TotalDurationMs:     basics.TotalDurationMs,
		OverallWpm:          basics.Wpm,
		SilenceRatio:        basics.SilenceRatio,
		TotalSilenceMs:      basics.TotalSilenceMs,
		PauseCount:          len(basics.Pauses),
		AvgPauseDurationMs:  basics.AvgPauseDurationMs,
		FillerCount:         len(basics.Fillers),
		FillerPerMinute:     basics.FillerPerMinute,
		TalkTimeBySpeakerMs: basics.TalkTimeBySpeaker,
	}
	if n := min(len(basics.Fillers), maxFillerExamples); n > 0 {
		m.FillerWords = append([]FillerOccurrence(nil), basics.Fillers[:n]...)
	}

	m.FluencyScore = FluencyScore(FluencyInput{
		Wpm:             basics.Wpm,
		SilenceRatio:    basics.SilenceRatio,
		FillerPerMinute: basics.FillerPerMinute,
		PauseCount:      len(basics.Pauses),
		DurationMinutes: basics.DurationMinutes,
	})

	conf := AnalyzeConfidence(words)
	m.ConfidenceScore = conf.Score
	m.LowConfidenceWords = conf.LowWords
	m.ClarityScore = ClarityScore(conf.Score, basics.Wpm, basics.SilenceRatio)

	tl := Segment(words, basics.Fillers)
	m.PaceTimeline = tl.Segments
	m.MomentumScore = tl.Momentum
	m.RhythmVariation = tl.Rhythm
	m.PeakSegments = tl.Peaks

	m.SentenceStats = AnalyzeSentences(transcript)

	m.FillerHotspots = FillerHotspots(basics.Fillers)
	m.LongestPause = FindLongestPause(words, basics.Pauses)
	m.CriticalMoments = FindCriticalMoments(m.FillerHotspots, m.LongestPause, words)
	m.SpeakerInterruptions = FindInterruptions(words)
	m.BreathingPattern = EstimateBreathing(words)
	return m
}
