package analytics

import "math"

const (
	lowConfidenceThreshold = 0.7
	maxLowConfidenceWords  = 20
)

// ConfidenceStats summarises per-word recognition confidence. Score is nil
// when no word carries a confidence value.
type ConfidenceStats struct {
	Score    *int
	LowWords []LowConfidenceWord
}

// AnalyzeConfidence averages the confidence of the words that have one and
// lists the first low-confidence words in order.
func AnalyzeConfidence(words []Word) ConfidenceStats {
	var (
		stats ConfidenceStats
		sum   float64
		n     int
	)
	for _, w := range words {
		if w.Confidence == nil {
			continue
		}
		c := *w.Confidence
		sum += c
		n++
		if c < lowConfidenceThreshold && len(stats.LowWords) < maxLowConfidenceWords {
			stats.LowWords = append(stats.LowWords, LowConfidenceWord{
				Word:        w.Text,
				Confidence:  c,
				TimestampMs: w.StartMs,
			})
		}
	}
	if n == 0 {
		return ConfidenceStats{}
	}
	stats.Score = intPtr(int(math.Round(sum / float64(n) * 100)))
	return stats
}

// ClarityScore blends recognition confidence with how close the pace is to
// the ideal range and how much of the recording is speech. It returns nil
// when confidenceScore is nil.
func ClarityScore(confidenceScore *int, wpm int, silenceRatio float64) *int {
	if confidenceScore == nil {
		return nil
	}
	confidenceFactor := float64(*confidenceScore) / 100

	paceFactor := 1.0
	if wpm < 120 || wpm > 160 {
		paceFactor = math.Max(0.5, 1-math.Abs(float64(wpm)-140)/200)
	}
	articulationFactor := math.Max(0.5, 1-silenceRatio)

	return intPtr(int(math.Round(confidenceFactor * paceFactor * articulationFactor * 100)))
}
