package analytics

import (
	"math"
	"regexp"
	"strings"
)

const runOnWordCount = 25

var sentenceBreak = regexp.MustCompile(`[.!?]+`)

// AnalyzeSentences reports sentence length statistics for the transcript
// text. It returns nil when the text holds no sentence.
func AnalyzeSentences(text string) *SentenceStats {
	var lengths []int
	for _, frag := range sentenceBreak.Split(text, -1) {
		if strings.TrimSpace(frag) == "" {
			continue
		}
		lengths = append(lengths, len(strings.Fields(frag)))
	}
	if len(lengths) == 0 {
		return nil
	}

	stats := &SentenceStats{
		Count:    len(lengths),
		MaxWords: lengths[0],
		MinWords: lengths[0],
	}
	total := 0
	for _, n := range lengths {
		total += n
		stats.MaxWords = max(stats.MaxWords, n)
		stats.MinWords = min(stats.MinWords, n)
		if n > runOnWordCount {
			stats.RunOnCount++
		}
	}
	stats.AvgWords = int(math.Round(float64(total) / float64(len(lengths))))
	return stats
}
