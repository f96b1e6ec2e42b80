package analytics

import (
	"math"
	"sort"
	"strings"
)

const (
	// PauseThresholdMs is the gap a silence must exceed to count as a pause.
	PauseThresholdMs = 800

	// DefaultSpeaker keys talk time for words without a diarization label.
	DefaultSpeaker = "default"

	maxFillerExamples = 20
	minDurationMinute = 0.01
)

// fillerTokens are single-word disfluencies.
var fillerTokens = map[string]struct{}{
	"um": {}, "uh": {}, "er": {}, "erm": {}, "hmm": {}, "ah": {},
	"like": {}, "basically": {}, "actually": {}, "literally": {},
	"so": {}, "right": {}, "okay": {}, "well": {},
}

// fillerPhrases are two-word disfluencies, matched independently of fillerTokens.
var fillerPhrases = map[string]struct{}{
	"you know": {}, "sort of": {}, "kind of": {}, "i mean": {},
}

// Pause is an inter-word gap longer than PauseThresholdMs.
type Pause struct {
	After      int // index of the word preceding the gap
	DurationMs int64
}

// Basics holds the outputs of the single linear aggregation pass.
type Basics struct {
	WordCount          int
	TotalDurationMs    int64
	DurationMinutes    float64
	Wpm                int
	TotalSilenceMs     int64
	SilenceRatio       float64
	Pauses             []Pause
	AvgPauseDurationMs int64
	TalkTimeBySpeaker  map[string]int64
	Fillers            []FillerOccurrence
	FillerPerMinute    float64
}

// Aggregate computes word count, duration, pace, silence, pauses, talk time
// and filler usage. Duration runs from the first word's start to the last
// word's end; silence outside that span is not seen.
func Aggregate(words []Word) Basics {
	b := Basics{TalkTimeBySpeaker: map[string]int64{}}
	if len(words) == 0 {
		return b
	}

	b.WordCount = len(words)
	b.TotalDurationMs = words[len(words)-1].EndMs - words[0].StartMs
	b.DurationMinutes = durationMinutes(b.TotalDurationMs)
	b.Wpm = int(math.Round(float64(b.WordCount) / b.DurationMinutes))

	var pauseTotal int64
	for i, w := range words {
		speaker := w.Speaker
		if speaker == "" {
			speaker = DefaultSpeaker
		}
		b.TalkTimeBySpeaker[speaker] += w.EndMs - w.StartMs

		if i == len(words)-1 {
			break
		}
		gap := words[i+1].StartMs - w.EndMs
		if gap > 0 {
			b.TotalSilenceMs += gap
		}
		if gap > PauseThresholdMs {
			b.Pauses = append(b.Pauses, Pause{After: i, DurationMs: gap})
			pauseTotal += gap
		}
	}

	if b.TotalDurationMs > 0 {
		b.SilenceRatio = roundTo(float64(b.TotalSilenceMs)/float64(b.TotalDurationMs), 3)
	}
	if len(b.Pauses) > 0 {
		b.AvgPauseDurationMs = int64(math.Round(float64(pauseTotal) / float64(len(b.Pauses))))
	}

	b.Fillers = DetectFillers(words)
	b.FillerPerMinute = roundTo(float64(len(b.Fillers))/b.DurationMinutes, 1)
	return b
}

// DetectFillers returns every filler match in chronological order. Single
// tokens and two-word phrases are separate passes, so a word may be counted
// by both when the lexicons overlap. Tokens are only trimmed and lowercased,
// so callers must pass bare words without attached punctuation.
func DetectFillers(words []Word) []FillerOccurrence {
	var out []FillerOccurrence
	for i, w := range words {
		tok := normalizeToken(w.Text)
		if _, ok := fillerTokens[tok]; ok {
			out = append(out, FillerOccurrence{Word: tok, StartMs: w.StartMs, EndMs: w.EndMs, Index: i})
		}
	}
	for i := 0; i+1 < len(words); i++ {
		phrase := normalizeToken(words[i].Text) + " " + normalizeToken(words[i+1].Text)
		if _, ok := fillerPhrases[phrase]; ok {
			out = append(out, FillerOccurrence{Word: phrase, StartMs: words[i].StartMs, EndMs: words[i+1].EndMs, Index: i})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartMs != out[j].StartMs {
			return out[i].StartMs < out[j].StartMs
		}
		return out[i].Index < out[j].Index
	})
	return out
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func durationMinutes(ms int64) float64 {
	return math.Max(float64(ms)/60000, minDurationMinute)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func intPtr(v int) *int { return &v }
