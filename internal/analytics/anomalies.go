package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	hotspotWindowMs = 10_000
	minHotspotSize  = 2

	fillerMomentMin  = 3
	fillerMomentHigh = 4

	longPauseMomentMs = 2_000
	longPauseHighMs   = 3_000

	veryLowConfidence     = 0.5
	lowConfidenceRunMin   = 3
	lowConfidenceMaxGapMs = 3_000

	interruptionGapMs = 200

	breathMinMs = 600
	breathMaxMs = 1_500
)

// FillerHotspots groups fillers greedily: a cluster starts at a filler and
// takes every following filler that starts within 10 seconds of it. Only
// clusters with at least two fillers are returned.
func FillerHotspots(fillers []FillerOccurrence) []FillerHotspot {
	var out []FillerHotspot
	for i := 0; i < len(fillers); {
		first := fillers[i]
		j := i + 1
		for j < len(fillers) && fillers[j].StartMs-first.StartMs <= hotspotWindowMs {
			j++
		}
		if n := j - i; n >= minHotspotSize {
			h := FillerHotspot{StartMs: first.StartMs, Count: n}
			for _, f := range fillers[i:j] {
				h.Fillers = append(h.Fillers, f.Word)
				h.EndMs = max(h.EndMs, f.EndMs)
			}
			out = append(out, h)
		}
		i = j
	}
	return out
}

// FindLongestPause returns the first of the longest pauses, or nil when
// there are none.
func FindLongestPause(words []Word, pauses []Pause) *LongestPause {
	var best *Pause
	for i := range pauses {
		if best == nil || pauses[i].DurationMs > best.DurationMs {
			best = &pauses[i]
		}
	}
	if best == nil || best.After+1 >= len(words) {
		return nil
	}
	return &LongestPause{
		DurationMs:  best.DurationMs,
		TimestampMs: words[best.After].EndMs,
		WordBefore:  words[best.After].Text,
		WordAfter:   words[best.After+1].Text,
	}
}

// FindCriticalMoments flags heavy filler clusters, a very long pause and
// runs of poorly recognised words, ordered by time.
func FindCriticalMoments(hotspots []FillerHotspot, longest *LongestPause, words []Word) []CriticalMoment {
	var out []CriticalMoment
	for _, h := range hotspots {
		if h.Count < fillerMomentMin {
			continue
		}
		sev := SeverityMedium
		if h.Count >= fillerMomentHigh {
			sev = SeverityHigh
		}
		out = append(out, CriticalMoment{
			Kind:        MomentFillerCluster,
			Severity:    sev,
			TimestampMs: h.StartMs,
			DurationMs:  h.EndMs - h.StartMs,
			Description: fmt.Sprintf("%d filler words in quick succession (%s)", h.Count, strings.Join(h.Fillers, ", ")),
		})
	}

	if longest != nil && longest.DurationMs > longPauseMomentMs {
		sev := SeverityMedium
		if longest.DurationMs > longPauseHighMs {
			sev = SeverityHigh
		}
		out = append(out, CriticalMoment{
			Kind:        MomentLongPause,
			Severity:    sev,
			TimestampMs: longest.TimestampMs,
			DurationMs:  longest.DurationMs,
			Description: fmt.Sprintf("%.1fs pause after %q", float64(longest.DurationMs)/1000, longest.WordBefore),
		})
	}

	out = append(out, lowConfidenceRuns(words)...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})
	return out
}

// lowConfidenceRuns finds runs of at least three words below 0.5 confidence
// where each starts less than three seconds after the previous one ended.
func lowConfidenceRuns(words []Word) []CriticalMoment {
	var (
		out []CriticalMoment
		run []Word
	)
	flush := func() {
		if len(run) >= lowConfidenceRunMin {
			texts := make([]string, len(run))
			for i, w := range run {
				texts[i] = w.Text
			}
			out = append(out, CriticalMoment{
				Kind:        MomentLowConfidence,
				Severity:    SeverityMedium,
				TimestampMs: run[0].StartMs,
				DurationMs:  run[len(run)-1].EndMs - run[0].StartMs,
				Description: fmt.Sprintf("%d unclear words: %s", len(run), strings.Join(texts, " ")),
			})
		}
		run = run[:0]
	}

	for _, w := range words {
		if w.Confidence == nil || *w.Confidence >= veryLowConfidence {
			continue
		}
		if len(run) > 0 && w.StartMs-run[len(run)-1].EndMs >= lowConfidenceMaxGapMs {
			flush()
		}
		run = append(run, w)
	}
	flush()
	return out
}

// FindInterruptions reports adjacent words from different labelled speakers
// separated by less than 200ms, including overlapping words.
func FindInterruptions(words []Word) []SpeakerInterruption {
	var out []SpeakerInterruption
	for i := 0; i+1 < len(words); i++ {
		cur, next := words[i], words[i+1]
		if cur.Speaker == "" || next.Speaker == "" || cur.Speaker == next.Speaker {
			continue
		}
		gap := next.StartMs - cur.EndMs
		if gap >= interruptionGapMs {
			continue
		}
		out = append(out, SpeakerInterruption{
			TimestampMs: next.StartMs,
			FromSpeaker: cur.Speaker,
			ToSpeaker:   next.Speaker,
			DurationMs:  max(0, -gap),
		})
	}
	return out
}

// EstimateBreathing lists gaps between 600ms and 1.5s as probable breaths.
// It scans the words itself rather than reusing the pause list, since the
// ranges overlap without one containing the other.
func EstimateBreathing(words []Word) *BreathingPattern {
	var (
		pauses []BreathingPause
		total  int64
	)
	for i := 0; i+1 < len(words); i++ {
		gap := words[i+1].StartMs - words[i].EndMs
		if gap < breathMinMs || gap > breathMaxMs {
			continue
		}
		pauses = append(pauses, BreathingPause{TimestampMs: words[i].EndMs, DurationMs: gap})
		total += gap
	}
	if len(pauses) == 0 {
		return nil
	}
	return &BreathingPattern{
		Estimated:     true,
		Count:         len(pauses),
		AvgDurationMs: int64(math.Round(float64(total) / float64(len(pauses)))),
		Pauses:        pauses,
	}
}
