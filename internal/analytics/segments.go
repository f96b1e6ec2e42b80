package analytics

import (
	"math"
	"sort"
)

const (
	// SegmentWidthMs is the width of a pace timeline window.
	SegmentWidthMs = 30_000

	maxPeakSegments = 3
)

// Timeline is the output of the temporal segmenter. Momentum and Rhythm are
// nil unless there are at least two windows.
type Timeline struct {
	Segments []PaceSegment
	Momentum *int
	Rhythm   *int
	Peaks    []PeakSegment
}

// Segment buckets words into fixed 30 second windows starting at the first
// word. A word belongs to the window holding its start. Windows without
// words are skipped, and windows are walked until every word is placed.
func Segment(words []Word, fillers []FillerOccurrence) Timeline {
	if len(words) == 0 {
		return Timeline{}
	}

	origin := words[0].StartMs
	last := words[len(words)-1].EndMs

	var segs []PaceSegment
	next := 0
	for start := origin; next < len(words); start += SegmentWidthMs {
		end := start + SegmentWidthMs
		count := 0
		for next < len(words) && words[next].StartMs < end {
			if words[next].StartMs >= start {
				count++
			}
			next++
		}
		if count == 0 {
			continue
		}
		spanEnd := min(end, last)
		segs = append(segs, PaceSegment{
			StartMs:     start,
			EndMs:       spanEnd,
			WordCount:   count,
			Wpm:         int(math.Round(float64(count) / durationMinutes(spanEnd-start))),
			FillerCount: countFillers(fillers, start, end),
		})
	}

	tl := Timeline{Segments: segs}
	if len(segs) >= 2 {
		tl.Momentum = momentum(segs)
		tl.Rhythm = rhythm(segs)
	}
	tl.Peaks = peaks(segs)
	return tl
}

func countFillers(fillers []FillerOccurrence, start, end int64) int {
	n := 0
	for _, f := range fillers {
		if f.StartMs >= start && f.StartMs < end {
			n++
		}
	}
	return n
}

// momentum is the last window's pace relative to the first, as a percentage.
func momentum(segs []PaceSegment) *int {
	first := segs[0].Wpm
	if first == 0 {
		return intPtr(100)
	}
	lastWpm := segs[len(segs)-1].Wpm
	return intPtr(int(math.Round(float64(lastWpm) / float64(first) * 100)))
}

// rhythm is the population standard deviation of the window paces.
func rhythm(segs []PaceSegment) *int {
	var mean float64
	for _, s := range segs {
		mean += float64(s.Wpm)
	}
	mean /= float64(len(segs))

	var variance float64
	for _, s := range segs {
		d := float64(s.Wpm) - mean
		variance += d * d
	}
	variance /= float64(len(segs))
	return intPtr(int(math.Round(math.Sqrt(variance))))
}

// peaks ranks windows by pace closeness to 140 wpm and filler scarcity.
func peaks(segs []PaceSegment) []PeakSegment {
	if len(segs) == 0 {
		return nil
	}
	ranked := make([]PeakSegment, len(segs))
	for i, s := range segs {
		ranked[i] = PeakSegment{PaceSegment: s, Score: peakScore(s)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > maxPeakSegments {
		ranked = ranked[:maxPeakSegments]
	}
	for i := range ranked {
		ranked[i].Score = roundTo(ranked[i].Score, 1)
	}
	return ranked
}

func peakScore(s PaceSegment) float64 {
	wpmScore := 50.0
	if s.Wpm < 120 || s.Wpm > 160 {
		wpmScore = math.Max(0, 50-math.Abs(float64(s.Wpm)-140)/2)
	}
	fillerScore := math.Max(0, 50-float64(s.FillerCount)*10)
	return wpmScore + fillerScore
}
