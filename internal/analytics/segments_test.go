package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_SingleWindow(t *testing.T) {
	tl := Segment(evenWords(10, 0, 500, 400), nil)

	require.Len(t, tl.Segments, 1)
	assert.Equal(t, PaceSegment{StartMs: 0, EndMs: 4900, WordCount: 10, Wpm: 122}, tl.Segments[0])
	assert.Nil(t, tl.Momentum)
	assert.Nil(t, tl.Rhythm)
	require.Len(t, tl.Peaks, 1)
}

func TestSegment_TwoWindows(t *testing.T) {
	words := append(evenWords(60, 0, 500, 400), evenWords(9, 30_000, 1000, 400)...)
	tl := Segment(words, nil)

	require.Len(t, tl.Segments, 2)
	assert.Equal(t, 120, tl.Segments[0].Wpm)
	assert.Equal(t, int64(30_000), tl.Segments[1].StartMs)
	assert.Equal(t, int64(38_400), tl.Segments[1].EndMs)
	assert.Equal(t, 9, tl.Segments[1].WordCount)
	assert.Equal(t, 64, tl.Segments[1].Wpm)

	require.NotNil(t, tl.Momentum)
	assert.Equal(t, 53, *tl.Momentum)
	require.NotNil(t, tl.Rhythm)
	assert.Equal(t, 28, *tl.Rhythm)

	require.Len(t, tl.Peaks, 2)
	assert.Equal(t, int64(0), tl.Peaks[0].StartMs)
	assert.Equal(t, 100.0, tl.Peaks[0].Score)
	assert.Equal(t, 62.0, tl.Peaks[1].Score)
}

func TestSegment_SkipsEmptyWindows(t *testing.T) {
	words := []Word{w("a", 0, 400), w("b", 65_000, 65_400)}
	tl := Segment(words, nil)

	require.Len(t, tl.Segments, 2)
	assert.Equal(t, int64(0), tl.Segments[0].StartMs)
	assert.Equal(t, 2, tl.Segments[0].Wpm)
	assert.Equal(t, int64(60_000), tl.Segments[1].StartMs)
	assert.Equal(t, 11, tl.Segments[1].Wpm)
	assert.Equal(t, 550, *tl.Momentum)
}

func TestSegment_CountsFillersPerWindow(t *testing.T) {
	words := []Word{w("um", 0, 400), w("uh", 1000, 1400), w("so", 31_000, 31_400), w("fine", 32_000, 32_400)}
	tl := Segment(words, DetectFillers(words))

	require.Len(t, tl.Segments, 2)
	assert.Equal(t, 2, tl.Segments[0].FillerCount)
	assert.Equal(t, 1, tl.Segments[1].FillerCount)
}

func TestSegment_ZeroLengthWordOnBoundary(t *testing.T) {
	words := []Word{w("a", 0, 400), w("b", 30_000, 30_000)}
	tl := Segment(words, nil)

	require.Len(t, tl.Segments, 2)
	assert.Equal(t, 1, tl.Segments[0].WordCount)
	assert.Equal(t, PaceSegment{StartMs: 30_000, EndMs: 30_000, WordCount: 1, Wpm: 100}, tl.Segments[1])
}

func TestSegment_SingleZeroLengthWord(t *testing.T) {
	tl := Segment([]Word{w("a", 5_000, 5_000)}, nil)

	require.Len(t, tl.Segments, 1)
	assert.Equal(t, 1, tl.Segments[0].WordCount)
	require.Len(t, tl.Peaks, 1)
	assert.Nil(t, tl.Momentum)
}

func TestSegment_Empty(t *testing.T) {
	assert.Equal(t, Timeline{}, Segment(nil, nil))
}

func TestMomentum_ZeroFirstWindow(t *testing.T) {
	got := momentum([]PaceSegment{{Wpm: 0}, {Wpm: 50}})
	assert.Equal(t, 100, *got)
}

func TestPeaks_TopThreeStable(t *testing.T) {
	segs := []PaceSegment{
		{StartMs: 0, Wpm: 300},                      // 0 + 50
		{StartMs: 30_000, Wpm: 140, FillerCount: 2}, // 50 + 30
		{StartMs: 60_000, Wpm: 100},                 // 30 + 50
		{StartMs: 90_000, Wpm: 140},                 // 50 + 50
	}
	got := peaks(segs)

	require.Len(t, got, 3)
	assert.Equal(t, int64(90_000), got[0].StartMs)
	assert.Equal(t, 100.0, got[0].Score)
	assert.Equal(t, int64(30_000), got[1].StartMs)
	assert.Equal(t, int64(60_000), got[2].StartMs)
	assert.Equal(t, 80.0, got[2].Score)
}
