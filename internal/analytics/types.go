// Package analytics turns a word-level transcript into delivery metrics:
// speaking pace, pause structure, filler usage, fluency and clarity scores,
// pace segmentation and anomaly detection.
//
// Every function in this package is pure. Inputs are never modified and no
// state is shared between calls, so Compute may be called from any number of
// goroutines at once.
//
// Words are expected in timeline order (non-decreasing StartMs). The engine
// does not re-sort; use CheckOrder at the edge of the system to reject
// out-of-order input.
package analytics

// Word is a single recognised token as supplied by a speech-to-text provider.
type Word struct {
	StartMs    int64    `json:"start"`
	EndMs      int64    `json:"end"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
	Speaker    string   `json:"speaker,omitempty"` // empty means unlabeled
}

// DeliveryMetrics is the bundle produced by Compute.
//
// Optional values are pointers and optional collections are nil when they do
// not apply. A collection is never present but empty.
type DeliveryMetrics struct {
	WordCount          int     `json:"wordCount"`
	TotalDurationMs    int64   `json:"totalDurationMs"`
	OverallWpm         int     `json:"overallWpm"`
	SilenceRatio       float64 `json:"silenceRatio"`
	TotalSilenceMs     int64   `json:"totalSilenceMs"`
	PauseCount         int     `json:"pauseCount"`
	AvgPauseDurationMs int64   `json:"avgPauseDurationMs"`
	FillerCount        int     `json:"fillerCount"`
	FillerPerMinute    float64 `json:"fillerPerMinute"`
	FluencyScore       int     `json:"fluencyScore"`

	ConfidenceScore *int `json:"confidenceScore,omitempty"`
	MomentumScore   *int `json:"momentumScore,omitempty"`
	ClarityScore    *int `json:"clarityScore,omitempty"`
	RhythmVariation *int `json:"rhythmVariation,omitempty"`

	TalkTimeBySpeakerMs map[string]int64 `json:"talkTimeBySpeakerMs"`

	FillerWords          []FillerOccurrence    `json:"fillerWords,omitempty"`
	LowConfidenceWords   []LowConfidenceWord   `json:"lowConfidenceWords,omitempty"`
	PaceTimeline         []PaceSegment         `json:"paceTimeline,omitempty"`
	PeakSegments         []PeakSegment         `json:"peakSegments,omitempty"`
	FillerHotspots       []FillerHotspot       `json:"fillerHotspots,omitempty"`
	CriticalMoments      []CriticalMoment      `json:"criticalMoments,omitempty"`
	SpeakerInterruptions []SpeakerInterruption `json:"speakerInterruptions,omitempty"`

	BreathingPattern *BreathingPattern `json:"breathingPattern,omitempty"`
	LongestPause     *LongestPause     `json:"longestPause,omitempty"`
	SentenceStats    *SentenceStats    `json:"sentenceStats,omitempty"`
}

// FillerOccurrence is one matched filler token or phrase.
type FillerOccurrence struct {
	Word    string `json:"word"`
	StartMs int64  `json:"timestampMs"`
	EndMs   int64  `json:"endMs"`
	Index   int    `json:"-"` // position of the (first) matched word
}

// LowConfidenceWord is a word the provider was unsure about.
type LowConfidenceWord struct {
	Word        string  `json:"word"`
	Confidence  float64 `json:"confidence"`
	TimestampMs int64   `json:"timestampMs"`
}

// PaceSegment is one fixed-width window of the pace timeline.
type PaceSegment struct {
	StartMs     int64 `json:"startMs"`
	EndMs       int64 `json:"endMs"`
	WordCount   int   `json:"wordCount"`
	Wpm         int   `json:"wpm"`
	FillerCount int   `json:"fillerCount"`
}

// PeakSegment is a pace window ranked by delivery quality.
type PeakSegment struct {
	PaceSegment
	Score float64 `json:"score"`
}

// FillerHotspot is a temporal cluster of filler words.
type FillerHotspot struct {
	StartMs int64    `json:"startMs"`
	EndMs   int64    `json:"endMs"`
	Fillers []string `json:"fillers"`
	Count   int      `json:"count"`
}

// LongestPause is the largest counted pause in the transcript.
type LongestPause struct {
	DurationMs  int64  `json:"durationMs"`
	TimestampMs int64  `json:"timestampMs"`
	WordBefore  string `json:"wordBefore"`
	WordAfter   string `json:"wordAfter"`
}

// Severity grades a critical moment.
type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// MomentKind names what triggered a critical moment.
type MomentKind string

const (
	MomentFillerCluster MomentKind = "filler_cluster"
	MomentLongPause     MomentKind = "long_pause"
	MomentLowConfidence MomentKind = "low_confidence"
)

// CriticalMoment is a flagged anomalous interval.
type CriticalMoment struct {
	Kind        MomentKind `json:"type"`
	Severity    Severity   `json:"severity"`
	TimestampMs int64      `json:"timestampMs"`
	DurationMs  int64      `json:"durationMs"`
	Description string     `json:"description"`
}

// SpeakerInterruption records a speaker change with little or no gap.
type SpeakerInterruption struct {
	TimestampMs int64  `json:"timestampMs"`
	FromSpeaker string `json:"fromSpeaker"`
	ToSpeaker   string `json:"toSpeaker"`
	DurationMs  int64  `json:"durationMs"`
}

// BreathingPause is a gap that probably holds a breath.
type BreathingPause struct {
	TimestampMs int64 `json:"timestampMs"`
	DurationMs  int64 `json:"durationMs"`
}

// BreathingPattern is a heuristic estimate; Estimated is always true.
type BreathingPattern struct {
	Estimated     bool             `json:"estimated"`
	Count         int              `json:"count"`
	AvgDurationMs int64            `json:"avgDurationMs"`
	Pauses        []BreathingPause `json:"pauses"`
}

// SentenceStats describes sentence lengths of the transcript text.
type SentenceStats struct {
	Count      int `json:"count"`
	AvgWords   int `json:"avgWords"`
	MaxWords   int `json:"maxWords"`
	MinWords   int `json:"minWords"`
	RunOnCount int `json:"runOnCount"`
}
