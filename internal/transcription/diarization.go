package transcription

import (
	"time"

	"github.com/codebuildervaibhav/speech-insights/internal/analytics"
)

// AssignSpeakers is a minimal heuristic diarizer for providers that return
// no speaker labels: it alternates between two speakers whenever the silence
// between words exceeds gap. Words that already carry labels are returned
// unchanged. The input slice is not modified.
func AssignSpeakers(words []analytics.Word, gap time.Duration) []analytics.Word {
	out := make([]analytics.Word, len(words))
	copy(out, words)

	for _, w := range words {
		if w.Speaker != "" {
			return out
		}
	}

	speakers := [2]string{"Speaker 1", "Speaker 2"}
	current := 0
	gapMs := gap.Milliseconds()
	for i := range out {
		if i > 0 && out[i].StartMs-out[i-1].EndMs > gapMs {
			current = 1 - current
		}
		out[i].Speaker = speakers[current]
	}
	return out
}
