package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codebuildervaibhav/speech-insights/internal/analytics"
	"github.com/codebuildervaibhav/speech-insights/internal/types"
)

// WhisperTranscriber wraps Python's OpenAI Whisper for transcription
type WhisperTranscriber struct {
	modelName string
	language  string
	tempDir   string
	threads   int
	mu        sync.Mutex // whisper loads the model per call; run one at a time
}

// NewWhisperTranscriber creates a new transcriber using Python Whisper.
// model is a whisper model name; when empty it is derived from modelPath
// (e.g. "ggml-small.bin" -> "small").
func NewWhisperTranscriber(model, modelPath, language, tempDir string, threads int) *WhisperTranscriber {
	if model == "" {
		model = modelFromPath(modelPath)
	}

	log.Info().
		Str("model", model).
		Str("language", language).
		Msg("Whisper will be called via python -m whisper; availability is checked on first transcription")

	return &WhisperTranscriber{
		modelName: model,
		language:  language,
		tempDir:   tempDir,
		threads:   threads,
	}
}

func modelFromPath(modelPath string) string {
	for _, name := range []string{"tiny", "base", "small", "medium", "large"} {
		if strings.Contains(modelPath, name) {
			return name
		}
	}
	return "small"
}

// Transcribe processes an audio file and returns the transcript with
// word-level timestamps
func (wt *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (*types.TranscriptionResult, error) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	log.Info().Str("path", audioPath).Msg("Transcribing with Python Whisper")

	outDir := filepath.Join(wt.tempDir, "whisper_"+uuid.New().String())
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	absAudioPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	args := []string{"-m", "whisper",
		absAudioPath,
		"--model", wt.modelName,
		"--output_dir", outDir,
		"--output_format", "json",
		"--word_timestamps", "True",
		"--fp16", "False", // CPU compatibility
	}
	if wt.language != "" {
		args = append(args, "--language", wt.language)
	}
	if wt.threads > 0 {
		args = append(args, "--threads", fmt.Sprint(wt.threads))
	}

	output, err := exec.CommandContext(ctx, "python", args...).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w\nOutput: %s", err, string(output))
	}
	log.Debug().Str("output", string(output)).Msg("Whisper finished")

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonData, err := os.ReadFile(filepath.Join(outDir, baseName+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read whisper output: %w", err)
	}

	result, err := ParseWhisperJSON(jsonData)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("segments", len(result.Segments)).
		Int("words", len(result.Words)).
		Float64("duration_s", result.Duration).
		Msg("Transcription completed")
	return result, nil
}

// ParseWhisperJSON converts Whisper's JSON output into a transcription
// result with segments and per-word timing.
func ParseWhisperJSON(data []byte) (*types.TranscriptionResult, error) {
	var out WhisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse whisper JSON: %w", err)
	}

	segments := make([]types.Segment, len(out.Segments))
	var words []analytics.Word
	for i, seg := range out.Segments {
		segments[i] = types.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		}
		for _, ww := range seg.Words {
			// "Um," -> "Um"; the segment text keeps the punctuation
			text := strings.TrimFunc(strings.TrimSpace(ww.Word), unicode.IsPunct)
			if text == "" {
				continue
			}
			word := analytics.Word{
				StartMs: secondsToMs(ww.Start),
				EndMs:   secondsToMs(ww.End),
				Text:    text,
			}
			if ww.Probability != nil {
				p := *ww.Probability
				word.Confidence = &p
			}
			if word.EndMs < word.StartMs {
				word.EndMs = word.StartMs
			}
			words = append(words, word)
		}
	}

	// last segment end time
	var duration float64
	if len(segments) > 0 {
		duration = segments[len(segments)-1].End
	}

	return &types.TranscriptionResult{
		Text:     strings.TrimSpace(out.Text),
		Language: out.Language,
		Duration: duration,
		Segments: segments,
		Words:    words,
	}, nil
}

func secondsToMs(s float64) int64 {
	return int64(math.Round(s * 1000))
}

// WhisperOutput matches Python Whisper's JSON output format
type WhisperOutput struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []WhisperSegment `json:"segments"`
}

// WhisperSegment represents a timestamped segment from Whisper
type WhisperSegment struct {
	ID    int           `json:"id"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Text  string        `json:"text"`
	Words []WhisperWord `json:"words"`
}

// WhisperWord is a word emitted with --word_timestamps
type WhisperWord struct {
	Word        string   `json:"word"`
	Start       float64  `json:"start"`
	End         float64  `json:"end"`
	Probability *float64 `json:"probability"`
}
