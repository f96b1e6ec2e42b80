package analytics

import "math"

// FluencyInput carries the aggregate values the fluency score depends on.
type FluencyInput struct {
	Wpm             int
	SilenceRatio    float64
	FillerPerMinute float64
	PauseCount      int
	DurationMinutes float64
}

// FluencyScore combines pace, silence, filler rate and pause naturalness
// into a 0-100 score. Each component is clamped on its own before summing.
func FluencyScore(in FluencyInput) int {
	total := paceComponent(float64(in.Wpm)) +
		silenceComponent(in.SilenceRatio) +
		fillerComponent(in.FillerPerMinute) +
		pauseComponent(in)
	return int(math.Round(clamp(total, 0, 100)))
}

// paceComponent: 0-40, full between 120 and 160 wpm.
func paceComponent(wpm float64) float64 {
	switch {
	case wpm < 120:
		return clamp(wpm/120*40, 0, 40)
	case wpm > 160:
		return clamp(40-(wpm-160)/40, 0, 40)
	default:
		return 40
	}
}

// silenceComponent: 0-30, full between 10% and 25% silence.
func silenceComponent(ratio float64) float64 {
	switch {
	case ratio < 0.10:
		return clamp(ratio/0.10*30, 0, 30)
	case ratio > 0.25:
		return clamp(30-(ratio-0.25)*80, 0, 30)
	default:
		return 30
	}
}

// fillerComponent: 0-20, full at two fillers a minute or fewer.
func fillerComponent(perMinute float64) float64 {
	switch {
	case perMinute <= 2:
		return 20
	case perMinute <= 5:
		return clamp(20-(perMinute-2)*5, 0, 20)
	default:
		return clamp(5-(perMinute-5), 0, 20)
	}
}

// pauseComponent: 0-10, full between 3 and 8 pauses a minute.
func pauseComponent(in FluencyInput) float64 {
	minutes := in.DurationMinutes
	if minutes <= 0 {
		minutes = minDurationMinute
	}
	ppm := float64(in.PauseCount) / minutes
	switch {
	case ppm < 3:
		return clamp(ppm/3*10, 0, 10)
	case ppm > 8:
		return clamp(10-(ppm-8)*2, 0, 10)
	default:
		return 10
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
