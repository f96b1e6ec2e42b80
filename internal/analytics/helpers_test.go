package analytics

// evenWords returns n words starting every step ms, each lasting length ms.
func evenWords(n int, startMs, step, length int64) []Word {
	words := make([]Word, n)
	for i := range words {
		s := startMs + int64(i)*step
		words[i] = Word{StartMs: s, EndMs: s + length, Text: "word"}
	}
	return words
}

func conf(v float64) *float64 { return &v }

func w(text string, start, end int64) Word {
	return Word{StartMs: start, EndMs: end, Text: text}
}
