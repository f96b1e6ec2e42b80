package logging

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_KeepsLastLines(t *testing.T) {
	buf := NewBuffer(3)
	for i := 0; i < 5; i++ {
		fmt.Fprintf(buf, "line %d\n", i)
	}
	assert.Equal(t, []string{"line 2", "line 3", "line 4"}, buf.Lines())
}

func TestBuffer_LinesIsACopy(t *testing.T) {
	buf := NewBuffer(10)
	fmt.Fprint(buf, "hello")
	lines := buf.Lines()
	lines[0] = "changed"
	assert.Equal(t, []string{"hello"}, buf.Lines())
}

func TestBuffer_ConcurrentWrites(t *testing.T) {
	buf := NewBuffer(50)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				fmt.Fprintf(buf, "%d-%d", i, j)
			}
		}(i)
	}
	wg.Wait()
	assert.Len(t, buf.Lines(), 50)
}

func TestSetup_RoutesGlobalLoggerToBuffer(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	buf := NewBuffer(10)
	w := Setup("warn", buf)
	require.NotNil(t, w)

	log.Info().Msg("hidden")
	log.Warn().Str("job_id", "abc").Msg("visible")

	lines := buf.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "visible")
	assert.Contains(t, lines[0], "job_id=abc")
}

func TestSetup_UnknownLevelFallsBackToInfo(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prevLevel) })

	Setup("chatty", NewBuffer(1))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
