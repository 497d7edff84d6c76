package trace

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitAppendsEvent(t *testing.T) {
	s := NewSink()
	s.Emit("export.begin", F("path", "/tmp/out.mov"))
	events := s.Events()
	assert.Len(t, events, 1)
	assert.Equal(t, "export.begin", events[0].Name)
	assert.Equal(t, "/tmp/out.mov", events[0].Fields["path"])
}

func TestConcurrentEmitIsSafe(t *testing.T) {
	s := NewSink()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Emit("render.video.progress", nil)
		}()
	}
	wg.Wait()
	assert.Len(t, s.Events(), 50)
}
