package chat

import (
	"context"
	"time"
)

const (
	minChunkRunes      = 12
	chunksPerAnswer    = 80
	defaultStreamDelay = 18 * time.Millisecond
)

// ChunkSize is the number of runes revealed per streaming step.
func ChunkSize(length int) int {
	if n := length / chunksPerAnswer; n > minChunkRunes {
		return n
	}
	return minChunkRunes
}

// Prefixes splits text into the growing prefixes shown while an answer
// streams in. The last prefix is always the full text. Splits fall on rune
// boundaries.
func Prefixes(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	size := ChunkSize(len(runes))
	out := make([]string, 0, len(runes)/size+1)
	for idx := 0; idx < len(runes); {
		idx += size
		if idx > len(runes) {
			idx = len(runes)
		}
		out = append(out, string(runes[:idx]))
	}
	return out
}

// Stream emits each prefix of text, waiting delay between steps. It stops
// early when ctx is done or emit fails.
func Stream(ctx context.Context, text string, delay time.Duration, emit func(prefix string) error) error {
	prefixes := Prefixes(text)
	for i, prefix := range prefixes {
		if err := emit(prefix); err != nil {
			return err
		}
		if i == len(prefixes)-1 || delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}
