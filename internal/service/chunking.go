package service

import (
	"strings"
	"unicode/utf8"
)

// ChunkConfig controls how normalized document text is split for embedding.
type ChunkConfig struct {
	ChunkSize int
	Overlap   int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		ChunkSize: 1000,
		Overlap:   200,
	}
}

// ChunkText splits normalized text into an ordered sequence of chunks no
// longer than cfg.ChunkSize, favoring paragraph boundaries. Sizes count
// runes, not bytes. Every chunk after the first is prefixed with the
// trailing cfg.Overlap characters of its predecessor, separated by a
// newline, so consecutive chunks share context.
func ChunkText(text string, cfg ChunkConfig) []string {
	if cfg.ChunkSize <= 0 || cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		cfg = DefaultChunkConfig()
	}
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= cfg.ChunkSize {
		return []string{text}
	}

	chunks := make([]string, 0, 8)
	var buffer string
	bufLen := 0

	flush := func() {
		if buffer != "" {
			chunks = append(chunks, buffer)
			buffer = ""
			bufLen = 0
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		paraLen := utf8.RuneCountInString(para)

		if paraLen > cfg.ChunkSize {
			flush()
			chunks = append(chunks, sliceParagraph(para, cfg)...)
			continue
		}

		if buffer == "" {
			buffer = para
			bufLen = paraLen
			continue
		}
		if bufLen+2+paraLen > cfg.ChunkSize {
			flush()
			buffer = para
			bufLen = paraLen
			continue
		}
		buffer += "\n\n" + para
		bufLen += 2 + paraLen
	}
	flush()

	return applyOverlap(chunks, cfg.Overlap)
}

// sliceParagraph splits a single paragraph longer than the chunk size into
// overlapping windows, backtracking to the nearest space when a window
// boundary would fall mid-word. The next window starts no later than the
// cut, so text after a backtracked cut is never skipped.
func sliceParagraph(para string, cfg ChunkConfig) []string {
	var out []string
	runes := []rune(para)
	step := cfg.ChunkSize - cfg.Overlap
	start := 0
	for start < len(runes) {
		end := start + cfg.ChunkSize
		if end >= len(runes) {
			out = append(out, strings.TrimSpace(string(runes[start:])))
			break
		}

		cut := end
		if runes[end] != ' ' && runes[end-1] != ' ' {
			for i := end - 1; i > start; i-- {
				if runes[i] == ' ' {
					cut = i
					break
				}
			}
		}

		if piece := strings.TrimSpace(string(runes[start:cut])); piece != "" {
			out = append(out, piece)
		}

		next := start + step
		if cut < next {
			next = cut
		}
		start = next
	}
	return out
}

// applyOverlap prefixes every chunk after the first with the tail of its
// predecessor. Tails are taken from the chunks as produced, before any
// prefix was added, so non-overlapping content still concatenates back to
// the original paragraph sequence.
func applyOverlap(chunks []string, overlap int) []string {
	if len(chunks) <= 1 || overlap <= 0 {
		return chunks
	}
	out := make([]string, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		tail := chunks[i-1]
		if prev := []rune(tail); len(prev) > overlap {
			tail = string(prev[len(prev)-overlap:])
		}
		out[i] = tail + "\n" + chunks[i]
	}
	return out
}
