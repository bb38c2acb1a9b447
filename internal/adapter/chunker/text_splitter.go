package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"rag/internal/domain"
)

// separators ordered from most to least preferred cut point: paragraph break,
// line break, sentence end, word boundary. A hard character cut is the
// fallback when none of these lands in range.
var separators = []string{"\n\n", "\n", ". ", " "}

// Splitter cuts document text into overlapping chunks of at most size bytes
// (the final chunk of a document may extend to size+overlap). Adjacent chunks
// share overlap bytes so context spanning a cut survives in at least one
// chunk.
type Splitter struct {
	size    int
	overlap int
}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split produces the chunk sequence for one document. Chunks carry byte
// offsets into the original text; concatenating chunk texts with the overlap
// regions removed reconstructs the document exactly.
func (s *Splitter) Split(doc domain.Document) ([]domain.Chunk, error) {
	text := doc.Text
	if len(text) == 0 {
		return nil, fmt.Errorf("document %s is empty", doc.ID)
	}

	type span struct{ start, end int }
	var spans []span

	start := 0
	for start < len(text) {
		// The final chunk may run up to size+overlap bytes: a shorter tail
		// would consist mostly of text already covered by the previous
		// chunk's overlap region.
		if len(text)-start <= s.size+s.overlap {
			spans = append(spans, span{start, len(text)})
			break
		}
		end := start + s.size
		end = s.cut(text, start, end)
		spans = append(spans, span{start, end})

		next := end - s.overlap
		if next <= start {
			next = start + 1 // always make progress
		}
		start = next
	}

	chunks := make([]domain.Chunk, len(spans))
	for i, sp := range spans {
		chunks[i] = domain.Chunk{
			ID:          fmt.Sprintf("%s_%d", doc.ID, i),
			DocID:       doc.ID,
			Ordinal:     i,
			TotalChunks: len(spans),
			Start:       sp.start,
			End:         sp.end,
			Text:        text[sp.start:sp.end],
		}
	}
	return chunks, nil
}

// cut picks the boundary to end a chunk at. The search window is the second
// half of the chunk so boundary snapping never produces tiny chunks. Within
// the window, a higher-priority separator always wins; among occurrences of
// the same separator the last one wins. The cut lands just after the
// separator, keeping it with the left chunk.
func (s *Splitter) cut(text string, start, end int) int {
	floor := start + s.size/2
	window := text[floor:end]

	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx >= 0 {
			return floor + idx + len(sep)
		}
	}

	// Hard cut, backed off to a rune boundary.
	for end > floor && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}
