package usecase

import (
	_ "embed"
	"strings"
	"text/template"

	"rag/internal/domain"
	"rag/internal/port"
)

// Sentinel answers. Compose never returns an error: provider trouble and
// empty retrievals map onto these so callers always have something to show.
const (
	AnswerNotFound    = "No relevant information found in the indexed documents."
	AnswerUnavailable = "The answer service is currently unavailable. Please try again."
)

//go:embed templates/answer_prompt.txt
var answerPromptText string

var answerPrompt = template.Must(template.New("answer").Parse(answerPromptText))

// Composer turns retrieval matches into a grounded answer via the LLM.
type Composer struct {
	llm          port.LLM
	previewBytes int
}

func NewComposer(llm port.LLM, previewBytes int) *Composer {
	if previewBytes <= 0 {
		previewBytes = 400
	}
	return &Composer{llm: llm, previewBytes: previewBytes}
}

type promptContext struct {
	Filename   string
	ChunkIndex string
	Score      float64
	Text       string
}

type promptData struct {
	Question string
	Contexts []promptContext
}

// Compose builds the prompt from the matches and asks the LLM. With no
// matches the LLM is never called.
func (c *Composer) Compose(question string, matches []domain.RetrievalMatch) string {
	if len(matches) == 0 {
		return AnswerNotFound
	}

	data := promptData{Question: question}
	for _, m := range matches {
		text := m.Metadata["text"]
		if len(text) > c.previewBytes {
			text = text[:c.previewBytes]
		}
		data.Contexts = append(data.Contexts, promptContext{
			Filename:   m.Metadata["filename"],
			ChunkIndex: m.Metadata["chunk_index"],
			Score:      m.Score,
			Text:       text,
		})
	}

	var sb strings.Builder
	if err := answerPrompt.Execute(&sb, data); err != nil {
		return AnswerUnavailable
	}

	answer, err := c.llm.Generate(sb.String())
	if err != nil {
		return AnswerUnavailable
	}
	return answer
}
