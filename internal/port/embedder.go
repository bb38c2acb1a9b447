package port

// Mode distinguishes embedding intents. Some providers produce measurably
// different vectors for retrieval queries than for indexed documents, so the
// intent has to survive down to the wire call.
type Mode string

const (
	ModeDocument Mode = "document"
	ModeQuery    Mode = "query"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns one vector per input text, preserving input order.
	Embed(texts []string, mode Mode) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
