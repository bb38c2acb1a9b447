package usecase

import (
	"time"

	"rag/internal/adapter/cache"
)

// Exchange is one question-answer turn kept in session history.
type Exchange struct {
	Question string
	Answer   string
	Elapsed  time.Duration
}

// RetrievalSession ties a retriever and composer together for interactive
// use. Each session is independent; nothing is shared between sessions
// except the underlying providers.
type RetrievalSession struct {
	retriever *Retriever
	composer  *Composer
	topK      int
	cache     *cache.AnswerCache
	history   []Exchange
}

// NewRetrievalSession builds a session. The cache is optional.
func NewRetrievalSession(retriever *Retriever, composer *Composer, topK int, answers *cache.AnswerCache) *RetrievalSession {
	if topK <= 0 {
		topK = 3
	}
	return &RetrievalSession{
		retriever: retriever,
		composer:  composer,
		topK:      topK,
		cache:     answers,
	}
}

// Ask answers one question. Cached answers skip both the embedding call and
// the LLM. Retrieval errors surface as the unavailable sentinel rather than
// an error so interactive loops keep going.
func (s *RetrievalSession) Ask(question string) (string, time.Duration) {
	start := time.Now()

	if s.cache != nil {
		if answer, hit := s.cache.Get(question, s.topK); hit {
			elapsed := time.Since(start)
			s.history = append(s.history, Exchange{Question: question, Answer: answer, Elapsed: elapsed})
			return answer, elapsed
		}
	}

	matches, err := s.retriever.Retrieve(question, s.topK)
	var answer string
	if err != nil {
		answer = AnswerUnavailable
	} else {
		answer = s.composer.Compose(question, matches)
	}

	if s.cache != nil && answer != AnswerUnavailable {
		s.cache.Put(question, s.topK, answer)
	}

	elapsed := time.Since(start)
	s.history = append(s.history, Exchange{Question: question, Answer: answer, Elapsed: elapsed})
	return answer, elapsed
}

// History returns the exchanges so far, oldest first.
func (s *RetrievalSession) History() []Exchange {
	return s.history
}
