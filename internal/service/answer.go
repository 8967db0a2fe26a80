package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/docvault-io/docvault/internal/domain"
)

// ChatClient defines the interface for the generative completion call.
type ChatClient interface {
	CompleteChat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Retriever is the slice of RetrievalService the answering layer consumes.
type Retriever interface {
	Retrieve(ctx context.Context, query, documentID string, topK int) []string
}

const (
	// Replies used when generation cannot proceed. Retrieval and
	// completion failures degrade to these, never to an error.
	noContextReply   = "I don't have enough information to answer your question."
	thinContextReply = "I couldn't find useful information in the documents to answer your question."
	apologyReply     = "Sorry, something went wrong while generating the answer. Please try again."

	// Chunks shorter than this after trimming carry no usable context.
	minUsefulChunkChars = 10
)

var intentPrompts = map[domain.QuestionIntent]string{
	domain.IntentSummary:        "You are an assistant that writes clear, concise summaries. Answer in a structured, easy-to-follow form.",
	domain.IntentComparison:     "You are an assistant specialized in comparative analysis. Point out similarities and differences clearly and in a structured form.",
	domain.IntentClassification: "You are an assistant specialized in classification and categorization. Organize the information into clear, specific themes.",
	domain.IntentGeneral:        "You are an assistant specialized in document analysis. Answer clearly, precisely, and only from the provided context.",
}

// AnswerConfig bounds the assembled context handed to the model.
type AnswerConfig struct {
	MaxContextChars int
	// DumpLimit caps how many chunks whole-document features pull.
	DumpLimit int
}

// DefaultAnswerConfig provides the default answering tuning.
func DefaultAnswerConfig() AnswerConfig {
	return AnswerConfig{
		MaxContextChars: 8000,
		DumpLimit:       10,
	}
}

// AnswerOutput is the result of a generation call.
type AnswerOutput struct {
	Answer    string
	Intent    domain.QuestionIntent
	Truncated bool
}

// AnswerService assembles retrieved context and calls the completion
// model. Completion failures surface as a polite apology, not an error.
type AnswerService struct {
	retriever Retriever
	chat      ChatClient
	cfg       AnswerConfig
}

// NewAnswerService creates an AnswerService with default tuning.
func NewAnswerService(retriever Retriever, chat ChatClient) *AnswerService {
	return NewAnswerServiceWithConfig(retriever, chat, DefaultAnswerConfig())
}

func NewAnswerServiceWithConfig(retriever Retriever, chat ChatClient, cfg AnswerConfig) *AnswerService {
	def := DefaultAnswerConfig()
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = def.MaxContextChars
	}
	if cfg.DumpLimit <= 0 {
		cfg.DumpLimit = def.DumpLimit
	}
	return &AnswerService{
		retriever: retriever,
		chat:      chat,
		cfg:       cfg,
	}
}

// Ask answers a free-text question, optionally restricted to one document.
func (s *AnswerService) Ask(ctx context.Context, question, documentID string) (*AnswerOutput, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuestion
	}

	chunks := s.retriever.Retrieve(ctx, question, documentID, 0)
	return s.generate(ctx, question, chunks, true), nil
}

// Summarize produces a whole-document summary from the document's chunks
// in natural order.
func (s *AnswerService) Summarize(ctx context.Context, documentID string) (*AnswerOutput, error) {
	chunks, err := s.documentChunks(ctx, documentID)
	if err != nil {
		return nil, err
	}
	question := "Provide a summary of the following document."
	return s.generate(ctx, question, []string{strings.Join(chunks, " ")}, true), nil
}

// Compare contrasts two documents chunk dumps against each other.
func (s *AnswerService) Compare(ctx context.Context, documentA, documentB string) (*AnswerOutput, error) {
	chunksA, err := s.documentChunks(ctx, documentA)
	if err != nil {
		return nil, err
	}
	chunksB, err := s.documentChunks(ctx, documentB)
	if err != nil {
		return nil, err
	}

	question := fmt.Sprintf(
		"Document 1 (%s):\n%s\n\nDocument 2 (%s):\n%s\n\nCompare both documents, highlighting differences and similarities.",
		documentA, strings.Join(chunksA, " "),
		documentB, strings.Join(chunksB, " "),
	)
	out := s.generate(ctx, question, nil, false)
	out.Intent = domain.IntentComparison
	return out, nil
}

// Classify labels each chunk of a document with a main and secondary topic.
func (s *AnswerService) Classify(ctx context.Context, documentID string) ([]string, error) {
	chunks, err := s.documentChunks(ctx, documentID)
	if err != nil {
		return nil, err
	}

	question := "Classify the following text into one main topic and one secondary topic."
	topics := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		out := s.generate(ctx, question, []string{chunk}, true)
		topics = append(topics, out.Answer)
	}
	return topics, nil
}

func (s *AnswerService) documentChunks(ctx context.Context, documentID string) ([]string, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, domain.ErrEmptyDocumentID
	}
	chunks := s.retriever.Retrieve(ctx, "", documentID, s.cfg.DumpLimit)
	if len(chunks) == 0 {
		return nil, domain.ErrDocumentNotFound
	}
	return chunks, nil
}

// generate assembles the context, selects a system instruction from the
// question's intent, and calls the model. When requireContext is false
// the caller has already folded the material into the question itself.
func (s *AnswerService) generate(ctx context.Context, question string, chunks []string, requireContext bool) *AnswerOutput {
	intent := domain.DetectQuestionIntent(question)
	out := &AnswerOutput{Intent: intent}

	valid := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if utf8.RuneCountInString(strings.TrimSpace(chunk)) > minUsefulChunkChars {
			valid = append(valid, chunk)
		}
	}
	if requireContext {
		if len(chunks) == 0 {
			out.Answer = noContextReply
			return out
		}
		if len(valid) == 0 {
			out.Answer = thinContextReply
			return out
		}
	}

	contextText := strings.Join(valid, "\n")
	if runes := []rune(contextText); len(runes) > s.cfg.MaxContextChars {
		contextText = string(runes[:s.cfg.MaxContextChars]) + "..."
		out.Truncated = true
		log.Printf("answer: context truncated to %d characters", s.cfg.MaxContextChars)
	}

	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer clearly and in a structured form:", contextText, question)

	answer, err := s.chat.CompleteChat(ctx, intentPrompts[intent], userPrompt)
	if err != nil {
		log.Printf("answer: completion failed: %v", err)
		out.Answer = apologyReply
		return out
	}
	out.Answer = answer
	return out
}
