package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"contractguard-web/internal/auditapi"
	"contractguard-web/internal/shared/metrics"
	"contractguard-web/internal/shared/telemetry"
)

const maxHistory = 200

// Asker sends a question about a job to the audit assistant.
type Asker interface {
	Chat(ctx context.Context, jobID, question string) (*auditapi.ChatResponse, error)
}

// Service relays questions to the assistant and keeps a conversation per
// operator and job.
type Service struct {
	API         Asker
	StreamDelay time.Duration

	mu            sync.Mutex
	conversations map[string][]Message
}

// NewService constructs a Service.
func NewService(api Asker) *Service {
	return &Service{
		API:           api,
		StreamDelay:   defaultStreamDelay,
		conversations: map[string][]Message{},
	}
}

func newMessage(role Role, content string) Message {
	return Message{ID: uuid.NewString(), Role: role, Content: content}
}

// History returns the conversation, opening with the greeting.
func (s *Service) History(owner, jobID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.conversationLocked(owner, jobID)...)
}

// Reset drops the conversation so the next History starts over.
func (s *Service) Reset(owner, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, conversationKey(owner, jobID))
}

// Ask relays question and records both sides of the exchange. Upstream
// failures never surface as errors; the answer carries the fallback text
// instead.
func (s *Service) Ask(ctx context.Context, owner, jobID, question string) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	if strings.TrimSpace(jobID) == "" {
		return Reply{}, fmt.Errorf("%w: job is required", ErrInvalidInput)
	}
	metrics.IncChatRequest()

	reply := Reply{
		Question: newMessage(RoleUser, question),
		Answer:   newMessage(RoleAssistant, ""),
	}
	resp, err := s.API.Chat(ctx, jobID, question)
	switch {
	case err != nil:
		metrics.IncChatFailed()
		telemetry.Warn("chat.relay_failed", map[string]any{"job_id": jobID, "error": err.Error()})
		reply.Answer.Content = UnreachableText
		reply.Failed = true
	case resp.Answer == nil:
		reply.Answer.Content = MissingAnswer
		reply.Answer.Sources = resp.Sources
	default:
		reply.Answer.Content = *resp.Answer
		reply.Answer.Sources = resp.Sources
	}

	s.mu.Lock()
	key := conversationKey(owner, jobID)
	msgs := append(s.conversationLocked(owner, jobID), reply.Question, reply.Answer)
	if len(msgs) > maxHistory {
		msgs = append([]Message{msgs[0]}, msgs[len(msgs)-maxHistory+1:]...)
	}
	s.conversations[key] = msgs
	s.mu.Unlock()
	return reply, nil
}

func (s *Service) conversationLocked(owner, jobID string) []Message {
	if s.conversations == nil {
		s.conversations = map[string][]Message{}
	}
	key := conversationKey(owner, jobID)
	msgs, ok := s.conversations[key]
	if !ok {
		msgs = []Message{newMessage(RoleAssistant, Greeting)}
		s.conversations[key] = msgs
	}
	return msgs
}

func conversationKey(owner, jobID string) string {
	return owner + "|" + strings.TrimSpace(jobID)
}
