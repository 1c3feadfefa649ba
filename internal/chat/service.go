package chat

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jwhyun/finbot/internal/agent"
	"github.com/jwhyun/finbot/internal/profile"
	"github.com/jwhyun/finbot/internal/tasks"
)

const msgTurnFailed = "죄송합니다, 요청을 처리하는 중 문제가 발생했습니다. 잠시 후 다시 시도해주세요."

// quickReplies short-circuit small acknowledgement messages once the
// collection phase is over. During collection these tokens stay with the
// dialogue orchestrator, where 네/아니오 resolve conflicts.
var quickReplies = map[string]string{
	"안녕":  "안녕하세요! 무엇을 도와드릴까요?",
	"네":   "네, 말씀해 주세요.",
	"아니오": "알겠습니다. 다른 도움이 필요하시면 말씀해 주세요.",
}

// TurnRequest is one inbound user message.
type TurnRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Username  string `json:"username"`
	Message   string `json:"message"`
}

// TurnResponse is the answer to one turn.
type TurnResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// Service runs complete chat turns: slot-filling first, then intent routing
// once the profile is collected.
type Service struct {
	dialogue *profile.Orchestrator
	router   *agent.Router
	messages *MessageStore
	queue    *tasks.Queue
	sync     bool
}

// NewService wires the turn service. With sync set, submitted turns run
// inline instead of through the worker pool.
func NewService(dialogue *profile.Orchestrator, router *agent.Router, messages *MessageStore, queue *tasks.Queue, sync bool) *Service {
	return &Service{dialogue: dialogue, router: router, messages: messages, queue: queue, sync: sync}
}

// Turn processes one message synchronously.
func (s *Service) Turn(ctx context.Context, req TurnRequest) TurnResponse {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.saveMessage(ctx, sessionID, req.Username, "user", req.Message)

	reply := s.answer(ctx, sessionID, req.Username, req.Message)

	s.saveMessage(ctx, sessionID, req.Username, "assistant", reply)
	return TurnResponse{SessionID: sessionID, Response: reply}
}

// Submit offloads a turn to the task queue, returning the task handle and
// the session id (minted when the request carried none).
func (s *Service) Submit(ctx context.Context, req TurnRequest) (taskID, sessionID string, err error) {
	sessionID = req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
		req.SessionID = sessionID
	}

	fn := func(taskCtx context.Context) (string, error) {
		resp := s.Turn(taskCtx, req)
		return resp.Response, nil
	}
	if s.sync {
		taskID, err = s.queue.RunSync(ctx, sessionID, fn)
	} else {
		taskID, err = s.queue.Enqueue(ctx, sessionID, fn)
	}
	return taskID, sessionID, err
}

func (s *Service) answer(ctx context.Context, sessionID, username, message string) string {
	res, err := s.dialogue.Turn(ctx, sessionID, username, message)
	if err != nil {
		log.Printf("chat: dialogue turn for %s: %v", sessionID, err)
		return msgTurnFailed
	}
	if res.Handled {
		return res.Reply
	}

	if quick, ok := quickReplies[strings.TrimSpace(message)]; ok {
		return quick
	}

	return s.router.Route(ctx, message, res.Fields)
}

func (s *Service) saveMessage(ctx context.Context, sessionID, username, role, text string) {
	if s.messages == nil {
		return
	}
	if username == "" {
		username = "anonymous"
	}
	err := s.messages.Save(ctx, Message{
		SessionID: sessionID,
		Username:  username,
		Role:      role,
		Message:   text,
	})
	if err != nil {
		log.Printf("chat: saving %s message for %s: %v", role, sessionID, err)
	}
}
