package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/jwhyun/finbot/internal/session"
	"github.com/jwhyun/finbot/internal/users"
)

// State is the collection phase of a session.
type State string

const (
	StateCollecting      State = "collecting"
	StateAwaitingConfirm State = "awaiting_conflict_confirm"
	StateComplete        State = "complete"
)

// SessionProfile is the per-session slot-filling state kept in the session
// cache. Conflicts queue in FIFO order and surface one at a time.
type SessionProfile struct {
	SessionID        string            `json:"session_id"`
	State            State             `json:"state"`
	Fields           map[string]string `json:"fields"`
	LastAskedKey     string            `json:"last_asked_key,omitempty"`
	PendingConflicts []ConflictRecord  `json:"pending_conflicts,omitempty"`
}

// Result is the outcome of feeding one user message to the orchestrator.
// When Handled is false the collection phase was already complete and the
// message should go to the intent router instead; Fields then carries the
// collected profile for downstream tools.
type Result struct {
	Reply   string
	Handled bool
	Fields  map[string]string
}

const (
	msgConflictApplied  = "프로필이 성공적으로 업데이트되었습니다. 계속 진행할게요."
	msgConflictRejected = "기존 프로필 정보를 유지합니다. 계속 진행할게요."
	msgComplete         = "이제 금융상품을 추천해줄게요!"
)

// Orchestrator drives the slot-filling dialogue: one question per turn in
// fixed field order, conflict confirmation handshakes, and hand-off to the
// durable store once the profile is complete.
type Orchestrator struct {
	sessions *session.Store
	users    *users.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewOrchestrator creates a dialogue orchestrator. The users store may be
// nil; profiles then live only in the session cache.
func NewOrchestrator(sessions *session.Store, userStore *users.Store) *Orchestrator {
	return &Orchestrator{
		sessions: sessions,
		users:    userStore,
		locks:    make(map[string]*sync.Mutex),
	}
}

// sessionLock serializes turns per session so extract-then-save is atomic.
func (o *Orchestrator) sessionLock(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		o.locks[sessionID] = l
	}
	return l
}

// Turn processes one user message through the collection state machine.
func (o *Orchestrator) Turn(ctx context.Context, sessionID, username, text string) (*Result, error) {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sp := o.load(ctx, sessionID, username)

	if sp.State == StateComplete {
		return &Result{Handled: false, Fields: sp.Fields}, nil
	}

	if sp.State == StateAwaitingConfirm && len(sp.PendingConflicts) > 0 {
		return o.resolveConflict(ctx, sp, username, text)
	}

	return o.collect(ctx, sp, username, text)
}

// Fields returns the session's collected fields without consuming a turn.
func (o *Orchestrator) Fields(ctx context.Context, sessionID, username string) map[string]string {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()
	return o.load(ctx, sessionID, username).Fields
}

// Reset drops the session's collection state.
func (o *Orchestrator) Reset(sessionID string) error {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()
	return o.sessions.Delete(sessionKey(sessionID))
}

// load fetches the session profile, seeding from the durable store on first
// contact. A corrupt stored session resets to empty instead of failing.
func (o *Orchestrator) load(ctx context.Context, sessionID, username string) *SessionProfile {
	fresh := &SessionProfile{
		SessionID: sessionID,
		State:     StateCollecting,
		Fields:    make(map[string]string),
	}

	raw, err := o.sessions.Get(sessionKey(sessionID))
	if errors.Is(err, session.ErrNotFound) {
		o.prefetch(ctx, fresh, username)
		return fresh
	}
	if err != nil {
		log.Printf("profile: loading session %s: %v", sessionID, err)
		return fresh
	}

	var sp SessionProfile
	if err := json.Unmarshal(raw, &sp); err != nil || sp.Fields == nil {
		log.Printf("profile: corrupt session %s, resetting", sessionID)
		return fresh
	}
	sp.SessionID = sessionID
	if sp.State == "" {
		sp.State = StateCollecting
	}
	return &sp
}

// prefetch copies any durable profile into a fresh session so returning
// users are not re-asked what they already answered.
func (o *Orchestrator) prefetch(ctx context.Context, sp *SessionProfile, username string) {
	if o.users == nil || username == "" {
		return
	}
	p, err := o.users.GetByUsername(ctx, username)
	if errors.Is(err, users.ErrNotFound) {
		return
	}
	if err != nil {
		log.Printf("profile: prefetching %s: %v", username, err)
		return
	}
	for k, v := range p.Fields {
		sp.Fields[k] = v
	}
	if IsComplete(sp.Fields) {
		sp.State = StateComplete
	}
}

func (o *Orchestrator) save(sp *SessionProfile) error {
	raw, err := json.Marshal(sp)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", sp.SessionID, err)
	}
	return o.sessions.Set(sessionKey(sp.SessionID), raw)
}

// collect runs the normal extraction path of the COLLECTING state.
func (o *Orchestrator) collect(ctx context.Context, sp *SessionProfile, username, text string) (*Result, error) {
	extracted := Extract(text, sp.LastAskedKey)

	conflicts := DetectConflicts(sp.Fields, extracted)
	conflicted := make(map[string]bool, len(conflicts))
	for _, c := range conflicts {
		conflicted[c.Field] = true
	}
	for k, v := range extracted {
		if IsRequired(k) && !conflicted[k] {
			sp.Fields[k] = v
		}
	}

	if len(conflicts) > 0 {
		sp.PendingConflicts = append(sp.PendingConflicts, conflicts...)
		sp.State = StateAwaitingConfirm
		if err := o.save(sp); err != nil {
			return nil, err
		}
		return &Result{Reply: sp.PendingConflicts[0].Prompt(), Handled: true, Fields: sp.Fields}, nil
	}

	return o.advance(ctx, sp, username, "")
}

// resolveConflict handles a turn while a confirmation is pending. Anything
// other than a literal yes/no re-surfaces the same prompt.
func (o *Orchestrator) resolveConflict(ctx context.Context, sp *SessionProfile, username, text string) (*Result, error) {
	head := sp.PendingConflicts[0]

	switch strings.TrimSpace(text) {
	case "네":
		sp.Fields[head.Field] = head.Proposed
		sp.PendingConflicts = sp.PendingConflicts[1:]
		return o.afterResolution(ctx, sp, username, msgConflictApplied)
	case "아니오", "아니요":
		// The stored value stands and the field stays filled.
		sp.PendingConflicts = sp.PendingConflicts[1:]
		return o.afterResolution(ctx, sp, username, msgConflictRejected)
	default:
		return &Result{Reply: head.Prompt(), Handled: true, Fields: sp.Fields}, nil
	}
}

func (o *Orchestrator) afterResolution(ctx context.Context, sp *SessionProfile, username, note string) (*Result, error) {
	if len(sp.PendingConflicts) > 0 {
		if err := o.save(sp); err != nil {
			return nil, err
		}
		return &Result{
			Reply:   note + "\n" + sp.PendingConflicts[0].Prompt(),
			Handled: true,
			Fields:  sp.Fields,
		}, nil
	}
	sp.State = StateCollecting
	return o.advance(ctx, sp, username, note)
}

// advance asks the next missing field or completes the collection phase.
// prefix carries a resolution note to prepend to the reply.
func (o *Orchestrator) advance(ctx context.Context, sp *SessionProfile, username, prefix string) (*Result, error) {
	if next, missing := NextMissing(sp.Fields); missing {
		sp.LastAskedKey = next.Key
		if err := o.save(sp); err != nil {
			return nil, err
		}
		return &Result{Reply: joinLines(prefix, next.Question), Handled: true, Fields: sp.Fields}, nil
	}

	sp.State = StateComplete
	sp.LastAskedKey = ""
	sp.PendingConflicts = nil
	if err := o.save(sp); err != nil {
		return nil, err
	}

	if o.users != nil && username != "" {
		if err := o.users.UpsertProfile(ctx, username, sp.Fields); err != nil {
			log.Printf("profile: persisting profile for %s: %v", username, err)
		}
	}

	return &Result{Reply: joinLines(prefix, msgComplete), Handled: true, Fields: sp.Fields}, nil
}

func joinLines(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

func sessionKey(sessionID string) string {
	return "profile:" + sessionID
}
