package usecases

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/usecases/canvas"
	"github.com/checkmarble/form-designer/usecases/designer"
	"github.com/checkmarble/form-designer/utils"
)

const DefaultMaxOpenSessions = 1000

type sessionKey struct {
	userId models.UserId
	formId string
}

// openSession is a designer session with the canvas gestures in progress on it.
type openSession struct {
	session *designer.DesignerSession
	canvas  *canvas.InteractionController
}

// SessionRegistry keeps the most recently used designer sessions in memory, one per user and form. An evicted
// session flushes its pending draft, so it can be reopened from the draft later.
type SessionRegistry struct {
	// mu serializes the opening of sessions, so that a form is never loaded twice for the same user.
	mu       sync.Mutex
	ctx      context.Context
	sessions *lru.Cache[sessionKey, *openSession]
}

func NewSessionRegistry(ctx context.Context, size int) (*SessionRegistry, error) {
	if size <= 0 {
		size = DefaultMaxOpenSessions
	}
	registry := &SessionRegistry{ctx: context.WithoutCancel(ctx)}
	sessions, err := lru.NewWithEvict(size, registry.onEvict)
	if err != nil {
		return nil, err
	}
	registry.sessions = sessions
	return registry, nil
}

func (r *SessionRegistry) onEvict(key sessionKey, entry *openSession) {
	entry.session.Close(r.ctx)
	utils.MetricOpenSessions.Dec()
	utils.LoggerFromContext(r.ctx).DebugContext(r.ctx, "designer session closed",
		"user_id", key.userId,
		"form_id", key.formId)
}

func (r *SessionRegistry) get(userId models.UserId, formId string) (*openSession, bool) {
	return r.sessions.Get(sessionKey{userId: userId, formId: formId})
}

// getOrOpen returns the open session of the user on the form, or registers the one built by open.
func (r *SessionRegistry) getOrOpen(
	userId models.UserId,
	formId string,
	open func() (*designer.DesignerSession, error),
) (*openSession, error) {
	if entry, ok := r.get(userId, formId); ok {
		return entry, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.get(userId, formId); ok {
		return entry, nil
	}

	session, err := open()
	if err != nil {
		return nil, err
	}
	return r.addLocked(session), nil
}

// add registers a new session. It returns false, and leaves the registry unchanged, when the user already has a
// session open on the form.
func (r *SessionRegistry) add(session *designer.DesignerSession) (*openSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.get(session.UserId(), session.FormId()); ok {
		return nil, false
	}
	return r.addLocked(session), true
}

func (r *SessionRegistry) addLocked(session *designer.DesignerSession) *openSession {
	entry := &openSession{
		session: session,
		canvas:  canvas.NewInteractionController(session),
	}
	r.sessions.Add(sessionKey{userId: session.UserId(), formId: session.FormId()}, entry)
	utils.MetricOpenSessions.Inc()
	return entry
}

// forget drops the sessions of every user on the form without persisting their drafts.
func (r *SessionRegistry) forget(formId string) {
	for _, key := range r.sessions.Keys() {
		if key.formId != formId {
			continue
		}
		if entry, ok := r.sessions.Peek(key); ok {
			entry.session.Abandon()
		}
		r.sessions.Remove(key)
	}
}

func (r *SessionRegistry) Len() int {
	return r.sessions.Len()
}

// Close flushes and closes every open session.
func (r *SessionRegistry) Close() {
	r.sessions.Purge()
}
