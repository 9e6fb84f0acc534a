package designer

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/usecases/events"
	"github.com/checkmarble/form-designer/utils"
)

// scheduleDraftLocked restarts the debounce timer. A callback of a superseded timer that already fired sees a
// stale generation and does nothing.
func (s *DesignerSession) scheduleDraftLocked() {
	if s.closed {
		return
	}
	if s.draftTimer != nil {
		s.draftTimer.Stop()
	}
	s.draftGeneration++
	generation := s.draftGeneration
	s.draftTimer = time.AfterFunc(s.deps.DraftDebounce, func() {
		s.persistDraft(generation)
	})
}

func (s *DesignerSession) cancelDraftLocked() {
	if s.draftTimer != nil {
		s.draftTimer.Stop()
		s.draftTimer = nil
	}
	s.draftGeneration++
}

func (s *DesignerSession) persistDraft(generation uint64) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	s.mu.Lock()
	if generation != s.draftGeneration {
		s.mu.Unlock()
		return
	}
	s.draftTimer = nil
	draft := s.draftSnapshotLocked()
	s.mu.Unlock()

	s.writeDraft(s.ctx, draft)
}

// Flush persists the pending draft right away, if any. Called when the session leaves memory.
func (s *DesignerSession) Flush(ctx context.Context) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	s.mu.Lock()
	if s.draftTimer == nil {
		s.mu.Unlock()
		return
	}
	s.cancelDraftLocked()
	draft := s.draftSnapshotLocked()
	s.mu.Unlock()

	s.writeDraft(ctx, draft)
}

// Close flushes the pending draft and stops scheduling new ones.
func (s *DesignerSession) Close(ctx context.Context) {
	s.Flush(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancelDraftLocked()
}

// Abandon stops the session without persisting anything, used when the form itself is deleted.
func (s *DesignerSession) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancelDraftLocked()
}

func (s *DesignerSession) draftSnapshotLocked() models.Draft {
	return models.Draft{
		FormId:       s.formId,
		Title:        s.title,
		Description:  s.description,
		Fields:       copyFields(s.fields),
		Settings:     s.settings,
		LastModified: s.deps.Clock.Now(),
	}
}

func (s *DesignerSession) writeDraft(ctx context.Context, draft models.Draft) {
	err := s.deps.DraftRepository.SaveDraft(ctx, s.userId, draft)
	if err != nil {
		utils.MetricDraftsPersisted.WithLabelValues("error").Inc()
		utils.LogAndReportSentryError(ctx, errors.Wrapf(err, "could not persist draft of form %s", s.formId))
		return
	}
	utils.MetricDraftsPersisted.WithLabelValues("success").Inc()
	utils.LoggerFromContext(ctx).DebugContext(ctx, "draft persisted",
		"form_id", s.formId,
		"fields", len(draft.Fields))

	if s.deps.Broker != nil {
		s.deps.Broker.Publish(ctx, events.Event{
			Name:      events.DraftSaved,
			FormId:    s.formId,
			Timestamp: draft.LastModified,
		})
	}
}

func (s *DesignerSession) deleteDraft(ctx context.Context) {
	if err := s.deps.DraftRepository.DeleteDraft(ctx, s.userId, s.formId); err != nil {
		utils.LogAndReportSentryError(ctx, errors.Wrapf(err, "could not delete draft of form %s", s.formId))
	}
}
