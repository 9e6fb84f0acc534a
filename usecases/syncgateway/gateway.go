// Package syncgateway pushes the local writes of the designer to the remote store. Writes are always committed
// locally first; when the remote store cannot take them they wait in a durable FIFO queue, replayed in order once
// the connection is back.
package syncgateway

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/repositories"
	"github.com/checkmarble/form-designer/repositories/clock"
	"github.com/checkmarble/form-designer/usecases/events"
	"github.com/checkmarble/form-designer/utils"
)

type Dependencies struct {
	FormRepository          repositories.FormRepository
	DraftRepository         repositories.DraftRepository
	SubmissionLogRepository repositories.SubmissionLogRepository
	SyncQueueRepository     repositories.SyncQueueRepository
	// RemoteFormRepository is nil when the designer runs offline only.
	RemoteFormRepository repositories.RemoteFormRepository
	Broker               *events.Broker
	Clock                clock.Clock
}

type Gateway struct {
	// mu guards the queue and the connection status.
	mu     sync.Mutex
	queue  []models.SyncAction
	status models.ConnectionStatus

	isProcessing atomic.Bool
	replays      sync.WaitGroup

	// ctx is used by the replays started in the background.
	ctx  context.Context
	deps Dependencies
}

// NewGateway restores the offline queue persisted by a previous run.
func NewGateway(ctx context.Context, deps Dependencies) (*Gateway, error) {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Broker == nil {
		deps.Broker = events.NewBroker(events.DefaultBufferSize)
	}

	queue, err := deps.SyncQueueRepository.LoadQueue(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not load the offline queue")
	}

	status := models.ConnectionConnecting
	if deps.RemoteFormRepository == nil {
		status = models.ConnectionOffline
	}

	utils.MetricSyncQueueLength.Set(float64(len(queue)))
	if len(queue) > 0 {
		utils.LoggerFromContext(ctx).InfoContext(ctx, "offline queue restored", "length", len(queue))
	}

	return &Gateway{
		queue:  queue,
		status: status,
		ctx:    context.WithoutCancel(ctx),
		deps:   deps,
	}, nil
}

func (g *Gateway) Broker() *events.Broker {
	return g.deps.Broker
}

func (g *Gateway) Status() models.ConnectionStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *Gateway) QueueLength() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

func (g *Gateway) Queue() []models.SyncAction {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.queue)
}

// SetConnectionStatus publishes the change. While connected, actions left in the queue are replayed in the
// background, whether the status changed or not.
func (g *Gateway) SetConnectionStatus(ctx context.Context, status models.ConnectionStatus) {
	g.mu.Lock()
	previous := g.status
	g.status = status
	g.mu.Unlock()

	if previous != status {
		utils.LoggerFromContext(ctx).InfoContext(ctx, "connection status changed",
			"from", previous,
			"to", status)
		g.deps.Broker.Publish(ctx, events.Event{
			Name:    events.ConnectionStatusChanged,
			Payload: status,
		})
	}

	if status == models.ConnectionConnected {
		g.replayIfPending()
	}
}

// replayIfPending starts a background replay when the gateway is connected, the queue holds actions and no
// replay is running.
func (g *Gateway) replayIfPending() {
	if g.isProcessing.Load() || !g.pendingWhileConnected() {
		return
	}
	g.replays.Go(func() {
		g.ProcessQueue(g.ctx)
	})
}

func (g *Gateway) pendingWhileConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status == models.ConnectionConnected && len(g.queue) > 0
}

// Wait blocks until the replays started in the background are over.
func (g *Gateway) Wait() {
	g.replays.Wait()
}

// SaveForm commits the form locally, then pushes it to the remote store or queues it. Only a failure of the
// local commit is returned.
func (g *Gateway) SaveForm(ctx context.Context, userId models.UserId, form models.Form) (models.SaveResult, error) {
	if form.Id == "" {
		return models.SaveResult{}, models.ErrFormIdRequired
	}

	_, err := g.deps.FormRepository.GetForm(ctx, form.Id)
	existed := err == nil
	if err != nil && !errors.Is(err, models.NotFoundError) {
		return models.SaveResult{}, errors.Wrapf(err, "could not read form %s", form.Id)
	}

	if err := g.deps.FormRepository.SaveForm(ctx, form); err != nil {
		return models.SaveResult{}, errors.Wrapf(err, "could not commit form %s locally", form.Id)
	}

	actionType := models.SyncActionSaveForm
	if existed {
		actionType = models.SyncActionUpdateForm
	}
	action, err := g.newAction(actionType, userId, form.Id, form)
	if err != nil {
		return models.SaveResult{}, err
	}

	synced := g.dispatch(ctx, action)
	return models.SaveResult{
		FormId:  form.Id,
		SavedAt: form.UpdatedAt,
		Synced:  synced,
		Queued:  !synced,
	}, nil
}

// DeleteForm removes the form and the draft of the user locally, then deletes it remotely or queues the deletion.
func (g *Gateway) DeleteForm(ctx context.Context, userId models.UserId, formId string) (models.SaveResult, error) {
	if formId == "" {
		return models.SaveResult{}, models.ErrFormIdRequired
	}

	if err := g.deps.FormRepository.DeleteForm(ctx, formId); err != nil {
		return models.SaveResult{}, errors.Wrapf(err, "could not delete form %s locally", formId)
	}
	if err := g.deps.DraftRepository.DeleteDraft(ctx, userId, formId); err != nil {
		utils.LogAndReportSentryError(ctx, errors.Wrapf(err, "could not delete draft of form %s", formId))
	}

	action, err := g.newAction(models.SyncActionDeleteForm, userId, formId, nil)
	if err != nil {
		return models.SaveResult{}, err
	}
	synced := g.dispatch(ctx, action)
	return models.SaveResult{
		FormId:  formId,
		SavedAt: action.Timestamp,
		Synced:  synced,
		Queued:  !synced,
	}, nil
}

// SubmitForm appends the submission to the local log, then pushes it to the remote store or queues it.
func (g *Gateway) SubmitForm(
	ctx context.Context,
	userId models.UserId,
	formId string,
	values map[string]any,
) (models.Submission, error) {
	if formId == "" {
		return models.Submission{}, models.ErrFormIdRequired
	}
	if values == nil {
		values = map[string]any{}
	}

	submission := models.Submission{
		Id:          newId(),
		FormId:      formId,
		Values:      values,
		SubmittedBy: userId,
		CreatedAt:   g.deps.Clock.Now(),
	}
	if err := g.deps.SubmissionLogRepository.AppendSubmission(ctx, submission); err != nil {
		return models.Submission{}, errors.Wrapf(err, "could not log submission of form %s", formId)
	}

	action, err := g.newAction(models.SyncActionSaveSubmission, userId, formId, submission)
	if err != nil {
		return models.Submission{}, err
	}
	g.dispatch(ctx, action)
	return submission, nil
}

func (g *Gateway) ListSubmissions(ctx context.Context, formId string) ([]models.Submission, error) {
	return g.deps.SubmissionLogRepository.ListSubmissions(ctx, formId)
}

// dispatch writes the action to the remote store when connected and nothing is waiting before it, and queues
// it otherwise. It reports whether the remote write went through.
func (g *Gateway) dispatch(ctx context.Context, action models.SyncAction) bool {
	direct, replaying := g.canWriteDirectly()
	if direct {
		err := g.apply(ctx, action)
		if err == nil {
			utils.MetricRemoteWrites.WithLabelValues(string(action.Type), "success").Inc()
			g.publishSynced(ctx, action)
			return true
		}
		utils.MetricRemoteWrites.WithLabelValues(string(action.Type), "failure").Inc()
		g.handleRemoteError(ctx, action, err)
	}

	g.enqueue(ctx, action)
	if replaying {
		// the running replay may have checked the queue before this action landed in it
		g.replayIfPending()
	}
	return false
}

// canWriteDirectly keeps remote writes in order: a direct write must not overtake a queued or replaying one.
// It also reports whether a replay was running.
func (g *Gateway) canWriteDirectly() (direct, replaying bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	replaying = g.isProcessing.Load()
	return g.status == models.ConnectionConnected && len(g.queue) == 0 && !replaying, replaying
}

// ProcessQueue replays the queue in order. The head is removed only once the remote store accepted it: on the
// first failure the replay stops and the queue is left as it was. Concurrent calls return right away.
func (g *Gateway) ProcessQueue(ctx context.Context) models.ReplayResult {
	if !g.isProcessing.CompareAndSwap(false, true) {
		return models.ReplayResult{Skipped: true, Remaining: g.QueueLength()}
	}

	result := models.ReplayResult{}
	for {
		g.replayQueue(ctx, &result)
		g.isProcessing.Store(false)

		// Actions queued behind the replay once it found the queue empty are picked up here.
		if result.Halted || !g.pendingWhileConnected() || !g.isProcessing.CompareAndSwap(false, true) {
			break
		}
	}

	result.Remaining = g.QueueLength()
	utils.LoggerFromContext(ctx).InfoContext(ctx, "offline queue replayed",
		"processed", result.Processed,
		"remaining", result.Remaining,
		"halted", result.Halted)
	if result.Processed > 0 && result.Remaining == 0 {
		g.deps.Broker.Publish(ctx, events.Event{Name: events.QueueDrained, Payload: result})
	}
	return result
}

func (g *Gateway) replayQueue(ctx context.Context, result *models.ReplayResult) {
	for {
		g.mu.Lock()
		if len(g.queue) == 0 {
			g.mu.Unlock()
			break
		}
		head := g.queue[0]
		g.mu.Unlock()

		err := g.apply(ctx, head)
		if isUndecodable(err) {
			utils.LogAndReportSentryError(ctx, errors.Wrapf(err, "dropping queued action %s", head.Id))
			g.removeHead(ctx, head.Id)
			continue
		}
		if err != nil {
			utils.MetricRemoteWrites.WithLabelValues(string(head.Type), "failure").Inc()
			g.handleRemoteError(ctx, head, err)
			result.Halted = true
			break
		}

		utils.MetricRemoteWrites.WithLabelValues(string(head.Type), "success").Inc()
		g.removeHead(ctx, head.Id)
		g.publishSynced(ctx, head)
		result.Processed++
	}
}

func (g *Gateway) enqueue(ctx context.Context, action models.SyncAction) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.queue = append(g.queue, action)
	g.persistQueueLocked(ctx)
	utils.LoggerFromContext(ctx).InfoContext(ctx, "remote write queued",
		"action", action.Type,
		"form_id", action.FormId,
		"queue_length", len(g.queue))
}

func (g *Gateway) removeHead(ctx context.Context, actionId string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.queue) == 0 || g.queue[0].Id != actionId {
		return
	}
	g.queue = slices.Delete(g.queue, 0, 1)
	g.persistQueueLocked(ctx)
}

// persistQueueLocked writes the queue after every change. A failure leaves the in-memory queue authoritative.
func (g *Gateway) persistQueueLocked(ctx context.Context) {
	utils.MetricSyncQueueLength.Set(float64(len(g.queue)))
	if err := g.deps.SyncQueueRepository.SaveQueue(ctx, g.queue); err != nil {
		utils.LogAndReportSentryError(ctx, errors.Wrap(err, "could not persist the offline queue"))
	}
}

// handleRemoteError moves the connection status: no answer means disconnected, a server side failure means
// error, a rejected request leaves it unchanged.
func (g *Gateway) handleRemoteError(ctx context.Context, action models.SyncAction, err error) {
	utils.LoggerFromContext(ctx).WarnContext(ctx, "remote write failed",
		"action", action.Type,
		"form_id", action.FormId,
		"error", err.Error())

	switch {
	case errors.Is(err, models.ErrRemoteRejected):
		utils.LogAndReportSentryError(ctx, err)
	case errors.Is(err, models.ErrRemoteNotConfigured):
		g.SetConnectionStatus(ctx, models.ConnectionOffline)
	case errors.Is(err, models.ErrRemoteUnreachable),
		errors.Is(err, context.DeadlineExceeded):
		g.SetConnectionStatus(ctx, models.ConnectionDisconnected)
	default:
		g.SetConnectionStatus(ctx, models.ConnectionError)
	}
}

func (g *Gateway) publishSynced(ctx context.Context, action models.SyncAction) {
	switch action.Type {
	case models.SyncActionSaveForm, models.SyncActionUpdateForm, models.SyncActionDeleteForm:
		g.deps.Broker.Publish(ctx, events.Event{
			Name:    events.FormSynced,
			FormId:  action.FormId,
			Payload: action.Type,
		})
	}
}

func (g *Gateway) newAction(
	actionType models.SyncActionType,
	userId models.UserId,
	formId string,
	payload any,
) (models.SyncAction, error) {
	action := models.SyncAction{
		Id:        newId(),
		Type:      actionType,
		FormId:    formId,
		UserId:    userId,
		Timestamp: g.deps.Clock.Now(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return models.SyncAction{}, errors.Wrapf(err, "could not encode %s action", actionType)
		}
		action.Data = data
	}
	return action, nil
}

func newId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
