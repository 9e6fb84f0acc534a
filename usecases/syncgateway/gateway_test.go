package syncgateway

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/checkmarble/form-designer/mocks"
	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/repositories"
	"github.com/checkmarble/form-designer/repositories/clock"
	"github.com/checkmarble/form-designer/usecases/events"
)

const userId models.UserId = "user-1"

var (
	unreachable = errors.Mark(errors.Mark(errors.New("dial tcp: connection refused"),
		models.ErrRemoteUnavailable), models.ErrRemoteUnreachable)
	serverError = errors.Wrap(models.ErrRemoteUnavailable, "status 503")
	rejected    = errors.Wrap(models.ErrRemoteRejected, "status 422")
)

type GatewayTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *repositories.BlobKeyValueStore
	repos  repositories.Repositories
	remote *mocks.RemoteFormRepository
	broker *events.Broker
}

func (suite *GatewayTestSuite) SetupTest() {
	suite.ctx = context.Background()
	store, err := repositories.NewBlobKeyValueStore(suite.ctx, "mem://")
	suite.Require().NoError(err)
	suite.store = store
	suite.remote = new(mocks.RemoteFormRepository)
	suite.broker = events.NewBroker(16)
	suite.repos = repositories.NewRepositories(store,
		repositories.WithRemoteFormRepository(suite.remote),
		repositories.WithClock(clock.NewMock(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))))
}

func (suite *GatewayTestSuite) TearDownTest() {
	_ = suite.store.Close()
}

func (suite *GatewayTestSuite) makeGateway(remote repositories.RemoteFormRepository) *Gateway {
	gateway, err := NewGateway(suite.ctx, Dependencies{
		FormRepository:          suite.repos.FormRepository,
		DraftRepository:         suite.repos.DraftRepository,
		SubmissionLogRepository: suite.repos.SubmissionLogRepository,
		SyncQueueRepository:     suite.repos.SyncQueueRepository,
		RemoteFormRepository:    remote,
		Broker:                  suite.broker,
		Clock:                   suite.repos.Clock,
	})
	suite.Require().NoError(err)
	return gateway
}

// connectedGateway returns a gateway connected to the mocked remote store, without triggering a replay.
func (suite *GatewayTestSuite) connectedGateway() *Gateway {
	gateway := suite.makeGateway(suite.remote)
	gateway.status = models.ConnectionConnected
	return gateway
}

func form(id string) models.Form {
	return models.Form{
		Id:       id,
		Title:    "form " + id,
		Fields:   []models.Field{},
		Settings: models.DefaultFormSettings(),
	}
}

func formWithId(id string) any {
	return mock.MatchedBy(func(f models.Form) bool { return f.Id == id })
}

func queueFormIds(gateway *Gateway) []string {
	var out []string
	for _, action := range gateway.Queue() {
		out = append(out, action.FormId)
	}
	return out
}

func (suite *GatewayTestSuite) TestSaveForm_offline_commits_locally_and_queues() {
	gateway := suite.makeGateway(nil)
	suite.Equal(models.ConnectionOffline, gateway.Status())

	result, err := gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)
	suite.True(result.Queued)
	suite.False(result.Synced)

	_, err = gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)

	saved, err := suite.repos.FormRepository.GetForm(suite.ctx, "a")
	suite.Require().NoError(err)
	suite.Equal("form a", saved.Title)

	queue := gateway.Queue()
	suite.Require().Len(queue, 2)
	suite.Equal(models.SyncActionSaveForm, queue[0].Type)
	suite.Equal(models.SyncActionUpdateForm, queue[1].Type)
	suite.Equal(userId, queue[0].UserId)

	persisted, err := suite.repos.SyncQueueRepository.LoadQueue(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(persisted, 2)
}

func (suite *GatewayTestSuite) TestSaveForm_connected() {
	synced := suite.broker.Subscribe(events.FormSynced)
	gateway := suite.connectedGateway()
	suite.remote.On("CreateForm", mock.Anything, formWithId("a")).Return(nil).Once()
	suite.remote.On("UpdateForm", mock.Anything, "a", formWithId("a")).Return(nil).Once()

	result, err := gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)
	suite.True(result.Synced)

	result, err = gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)
	suite.True(result.Synced)

	suite.Zero(gateway.QueueLength())
	suite.Len(synced.Events(), 2)
	suite.remote.AssertExpectations(suite.T())
}

func (suite *GatewayTestSuite) TestSaveForm_remote_failures() {
	tts := []struct {
		name           string
		err            error
		expectedStatus models.ConnectionStatus
	}{
		{"unreachable", unreachable, models.ConnectionDisconnected},
		{"timeout", context.DeadlineExceeded, models.ConnectionDisconnected},
		{"server error", serverError, models.ConnectionError},
		{"rejected", rejected, models.ConnectionConnected},
	}

	for _, tt := range tts {
		suite.Run(tt.name, func() {
			suite.SetupTest()
			gateway := suite.connectedGateway()
			suite.remote.On("CreateForm", mock.Anything, formWithId("a")).Return(tt.err)

			result, err := gateway.SaveForm(suite.ctx, userId, form("a"))

			suite.Require().NoError(err, "the manual save succeeds once queued")
			suite.True(result.Queued)
			suite.Equal(1, gateway.QueueLength())
			suite.Equal(tt.expectedStatus, gateway.Status())
		})
	}
}

func (suite *GatewayTestSuite) TestSaveForm_does_not_overtake_the_queue() {
	gateway := suite.makeGateway(nil)
	_, err := gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)

	gateway.deps.RemoteFormRepository = suite.remote
	gateway.status = models.ConnectionConnected

	result, err := gateway.SaveForm(suite.ctx, userId, form("b"))
	suite.Require().NoError(err)
	suite.True(result.Queued)
	suite.Equal([]string{"a", "b"}, queueFormIds(gateway))
	suite.remote.AssertNotCalled(suite.T(), "CreateForm", mock.Anything, mock.Anything)
}

func (suite *GatewayTestSuite) TestProcessQueue_halts_on_head_failure() {
	gateway := suite.makeGateway(nil)
	for _, id := range []string{"a", "b", "c"} {
		_, err := gateway.SaveForm(suite.ctx, userId, form(id))
		suite.Require().NoError(err)
	}
	before := gateway.Queue()
	gateway.deps.RemoteFormRepository = suite.remote
	suite.remote.On("CreateForm", mock.Anything, formWithId("a")).Return(unreachable)

	result := gateway.ProcessQueue(suite.ctx)

	suite.True(result.Halted)
	suite.Equal(0, result.Processed)
	suite.Equal(3, result.Remaining)
	suite.Equal(before, gateway.Queue())
	persisted, err := suite.repos.SyncQueueRepository.LoadQueue(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal([]string{before[0].Id, before[1].Id, before[2].Id},
		[]string{persisted[0].Id, persisted[1].Id, persisted[2].Id})
	suite.remote.AssertNumberOfCalls(suite.T(), "CreateForm", 1)
}

func (suite *GatewayTestSuite) TestProcessQueue_replays_in_order() {
	drained := suite.broker.Subscribe(events.QueueDrained)
	gateway := suite.makeGateway(nil)
	for _, id := range []string{"a", "b", "c"} {
		_, err := gateway.SaveForm(suite.ctx, userId, form(id))
		suite.Require().NoError(err)
	}
	gateway.deps.RemoteFormRepository = suite.remote

	var replayed []string
	suite.remote.On("CreateForm", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { replayed = append(replayed, args.Get(1).(models.Form).Id) }).
		Return(nil)

	result := gateway.ProcessQueue(suite.ctx)

	suite.Equal(models.ReplayResult{Processed: 3}, result)
	suite.Equal([]string{"a", "b", "c"}, replayed)
	suite.Zero(gateway.QueueLength())
	suite.Len(drained.Events(), 1)
}

func (suite *GatewayTestSuite) TestProcessQueue_is_not_reentrant() {
	gateway := suite.makeGateway(nil)
	_, err := gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)
	gateway.deps.RemoteFormRepository = suite.remote

	started := make(chan struct{})
	release := make(chan struct{})
	suite.remote.On("CreateForm", mock.Anything, formWithId("a")).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil)

	done := make(chan models.ReplayResult)
	go func() { done <- gateway.ProcessQueue(suite.ctx) }()
	<-started

	concurrent := gateway.ProcessQueue(suite.ctx)
	suite.True(concurrent.Skipped)
	suite.Equal(1, concurrent.Remaining)

	close(release)
	suite.Equal(1, (<-done).Processed)
	suite.remote.AssertNumberOfCalls(suite.T(), "CreateForm", 1)
}

func (suite *GatewayTestSuite) TestReconnection_triggers_a_replay() {
	statuses := suite.broker.Subscribe(events.ConnectionStatusChanged)
	gateway := suite.makeGateway(suite.remote)
	suite.Equal(models.ConnectionConnecting, gateway.Status())

	_, err := gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)
	suite.Equal(1, gateway.QueueLength())

	suite.remote.On("CreateForm", mock.Anything, formWithId("a")).Return(nil)
	gateway.SetConnectionStatus(suite.ctx, models.ConnectionConnected)
	gateway.Wait()

	suite.Zero(gateway.QueueLength())
	suite.Require().Len(statuses.Events(), 1)
	suite.Equal(models.ConnectionConnected, (<-statuses.Events()).Payload)
}

func (suite *GatewayTestSuite) TestSetConnectionStatus_connected_again_replays_the_queue() {
	statuses := suite.broker.Subscribe(events.ConnectionStatusChanged)
	gateway := suite.makeGateway(nil)
	_, err := gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)
	gateway.deps.RemoteFormRepository = suite.remote
	gateway.status = models.ConnectionConnected

	suite.remote.On("CreateForm", mock.Anything, formWithId("a")).Return(nil).Once()
	gateway.SetConnectionStatus(suite.ctx, models.ConnectionConnected)
	gateway.Wait()

	suite.Zero(gateway.QueueLength())
	suite.Empty(statuses.Events())
	suite.remote.AssertExpectations(suite.T())
}

func (suite *GatewayTestSuite) TestSaveForm_behind_a_running_replay_is_replayed() {
	gateway := suite.connectedGateway()
	gateway.isProcessing.Store(true)

	result, err := gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)
	suite.True(result.Queued)
	suite.Equal([]string{"a"}, queueFormIds(gateway))

	suite.remote.On("CreateForm", mock.Anything, formWithId("a")).Return(nil).Once()
	suite.remote.On("CreateForm", mock.Anything, formWithId("b")).Return(nil).Once()
	gateway.isProcessing.Store(false)

	replay := gateway.ProcessQueue(suite.ctx)
	suite.Equal(models.ReplayResult{Processed: 1}, replay)

	result, err = gateway.SaveForm(suite.ctx, userId, form("b"))
	suite.Require().NoError(err)
	suite.True(result.Synced)
	suite.Zero(gateway.QueueLength())
	suite.remote.AssertExpectations(suite.T())
}

func (suite *GatewayTestSuite) TestQueue_survives_a_restart() {
	gateway := suite.makeGateway(nil)
	_, err := gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)
	_, err = gateway.DeleteForm(suite.ctx, userId, "b")
	suite.Require().NoError(err)

	restarted := suite.makeGateway(nil)

	suite.Equal(gateway.Queue(), restarted.Queue())
}

func (suite *GatewayTestSuite) TestDeleteForm() {
	gateway := suite.makeGateway(nil)
	_, err := gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repos.DraftRepository.SaveDraft(suite.ctx, userId, models.Draft{FormId: "a"}))

	result, err := gateway.DeleteForm(suite.ctx, userId, "a")
	suite.Require().NoError(err)
	suite.True(result.Queued)

	_, err = suite.repos.FormRepository.GetForm(suite.ctx, "a")
	suite.ErrorIs(err, models.NotFoundError)
	draft, err := suite.repos.DraftRepository.GetDraft(suite.ctx, userId, "a")
	suite.Require().NoError(err)
	suite.Nil(draft)

	queue := gateway.Queue()
	suite.Equal(models.SyncActionDeleteForm, queue[len(queue)-1].Type)
}

func (suite *GatewayTestSuite) TestSubmitForm_queued_then_replayed() {
	gateway := suite.makeGateway(nil)

	submission, err := gateway.SubmitForm(suite.ctx, userId, "a", map[string]any{"name": "bolt", "qty": 3.0})
	suite.Require().NoError(err)
	suite.NotEmpty(submission.Id)
	suite.Equal(userId, submission.SubmittedBy)

	logged, err := gateway.ListSubmissions(suite.ctx, "a")
	suite.Require().NoError(err)
	suite.Len(logged, 1)
	suite.Equal(models.SyncActionSaveSubmission, gateway.Queue()[0].Type)

	gateway.deps.RemoteFormRepository = suite.remote
	suite.remote.On("CreateSubmission", mock.Anything, mock.MatchedBy(func(s models.Submission) bool {
		return s.Id == submission.Id && s.Values["name"] == "bolt"
	})).Return(nil)

	result := gateway.ProcessQueue(suite.ctx)
	suite.Equal(1, result.Processed)
	suite.remote.AssertExpectations(suite.T())
}

func (suite *GatewayTestSuite) TestProcessQueue_update_of_an_unknown_remote_form_creates_it() {
	gateway := suite.makeGateway(nil)
	_, err := gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)
	gateway.queue = nil
	_, err = gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)
	suite.Equal(models.SyncActionUpdateForm, gateway.Queue()[0].Type)

	gateway.deps.RemoteFormRepository = suite.remote
	suite.remote.On("UpdateForm", mock.Anything, "a", formWithId("a")).
		Return(errors.Mark(errors.Wrap(models.NotFoundError, "status 404"), models.ErrRemoteRejected))
	suite.remote.On("CreateForm", mock.Anything, formWithId("a")).Return(nil)

	result := gateway.ProcessQueue(suite.ctx)

	suite.Equal(1, result.Processed)
	suite.remote.AssertExpectations(suite.T())
}

func (suite *GatewayTestSuite) TestProcessQueue_drops_undecodable_actions() {
	suite.Require().NoError(suite.repos.SyncQueueRepository.SaveQueue(suite.ctx, []models.SyncAction{
		{Id: "broken", Type: models.SyncActionSaveForm, FormId: "a", Data: []byte(`"not a form"`)},
		{Id: "unknown", Type: "rename_form", FormId: "a"},
		{Id: "ok", Type: models.SyncActionDeleteForm, FormId: "a"},
	}))
	gateway := suite.makeGateway(suite.remote)
	suite.remote.On("DeleteForm", mock.Anything, "a").Return(nil)

	result := gateway.ProcessQueue(suite.ctx)

	suite.Equal(1, result.Processed)
	suite.Zero(result.Remaining)
}

func TestGatewayTestSuite(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}
