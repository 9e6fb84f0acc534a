package usecases

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/form-designer/repositories"
	"github.com/checkmarble/form-designer/usecases/designer"
	"github.com/checkmarble/form-designer/usecases/events"
	"github.com/checkmarble/form-designer/usecases/syncgateway"
)

type Usecases struct {
	Repositories  repositories.Repositories
	appName       string
	draftDebounce time.Duration
	probeInterval time.Duration

	broker   *events.Broker
	gateway  *syncgateway.Gateway
	sessions *SessionRegistry
}

type Option func(*options)

func WithAppName(name string) Option {
	return func(o *options) {
		o.appName = name
	}
}

func WithDraftDebounce(debounce time.Duration) Option {
	return func(o *options) {
		o.draftDebounce = debounce
	}
}

func WithMaxOpenSessions(size int) Option {
	return func(o *options) {
		o.maxOpenSessions = size
	}
}

func WithProbeInterval(interval time.Duration) Option {
	return func(o *options) {
		o.probeInterval = interval
	}
}

func WithEventBufferSize(size int) Option {
	return func(o *options) {
		o.eventBufferSize = size
	}
}

type options struct {
	appName         string
	draftDebounce   time.Duration
	maxOpenSessions int
	probeInterval   time.Duration
	eventBufferSize int
}

// NewUsecases restores the offline queue and prepares the session registry. The returned usecases must be
// closed, so that the pending drafts are written.
func NewUsecases(ctx context.Context, repositories repositories.Repositories, opts ...Option) (Usecases, error) {
	o := &options{
		appName:         "form-designer",
		draftDebounce:   designer.DefaultDraftDebounce,
		maxOpenSessions: DefaultMaxOpenSessions,
		probeInterval:   30 * time.Second,
		eventBufferSize: events.DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(o)
	}

	broker := events.NewBroker(o.eventBufferSize)
	gateway, err := syncgateway.NewGateway(ctx, syncgateway.Dependencies{
		FormRepository:          repositories.FormRepository,
		DraftRepository:         repositories.DraftRepository,
		SubmissionLogRepository: repositories.SubmissionLogRepository,
		SyncQueueRepository:     repositories.SyncQueueRepository,
		RemoteFormRepository:    repositories.RemoteFormRepository,
		Broker:                  broker,
		Clock:                   repositories.Clock,
	})
	if err != nil {
		return Usecases{}, errors.Wrap(err, "could not start the sync gateway")
	}

	sessions, err := NewSessionRegistry(ctx, o.maxOpenSessions)
	if err != nil {
		return Usecases{}, errors.Wrap(err, "could not create the session registry")
	}

	return Usecases{
		Repositories:  repositories,
		appName:       o.appName,
		draftDebounce: o.draftDebounce,
		probeInterval: o.probeInterval,
		broker:        broker,
		gateway:       gateway,
		sessions:      sessions,
	}, nil
}

func (usecases *Usecases) AppName() string {
	return usecases.appName
}

func (usecases *Usecases) Broker() *events.Broker {
	return usecases.broker
}

func (usecases *Usecases) designerDependencies() designer.Dependencies {
	return designer.Dependencies{
		DraftRepository: usecases.Repositories.DraftRepository,
		FormRepository:  usecases.Repositories.FormRepository,
		Saver:           usecases.gateway,
		Clock:           usecases.Repositories.Clock,
		Broker:          usecases.broker,
		DraftDebounce:   usecases.draftDebounce,
	}
}

func (usecases *Usecases) NewConnectivityMonitor() *syncgateway.ConnectivityMonitor {
	return syncgateway.NewConnectivityMonitor(
		usecases.gateway,
		usecases.Repositories.RemoteFormRepository,
		usecases.probeInterval,
	)
}

func (usecases *Usecases) NewLivenessUsecase() LivenessUsecase {
	return LivenessUsecase{
		store: usecases.Repositories.KeyValueStore,
	}
}

// Close writes the pending drafts of every open session and waits for the replays in progress.
func (usecases *Usecases) Close() {
	usecases.sessions.Close()
	usecases.gateway.Wait()
}
