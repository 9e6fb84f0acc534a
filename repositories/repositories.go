package repositories

import (
	"github.com/checkmarble/form-designer/repositories/clock"
)

type Repositories struct {
	KeyValueStore           KeyValueStore
	DraftRepository         DraftRepository
	FormRepository          FormRepository
	SyncQueueRepository     SyncQueueRepository
	SubmissionLogRepository SubmissionLogRepository
	// RemoteFormRepository is nil when no remote store is configured.
	RemoteFormRepository RemoteFormRepository
	Clock                clock.Clock
}

type Option func(*options)

type options struct {
	remote RemoteFormRepository
	clock  clock.Clock
}

func WithRemoteFormRepository(remote RemoteFormRepository) Option {
	return func(o *options) {
		o.remote = remote
	}
}

func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

func NewRepositories(store KeyValueStore, opts ...Option) Repositories {
	o := &options{clock: clock.New()}
	for _, opt := range opts {
		opt(o)
	}

	return Repositories{
		KeyValueStore:           store,
		DraftRepository:         NewDraftRepository(store),
		FormRepository:          NewFormRepository(store),
		SyncQueueRepository:     NewSyncQueueRepository(store),
		SubmissionLogRepository: NewSubmissionLogRepository(store),
		RemoteFormRepository:    o.remote,
		Clock:                   o.clock,
	}
}
