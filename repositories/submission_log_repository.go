package repositories

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/form-designer/models"
)

const submissionLogKey = "submissions"

// SubmissionLogRepository is an append-only log of the submissions received by this instance.
type SubmissionLogRepository interface {
	AppendSubmission(ctx context.Context, submission models.Submission) error
	ListSubmissions(ctx context.Context, formId string) ([]models.Submission, error)
}

type submissionLogRepository struct {
	mu    sync.Mutex
	store KeyValueStore
}

func NewSubmissionLogRepository(store KeyValueStore) SubmissionLogRepository {
	return &submissionLogRepository{store: store}
}

func (repo *submissionLogRepository) load(ctx context.Context) ([]models.Submission, error) {
	submissions, err := loadModel[[]models.Submission](ctx, repo.store, submissionLogKey)
	if errors.Is(err, models.NotFoundError) {
		return []models.Submission{}, nil
	}
	return submissions, err
}

func (repo *submissionLogRepository) AppendSubmission(ctx context.Context, submission models.Submission) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	submissions, err := repo.load(ctx)
	if err != nil {
		return err
	}
	return saveModel(ctx, repo.store, submissionLogKey, append(submissions, submission))
}

func (repo *submissionLogRepository) ListSubmissions(ctx context.Context, formId string) ([]models.Submission, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	submissions, err := repo.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Submission, 0, len(submissions))
	for _, s := range submissions {
		if s.FormId == formId {
			out = append(out, s)
		}
	}
	return out, nil
}
