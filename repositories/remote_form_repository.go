package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/checkmarble/form-designer/infra"
	"github.com/checkmarble/form-designer/models"
)

// RemoteFormRepository is the remote CRUD store. UpdateForm and DeleteForm are idempotent, CreateForm is not
// guaranteed to be: a replay after a false negative may create a duplicate on the remote side.
type RemoteFormRepository interface {
	CreateForm(ctx context.Context, form models.Form) error
	UpdateForm(ctx context.Context, formId string, form models.Form) error
	DeleteForm(ctx context.Context, formId string) error
	CreateSubmission(ctx context.Context, submission models.Submission) error
	Ping(ctx context.Context) error
}

type httpRemoteFormRepository struct {
	baseUrl string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
	tracer  trace.Tracer
}

func NewHttpRemoteFormRepository(cfg infra.RemoteStoreConfig) RemoteFormRepository {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &httpRemoteFormRepository{
		baseUrl: strings.TrimRight(cfg.Url, "/"),
		apiKey:  cfg.ApiKey,
		timeout: cfg.Timeout,
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		limiter: rate.NewLimiter(limit, max(cfg.RateLimit, 1)),
		tracer:  otel.Tracer("github.com/checkmarble/form-designer/repositories"),
	}
}

func (repo *httpRemoteFormRepository) CreateForm(ctx context.Context, form models.Form) error {
	return repo.do(ctx, http.MethodPost, "/forms", form)
}

func (repo *httpRemoteFormRepository) UpdateForm(ctx context.Context, formId string, form models.Form) error {
	return repo.do(ctx, http.MethodPatch, formPath(formId), form)
}

func (repo *httpRemoteFormRepository) DeleteForm(ctx context.Context, formId string) error {
	err := repo.do(ctx, http.MethodDelete, formPath(formId), nil)
	if errors.Is(err, models.NotFoundError) {
		return nil
	}
	return err
}

func (repo *httpRemoteFormRepository) CreateSubmission(ctx context.Context, submission models.Submission) error {
	return repo.do(ctx, http.MethodPost, formPath(submission.FormId)+"/submissions", submission)
}

func formPath(formId string) string {
	return "/forms/" + url.PathEscape(formId)
}

func (repo *httpRemoteFormRepository) Ping(ctx context.Context) error {
	return repo.do(ctx, http.MethodGet, "/health", nil)
}

func (repo *httpRemoteFormRepository) do(ctx context.Context, method, path string, payload any) error {
	ctx, span := repo.tracer.Start(ctx, "repositories.RemoteFormRepository",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		))
	defer span.End()

	if repo.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, repo.timeout)
		defer cancel()
	}

	// Paced by REMOTE_STORE_RATE_LIMIT, replays included.
	if err := repo.limiter.Wait(ctx); err != nil {
		err = errors.Mark(errors.Wrapf(err, "%s %s", method, path), models.ErrRemoteUnavailable)
		return errors.Mark(err, models.ErrRemoteUnreachable)
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "could not encode remote store payload")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, repo.baseUrl+path, body)
	if err != nil {
		return errors.Wrap(err, "could not build remote store request")
	}
	req.Header.Set("Content-Type", "application/json")
	if repo.apiKey != "" {
		req.Header.Set("X-Api-Key", repo.apiKey)
	}

	resp, err := repo.client.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		err = errors.Mark(errors.Wrapf(err, "%s %s", method, path), models.ErrRemoteUnavailable)
		return errors.Mark(err, models.ErrRemoteUnreachable)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if err := classifyRemoteResponse(resp); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return errors.Wrapf(err, "%s %s", method, path)
	}
	return nil
}

// classifyRemoteResponse maps the status of the remote store to our sentinel errors: 5xx and 429 are transient
// (ErrRemoteUnavailable), 404 is NotFoundError, other 4xx are ErrRemoteRejected.
func classifyRemoteResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	detail := fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(message)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.Mark(errors.Wrap(models.NotFoundError, detail), models.ErrRemoteRejected)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return errors.Wrap(models.ErrRemoteUnavailable, detail)
	default:
		return errors.Wrap(models.ErrRemoteRejected, detail)
	}
}
