package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/checkmarble/form-designer/api/middleware"
	"github.com/checkmarble/form-designer/infra"
	"github.com/checkmarble/form-designer/repositories"
	"github.com/checkmarble/form-designer/usecases"
)

type ApiTestSuite struct {
	suite.Suite
	store    *repositories.BlobKeyValueStore
	usecases usecases.Usecases
	server   *httptest.Server
	e        *httpexpect.Expect
}

func (suite *ApiTestSuite) SetupTest() {
	ctx := context.Background()
	store, err := repositories.NewBlobKeyValueStore(ctx, "mem://")
	suite.Require().NoError(err)
	suite.store = store

	suite.usecases, err = usecases.NewUsecases(ctx, repositories.NewRepositories(store),
		usecases.WithDraftDebounce(time.Hour))
	suite.Require().NoError(err)

	conf := Configuration{
		Env:            "test",
		AppName:        "form-designer",
		Port:           "0",
		RequestTimeout: 5 * time.Second,
	}
	router := InitRouterMiddlewares(ctx, conf, infra.NoopTelemetry())
	NewServer(router, conf, suite.usecases, WithMetricsGatherer(prometheus.NewRegistry()))
	suite.server = httptest.NewServer(router)
	suite.e = httpexpect.Default(suite.T(), suite.server.URL)
}

func (suite *ApiTestSuite) TearDownTest() {
	suite.server.Close()
	suite.usecases.Close()
	suite.NoError(suite.store.Close())
}

func (suite *ApiTestSuite) as(userId, role string) *httpexpect.Expect {
	return suite.e.Builder(func(req *httpexpect.Request) {
		req.WithHeader(middleware.HeaderUserId, userId)
		req.WithHeader(middleware.HeaderUserRole, role)
	})
}

func (suite *ApiTestSuite) createForm(e *httpexpect.Expect) string {
	return e.POST("/designer/forms").
		WithJSON(map[string]any{"title": "Inventory"}).
		Expect().Status(http.StatusCreated).
		JSON().Object().Value("form").Object().Value("formId").String().NotEmpty().Raw()
}

func (suite *ApiTestSuite) TestLiveness() {
	suite.e.GET("/liveness").Expect().Status(http.StatusOK)
	suite.e.GET("/metrics").Expect().Status(http.StatusOK)
}

func (suite *ApiTestSuite) TestMissingUser() {
	suite.e.GET("/designer/sync/status").
		Expect().Status(http.StatusUnauthorized).
		JSON().Object().HasValue("error_code", "unauthorized")
}

func (suite *ApiTestSuite) TestDesignFlow() {
	e := suite.as("builder-1", "builder")
	formId := suite.createForm(e)

	fieldId := e.POST("/designer/forms/{form_id}/fields", formId).
		WithJSON(map[string]any{
			"type":     "text",
			"position": map[string]any{"x": 100, "y": 100},
		}).
		Expect().Status(http.StatusCreated).
		JSON().Object().Value("field").Object().Value("id").String().NotEmpty().Raw()

	e.PATCH("/designer/forms/{form_id}/fields/{field_id}", formId, fieldId).
		WithJSON(map[string]any{"label": "Product name", "required": true}).
		Expect().Status(http.StatusOK).
		JSON().Object().Value("field").Object().
		HasValue("label", "Product name").
		HasValue("required", true)

	gestureId := e.POST("/designer/forms/{form_id}/gestures/drag", formId).
		WithJSON(map[string]any{
			"fieldId": fieldId,
			"device":  "desktop",
			"pointer": map[string]any{"x": 100, "y": 100},
		}).
		Expect().Status(http.StatusCreated).
		JSON().Object().Value("gesture").Object().Value("id").String().NotEmpty().Raw()

	e.POST("/designer/forms/{form_id}/gestures/drag/{gesture_id}/drop", formId, gestureId).
		WithJSON(map[string]any{"pointer": map[string]any{"x": 300, "y": 200}}).
		Expect().Status(http.StatusOK).
		JSON().Object().Value("field").Object().
		Value("desktop").Object().Value("position").Object().
		HasValue("x", 300).
		HasValue("y", 200)

	e.DELETE("/designer/forms/{form_id}/gestures/drag/{gesture_id}", formId, gestureId).
		Expect().Status(http.StatusNotFound)

	e.POST("/designer/forms/{form_id}/save", formId).
		Expect().Status(http.StatusOK).
		JSON().Object().Value("result").Object().
		HasValue("queued", true).
		HasValue("synced", false)

	form := e.GET("/designer/forms/{form_id}", formId).
		Expect().Status(http.StatusOK).
		JSON().Object().Value("form").Object()
	form.HasValue("hasUnsavedChanges", false)
	form.Value("fields").Array().Length().IsEqual(1)

	suite.as("admin-1", "ADMIN").GET("/designer/sync/queue").
		Expect().Status(http.StatusOK).
		JSON().Object().Value("actions").Array().Length().IsEqual(1)
}

func (suite *ApiTestSuite) TestInvalidPayloads() {
	e := suite.as("builder-1", "BUILDER")
	formId := suite.createForm(e)

	e.POST("/designer/forms/{form_id}/fields", formId).
		WithJSON(map[string]any{"type": "signature"}).
		Expect().Status(http.StatusBadRequest).
		JSON().Object().HasValue("error_code", "invalid_payload")

	e.POST("/designer/forms/{form_id}/fields", formId).
		WithJSON(map[string]any{"type": 12}).
		Expect().Status(http.StatusBadRequest)

	e.POST("/designer/forms/{form_id}/gestures/resize", formId).
		WithJSON(map[string]any{"fieldId": "x", "device": "tablet"}).
		Expect().Status(http.StatusBadRequest)

	e.PATCH("/designer/forms/{form_id}/fields/missing", formId).
		WithJSON(map[string]any{"label": "x"}).
		Expect().Status(http.StatusNotFound).
		JSON().Object().HasValue("error_code", "not_found")
}

func (suite *ApiTestSuite) TestPermissions() {
	formId := suite.createForm(suite.as("builder-1", "BUILDER"))

	suite.as("viewer-1", "VIEWER").POST("/designer/forms/{form_id}/fields", formId).
		WithJSON(map[string]any{"type": "number"}).
		Expect().Status(http.StatusForbidden).
		JSON().Object().HasValue("error_code", "forbidden")

	suite.as("builder-1", "BUILDER").PUT("/designer/sync/status").
		WithJSON(map[string]any{"status": "disconnected"}).
		Expect().Status(http.StatusForbidden)

	suite.as("admin-1", "ADMIN").PUT("/designer/sync/status").
		WithJSON(map[string]any{"status": "disconnected"}).
		Expect().Status(http.StatusOK).
		JSON().Object().Value("sync").Object().HasValue("status", "disconnected")
}

func (suite *ApiTestSuite) TestCreateForm_conflict() {
	e := suite.as("builder-1", "BUILDER")

	e.POST("/designer/forms").
		WithJSON(map[string]any{"formId": "inventory"}).
		Expect().Status(http.StatusCreated)
	e.POST("/designer/forms").
		WithJSON(map[string]any{"formId": "inventory"}).
		Expect().Status(http.StatusConflict)
}

func (suite *ApiTestSuite) TestIdentifiers_with_key_separators() {
	formId := suite.createForm(suite.as("alice", "BUILDER"))

	suite.as("alice:x", "BUILDER").GET("/designer/forms/{form_id}", formId).
		Expect().Status(http.StatusBadRequest).
		JSON().Object().HasValue("error_code", "invalid_payload")

	suite.as("alice/x", "BUILDER").GET("/designer/sync/status").
		Expect().Status(http.StatusBadRequest)

	suite.as("alice", "BUILDER").GET("/designer/forms/x:f").
		Expect().Status(http.StatusBadRequest).
		JSON().Object().HasValue("error_code", "invalid_payload")

	suite.as("alice", "BUILDER").POST("/designer/forms/x:f/save").
		Expect().Status(http.StatusBadRequest)
}

func TestApi(t *testing.T) {
	suite.Run(t, new(ApiTestSuite))
}
