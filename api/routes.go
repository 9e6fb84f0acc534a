package api

import (
	"net/http"
	"time"

	limits "github.com/gin-contrib/size"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	timeout "github.com/vearne/gin-timeout"

	"github.com/checkmarble/form-designer/api/middleware"
	"github.com/checkmarble/form-designer/usecases"
)

const defaultMaxBodySize = 2 * 1024 * 1024 // 2MB

func timeoutMiddleware(duration time.Duration) gin.HandlerFunc {
	return timeout.Timeout(
		timeout.WithTimeout(duration),
		timeout.WithErrorHttpCode(http.StatusRequestTimeout),
		timeout.WithDefaultMsg("Request timeout"),
	)
}

func addRoutes(r *gin.Engine, conf Configuration, uc usecases.Usecases, gatherer prometheus.Gatherer) {
	RegisterValidators()

	r.GET("/liveness", handleLivenessProbe(uc))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	maxBodySize := conf.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	router := r.Group("/designer",
		middleware.Credentials(),
		middleware.PathIdentifiers(),
		limits.RequestSizeLimiter(maxBodySize))
	if conf.RequestTimeout > 0 {
		router.Use(timeoutMiddleware(conf.RequestTimeout))
	}

	router.POST("/forms", handleCreateForm(uc))
	router.GET("/forms/:form_id", handleGetForm(uc))
	router.DELETE("/forms/:form_id", handleDeleteForm(uc))
	router.PATCH("/forms/:form_id/settings", handleUpdateSettings(uc))
	router.POST("/forms/:form_id/save", handleSaveForm(uc))
	router.POST("/forms/:form_id/reset", handleResetForm(uc))
	router.POST("/forms/:form_id/discard-draft", handleDiscardDraft(uc))

	router.POST("/forms/:form_id/fields", handleAddField(uc))
	router.PATCH("/forms/:form_id/fields/:field_id", handleUpdateField(uc))
	router.DELETE("/forms/:form_id/fields/:field_id", handleDeleteField(uc))
	router.POST("/forms/:form_id/fields/:field_id/select", handleSelectField(uc))
	router.GET("/forms/:form_id/formula-fields", handleListFormulaFields(uc))

	router.POST("/forms/:form_id/gestures/drag", handleBeginDrag(uc))
	router.POST("/forms/:form_id/gestures/drag/:gesture_id/move", handleDragMove(uc))
	router.POST("/forms/:form_id/gestures/drag/:gesture_id/drop", handleDrop(uc))
	router.DELETE("/forms/:form_id/gestures/drag/:gesture_id", handleCancelGesture(uc))
	router.POST("/forms/:form_id/gestures/resize", handleResize(uc))
	router.POST("/forms/:form_id/gestures/drop-field", handleDropNewField(uc))

	router.POST("/forms/:form_id/submissions", handleSubmitForm(uc))
	router.GET("/forms/:form_id/submissions", handleListSubmissions(uc))

	router.GET("/sync/status", handleGetSyncStatus(uc))
	router.PUT("/sync/status", handleSetSyncStatus(uc))
	router.POST("/sync/replay", handleReplayQueue(uc))
	router.GET("/sync/queue", handleListQueue(uc))
}
