package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/checkmarble/form-designer/dto"
	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/pure_utils"
	"github.com/checkmarble/form-designer/usecases"
)

func handleGetSyncStatus(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		usecase := usecasesWithCreds(ctx, uc).NewSyncUsecase()
		status, err := usecase.Status(ctx)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"sync": dto.AdaptSyncStatusDto(status)})
	}
}

func handleSetSyncStatus(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.SetSyncStatusBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewSyncUsecase()
		status, err := usecase.SetStatus(ctx, models.ConnectionStatus(data.Status))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"sync": dto.AdaptSyncStatusDto(status)})
	}
}

func handleReplayQueue(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		usecase := usecasesWithCreds(ctx, uc).NewSyncUsecase()
		result, err := usecase.Replay(ctx)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": dto.AdaptReplayResultDto(result)})
	}
}

func handleListQueue(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		usecase := usecasesWithCreds(ctx, uc).NewSyncUsecase()
		actions, err := usecase.Queue(ctx)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"actions": pure_utils.Map(actions, dto.AdaptSyncActionDto)})
	}
}

func handleSubmitForm(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.SubmissionBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewSyncUsecase()
		submission, err := usecase.SubmitForm(ctx, c.Param("form_id"), data.Values)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"submission": dto.AdaptSubmissionDto(submission)})
	}
}

func handleListSubmissions(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		usecase := usecasesWithCreds(ctx, uc).NewSyncUsecase()
		submissions, err := usecase.ListSubmissions(ctx, c.Param("form_id"))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"submissions": pure_utils.Map(submissions, dto.AdaptSubmissionDto)})
	}
}
