package api

import (
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/checkmarble/form-designer/dto"
	"github.com/checkmarble/form-designer/usecases"
)

// bindOptionalJSON accepts an empty body, leaving the target to its zero value.
func bindOptionalJSON(c *gin.Context, target any) error {
	if err := c.ShouldBindJSON(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func handleCreateForm(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.CreateFormBody
		if err := bindOptionalJSON(c, &data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		form, err := usecase.CreateForm(ctx, dto.AdaptNewFormInput(data))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"form": dto.AdaptFormReadModelDto(form)})
	}
}

func handleGetForm(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		form, err := usecase.OpenForm(ctx, c.Param("form_id"))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"form": dto.AdaptFormReadModelDto(form)})
	}
}

func handleUpdateSettings(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.UpdateSettingsBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		settings, err := usecase.UpdateSettings(ctx, c.Param("form_id"), dto.AdaptSettingsUpdate(data))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"formSettings": dto.AdaptFormSettingsDto(settings)})
	}
}

func handleSaveForm(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.SaveFormBody
		if err := bindOptionalJSON(c, &data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		result, err := usecase.SaveForm(ctx, c.Param("form_id"), data.IsAutoSave)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": dto.AdaptSaveResultDto(result)})
	}
}

func handleResetForm(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		form, err := usecase.ResetForm(ctx, c.Param("form_id"))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"form": dto.AdaptFormReadModelDto(form)})
	}
}

func handleDiscardDraft(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		form, err := usecase.DiscardDraft(ctx, c.Param("form_id"))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"form": dto.AdaptFormReadModelDto(form)})
	}
}

func handleDeleteForm(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		result, err := usecase.DeleteForm(ctx, c.Param("form_id"))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": dto.AdaptSaveResultDto(result)})
	}
}
