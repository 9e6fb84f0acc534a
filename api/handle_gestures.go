package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/checkmarble/form-designer/dto"
	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/usecases"
)

func handleBeginDrag(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.BeginDragBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		gesture, err := usecase.BeginDrag(ctx, c.Param("form_id"), data.FieldId,
			models.Device(data.Device), data.Pointer.Adapt())
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"gesture": dto.AdaptGestureDto(gesture)})
	}
}

func handleDragMove(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.PointerBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		preview, err := usecase.DragMove(ctx, c.Param("form_id"), c.Param("gesture_id"), data.Pointer.Adapt())
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"preview": dto.AdaptPositionDto(preview)})
	}
}

func handleDrop(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.PointerBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		field, err := usecase.Drop(ctx, c.Param("form_id"), c.Param("gesture_id"), data.Pointer.Adapt())
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"field": dto.AdaptFieldDto(field)})
	}
}

func handleCancelGesture(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		err := usecase.CancelGesture(ctx, c.Param("form_id"), c.Param("gesture_id"))
		if presentError(ctx, c, err) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleResize(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.ResizeBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		field, err := usecase.Resize(ctx, c.Param("form_id"), data.FieldId,
			models.Device(data.Device), data.Size.Adapt())
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"field": dto.AdaptFieldDto(field)})
	}
}

func handleDropNewField(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.DropNewFieldBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		field, err := usecase.DropNewField(ctx, c.Param("form_id"), models.FieldType(data.Type),
			models.Device(data.Device), data.Pointer.Adapt())
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"field": dto.AdaptFieldDto(field)})
	}
}
