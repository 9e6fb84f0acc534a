package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/checkmarble/form-designer/dto"
	"github.com/checkmarble/form-designer/pure_utils"
	"github.com/checkmarble/form-designer/usecases"
)

func handleAddField(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.AddFieldBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		field, err := usecase.AddField(ctx, c.Param("form_id"), dto.AdaptAddFieldInput(data))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"field": dto.AdaptFieldDto(field)})
	}
}

func handleUpdateField(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		formId, fieldId := c.Param("form_id"), c.Param("field_id")
		var data dto.UpdateFieldBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		current, err := usecase.GetField(ctx, formId, fieldId)
		if presentError(ctx, c, err) {
			return
		}
		update, err := dto.AdaptFieldUpdate(data, current.Type)
		if presentError(ctx, c, err) {
			return
		}

		field, err := usecase.UpdateField(ctx, formId, fieldId, update)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"field": dto.AdaptFieldDto(field)})
	}
}

func handleDeleteField(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		err := usecase.DeleteField(ctx, c.Param("form_id"), c.Param("field_id"))
		if presentError(ctx, c, err) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleSelectField(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		form, err := usecase.SelectField(ctx, c.Param("form_id"), c.Param("field_id"))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"form": dto.AdaptFormReadModelDto(form)})
	}
}

func handleListFormulaFields(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		params := struct {
			Exclude string `form:"exclude"`
		}{}
		if err := c.ShouldBindQuery(&params); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewDesignerUsecase()
		fields, err := usecase.AvailableFormulaFields(ctx, c.Param("form_id"), params.Exclude)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"fields": pure_utils.Map(fields, dto.AdaptFieldDto)})
	}
}
