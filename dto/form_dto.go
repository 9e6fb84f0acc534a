package dto

import (
	"time"

	"github.com/guregu/null/v5"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/pure_utils"
	"github.com/checkmarble/form-designer/usecases/designer"
)

type CreateFormBody struct {
	FormId      string `json:"formId" binding:"omitempty,max=64,excludesall=:/"`
	Title       string `json:"title" binding:"max=200"`
	Description string `json:"description" binding:"max=2000"`
}

func AdaptNewFormInput(body CreateFormBody) designer.NewFormInput {
	return designer.NewFormInput{
		FormId:      body.FormId,
		Title:       body.Title,
		Description: body.Description,
	}
}

type GridColumnsDto struct {
	Mobile  int `json:"mobile"`
	Tablet  int `json:"tablet"`
	Desktop int `json:"desktop"`
}

type FormSettingsDto struct {
	BackgroundColor    string         `json:"backgroundColor"`
	Columns            GridColumnsDto `json:"columns"`
	MainGoogleSheetUrl string         `json:"mainGoogleSheetUrl"`
}

func AdaptFormSettingsDto(s models.FormSettings) FormSettingsDto {
	return FormSettingsDto{
		BackgroundColor: s.BackgroundColor,
		Columns: GridColumnsDto{
			Mobile:  s.Columns.Mobile,
			Tablet:  s.Columns.Tablet,
			Desktop: s.Columns.Desktop,
		},
		MainGoogleSheetUrl: s.MainGoogleSheetUrl,
	}
}

type UpdateColumnsBody struct {
	Mobile  null.Int `json:"mobile"`
	Tablet  null.Int `json:"tablet"`
	Desktop null.Int `json:"desktop"`
}

type UpdateSettingsBody struct {
	BackgroundColor    null.String        `json:"backgroundColor"`
	Columns            *UpdateColumnsBody `json:"columns"`
	MainGoogleSheetUrl null.String        `json:"mainGoogleSheetUrl"`
}

func AdaptSettingsUpdate(body UpdateSettingsBody) models.SettingsUpdate {
	update := models.SettingsUpdate{
		BackgroundColor:    body.BackgroundColor,
		MainGoogleSheetUrl: body.MainGoogleSheetUrl,
	}
	if body.Columns != nil {
		update.ColumnsMobile = body.Columns.Mobile
		update.ColumnsTablet = body.Columns.Tablet
		update.ColumnsDesktop = body.Columns.Desktop
	}
	return update
}

type FormReadModelDto struct {
	FormId            string          `json:"formId"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Fields            []FieldDto      `json:"fields"`
	Settings          FormSettingsDto `json:"formSettings"`
	HasUnsavedChanges bool            `json:"hasUnsavedChanges"`
	LastSavedAt       *time.Time      `json:"lastSavedAt"`
	SelectedField     *FieldDto       `json:"selectedField"`
}

func AdaptFormReadModelDto(m designer.ReadModel) FormReadModelDto {
	out := FormReadModelDto{
		FormId:            m.FormId,
		Title:             m.Title,
		Description:       m.Description,
		Fields:            pure_utils.Map(m.Fields, AdaptFieldDto),
		Settings:          AdaptFormSettingsDto(m.Settings),
		HasUnsavedChanges: m.HasUnsavedChanges,
		LastSavedAt:       m.LastSavedAt,
	}
	if m.SelectedField != nil {
		selected := AdaptFieldDto(*m.SelectedField)
		out.SelectedField = &selected
	}
	return out
}

type SaveFormBody struct {
	IsAutoSave bool `json:"isAutoSave"`
}

type SaveResultDto struct {
	FormId  string    `json:"formId"`
	SavedAt time.Time `json:"savedAt"`
	Synced  bool      `json:"synced"`
	Queued  bool      `json:"queued"`
}

func AdaptSaveResultDto(r models.SaveResult) SaveResultDto {
	return SaveResultDto{
		FormId:  r.FormId,
		SavedAt: r.SavedAt,
		Synced:  r.Synced,
		Queued:  r.Queued,
	}
}
