package models

import (
	"time"

	"github.com/guregu/null/v5"
)

const (
	MinGridColumns = 1
	MaxGridColumns = 12

	DefaultBackgroundColor = "#ffffff"
)

// GridColumns controls the css-grid like preview of the form, per screen class.
type GridColumns struct {
	Mobile  int `json:"mobile"`
	Tablet  int `json:"tablet"`
	Desktop int `json:"desktop"`
}

type FormSettings struct {
	BackgroundColor    string      `json:"backgroundColor"`
	Columns            GridColumns `json:"columns"`
	MainGoogleSheetUrl string      `json:"mainGoogleSheetUrl"`
}

func DefaultFormSettings() FormSettings {
	return FormSettings{
		BackgroundColor: DefaultBackgroundColor,
		Columns:         GridColumns{Mobile: 1, Tablet: 2, Desktop: 3},
	}
}

// Normalized bounds the grid columns and fills an empty background color.
func (s FormSettings) Normalized() FormSettings {
	if s.BackgroundColor == "" {
		s.BackgroundColor = DefaultBackgroundColor
	}
	s.Columns.Mobile = clampColumns(s.Columns.Mobile)
	s.Columns.Tablet = clampColumns(s.Columns.Tablet)
	s.Columns.Desktop = clampColumns(s.Columns.Desktop)
	return s
}

func clampColumns(c int) int {
	return min(max(c, MinGridColumns), MaxGridColumns)
}

type SettingsUpdate struct {
	BackgroundColor    null.String
	ColumnsMobile      null.Int
	ColumnsTablet      null.Int
	ColumnsDesktop     null.Int
	MainGoogleSheetUrl null.String
}

func (s FormSettings) Apply(update SettingsUpdate) FormSettings {
	if update.BackgroundColor.Valid {
		s.BackgroundColor = update.BackgroundColor.String
	}
	if update.ColumnsMobile.Valid {
		s.Columns.Mobile = int(update.ColumnsMobile.Int64)
	}
	if update.ColumnsTablet.Valid {
		s.Columns.Tablet = int(update.ColumnsTablet.Int64)
	}
	if update.ColumnsDesktop.Valid {
		s.Columns.Desktop = int(update.ColumnsDesktop.Int64)
	}
	if update.MainGoogleSheetUrl.Valid {
		s.MainGoogleSheetUrl = update.MainGoogleSheetUrl.String
	}
	return s.Normalized()
}

// Form is the authoritative saved form.
type Form struct {
	Id          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	OwnerId     UserId       `json:"ownerId"`
	Fields      []Field      `json:"fields"`
	Settings    FormSettings `json:"formSettings"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Draft is an unsaved snapshot of a designer session, superseded by the saved form on save or discard.
type Draft struct {
	FormId       string       `json:"formId"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Fields       []Field      `json:"fields"`
	Settings     FormSettings `json:"formSettings"`
	LastModified time.Time    `json:"lastModified"`
}

type Submission struct {
	Id          string         `json:"id"`
	FormId      string         `json:"formId"`
	Values      map[string]any `json:"values"`
	SubmittedBy UserId         `json:"submittedBy"`
	CreatedAt   time.Time      `json:"createdAt"`
}
