package repositories

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/checkmarble/form-designer/models"
)

// FormRepository holds the authoritative saved forms on the local store.
type FormRepository interface {
	GetForm(ctx context.Context, formId string) (models.Form, error)
	SaveForm(ctx context.Context, form models.Form) error
	DeleteForm(ctx context.Context, formId string) error
}

type formRepository struct {
	store KeyValueStore
}

func NewFormRepository(store KeyValueStore) FormRepository {
	return &formRepository{store: store}
}

func formKey(formId string) string {
	return Key("forms", formId)
}

func (repo *formRepository) GetForm(ctx context.Context, formId string) (models.Form, error) {
	data, err := repo.store.Get(ctx, formKey(formId))
	if err != nil {
		return models.Form{}, err
	}
	return DecodeForm(data)
}

func (repo *formRepository) SaveForm(ctx context.Context, form models.Form) error {
	if form.Id == "" {
		return models.ErrFormIdRequired
	}
	return saveModel(ctx, repo.store, formKey(form.Id), form)
}

func (repo *formRepository) DeleteForm(ctx context.Context, formId string) error {
	return repo.store.Remove(ctx, formKey(formId))
}

// DecodeForm reads a saved form. Forms saved before the dual device layouts carry a single "position"/"size"
// pair per field: it becomes the desktop layout, and the mobile layout is left empty for the designer to
// synthesize.
func DecodeForm(data []byte) (models.Form, error) {
	if !gjson.ValidBytes(data) {
		return models.Form{}, errors.New("saved form is not valid json")
	}

	var form models.Form
	if err := json.Unmarshal(data, &form); err != nil {
		return models.Form{}, errors.Wrap(err, "could not decode saved form")
	}

	rawFields := gjson.GetBytes(data, "fields").Array()
	for i, raw := range rawFields {
		if i >= len(form.Fields) {
			break
		}
		if raw.Get("desktop").Exists() || !raw.Get("position").Exists() {
			continue
		}
		form.Fields[i].Desktop = models.DeviceLayout{
			Position: models.Position{
				X: int(raw.Get("position.x").Int()),
				Y: int(raw.Get("position.y").Int()),
			},
			Size: models.Size{
				Width:  int(raw.Get("size.width").Int()),
				Height: int(raw.Get("size.height").Int()),
			},
		}
		form.Fields[i].Mobile = models.DeviceLayout{}
	}
	return form, nil
}
