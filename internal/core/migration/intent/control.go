package intent

import (
	"fmt"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

// ChangeFieldControlIntent sets the editor widget used for a field.
type ChangeFieldControlIntent struct {
	ContentType     string         `yaml:"contentTypeId"`
	FieldID         string         `yaml:"fieldId"`
	WidgetID        string         `yaml:"widgetId,omitempty"`
	WidgetNamespace string         `yaml:"widgetNamespace,omitempty"`
	Settings        map[string]any `yaml:"settings,omitempty"`
}

func (i *ChangeFieldControlIntent) Kind() Kind            { return ChangeFieldControl }
func (i *ChangeFieldControlIntent) ContentTypeID() string { return i.ContentType }
func (i *ChangeFieldControlIntent) IsDestructive() bool   { return false }
func (i *ChangeFieldControlIntent) Describe() string {
	return fmt.Sprintf("Update field control %s on %s", i.FieldID, i.ContentType)
}

func (i *ChangeFieldControlIntent) Validate() []*domain.ValidationError {
	switch {
	case i.ContentType == "":
		return []*domain.ValidationError{invalid(i, "control is missing a contentTypeId")}
	case i.FieldID == "":
		return []*domain.ValidationError{invalid(i, "control is missing a fieldId")}
	}
	return nil
}

func (i *ChangeFieldControlIntent) ToBatch(st *PlanState) (*domain.ExecutionBatch, error) {
	ct, err := st.ContentType(i.ContentType)
	if err != nil {
		return nil, err
	}
	if ct == nil {
		return rejected(i, "content type %q does not exist", i.ContentType), nil
	}
	if _, ok := ct.Field(i.FieldID); !ok {
		return rejected(i, "field %q does not exist on %q", i.FieldID, i.ContentType), nil
	}
	ei, err := st.EditorInterface(i.ContentType)
	if err != nil {
		return nil, err
	}
	if ei == nil {
		return rejected(i, "content type %q has no editor interface until it is published", i.ContentType), nil
	}

	control := domain.Control{
		FieldID:         i.FieldID,
		WidgetID:        i.WidgetID,
		WidgetNamespace: i.WidgetNamespace,
		Settings:        i.Settings,
	}
	replaced := false
	for idx := range ei.Controls {
		if ei.Controls[idx].FieldID == i.FieldID {
			ei.Controls[idx] = control
			replaced = true
		}
	}
	if !replaced {
		ei.Controls = append(ei.Controls, control)
	}

	req := saveEditorInterface(st, i.ContentType, ei)
	st.putEditor(i.ContentType, ei)
	return newBatch(i, req), nil
}

var _ Intent = (*ChangeFieldControlIntent)(nil)
