package intent

import (
	"fmt"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

// CreateFieldIntent appends a field to an existing content type.
type CreateFieldIntent struct {
	ContentType string       `yaml:"contentTypeId"`
	Field       domain.Field `yaml:",inline"`
}

func (i *CreateFieldIntent) Kind() Kind            { return CreateField }
func (i *CreateFieldIntent) ContentTypeID() string { return i.ContentType }
func (i *CreateFieldIntent) IsDestructive() bool   { return false }
func (i *CreateFieldIntent) Describe() string {
	return fmt.Sprintf("Create field %s on %s", i.Field.ID, i.ContentType)
}

func (i *CreateFieldIntent) Validate() []*domain.ValidationError {
	if i.ContentType == "" {
		return []*domain.ValidationError{invalid(i, "field is missing a contentTypeId")}
	}
	return validateField(i, i.Field)
}

func (i *CreateFieldIntent) ToBatch(st *PlanState) (*domain.ExecutionBatch, error) {
	ct, err := st.ContentType(i.ContentType)
	if err != nil {
		return nil, err
	}
	if ct == nil {
		return rejected(i, "content type %q does not exist", i.ContentType), nil
	}
	if _, ok := ct.Field(i.Field.ID); ok {
		return rejected(i, "field %q already exists on %q", i.Field.ID, i.ContentType), nil
	}

	ct.Fields = append(ct.Fields, i.Field)
	return newBatch(i, saveAndPublish(st, ct)...), nil
}

// EditFieldIntent updates an existing field. Nil properties are left unchanged.
type EditFieldIntent struct {
	ContentType  string            `yaml:"contentTypeId"`
	FieldID      string            `yaml:"id"`
	NewID        string            `yaml:"newId,omitempty"`
	Name         *string           `yaml:"name,omitempty"`
	Required     *bool             `yaml:"required,omitempty"`
	Localized    *bool             `yaml:"localized,omitempty"`
	Disabled     *bool             `yaml:"disabled,omitempty"`
	Omitted      *bool             `yaml:"omitted,omitempty"`
	Validations  *[]map[string]any `yaml:"validations,omitempty"`
	DefaultValue map[string]any    `yaml:"defaultValue,omitempty"`
}

func (i *EditFieldIntent) Kind() Kind            { return EditField }
func (i *EditFieldIntent) ContentTypeID() string { return i.ContentType }
func (i *EditFieldIntent) IsDestructive() bool   { return false }
func (i *EditFieldIntent) Describe() string {
	return fmt.Sprintf("Update field %s on %s", i.FieldID, i.ContentType)
}

func (i *EditFieldIntent) Validate() []*domain.ValidationError {
	switch {
	case i.ContentType == "":
		return []*domain.ValidationError{invalid(i, "field is missing a contentTypeId")}
	case i.FieldID == "":
		return []*domain.ValidationError{invalid(i, "field is missing an id")}
	case i.Name != nil && *i.Name == "":
		return []*domain.ValidationError{invalid(i, "field %q cannot have an empty name", i.FieldID)}
	}
	return nil
}

func (i *EditFieldIntent) ToBatch(st *PlanState) (*domain.ExecutionBatch, error) {
	ct, err := st.ContentType(i.ContentType)
	if err != nil {
		return nil, err
	}
	if ct == nil {
		return rejected(i, "content type %q does not exist", i.ContentType), nil
	}
	f, ok := ct.Field(i.FieldID)
	if !ok {
		return rejected(i, "field %q does not exist on %q", i.FieldID, i.ContentType), nil
	}

	if i.NewID != "" && i.NewID != i.FieldID {
		if _, taken := ct.Field(i.NewID); taken {
			return rejected(i, "field %q already exists on %q", i.NewID, i.ContentType), nil
		}
		f.ID = i.NewID
		if ct.DisplayField == i.FieldID {
			ct.DisplayField = i.NewID
		}
	}
	if i.Name != nil {
		f.Name = *i.Name
	}
	if i.Required != nil {
		f.Required = *i.Required
	}
	if i.Localized != nil {
		f.Localized = *i.Localized
	}
	if i.Disabled != nil {
		f.Disabled = *i.Disabled
	}
	if i.Omitted != nil {
		f.Omitted = *i.Omitted
	}
	if i.Validations != nil {
		f.Validations = *i.Validations
	}
	if i.DefaultValue != nil {
		f.DefaultValue = i.DefaultValue
	}
	return newBatch(i, saveAndPublish(st, ct)...), nil
}

// DeleteFieldIntent removes a field. The field is omitted and published
// before it is deleted, as the remote service requires.
type DeleteFieldIntent struct {
	ContentType string `yaml:"contentTypeId"`
	FieldID     string `yaml:"id"`
}

func (i *DeleteFieldIntent) Kind() Kind            { return DeleteField }
func (i *DeleteFieldIntent) ContentTypeID() string { return i.ContentType }
func (i *DeleteFieldIntent) IsDestructive() bool   { return true }
func (i *DeleteFieldIntent) Describe() string {
	return fmt.Sprintf("Delete field %s on %s", i.FieldID, i.ContentType)
}

func (i *DeleteFieldIntent) Validate() []*domain.ValidationError {
	switch {
	case i.ContentType == "":
		return []*domain.ValidationError{invalid(i, "field is missing a contentTypeId")}
	case i.FieldID == "":
		return []*domain.ValidationError{invalid(i, "field is missing an id")}
	}
	return nil
}

func (i *DeleteFieldIntent) ToBatch(st *PlanState) (*domain.ExecutionBatch, error) {
	ct, err := st.ContentType(i.ContentType)
	if err != nil {
		return nil, err
	}
	if ct == nil {
		return rejected(i, "content type %q does not exist", i.ContentType), nil
	}
	f, ok := ct.Field(i.FieldID)
	if !ok {
		return rejected(i, "field %q does not exist on %q", i.FieldID, i.ContentType), nil
	}
	if ct.DisplayField == i.FieldID {
		return rejected(i, "field %q is the displayField of %q", i.FieldID, i.ContentType), nil
	}

	f.Omitted = true
	requests := saveAndPublish(st, ct)

	ct, _ = st.ContentType(i.ContentType)
	f, _ = ct.Field(i.FieldID)
	f.Deleted = true
	requests = append(requests, saveAndPublish(st, ct)...)
	return newBatch(i, requests...), nil
}

var (
	_ Intent = (*CreateFieldIntent)(nil)
	_ Intent = (*EditFieldIntent)(nil)
	_ Intent = (*DeleteFieldIntent)(nil)
)
