package intent

import (
	"fmt"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

// CreateContentTypeIntent creates and publishes a new content type.
type CreateContentTypeIntent struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description,omitempty"`
	DisplayField string         `yaml:"displayField,omitempty"`
	Fields       []domain.Field `yaml:"fields,omitempty"`
}

func (i *CreateContentTypeIntent) Kind() Kind            { return CreateContentType }
func (i *CreateContentTypeIntent) ContentTypeID() string { return i.ID }
func (i *CreateContentTypeIntent) IsDestructive() bool   { return false }
func (i *CreateContentTypeIntent) Describe() string {
	return fmt.Sprintf("Create content type %s", i.ID)
}

func (i *CreateContentTypeIntent) Validate() []*domain.ValidationError {
	var errs []*domain.ValidationError
	if i.ID == "" {
		return append(errs, invalid(i, "content type is missing an id"))
	}
	if i.Name == "" {
		errs = append(errs, invalid(i, "content type %q is missing a name", i.ID))
	}

	seen := make(map[string]bool, len(i.Fields))
	for _, f := range i.Fields {
		errs = append(errs, validateField(i, f)...)
		if f.ID != "" && seen[f.ID] {
			errs = append(errs, invalid(i, "field %q is declared twice", f.ID))
		}
		seen[f.ID] = true
	}
	if i.DisplayField != "" && !seen[i.DisplayField] {
		errs = append(errs, invalid(i, "displayField %q is not a field of %q", i.DisplayField, i.ID))
	}
	return errs
}

func (i *CreateContentTypeIntent) ToBatch(st *PlanState) (*domain.ExecutionBatch, error) {
	existing, err := st.ContentType(i.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return rejected(i, "content type %q already exists", i.ID), nil
	}

	ct := &domain.ContentType{
		Sys:          domain.Sys{ID: i.ID},
		Name:         i.Name,
		Description:  i.Description,
		DisplayField: i.DisplayField,
		Fields:       append([]domain.Field(nil), i.Fields...),
	}
	if ct.Fields == nil {
		ct.Fields = []domain.Field{}
	}
	return newBatch(i, saveAndPublish(st, ct)...), nil
}

// EditContentTypeIntent updates the properties of an existing content type.
// Nil properties are left unchanged.
type EditContentTypeIntent struct {
	ID           string  `yaml:"id"`
	Name         *string `yaml:"name,omitempty"`
	Description  *string `yaml:"description,omitempty"`
	DisplayField *string `yaml:"displayField,omitempty"`
}

func (i *EditContentTypeIntent) Kind() Kind            { return EditContentType }
func (i *EditContentTypeIntent) ContentTypeID() string { return i.ID }
func (i *EditContentTypeIntent) IsDestructive() bool   { return false }
func (i *EditContentTypeIntent) Describe() string {
	return fmt.Sprintf("Update content type %s", i.ID)
}

func (i *EditContentTypeIntent) Validate() []*domain.ValidationError {
	if i.ID == "" {
		return []*domain.ValidationError{invalid(i, "content type is missing an id")}
	}
	if i.Name == nil && i.Description == nil && i.DisplayField == nil {
		return []*domain.ValidationError{invalid(i, "nothing to change on %q", i.ID)}
	}
	if i.Name != nil && *i.Name == "" {
		return []*domain.ValidationError{invalid(i, "content type %q cannot have an empty name", i.ID)}
	}
	return nil
}

func (i *EditContentTypeIntent) ToBatch(st *PlanState) (*domain.ExecutionBatch, error) {
	ct, err := st.ContentType(i.ID)
	if err != nil {
		return nil, err
	}
	if ct == nil {
		return rejected(i, "content type %q does not exist", i.ID), nil
	}

	if i.Name != nil {
		ct.Name = *i.Name
	}
	if i.Description != nil {
		ct.Description = *i.Description
	}
	if i.DisplayField != nil {
		if _, ok := ct.Field(*i.DisplayField); !ok && *i.DisplayField != "" {
			return rejected(i, "displayField %q is not a field of %q", *i.DisplayField, i.ID), nil
		}
		ct.DisplayField = *i.DisplayField
	}
	return newBatch(i, saveAndPublish(st, ct)...), nil
}

// DeleteContentTypeIntent unpublishes and deletes a content type.
type DeleteContentTypeIntent struct {
	ID string `yaml:"id"`
}

func (i *DeleteContentTypeIntent) Kind() Kind            { return DeleteContentType }
func (i *DeleteContentTypeIntent) ContentTypeID() string { return i.ID }
func (i *DeleteContentTypeIntent) IsDestructive() bool   { return true }
func (i *DeleteContentTypeIntent) Describe() string {
	return fmt.Sprintf("Delete content type %s", i.ID)
}

func (i *DeleteContentTypeIntent) Validate() []*domain.ValidationError {
	if i.ID == "" {
		return []*domain.ValidationError{invalid(i, "content type is missing an id")}
	}
	return nil
}

func (i *DeleteContentTypeIntent) ToBatch(st *PlanState) (*domain.ExecutionBatch, error) {
	ct, err := st.ContentType(i.ID)
	if err != nil {
		return nil, err
	}
	if ct == nil {
		return rejected(i, "content type %q does not exist", i.ID), nil
	}

	var requests []domain.RemoteRequest
	if ct.Sys.IsPublished() {
		requests = append(requests, unpublishContentType(st, i.ID, ct.Sys.Version))
		st.unpublish(i.ID)
		ct, _ = st.ContentType(i.ID)
	}
	requests = append(requests, deleteContentType(st, i.ID, ct.Sys.Version))
	st.remove(i.ID)
	return newBatch(i, requests...), nil
}

var (
	_ Intent = (*CreateContentTypeIntent)(nil)
	_ Intent = (*EditContentTypeIntent)(nil)
	_ Intent = (*DeleteContentTypeIntent)(nil)
)
