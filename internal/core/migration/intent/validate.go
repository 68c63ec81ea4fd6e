package intent

import (
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

// FieldTypes lists the field types the remote service accepts.
var FieldTypes = map[string]bool{
	"Symbol":       true,
	"Text":         true,
	"RichText":     true,
	"Integer":      true,
	"Number":       true,
	"Date":         true,
	"Location":     true,
	"Boolean":      true,
	"Link":         true,
	"Array":        true,
	"Object":       true,
	"ResourceLink": true,
}

var linkTypes = map[string]bool{"Entry": true, "Asset": true}

var itemTypes = map[string]bool{"Symbol": true, "Link": true, "ResourceLink": true}

func validateField(in Intent, f domain.Field) []*domain.ValidationError {
	var errs []*domain.ValidationError
	if f.ID == "" {
		return append(errs, invalid(in, "field is missing an id"))
	}
	if f.Name == "" {
		errs = append(errs, invalid(in, "field %q is missing a name", f.ID))
	}
	if !FieldTypes[f.Type] {
		errs = append(errs, invalid(in, "field %q has unknown type %q", f.ID, f.Type))
		return errs
	}

	switch f.Type {
	case "Link":
		if !linkTypes[f.LinkType] {
			errs = append(errs, invalid(in, "field %q of type Link requires linkType Entry or Asset", f.ID))
		}
	case "Array":
		if f.Items == nil {
			errs = append(errs, invalid(in, "field %q of type Array requires items", f.ID))
			break
		}
		if !itemTypes[f.Items.Type] {
			errs = append(errs, invalid(in, "field %q has unsupported items type %q", f.ID, f.Items.Type))
		}
		if f.Items.Type == "Link" && !linkTypes[f.Items.LinkType] {
			errs = append(errs, invalid(in, "items of field %q require linkType Entry or Asset", f.ID))
		}
	}
	return errs
}
