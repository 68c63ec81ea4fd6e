// Package intent defines the declarative schema changes a migration script is made of.
package intent

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

// Kind identifies an intent variant. It is also the key used in script files.
type Kind string

const (
	// CreateContentType creates and publishes a content type.
	CreateContentType Kind = "createContentType"
	// EditContentType updates the properties of a content type.
	EditContentType Kind = "editContentType"
	// DeleteContentType unpublishes and deletes a content type.
	DeleteContentType Kind = "deleteContentType"
	// CreateField adds a field to a content type.
	CreateField Kind = "createField"
	// EditField updates a field of a content type.
	EditField Kind = "editField"
	// DeleteField omits and then removes a field.
	DeleteField Kind = "deleteField"
	// ChangeFieldControl sets the editor widget of a field.
	ChangeFieldControl Kind = "changeFieldControl"
)

// Intent is one declarative schema change.
type Intent interface {
	// Kind returns the variant of the intent.
	Kind() Kind

	// Describe returns a human-readable description.
	Describe() string

	// ContentTypeID returns the content type the intent operates on.
	ContentTypeID() string

	// Validate checks the shape of the intent without consulting remote state.
	Validate() []*domain.ValidationError

	// ToBatch compiles the intent against the predicted remote state and
	// records its effects. Problems with the referenced state are reported
	// as validation errors on the batch; a returned error means the state
	// itself could not be determined.
	ToBatch(state *PlanState) (*domain.ExecutionBatch, error)

	// IsDestructive returns true if the change may cause data loss.
	IsDestructive() bool
}

// List is an ordered list of intents, encoded as a YAML sequence of
// single-key mappings keyed by Kind.
type List []Intent

// UnmarshalYAML decodes a sequence of tagged intents.
func (l *List) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*l = nil
		return nil
	}
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected a list of intents", value.Line)
	}

	list := make(List, 0, len(value.Content))
	for _, item := range value.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
			return fmt.Errorf("line %d: each intent must be a mapping with exactly one key", item.Line)
		}
		kind := Kind(item.Content[0].Value)
		in, err := newIntent(kind)
		if err != nil {
			return fmt.Errorf("line %d: %w", item.Line, err)
		}
		if err := item.Content[1].Decode(in); err != nil {
			return fmt.Errorf("line %d: failed to decode %s: %w", item.Line, kind, err)
		}
		list = append(list, in)
	}
	*l = list
	return nil
}

// MarshalYAML encodes the list as tagged single-key mappings.
func (l List) MarshalYAML() (interface{}, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, in := range l {
		body := &yaml.Node{}
		if err := body.Encode(in); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", in.Kind(), err)
		}
		seq.Content = append(seq.Content, &yaml.Node{
			Kind: yaml.MappingNode,
			Content: []*yaml.Node{
				{Kind: yaml.ScalarNode, Value: string(in.Kind())},
				body,
			},
		})
	}
	return seq, nil
}

func newIntent(kind Kind) (Intent, error) {
	switch kind {
	case CreateContentType:
		return &CreateContentTypeIntent{}, nil
	case EditContentType:
		return &EditContentTypeIntent{}, nil
	case DeleteContentType:
		return &DeleteContentTypeIntent{}, nil
	case CreateField:
		return &CreateFieldIntent{}, nil
	case EditField:
		return &EditFieldIntent{}, nil
	case DeleteField:
		return &DeleteFieldIntent{}, nil
	case ChangeFieldControl:
		return &ChangeFieldControlIntent{}, nil
	default:
		return nil, fmt.Errorf("unknown intent %q", kind)
	}
}

func invalid(in Intent, format string, args ...any) *domain.ValidationError {
	return &domain.ValidationError{Intent: in.Describe(), Message: fmt.Sprintf(format, args...)}
}

// newBatch returns a batch for in carrying requests.
func newBatch(in Intent, requests ...domain.RemoteRequest) *domain.ExecutionBatch {
	return &domain.ExecutionBatch{Intent: in.Describe(), Requests: requests}
}

// rejected returns a batch carrying a single validation error.
func rejected(in Intent, format string, args ...any) *domain.ExecutionBatch {
	b := newBatch(in)
	b.ValidationErrors = append(b.ValidationErrors, invalid(in, format, args...))
	return b
}
