package bootstrap

import (
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

func pruneField(f domain.Field) domain.Field {
	if f.Items != nil {
		items := *f.Items
		items.Validations = pruneList(items.Validations)
		f.Items = &items
	}
	f.Validations = pruneList(f.Validations)
	f.DefaultValue = pruneMap(f.DefaultValue)
	return f
}

func pruneList(list []map[string]any) []map[string]any {
	var out []map[string]any
	for _, m := range list {
		if p := pruneMap(m); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// pruneMap drops nil and empty values recursively. It returns nil when
// nothing is left.
func pruneMap(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if p, ok := prune(v); ok {
			out[k] = p
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func prune(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		p := pruneMap(val)
		return p, p != nil
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if p, ok := prune(item); ok {
				out = append(out, p)
			}
		}
		return out, len(out) > 0
	case string:
		return val, val != ""
	default:
		return val, true
	}
}
