package intent

import (
	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

type tracked struct {
	contentType *domain.ContentType
	editor      *domain.EditorInterface
	err         error
}

// PlanState is the compiler's prediction of remote state while a plan is built.
// Intents read from it and record the effects of the requests they emit, so a
// later intent sees the versions produced by earlier ones.
type PlanState struct {
	spaceID       string
	environmentID string
	types         map[string]*tracked
}

// NewPlanState creates an empty PlanState for an environment.
func NewPlanState(spaceID, environmentID string) *PlanState {
	return &PlanState{
		spaceID:       spaceID,
		environmentID: environmentID,
		types:         make(map[string]*tracked),
	}
}

// Track records the fetched remote state of a content type. A nil content
// type means it does not exist; a non-nil err means it could not be fetched.
func (s *PlanState) Track(id string, ct *domain.ContentType, editor *domain.EditorInterface, err error) {
	s.types[id] = &tracked{
		contentType: cloneContentType(ct),
		editor:      cloneEditor(editor),
		err:         err,
	}
}

// Tracked reports whether id has been recorded.
func (s *PlanState) Tracked(id string) bool {
	_, ok := s.types[id]
	return ok
}

// ContentType returns a copy of the predicted content type, or nil if absent.
func (s *PlanState) ContentType(id string) (*domain.ContentType, error) {
	t, ok := s.types[id]
	if !ok {
		return nil, nil
	}
	if t.err != nil {
		return nil, t.err
	}
	return cloneContentType(t.contentType), nil
}

// EditorInterface returns a copy of the predicted editor interface, or nil.
func (s *PlanState) EditorInterface(id string) (*domain.EditorInterface, error) {
	t, ok := s.types[id]
	if !ok {
		return nil, nil
	}
	if t.err != nil {
		return nil, t.err
	}
	return cloneEditor(t.editor), nil
}

func (s *PlanState) path(id string) string {
	return domain.ContentTypePath(s.spaceID, s.environmentID, id)
}

func (s *PlanState) entry(id string) *tracked {
	t, ok := s.types[id]
	if !ok {
		t = &tracked{}
		s.types[id] = t
	}
	return t
}

// put records a content type save. Fields flagged deleted are dropped.
func (s *PlanState) put(ct *domain.ContentType) {
	t := s.entry(ct.Sys.ID)
	next := cloneContentType(ct)
	next.Fields = next.Fields[:0]
	for _, f := range ct.Fields {
		if !f.Deleted {
			next.Fields = append(next.Fields, f)
		}
	}
	if t.contentType == nil {
		next.Sys.Version = 1
		next.Sys.PublishedVersion = 0
	} else {
		next.Sys.Version = t.contentType.Sys.Version + 1
		next.Sys.PublishedVersion = t.contentType.Sys.PublishedVersion
	}
	t.contentType = next
}

// publish records a publish and syncs editor controls with the field list.
func (s *PlanState) publish(id string) {
	t := s.entry(id)
	if t.contentType == nil {
		return
	}
	t.contentType.Sys.PublishedVersion = t.contentType.Sys.Version
	t.contentType.Sys.Version++

	if t.editor == nil {
		t.editor = &domain.EditorInterface{Sys: domain.Sys{ID: "default", Version: 1}}
	}
	t.editor.Controls = syncControls(t.editor.Controls, t.contentType.Fields)
}

func (s *PlanState) unpublish(id string) {
	t := s.entry(id)
	if t.contentType == nil {
		return
	}
	t.contentType.Sys.PublishedVersion = 0
	t.contentType.Sys.Version++
}

func (s *PlanState) remove(id string) {
	t := s.entry(id)
	t.contentType = nil
	t.editor = nil
}

func (s *PlanState) putEditor(id string, editor *domain.EditorInterface) {
	t := s.entry(id)
	next := cloneEditor(editor)
	next.Sys.Version = editor.Sys.Version + 1
	t.editor = next
}

// syncControls keeps one control per field, in field order.
func syncControls(controls []domain.Control, fields []domain.Field) []domain.Control {
	byField := make(map[string]domain.Control, len(controls))
	for _, c := range controls {
		byField[c.FieldID] = c
	}
	synced := make([]domain.Control, 0, len(fields))
	for _, f := range fields {
		if c, ok := byField[f.ID]; ok {
			synced = append(synced, c)
			continue
		}
		synced = append(synced, domain.Control{FieldID: f.ID})
	}
	return synced
}

func cloneContentType(ct *domain.ContentType) *domain.ContentType {
	if ct == nil {
		return nil
	}
	c := *ct
	c.Fields = append([]domain.Field(nil), ct.Fields...)
	return &c
}

func cloneEditor(ei *domain.EditorInterface) *domain.EditorInterface {
	if ei == nil {
		return nil
	}
	c := *ei
	c.Controls = append([]domain.Control(nil), ei.Controls...)
	return &c
}
