package intent

import (
	"net/http"
	"strconv"

	"github.com/satishbabariya/ctf-migrate/internal/core/migration/domain"
)

// ContentTypeBody is the wire body of a content type save.
type ContentTypeBody struct {
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	DisplayField string         `json:"displayField,omitempty"`
	Fields       []domain.Field `json:"fields"`
}

// EditorInterfaceBody is the wire body of an editor interface save.
type EditorInterfaceBody struct {
	Controls []domain.Control `json:"controls"`
}

func versionHeaders(version int) map[string]string {
	if version <= 0 {
		return nil
	}
	return map[string]string{domain.VersionHeader: strconv.Itoa(version)}
}

func saveContentType(st *PlanState, ct *domain.ContentType) domain.RemoteRequest {
	return domain.RemoteRequest{
		Method:  http.MethodPut,
		URL:     st.path(ct.Sys.ID),
		Headers: versionHeaders(ct.Sys.Version),
		Body: ContentTypeBody{
			Name:         ct.Name,
			Description:  ct.Description,
			DisplayField: ct.DisplayField,
			Fields:       ct.Fields,
		},
	}
}

func publishContentType(st *PlanState, id string, version int) domain.RemoteRequest {
	return domain.RemoteRequest{
		Method:  http.MethodPut,
		URL:     st.path(id) + "/published",
		Headers: versionHeaders(version),
	}
}

func unpublishContentType(st *PlanState, id string, version int) domain.RemoteRequest {
	return domain.RemoteRequest{
		Method:  http.MethodDelete,
		URL:     st.path(id) + "/published",
		Headers: versionHeaders(version),
	}
}

func deleteContentType(st *PlanState, id string, version int) domain.RemoteRequest {
	return domain.RemoteRequest{
		Method:  http.MethodDelete,
		URL:     st.path(id),
		Headers: versionHeaders(version),
	}
}

func saveEditorInterface(st *PlanState, id string, ei *domain.EditorInterface) domain.RemoteRequest {
	return domain.RemoteRequest{
		Method:  http.MethodPut,
		URL:     st.path(id) + "/editor_interface",
		Headers: versionHeaders(ei.Sys.Version),
		Body:    EditorInterfaceBody{Controls: ei.Controls},
	}
}

// saveAndPublish emits the save and publish requests for ct and records both.
func saveAndPublish(st *PlanState, ct *domain.ContentType) []domain.RemoteRequest {
	save := saveContentType(st, ct)
	st.put(ct)
	saved, _ := st.ContentType(ct.Sys.ID)
	publish := publishContentType(st, ct.Sys.ID, saved.Sys.Version)
	st.publish(ct.Sys.ID)
	return []domain.RemoteRequest{save, publish}
}
