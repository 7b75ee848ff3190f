// Package collections declares the four replicated record types of the
// planner application and binds each to the generic replication engine.
//
// A binding is pure configuration: the table, the key field name, and which
// payload columns are persisted as JSON-encoded text. The generic handlers
// and the collection store do the rest.
package collections

import (
	"github.com/plannerhub/planner-sync/internal/logger"
	"github.com/plannerhub/planner-sync/internal/replication"
	"github.com/plannerhub/planner-sync/internal/store"
)

// FolderSpec describes the folders collection. Keyed by a client-visible
// "id"; plain text payload.
var FolderSpec = store.TableSpec{
	Table:     "folders",
	KeyColumn: "id",
	KeyField:  "id",
	Columns: []store.Column{
		{Name: "title", Field: "title"},
		{Name: "parent", Field: "parent"},
	},
}

// ItemSpec describes the items collection. Items are keyed by a
// client-generated UUID and carry a JSON-encoded prerequisite list.
var ItemSpec = store.TableSpec{
	Table:     "items",
	KeyColumn: "uuid",
	KeyField:  "uuid",
	KeyIsUUID: true,
	Columns: []store.Column{
		{Name: "title", Field: "title"},
		{Name: "semester", Field: "semester"},
		{Name: "folder", Field: "folder"},
		{Name: "dependson", Field: "dependson", JSON: true},
	},
}

// PlannerDataSpec describes the plannerdata collection: one document per
// planner with a JSON-encoded list of included semesters.
var PlannerDataSpec = store.TableSpec{
	Table:     "plannerdata",
	KeyColumn: "id",
	KeyField:  "id",
	Columns: []store.Column{
		{Name: "name", Field: "name"},
		{Name: "included_semesters", Field: "includedSemesters", JSON: true},
	},
}

// SemesterSpec describes the semesters collection.
var SemesterSpec = store.TableSpec{
	Table:     "semesters",
	KeyColumn: "id",
	KeyField:  "id",
	Columns: []store.Column{
		{Name: "title", Field: "title"},
		{Name: "start_date", Field: "startDate"},
		{Name: "end_date", Field: "endDate"},
	},
}

// Specs lists every replicated collection in registration order.
var Specs = []store.TableSpec{FolderSpec, ItemSpec, PlannerDataSpec, SemesterSpec}

// NewBindings constructs one collection binding per spec over the shared
// database connection.
func NewBindings(db *store.DB, log *logger.Logger) []replication.CollectionBinding {
	bindings := make([]replication.CollectionBinding, 0, len(Specs))
	for _, spec := range Specs {
		bindings = append(bindings, store.NewCollectionStore(db, spec, log))
	}
	return bindings
}
