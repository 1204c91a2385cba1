package document

import (
	"context"
	"errors"
	"fmt"

	docflow "github.com/gbacskai/docflow4-sub000"
	"github.com/gbacskai/docflow4-sub000/record"
)

// Repository reads and writes documents and document types through the
// versioning coordinator. All writes go through the coordinator's
// create-new-version path; nothing here mutates an item in place.
type Repository struct {
	coord *record.Coordinator
}

// NewRepository creates a Repository over the coordinator.
func NewRepository(coord *record.Coordinator) *Repository {
	return &Repository{coord: coord}
}

// Create writes a new document record and returns the stored view.
func (r *Repository) Create(ctx context.Context, d *Document) (*Document, error) {
	var opts []record.CreateOption
	if d.ID != "" {
		opts = append(opts, record.WithID(d.ID))
	}
	it, err := r.coord.Create(ctx, docflow.CollectionDocuments, d.ToPayload(), opts...)
	if err != nil {
		return nil, err
	}
	return FromItem(it), nil
}

// UpdateData appends a new document version with the patch merged into
// the form data. Other document attributes are carried over unchanged.
func (r *Repository) UpdateData(ctx context.Context, docID string, patch map[string]any) (*Document, error) {
	current, err := r.Latest(ctx, docID)
	if err != nil {
		return nil, err
	}

	data := record.ClonePayload(current.Data)
	if data == nil {
		data = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		data[k] = v
	}
	current.Data = data

	it, err := r.coord.Create(ctx, docflow.CollectionDocuments, current.ToPayload(), record.WithID(docID))
	if err != nil {
		return nil, err
	}
	return FromItem(it), nil
}

// Latest returns the active version of one document.
func (r *Repository) Latest(ctx context.Context, docID string) (*Document, error) {
	it, err := r.coord.Latest(ctx, docflow.CollectionDocuments, docID)
	if err != nil {
		return nil, err
	}
	return FromItem(it), nil
}

// ForProject returns the active version of every document belonging to
// the project, sorted by record id.
func (r *Repository) ForProject(ctx context.Context, projectID string) ([]*Document, error) {
	items, err := r.coord.AllLatest(ctx, docflow.CollectionDocuments)
	if err != nil {
		return nil, err
	}

	docs := make([]*Document, 0, len(items))
	for _, it := range items {
		d := FromItem(it)
		if d.ProjectID == projectID {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

// History returns every version of a document, newest first.
func (r *Repository) History(ctx context.Context, docID string) ([]*Document, error) {
	items, err := r.coord.History(ctx, docflow.CollectionDocuments, docID)
	if err != nil {
		return nil, err
	}
	docs := make([]*Document, len(items))
	for i, it := range items {
		docs[i] = FromItem(it)
	}
	return docs, nil
}

// SaveType writes a new version of a document type.
func (r *Repository) SaveType(ctx context.Context, t *Type) (*Type, error) {
	var opts []record.CreateOption
	if t.ID != "" {
		opts = append(opts, record.WithID(t.ID))
	}
	it, err := r.coord.Create(ctx, docflow.CollectionDocumentTypes, t.ToPayload(), opts...)
	if err != nil {
		return nil, err
	}
	return TypeFromItem(it), nil
}

// TypeByID returns the active version of one document type.
func (r *Repository) TypeByID(ctx context.Context, typeID string) (*Type, error) {
	it, err := r.coord.Latest(ctx, docflow.CollectionDocumentTypes, typeID)
	if errors.Is(err, docflow.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", docflow.ErrTypeNotFound, typeID)
	}
	if err != nil {
		return nil, err
	}
	return TypeFromItem(it), nil
}

// Types returns the active version of every document type, keyed by
// storage id.
func (r *Repository) Types(ctx context.Context) (map[string]*Type, error) {
	items, err := r.coord.AllLatest(ctx, docflow.CollectionDocumentTypes)
	if err != nil {
		return nil, err
	}
	types := make(map[string]*Type, len(items))
	for _, it := range items {
		t := TypeFromItem(it)
		types[t.ID] = t
	}
	return types, nil
}
