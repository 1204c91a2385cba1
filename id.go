package docflow

import "github.com/gbacskai/docflow4-sub000/id"

// ID is the primary identifier type for all Docflow entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
