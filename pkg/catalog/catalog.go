package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ObjectType is the discriminator distinguishing the record kinds the
// catalog holds. The set is closed: every record carries exactly one of
// the constants below, and ids are unique across all types.
type ObjectType string

const (
	// TypeContainer is an idea or project grouping other records. Only
	// containers participate in the structural parent/child hierarchy.
	TypeContainer ObjectType = "container"
	// TypeTask is a unit of work, usually attached to a container.
	TypeTask ObjectType = "task"
	// TypeExternalIssue mirrors a ticket in an external tracker.
	TypeExternalIssue ObjectType = "external_issue"
	// TypeMessage is a mail or chat message pulled into the catalog.
	TypeMessage ObjectType = "message"
	// TypeFile is an uploaded document whose body lives in the content
	// store.
	TypeFile ObjectType = "file"
)

// ParseObjectType validates a wire-level type string.
func ParseObjectType(s string) (ObjectType, error) {
	t := ObjectType(s)
	switch t {
	case TypeContainer, TypeTask, TypeExternalIssue, TypeMessage, TypeFile:
		return t, nil
	}
	return "", fmt.Errorf("unknown object type %q", s)
}

// Properties is the property bag shared by all record kinds. Title,
// Description and Tags are the well-known fields; anything else a
// connector wants to keep rides along in Extra.
type Properties struct {
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Record is one catalog entry. The embedding itself never leaves the
// store; HasEmbedding only signals whether the worker has processed the
// record yet.
type Record struct {
	ID              string     `json:"id"`
	Type            ObjectType `json:"type"`
	Properties      Properties `json:"properties"`
	ParentID        *string    `json:"parentId,omitempty"`
	InheritsContext bool       `json:"inheritsContext,omitempty"`
	ContentKey      string     `json:"-"`
	ContentType     string     `json:"-"`
	HasEmbedding    bool       `json:"hasEmbedding"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Neighbor is one nearest-neighbor hit. Distance is the raw metric
// value from the vector index; converting it to a similarity score is
// the caller's policy.
type Neighbor struct {
	ID         string
	Distance   float64
	Properties Properties
}

// Relation is one structural parent/child link between containers.
type Relation struct {
	ID              string
	InheritsContext bool
}

// ErrNotFound is returned when an id does not exist in the catalog.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the read surface the network resolver consumes: point
// lookups and type-filtered nearest-neighbor queries.
type ObjectStore interface {
	FetchByID(ctx context.Context, id string) (*Record, error)
	NearestNeighbors(ctx context.Context, objectType ObjectType, seedID string, limit int) ([]Neighbor, error)
}

// HierarchyStore resolves structural container relations, independent
// of the vector index. ParentOf returns (nil, nil) when the record has
// no parent.
type HierarchyStore interface {
	ParentOf(ctx context.Context, id string) (*Relation, error)
	ChildrenOf(ctx context.Context, id string) ([]Relation, error)
}

// CreateObjectParams carries the caller-supplied fields of a new record.
type CreateObjectParams struct {
	Type            ObjectType
	Properties      Properties
	ParentID        *string
	InheritsContext bool
}

// UpdateObjectParams carries a partial update. Nil fields are left
// untouched; a ParentID pointing at the empty string clears the parent.
type UpdateObjectParams struct {
	Title           *string
	Description     *string
	Tags            *[]string
	Extra           *map[string]string
	ParentID        *string
	InheritsContext *bool
}

// Store is the full catalog surface: the resolver reads plus the
// mutations the HTTP layer and the embedding worker need.
type Store interface {
	ObjectStore
	HierarchyStore

	CreateObject(ctx context.Context, params CreateObjectParams) (*Record, error)
	ListObjects(ctx context.Context, objectType ObjectType, limit, offset int) ([]Record, error)
	UpdateObject(ctx context.Context, id string, params UpdateObjectParams) (*Record, error)
	DeleteObject(ctx context.Context, id string) (*Record, error)

	SetEmbedding(ctx context.Context, id string, embedding []float32) error
	SetContent(ctx context.Context, id string, key string, contentType string) error
}
