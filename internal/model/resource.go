package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ResourceKind distinguishes the two schedulable resource axes.
type ResourceKind string

const (
	ResourcePractitioner ResourceKind = "practitioner"
	ResourceRoom         ResourceKind = "room"
)

// Valid reports whether k is one of the known kinds.
func (k ResourceKind) Valid() bool {
	return k == ResourcePractitioner || k == ResourceRoom
}

// Resource is a practitioner or a room an appointment can be bound to.
type Resource struct {
	Kind ResourceKind `json:"kind"`
	ID   int64        `json:"id"`
}

// PractitionerResource returns the practitioner resource with the given id.
func PractitionerResource(id int64) Resource {
	return Resource{Kind: ResourcePractitioner, ID: id}
}

// RoomResource returns the room resource with the given id.
func RoomResource(id int64) Resource {
	return Resource{Kind: ResourceRoom, ID: id}
}

// IsZero reports whether the resource is unset.
func (r Resource) IsZero() bool {
	return r.Kind == "" && r.ID == 0
}

// String encodes the resource as "kind:id". Only used on wire boundaries.
func (r Resource) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// ParseResource decodes the "kind:id" form produced by String.
func ParseResource(s string) (Resource, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return Resource{}, fmt.Errorf("invalid resource %q", s)
	}
	r := Resource{Kind: ResourceKind(kind)}
	if !r.Kind.Valid() {
		return Resource{}, fmt.Errorf("invalid resource kind %q", kind)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return Resource{}, fmt.Errorf("invalid resource id %q", id)
	}
	r.ID = n
	return r, nil
}

// Practitioner is an entry of the practitioner catalog.
type Practitioner struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `json:"is_active"`
}

// DisplayName returns "First Last" or whichever part is set.
func (p Practitioner) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Resource returns the practitioner as a schedulable resource.
func (p Practitioner) Resource() Resource {
	return PractitionerResource(p.ID)
}

// Room is an entry of the room catalog.
type Room struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// Resource returns the room as a schedulable resource.
func (r Room) Resource() Resource {
	return RoomResource(r.ID)
}
