package model

import (
	"fmt"
	"strings"
)

// ContentID is the globally unique key of a Tree, Loadout or Build record.
// It stays valid for the lifetime of the record even when the content it
// points at is later superseded by a copy.
type ContentID string

// ContentType identifies which table a ContentID lives in.
type ContentType string

const (
	ContentTree    ContentType = "TREE"
	ContentLoadout ContentType = "LOADOUT"
	ContentBuild   ContentType = "BUILD"
)

// ParseContentType accepts the upper or lower case form ("tree", "LOADOUT").
func ParseContentType(s string) (ContentType, error) {
	switch ContentType(strings.ToUpper(strings.TrimSpace(s))) {
	case ContentTree:
		return ContentTree, nil
	case ContentLoadout:
		return ContentLoadout, nil
	case ContentBuild:
		return ContentBuild, nil
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

// RecordKind is the tag of a Record.
type RecordKind int

const (
	// KindMalformed marks a record with neither content nor import reference.
	// Stores never hand such a record out; it exists so callers can switch
	// exhaustively.
	KindMalformed RecordKind = iota
	KindMaterialized
	KindStub
)

func (k RecordKind) String() string {
	switch k {
	case KindMaterialized:
		return "materialized"
	case KindStub:
		return "stub"
	}
	return "malformed"
}

// Record is either a materialized record (Content set) or an import stub
// (ImportID set). Use Materialized and Stub to build one.
type Record[T any] struct {
	ID       ContentID
	ImportID ContentID
	Content  *T

	// Loadout is the loadout reference stored on this hop of a Build chain.
	// Build stubs may carry one too; it is empty for trees and loadouts.
	Loadout ContentID
}

// Materialized wraps content under id.
func Materialized[T any](id ContentID, content *T) *Record[T] {
	return &Record[T]{ID: id, Content: content}
}

// Stub creates an import stub that points at source.
func Stub[T any](id, source ContentID) *Record[T] {
	return &Record[T]{ID: id, ImportID: source}
}

// Kind reports which variant the record holds. Content wins over ImportID.
func (r *Record[T]) Kind() RecordKind {
	switch {
	case r.Content != nil:
		return KindMaterialized
	case r.ImportID != "":
		return KindStub
	default:
		return KindMalformed
	}
}

// IsStub reports whether the record only points at its import source.
func (r *Record[T]) IsStub() bool {
	return r.Kind() == KindStub
}
