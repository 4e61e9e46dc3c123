package scenery

import (
	"errors"
	"fmt"
)

var (
	ErrMaterialNotFound = errors.New("material not found")
	ErrNoMatch          = errors.New("no runtime mesh matches saved record")
	ErrUnknownNodeKind  = errors.New("unknown node kind")
)

// SchemaError reports a malformed top-level scene document. It is fatal.
type SchemaError struct {
	Message string
	Err     error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scene schema: %s: %v", e.Message, e.Err)
	}
	return "scene schema: " + e.Message
}

func (e *SchemaError) Unwrap() error { return e.Err }

// NodeInstantiationError reports one node that could not be materialized.
// Siblings are unaffected.
type NodeInstantiationError struct {
	NodeID string
	Kind   NodeKind
	Err    error
}

func (e *NodeInstantiationError) Error() string {
	return fmt.Sprintf("instantiate %s node %q: %v", e.Kind, e.NodeID, e.Err)
}

func (e *NodeInstantiationError) Unwrap() error { return e.Err }

// AssetLoadError reports a model or texture that failed to load.
type AssetLoadError struct {
	URL string
	Err error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("load asset %q: %v", e.URL, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// OverrideApplicationError reports one material property that could not be
// applied. Property is empty when the whole material was skipped.
type OverrideApplicationError struct {
	Material string
	Property string
	Err      error
}

func (e *OverrideApplicationError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("override %q: %v", e.Material, e.Err)
	}
	return fmt.Sprintf("override %q.%s: %v", e.Material, e.Property, e.Err)
}

func (e *OverrideApplicationError) Unwrap() error { return e.Err }
