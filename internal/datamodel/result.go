package datamodel

import (
	"path/filepath"
	"strings"
)

// Provenance records where a product came from: the association pool and
// table that defined the processing, and the inputs blended into it.
type Provenance struct {
	PoolName      string   `json:"pool_name,omitempty"`
	TableName     string   `json:"table_name,omitempty"`
	AssociationID string   `json:"association_id,omitempty"`
	// Inputs lists every contributing artifact or result, in the order
	// they were combined.
	Inputs []string `json:"inputs,omitempty"`
}

// AmiResult is the fringe-analysis data model. Per-member results carry
// the quantities extracted from a single exposure; averaged and normalized
// products carry the same vectors combined across members.
type AmiResult struct {
	// Name identifies the exposure or product the result describes.
	Name string `json:"name"`

	// ClosurePhases holds the closure phase for each baseline triangle,
	// in radians.
	ClosurePhases []float64 `json:"closure_phases"`

	// FringeAmplitudes holds the normalized fringe amplitude per baseline.
	FringeAmplitudes []float64 `json:"fringe_amplitudes"`

	Meta Provenance `json:"meta"`
}

// StampProvenance sets the association-level provenance references.
// It overwrites any previous pool/table/ID values and leaves the blended
// input list untouched.
func (r *AmiResult) StampProvenance(poolName, tableName, asnID string) {
	r.Meta.PoolName = poolName
	r.Meta.TableName = tableName
	r.Meta.AssociationID = asnID
}

// Close releases the result's data vectors. Reusing a closed result is
// not supported.
func (r *AmiResult) Close() {
	r.ClosurePhases = nil
	r.FringeAmplitudes = nil
}

// ArtifactRef is an opaque handle to a persisted product, stable across a
// run. The current store uses file paths.
type ArtifactRef string

// Base returns the artifact's base name without directory or extension.
func (a ArtifactRef) Base() string {
	base := filepath.Base(string(a))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// BlendInput identifies one contributor to a blended product: either a
// persisted artifact or an in-memory result.
type BlendInput struct {
	Ref    ArtifactRef
	Result *AmiResult
}

// FromRef wraps a persisted artifact as a blend input.
func FromRef(ref ArtifactRef) BlendInput {
	return BlendInput{Ref: ref}
}

// FromResult wraps an in-memory result as a blend input.
func FromResult(r *AmiResult) BlendInput {
	return BlendInput{Result: r}
}
