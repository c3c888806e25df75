package datamodel

import (
	"fmt"
	"log/slog"
)

// BlendError reports an inconsistent blend input set.
type BlendError struct {
	Target  string
	Message string
}

// Error implements the error interface.
func (e *BlendError) Error() string {
	return fmt.Sprintf("metadata blend failed for %s: %s", e.Target, e.Message)
}

// Blender merges provenance metadata from a set of contributing inputs
// into an output product. Blending is deterministic: the recorded input
// list preserves the order the inputs were supplied in.
type Blender struct {
	store  *FileStore
	logger *slog.Logger
}

// NewBlender creates a Blender that resolves persisted inputs through
// the given store.
func NewBlender(store *FileStore, logger *slog.Logger) *Blender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Blender{
		store:  store,
		logger: logger.With(slog.String("component", "blender")),
	}
}

// Blend records every input's identity on the target, in order, and
// checks that all inputs belong to the same association as the target.
// The target is mutated in place.
func (b *Blender) Blend(target *AmiResult, inputs []BlendInput) error {
	if target == nil {
		return &BlendError{Target: "<nil>", Message: "no target result"}
	}
	if len(inputs) == 0 {
		return &BlendError{Target: target.Name, Message: "no inputs to blend"}
	}

	names := make([]string, 0, len(inputs))
	for i, in := range inputs {
		result := in.Result
		var name string
		if result != nil {
			name = result.Name
		} else {
			if in.Ref == "" {
				return &BlendError{
					Target:  target.Name,
					Message: fmt.Sprintf("input %d has neither artifact nor result", i),
				}
			}
			loaded, err := b.store.Load(in.Ref)
			if err != nil {
				return &BlendError{
					Target:  target.Name,
					Message: fmt.Sprintf("input %s unreadable: %v", in.Ref.Base(), err),
				}
			}
			result = loaded
			name = in.Ref.Base()
		}

		if result.Meta.AssociationID != "" &&
			target.Meta.AssociationID != "" &&
			result.Meta.AssociationID != target.Meta.AssociationID {
			return &BlendError{
				Target: target.Name,
				Message: fmt.Sprintf("input %s belongs to association %s, target to %s",
					name, result.Meta.AssociationID, target.Meta.AssociationID),
			}
		}

		names = append(names, name)
	}

	target.Meta.Inputs = names

	b.logger.Debug("metadata_blended",
		slog.String("target", target.Name),
		slog.Int("input_count", len(names)))

	return nil
}
