package datamodel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlenderRecordsInputsInOrder(t *testing.T) {
	store := newTestStore(t)
	blender := NewBlender(store, nil)

	ref1, err := store.Save(stamped("sci1", "a1"), "sci1", SuffixAmi, "a1")
	require.NoError(t, err)
	ref2, err := store.Save(stamped("sci2", "a1"), "sci2", SuffixAmi, "a1")
	require.NoError(t, err)

	target := stamped("avg", "a1")
	require.NoError(t, blender.Blend(target, []BlendInput{FromRef(ref1), FromRef(ref2)}))
	assert.Equal(t, []string{"sci1_ami", "sci2_ami"}, target.Meta.Inputs)

	// Reversed input order must produce reversed lineage.
	target2 := stamped("avg", "a1")
	require.NoError(t, blender.Blend(target2, []BlendInput{FromRef(ref2), FromRef(ref1)}))
	assert.Equal(t, []string{"sci2_ami", "sci1_ami"}, target2.Meta.Inputs)
}

func TestBlenderInMemoryInputs(t *testing.T) {
	blender := NewBlender(newTestStore(t), nil)

	sciAvg := stamped("targ_avg", "a1")
	psfAvg := stamped("psf_avg", "a1")
	norm := stamped("norm", "a1")

	require.NoError(t, blender.Blend(norm, []BlendInput{FromResult(sciAvg), FromResult(psfAvg)}))
	assert.Equal(t, []string{"targ_avg", "psf_avg"}, norm.Meta.Inputs)
}

func TestBlenderErrors(t *testing.T) {
	store := newTestStore(t)
	blender := NewBlender(store, nil)

	t.Run("no inputs", func(t *testing.T) {
		err := blender.Blend(stamped("t", "a1"), nil)
		var berr *BlendError
		require.True(t, errors.As(err, &berr))
	})

	t.Run("nil target", func(t *testing.T) {
		err := blender.Blend(nil, []BlendInput{FromResult(stamped("x", "a1"))})
		var berr *BlendError
		require.True(t, errors.As(err, &berr))
	})

	t.Run("empty input slot", func(t *testing.T) {
		err := blender.Blend(stamped("t", "a1"), []BlendInput{{}})
		var berr *BlendError
		require.True(t, errors.As(err, &berr))
	})

	t.Run("unreadable artifact", func(t *testing.T) {
		err := blender.Blend(stamped("t", "a1"), []BlendInput{FromRef("missing_ami.json")})
		var berr *BlendError
		require.True(t, errors.As(err, &berr))
	})

	t.Run("cross association input", func(t *testing.T) {
		ref, err := store.Save(stamped("other", "a2"), "other", SuffixAmi, "a2")
		require.NoError(t, err)

		err = blender.Blend(stamped("t", "a1"), []BlendInput{FromRef(ref)})
		var berr *BlendError
		require.True(t, errors.As(err, &berr))
		assert.Contains(t, berr.Message, "association")
	})
}

func stamped(name, asnID string) *AmiResult {
	r := testResult(name)
	r.StampProvenance("pool", "table", asnID)
	return r
}
