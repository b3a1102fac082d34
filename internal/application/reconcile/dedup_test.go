package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemReconcile/internal/domain/record"
)

func validatedVerdict(row int, inchikey string) record.Verdict {
	return record.Verdict{
		RowNumber:         row,
		Status:            record.StatusValidated,
		ValidatedInChIKey: inchikey,
		CanonicalKey14:    inchikey[:14],
	}
}

func TestMarkExactDuplicates(t *testing.T) {
	in := []record.Verdict{
		validatedVerdict(1, "CSCPPACGZOOCGX-UHFFFAOYSA-N"),
		validatedVerdict(2, "XLYOFNOQVPJJNP-UHFFFAOYSA-N"),
		validatedVerdict(3, "CSCPPACGZOOCGX-UHFFFAOYSA-N"),
		validatedVerdict(4, "CSCPPACGZOOCGX-UHFFFAOYSA-N"),
	}

	out := MarkExactDuplicates(in)

	// First occurrence keeps its status but joins the group.
	assert.Equal(t, record.StatusValidated, out[0].Status)
	require.NotNil(t, out[0].ExactDuplicateGroup)
	assert.Equal(t, 1, *out[0].ExactDuplicateGroup)

	// Unique verdict untouched.
	assert.Equal(t, record.StatusValidated, out[1].Status)
	assert.Nil(t, out[1].ExactDuplicateGroup)

	// Later occurrences demoted into the same group.
	for _, v := range []record.Verdict{out[2], out[3]} {
		assert.Equal(t, record.StatusRejected, v.Status)
		assert.Equal(t, record.ReasonExactDuplicate, v.RejectionReason)
		require.NotNil(t, v.ExactDuplicateGroup)
		assert.Equal(t, 1, *v.ExactDuplicateGroup)
	}

	// Input slice must not be mutated.
	assert.Equal(t, record.StatusValidated, in[2].Status)
	assert.Nil(t, in[2].ExactDuplicateGroup)
}

func TestMarkExactDuplicatesGroupNumbering(t *testing.T) {
	in := []record.Verdict{
		validatedVerdict(1, "AAAAAAAAAAAAAA-UHFFFAOYSA-N"),
		validatedVerdict(2, "BBBBBBBBBBBBBB-UHFFFAOYSA-N"),
		validatedVerdict(3, "BBBBBBBBBBBBBB-UHFFFAOYSA-N"),
		validatedVerdict(4, "AAAAAAAAAAAAAA-UHFFFAOYSA-N"),
	}

	out := MarkExactDuplicates(in)

	// Groups numbered by first appearance, starting at 1.
	require.NotNil(t, out[0].ExactDuplicateGroup)
	assert.Equal(t, 1, *out[0].ExactDuplicateGroup)
	require.NotNil(t, out[1].ExactDuplicateGroup)
	assert.Equal(t, 2, *out[1].ExactDuplicateGroup)
}

func TestMarkExactDuplicatesIgnoresNonValidated(t *testing.T) {
	in := []record.Verdict{
		validatedVerdict(1, "CSCPPACGZOOCGX-UHFFFAOYSA-N"),
		{RowNumber: 2, Status: record.StatusRejected, RejectionReason: record.ReasonInvalidCAS,
			ValidatedInChIKey: "CSCPPACGZOOCGX-UHFFFAOYSA-N"},
	}

	out := MarkExactDuplicates(in)

	assert.Nil(t, out[0].ExactDuplicateGroup)
	assert.Equal(t, record.ReasonInvalidCAS, out[1].RejectionReason)
}

func TestMarkStereoDuplicates(t *testing.T) {
	in := []record.Verdict{
		validatedVerdict(1, "CSCPPACGZOOCGX-UHFFFAOYSA-N"),
		validatedVerdict(2, "CSCPPACGZOOCGX-ZZZZZZZZSA-N"),
		validatedVerdict(3, "XLYOFNOQVPJJNP-UHFFFAOYSA-N"),
	}

	out := MarkStereoDuplicates(in)

	// First of the stereo pair stays validated.
	assert.Equal(t, record.StatusValidated, out[0].Status)
	require.NotNil(t, out[0].StereoDuplicateGroup)
	assert.Equal(t, 1, *out[0].StereoDuplicateGroup)

	// Second is demoted, with no rejection reason: it is not an error.
	assert.Equal(t, record.StatusStereoDuplicate, out[1].Status)
	assert.Equal(t, record.RejectionReason(""), out[1].RejectionReason)
	require.NotNil(t, out[1].StereoDuplicateGroup)
	assert.Equal(t, 1, *out[1].StereoDuplicateGroup)

	assert.Equal(t, record.StatusValidated, out[2].Status)
	assert.Nil(t, out[2].StereoDuplicateGroup)
}

func TestStereoPassSkipsExactDuplicateLosers(t *testing.T) {
	in := []record.Verdict{
		validatedVerdict(1, "CSCPPACGZOOCGX-UHFFFAOYSA-N"),
		validatedVerdict(2, "CSCPPACGZOOCGX-UHFFFAOYSA-N"),
		validatedVerdict(3, "CSCPPACGZOOCGX-ZZZZZZZZSA-N"),
	}

	out := MarkStereoDuplicates(MarkExactDuplicates(in))

	// Row 2 lost the exact pass; the stereo pass must not regroup it.
	assert.Equal(t, record.StatusRejected, out[1].Status)
	assert.Nil(t, out[1].StereoDuplicateGroup)

	// Rows 1 and 3 form the stereo group.
	assert.Equal(t, record.StatusValidated, out[0].Status)
	require.NotNil(t, out[0].StereoDuplicateGroup)
	assert.Equal(t, record.StatusStereoDuplicate, out[2].Status)
	require.NotNil(t, out[2].StereoDuplicateGroup)
	assert.Equal(t, *out[0].StereoDuplicateGroup, *out[2].StereoDuplicateGroup)
}

func TestDuplicateGroupCountersIndependent(t *testing.T) {
	in := []record.Verdict{
		validatedVerdict(1, "AAAAAAAAAAAAAA-UHFFFAOYSA-N"),
		validatedVerdict(2, "AAAAAAAAAAAAAA-UHFFFAOYSA-N"),
		validatedVerdict(3, "BBBBBBBBBBBBBB-UHFFFAOYSA-N"),
		validatedVerdict(4, "BBBBBBBBBBBBBB-ZZZZZZZZSA-N"),
	}

	out := MarkStereoDuplicates(MarkExactDuplicates(in))

	// The exact pass used group 1; the stereo counter restarts at 1 anyway.
	require.NotNil(t, out[2].StereoDuplicateGroup)
	assert.Equal(t, 1, *out[2].StereoDuplicateGroup)
}
