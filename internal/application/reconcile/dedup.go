package reconcile

import (
	"github.com/turtacn/ChemReconcile/internal/domain/record"
)

// MarkExactDuplicates demotes later occurrences of the same validated
// InChIKey to rejected with an exact_duplicate reason.  The first occurrence
// in slice order keeps its validated status; every member of a duplicate set,
// keeper included, is tagged with the same 1-based group number.  The input
// slice is not modified.
func MarkExactDuplicates(verdicts []record.Verdict) []record.Verdict {
	out := make([]record.Verdict, len(verdicts))
	copy(out, verdicts)

	groups := make(map[string][]int)
	var order []string
	for i, v := range out {
		if v.Status != record.StatusValidated || v.ValidatedInChIKey == "" {
			continue
		}
		key := v.ValidatedInChIKey
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	groupNum := 0
	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		groupNum++
		for pos, idx := range members {
			g := groupNum
			out[idx].ExactDuplicateGroup = &g
			if pos > 0 {
				out[idx].Status = record.StatusRejected
				out[idx].RejectionReason = record.ReasonExactDuplicate
			}
		}
	}
	return out
}

// MarkStereoDuplicates groups the verdicts that survived the exact pass by
// the 14-character canonical key and demotes later group members to the
// stereo_duplicate status.  Stereo duplicates are candidate stereoisomers,
// not errors, so no rejection reason is set.  Group numbering restarts at 1
// independently of the exact pass.  The input slice is not modified.
func MarkStereoDuplicates(verdicts []record.Verdict) []record.Verdict {
	out := make([]record.Verdict, len(verdicts))
	copy(out, verdicts)

	groups := make(map[string][]int)
	var order []string
	for i, v := range out {
		if v.Status != record.StatusValidated || v.CanonicalKey14 == "" {
			continue
		}
		key := v.CanonicalKey14
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	groupNum := 0
	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		groupNum++
		for pos, idx := range members {
			g := groupNum
			out[idx].StereoDuplicateGroup = &g
			if pos > 0 {
				out[idx].Status = record.StatusStereoDuplicate
			}
		}
	}
	return out
}
