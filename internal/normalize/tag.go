package normalize

import "github.com/wakala/partner-recon/internal/domain"

const (
	typeDollarReceived = "dollar received"
	typeCancel         = "cancel"
)

// applyTags runs the shared eligibility policy over a batch, in order:
//
//  1. rows that already failed a derivation stay excluded, always
//  2. rows without an identifier cannot be matched
//  3. "Dollar Received" rows are informational, never reconciled
//  4. when several rows share one identifier, only "Cancel" rows keep
//     their eligibility; everything else in the group is forced out
//
// Rules 1 and 2 are hard exclusions: the duplicate rule never restores a
// row they removed. Each excluded row keeps exactly one skip reason.
func applyTags(records []*domain.NormalizedRecord) {
	groups := make(map[string][]*domain.NormalizedRecord)

	for _, rec := range records {
		switch {
		case rec.SkipReason == domain.SkipRowError:
			rec.Flag = domain.FlagShouldNotReconcile
		case rec.Identifier == "":
			rec.Flag = domain.FlagShouldNotReconcile
			rec.SkipReason = domain.SkipMissingIdentifier
		case typeKey(rec.Type) == typeDollarReceived:
			rec.Flag = domain.FlagShouldNotReconcile
			rec.SkipReason = domain.SkipTypeExcluded
		default:
			rec.Flag = domain.FlagShouldReconcile
		}
		// Failed rows still count toward duplicate groups; they just
		// can never be made eligible again.
		if rec.Identifier != "" {
			groups[rec.Identifier] = append(groups[rec.Identifier], rec)
		}
	}

	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		for _, rec := range group {
			if typeKey(rec.Type) == typeCancel {
				continue
			}
			if rec.Flag == domain.FlagShouldReconcile {
				rec.Flag = domain.FlagShouldNotReconcile
				rec.SkipReason = domain.SkipDuplicatePin
			}
		}
	}
}
