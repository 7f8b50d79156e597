package resolver

import (
	"github.com/sells-group/ror-cli/internal/model"
	"github.com/sells-group/ror-cli/pkg/ror"
)

// SelectBest picks one candidate: the first flagged as chosen by the
// registry, otherwise the first in registry ranking order.
func SelectBest(candidates []model.OrganizationCandidate) (model.OrganizationCandidate, bool) {
	if len(candidates) == 0 {
		return model.OrganizationCandidate{}, false
	}
	for _, c := range candidates {
		if c.Chosen {
			return c, true
		}
	}
	return candidates[0], true
}

// Candidates converts a registry response into ranked candidates.
func Candidates(resp *ror.SearchResponse) []model.OrganizationCandidate {
	if resp == nil || resp.NumberOfResults < 1 {
		return nil
	}
	out := make([]model.OrganizationCandidate, 0, len(resp.Items))
	for _, it := range resp.Items {
		out = append(out, model.OrganizationCandidate{
			Name:   it.Organization.DisplayName(),
			ID:     it.Organization.ID,
			Chosen: it.Chosen,
		})
	}
	return out
}
