// Package reconcile folds curated and machine-proposed identifiers into
// minimal software/organization records.
package reconcile

import (
	"github.com/sells-group/ror-cli/internal/model"
	"github.com/sells-group/ror-cli/internal/normalize"
	"github.com/sells-group/ror-cli/internal/slug"
)

// OrgNameDelimiter separates multiple affiliations in an organization name.
const OrgNameDelimiter = ";"

// Policy applies the reconciliation rules using a configured Normalizer.
type Policy struct {
	norm *normalize.Normalizer
}

// New creates a Policy. A nil normalizer uses normalize.Default().
func New(n *normalize.Normalizer) *Policy {
	if n == nil {
		n = normalize.Default()
	}
	return &Policy{norm: n}
}

// CuratedID returns the row's human-curated identifier, if any.
func (p *Policy) CuratedID(row model.Row) (string, bool) {
	return p.norm.NormalizeID(row.Value(model.ColCuratedROR))
}

// NeedsLookup reports whether a row should be sent to the registry: it has
// no curated identifier and carries an organization name. The returned name
// is the trimmed query value.
func (p *Policy) NeedsLookup(row model.Row) (string, bool) {
	if _, ok := p.CuratedID(row); ok {
		return "", false
	}
	return p.norm.Normalize(row.Value(model.ColParentOrgName))
}

// ProposedID returns the machine-proposed identifier, preferring res over
// the row's proposed_ror_id column.
func (p *Policy) ProposedID(row model.Row, res *model.Resolution) (string, bool) {
	id, _, ok := p.proposal(row, res)
	return id, ok
}

// proposal returns the proposed identifier and name from one source: res
// when it carries an identifier, otherwise the row's proposed columns.
func (p *Policy) proposal(row model.Row, res *model.Resolution) (id, name string, ok bool) {
	if res != nil {
		if id, ok := p.norm.NormalizeID(res.ProposedID); ok {
			name, _ := p.norm.Normalize(res.ProposedName)
			return id, name, true
		}
	}
	name, _ = p.norm.Normalize(row.Value(model.ColProposedName))
	id, ok = p.norm.NormalizeID(row.Value(model.ColProposedRORID))
	return id, name, ok
}

// Eligible reports whether the row yields an output record.
func (p *Policy) Eligible(row model.Row, res *model.Resolution) bool {
	_, method := p.identifier(row, res)
	return method != ""
}

// Reconcile builds the output record for a row. ok is false for rows with
// neither a curated nor a proposed identifier.
func (p *Policy) Reconcile(row model.Row, res *model.Resolution) (model.SoftwareOrgRecord, bool) {
	if !p.Eligible(row, res) {
		return model.SoftwareOrgRecord{}, false
	}

	id, method := p.identifier(row, res)
	return model.SoftwareOrgRecord{
		SoftwareName:     row.Value(model.ColResourceName),
		GitHubSlug:       slug.Extract(row.Value(model.ColResourceURL), row.Value(model.ColAlternateURLs)),
		RORID:            id,
		OrgName:          p.orgName(row, res),
		ExtractionMethod: method,
	}, true
}

// identifier picks curated over proposed. Curated wins even when both are
// present.
func (p *Policy) identifier(row model.Row, res *model.Resolution) (string, model.ExtractionMethod) {
	if id, ok := p.CuratedID(row); ok {
		return id, model.MethodHumanCurated
	}
	if id, ok := p.ProposedID(row, res); ok {
		return id, model.MethodByName
	}
	return "", ""
}

func (p *Policy) orgName(row model.Row, res *model.Resolution) string {
	name, ok := p.norm.Normalize(row.Value(model.ColParentOrgName))
	if !ok {
		_, name, _ = p.proposal(row, res)
	}
	return normalize.FirstOf(name, OrgNameDelimiter)
}
