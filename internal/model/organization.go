package model

// OrganizationCandidate is one organization returned by a registry lookup.
// Chosen marks the registry's own pre-selected best match.
type OrganizationCandidate struct {
	Name   string `json:"name"`
	ID     string `json:"id"`
	Chosen bool   `json:"chosen"`
}

// Resolution is the proposed name and identifier for one row. Both fields
// are empty, or both come from the same candidate.
type Resolution struct {
	ProposedName string `json:"proposed_name"`
	ProposedID   string `json:"proposed_ror_id"`
}

// ResolutionFrom maps a selected candidate onto a Resolution.
func ResolutionFrom(c OrganizationCandidate) Resolution {
	return Resolution{ProposedName: c.Name, ProposedID: c.ID}
}

// IsEmpty reports whether no identifier was proposed.
func (r Resolution) IsEmpty() bool {
	return r.ProposedID == ""
}

// Columns returns the values appended to an augmented row.
func (r Resolution) Columns() []string {
	return []string{r.ProposedName, r.ProposedID}
}
