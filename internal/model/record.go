package model

// ExtractionMethod records which branch produced a record's identifier.
type ExtractionMethod string

const (
	MethodHumanCurated ExtractionMethod = "human_curated"
	MethodByName       ExtractionMethod = "by_name"
)

// SoftwareOrgRecord is one row of the minimal output file.
type SoftwareOrgRecord struct {
	SoftwareName     string           `json:"software_name" csv:"software_name"`
	GitHubSlug       string           `json:"github_slug" csv:"github_slug"`
	RORID            string           `json:"ror_id" csv:"ror_id"`
	OrgName          string           `json:"org_name" csv:"org_name"`
	ExtractionMethod ExtractionMethod `json:"extraction_methods" csv:"extraction_methods"`
}
