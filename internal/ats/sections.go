package ats

import "regexp"

// SectionFlags records which structural resume sections were detected in the
// extracted text. Each flag is derived independently; all combinations are
// valid.
type SectionFlags struct {
	HasContactInfo bool `json:"hasContactInfo"`
	HasEducation   bool `json:"hasEducation"`
	HasExperience  bool `json:"hasExperience"`
	HasSkills      bool `json:"hasSkills"`
	HasProjects    bool `json:"hasProjects"`
}

var (
	contactPattern    = regexp.MustCompile(`(?i)email|phone|linkedin|github`)
	educationPattern  = regexp.MustCompile(`(?i)education|degree|university|college|bachelor|master`)
	experiencePattern = regexp.MustCompile(`(?i)experience|work|employment|intern|job`)
	skillsPattern     = regexp.MustCompile(`(?i)skills|technologies|tools|proficient`)
	projectsPattern   = regexp.MustCompile(`(?i)project|developed|built|created|implemented`)
)

// DetectSections scans text for the five structural resume sections.
func DetectSections(text string) SectionFlags {
	return SectionFlags{
		HasContactInfo: contactPattern.MatchString(text),
		HasEducation:   educationPattern.MatchString(text),
		HasExperience:  experiencePattern.MatchString(text),
		HasSkills:      skillsPattern.MatchString(text),
		HasProjects:    projectsPattern.MatchString(text),
	}
}

// Count returns how many of the five flags are set.
func (f SectionFlags) Count() int {
	n := 0
	for _, set := range []bool{f.HasContactInfo, f.HasEducation, f.HasExperience, f.HasSkills, f.HasProjects} {
		if set {
			n++
		}
	}
	return n
}
