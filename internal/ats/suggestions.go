package ats

const (
	suggestionContact    = "Add contact information including email, phone, and LinkedIn"
	suggestionEducation  = "Include an education section with your degree and institution"
	suggestionExperience = "Add a work experience or internship section"
	suggestionSkills     = "List your technical skills in a dedicated section"
	suggestionProjects   = "Showcase projects you have developed or contributed to"
	suggestionKeywords   = "Include more relevant keywords from your target roles"
	suggestionVerbs      = "Use action verbs to describe your achievements"
	suggestionMetrics    = "Quantify achievements with numbers and metrics"
)

const lowKeywordThreshold = 5
const lowScoreThreshold = 60

// Suggestions derives the ordered overall-suggestion list from the analysis
// signals. Section messages come first in flag order, then the keyword
// message when fewer than five keywords matched, then two generic messages
// when the score is below sixty. The list is empty only when all sections are
// present, at least five keywords matched, and the score is sixty or higher.
func Suggestions(sections SectionFlags, foundKeywords, score int) []string {
	out := []string{}
	if !sections.HasContactInfo {
		out = append(out, suggestionContact)
	}
	if !sections.HasEducation {
		out = append(out, suggestionEducation)
	}
	if !sections.HasExperience {
		out = append(out, suggestionExperience)
	}
	if !sections.HasSkills {
		out = append(out, suggestionSkills)
	}
	if !sections.HasProjects {
		out = append(out, suggestionProjects)
	}
	if foundKeywords < lowKeywordThreshold {
		out = append(out, suggestionKeywords)
	}
	if score < lowScoreThreshold {
		out = append(out, suggestionVerbs, suggestionMetrics)
	}
	return out
}
