// Package ats implements the resume ATS-analysis heuristics: keyword
// matching against a fixed skill vocabulary, structural section detection,
// score calculation, and improvement suggestions. All functions are pure and
// safe for concurrent use.
package ats

// Vocabulary is the reference skill list scanned for in extracted resume
// text. Matching is deliberately permissive substring containment, mirroring
// how commercial ATS scanners match ("java" also hits inside "javascript").
// Order is significant: found and missing lists follow declaration order.
var Vocabulary = []string{
	"javascript",
	"python",
	"java",
	"c++",
	"react",
	"angular",
	"vue",
	"node.js",
	"express",
	"mongodb",
	"sql",
	"mysql",
	"postgresql",
	"html",
	"css",
	"typescript",
	"git",
	"docker",
	"kubernetes",
	"aws",
	"azure",
	"machine learning",
	"data analysis",
	"agile",
	"scrum",
	"rest api",
	"graphql",
	"redux",
	"spring",
	"django",
	"flask",
	"communication",
	"leadership",
	"teamwork",
	"problem solving",
}

// KeywordSuggestions are generic keyword tips attached to every analysis.
var KeywordSuggestions = []string{
	"Tailor your keywords to the specific job description",
	"Use the exact skill names that appear in the job posting",
	"Group technical skills in a dedicated skills section",
}
