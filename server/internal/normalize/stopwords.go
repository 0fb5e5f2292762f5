package normalize

// SummaryMinLength is the rune length at or below which summary words are ignored.
const SummaryMinLength = 2

// Stopwords are common words and job-posting boilerplate excluded from
// summary word counts.
var Stopwords = map[string]struct{}{
	"the": {}, "and": {}, "to": {}, "of": {}, "in": {}, "for": {},
	"a": {}, "with": {}, "on": {}, "is": {}, "at": {}, "by": {},
	"an": {}, "as": {}, "or": {}, "from": {}, "that": {}, "are": {},
	"our": {}, "this": {}, "be": {}, "you": {}, "will": {}, "job": {},
	"role": {}, "youll": {}, "your": {}, "we": {}, "include": {}, "apply": {},
}
