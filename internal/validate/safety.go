package validate

import "strings"

// Classifier judges whether executing an object's probe is unlikely to
// mutate data. Implementations are heuristics, not guarantees; a stricter
// tokenizing classifier can be substituted without touching callers.
type Classifier interface {
	// SideEffectFree reports whether the definition looks safe to execute.
	SideEffectFree(definition string) bool
}

// dangerousKeywords are scanned for as plain substrings, not tokens.
// A false positive on a keyword embedded in an identifier or a string
// literal is accepted: the bias is always toward NOT executing.
var dangerousKeywords = []string{
	"UPDATE",
	"INSERT",
	"DELETE",
	"CREATE",
	"DROP",
	"EXEC",
	"EXECUTE",
}

// KeywordClassifier is the conservative substring-scan classifier.
// Zero value is ready to use.
type KeywordClassifier struct{}

// SideEffectFree normalizes the text to upper case, drops the leading
// CREATE of the defining statement, and scans for dangerous keywords.
func (KeywordClassifier) SideEffectFree(definition string) bool {
	text := strings.ToUpper(definition)

	// Every definition starts with CREATE PROCEDURE / VIEW / FUNCTION;
	// that occurrence says nothing about the body.
	if i := strings.Index(text, "CREATE"); i >= 0 {
		text = text[:i] + text[i+len("CREATE"):]
	}

	for _, kw := range dangerousKeywords {
		if strings.Contains(text, kw) {
			return false
		}
	}
	return true
}
