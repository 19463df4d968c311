package correction

// Mode selects the depth of an AI correction pass.
type Mode string

const (
	ModeBeginner     Mode = "beginner"
	ModeIntermediate Mode = "intermediate"
	ModeAdvanced     Mode = "advanced"
)

// Valid reports whether m is a known correction mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeBeginner, ModeIntermediate, ModeAdvanced:
		return true
	}
	return false
}

// Correction types the model is allowed to emit.
const (
	TypeGrammar    = "grammar"
	TypeSpelling   = "spelling"
	TypeStyle      = "style"
	TypeVocabulary = "vocabulary"
)

// ValidType reports whether t is one of the allowed correction types.
func ValidType(t string) bool {
	switch t {
	case TypeGrammar, TypeSpelling, TypeStyle, TypeVocabulary:
		return true
	}
	return false
}

// Correction is a single edit the model made to the diary text.
type Correction struct {
	Type        string `json:"type"`
	Before      string `json:"before"`
	After       string `json:"after"`
	Explanation string `json:"explanation"`
}

// Result is the structured output of a correction pass. When the text needs
// no corrections, CorrectedText equals the original and Corrections is empty.
type Result struct {
	CorrectedText string       `json:"correctedText"`
	Corrections   []Correction `json:"corrections"`
}
