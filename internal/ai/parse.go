package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/writediary/writediary/internal/correction"
)

// extractJSON returns the first balanced {...} span in s. Models sometimes
// wrap their JSON answer in prose even when told not to.
func extractJSON(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in model output")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object in model output")
}

// rawCorrectionResult is the loosely-typed intermediate the model output is
// parsed into before validation and coercion.
type rawCorrectionResult struct {
	CorrectedText any             `json:"correctedText"`
	Corrections   json.RawMessage `json:"corrections"`
}

type rawCorrection struct {
	Type        any `json:"type"`
	Before      any `json:"before"`
	After       any `json:"after"`
	Explanation any `json:"explanation"`
}

// decodeCorrection validates and normalizes a correction payload.
// correctedText must be a JSON string; a type mismatch fails the attempt so
// the invoker retries. Correction entries are coerced: unknown types become
// "grammar", missing strings become "".
func decodeCorrection(payload string) (*correction.Result, error) {
	jsonStr, err := extractJSON(payload)
	if err != nil {
		return nil, err
	}

	var raw rawCorrectionResult
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("parsing model JSON: %w", err)
	}

	corrected, ok := raw.CorrectedText.(string)
	if !ok {
		return nil, fmt.Errorf("correctedText is %T, want string", raw.CorrectedText)
	}

	result := &correction.Result{
		CorrectedText: corrected,
		Corrections:   []correction.Correction{},
	}

	if len(raw.Corrections) > 0 {
		var entries []rawCorrection
		// A non-array corrections field is treated as absent, not fatal.
		if json.Unmarshal(raw.Corrections, &entries) == nil {
			for _, e := range entries {
				result.Corrections = append(result.Corrections, normalizeCorrection(e))
			}
		}
	}
	return result, nil
}

func normalizeCorrection(e rawCorrection) correction.Correction {
	typ := asString(e.Type)
	if !correction.ValidType(typ) {
		typ = correction.TypeGrammar
	}
	return correction.Correction{
		Type:        typ,
		Before:      asString(e.Before),
		After:       asString(e.After),
		Explanation: asString(e.Explanation),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// decodeTranscript normalizes an OCR payload. The no-legible-text sentinel
// decodes to "", which is a valid result, not an error.
func decodeTranscript(payload string) (string, error) {
	text := strings.TrimSpace(payload)
	if text == correction.NoReadableText {
		return "", nil
	}
	return text, nil
}
