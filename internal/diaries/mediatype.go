package diaries

import "strings"

// DetectMediaType guesses an image's media type from the magic bytes as they
// appear in base64. Unknown payloads are treated as JPEG, the dominant
// camera format.
func DetectMediaType(base64Data string) string {
	switch {
	case strings.HasPrefix(base64Data, "/9j/"):
		return "image/jpeg"
	case strings.HasPrefix(base64Data, "iVBORw"):
		return "image/png"
	case strings.HasPrefix(base64Data, "R0lGOD"):
		return "image/gif"
	case strings.HasPrefix(base64Data, "UklGR"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// StripDataURL removes a data URL prefix such as "data:image/png;base64,"
// when present, leaving the bare base64 payload.
func StripDataURL(data string) string {
	if _, rest, ok := strings.Cut(data, ","); ok && strings.HasPrefix(data, "data:") {
		return rest
	}
	return data
}
