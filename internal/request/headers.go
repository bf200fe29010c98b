package request

import "strings"

// ParseHeaders turns a blob of copy-pasted header lines into a header map.
// Each line is split at the first colon; the key and value are trimmed of
// surrounding whitespace. Lines without a colon (including empty lines) are
// skipped. This lets request fixtures be pasted straight from browser dev
// tools without reformatting.
func ParseHeaders(text string) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, ":") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(parts[1])
	}
	return headers
}
