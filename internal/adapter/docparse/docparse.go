// Package docparse splits raw documents into an optional metadata header
// and the body text. The header is everything before the first line
// containing only "---", written as "key: value" lines.
package docparse

import "strings"

const separator = "\n---\n"

// Parse splits content into metadata and trimmed body text. Documents
// without a separator have no metadata; the whole content is the body.
func Parse(content string) (metadata map[string]any, text string) {
	metadata = map[string]any{}

	idx := strings.Index(content, separator)
	if idx < 0 {
		return metadata, strings.TrimSpace(content)
	}

	header := content[:idx]
	body := content[idx+len(separator):]

	for _, line := range strings.Split(header, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key != "" {
			metadata[key] = value
		}
	}

	return metadata, strings.TrimSpace(body)
}
