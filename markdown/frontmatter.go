package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// SplitFrontMatter separates a leading "---" delimited block from the body.
// ok is false when src has no front matter; body is then src unchanged.
func SplitFrontMatter(src string) (front, body string, ok bool) {
	s := strings.TrimPrefix(src, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !strings.HasPrefix(s, fence+"\n") {
		return "", src, false
	}
	rest := s[len(fence)+1:]
	if strings.HasPrefix(rest, fence+"\n") || rest == fence {
		return "", strings.TrimPrefix(strings.TrimPrefix(rest, fence), "\n"), true
	}
	end := strings.Index(rest, "\n"+fence+"\n")
	if end < 0 {
		if strings.HasSuffix(rest, "\n"+fence) {
			return rest[:len(rest)-len(fence)-1], "", true
		}
		return "", src, false
	}
	return rest[:end], rest[end+len(fence)+2:], true
}

// ParseFrontMatter decodes the YAML front matter of src into v and returns
// the remaining markdown body. A document without front matter leaves v
// untouched.
func ParseFrontMatter(src string, v any) (string, error) {
	front, body, ok := SplitFrontMatter(src)
	if !ok {
		return body, nil
	}
	if err := yaml.Unmarshal([]byte(front), v); err != nil {
		return "", fmt.Errorf("markdown: front matter: %w", err)
	}
	return body, nil
}
