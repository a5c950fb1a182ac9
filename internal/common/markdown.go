package common

import "strings"

// CleanMarkdownWrapper strips a surrounding markdown code fence, such as
// ```json ... ```, from language model output.
func CleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		content = content[idx+1:]
	} else {
		content = strings.TrimPrefix(content, "json")
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
