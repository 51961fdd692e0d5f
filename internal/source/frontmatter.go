package source

import (
	"strings"

	"github.com/quantmind-br/folio/internal/domain"
	"gopkg.in/yaml.v3"
)

// splitFrontMatter separates a leading "---" YAML block from a markdown
// body. ok is false when the content carries no closed block.
func splitFrontMatter(content string) (head, body string, ok bool) {
	if !strings.HasPrefix(content, "---") {
		return "", content, false
	}

	rest := content[3:]
	if strings.HasPrefix(rest, "\r\n") {
		rest = rest[2:]
	} else if strings.HasPrefix(rest, "\n") {
		rest = rest[1:]
	} else {
		// "----" or "---title" is not a delimiter
		return "", content, false
	}

	lines := strings.Split(rest, "\n")
	for i, line := range lines {
		if strings.TrimRight(line, "\r") == "---" {
			head = strings.Join(lines[:i], "\n")
			body = strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\r\n")
			return head, body, true
		}
	}

	return "", content, false
}

// parseMeta decodes a YAML head block. isMeta is false when the block is
// not a YAML mapping, e.g. a prose paragraph; err is then a syntax error
// or nil. A mapping that fails to decode reports isMeta with err.
func parseMeta(head string) (meta domain.Meta, isMeta bool, err error) {
	if strings.TrimSpace(head) == "" {
		return meta, true, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(head), &node); err != nil {
		return meta, false, err
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return meta, false, nil
	}
	if err := node.Decode(&meta); err != nil {
		return meta, true, err
	}
	return meta, true, nil
}
