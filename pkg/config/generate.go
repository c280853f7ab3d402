package config

import (
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/revdiff/revdiff/pkg/errors"
)

// GenerateContent produces the starter revdiff.toml for config gen:
// every value present but commented out, so uncommenting a line
// overrides exactly one default.
func GenerateContent() (string, error) {
	body, err := toml.Marshal(Default())
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "cannot render default configuration")
	}
	var b strings.Builder
	b.WriteString("# revdiff configuration. Uncomment a line to override the default.\n\n")
	b.WriteString(commentOutValues(string(body)))
	return b.String(), nil
}

// commentOutValues comments every assignment line, keeping blanks,
// comments and section headers as they are
func commentOutValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			result = append(result, line)
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			result = append(result, line)
		default:
			result = append(result, "# "+line)
		}
	}
	return strings.Join(result, "\n")
}
