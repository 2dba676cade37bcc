package parser

import "strings"

// projectMarkers are directory-name segments that mark the start
// of the meaningful project suffix inside a flattened Claude Code
// project directory name (e.g. "-Users-dev-code-myapp").
var projectMarkers = map[string]bool{
	"code": true,
}

// GetProjectName normalizes a Claude Code project directory name.
// Names that encode an absolute path (leading dash, separators
// flattened to dashes) keep only the segments after a recognized
// marker; remaining dashes become underscores either way.
func GetProjectName(dirName string) string {
	name := dirName
	if strings.HasPrefix(name, "-") {
		parts := strings.Split(name, "-")
		for i, part := range parts {
			if projectMarkers[strings.ToLower(part)] &&
				i+1 < len(parts) {
				name = strings.Join(parts[i+1:], "-")
				break
			}
		}
	}
	return strings.ReplaceAll(name, "-", "_")
}
