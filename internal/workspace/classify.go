package workspace

import (
	"path/filepath"
	"strings"
)

// Kind groups a document's icon and color tags for list rendering.
type Kind struct {
	Icon  string
	Color string
}

// Classify maps a filename or MIME type to presentation tags. It is
// deterministic and total: unrecognized or empty input falls back to the
// generic document kind.
func Classify(nameOrMime string) Kind {
	s := strings.ToLower(strings.TrimSpace(nameOrMime))
	ext := strings.TrimPrefix(filepath.Ext(s), ".")

	switch {
	case strings.Contains(s, "pdf"):
		return Kind{Icon: "picture_as_pdf", Color: "red"}
	case strings.Contains(s, "sheet"), strings.Contains(s, "excel"),
		ext == "xls", ext == "xlsx", ext == "csv":
		return Kind{Icon: "table_chart", Color: "green"}
	case strings.HasPrefix(s, "image/"), isImage(s):
		return Kind{Icon: "image", Color: "purple"}
	case strings.Contains(s, "word"), ext == "doc", ext == "docx":
		return Kind{Icon: "description", Color: "blue"}
	default:
		return Kind{Icon: "description", Color: "gray"}
	}
}
