package adapter

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var ErrUnsupportedDocument = goerr.New("unsupported document type")

// supportedExtensions lists the file types the indexer accepts.
var supportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// SupportedDocument reports whether the indexer handles this file.
func SupportedDocument(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// ExtractText reads a document and returns its plain text. Markdown
// front matter is stripped; the body is returned as-is. Extraction is
// a pure per-file operation the engine calls but does not own, so it
// carries no persistence concerns.
func ExtractText(path string) (string, error) {
	if !SupportedDocument(path) {
		return "", goerr.Wrap(ErrUnsupportedDocument, "cannot extract text",
			goerr.V("path", path), goerr.V("ext", filepath.Ext(path)))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read document", goerr.V("path", path))
	}

	text := string(raw)
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".md" || ext == ".markdown" {
		text = stripFrontMatter(text)
	}

	return strings.TrimSpace(text), nil
}

// stripFrontMatter removes a leading YAML front matter block delimited
// by "---" lines.
func stripFrontMatter(text string) string {
	if !strings.HasPrefix(text, "---\n") {
		return text
	}
	rest := text[len("---\n"):]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return text
	}
	body := rest[idx+len("\n---"):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	return body
}
