package markdown

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const fence = "---\n"

// Parse splits an event file into its YAML header, decoded into T, and the
// trimmed markdown body that follows it.
func Parse[T any](r io.Reader) (T, string, error) {
	var meta T
	body, err := frontmatter.Parse(r, &meta)
	if err != nil {
		return meta, "", fmt.Errorf("reading event header: %w", err)
	}
	return meta, strings.TrimSpace(string(body)), nil
}

// Marshal writes meta as a fenced YAML header. A non-empty body follows after
// one blank line and always ends in a newline.
func Marshal[T any](meta T, body string) ([]byte, error) {
	header, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("writing event header: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(fence)
	buf.Write(header)
	buf.WriteString(fence)
	if body = strings.TrimRight(body, "\n"); body != "" {
		buf.WriteString("\n" + body + "\n")
	}
	return buf.Bytes(), nil
}
