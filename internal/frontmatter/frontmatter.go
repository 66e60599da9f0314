// Package frontmatter reads the YAML header of page sources.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrUnterminated is returned when a document opens a frontmatter block but never closes it.
var ErrUnterminated = errors.New("frontmatter opened with --- but never closed")

// Meta is the page metadata sitebuild understands. Unknown keys are kept in Extra.
type Meta struct {
	Title string         `yaml:"title"`
	Draft bool           `yaml:"draft"`
	Extra map[string]any `yaml:",inline"`
}

// Page is a parsed page source.
type Page struct {
	Meta   Meta
	Header []byte
	Body   []byte
	// HasHeader is false when the source carried no frontmatter block.
	HasHeader bool
}

// Parse splits content into its frontmatter and Markdown body and decodes the header.
func Parse(content []byte) (Page, error) {
	header, body, ok, err := Split(content)
	if err != nil {
		return Page{}, err
	}
	page := Page{Header: header, Body: body, HasHeader: ok}
	if len(bytes.TrimSpace(header)) == 0 {
		return page, nil
	}
	if err := yaml.Unmarshal(header, &page.Meta); err != nil {
		return Page{}, fmt.Errorf("decode frontmatter: %w", err)
	}
	return page, nil
}

// Split separates a leading `---` delimited block from the body. Both LF and
// CRLF line endings are accepted. ok is false when there is no block.
func Split(content []byte) (header, body []byte, ok bool, err error) {
	nl := []byte("\n")
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = []byte("\r\n")
	}
	open := append([]byte("---"), nl...)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}
	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return nil, rest[len(open):], true, nil
	}

	closing := append(append([]byte{}, nl...), open...)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		// A closing delimiter at end of file has no trailing newline.
		end := append(append([]byte{}, nl...), "---"...)
		if bytes.HasSuffix(rest, end) {
			return rest[:len(rest)-len(end)+len(nl)], nil, true, nil
		}
		return nil, nil, false, ErrUnterminated
	}
	return rest[:idx+len(nl)], rest[idx+len(closing):], true, nil
}
