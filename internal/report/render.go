// Package report renders merged configuration trees, plugin registrations and
// module listings for the terminal.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	xxhash "github.com/cespare/xxhash/v2"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding for the merged tree.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want json or yaml)", s)
}

type PrintOptions struct {
	Format  Format
	NoColor bool
}

// Marshal encodes v in format f. Map keys come out sorted in both formats.
func Marshal(v any, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
	return nil, fmt.Errorf("unknown format %q", f)
}

// Digest returns a stable hash of v's JSON encoding.
func Digest(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b)), nil
}

// PrintTree writes v, usually a configuration tree or one of its nodes, to w.
// Output is highlighted when colour is allowed and w is a terminal.
func PrintTree(w io.Writer, v any, opts PrintOptions) error {
	b, err := Marshal(v, opts.Format)
	if err != nil {
		return err
	}
	out := string(b)
	if !opts.NoColor && IsTerminal(w) {
		out = Highlight(out, opts.Format)
	}
	_, err = io.WriteString(w, out)
	return err
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Highlight colours src for a 256-colour terminal. Unknown formats and
// tokenizer failures return src unchanged.
func Highlight(src string, f Format) string {
	lexer := lexers.Get(string(f))
	if lexer == nil {
		return src
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return src
	}
	return buf.String()
}
