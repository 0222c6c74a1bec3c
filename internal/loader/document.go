package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/tidwall/jsonc"
)

// ErrUnsupportedFormat is returned for files whose extension has no parser.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Extensions lists the document extensions understood by ReadDocument, in
// lookup order.
var Extensions = []string{".yaml", ".yml", ".json", ".jsonc"}

// ReadDocument parses a YAML, JSON or JSONC file into a nested map. Keys
// containing the tree delimiter are expanded into nested maps.
func ReadDocument(path string) (map[string]any, error) {
	k := koanf.New(".")
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = k.Load(file.Provider(path), yaml.Parser())
	case ".json":
		err = k.Load(file.Provider(path), json.Parser())
	case ".jsonc":
		var b []byte
		if b, err = os.ReadFile(path); err == nil {
			// Strip comments and trailing commas.
			err = k.Load(rawbytes.Provider(jsonc.ToJSON(b)), json.Parser())
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return k.Raw(), nil
}
