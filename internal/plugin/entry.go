package plugin

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/knadh/koanf/maps"
	"gopkg.in/yaml.v3"
)

// Entry is one element of a plugin list: either a bare module id or a full
// Descriptor. The zero Entry normalizes to a descriptor with an empty id.
type Entry struct {
	id   string
	desc *Descriptor
}

// ID returns an Entry for a bare module id.
func ID(moduleID string) Entry { return Entry{id: moduleID} }

// Def returns an Entry for a descriptor. d.Config is shared with the entry
// and is filled in place when the plugin is configured.
func Def(d Descriptor) Entry { return Entry{desc: &d} }

// IDs is a shorthand for a list of bare module ids.
func IDs(moduleIDs ...string) []Entry {
	out := make([]Entry, len(moduleIDs))
	for i, id := range moduleIDs {
		out[i] = ID(id)
	}
	return out
}

// ModuleID returns the entry's module id.
func (e Entry) ModuleID() string {
	if e.desc != nil {
		return e.desc.ModuleID
	}
	return e.id
}

// IsDescriptor reports whether the entry was given as a descriptor.
func (e Entry) IsDescriptor() bool { return e.desc != nil }

func (e Entry) String() string { return e.ModuleID() }

// Clone returns an entry with its own descriptor and a deep copy of its
// config. Configuring a plugin list fills descriptor configs in place, so a
// list resolved more than once must be cloned per run.
func (e Entry) Clone() Entry {
	if e.desc == nil {
		return e
	}
	d := *e.desc
	if d.Config != nil {
		d.Config = maps.Copy(d.Config)
	}
	return Entry{desc: &d}
}

// UnmarshalYAML accepts a scalar module id or a descriptor mapping.
func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*e = ID(value.Value)
		return nil
	}
	var d Descriptor
	if err := value.Decode(&d); err != nil {
		return fmt.Errorf("plugin entry at line %d: %w", value.Line, err)
	}
	*e = Def(d)
	return nil
}

// MarshalYAML writes bare ids as scalars and descriptors as mappings.
func (e Entry) MarshalYAML() (any, error) {
	if e.desc == nil {
		return e.id, nil
	}
	return e.desc, nil
}

// UnmarshalJSON accepts a module id string or a descriptor object.
func (e *Entry) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*e = ID(id)
		return nil
	}
	var d Descriptor
	if err := json.Unmarshal(b, &d); err != nil {
		return fmt.Errorf("plugin entry: %w", err)
	}
	*e = Def(d)
	return nil
}

// MarshalJSON mirrors MarshalYAML.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.desc == nil {
		return json.Marshal(e.id)
	}
	return json.Marshal(e.desc)
}
