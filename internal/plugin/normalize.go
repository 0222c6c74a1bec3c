package plugin

// Normalized calls handler once per entry, in order, with a descriptor whose
// Config is never nil. Entries are not validated, filtered or deduplicated.
//
// Descriptor entries are handed over as the entry's own descriptor, so a
// Config defaulted here is the one later filled with module defaults.
func Normalized(entries []Entry, handler func(*Descriptor)) {
	for _, e := range entries {
		d := e.desc
		if d == nil {
			d = &Descriptor{ModuleID: e.id}
		}
		if d.Config == nil {
			d.Config = map[string]any{}
		}
		handler(d)
	}
}

// Normalize returns the normalized descriptors of entries.
func Normalize(entries []Entry) []*Descriptor {
	out := make([]*Descriptor, 0, len(entries))
	Normalized(entries, func(d *Descriptor) { out = append(out, d) })
	return out
}
