package tree

import "github.com/knadh/koanf/maps"

// FillDefaults copies every key of defaults that dst lacks into dst, in place,
// and returns dst. Keys already present in dst win at every depth; when both
// sides hold a map the two are filled recursively. Maps taken from defaults
// are copied so dst never shares structure with them.
func FillDefaults(dst, defaults map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for k, dv := range defaults {
		cur, ok := dst[k]
		if !ok {
			if m, isMap := dv.(map[string]any); isMap {
				dv = maps.Copy(m)
			}
			dst[k] = dv
			continue
		}
		cm, curIsMap := cur.(map[string]any)
		dm, defIsMap := dv.(map[string]any)
		if curIsMap && defIsMap {
			FillDefaults(cm, dm)
		}
	}
	return dst
}
