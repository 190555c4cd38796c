package config

import "strings"

// View is a read-only dotted-path accessor over a merged YAML document,
// shared by the parameter view (operators deferred) and the manifest view
// (operators evaluated).
type View struct {
	data map[string]any
}

// NewView wraps a merged document for dotted-path lookups.
func NewView(data map[string]any) View {
	return View{data: data}
}

// Lookup resolves a dotted path such as "params.env" against the view,
// returning ok=false when any segment is missing or not a map.
func (v View) Lookup(path string) (value any, ok bool) {
	if v.data == nil {
		return nil, false
	}

	segments := strings.Split(path, ".")

	var cur any = v.data

	for _, seg := range segments {
		m, isMap := cur.(map[string]any)
		if !isMap {
			return nil, false
		}

		next, present := m[seg]
		if !present {
			return nil, false
		}

		cur = next
	}

	return cur, true
}

// String resolves path and returns its string form, or def if missing or
// not representable as a string.
func (v View) String(path, def string) string {
	value, ok := v.Lookup(path)
	if !ok {
		return def
	}

	s, ok := value.(string)
	if !ok {
		return def
	}

	return s
}

// Bool resolves path and returns its boolean value, or def if missing or
// not a bool.
func (v View) Bool(path string, def bool) bool {
	value, ok := v.Lookup(path)
	if !ok {
		return def
	}

	b, ok := value.(bool)
	if !ok {
		return def
	}

	return b
}

// Raw returns the underlying merged document.
func (v View) Raw() map[string]any {
	return v.data
}
