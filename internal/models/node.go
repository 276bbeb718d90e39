package models

// KindField is the node key holding the algorithm identifier.
const KindField = "Kind"

// Node is one declared pipeline component: an algorithm identifier under
// KindField plus the parameters that algorithm declares.
type Node map[string]any

// Kind returns the identifier when it is a string.
func (n Node) Kind() (string, bool) {
	kind, ok := n[KindField].(string)
	return kind, ok
}

// Lookup reports a field's value and whether the key exists at all.
func (n Node) Lookup(field string) (any, bool) {
	if n == nil {
		return nil, false
	}
	v, ok := n[field]
	return v, ok
}
