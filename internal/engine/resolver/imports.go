package resolver

import "strings"

// ImportTable maps short type names to the fully qualified names brought in
// by non-static imports. Later imports of the same short name win.
type ImportTable struct {
	names map[string]string
}

func NewImportTable() *ImportTable {
	return &ImportTable{names: make(map[string]string)}
}

// Add records an import. Static imports are ignored. The short name is the
// last dotted segment, so an on-demand import of `a.b` registers `b`.
func (t *ImportTable) Add(qualifiedName string, static bool) {
	if static {
		return
	}
	qualifiedName = strings.TrimSpace(qualifiedName)
	if qualifiedName == "" {
		return
	}
	t.names[shortName(qualifiedName)] = qualifiedName
}

// Lookup returns the qualified name imported under short.
func (t *ImportTable) Lookup(short string) (string, bool) {
	qn, ok := t.names[short]
	return qn, ok
}

func (t *ImportTable) Len() int {
	return len(t.names)
}

// Entries returns a copy of the table.
func (t *ImportTable) Entries() map[string]string {
	out := make(map[string]string, len(t.names))
	for k, v := range t.names {
		out[k] = v
	}
	return out
}

func shortName(qualifiedName string) string {
	return qualifiedName[strings.LastIndex(qualifiedName, ".")+1:]
}
