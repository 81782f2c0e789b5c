package diag

// Log accumulates diagnostics for one entity. The zero value is ready to use.
// Entries are only ever appended.
type Log struct {
	items []Diagnostic
}

// Add appends d
func (l *Log) Add(d Diagnostic) {
	l.items = append(l.items, d)
}

// Addf appends a diagnostic built from kind, source and a formatted message
func (l *Log) Addf(kind Kind, source, format string, args ...interface{}) {
	l.Add(New(kind, source, format, args...))
}

// Len returns the number of accumulated diagnostics
func (l *Log) Len() int {
	return len(l.items)
}

// Items returns a copy of the accumulated diagnostics in insertion order
func (l *Log) Items() []Diagnostic {
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	return out
}

// Count returns how many diagnostics of kind k are in ds
func Count(ds []Diagnostic, k Kind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Filter returns the diagnostics of kind k in ds
func Filter(ds []Diagnostic, k Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range ds {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// Messages flattens ds into their rendered messages
func Messages(ds []Diagnostic) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Error())
	}
	return out
}
