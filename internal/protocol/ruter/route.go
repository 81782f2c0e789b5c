package ruter

import (
	"fmt"
	"math/bits"
	"regexp"
	"strconv"
	"strings"

	"olexparser/internal/protocol/diag"
)

// Field names as they appear in a route block
const (
	FieldPlotLayer = "Plottsett"
	FieldType      = "Rutetype"
	FieldColor     = "Linjefarge"
	FieldName      = "Rute"
)

var (
	plotLayerPattern = regexp.MustCompile(`(?m)^Plottsett (.*)$`)
	typePattern      = regexp.MustCompile(`(?m)^Rutetype (.*)$`)
	colorPattern     = regexp.MustCompile(`(?m)^Linjefarge (.*)$`)
	namePattern      = regexp.MustCompile(`(?m)^Rute (.*)$`)
)

// layerNames is indexed by floor(log2(plottsett))
var layerNames = func() []string {
	names := make([]string, 0, 60)
	for _, suffix := range []string{"", "1", "2", "3", "4", "5"} {
		for c := 'A'; c <= 'J'; c++ {
			names = append(names, string(c)+suffix)
		}
	}
	return names
}()

// LayerName maps a plottsett value to its Olex layer code. Values that are
// not a power of two resolve through the integer log2 floor, so 65 is G.
func LayerName(plottsett int) (string, error) {
	if plottsett <= 0 {
		return "", fmt.Errorf("%w: plottsett %d", diag.ErrInvalidPlotLayer, plottsett)
	}
	idx := bits.Len64(uint64(plottsett)) - 1
	if idx >= len(layerNames) {
		return "", fmt.Errorf("%w: plottsett %d", diag.ErrInvalidPlotLayer, plottsett)
	}
	return layerNames[idx], nil
}

// Route is one parsed route block. Scalar fields are empty (PlotLayer zero)
// when the block did not carry them exactly once.
type Route struct {
	Name      string
	Type      string
	Color     string
	PlotLayer int
	Layer     string
	Notes     string
	Entries   []Entry

	diagnostics diag.Log
}

// ParseRoute extracts the scalar fields, waypoints and notes of one block.
// Every extraction runs independently; a bad field never hides the others.
func ParseRoute(block string) *Route {
	block = strings.ReplaceAll(block, "\r\n", "\n")
	r := &Route{}

	plot, plotN := single(plotLayerPattern, block)
	typ, typeN := single(typePattern, block)
	color, colorN := single(colorPattern, block)
	name, nameN := single(namePattern, block)

	if nameN.ok() {
		r.Name = name
	}
	source := "route"
	if r.Name != "" {
		source = "route " + strconv.Quote(r.Name)
	}

	if plotN.ok() {
		r.setPlotLayer(source, plot)
	} else {
		r.fieldDiagnostic(source, FieldPlotLayer, plotN)
	}
	if typeN.ok() {
		r.Type = typ
	} else {
		r.fieldDiagnostic(source, FieldType, typeN)
	}
	if colorN.ok() {
		r.Color = color
	} else {
		r.fieldDiagnostic(source, FieldColor, colorN)
	}
	if !nameN.ok() {
		r.fieldDiagnostic(source, FieldName, nameN)
	}

	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if e, ok := ParseEntry(line); ok {
			r.Entries = append(r.Entries, e)
		}
	}
	if n := len(lines); n > 0 && !entryPattern.MatchString(lines[n-1]) {
		r.Notes = lines[n-1]
	}

	return r
}

// matchCount is the number of times a scalar field matched in a block
type matchCount int

func (c matchCount) ok() bool { return c == 1 }

func single(re *regexp.Regexp, block string) (string, matchCount) {
	m := re.FindAllStringSubmatch(block, -1)
	if len(m) != 1 {
		return "", matchCount(len(m))
	}
	return strings.TrimSpace(m[0][1]), 1
}

func (r *Route) fieldDiagnostic(source, field string, n matchCount) {
	r.diagnostics.Add(diag.Diagnostic{
		Kind:     diag.MissingOrDuplicateField,
		Source:   source,
		Field:    field,
		Message:  fmt.Sprintf("expected exactly one %s line, found %d", field, n),
		Expected: "1",
		Actual:   strconv.Itoa(int(n)),
	})
}

func (r *Route) setPlotLayer(source, value string) {
	n, err := strconv.Atoi(value)
	if err != nil {
		r.diagnostics.Add(diag.Diagnostic{
			Kind:    diag.InvalidPlotLayer,
			Source:  source,
			Field:   FieldPlotLayer,
			Message: fmt.Sprintf("plottsett %q is not a number", value),
			Actual:  value,
		})
		return
	}
	layer, err := LayerName(n)
	if err != nil {
		r.diagnostics.Add(diag.Diagnostic{
			Kind:    diag.InvalidPlotLayer,
			Source:  source,
			Field:   FieldPlotLayer,
			Message: fmt.Sprintf("plottsett %d does not map to an Olex layer", n),
			Actual:  value,
		})
		return
	}
	r.PlotLayer = n
	r.Layer = layer
}

// Description combines plot layer, layer code and line color
func (r *Route) Description() string {
	plot := ""
	if r.PlotLayer != 0 {
		plot = strconv.Itoa(r.PlotLayer)
	}
	return fmt.Sprintf("Plottsett: %s (Olex Layer %s). Rute Color: %s", plot, r.Layer, r.Color)
}

// Diagnostics returns the anomalies found while parsing the block
func (r *Route) Diagnostics() []diag.Diagnostic {
	return r.diagnostics.Items()
}
