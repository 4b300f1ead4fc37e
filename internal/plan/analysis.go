package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hupe1980/pvfilter/internal/filter"
	"github.com/hupe1980/pvfilter/internal/xmltree"
)

// ChangeType represents the type of change detected.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "modified"
)

// Change is one difference between two versions of a plugin. Breaking
// changes invalidate host state files saved with the old version.
type Change struct {
	Type     ChangeType `json:"type"`
	Property string     `json:"property"`
	Details  string     `json:"details"`
	Impact   string     `json:"impact,omitempty"`
	Breaking bool       `json:"breaking"`
}

// Analysis holds the property-level comparison of two plugins.
type Analysis struct {
	Proxy   string   `json:"proxy"`
	Changes []Change `json:"changes"`
}

// HasChanges returns true if there are any changes.
func (a *Analysis) HasChanges() bool { return len(a.Changes) > 0 }

// HasBreakingChanges returns true if any change is breaking.
func (a *Analysis) HasBreakingChanges() bool { return a.BreakingCount() > 0 }

// BreakingCount returns the number of breaking changes.
func (a *Analysis) BreakingCount() int {
	n := 0

	for _, c := range a.Changes {
		if c.Breaking {
			n++
		}
	}

	return n
}

// NonBreakingCount returns the number of non-breaking changes.
func (a *Analysis) NonBreakingCount() int {
	return len(a.Changes) - a.BreakingCount()
}

// proxyInfo is the comparable shape of one SourceProxy.
type proxyInfo struct {
	group      string
	name       string
	label      string
	inputs     string
	properties []*xmltree.Element
	byName     map[string]*xmltree.Element
}

func extractProxy(doc []byte) (*proxyInfo, error) {
	root, err := xmltree.ParseBytes(doc)
	if err != nil {
		return nil, err
	}

	group := root.Find("ProxyGroup")
	if group == nil {
		return nil, fmt.Errorf("no ProxyGroup in document")
	}

	proxy := group.Find("SourceProxy")
	if proxy == nil {
		return nil, fmt.Errorf("no SourceProxy in group %q", group.Value("name"))
	}

	info := &proxyInfo{
		group:  group.Value("name"),
		name:   proxy.Value("name"),
		label:  proxy.Value("label"),
		byName: make(map[string]*xmltree.Element),
	}

	if input := proxy.Find("InputProperty"); input != nil {
		var types []string
		if domain := input.Find("DataTypeDomain"); domain != nil {
			for _, dt := range domain.FindAll("DataType") {
				types = append(types, dt.Value("value"))
			}
		}

		info.inputs = strings.Join(types, ", ")
	}

	for _, c := range proxy.Children {
		if !strings.HasSuffix(c.Tag, "VectorProperty") {
			continue
		}

		info.properties = append(info.properties, c)
		info.byName[c.Value("name")] = c
	}

	return info, nil
}

// Analyze compares an existing plugin document with a newly generated one.
func Analyze(oldDoc, newDoc []byte) (*Analysis, error) {
	oldInfo, err := extractProxy(oldDoc)
	if err != nil {
		return nil, fmt.Errorf("reading existing plugin: %w", err)
	}

	newInfo, err := extractProxy(newDoc)
	if err != nil {
		return nil, fmt.Errorf("reading generated plugin: %w", err)
	}

	a := &Analysis{Proxy: newInfo.name}

	a.compareProxy(oldInfo, newInfo)

	for _, op := range oldInfo.properties {
		name := op.Value("name")

		np, ok := newInfo.byName[name]
		if !ok {
			a.Changes = append(a.Changes, Change{
				Type:     ChangeRemoved,
				Property: name,
				Details:  fmt.Sprintf("%s removed", op.Tag),
				Impact:   "State files that set this property fail to restore it",
				Breaking: true,
			})

			continue
		}

		a.compareProperty(name, op, np)
	}

	for _, np := range newInfo.properties {
		name := np.Value("name")
		if _, ok := oldInfo.byName[name]; !ok {
			a.Changes = append(a.Changes, Change{
				Type:     ChangeAdded,
				Property: name,
				Details:  fmt.Sprintf("%s added (default: %q)", np.Tag, np.Value("default_values")),
			})
		}
	}

	sort.SliceStable(a.Changes, func(i, j int) bool {
		return a.Changes[i].Breaking && !a.Changes[j].Breaking
	})

	return a, nil
}

func (a *Analysis) compareProxy(oldInfo, newInfo *proxyInfo) {
	if oldInfo.name != newInfo.name {
		a.Changes = append(a.Changes, Change{
			Type:     ChangeModified,
			Property: "SourceProxy",
			Details:  fmt.Sprintf("proxy renamed %s -> %s", oldInfo.name, newInfo.name),
			Impact:   "State files reference the proxy by name",
			Breaking: true,
		})
	}

	if oldInfo.group != newInfo.group {
		a.Changes = append(a.Changes, Change{
			Type:     ChangeModified,
			Property: "ProxyGroup",
			Details:  fmt.Sprintf("group changed %s -> %s", oldInfo.group, newInfo.group),
			Impact:   "The proxy moves between the filters and sources menus",
			Breaking: true,
		})
	}

	if oldInfo.label != newInfo.label {
		a.Changes = append(a.Changes, Change{
			Type:     ChangeModified,
			Property: "SourceProxy",
			Details:  fmt.Sprintf("label %q -> %q", oldInfo.label, newInfo.label),
		})
	}

	if oldInfo.inputs != newInfo.inputs {
		a.Changes = append(a.Changes, Change{
			Type:     ChangeModified,
			Property: filter.InputPropertyName,
			Details:  fmt.Sprintf("accepted input types [%s] -> [%s]", oldInfo.inputs, newInfo.inputs),
		})
	}
}

func (a *Analysis) compareProperty(name string, op, np *xmltree.Element) {
	if op.Tag != np.Tag {
		a.Changes = append(a.Changes, Change{
			Type:     ChangeModified,
			Property: name,
			Details:  fmt.Sprintf("type changed %s -> %s", op.Tag, np.Tag),
			Impact:   "Saved values no longer match the property type",
			Breaking: true,
		})

		return
	}

	if o, n := op.Value("number_of_elements"), np.Value("number_of_elements"); o != n {
		a.Changes = append(a.Changes, Change{
			Type:     ChangeModified,
			Property: name,
			Details:  fmt.Sprintf("number of elements %s -> %s", o, n),
			Impact:   "Saved values have the wrong arity",
			Breaking: true,
		})
	}

	if removed := removedEntries(op, np); len(removed) > 0 {
		a.Changes = append(a.Changes, Change{
			Type:     ChangeModified,
			Property: name,
			Details:  fmt.Sprintf("enumeration entries removed: %s", strings.Join(removed, ", ")),
			Impact:   "Saved selections of removed entries are invalid",
			Breaking: true,
		})
	}

	if o, n := op.Value("default_values"), np.Value("default_values"); o != n {
		details := fmt.Sprintf("default %q -> %q", o, n)

		switch name {
		case filter.ScriptPropertyName, filter.InformationScriptName, filter.UpdateExtentScriptName:
			details = "script changed"
		case filter.OutputDataSetTypeName:
			details = fmt.Sprintf("output data set type %s -> %s", o, n)
		}

		a.Changes = append(a.Changes, Change{Type: ChangeModified, Property: name, Details: details})
	}

	if o, n := op.Value("label"), np.Value("label"); o != n {
		a.Changes = append(a.Changes, Change{
			Type:     ChangeModified,
			Property: name,
			Details:  fmt.Sprintf("label %q -> %q", o, n),
		})
	}
}

// removedEntries lists enumeration entries of op missing from np.
func removedEntries(op, np *xmltree.Element) []string {
	oldEnum := op.Find("EnumerationDomain")
	if oldEnum == nil {
		return nil
	}

	kept := make(map[string]bool)

	if newEnum := np.Find("EnumerationDomain"); newEnum != nil {
		for _, e := range newEnum.FindAll("Entry") {
			kept[e.Value("value")] = true
		}
	}

	var removed []string

	for _, e := range oldEnum.FindAll("Entry") {
		if !kept[e.Value("value")] {
			removed = append(removed, e.Value("text"))
		}
	}

	return removed
}

// FormatTable writes the analysis as a human-readable table.
func FormatTable(w io.Writer, a *Analysis) {
	if !a.HasChanges() {
		_, _ = fmt.Fprintln(w, "No property changes detected.")
		return
	}

	_, _ = fmt.Fprintf(w, "Property Changes (%s):\n", a.Proxy)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 60))

	for _, c := range a.Changes {
		_, _ = fmt.Fprintf(w, "  %s %-24s %s\n", changeIcon(c.Type, c.Breaking), c.Property, c.Details)

		if c.Impact != "" {
			_, _ = fmt.Fprintf(w, "    Impact: %s\n", c.Impact)
		}
	}

	breaking := a.BreakingCount()

	_, _ = fmt.Fprintf(w, "\nBreaking changes: %d, Non-breaking changes: %d\n", breaking, a.NonBreakingCount())

	if breaking > 0 {
		_, _ = fmt.Fprintln(w, "\nWARNING: Breaking changes detected! State files saved with the existing plugin may not load.")
	}
}

// FormatJSON writes the analysis as JSON with a summary block.
func FormatJSON(w io.Writer, a *Analysis) error {
	output := struct {
		Proxy   string   `json:"proxy"`
		Changes []Change `json:"changes"`
		Summary struct {
			Breaking    int  `json:"breaking"`
			NonBreaking int  `json:"nonBreaking"`
			HasBreaking bool `json:"hasBreaking"`
		} `json:"summary"`
	}{
		Proxy:   a.Proxy,
		Changes: a.Changes,
	}

	if output.Changes == nil {
		output.Changes = []Change{}
	}

	output.Summary.Breaking = a.BreakingCount()
	output.Summary.NonBreaking = a.NonBreakingCount()
	output.Summary.HasBreaking = a.HasBreakingChanges()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(output)
}

// FormatCompactSummary returns a single-line summary.
func FormatCompactSummary(a *Analysis) string {
	if !a.HasChanges() {
		return "No property changes detected."
	}

	var added, removed, modified int

	for _, c := range a.Changes {
		switch c.Type {
		case ChangeAdded:
			added++
		case ChangeRemoved:
			removed++
		case ChangeModified:
			modified++
		}
	}

	var parts []string

	for _, p := range []struct {
		n    int
		verb string
	}{{added, "added"}, {removed, "removed"}, {modified, "modified"}} {
		if p.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", p.n, p.verb))
		}
	}

	summary := strings.Join(parts, ", ")

	if b := a.BreakingCount(); b > 0 {
		summary += fmt.Sprintf(" (%d breaking)", b)
	}

	return summary
}

func changeIcon(ct ChangeType, breaking bool) string {
	if breaking {
		return "!"
	}

	switch ct {
	case ChangeAdded:
		return "+"
	case ChangeRemoved:
		return "-"
	default:
		return "~"
	}
}
