// Package shader assembles GLSL programs from templates with named
// injection slots, and pairs them with uniform sets as materials.
package shader

import (
	"fmt"
	"sort"
	"strings"
)

// Slot names an injection point. In template source a slot is a line of
// the form "#pragma slot <name>".
type Slot string

const (
	VertexPars      Slot = "vertex_pars"
	VertexMain      Slot = "vertex_main"
	FragmentPars    Slot = "fragment_pars"
	FragmentDiffuse Slot = "fragment_diffuse"
)

const slotDirective = "#pragma slot "

// Template is a vertex/fragment source pair containing slot markers.
type Template struct {
	Name     string
	Vertex   string
	Fragment string
}

// Program is linked-ready source. Key identifies the program for caching:
// equal keys must mean equal sources.
type Program struct {
	Key      string
	Vertex   string
	Fragment string
}

// Slots reports every slot declared in the template, sorted.
func (t Template) Slots() []Slot {
	seen := map[Slot]bool{}
	for _, src := range []string{t.Vertex, t.Fragment} {
		for _, line := range strings.Split(src, "\n") {
			if s, ok := parseSlot(line); ok {
				seen[s] = true
			}
		}
	}
	out := make([]Slot, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Assemble fills every slot with the extension's code (or nothing) and
// returns the final program. It fails when the extension targets a slot the
// template does not declare.
func (t Template) Assemble(ext *Extension) (Program, error) {
	key := t.Name
	code := map[Slot]string{}
	if ext != nil {
		key += "+" + ext.Name
		declared := map[Slot]bool{}
		for _, s := range t.Slots() {
			declared[s] = true
		}
		for s, c := range ext.Code {
			if !declared[s] {
				return Program{}, fmt.Errorf("template %q has no slot %q", t.Name, s)
			}
			code[s] = c
		}
	}
	return Program{
		Key:      key,
		Vertex:   fill(t.Vertex, code),
		Fragment: fill(t.Fragment, code),
	}, nil
}

func fill(src string, code map[Slot]string) string {
	lines := strings.Split(src, "\n")
	var b strings.Builder
	for i, line := range lines {
		if s, ok := parseSlot(line); ok {
			b.WriteString(code[s])
		} else {
			b.WriteString(line)
		}
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func parseSlot(line string) (Slot, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, slotDirective) {
		return "", false
	}
	return Slot(strings.TrimSpace(strings.TrimPrefix(trimmed, slotDirective))), true
}
