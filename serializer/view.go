package serializer

import (
	"fmt"
	"sort"
	"strings"
)

// View ist ein kompilierter Baum der zugelassenen Felder und Beziehungen.
type View struct {
	kind      Kind
	fields    []Field
	relations []nested
}

type nested struct {
	rel  Relation
	view *View
}

type frame struct {
	defaults []Rule
	offset   int
}

type edge struct {
	kind Kind
	name string
}

// Compile löst die Regeln für root gegen die Standardregeln aller Kinds auf dem Pfad auf.
//
// Die Regeln werden von links nach rechts ausgewertet, die letzte passende gewinnt.
// Ein ausgeschlossener Pfad wird nicht betreten, damit fällt auch alles darunter weg.
// Eine Beziehung darf auf demselben Pfad mehrfach vorkommen, wenn eine Regel des
// Aufrufers genau diesen Pfad nennt; die Tiefe ist dann durch die Regeln begrenzt.
// Lassen allein die Standardregeln die Wiederholung zu, wäre der Baum unendlich und
// die Kompilierung schlägt mit einem RuleError fehl.
func (s *Schema) Compile(root Kind, rules ...string) (*View, error) {
	parsed, err := ParseRules(rules...)
	if err != nil {
		return nil, err
	}
	if _, ok := s.types[root]; !ok {
		return nil, fmt.Errorf("serializer: unknown kind %q", root)
	}
	c := &compiler{schema: s, rules: parsed}
	return c.build(root, nil, nil, nil)
}

// MustCompile ist Compile für Views, die bei der Initialisierung feststehen.
func (s *Schema) MustCompile(root Kind, rules ...string) *View {
	v, err := s.Compile(root, rules...)
	if err != nil {
		panic(err)
	}
	return v
}

type compiler struct {
	schema *Schema
	rules  []Rule
}

func (c *compiler) build(kind Kind, path []string, frames []frame, open []edge) (*View, error) {
	e := c.schema.types[kind]
	frames = append(frames[:len(frames):len(frames)], frame{defaults: e.defaults, offset: len(path)})

	v := &View{kind: kind}
	for _, f := range e.Fields {
		if ok, _ := c.admitted(join(path, f.Name), frames, false); ok {
			v.fields = append(v.fields, f)
		}
	}
	for _, rel := range e.Relations {
		p := join(path, rel.Name)
		ok, named := c.admitted(p, frames, rel.Derived)
		if !ok {
			continue
		}
		ed := edge{kind: kind, name: rel.Name}
		for _, o := range open {
			if o == ed && !named {
				return nil, &RuleError{
					Rule:   strings.Join(p, "."),
					Reason: fmt.Sprintf("path re-enters %s.%s, add an exclude rule", kind, rel.Name),
				}
			}
		}
		child, err := c.build(rel.Target, p, frames, append(open[:len(open):len(open)], ed))
		if err != nil {
			return nil, err
		}
		v.relations = append(v.relations, nested{rel: rel, view: child})
	}
	return v, nil
}

// admitted entscheidet über einen einzelnen Pfad. Vorfahren sind bereits zugelassen,
// sonst würde der Pfad gar nicht besucht. named meldet, ob eine Regel des Aufrufers
// den Pfad genau trifft.
func (c *compiler) admitted(path []string, frames []frame, optIn bool) (ok, named bool) {
	ok = !optIn
	for _, f := range frames {
		rel := path[f.offset:]
		for _, r := range f.defaults {
			if r.matches(rel) {
				ok = false
			}
		}
	}
	for _, r := range c.rules {
		if r.matches(path) {
			ok = !r.Exclude
			named = true
		}
	}
	return ok, named
}

func join(path []string, name string) []string {
	return append(path[:len(path):len(path)], name)
}

func (v *View) Kind() Kind { return v.kind }

// Paths listet alle zugelassenen Pfade sortiert auf.
func (v *View) Paths() []string {
	var out []string
	v.collect("", &out)
	sort.Strings(out)
	return out
}

func (v *View) collect(prefix string, out *[]string) {
	for _, f := range v.fields {
		*out = append(*out, prefix+f.Name)
	}
	for _, n := range v.relations {
		*out = append(*out, prefix+n.rel.Name)
		n.view.collect(prefix+n.rel.Name+".", out)
	}
}

// Render erzeugt den Schlüssel/Wert-Baum für eine Entität der View-Kind.
func (v *View) Render(entity any) map[string]any {
	if entity == nil {
		return nil
	}
	out := make(map[string]any, len(v.fields)+len(v.relations))
	for _, f := range v.fields {
		out[f.Name] = f.Get(entity)
	}
	for _, n := range v.relations {
		if n.rel.Many != nil {
			items := n.rel.Many(entity)
			list := make([]map[string]any, 0, len(items))
			for _, item := range items {
				list = append(list, n.view.Render(item))
			}
			out[n.rel.Name] = list
			continue
		}
		if target := n.rel.One(entity); target != nil {
			out[n.rel.Name] = n.view.Render(target)
		} else {
			out[n.rel.Name] = nil
		}
	}
	return out
}

// RenderList rendert jedes Element über einen Zeiger darauf. Das Ergebnis ist nie nil.
func RenderList[T any](v *View, items []T) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		out = append(out, v.Render(&items[i]))
	}
	return out
}
