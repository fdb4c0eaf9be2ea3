package serializer

import "fmt"

// Kind benennt einen Entitätstyp im Schema.
type Kind string

// Field ist ein skalares Attribut mit typisiertem Zugriff.
type Field struct {
	Name string
	Get  func(entity any) any
}

// Relation beschreibt eine Beziehung zu einer anderen Kind.
// Genau einer von One oder Many ist gesetzt. One liefert nil, wenn nichts geladen ist.
// Abgeleitete Beziehungen (Derived) sind Projektionen und werden nur auf Anfrage serialisiert.
type Relation struct {
	Name    string
	Target  Kind
	Derived bool
	One     func(entity any) any
	Many    func(entity any) []any
}

// Type beschreibt eine Kind samt ihrer Standard-Ausschlussregeln (relativ zur Kind).
type Type struct {
	Kind      Kind
	Fields    []Field
	Relations []Relation
	Defaults  []string
}

type entry struct {
	Type
	defaults []Rule
}

// Schema ist die unveränderliche Menge aller registrierten Kinds.
type Schema struct {
	types map[Kind]*entry
}

// NewSchema registriert die Typen und prüft Beziehungsziele sowie Standardregeln.
func NewSchema(types ...Type) (*Schema, error) {
	s := &Schema{types: make(map[Kind]*entry, len(types))}
	for _, t := range types {
		if _, dup := s.types[t.Kind]; dup {
			return nil, fmt.Errorf("serializer: duplicate kind %q", t.Kind)
		}
		defaults, err := ParseRules(t.Defaults...)
		if err != nil {
			return nil, err
		}
		for _, r := range defaults {
			if !r.Exclude {
				return nil, &RuleError{Rule: r.String(), Reason: "default policy of " + string(t.Kind) + " may only exclude"}
			}
		}
		s.types[t.Kind] = &entry{Type: t, defaults: defaults}
	}
	for _, e := range s.types {
		for _, rel := range e.Relations {
			if _, ok := s.types[rel.Target]; !ok {
				return nil, fmt.Errorf("serializer: %s.%s targets unknown kind %q", e.Kind, rel.Name, rel.Target)
			}
			if (rel.One == nil) == (rel.Many == nil) {
				return nil, fmt.Errorf("serializer: %s.%s needs exactly one of One or Many", e.Kind, rel.Name)
			}
		}
	}
	return s, nil
}

// MustSchema ist NewSchema für Paket-Initialisierung.
func MustSchema(types ...Type) *Schema {
	s, err := NewSchema(types...)
	if err != nil {
		panic(err)
	}
	return s
}
