// Package serializer wandelt Entitäten anhand statisch aufgelöster Regeln in
// einfache Schlüssel/Wert-Bäume um.
//
// Eine Regel ist ein gepunkteter Beziehungspfad, optional mit führendem "-":
//
//	"-researchauthors"          Pfad ausschließen
//	"authors"                   Pfad (wieder) aufnehmen
//	"-authors.researchauthors"  spezifischerer Ausschluss
//
// Regeln werden einmal pro Aufrufstelle zu einer View kompiliert; beim Rendern
// findet kein Vergleich von Pfad-Strings mehr statt.
package serializer

import (
	"fmt"
	"strings"
)

// Rule ist eine einzelne Include/Exclude-Direktive.
type Rule struct {
	Path    []string
	Exclude bool
}

func (r Rule) String() string {
	p := strings.Join(r.Path, ".")
	if r.Exclude {
		return "-" + p
	}
	return p
}

func (r Rule) matches(path []string) bool {
	if len(r.Path) != len(path) {
		return false
	}
	for i := range path {
		if r.Path[i] != path[i] {
			return false
		}
	}
	return true
}

// RuleError meldet eine syntaktisch ungültige oder nicht terminierende Regelmenge.
type RuleError struct {
	Rule   string
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("serializer: rule %q: %s", e.Rule, e.Reason)
}

// ParseRule liest eine Regel wie "-authors.researchauthors".
func ParseRule(s string) (Rule, error) {
	var r Rule
	body := s
	if strings.HasPrefix(body, "-") {
		r.Exclude = true
		body = body[1:]
	}
	if body == "" {
		return Rule{}, &RuleError{Rule: s, Reason: "empty path"}
	}
	for _, seg := range strings.Split(body, ".") {
		if !isIdent(seg) {
			return Rule{}, &RuleError{Rule: s, Reason: fmt.Sprintf("invalid path segment %q", seg)}
		}
		r.Path = append(r.Path, seg)
	}
	return r, nil
}

// ParseRules liest mehrere Regeln und behält ihre Reihenfolge bei.
func ParseRules(rules ...string) ([]Rule, error) {
	out := make([]Rule, 0, len(rules))
	for _, s := range rules {
		r, err := ParseRule(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
