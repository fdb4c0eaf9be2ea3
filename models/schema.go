package models

import "research-api/serializer"

const (
	KindResearch       serializer.Kind = "research"
	KindAuthor         serializer.Kind = "author"
	KindResearchAuthor serializer.Kind = "researchauthor"
)

// Schema beschreibt alle Entitäten für den Serializer.
// Zeitstempel und der Rückweg über die Zwischentabelle sind standardmäßig ausgeschlossen.
var Schema = serializer.MustSchema(
	serializer.Type{
		Kind: KindResearch,
		Fields: []serializer.Field{
			field("id", func(r *Research) any { return r.ID }),
			field("topic", func(r *Research) any { return r.Topic }),
			field("year", func(r *Research) any { return r.Year }),
			field("pageCount", func(r *Research) any { return r.PageCount }),
			field("createdAt", func(r *Research) any { return r.CreatedAt }),
			field("updatedAt", func(r *Research) any { return r.UpdatedAt }),
		},
		Relations: []serializer.Relation{
			many("researchauthors", KindResearchAuthor, false, func(r *Research) []*ResearchAuthor { return linkRefs(r.ResearchAuthors) }),
			many("authors", KindAuthor, true, (*Research).Authors),
		},
		Defaults: []string{"-createdAt", "-updatedAt", "-researchauthors", "-researchauthors.research"},
	},
	serializer.Type{
		Kind: KindAuthor,
		Fields: []serializer.Field{
			field("id", func(a *Author) any { return a.ID }),
			field("name", func(a *Author) any { return a.Name }),
			field("fieldOfStudy", func(a *Author) any { return a.FieldOfStudy }),
			field("createdAt", func(a *Author) any { return a.CreatedAt }),
			field("updatedAt", func(a *Author) any { return a.UpdatedAt }),
		},
		Relations: []serializer.Relation{
			many("researchauthors", KindResearchAuthor, false, func(a *Author) []*ResearchAuthor { return linkRefs(a.ResearchAuthors) }),
			many("research", KindResearch, true, (*Author).Research),
		},
		Defaults: []string{"-createdAt", "-updatedAt", "-researchauthors", "-researchauthors.author"},
	},
	serializer.Type{
		Kind: KindResearchAuthor,
		Fields: []serializer.Field{
			field("id", func(ra *ResearchAuthor) any { return ra.ID }),
			field("authorId", func(ra *ResearchAuthor) any { return ra.AuthorID }),
			field("researchId", func(ra *ResearchAuthor) any { return ra.ResearchID }),
			field("createdAt", func(ra *ResearchAuthor) any { return ra.CreatedAt }),
			field("updatedAt", func(ra *ResearchAuthor) any { return ra.UpdatedAt }),
		},
		Relations: []serializer.Relation{
			one("research", KindResearch, func(ra *ResearchAuthor) *Research { return ra.Research }),
			one("author", KindAuthor, func(ra *ResearchAuthor) *Author { return ra.Author }),
		},
		Defaults: []string{"-createdAt", "-updatedAt", "-research.researchauthors", "-author.researchauthors"},
	},
)

func field[T any](name string, get func(*T) any) serializer.Field {
	return serializer.Field{Name: name, Get: func(e any) any { return get(e.(*T)) }}
}

func one[T, U any](name string, target serializer.Kind, get func(*T) *U) serializer.Relation {
	return serializer.Relation{
		Name:   name,
		Target: target,
		One: func(e any) any {
			// kein typisiertes nil durchreichen
			if u := get(e.(*T)); u != nil {
				return u
			}
			return nil
		},
	}
}

func many[T, U any](name string, target serializer.Kind, derived bool, get func(*T) []*U) serializer.Relation {
	return serializer.Relation{
		Name:    name,
		Target:  target,
		Derived: derived,
		Many: func(e any) []any {
			items := get(e.(*T))
			out := make([]any, len(items))
			for i, it := range items {
				out[i] = it
			}
			return out
		},
	}
}

func linkRefs(links []ResearchAuthor) []*ResearchAuthor {
	out := make([]*ResearchAuthor, len(links))
	for i := range links {
		out[i] = &links[i]
	}
	return out
}
