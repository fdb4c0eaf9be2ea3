package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestResearchDefaultViewHidesJoinAndTimestamps(t *testing.T) {
	v := Schema.MustCompile(KindResearch)
	assert.Equal(t, []string{"id", "pageCount", "topic", "year"}, v.Paths())
}

func TestResearchDetailViewPaths(t *testing.T) {
	v := Schema.MustCompile(KindResearch, "-researchauthors", "authors", "-authors.researchauthors")
	assert.Equal(t, []string{
		"authors",
		"authors.fieldOfStudy",
		"authors.id",
		"authors.name",
		"id",
		"pageCount",
		"topic",
		"year",
	}, v.Paths())
}

func TestResearchDetailRender(t *testing.T) {
	lin := &Author{ID: 1, Name: strPtr("A. Lin"), FieldOfStudy: FieldAI}
	paper := &Research{ID: 1, Topic: strPtr("Graph Nets"), Year: 2021, PageCount: intPtr(12)}
	link := ResearchAuthor{ID: 1, AuthorID: 1, ResearchID: 1, Author: lin, Research: paper}
	paper.ResearchAuthors = []ResearchAuthor{link}
	lin.ResearchAuthors = []ResearchAuthor{link}

	v := Schema.MustCompile(KindResearch, "-researchauthors", "authors", "-authors.researchauthors")
	out := v.Render(paper)

	assert.Equal(t, uint(1), out["id"])
	assert.Equal(t, 2021, out["year"])
	assert.NotContains(t, out, "researchauthors")
	authors, ok := out["authors"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, authors, 1)
	assert.Equal(t, uint(1), authors[0]["id"])
	assert.Equal(t, FieldAI, authors[0]["fieldOfStudy"])
	assert.NotContains(t, authors[0], "researchauthors")
	assert.NotContains(t, authors[0], "createdAt")
}

func TestResearchAuthorDefaultViewExpandsBothEnds(t *testing.T) {
	v := Schema.MustCompile(KindResearchAuthor)
	assert.Equal(t, []string{
		"author",
		"author.fieldOfStudy",
		"author.id",
		"author.name",
		"authorId",
		"id",
		"research",
		"research.id",
		"research.pageCount",
		"research.topic",
		"research.year",
		"researchId",
	}, v.Paths())

	out := v.Render(&ResearchAuthor{ID: 5, AuthorID: 1, ResearchID: 2})
	assert.Nil(t, out["author"])
	assert.Nil(t, out["research"])
}

func TestReincludingJoinStopsAtDefaultBackReference(t *testing.T) {
	v, err := Schema.Compile(KindResearch, "researchauthors")
	require.NoError(t, err)
	paths := v.Paths()
	assert.Contains(t, paths, "researchauthors.author.name")
	assert.NotContains(t, paths, "researchauthors.research")
	assert.NotContains(t, paths, "researchauthors.author.researchauthors")
}

func TestNamedBackReferenceCompilesToItsDepth(t *testing.T) {
	v, err := Schema.Compile(KindResearch, "researchauthors", "researchauthors.research", "researchauthors.research.researchauthors")
	require.NoError(t, err)
	paths := v.Paths()
	assert.Contains(t, paths, "researchauthors.research.researchauthors.author.name")
	assert.NotContains(t, paths, "researchauthors.research.researchauthors.research")
}

func TestDerivedRelationsNestToRuleDepth(t *testing.T) {
	v, err := Schema.Compile(KindResearch, "-researchauthors", "authors", "authors.research", "authors.research.authors")
	require.NoError(t, err)
	paths := v.Paths()
	assert.Contains(t, paths, "authors.research.authors.name")
	assert.NotContains(t, paths, "authors.research.authors.research")
	assert.NotContains(t, paths, "authors.researchauthors")

	lin := &Author{ID: 1, Name: strPtr("A. Lin"), FieldOfStudy: FieldAI}
	paper := &Research{ID: 1, Topic: strPtr("Graph Nets"), Year: 2021}
	link := ResearchAuthor{ID: 1, AuthorID: 1, ResearchID: 1, Author: lin, Research: paper}
	paper.ResearchAuthors = []ResearchAuthor{link}
	lin.ResearchAuthors = []ResearchAuthor{link}

	out := v.Render(paper)
	authors := out["authors"].([]map[string]any)
	require.Len(t, authors, 1)
	papers := authors[0]["research"].([]map[string]any)
	require.Len(t, papers, 1)
	assert.Equal(t, 2021, papers[0]["year"])
	inner := papers[0]["authors"].([]map[string]any)
	require.Len(t, inner, 1)
	assert.Equal(t, lin.Name, inner[0]["name"])
	assert.NotContains(t, inner[0], "research")
}
