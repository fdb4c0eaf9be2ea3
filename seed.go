package main

import (
	"context"

	"research-api/models"
	"research-api/storage"

	"go.uber.org/zap"
)

type demoPaper struct {
	topic     string
	year      int
	pageCount int
}

type demoAuthor struct {
	name  string
	field string
}

var (
	demoAuthors = []demoAuthor{
		{"A. Lin", "AI"},
		{"M. Okafor", "Robotics"},
		{"S. Varga", "Machine Learning"},
		{"J. Moreau", "Vision"},
		{"R. Haddad", "Cybersecurity"},
	}
	demoPapers = []demoPaper{
		{"Graph Nets", 2021, 12},
		{"Legged Locomotion in the Wild", 2019, 9},
		{"Adversarial Patches for Detectors", 2020, 14},
	}
	// Indizes in demoAuthors / demoPapers
	demoLinks = [][2]int{{0, 0}, {2, 0}, {1, 1}, {3, 2}, {4, 2}}
)

// seedDemoData legt Beispieldaten an, solange noch keine Paper existieren.
func seedDemoData(store *storage.Store, logger *zap.Logger) {
	ctx := context.Background()
	existing, err := store.ListResearch(ctx)
	if err != nil {
		logger.Warn("Failed to check for existing research before seeding", zap.Error(err))
		return
	}
	if len(existing) > 0 {
		return
	}

	authors := make([]*models.Author, 0, len(demoAuthors))
	for _, d := range demoAuthors {
		name := d.name
		a, err := models.NewAuthor(&name, d.field)
		if err == nil {
			err = store.CreateAuthor(ctx, a)
		}
		if err != nil {
			logger.Warn("Failed to seed author", zap.String("name", d.name), zap.Error(err))
			return
		}
		authors = append(authors, a)
	}

	papers := make([]*models.Research, 0, len(demoPapers))
	for _, d := range demoPapers {
		topic, pages := d.topic, d.pageCount
		r, err := models.NewResearch(&topic, d.year, &pages)
		if err == nil {
			err = store.CreateResearch(ctx, r)
		}
		if err != nil {
			logger.Warn("Failed to seed research", zap.String("topic", d.topic), zap.Error(err))
			return
		}
		papers = append(papers, r)
	}

	for _, l := range demoLinks {
		link, err := models.NewResearchAuthor(authors[l[0]].ID, papers[l[1]].ID)
		if err == nil {
			err = store.CreateResearchAuthor(ctx, link)
		}
		if err != nil {
			logger.Warn("Failed to seed research author link", zap.Error(err))
			return
		}
	}
	logger.Info("Demo data seeded.",
		zap.Int("authors", len(authors)),
		zap.Int("research", len(papers)),
		zap.Int("links", len(demoLinks)))
}
