package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"research-api/models"
	"research-api/serializer"
	"research-api/storage"

	"go.uber.org/zap"
)

// Für den Export werden die Zeitstempel wieder aufgenommen, Beziehungen bleiben flach.
var (
	researchExportView = models.Schema.MustCompile(models.KindResearch, "createdAt", "updatedAt")
	authorExportView   = models.Schema.MustCompile(models.KindAuthor, "createdAt", "updatedAt")
	linkExportView     = models.Schema.MustCompile(models.KindResearchAuthor, "createdAt", "updatedAt", "-research", "-author")
)

// Snapshot ist der vollständige Datenbestand zu einem Zeitpunkt.
type Snapshot struct {
	CreatedAt       time.Time        `json:"createdAt"`
	Research        []map[string]any `json:"research"`
	Authors         []map[string]any `json:"authors"`
	ResearchAuthors []map[string]any `json:"researchauthors"`
}

type snapshotSource interface {
	ListResearch(ctx context.Context) ([]models.Research, error)
	ListAuthors(ctx context.Context) ([]models.Author, error)
	ListResearchAuthors(ctx context.Context) ([]models.ResearchAuthor, error)
}

func buildSnapshot(ctx context.Context, src snapshotSource, now time.Time) (*Snapshot, error) {
	papers, err := src.ListResearch(ctx)
	if err != nil {
		return nil, err
	}
	authors, err := src.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}
	links, err := src.ListResearchAuthors(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		CreatedAt:       now.UTC(),
		Research:        serializer.RenderList(researchExportView, papers),
		Authors:         serializer.RenderList(authorExportView, authors),
		ResearchAuthors: serializer.RenderList(linkExportView, links),
	}, nil
}

// encodeSnapshot schreibt den Snapshot als gzip-komprimiertes JSON.
func encodeSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(s); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func backupName(now time.Time) string {
	return fmt.Sprintf("backup-%s.json.gz", now.UTC().Format("2006-01-02T15-04-05Z"))
}

// runBackup erstellt, lädt hoch und rotiert ein Backup.
func runBackup(ctx context.Context, src snapshotSource, backups *storage.Backups, keep int, log *zap.Logger) error {
	now := time.Now()
	snap, err := buildSnapshot(ctx, src, now)
	if err != nil {
		return fmt.Errorf("build snapshot: %w", err)
	}
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	key, err := backups.Upload(ctx, backupName(now), data)
	if err != nil {
		return err
	}
	log.Info("Backup uploaded",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
		zap.Int("research", len(snap.Research)),
		zap.Int("authors", len(snap.Authors)),
		zap.Int("links", len(snap.ResearchAuthors)))

	if _, err := backups.Rotate(ctx, keep); err != nil {
		return fmt.Errorf("rotate backups: %w", err)
	}
	return nil
}
