package storage

import (
	"context"
	"errors"
	"fmt"

	"research-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store ist das Gateway zur relationalen Datenbank.
// Schreibende Operationen laufen jeweils in einer eigenen Transaktion, die auf jedem
// Rückweg committet oder zurückgerollt wird.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStore(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

// Migrate legt die drei Tabellen samt Fremdschlüsseln an.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&models.Research{}, &models.Author{}, &models.ResearchAuthor{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (s *Store) ListResearch(ctx context.Context) ([]models.Research, error) {
	var papers []models.Research
	if err := s.db.WithContext(ctx).Order("id").Find(&papers).Error; err != nil {
		return nil, fmt.Errorf("list research: %w", err)
	}
	return papers, nil
}

// GetResearch lädt ein Paper mitsamt Verknüpfungen und deren Autoren.
func (s *Store) GetResearch(ctx context.Context, id uint) (*models.Research, error) {
	var r models.Research
	err := s.db.WithContext(ctx).
		Preload("ResearchAuthors", orderByID).
		Preload("ResearchAuthors.Author").
		First(&r, id).Error
	if err != nil {
		return nil, lookupErr("research", err)
	}
	return &r, nil
}

func (s *Store) CreateResearch(ctx context.Context, r *models.Research) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create research: %w", err)
	}
	return nil
}

// DeleteResearch löscht zuerst alle Verknüpfungen des Papers, dann das Paper selbst.
func (s *Store) DeleteResearch(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Research{}, id).Error; err != nil {
			return lookupErr("research", err)
		}
		res := tx.Where("research_id = ?", id).Delete(&models.ResearchAuthor{})
		if res.Error != nil {
			return fmt.Errorf("delete research links: %w", res.Error)
		}
		if err := tx.Delete(&models.Research{}, id).Error; err != nil {
			return fmt.Errorf("delete research: %w", err)
		}
		s.log.Info("Research deleted", zap.Uint("id", id), zap.Int64("links_removed", res.RowsAffected))
		return nil
	})
}

func (s *Store) ListAuthors(ctx context.Context) ([]models.Author, error) {
	var authors []models.Author
	if err := s.db.WithContext(ctx).Order("id").Find(&authors).Error; err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return authors, nil
}

// GetAuthor lädt einen Autor mitsamt Verknüpfungen und deren Papern.
func (s *Store) GetAuthor(ctx context.Context, id uint) (*models.Author, error) {
	var a models.Author
	err := s.db.WithContext(ctx).
		Preload("ResearchAuthors", orderByID).
		Preload("ResearchAuthors.Research").
		First(&a, id).Error
	if err != nil {
		return nil, lookupErr("author", err)
	}
	return &a, nil
}

func (s *Store) CreateAuthor(ctx context.Context, a *models.Author) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create author: %w", err)
	}
	return nil
}

// DeleteAuthor entfernt Verknüpfungen und Autor in einer Transaktion.
func (s *Store) DeleteAuthor(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Author{}, id).Error; err != nil {
			return lookupErr("author", err)
		}
		res := tx.Where("author_id = ?", id).Delete(&models.ResearchAuthor{})
		if res.Error != nil {
			return fmt.Errorf("delete author links: %w", res.Error)
		}
		if err := tx.Delete(&models.Author{}, id).Error; err != nil {
			return fmt.Errorf("delete author: %w", err)
		}
		s.log.Info("Author deleted", zap.Uint("id", id), zap.Int64("links_removed", res.RowsAffected))
		return nil
	})
}

func (s *Store) ListResearchAuthors(ctx context.Context) ([]models.ResearchAuthor, error) {
	var links []models.ResearchAuthor
	if err := s.db.WithContext(ctx).Order("id").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("list research authors: %w", err)
	}
	return links, nil
}

// CreateResearchAuthor prüft beide Fremdschlüssel, legt die Verknüpfung an und
// hängt Autor und Paper an das Ergebnis. Fehlt eine Seite, wird nichts geschrieben.
func (s *Store) CreateResearchAuthor(ctx context.Context, link *models.ResearchAuthor) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var author models.Author
		if err := tx.First(&author, link.AuthorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &models.ReferentialError{Field: "authorId", ID: link.AuthorID}
			}
			return fmt.Errorf("lookup author: %w", err)
		}
		var research models.Research
		if err := tx.First(&research, link.ResearchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &models.ReferentialError{Field: "researchId", ID: link.ResearchID}
			}
			return fmt.Errorf("lookup research: %w", err)
		}
		if err := tx.Create(link).Error; err != nil {
			return fmt.Errorf("create research author: %w", err)
		}
		link.Author = &author
		link.Research = &research
		return nil
	})
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func lookupErr(entity string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", entity, models.ErrNotFound)
	}
	return fmt.Errorf("lookup %s: %w", entity, err)
}
