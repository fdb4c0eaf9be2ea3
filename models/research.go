package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Research repräsentiert ein wissenschaftliches Paper.
type Research struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Topic     *string `json:"topic"`
	Year      int     `json:"year" gorm:"not null"`
	PageCount *int    `json:"pageCount"`

	ResearchAuthors []ResearchAuthor `json:"-" gorm:"foreignKey:ResearchID"`
}

// TableName gibt explizit den Tabellennamen an.
func (Research) TableName() string {
	return "research"
}

// NewResearch erstellt ein Paper und prüft dabei das Jahr.
func NewResearch(topic *string, year int, pageCount *int) (*Research, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}
	return &Research{Topic: topic, Year: year, PageCount: pageCount}, nil
}

// SetYear ändert das Jahr; ungültige Werte lassen das Paper unverändert.
func (r *Research) SetYear(year int) error {
	if err := ValidateYear(year); err != nil {
		return err
	}
	r.Year = year
	r.touch()
	return nil
}

func (r *Research) SetTopic(topic *string) {
	r.Topic = topic
	r.touch()
}

func (r *Research) SetPageCount(pageCount *int) {
	r.PageCount = pageCount
	r.touch()
}

func (r *Research) touch() {
	r.UpdatedAt = time.Now()
}

// Authors projiziert die geladenen Verknüpfungen auf ihre Autoren.
// Die Liste ist eine reine Sicht und wird nie gespeichert.
func (r *Research) Authors() []*Author {
	authors := make([]*Author, 0, len(r.ResearchAuthors))
	for i := range r.ResearchAuthors {
		if a := r.ResearchAuthors[i].Author; a != nil {
			authors = append(authors, a)
		}
	}
	return authors
}

// BeforeSave verhindert, dass ein ungültiges Jahr in der Datenbank landet.
func (r *Research) BeforeSave(tx *gorm.DB) error {
	return ValidateYear(r.Year)
}

// ValidateYear akzeptiert nur Jahre mit genau vier Dezimalstellen.
func ValidateYear(year int) error {
	if year < 1000 || year > 9999 {
		return invalid("year", "must be 4 digits, got %d", year)
	}
	return nil
}

// ParseYear liest ein Jahr aus einem rohen JSON-Wert. Nur Ganzzahl-Literale sind erlaubt.
func ParseYear(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, invalid("year", "is required")
	}
	year, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, invalid("year", "must be an integer")
	}
	if err := ValidateYear(year); err != nil {
		return 0, err
	}
	return year, nil
}
