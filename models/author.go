package models

import (
	"time"

	"gorm.io/gorm"
)

// FieldOfStudy ist das Fachgebiet eines Autors.
type FieldOfStudy string

const (
	FieldAI              FieldOfStudy = "AI"
	FieldRobotics        FieldOfStudy = "Robotics"
	FieldMachineLearning FieldOfStudy = "Machine Learning"
	FieldVision          FieldOfStudy = "Vision"
	FieldCybersecurity   FieldOfStudy = "Cybersecurity"
)

// FieldsOfStudy listet alle erlaubten Fachgebiete.
var FieldsOfStudy = []FieldOfStudy{
	FieldAI,
	FieldRobotics,
	FieldMachineLearning,
	FieldVision,
	FieldCybersecurity,
}

// ParseFieldOfStudy prüft einen Freitext gegen die feste Liste der Fachgebiete.
// Groß-/Kleinschreibung und Leerzeichen müssen exakt stimmen.
func ParseFieldOfStudy(s string) (FieldOfStudy, error) {
	for _, f := range FieldsOfStudy {
		if string(f) == s {
			return f, nil
		}
	}
	return "", invalid("fieldOfStudy", "invalid field %q", s)
}

// Author repräsentiert einen Autor mit seinem Fachgebiet.
type Author struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Name         *string      `json:"name"`
	FieldOfStudy FieldOfStudy `json:"fieldOfStudy" gorm:"not null"`

	ResearchAuthors []ResearchAuthor `json:"-" gorm:"foreignKey:AuthorID"`
}

// TableName gibt explizit den Tabellennamen an.
func (Author) TableName() string {
	return "authors"
}

// NewAuthor erstellt einen Autor; das Fachgebiet muss aus FieldsOfStudy stammen.
func NewAuthor(name *string, field string) (*Author, error) {
	f, err := ParseFieldOfStudy(field)
	if err != nil {
		return nil, err
	}
	return &Author{Name: name, FieldOfStudy: f}, nil
}

func (a *Author) SetFieldOfStudy(field string) error {
	f, err := ParseFieldOfStudy(field)
	if err != nil {
		return err
	}
	a.FieldOfStudy = f
	a.UpdatedAt = time.Now()
	return nil
}

func (a *Author) SetName(name *string) {
	a.Name = name
	a.UpdatedAt = time.Now()
}

// Research projiziert die geladenen Verknüpfungen auf die Paper des Autors.
func (a *Author) Research() []*Research {
	papers := make([]*Research, 0, len(a.ResearchAuthors))
	for i := range a.ResearchAuthors {
		if r := a.ResearchAuthors[i].Research; r != nil {
			papers = append(papers, r)
		}
	}
	return papers
}

// BeforeSave verhindert das Speichern eines unbekannten Fachgebiets.
func (a *Author) BeforeSave(tx *gorm.DB) error {
	_, err := ParseFieldOfStudy(string(a.FieldOfStudy))
	return err
}
