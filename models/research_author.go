package models

import "time"

// ResearchAuthor verknüpft genau ein Paper mit genau einem Autor (n:m-Zwischentabelle).
type ResearchAuthor struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	AuthorID   uint `json:"authorId" gorm:"not null;index"`
	ResearchID uint `json:"researchId" gorm:"not null;index"`

	Author   *Author   `json:"-" gorm:"foreignKey:AuthorID;references:ID"`
	Research *Research `json:"-" gorm:"foreignKey:ResearchID;references:ID"`
}

// TableName gibt explizit den Tabellennamen an.
func (ResearchAuthor) TableName() string {
	return "researchauthors"
}

// NewResearchAuthor erstellt eine Verknüpfung. Ob beide IDs existieren,
// prüft erst die Persistenzschicht beim Einfügen.
func NewResearchAuthor(authorID, researchID uint) (*ResearchAuthor, error) {
	if authorID == 0 {
		return nil, invalid("authorId", "is required")
	}
	if researchID == 0 {
		return nil, invalid("researchId", "is required")
	}
	return &ResearchAuthor{AuthorID: authorID, ResearchID: researchID}, nil
}
