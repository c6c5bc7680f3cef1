package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Label is a user defined tag classifying ledger transactions and budgets.
// It supersedes the free-text category field.
type Label struct {
	DefaultModel
	OwnerID  uuid.UUID `gorm:"uniqueIndex:label_owner_name"`
	Name     string    `gorm:"uniqueIndex:label_owner_name"`
	Color    string
	Archived bool
}

var ErrLabelNameNotUnique = errors.New("the label name must be unique for the owner")

func (l *Label) BeforeSave(_ *gorm.DB) error {
	l.Name = strings.TrimSpace(l.Name)
	l.Color = strings.TrimSpace(l.Color)

	return nil
}
