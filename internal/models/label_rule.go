package models

import (
	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"
	"gorm.io/gorm"
)

// LabelRule assigns a label to unlabeled transactions whose description
// matches the glob pattern. Rules are evaluated by ascending priority, the
// first match wins.
type LabelRule struct {
	DefaultModel
	OwnerID  uuid.UUID `gorm:"index"`
	Priority uint
	Match    string
	LabelID  uuid.UUID
	Label    Label `json:"-"`
}

func (r *LabelRule) BeforeCreate(tx *gorm.DB) error {
	_ = r.DefaultModel.BeforeCreate(tx)

	return tx.First(&Label{}, r.LabelID).Error
}

// ApplyLabelRules sets the label of an unlabeled transaction from the first
// matching rule of its owner. Transactions that already carry a label are
// left alone.
func ApplyLabelRules(db *gorm.DB, transaction *Transaction) error {
	if transaction.LabelID != nil {
		return nil
	}

	var rules []LabelRule
	err := db.
		Where(&LabelRule{OwnerID: transaction.OwnerID}).
		Order("priority ASC").
		Find(&rules).Error
	if err != nil {
		return err
	}

	for _, rule := range rules {
		if glob.Glob(rule.Match, transaction.Description) {
			id := rule.LabelID
			transaction.LabelID = &id
			return nil
		}
	}

	return nil
}
