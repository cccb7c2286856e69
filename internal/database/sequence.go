package database

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"fabrica/internal/models"
)

// OrderSequence is the sequence production-order codes are drawn from.
const OrderSequence = "production_order"

// FormatCode renders a sequence number as a document code: the prefix plus
// the number zero-padded to the given width.
func FormatCode(prefix string, padding, n int) string {
	format := fmt.Sprintf("%s%%0%dd", prefix, padding)
	return fmt.Sprintf(format, n)
}

// NextSequenceInTx increments the named sequence inside tx and returns the
// next code. Prefix and padding override the sequence's own values when
// non-empty / positive.
func NextSequenceInTx(tx *gorm.DB, name, prefix string, padding int) (string, error) {
	var seq models.CodeSequence
	if err := tx.Where("name = ?", name).First(&seq).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return "", fmt.Errorf("sequence '%s' not found", name)
		}
		return "", fmt.Errorf("failed to get sequence '%s': %w", name, err)
	}

	newNo := seq.LastNo + 1
	if err := tx.Model(&models.CodeSequence{}).Where("name = ?", name).Update("last_no", newNo).Error; err != nil {
		return "", fmt.Errorf("failed to update sequence '%s': %w", name, err)
	}

	if prefix == "" {
		prefix = seq.Prefix
	}
	if padding <= 0 {
		padding = seq.Padding
	}
	return FormatCode(prefix, padding, newNo), nil
}
