package models

// CodeSequence backs document code generation (order codes and the like).
// LastNo holds the last number handed out; codes are Prefix plus the number
// zero-padded to Padding digits.
type CodeSequence struct {
	Name    string `gorm:"primary_key"`
	Prefix  string
	Padding int
	LastNo  int
}

// TableName sets the table name for CodeSequence
func (CodeSequence) TableName() string {
	return "code_sequences"
}
