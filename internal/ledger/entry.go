// internal/ledger/entry.go
package ledger

import "time"

// Categories is the closed set of bookkeeping categories. Both the
// deterministic parser and the classifier validator reject anything outside
// this list, case-sensitively.
var Categories = []string{"餐飲", "交通", "日用品", "娛樂", "醫療", "教育", "其他"}

// IsCategory reports whether s is an exact member of Categories.
func IsCategory(s string) bool {
	for _, c := range Categories {
		if s == c {
			return true
		}
	}
	return false
}

// Entry is one persisted bookkeeping record. Date is an ISO calendar date
// (YYYY-MM-DD); Amount is strictly positive by the time a row reaches the
// store. Memo is optional free text.
type Entry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Date      string    `json:"date" gorm:"size:10;index"`
	Category  string    `json:"category" gorm:"size:32;index"`
	Amount    float64   `json:"amount"`
	Memo      string    `json:"memo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName implements the GORM tabler interface.
func (Entry) TableName() string { return "entries" }

// LogRecord is one append-only audit row. The pipeline only writes these;
// they are read back through the inspection endpoint.
type LogRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Level     string    `json:"level" gorm:"size:16;index"`
	Message   string    `json:"message"`
	Meta      string    `json:"meta"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName implements the GORM tabler interface.
func (LogRecord) TableName() string { return "logs" }
