package models

import "time"

// HourlyProduction buckets scan counts per employee and working hour
// (09:00-17:00 shift), one row per employee per date. Feeds the hourly
// trend chart only; the task counters are authoritative.
type HourlyProduction struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EmployeeID uint      `gorm:"not null;uniqueIndex:idx_employee_date" json:"employee_id"`
	Date       time.Time `gorm:"type:date;not null;uniqueIndex:idx_employee_date" json:"date"`
	H09To10    int       `gorm:"column:h09_10;not null;default:0" json:"09_10"`
	H10To11    int       `gorm:"column:h10_11;not null;default:0" json:"10_11"`
	H11To12    int       `gorm:"column:h11_12;not null;default:0" json:"11_12"`
	H12To13    int       `gorm:"column:h12_01;not null;default:0" json:"12_01"`
	H13To14    int       `gorm:"column:h01_02;not null;default:0" json:"01_02"`
	H14To15    int       `gorm:"column:h02_03;not null;default:0" json:"02_03"`
	H15To16    int       `gorm:"column:h03_04;not null;default:0" json:"03_04"`
	H16To17    int       `gorm:"column:h04_05;not null;default:0" json:"04_05"`
	Total      int       `gorm:"not null;default:0" json:"total"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BucketColumn maps an hour-of-day to its bucket column name, or "" when the
// hour falls outside the tracked shift.
func BucketColumn(hour int) string {
	switch hour {
	case 9:
		return "h09_10"
	case 10:
		return "h10_11"
	case 11:
		return "h11_12"
	case 12:
		return "h12_01"
	case 13:
		return "h01_02"
	case 14:
		return "h02_03"
	case 15:
		return "h03_04"
	case 16:
		return "h04_05"
	}
	return ""
}
