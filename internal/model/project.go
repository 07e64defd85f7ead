package model

import "time"

type Project struct {
	ID           int        `json:"id"`
	ClientID     int        `json:"client_id"`
	Tag          string     `json:"tag"` // unique, e.g. "CE023913_500_37 - NAME"
	DetailedName string     `json:"detailed_name"`
	DueDate      *time.Time `json:"due_date"`
	CreatedAt    time.Time  `json:"created_at"`
}
