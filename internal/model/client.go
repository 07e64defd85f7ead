package model

import "time"

// Client is a billing entity owned by the user who created it.
// A client groups projects; deleting a client cascades to its projects.
type Client struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	OwnerUserID int       `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}
