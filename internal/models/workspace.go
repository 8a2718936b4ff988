package models

import "time"

// Workspace groups documents, chunks and conversations into one isolation
// scope. Similarity search never crosses workspace boundaries.
type Workspace struct {
	ID        string    `json:"id" badgerhold:"key"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
