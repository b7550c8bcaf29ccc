package model

import "time"

// WorkspaceItem is one entry of a user's workspace: content the user
// authored, copied or imported.
type WorkspaceItem struct {
	User    string
	Type    ContentType
	ID      ContentID
	AddedAt time.Time
}
