package entity

import "time"

// TeamMember is public "About" page content.
type TeamMember struct {
	ID           string
	Name         string
	Role         string
	Bio          string
	AvatarURL    string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
