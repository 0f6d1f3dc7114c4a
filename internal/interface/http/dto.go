package handlers

import (
	"time"

	"github.com/villagemarket/village-market/internal/domain/entity"
	"github.com/villagemarket/village-market/internal/domain/pricing"
)

type userDTO struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	AvatarURL        string    `json:"avatar_url"`
	Role             string    `json:"role"`
	Status           string    `json:"status"`
	StatusBadge      string    `json:"status_badge"`
	TotalContributed int64     `json:"total_contributed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toUser(u *entity.User) userDTO {
	return userDTO{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Phone:            u.Phone,
		AvatarURL:        u.AvatarURL,
		Role:             string(u.Role),
		Status:           string(u.Status),
		StatusBadge:      entity.BadgeClass(string(u.Status)),
		TotalContributed: u.TotalContributed,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

type creatorDTO struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Organization string    `json:"organization"`
	Address      string    `json:"address"`
	IDType       string    `json:"id_type"`
	IDNumber     string    `json:"id_number"`
	Status       string    `json:"status"`
	StatusBadge  string    `json:"status_badge"`
	PoolsCreated int       `json:"pools_created"`
	TotalRaised  int64     `json:"total_raised"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toCreator(c *entity.Creator) creatorDTO {
	return creatorDTO{
		ID:           c.ID,
		UserID:       c.UserID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Organization: c.Organization,
		Address:      c.Address,
		IDType:       string(c.IDType),
		IDNumber:     c.IDNumber,
		Status:       string(c.Status),
		StatusBadge:  entity.BadgeClass(string(c.Status)),
		PoolsCreated: c.PoolsCreated,
		TotalRaised:  c.TotalRaised,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type poolDTO struct {
	ID                  string     `json:"id"`
	Slug                string     `json:"slug"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Category            string     `json:"category"`
	ImageURL            string     `json:"image_url"`
	Goal                int64      `json:"goal"`
	Contributors        int        `json:"contributors"`
	CurrentAmount       int64      `json:"current_amount"`
	CurrentContributors int        `json:"current_contributors"`
	PerSlot             int64      `json:"per_slot"`
	RemainingSlots      int        `json:"remaining_slots"`
	Progress            float64    `json:"progress"`
	State               string     `json:"state"`
	City                string     `json:"city"`
	Address             string     `json:"address"`
	Deadline            *time.Time `json:"deadline,omitempty"`
	Status              string     `json:"status"`
	StatusBadge         string     `json:"status_badge"`
	CreatorID           string     `json:"creator_id"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func toPool(p *entity.Pool) poolDTO {
	d := poolDTO{
		ID:                  p.ID,
		Slug:                p.Slug,
		Title:               p.Title,
		Description:         p.Description,
		Category:            string(p.Category),
		ImageURL:            p.ImageURL,
		Goal:                p.Goal,
		Contributors:        p.Contributors,
		CurrentAmount:       p.CurrentAmount,
		CurrentContributors: p.CurrentContributors,
		PerSlot:             pricing.PerSlot(p.Goal, p.Contributors),
		RemainingSlots:      pricing.RemainingSlots(p.Contributors, p.CurrentContributors),
		Progress:            pricing.Progress(p.CurrentAmount, p.Goal),
		State:               p.State,
		City:                p.City,
		Address:             p.Address,
		Status:              string(p.Status),
		StatusBadge:         entity.BadgeClass(string(p.Status)),
		CreatorID:           p.CreatorID,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
	if !p.Deadline.IsZero() {
		dl := p.Deadline
		d.Deadline = &dl
	}
	return d
}

type contributionDTO struct {
	ID                  string     `json:"id"`
	PoolID              string     `json:"pool_id"`
	PoolTitle           string     `json:"pool_title,omitempty"`
	UserID              string     `json:"user_id"`
	UserName            string     `json:"user_name,omitempty"`
	UserEmail           string     `json:"user_email,omitempty"`
	Amount              int64      `json:"amount"`
	Slots               int        `json:"slots"`
	Reference           string     `json:"reference"`
	Status              string     `json:"status"`
	StatusBadge         string     `json:"status_badge"`
	DeliveryStatus      string     `json:"delivery_status"`
	DeliveryStatusBadge string     `json:"delivery_status_badge"`
	PaidAt              *time.Time `json:"paid_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func toContribution(c *entity.Contribution) contributionDTO {
	return contributionDTO{
		ID:                  c.ID,
		PoolID:              c.PoolID,
		PoolTitle:           c.PoolTitle,
		UserID:              c.UserID,
		UserName:            c.UserName,
		UserEmail:           c.UserEmail,
		Amount:              c.Amount,
		Slots:               c.Slots,
		Reference:           c.Reference,
		Status:              string(c.Status),
		StatusBadge:         entity.BadgeClass(string(c.Status)),
		DeliveryStatus:      string(c.DeliveryStatus),
		DeliveryStatusBadge: entity.BadgeClass(string(c.DeliveryStatus)),
		PaidAt:              c.PaidAt,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

type teamMemberDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Bio          string    `json:"bio"`
	AvatarURL    string    `json:"avatar_url"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toTeamMember(m *entity.TeamMember) teamMemberDTO {
	return teamMemberDTO{
		ID:           m.ID,
		Name:         m.Name,
		Role:         m.Role,
		Bio:          m.Bio,
		AvatarURL:    m.AvatarURL,
		DisplayOrder: m.DisplayOrder,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// mapSlice converts a slice of entities into DTOs.
func mapSlice[E any, D any](in []E, fn func(*E) D) []D {
	out := make([]D, 0, len(in))
	for i := range in {
		out = append(out, fn(&in[i]))
	}
	return out
}
