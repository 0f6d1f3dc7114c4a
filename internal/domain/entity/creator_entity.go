package entity

import "time"

type CreatorStatus string

const (
	CreatorPending   CreatorStatus = "PENDING"
	CreatorVerified  CreatorStatus = "VERIFIED"
	CreatorSuspended CreatorStatus = "SUSPENDED"
)

// IDType is the KYC document kind a creator registers with.
type IDType string

const (
	IDTypeNIN            IDType = "NIN"
	IDTypeBVN            IDType = "BVN"
	IDTypeDriversLicense IDType = "DRIVERS_LICENSE"
	IDTypePassport       IDType = "PASSPORT"
	IDTypeVotersCard     IDType = "VOTERS_CARD"
)

// Creator is a KYC profile attached to a user account. Only VERIFIED
// creators may create and manage pools.
type Creator struct {
	ID           string
	UserID       string
	Name         string
	Email        string
	Phone        string
	Organization string
	Address      string
	IDType       IDType
	IDNumber     string
	Status       CreatorStatus
	PoolsCreated int
	TotalRaised  int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c *Creator) IsVerified() bool { return c != nil && c.Status == CreatorVerified }

func ValidCreatorStatus(s string) bool {
	switch CreatorStatus(s) {
	case CreatorPending, CreatorVerified, CreatorSuspended:
		return true
	}
	return false
}

func ValidIDType(s string) bool {
	switch IDType(s) {
	case IDTypeNIN, IDTypeBVN, IDTypeDriversLicense, IDTypePassport, IDTypeVotersCard:
		return true
	}
	return false
}
