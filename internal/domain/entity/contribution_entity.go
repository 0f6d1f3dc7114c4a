package entity

import "time"

type ContributionStatus string

const (
	ContributionPending ContributionStatus = "PENDING"
	ContributionSuccess ContributionStatus = "SUCCESS"
	ContributionFailed  ContributionStatus = "FAILED"
)

type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "PENDING"
	DeliveryProcessing DeliveryStatus = "PROCESSING"
	DeliveryShipped    DeliveryStatus = "SHIPPED"
	DeliveryDelivered  DeliveryStatus = "DELIVERED"
	DeliveryCancelled  DeliveryStatus = "CANCELLED"
)

// Contribution is a claim on Slots slots of a pool. It is created PENDING when
// payment is initialized (holding the slots) and becomes SUCCESS once the
// gateway confirms the charge.
type Contribution struct {
	ID             string
	PoolID         string
	UserID         string
	Amount         int64
	Slots          int
	Reference      string
	Status         ContributionStatus
	DeliveryStatus DeliveryStatus
	PaidAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// read-side joins, empty on writes
	PoolTitle string
	UserName  string
	UserEmail string
}

var deliveryOrder = map[DeliveryStatus]int{
	DeliveryPending:    0,
	DeliveryProcessing: 1,
	DeliveryShipped:    2,
	DeliveryDelivered:  3,
}

// CanAdvanceDelivery reports whether delivery tracking may move from one
// status to another. Tracking only moves forward; CANCELLED is reachable
// from anything not yet delivered.
func CanAdvanceDelivery(from, to DeliveryStatus) bool {
	if from == DeliveryDelivered || from == DeliveryCancelled {
		return false
	}
	if to == DeliveryCancelled {
		return true
	}
	f, okf := deliveryOrder[from]
	t, okt := deliveryOrder[to]
	return okf && okt && t > f
}

func ValidDeliveryStatus(s string) bool {
	switch DeliveryStatus(s) {
	case DeliveryPending, DeliveryProcessing, DeliveryShipped, DeliveryDelivered, DeliveryCancelled:
		return true
	}
	return false
}

func ValidContributionStatus(s string) bool {
	switch ContributionStatus(s) {
	case ContributionPending, ContributionSuccess, ContributionFailed:
		return true
	}
	return false
}
