package entity

// DefaultBadge is the style class for statuses outside the known enums.
const DefaultBadge = "bg-gray-100 text-gray-800"

var badgeClasses = map[string]string{
	// shared by several enums
	"PENDING":   "bg-yellow-100 text-yellow-800",
	"ACTIVE":    "bg-green-100 text-green-800",
	"SUSPENDED": "bg-red-100 text-red-800",
	"CANCELLED": "bg-red-100 text-red-800",

	string(UserInactive):        "bg-gray-200 text-gray-600",
	string(CreatorVerified):     "bg-blue-100 text-blue-800",
	string(PoolCompleted):       "bg-purple-100 text-purple-800",
	string(ContributionSuccess): "bg-green-100 text-green-800",
	string(ContributionFailed):  "bg-red-100 text-red-800",
	string(DeliveryProcessing):  "bg-indigo-100 text-indigo-800",
	string(DeliveryShipped):     "bg-blue-100 text-blue-800",
	string(DeliveryDelivered):   "bg-green-100 text-green-800",
}

// BadgeClass maps a status value to the style class the frontend renders it
// with. Unknown values get DefaultBadge.
func BadgeClass(status string) string {
	if c, ok := badgeClasses[status]; ok {
		return c
	}
	return DefaultBadge
}
