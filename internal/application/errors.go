package application

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is suspended or inactive")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSessionUnavailable = errors.New("session store unavailable")
	ErrForbidden          = errors.New("forbidden")

	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrWrongPassword  = errors.New("current password is incorrect")
	ErrSelfAction     = errors.New("admins cannot suspend, demote or delete themselves")
	ErrUserHasHistory = errors.New("user has contributions or pools")

	ErrCreatorNotFound    = errors.New("creator not found")
	ErrCreatorExists      = errors.New("creator profile already exists")
	ErrCreatorNotVerified = errors.New("creator is not verified")
	ErrCreatorLocked      = errors.New("identity fields cannot change after verification")
	ErrCreatorHasPools    = errors.New("creator still owns pools")

	ErrPoolNotFound         = errors.New("pool not found")
	ErrPoolClosed           = errors.New("pool is not accepting contributions")
	ErrInvalidTransition    = errors.New("invalid pool status transition")
	ErrPoolHasContributions = errors.New("pool has contributions")
	ErrPoolTargetLocked     = errors.New("goal and contributors cannot change once slots are filled")
	ErrInvalidDeadline      = errors.New("deadline must be in the future")
	ErrInvalidGoal          = errors.New("goal is out of range")

	ErrInvalidSlots         = errors.New("invalid slot count")
	ErrSlotsUnavailable     = errors.New("not enough slots remaining")
	ErrAmountMismatch       = errors.New("amount does not match the slot total")
	ErrContributionNotFound = errors.New("contribution not found")
	ErrPaymentFailed        = errors.New("payment was not successful")
	ErrPaymentPending       = errors.New("payment is still pending")
	ErrPaymentsDisabled     = errors.New("payments are not configured")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrNotPaid              = errors.New("contribution is not paid")
	ErrInvalidDelivery      = errors.New("invalid delivery status change")

	ErrTeamMemberNotFound = errors.New("team member not found")

	ErrInvalidImage    = errors.New("file must be a JPEG, PNG, WebP or GIF image")
	ErrUploadsDisabled = errors.New("image uploads are not configured")
)
