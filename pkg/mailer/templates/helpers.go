package templates

import (
	"time"

	"github.com/villagemarket/village-market/config"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option { return func(d *EmailData) { d.IP = ip } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}
func WithActionURL(url string) Option { return func(d *EmailData) { d.ActionURL = url } }
func WithResetURL(url string) Option  { return func(d *EmailData) { d.ResetURL = url } }

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		utc := time.Now().Add(dur).UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04")
	}
}

// WithPool fills the pool-related fields shared by receipts and updates.
func WithPool(title string) Option { return func(d *EmailData) { d.PoolTitle = title } }

func WithPayment(amount int64, slots int, reference string) Option {
	return func(d *EmailData) {
		d.Amount = amount
		d.Slots = slots
		d.Reference = reference
	}
}

func WithStatus(status string) Option { return func(d *EmailData) { d.Status = status } }

// NewBaseEmailData fills company fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ string, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,
	}
	if cfg != nil {
		d.CompanyName = cfg.CompanyName
		d.CompanyAddress = cfg.CompanyAddress
		d.AppName = cfg.AppName
		d.LogoURL = cfg.LogoURL
		d.SupportURL = cfg.SupportURL
		d.PrivacyURL = cfg.PrivacyURL
		d.UnsubscribeURL = cfg.UnsubscribeURL
		d.ActionURL = cfg.FrontendURL
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, Welcome, name, email, opts...))
}

func NewResetPasswordData(cfg *config.Config, name, email, resetURL string, opts ...Option) map[string]any {
	opts = append([]Option{WithResetURL(resetURL)}, opts...)
	return ToMap(NewBaseEmailData(cfg, ResetPassword, name, email, opts...))
}

func NewCreatorStatusData(cfg *config.Config, name, email, status string, opts ...Option) map[string]any {
	opts = append([]Option{WithStatus(status)}, opts...)
	return ToMap(NewBaseEmailData(cfg, CreatorStatus, name, email, opts...))
}

func NewContributionReceiptData(cfg *config.Config, name, email, poolTitle string, amount int64, slots int, reference string, opts ...Option) map[string]any {
	opts = append([]Option{WithPool(poolTitle), WithPayment(amount, slots, reference)}, opts...)
	return ToMap(NewBaseEmailData(cfg, ContributionReceipt, name, email, opts...))
}

func NewDeliveryUpdateData(cfg *config.Config, name, email, poolTitle, status string, opts ...Option) map[string]any {
	opts = append([]Option{WithPool(poolTitle), WithStatus(status)}, opts...)
	return ToMap(NewBaseEmailData(cfg, DeliveryUpdate, name, email, opts...))
}

func NewPoolBroadcastData(cfg *config.Config, name, email, poolTitle, subject, message string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, PoolBroadcast, name, email, append([]Option{WithPool(poolTitle)}, opts...)...)
	d.Subject = subject
	d.Message = message
	return ToMap(d)
}
