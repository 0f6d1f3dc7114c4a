package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villagemarket/village-market/config"
)

func TestRender_AllTemplates(t *testing.T) {
	cfg := &config.Config{AppName: "Village Market", CompanyName: "Village Market Ltd", FrontendURL: "http://localhost:3000"}
	data := map[string]map[string]any{
		Welcome:             NewWelcomeData(cfg, "Ada", "ada@example.com"),
		ResetPassword:       NewResetPasswordData(cfg, "Ada", "ada@example.com", "http://x/reset?token=t", WithExpiresIn(30*time.Minute)),
		CreatorStatus:       NewCreatorStatusData(cfg, "Ada", "ada@example.com", "VERIFIED"),
		ContributionReceipt: NewContributionReceiptData(cfg, "Ada", "ada@example.com", "Rice", 75000, 3, "VM-123", WithTime(time.Now())),
		DeliveryUpdate:      NewDeliveryUpdateData(cfg, "Ada", "ada@example.com", "Rice", "SHIPPED"),
		PoolBroadcast:       NewPoolBroadcastData(cfg, "Ada", "ada@example.com", "Rice", "Pickup", "Collect at the market square"),
	}
	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			subject, text, html, err := Render(name, data[name])
			require.NoError(t, err)
			assert.NotEmpty(t, subject)
			assert.Contains(t, text, "Ada")
			assert.Contains(t, html, "Ada")
		})
	}
}

func TestRender_ReceiptFormatsAmount(t *testing.T) {
	data := NewContributionReceiptData(nil, "Ada", "ada@example.com", "Rice", 1250000, 2, "VM-1")
	subject, text, _, err := Render(ContributionReceipt, data)
	require.NoError(t, err)
	assert.Equal(t, "Payment received for Rice", subject)
	assert.Contains(t, text, "₦1,250,000")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", nil)
	assert.Error(t, err)
}

func TestNaira(t *testing.T) {
	assert.Equal(t, "₦0", naira(int64(0)))
	assert.Equal(t, "₦999", naira(999))
	assert.Equal(t, "₦25,000", naira(float64(25000)))
	assert.Equal(t, "-₦1,000", naira(int64(-1000)))
}
