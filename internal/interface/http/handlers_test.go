package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/villagemarket/village-market/internal/application"
	"github.com/villagemarket/village-market/internal/domain/entity"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
	"github.com/villagemarket/village-market/internal/infrastructure/payment"
	"github.com/villagemarket/village-market/internal/interface/middleware"
	"github.com/villagemarket/village-market/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// poolRepo serves a fixed set of pools; methods the handlers under test do
// not reach are left to the embedded nil interface.
type poolRepo struct {
	repo.PoolRepository
	pools []entity.Pool
}

func (r *poolRepo) GetByID(_ context.Context, id string) (*entity.Pool, error) {
	for i := range r.pools {
		if r.pools[i].ID == id {
			p := r.pools[i]
			return &p, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *poolRepo) GetBySlug(_ context.Context, slug string) (*entity.Pool, error) {
	for i := range r.pools {
		if r.pools[i].Slug == slug {
			p := r.pools[i]
			return &p, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *poolRepo) List(_ context.Context, f repo.PoolFilter) ([]entity.Pool, int, error) {
	var out []entity.Pool
	for _, p := range r.pools {
		if f.Status == "" || string(p.Status) == f.Status {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func samplePool() entity.Pool {
	return entity.Pool{
		ID:                  uuid.NewString(),
		Slug:                "bag-of-rice-ab12cd",
		Title:               "Bag of rice",
		Category:            entity.CategoryFoodStuffs,
		Goal:                500000,
		Contributors:        20,
		CurrentAmount:       75000,
		CurrentContributors: 3,
		Status:              entity.PoolActive,
		UpdatedAt:           time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func poolRouter(pools ...entity.Pool) *gin.Engine {
	svc := app.NewPoolService(&poolRepo{pools: pools}, nil, nil, nil, nil, nil)
	h := NewPoolHandler(svc, nil)
	r := gin.New()
	r.GET("/pools", h.List)
	r.GET("/pools/:id", h.Get)
	r.GET("/pools/:id/quote", h.Quote)
	r.POST("/pools", func(c *gin.Context) {
		c.Set(middleware.CtxUserID, "u1")
		c.Set(middleware.CtxUserRole, string(entity.RoleContributor))
		h.Create(c)
	})
	return r
}

func serve(r http.Handler, method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{app.ErrPoolNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", app.ErrCreatorNotFound), http.StatusNotFound},
		{app.ErrForbidden, http.StatusForbidden},
		{app.ErrAccountDisabled, http.StatusForbidden},
		{app.ErrInvalidCredentials, http.StatusUnauthorized},
		{app.ErrEmailTaken, http.StatusConflict},
		{app.ErrSlotsUnavailable, http.StatusConflict},
		{app.ErrAmountMismatch, http.StatusBadRequest},
		{app.ErrPaymentFailed, http.StatusPaymentRequired},
		{app.ErrPaymentsDisabled, http.StatusServiceUnavailable},
		{fmt.Errorf("verify payment: %w", payment.ErrGateway), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err), tt.err.Error())
	}
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { writeError(c, nil, errors.New("pq: connection refused")) })

	w := serve(r, http.MethodGet, "/x", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "internal server error", env.Message)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestPoolGet_DerivedFieldsAndETag(t *testing.T) {
	p := samplePool()
	r := poolRouter(p)

	w := serve(r, http.MethodGet, "/pools/"+p.Slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var got poolDTO
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, int64(25000), got.PerSlot)
	assert.Equal(t, 17, got.RemainingSlots)
	assert.InDelta(t, 15.0, got.Progress, 0.001)
	assert.Equal(t, entity.BadgeClass("ACTIVE"), got.StatusBadge)
	assert.Nil(t, got.Deadline)

	w = serve(r, http.MethodGet, "/pools/"+p.ID, "", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestPoolGet_NotFound(t *testing.T) {
	w := serve(poolRouter(), http.MethodGet, "/pools/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, app.ErrPoolNotFound.Error(), decode(t, w).Message)
}

func TestPoolList_ETagAndMeta(t *testing.T) {
	a, b := samplePool(), samplePool()
	b.Status = entity.PoolCompleted
	r := poolRouter(a, b)

	w := serve(r, http.MethodGet, "/pools?status=ACTIVE", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"meta":{"total":1,"limit":20,"offset":0}`)

	w2 := serve(r, http.MethodGet, "/pools?status=ACTIVE", "", map[string]string{"If-None-Match": w.Header().Get("ETag")})
	assert.Equal(t, http.StatusNotModified, w2.Code)

	w3 := serve(r, http.MethodGet, "/pools?status=DRAFT", "", nil)
	assert.Equal(t, http.StatusBadRequest, w3.Code)
	assert.Contains(t, decode(t, w3).Error, "status")
}

func TestPoolQuote(t *testing.T) {
	p := samplePool()
	r := poolRouter(p)

	w := serve(r, http.MethodGet, "/pools/"+p.ID+"/quote?slots=3", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var q map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &q))
	assert.EqualValues(t, 25000, q["per_slot"])
	assert.EqualValues(t, 75000, q["total"])
	assert.EqualValues(t, 17, q["remaining_slots"])

	w = serve(r, http.MethodGet, "/pools/"+p.ID+"/quote?slots=18", "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(r, http.MethodGet, "/pools/"+p.ID+"/quote?slots=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodGet, "/pools/"+p.ID+"/quote?slots=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPoolCreate_ValidationDetails(t *testing.T) {
	w := serve(poolRouter(), http.MethodPost, "/pools", `{"title":"Rice","category":"GADGETS","goal":0}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "invalid payload", env.Message)
	assert.Contains(t, env.Error, "category")
	assert.Contains(t, env.Error, "goal")
}

func TestPoolCreate_GoalUpperBound(t *testing.T) {
	body := `{"title":"Rice","category":"FOOD_STUFFS","goal":9223372036854775807,"contributors":2}`
	w := serve(poolRouter(), http.MethodPost, "/pools", body, nil)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, decode(t, w).Error, "goal")
}

const webhookSecret = "sk_test_handlers"

func sign(body string) string {
	mac := hmac.New(sha512.New, []byte(webhookSecret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func paymentsRouter() *gin.Engine {
	gw := payment.NewPaystack(webhookSecret, "", nil)
	svc := app.NewContributionService(nil, nil, nil, nil, gw, nil, nil, nil, app.ContributionConfig{})
	h := NewContributionHandler(svc, nil, "https://shop.example/payment/success", "https://shop.example/payment/failed")
	r := gin.New()
	r.POST("/payments/webhook", h.Webhook)
	r.GET("/payments/callback", h.Callback)
	return r
}

func TestWebhook_Signature(t *testing.T) {
	r := paymentsRouter()
	body := `{"event":"transfer.success","data":{"reference":"VM-1"}}`

	w := serve(r, http.MethodPost, "/payments/webhook", body, map[string]string{payment.SignatureHeader: "deadbeef"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodPost, "/payments/webhook", body, map[string]string{payment.SignatureHeader: sign(body)})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode(t, w).Success)
}

func TestCallback_MissingReferenceRedirectsToFailure(t *testing.T) {
	w := serve(paymentsRouter(), http.MethodGet, "/payments/callback", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://shop.example/payment/failed?status=missing_reference", w.Header().Get("Location"))
}

func TestWithQuery(t *testing.T) {
	assert.Equal(t, "https://a.example/done?reference=VM-1", withQuery("https://a.example/done", "VM-1", ""))
	assert.Equal(t, "https://a.example/done?reference=VM-1&src=x&status=pending", withQuery("https://a.example/done?src=x", "VM-1", "pending"))
}

func TestHealthReady(t *testing.T) {
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("refused") })

	r := gin.New()
	r.GET("/ok", NewHealthHandler(map[string]Pinger{"postgres": up, "redis": up}).Ready)
	r.GET("/bad", NewHealthHandler(map[string]Pinger{"postgres": up, "redis": down}).Ready)

	w := serve(r, http.MethodGet, "/ok", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/bad", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", decode(t, w).Error["redis"])
	assert.Equal(t, "up", decode(t, w).Error["postgres"])
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	contribs := NewContributionHandler(app.NewContributionService(nil, nil, nil, nil, nil, nil, nil, nil, app.ContributionConfig{}), nil, "", "")
	creators := NewCreatorHandler(app.NewCreatorService(nil, nil, nil), nil, nil)
	users := NewUserHandler(app.NewUserService(nil, nil, nil, nil), nil)
	team := NewTeamHandler(app.NewTeamMemberService(nil, nil, nil), nil)

	r := gin.New()
	r.GET("/contributions/:id", contribs.Get)
	r.GET("/admin/creators/:id", creators.Get)
	r.GET("/users/:id", users.Get)
	r.DELETE("/team-members/:id", team.Delete)

	tests := []struct {
		method, path string
		want         error
	}{
		{http.MethodGet, "/contributions/42", app.ErrContributionNotFound},
		{http.MethodGet, "/admin/creators/not-a-uuid", app.ErrCreatorNotFound},
		{http.MethodGet, "/users/1", app.ErrUserNotFound},
		{http.MethodDelete, "/team-members/abc", app.ErrTeamMemberNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := serve(r, tt.method, tt.path, "", nil)
			require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
			assert.Equal(t, tt.want.Error(), decode(t, w).Message)
		})
	}
}
