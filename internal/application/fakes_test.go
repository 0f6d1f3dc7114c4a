package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/villagemarket/village-market/internal/domain/entity"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
	"github.com/villagemarket/village-market/internal/infrastructure/payment"
)

// memDB backs the in-memory repositories so cross-table updates (settle,
// pool counters) behave like the SQL ones.
type memDB struct {
	mu            sync.Mutex
	users         map[string]*entity.User
	creators      map[string]*entity.Creator
	pools         map[string]*entity.Pool
	contributions map[string]*entity.Contribution
	team          map[string]*entity.TeamMember
}

func newMemDB() *memDB {
	return &memDB{
		users:         map[string]*entity.User{},
		creators:      map[string]*entity.Creator{},
		pools:         map[string]*entity.Pool{},
		contributions: map[string]*entity.Contribution{},
		team:          map[string]*entity.TeamMember{},
	}
}

func page(p repo.Page, n int) (int, int) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	start := p.Offset
	if start > n {
		start = n
	}
	end := start + limit
	if end > n {
		end = n
	}
	return start, end
}

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, u *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, x := range r.db.users {
		if x.Email == u.Email {
			return repo.ErrConflict
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	cp := *u
	r.db.users[u.ID] = &cp
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r memUsers) Update(_ context.Context, u *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.users[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cp := *u
	cp.Password, cp.TotalContributed = cur.Password, cur.TotalContributed
	r.db.users[u.ID] = &cp
	return nil
}

func (r memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (r memUsers) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return repo.ErrNotFound
	}
	for _, c := range r.db.contributions {
		if c.UserID == id {
			return repo.ErrConflict
		}
	}
	delete(r.db.users, id)
	return nil
}

func (r memUsers) List(_ context.Context, f repo.UserFilter) ([]entity.User, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.User
	for _, u := range r.db.users {
		if (f.Role == "" || string(u.Role) == f.Role) && (f.Status == "" || string(u.Status) == f.Status) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	s, e := page(f.Page, len(out))
	return out[s:e], len(out), nil
}

func (r memUsers) CountBy(_ context.Context) (map[string]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := map[string]int{}
	for _, u := range r.db.users {
		out["role:"+string(u.Role)]++
		out["status:"+string(u.Status)]++
	}
	return out, nil
}

type memCreators struct{ db *memDB }

func (r memCreators) Create(_ context.Context, c *entity.Creator) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, x := range r.db.creators {
		if x.UserID == c.UserID {
			return repo.ErrConflict
		}
	}
	c.ID = uuid.NewString()
	cp := *c
	r.db.creators[c.ID] = &cp
	return nil
}

func (r memCreators) GetByID(_ context.Context, id string) (*entity.Creator, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.creators[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memCreators) GetByUserID(_ context.Context, userID string) (*entity.Creator, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.creators {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r memCreators) Update(_ context.Context, c *entity.Creator) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.creators[c.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cp := *c
	cp.PoolsCreated, cp.TotalRaised = cur.PoolsCreated, cur.TotalRaised
	r.db.creators[c.ID] = &cp
	return nil
}

func (r memCreators) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.creators[id]; !ok {
		return repo.ErrNotFound
	}
	for _, p := range r.db.pools {
		if p.CreatorID == id {
			return repo.ErrConflict
		}
	}
	delete(r.db.creators, id)
	return nil
}

func (r memCreators) List(_ context.Context, f repo.CreatorFilter) ([]entity.Creator, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Creator
	for _, c := range r.db.creators {
		if f.Status == "" || string(c.Status) == f.Status {
			out = append(out, *c)
		}
	}
	s, e := page(f.Page, len(out))
	return out[s:e], len(out), nil
}

func (r memCreators) CountByStatus(_ context.Context) (map[string]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := map[string]int{}
	for _, c := range r.db.creators {
		out[string(c.Status)]++
	}
	return out, nil
}

type memPools struct{ db *memDB }

func (r memPools) Create(_ context.Context, p *entity.Pool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.creators[p.CreatorID]
	if !ok {
		return repo.ErrConflict
	}
	for _, x := range r.db.pools {
		if x.Slug == p.Slug {
			return repo.ErrConflict
		}
	}
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	cp := *p
	r.db.pools[p.ID] = &cp
	c.PoolsCreated++
	return nil
}

func (r memPools) GetByID(_ context.Context, id string) (*entity.Pool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.pools[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memPools) GetBySlug(_ context.Context, slug string) (*entity.Pool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.pools {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r memPools) Update(_ context.Context, p *entity.Pool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.pools[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if cur.CurrentContributors > 0 && (cur.Goal != p.Goal || cur.Contributors != p.Contributors) {
		return repo.ErrConflict
	}
	cp := *p
	cp.Status, cp.CurrentAmount, cp.CurrentContributors = cur.Status, cur.CurrentAmount, cur.CurrentContributors
	r.db.pools[p.ID] = &cp
	return nil
}

func (r memPools) UpdateStatus(_ context.Context, id string, from, to entity.PoolStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.pools[id]
	if !ok {
		return repo.ErrNotFound
	}
	if p.Status != from {
		return repo.ErrConflict
	}
	p.Status = to
	return nil
}

func (r memPools) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.pools[id]
	if !ok {
		return repo.ErrNotFound
	}
	for _, c := range r.db.contributions {
		if c.PoolID == id && c.Status == entity.ContributionSuccess {
			return repo.ErrConflict
		}
	}
	for cid, c := range r.db.contributions {
		if c.PoolID == id {
			delete(r.db.contributions, cid)
		}
	}
	delete(r.db.pools, id)
	if c, ok := r.db.creators[p.CreatorID]; ok && c.PoolsCreated > 0 {
		c.PoolsCreated--
	}
	return nil
}

func (r memPools) List(_ context.Context, f repo.PoolFilter) ([]entity.Pool, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Pool
	q := strings.ToLower(f.Query)
	for _, p := range r.db.pools {
		if f.Status != "" && string(p.Status) != f.Status {
			continue
		}
		if f.CreatorID != "" && p.CreatorID != f.CreatorID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Title), q) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	s, e := page(f.Page, len(out))
	return out[s:e], len(out), nil
}

func (r memPools) CountByStatus(_ context.Context) (map[string]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := map[string]int{}
	for _, p := range r.db.pools {
		out[string(p.Status)]++
	}
	return out, nil
}

func (r memPools) TotalRaised(_ context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, p := range r.db.pools {
		n += p.CurrentAmount
	}
	return n, nil
}

type memContributions struct{ db *memDB }

func (r memContributions) joined(c *entity.Contribution) *entity.Contribution {
	cp := *c
	if p, ok := r.db.pools[c.PoolID]; ok {
		cp.PoolTitle = p.Title
	}
	if u, ok := r.db.users[c.UserID]; ok {
		cp.UserName, cp.UserEmail = u.Name, u.Email
	}
	return &cp
}

func (r memContributions) Reserve(_ context.Context, c *entity.Contribution, holdTTL time.Duration, check repo.HoldCheck) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.pools[c.PoolID]
	if !ok {
		return repo.ErrNotFound
	}
	held := 0
	for _, x := range r.db.contributions {
		if x.PoolID == c.PoolID && x.Status == entity.ContributionPending && time.Since(x.CreatedAt) < holdTTL {
			held += x.Slots
		}
	}
	cp := *p
	if err := check(&cp, held); err != nil {
		return err
	}
	c.ID = uuid.NewString()
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	stored := *c
	r.db.contributions[c.ID] = &stored
	return nil
}

func (r memContributions) byRef(ref string) *entity.Contribution {
	for _, c := range r.db.contributions {
		if c.Reference == ref {
			return c
		}
	}
	return nil
}

func (r memContributions) Settle(_ context.Context, reference string, paidAt time.Time, check repo.SettleCheck) (*repo.Settlement, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := r.byRef(reference)
	if c == nil {
		return nil, repo.ErrNotFound
	}
	p := r.db.pools[c.PoolID]
	if c.Status == entity.ContributionSuccess {
		cc, pp := *c, *p
		return &repo.Settlement{Contribution: &cc, Pool: &pp, AlreadySettled: true}, nil
	}
	pc, cc := *p, *c
	if err := check(&pc, &cc); err != nil {
		return nil, err
	}
	c.Status = entity.ContributionSuccess
	c.PaidAt = &paidAt
	p.CurrentAmount += c.Amount
	p.CurrentContributors += c.Slots
	if p.Status == entity.PoolActive && p.CurrentContributors >= p.Contributors {
		p.Status = entity.PoolCompleted
	}
	if u, ok := r.db.users[c.UserID]; ok {
		u.TotalContributed += c.Amount
	}
	if cr, ok := r.db.creators[p.CreatorID]; ok {
		cr.TotalRaised += c.Amount
	}
	outC, outP := *c, *p
	return &repo.Settlement{Contribution: &outC, Pool: &outP}, nil
}

func (r memContributions) MarkFailed(_ context.Context, reference string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if c := r.byRef(reference); c != nil && c.Status == entity.ContributionPending {
		c.Status = entity.ContributionFailed
	}
	return nil
}

func (r memContributions) GetByID(_ context.Context, id string) (*entity.Contribution, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.contributions[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return r.joined(c), nil
}

func (r memContributions) GetByReference(_ context.Context, reference string) (*entity.Contribution, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := r.byRef(reference)
	if c == nil {
		return nil, repo.ErrNotFound
	}
	return r.joined(c), nil
}

func (r memContributions) UpdateDelivery(_ context.Context, id string, status entity.DeliveryStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.contributions[id]
	if !ok {
		return repo.ErrNotFound
	}
	c.DeliveryStatus = status
	return nil
}

func (r memContributions) List(_ context.Context, f repo.ContributionFilter) ([]entity.Contribution, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Contribution
	for _, c := range r.db.contributions {
		if (f.PoolID == "" || c.PoolID == f.PoolID) &&
			(f.UserID == "" || c.UserID == f.UserID) &&
			(f.Status == "" || string(c.Status) == f.Status) &&
			(f.DeliveryStatus == "" || string(c.DeliveryStatus) == f.DeliveryStatus) {
			out = append(out, *r.joined(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reference < out[j].Reference })
	s, e := page(f.Page, len(out))
	return out[s:e], len(out), nil
}

func (r memContributions) CountSuccessful(_ context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, c := range r.db.contributions {
		if c.Status == entity.ContributionSuccess {
			n++
		}
	}
	return n, nil
}

func (r memContributions) CountForPool(_ context.Context, poolID string, status entity.ContributionStatus) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, c := range r.db.contributions {
		if c.PoolID == poolID && c.Status == status {
			n++
		}
	}
	return n, nil
}

// fakeGateway answers Verify from txs and accepts the signature "valid".
type fakeGateway struct {
	mu       sync.Mutex
	initErr  error
	inits    []payment.InitializeRequest
	txs      map[string]*payment.Transaction
	verifies int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{txs: map[string]*payment.Transaction{}}
}

func (g *fakeGateway) Initialize(_ context.Context, req payment.InitializeRequest) (*payment.InitializeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initErr != nil {
		return nil, g.initErr
	}
	g.inits = append(g.inits, req)
	return &payment.InitializeResult{AuthorizationURL: "https://checkout.test/" + req.Reference, AccessCode: "ac", Reference: req.Reference}, nil
}

func (g *fakeGateway) Verify(_ context.Context, reference string) (*payment.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifies++
	tx, ok := g.txs[reference]
	if !ok {
		return &payment.Transaction{Status: "ongoing", Reference: reference}, nil
	}
	return tx, nil
}

func (g *fakeGateway) VerifySignature(_ []byte, signature string) bool {
	return signature == "valid"
}

// paid records a successful charge of amount naira for reference.
func (g *fakeGateway) paid(reference string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.txs[reference] = &payment.Transaction{Status: payment.StatusSuccess, Reference: reference, Amount: amount * 100, Currency: "NGN"}
}

type capturedPublisher struct {
	mu   sync.Mutex
	jobs []any
}

func (p *capturedPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, body)
	return nil
}

func (p *capturedPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}
