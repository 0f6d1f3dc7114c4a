package application

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villagemarket/village-market/internal/domain/entity"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
)

type memTeam struct {
	mu      sync.Mutex
	members map[string]*entity.TeamMember
}

func newMemTeam() *memTeam { return &memTeam{members: map[string]*entity.TeamMember{}} }

func (r *memTeam) Create(_ context.Context, m *entity.TeamMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = uuid.NewString()
	cp := *m
	r.members[m.ID] = &cp
	return nil
}

func (r *memTeam) GetByID(_ context.Context, id string) (*entity.TeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memTeam) Update(_ context.Context, m *entity.TeamMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[m.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *m
	r.members[m.ID] = &cp
	return nil
}

func (r *memTeam) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.members, id)
	return nil
}

func (r *memTeam) List(_ context.Context) ([]entity.TeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.TeamMember, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type memImages struct {
	uploaded  []string
	deleted   []string
	deleteErr error
}

func (s *memImages) Upload(_ context.Context, folder, filename, _ string, r io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	url := "https://img.test/" + folder + "/" + filename
	s.uploaded = append(s.uploaded, url)
	return url, nil
}

func (s *memImages) Delete(_ context.Context, url string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, url)
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestTeamMember_CreateUpdateList(t *testing.T) {
	svc := NewTeamMemberService(newMemTeam(), nil, nil)

	b, err := svc.Create(t.Context(), TeamMemberInput{Name: ptr(" Bola "), Role: ptr("Ops"), DisplayOrder: ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, "Bola", b.Name)
	_, err = svc.Create(t.Context(), TeamMemberInput{Name: ptr("Ada"), Role: ptr("CEO"), DisplayOrder: ptr(1)})
	require.NoError(t, err)

	updated, err := svc.Update(t.Context(), b.ID, TeamMemberInput{Bio: ptr("Runs logistics"), Name: ptr("  ")})
	require.NoError(t, err)
	assert.Equal(t, "Bola", updated.Name, "blank name is ignored")
	assert.Equal(t, "Runs logistics", updated.Bio)

	list, err := svc.List(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ada", list[0].Name)

	_, err = svc.Update(t.Context(), "missing", TeamMemberInput{})
	assert.ErrorIs(t, err, ErrTeamMemberNotFound)
}

func TestTeamMember_AvatarReplaceAndDelete(t *testing.T) {
	images := &memImages{}
	svc := NewTeamMemberService(newMemTeam(), images, nil)
	m, err := svc.Create(t.Context(), TeamMemberInput{Name: ptr("Ada"), Role: ptr("CEO")})
	require.NoError(t, err)

	m, err = svc.UploadAvatar(t.Context(), m.ID, Upload{Filename: "a.png", ContentType: "image/png", Body: strings.NewReader("png")})
	require.NoError(t, err)
	first := m.AvatarURL
	assert.Equal(t, "https://img.test/team/a.png", first)

	m, err = svc.UploadAvatar(t.Context(), m.ID, Upload{Filename: "b.jpg", ContentType: "image/jpeg", Body: strings.NewReader("jpg")})
	require.NoError(t, err)
	assert.Equal(t, []string{first}, images.deleted, "replaced avatar removed")

	require.NoError(t, svc.Delete(t.Context(), m.ID))
	assert.Equal(t, []string{first, m.AvatarURL}, images.deleted)
	assert.ErrorIs(t, svc.Delete(t.Context(), m.ID), ErrTeamMemberNotFound)
}
