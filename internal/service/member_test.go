package service

import (
	"context"
	"sync"
	"testing"

	"github.com/RandilG/Construction-Management/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*domain.Project
	members  *fakeMemberRepo
}

func newFakeProjectRepo(members *fakeMemberRepo) *fakeProjectRepo {
	return &fakeProjectRepo{
		projects: make(map[uuid.UUID]*domain.Project),
		members:  members,
	}
}

func (r *fakeProjectRepo) Create(ctx context.Context, project *domain.Project, ownerID uuid.UUID) error {
	r.mu.Lock()
	r.projects[project.ID] = project
	r.mu.Unlock()

	return r.members.Add(ctx, &domain.ProjectMember{
		ProjectID: project.ID,
		UserID:    ownerID,
		Role:      domain.RoleOwner,
	})
}

func (r *fakeProjectRepo) GetAllForUser(ctx context.Context, userID uuid.UUID) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Project
	for _, project := range r.projects {
		if _, err := r.members.Get(ctx, project.ID, userID); err == nil {
			out = append(out, *project)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) GetOneByID(_ context.Context, id uuid.UUID) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	project, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return project, nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

type memberFixture struct {
	service   *memberService
	members   *fakeMemberRepo
	users     *fakeUserRepo
	projectID uuid.UUID
	ownerID   uuid.UUID
}

func newMemberFixture(t *testing.T) *memberFixture {
	t.Helper()

	members := newFakeMemberRepo()
	projects := newFakeProjectRepo(members)
	users := newFakeUserRepo()

	ownerID := uuid.New()
	project := &domain.Project{ID: uuid.New(), Name: "Dream House"}
	require.NoError(t, projects.Create(context.Background(), project, ownerID))

	return &memberFixture{
		service:   newMemberService(members, projects, users),
		members:   members,
		users:     users,
		projectID: project.ID,
		ownerID:   ownerID,
	}
}

func (f *memberFixture) addUser(t *testing.T, email string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	require.NoError(t, f.users.Create(context.Background(), &domain.User{
		ID:    id,
		Email: email,
		NIC:   email,
	}))
	return id
}

func TestMembersAdd_CountsOutcomesPerUser(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	newUser := f.addUser(t, "new@x.com")
	existing := f.addUser(t, "existing@x.com")
	require.NoError(t, f.members.Add(ctx, &domain.ProjectMember{
		ProjectID: f.projectID, UserID: existing, Role: domain.RoleMember,
	}))
	unknown := uuid.New()

	result, err := f.service.Add(ctx, f.projectID, f.ownerID, []uuid.UUID{newUser, existing, unknown})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 1, result.Errors)

	member, err := f.members.Get(ctx, f.projectID, newUser)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, member.Role)
}

func TestMembersAdd_RequiresAdminRole(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	plain := f.addUser(t, "plain@x.com")
	require.NoError(t, f.members.Add(ctx, &domain.ProjectMember{
		ProjectID: f.projectID, UserID: plain, Role: domain.RoleMember,
	}))

	_, err := f.service.Add(ctx, f.projectID, plain, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.service.Add(ctx, f.projectID, uuid.New(), []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestMembersList_RequiresMembership(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	members, err := f.service.List(ctx, f.projectID, f.ownerID)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	_, err = f.service.List(ctx, f.projectID, uuid.New())
	assert.ErrorIs(t, err, ErrNotProjectMember)
}

func TestMembersUpdateRole(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	member := f.addUser(t, "member@x.com")
	require.NoError(t, f.members.Add(ctx, &domain.ProjectMember{
		ProjectID: f.projectID, UserID: member, Role: domain.RoleMember,
	}))

	require.NoError(t, f.service.UpdateRole(ctx, f.projectID, f.ownerID, member, domain.RoleManager))

	got, err := f.members.Get(ctx, f.projectID, member)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, got.Role)
}

func TestMembersUpdateRole_OwnerOnly(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	admin := f.addUser(t, "admin@x.com")
	require.NoError(t, f.members.Add(ctx, &domain.ProjectMember{
		ProjectID: f.projectID, UserID: admin, Role: domain.RoleAdmin,
	}))
	member := f.addUser(t, "member@x.com")
	require.NoError(t, f.members.Add(ctx, &domain.ProjectMember{
		ProjectID: f.projectID, UserID: member, Role: domain.RoleMember,
	}))

	// Admins may add and remove members but not change roles.
	err := f.service.UpdateRole(ctx, f.projectID, admin, member, domain.RoleManager)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	err = f.service.UpdateRole(ctx, f.projectID, uuid.New(), member, domain.RoleManager)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestMembersUpdateRole_Guards(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	member := f.addUser(t, "member@x.com")
	require.NoError(t, f.members.Add(ctx, &domain.ProjectMember{
		ProjectID: f.projectID, UserID: member, Role: domain.RoleMember,
	}))

	err := f.service.UpdateRole(ctx, f.projectID, f.ownerID, member, domain.MemberRole("owner"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	err = f.service.UpdateRole(ctx, f.projectID, f.ownerID, member, domain.MemberRole("superuser"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	err = f.service.UpdateRole(ctx, f.projectID, f.ownerID, uuid.New(), domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotProjectMember)

	// The owner row is immutable.
	err = f.service.UpdateRole(ctx, f.projectID, f.ownerID, f.ownerID, domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestMembersRemove(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	member := f.addUser(t, "member@x.com")
	require.NoError(t, f.members.Add(ctx, &domain.ProjectMember{
		ProjectID: f.projectID, UserID: member, Role: domain.RoleMember,
	}))

	require.NoError(t, f.service.Remove(ctx, f.projectID, f.ownerID, member))

	_, err := f.members.Get(ctx, f.projectID, member)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The owner row cannot be removed.
	err = f.service.Remove(ctx, f.projectID, f.ownerID, f.ownerID)
	assert.ErrorIs(t, err, ErrNotProjectMember)
}
