package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/google/uuid"
)

type users struct{ s *Store }

func (r users) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &u, nil
}

func (r users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = normalizeEmail(email)
	for _, u := range r.s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r users) List(context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.User, 0, len(r.s.data.users))
	for _, u := range r.s.data.users {
		out = append(out, u)
	}
	sortByCreated(out, func(u models.User) time.Time { return u.CreatedAt })
	return out, nil
}

func (r users) Count(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.data.users)), nil
}

func (r users) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = normalizeEmail(u.Email)
	for _, existing := range r.s.data.users {
		if existing.Email == u.Email {
			return apperr.Conflict("user already exists")
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = r.s.tick()
	u.UpdatedAt = u.CreatedAt
	r.s.data.users[u.ID] = *u
	return nil
}

func (r users) Update(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.users[u.ID]
	if !ok {
		return apperr.NotFound("user not found")
	}
	existing.Name = u.Name
	existing.PasswordHash = u.PasswordHash
	existing.Role = u.Role
	existing.Status = u.Status
	existing.UpdatedAt = r.s.tick()
	r.s.data.users[u.ID] = existing
	*u = existing
	return nil
}

type sessions struct{ s *Store }

func (r sessions) GetByTokenHash(_ context.Context, hash string) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sess := range r.s.data.sessions {
		if sess.TokenHash == hash {
			return &sess, nil
		}
	}
	return nil, apperr.NotFound("session not found")
}

func (r sessions) Create(_ context.Context, sess *models.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.sessions {
		if existing.TokenHash == sess.TokenHash {
			return apperr.Conflict("session already exists")
		}
	}
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	sess.CreatedAt = r.s.tick()
	r.s.data.sessions[sess.ID] = *sess
	return nil
}

func (r sessions) DeleteByTokenHash(_ context.Context, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, sess := range r.s.data.sessions {
		if sess.TokenHash == hash {
			delete(r.s.data.sessions, id)
			return nil
		}
	}
	return apperr.NotFound("session not found")
}

func (r sessions) DeleteByUser(_ context.Context, userID uuid.UUID, keepHash string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, sess := range r.s.data.sessions {
		if sess.UserID == userID && (keepHash == "" || sess.TokenHash != keepHash) {
			delete(r.s.data.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r sessions) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, sess := range r.s.data.sessions {
		if sess.Expired(now) {
			delete(r.s.data.sessions, id)
			n++
		}
	}
	return n, nil
}

// ExpireSessions forces every session of userID to expire at t.
func (s *Store) ExpireSessions(userID uuid.UUID, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.data.sessions {
		if sess.UserID == userID {
			sess.ExpiresAt = t
			s.data.sessions[id] = sess
		}
	}
}

type projects struct{ s *Store }

func (r projects) Get(_ context.Context, id uuid.UUID) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.projects[id]
	if !ok {
		return nil, apperr.NotFound("project not found")
	}
	return &p, nil
}

func (r projects) ListForUser(_ context.Context, userID uuid.UUID) ([]models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Project, 0)
	for _, p := range r.s.data.projects {
		_, member := r.s.data.members[memberKey{p.ID, userID}]
		if p.CreatorID == userID || member {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r projects) ListAll(context.Context) ([]models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Project, 0, len(r.s.data.projects))
	for _, p := range r.s.data.projects {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r projects) Create(_ context.Context, p *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("projects.create"); err != nil {
		return err
	}
	if _, ok := r.s.data.users[p.CreatorID]; !ok {
		return apperr.Invalid("project references a record that does not exist")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	r.s.data.projects[p.ID] = *p
	return nil
}

func (r projects) Update(_ context.Context, p *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.projects[p.ID]
	if !ok {
		return apperr.NotFound("project not found")
	}
	existing.Name = p.Name
	existing.Description = p.Description
	existing.Color = p.Color
	existing.UpdatedAt = r.s.tick()
	r.s.data.projects[p.ID] = existing
	*p = existing
	return nil
}

func (r projects) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.projects[id]; !ok {
		return apperr.NotFound("project not found")
	}
	r.s.deleteProject(id)
	return nil
}

type members struct{ s *Store }

func (r members) Get(_ context.Context, projectID, userID uuid.UUID) (*models.ProjectMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.data.members[memberKey{projectID, userID}]
	if !ok {
		return nil, apperr.NotFound("membership not found")
	}
	return &m, nil
}

func (r members) List(_ context.Context, projectID uuid.UUID) ([]models.MemberView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]models.ProjectMember, 0)
	for k, m := range r.s.data.members {
		if k.project == projectID {
			rows = append(rows, m)
		}
	}
	sortByCreated(rows, func(m models.ProjectMember) time.Time { return m.CreatedAt })
	out := make([]models.MemberView, 0, len(rows))
	for _, m := range rows {
		u, ok := r.s.data.users[m.UserID]
		if !ok {
			continue
		}
		out = append(out, models.MemberView{
			UserID:   m.UserID,
			Email:    u.Email,
			Name:     u.Name,
			Role:     models.NormalizeProjectRole(m.Role),
			JoinedAt: m.CreatedAt,
		})
	}
	return out, nil
}

func (r members) Add(_ context.Context, m *models.ProjectMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := memberKey{m.ProjectID, m.UserID}
	if _, ok := r.s.data.members[key]; ok {
		return apperr.Conflict("membership already exists")
	}
	if _, ok := r.s.data.projects[m.ProjectID]; !ok {
		return apperr.Invalid("membership references a record that does not exist")
	}
	if _, ok := r.s.data.users[m.UserID]; !ok {
		return apperr.Invalid("membership references a record that does not exist")
	}
	m.CreatedAt = r.s.tick()
	r.s.data.members[key] = *m
	return nil
}

func (r members) UpdateRole(_ context.Context, projectID, userID uuid.UUID, role string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := memberKey{projectID, userID}
	m, ok := r.s.data.members[key]
	if !ok {
		return apperr.NotFound("membership not found")
	}
	m.Role = role
	r.s.data.members[key] = m
	return nil
}

func (r members) Remove(_ context.Context, projectID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := memberKey{projectID, userID}
	if _, ok := r.s.data.members[key]; !ok {
		return apperr.NotFound("membership not found")
	}
	delete(r.s.data.members, key)
	return nil
}
