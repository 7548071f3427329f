package repository

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/google/uuid"
)

type gormProjects struct{ s *GormStore }

func (r gormProjects) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	var p models.Project
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "project")
	}
	return &p, nil
}

func (r gormProjects) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	projects := make([]models.Project, 0)
	err := db.
		Where("creator_id = ? OR id IN (SELECT project_id FROM project_members WHERE user_id = ?)", userID, userID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, translate(err, "projects")
	}
	return projects, nil
}

func (r gormProjects) ListAll(ctx context.Context) ([]models.Project, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	projects := make([]models.Project, 0)
	if err := db.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, translate(err, "projects")
	}
	return projects, nil
}

func (r gormProjects) Create(ctx context.Context, p *models.Project) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return translate(db.Create(p).Error, "project")
}

func (r gormProjects) Update(ctx context.Context, p *models.Project) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	p.UpdatedAt = time.Now().UTC()
	result := db.Model(&models.Project{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"color":       p.Color,
		"updated_at":  p.UpdatedAt,
	})
	return affected(result, "project")
}

// Delete relies on ON DELETE CASCADE for boards, columns, tasks, comments and members.
func (r gormProjects) Delete(ctx context.Context, id uuid.UUID) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	return affected(db.Delete(&models.Project{}, "id = ?", id), "project")
}

type gormMembers struct{ s *GormStore }

func (r gormMembers) Get(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectMember, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	var m models.ProjectMember
	if err := db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&m).Error; err != nil {
		return nil, translate(err, "membership")
	}
	return &m, nil
}

func (r gormMembers) List(ctx context.Context, projectID uuid.UUID) ([]models.MemberView, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	members := make([]models.MemberView, 0)
	err := db.Table("project_members AS m").
		Select("m.user_id, u.email, u.name, m.role, m.created_at AS joined_at").
		Joins("JOIN users u ON u.id = m.user_id").
		Where("m.project_id = ?", projectID).
		Order("m.created_at ASC").
		Scan(&members).Error
	if err != nil {
		return nil, translate(err, "members")
	}
	for i := range members {
		members[i].Role = models.NormalizeProjectRole(members[i].Role)
	}
	return members, nil
}

func (r gormMembers) Add(ctx context.Context, m *models.ProjectMember) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	return translate(db.Create(m).Error, "membership")
}

func (r gormMembers) UpdateRole(ctx context.Context, projectID, userID uuid.UUID, role string) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	result := db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role)
	return affected(result, "membership")
}

func (r gormMembers) Remove(ctx context.Context, projectID, userID uuid.UUID) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	result := db.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&models.ProjectMember{})
	return affected(result, "membership")
}
