package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/access"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/config"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/dto"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/repository/memory"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	auth     *AuthService
	projects *ProjectService
	boards   *BoardService
	columns  *ColumnService
	tasks    *TaskService
	comments *CommentService
	admin    *AdminService
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, BcryptCost: bcrypt.MinCost}
	}
	store := memory.New()
	ev := access.NewEvaluator(store)
	return &fixture{
		ctx:      context.Background(),
		store:    store,
		auth:     NewAuthService(store, session.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry), cfg),
		projects: NewProjectService(store, ev),
		boards:   NewBoardService(store, ev),
		columns:  NewColumnService(store, ev),
		tasks:    NewTaskService(store, ev),
		comments: NewCommentService(store, ev),
		admin:    NewAdminService(store),
	}
}

func (f *fixture) user(t *testing.T, email string) session.Identity {
	t.Helper()
	u := &models.User{ID: uuid.New(), Email: email, Role: models.RoleUser, Status: models.StatusApproved}
	if err := f.store.Users().Create(f.ctx, u); err != nil {
		t.Fatalf("Users().Create() error: %v", err)
	}
	return session.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// board creates a project owned by owner with one board and the named columns.
func (f *fixture) board(t *testing.T, owner session.Identity, columns ...string) (uuid.UUID, *models.Board, []models.Column) {
	t.Helper()
	created, err := f.projects.Create(f.ctx, owner, &dto.CreateProjectRequest{Name: "Alpha"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	b, err := f.boards.Create(f.ctx, owner, created.Project.ID, &dto.CreateBoardRequest{Name: "Main"})
	if err != nil {
		t.Fatalf("boards.Create() error: %v", err)
	}
	var cols []models.Column
	for _, name := range columns {
		c, err := f.columns.Create(f.ctx, owner, b.ID, &dto.CreateColumnRequest{Name: name})
		if err != nil {
			t.Fatalf("columns.Create(%q) error: %v", name, err)
		}
		cols = append(cols, *c)
	}
	return created.Project.ID, b, cols
}

func TestRegisterBootstrapsFirstAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	first, err := f.auth.Register(f.ctx, &dto.RegisterRequest{Email: "Root@Example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if first.Role != models.RoleAdmin || first.Status != models.StatusApproved {
		t.Errorf("first user = %s/%s, want admin/approved", first.Role, first.Status)
	}
	if first.Email != "root@example.com" || first.Name != "root" {
		t.Errorf("first user = %q %q, want normalized email and default name", first.Email, first.Name)
	}

	second, err := f.auth.Register(f.ctx, &dto.RegisterRequest{Email: "eve@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if second.Role != models.RoleUser || second.Status != models.StatusPending {
		t.Errorf("second user = %s/%s, want user/pending", second.Role, second.Status)
	}

	_, err = f.auth.Login(f.ctx, &dto.LoginRequest{Email: "eve@example.com", Password: "password1"}, ClientInfo{})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("pending Login() error = %v, want forbidden", err)
	}

	_, err = f.auth.Register(f.ctx, &dto.RegisterRequest{Email: "EVE@example.com", Password: "password1"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate Register() error = %v, want conflict", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	tests := []struct {
		name string
		req  dto.RegisterRequest
	}{
		{"missing email", dto.RegisterRequest{Password: "password1"}},
		{"no domain", dto.RegisterRequest{Email: "eve@", Password: "password1"}},
		{"short password", dto.RegisterRequest{Email: "eve@example.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.auth.Register(f.ctx, &tt.req); !errors.Is(err, apperr.ErrInvalidInput) {
				t.Errorf("Register() error = %v, want invalid", err)
			}
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	if _, err := f.auth.Register(f.ctx, &dto.RegisterRequest{Email: "root@example.com", Password: "password1"}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	for _, req := range []dto.LoginRequest{
		{Email: "root@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "password1"},
	} {
		if _, err := f.auth.Login(f.ctx, &req, ClientInfo{}); !errors.Is(err, apperr.ErrUnauthenticated) {
			t.Errorf("Login(%s) error = %v, want unauthenticated", req.Email, err)
		}
	}
}

func TestChangePasswordKeepsCurrentSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	if _, err := f.auth.Register(f.ctx, &dto.RegisterRequest{Email: "root@example.com", Password: "password1"}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	creds := &dto.LoginRequest{Email: "root@example.com", Password: "password1"}
	current, err := f.auth.Login(f.ctx, creds, ClientInfo{UserAgent: "laptop"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	other, err := f.auth.Login(f.ctx, creds, ClientInfo{UserAgent: "phone"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	id := session.Identity{UserID: current.User.ID, Email: current.User.Email, Role: current.User.Role}
	err = f.auth.ChangePassword(f.ctx, id, current.Token, &dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "password2"})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("ChangePassword() with wrong password error = %v, want invalid", err)
	}
	if err := f.auth.ChangePassword(f.ctx, id, current.Token, &dto.ChangePasswordRequest{CurrentPassword: "password1", NewPassword: "password2"}); err != nil {
		t.Fatalf("ChangePassword() error: %v", err)
	}

	if _, err := f.store.Sessions().GetByTokenHash(f.ctx, session.HashToken(current.Token)); err != nil {
		t.Errorf("current session revoked: %v", err)
	}
	if _, err := f.store.Sessions().GetByTokenHash(f.ctx, session.HashToken(other.Token)); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("other session lookup error = %v, want not found", err)
	}
	if _, err := f.auth.Login(f.ctx, creds, ClientInfo{}); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("Login() with old password error = %v, want unauthenticated", err)
	}
}

func TestSetRoleRefusesSelfDemotion(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	root := f.user(t, "root@example.com")
	root.Role = models.RoleAdmin
	if _, err := f.admin.SetRole(f.ctx, root, root.UserID, models.RoleUser); !errors.Is(err, apperr.ErrInvalidOperation) {
		t.Errorf("SetRole(self) error = %v, want invalid operation", err)
	}
	if _, err := f.admin.SetRole(f.ctx, root, root.UserID, "wizard"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("SetRole(wizard) error = %v, want invalid", err)
	}

	eve := f.user(t, "eve@example.com")
	sess := &models.Session{ID: uuid.New(), UserID: eve.UserID, TokenHash: "eve-token", ExpiresAt: time.Now().Add(time.Hour)}
	if err := f.store.Sessions().Create(f.ctx, sess); err != nil {
		t.Fatalf("Sessions().Create() error: %v", err)
	}
	u, err := f.admin.SetRole(f.ctx, root, eve.UserID, models.RoleManager)
	if err != nil {
		t.Fatalf("SetRole() error: %v", err)
	}
	if u.Role != models.RoleManager {
		t.Errorf("role = %q, want manager", u.Role)
	}
	if _, err := f.store.Sessions().GetByTokenHash(f.ctx, "eve-token"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("session after role change error = %v, want not found", err)
	}
}

func TestCreateProjectRollsBackDefaultBoard(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	alice := f.user(t, "alice@example.com")

	f.store.FailOn["boards.create"] = errors.New("boom")
	if _, err := f.projects.Create(f.ctx, alice, &dto.CreateProjectRequest{Name: "Alpha", DefaultBoard: true}); err == nil {
		t.Fatalf("Create() succeeded despite a failing board insert")
	}
	projects, err := f.projects.List(f.ctx, alice)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("got %d projects after rollback, want 0", len(projects))
	}

	created, err := f.projects.Create(f.ctx, alice, &dto.CreateProjectRequest{Name: "Alpha", DefaultBoard: true})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	cols, err := f.columns.List(f.ctx, alice, created.Board.ID)
	if err != nil {
		t.Fatalf("columns.List() error: %v", err)
	}
	for i, name := range models.DefaultColumns {
		if cols[i].Name != name || cols[i].Position != i {
			t.Errorf("column %d = %s@%d, want %s@%d", i, cols[i].Name, cols[i].Position, name, i)
		}
	}
}

func TestMembershipRules(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	carol := f.user(t, "carol@example.com")
	projectID, _, _ := f.board(t, alice)

	if _, err := f.projects.AddMember(f.ctx, alice, projectID, &dto.AddMemberRequest{UserID: &bob.UserID, Role: models.ProjectRoleAdmin}); err != nil {
		t.Fatalf("AddMember(bob) error: %v", err)
	}
	_, err := f.projects.AddMember(f.ctx, alice, projectID, &dto.AddMemberRequest{UserID: &bob.UserID})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate AddMember() error = %v, want conflict", err)
	}
	_, err = f.projects.AddMember(f.ctx, alice, projectID, &dto.AddMemberRequest{UserID: &alice.UserID})
	if !errors.Is(err, apperr.ErrInvalidOperation) {
		t.Errorf("AddMember(owner) error = %v, want invalid operation", err)
	}

	// An admin member manages members but cannot hand out ownership.
	_, err = f.projects.AddMember(f.ctx, bob, projectID, &dto.AddMemberRequest{UserID: &carol.UserID, Role: models.ProjectRoleOwner})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("admin granting owner error = %v, want forbidden", err)
	}
	if _, err := f.projects.AddMember(f.ctx, bob, projectID, &dto.AddMemberRequest{Email: "carol@example.com"}); err != nil {
		t.Fatalf("AddMember(carol) error: %v", err)
	}

	_, err = f.projects.UpdateMember(f.ctx, bob, projectID, alice.UserID, &dto.UpdateMemberRequest{Role: models.ProjectRoleMember})
	if !errors.Is(err, apperr.ErrInvalidOperation) {
		t.Errorf("changing the owner's role error = %v, want invalid operation", err)
	}

	// A plain member cannot remove others but may leave.
	if err := f.projects.RemoveMember(f.ctx, carol, projectID, bob.UserID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member removing admin error = %v, want forbidden", err)
	}
	if err := f.projects.RemoveMember(f.ctx, carol, projectID, carol.UserID); err != nil {
		t.Fatalf("RemoveMember(self) error: %v", err)
	}

	members, err := f.projects.Members(f.ctx, alice, projectID)
	if err != nil {
		t.Fatalf("Members() error: %v", err)
	}
	if len(members) != 2 || !members[0].IsOwner || members[1].UserID != bob.UserID {
		t.Errorf("members = %+v, want owner then bob", members)
	}
}

func TestAccessDecision(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	projectID, _, _ := f.board(t, alice)

	d, err := f.projects.Access(f.ctx, alice, projectID)
	if err != nil {
		t.Fatalf("Access() error: %v", err)
	}
	if !d.IsOwner || !d.CanOwn {
		t.Errorf("owner decision = %+v", d)
	}
	if _, err := f.projects.Access(f.ctx, bob, projectID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("stranger Access() error = %v, want forbidden", err)
	}

	bob.Role = models.RoleAdmin
	d, err = f.projects.Access(f.ctx, bob, projectID)
	if err != nil {
		t.Fatalf("global admin Access() error: %v", err)
	}
	if !d.GlobalAdmin || !d.CanOwn || d.Role != access.RoleNone {
		t.Errorf("global admin decision = %+v", d)
	}
}

func TestReorderColumns(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	alice := f.user(t, "alice@example.com")
	_, board, cols := f.board(t, alice, "Todo", "Doing", "Done")

	got, err := f.columns.Reorder(f.ctx, alice, board.ID, []uuid.UUID{cols[2].ID, cols[0].ID, cols[1].ID})
	if err != nil {
		t.Fatalf("Reorder() error: %v", err)
	}
	listed, err := f.columns.List(f.ctx, alice, board.ID)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	for i, want := range []string{"Done", "Todo", "Doing"} {
		if got[i].Name != want || listed[i].Name != want || listed[i].Position != i {
			t.Errorf("position %d = %s (listed %s@%d), want %s", i, got[i].Name, listed[i].Name, listed[i].Position, want)
		}
	}

	tests := []struct {
		name string
		ids  []uuid.UUID
	}{
		{"missing column", []uuid.UUID{cols[0].ID, cols[1].ID}},
		{"repeated column", []uuid.UUID{cols[0].ID, cols[0].ID, cols[1].ID}},
		{"foreign column", []uuid.UUID{cols[0].ID, cols[1].ID, uuid.New()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.columns.Reorder(f.ctx, alice, board.ID, tt.ids); !errors.Is(err, apperr.ErrInvalidInput) {
				t.Errorf("Reorder() error = %v, want invalid", err)
			}
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	projectID, board, cols := f.board(t, alice, "Todo", "Done")

	task, err := f.tasks.Create(f.ctx, alice, cols[0].ID, &dto.CreateTaskRequest{Title: "  Write docs  "})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if task.Title != "Write docs" || task.Priority != models.PriorityMedium || task.Status != models.TaskTodo {
		t.Errorf("task = %+v, want trimmed title and defaults", task)
	}

	_, err = f.tasks.Update(f.ctx, alice, task.ID, &dto.UpdateTaskRequest{AssigneeID: &bob.UserID})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("assigning a stranger error = %v, want invalid", err)
	}
	if _, err := f.projects.AddMember(f.ctx, alice, projectID, &dto.AddMemberRequest{UserID: &bob.UserID}); err != nil {
		t.Fatalf("AddMember() error: %v", err)
	}
	updated, err := f.tasks.Update(f.ctx, alice, task.ID, &dto.UpdateTaskRequest{AssigneeID: &bob.UserID})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.AssigneeID == nil || *updated.AssigneeID != bob.UserID {
		t.Errorf("assignee = %v, want bob", updated.AssigneeID)
	}
	updated, err = f.tasks.Update(f.ctx, bob, task.ID, &dto.UpdateTaskRequest{Unassign: true})
	if err != nil {
		t.Fatalf("Update(unassign) error: %v", err)
	}
	if updated.AssigneeID != nil {
		t.Errorf("assignee = %v, want none", updated.AssigneeID)
	}

	if _, err := f.tasks.Create(f.ctx, alice, cols[1].ID, &dto.CreateTaskRequest{Title: "Existing"}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	moved, err := f.tasks.Move(f.ctx, alice, task.ID, &dto.MoveTaskRequest{ColumnID: cols[1].ID})
	if err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	if moved.ColumnID != cols[1].ID || moved.Position != 1 {
		t.Errorf("moved to %s@%d, want Done@1", moved.ColumnID, moved.Position)
	}

	all, err := f.tasks.ListByBoard(f.ctx, alice, board.ID)
	if err != nil {
		t.Fatalf("ListByBoard() error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d tasks on board, want 2", len(all))
	}

	if err := f.boards.Delete(f.ctx, alice, board.ID); err != nil {
		t.Fatalf("boards.Delete() error: %v", err)
	}
	if _, err := f.tasks.Get(f.ctx, alice, task.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get() after board delete error = %v, want not found", err)
	}
}

func TestCommentPermissions(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	projectID, _, cols := f.board(t, alice, "Todo")
	if _, err := f.projects.AddMember(f.ctx, alice, projectID, &dto.AddMemberRequest{UserID: &bob.UserID}); err != nil {
		t.Fatalf("AddMember() error: %v", err)
	}
	task, err := f.tasks.Create(f.ctx, alice, cols[0].ID, &dto.CreateTaskRequest{Title: "Review"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	c, err := f.comments.Create(f.ctx, bob, task.ID, &dto.CreateCommentRequest{Content: "looks good"})
	if err != nil {
		t.Fatalf("comments.Create() error: %v", err)
	}
	if _, err := f.comments.Update(f.ctx, alice, c.ID, &dto.UpdateCommentRequest{Content: "edited"}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("non-author Update() error = %v, want forbidden", err)
	}
	mine, err := f.comments.Create(f.ctx, alice, task.ID, &dto.CreateCommentRequest{Content: "thanks"})
	if err != nil {
		t.Fatalf("comments.Create() error: %v", err)
	}
	if err := f.comments.Delete(f.ctx, bob, mine.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member deleting another's comment error = %v, want forbidden", err)
	}
	// The owner may moderate.
	if err := f.comments.Delete(f.ctx, alice, c.ID); err != nil {
		t.Fatalf("owner Delete() error: %v", err)
	}
}

func TestBuildThread(t *testing.T) {
	t.Parallel()

	root, reply, nested, orphan := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	missing := uuid.New()
	comments := []models.Comment{
		{ID: root},
		{ID: reply, ParentID: &root},
		{ID: orphan, ParentID: &missing},
		{ID: nested, ParentID: &reply},
	}

	got := BuildThread(comments)
	if len(got) != 2 || got[0].ID != root || got[1].ID != orphan {
		t.Fatalf("roots = %v, want root then orphan", got)
	}
	if len(got[0].Replies) != 1 || got[0].Replies[0].ID != reply {
		t.Fatalf("root replies = %v, want reply", got[0].Replies)
	}
	if len(got[0].Replies[0].Replies) != 1 || got[0].Replies[0].Replies[0].ID != nested {
		t.Errorf("nested replies = %v", got[0].Replies[0].Replies)
	}
	if got[1].Replies == nil {
		t.Errorf("leaf replies should be an empty list, not nil")
	}
}
