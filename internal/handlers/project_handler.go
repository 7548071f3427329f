package handlers

import (
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/dto"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/services"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	"github.com/gofiber/fiber/v2"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) List(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	projects, err := h.projectService.List(c.UserContext(), id)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, projects)
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	var req dto.CreateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	created, err := h.projectService.Create(c.UserContext(), id, &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusCreated, created)
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	projectID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	project, err := h.projectService.Get(c.UserContext(), id, projectID)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, project)
}

func (h *ProjectHandler) Access(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	projectID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	decision, err := h.projectService.Access(c.UserContext(), id, projectID)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, decision)
}

func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	projectID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.UpdateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	project, err := h.projectService.Update(c.UserContext(), id, projectID, &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, project)
}

func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	projectID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	if err := h.projectService.Delete(c.UserContext(), id, projectID); err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "Project deleted"})
}

func (h *ProjectHandler) ListMembers(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	projectID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	members, err := h.projectService.Members(c.UserContext(), id, projectID)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, members)
}

func (h *ProjectHandler) AddMember(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	projectID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.AddMemberRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	member, err := h.projectService.AddMember(c.UserContext(), id, projectID, &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusCreated, member)
}

func (h *ProjectHandler) UpdateMember(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	projectID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.UpdateMemberRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	member, err := h.projectService.UpdateMember(c.UserContext(), id, projectID, userID, &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, member)
}

func (h *ProjectHandler) RemoveMember(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	projectID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return Fail(c, err)
	}
	if err := h.projectService.RemoveMember(c.UserContext(), id, projectID, userID); err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "Member removed"})
}
