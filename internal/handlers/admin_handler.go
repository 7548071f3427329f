package handlers

import (
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/dto"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/services"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.adminService.ListUsers(c.UserContext())
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, users)
}

func (h *AdminHandler) ApproveUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	user, err := h.adminService.Approve(c.UserContext(), userID)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, user)
}

func (h *AdminHandler) SetUserRole(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	userID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.UpdateUserRoleRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	user, err := h.adminService.SetRole(c.UserContext(), id, userID, req.Role)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, user)
}
