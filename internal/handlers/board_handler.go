package handlers

import (
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/dto"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/services"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	"github.com/gofiber/fiber/v2"
)

type BoardHandler struct {
	boardService  *services.BoardService
	columnService *services.ColumnService
}

func NewBoardHandler(boardService *services.BoardService, columnService *services.ColumnService) *BoardHandler {
	return &BoardHandler{boardService: boardService, columnService: columnService}
}

func (h *BoardHandler) List(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	projectID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	boards, err := h.boardService.List(c.UserContext(), id, projectID)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, boards)
}

func (h *BoardHandler) Create(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	projectID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.CreateBoardRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	board, err := h.boardService.Create(c.UserContext(), id, projectID, &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusCreated, board)
}

func (h *BoardHandler) Get(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	boardID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	board, err := h.boardService.Get(c.UserContext(), id, boardID)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, board)
}

func (h *BoardHandler) Update(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	boardID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.UpdateBoardRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	board, err := h.boardService.Update(c.UserContext(), id, boardID, &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, board)
}

func (h *BoardHandler) Delete(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	boardID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	if err := h.boardService.Delete(c.UserContext(), id, boardID); err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "Board deleted"})
}

func (h *BoardHandler) ListColumns(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	boardID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	columns, err := h.columnService.List(c.UserContext(), id, boardID)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, columns)
}

func (h *BoardHandler) CreateColumn(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	boardID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.CreateColumnRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	column, err := h.columnService.Create(c.UserContext(), id, boardID, &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusCreated, column)
}

func (h *BoardHandler) ReorderColumns(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	boardID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.ReorderColumnsRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	columns, err := h.columnService.Reorder(c.UserContext(), id, boardID, req.ColumnIDs)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, columns)
}

func (h *BoardHandler) UpdateColumn(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	columnID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.UpdateColumnRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	column, err := h.columnService.Update(c.UserContext(), id, columnID, &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, column)
}

func (h *BoardHandler) DeleteColumn(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	columnID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	if err := h.columnService.Delete(c.UserContext(), id, columnID); err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "Column deleted"})
}
