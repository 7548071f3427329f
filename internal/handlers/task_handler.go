package handlers

import (
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/dto"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/services"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	"github.com/gofiber/fiber/v2"
)

type TaskHandler struct {
	taskService    *services.TaskService
	commentService *services.CommentService
}

func NewTaskHandler(taskService *services.TaskService, commentService *services.CommentService) *TaskHandler {
	return &TaskHandler{taskService: taskService, commentService: commentService}
}

func (h *TaskHandler) ListByColumn(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	columnID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	tasks, err := h.taskService.ListByColumn(c.UserContext(), id, columnID)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, tasks)
}

func (h *TaskHandler) ListByBoard(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	boardID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	tasks, err := h.taskService.ListByBoard(c.UserContext(), id, boardID)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, tasks)
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	columnID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.CreateTaskRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	task, err := h.taskService.Create(c.UserContext(), id, columnID, &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusCreated, task)
}

func (h *TaskHandler) Get(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	taskID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	task, err := h.taskService.Get(c.UserContext(), id, taskID)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, task)
}

func (h *TaskHandler) Update(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	taskID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.UpdateTaskRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	task, err := h.taskService.Update(c.UserContext(), id, taskID, &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, task)
}

func (h *TaskHandler) Move(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	taskID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.MoveTaskRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	task, err := h.taskService.Move(c.UserContext(), id, taskID, &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, task)
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	taskID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	if err := h.taskService.Delete(c.UserContext(), id, taskID); err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "Task deleted"})
}

// ListComments returns a flat list, or a reply tree with ?threaded=true.
func (h *TaskHandler) ListComments(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	taskID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	if c.QueryBool("threaded") {
		thread, err := h.commentService.Thread(c.UserContext(), id, taskID)
		if err != nil {
			return Fail(c, err)
		}
		return ok(c, fiber.StatusOK, thread)
	}
	comments, err := h.commentService.List(c.UserContext(), id, taskID)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, comments)
}

func (h *TaskHandler) CreateComment(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	taskID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.CreateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	comment, err := h.commentService.Create(c.UserContext(), id, taskID, &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusCreated, comment)
}

func (h *TaskHandler) UpdateComment(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	commentID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.UpdateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return Fail(c, err)
	}
	comment, err := h.commentService.Update(c.UserContext(), id, commentID, &req)
	if err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, comment)
}

func (h *TaskHandler) DeleteComment(c *fiber.Ctx) error {
	id, err := session.FromCtx(c)
	if err != nil {
		return Fail(c, err)
	}
	commentID, err := paramID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	if err := h.commentService.Delete(c.UserContext(), id, commentID); err != nil {
		return Fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "Comment deleted"})
}
