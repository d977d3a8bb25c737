package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bugtrackr/bug-tracker/internal/api/dto"
	"github.com/bugtrackr/bug-tracker/internal/service"
	apperrors "github.com/bugtrackr/bug-tracker/pkg/util/errorutil"
)

const msgInvalidBody = "Invalid request body"

// BugsHandler manages bug endpoints.
type BugsHandler struct {
	service *service.BugService
}

// NewBugsHandler constructs handler.
func NewBugsHandler(bugService *service.BugService) *BugsHandler {
	return &BugsHandler{service: bugService}
}

// ListBugs GET /api/bugs.
func (h *BugsHandler) ListBugs(c *fiber.Ctx) error {
	var q dto.BugListQuery
	if err := c.QueryParser(&q); err != nil {
		return apperrors.NewValidationError("Invalid query parameters")
	}

	page, err := h.service.List(c.UserContext(), service.BugListQuery{
		Status:   strings.TrimSpace(q.Status),
		Priority: strings.TrimSpace(q.Priority),
		Page:     atoiOrZero(q.Page),
		Limit:    atoiOrZero(q.Limit),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBugListResponse(page))
}

// GetBug GET /api/bugs/:id.
func (h *BugsHandler) GetBug(c *fiber.Ctx) error {
	bug, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBugResponse(bug))
}

// CreateBug POST /api/bugs.
func (h *BugsHandler) CreateBug(c *fiber.Ctx) error {
	req, err := parseBugRequest(c)
	if err != nil {
		return err
	}
	bug, err := h.service.Create(c.UserContext(), req.Input())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewBugResponse(bug))
}

// UpdateBug PUT /api/bugs/:id.
func (h *BugsHandler) UpdateBug(c *fiber.Ctx) error {
	req, err := parseBugRequest(c)
	if err != nil {
		return err
	}
	bug, err := h.service.Update(c.UserContext(), c.Params("id"), req.Input())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBugResponse(bug))
}

// DeleteBug DELETE /api/bugs/:id.
func (h *BugsHandler) DeleteBug(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Bug deleted successfully"})
}

// parseBugRequest accepts JSON or form bodies; an empty body is an empty object.
func parseBugRequest(c *fiber.Ctx) (dto.BugRequest, error) {
	var req dto.BugRequest
	if len(c.Body()) == 0 {
		return req, nil
	}
	if err := c.BodyParser(&req); err != nil {
		return dto.BugRequest{}, apperrors.NewValidationError(msgInvalidBody)
	}
	return req, nil
}

func atoiOrZero(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
