package handler

import (
	"net/mail"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"gym-management-api/internal/datefmt"
	"gym-management-api/internal/export"
	"gym-management-api/internal/model"
	"gym-management-api/internal/store"
)

type memberRequest struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	EmergencyContact string `json:"emergencyContact"`
	Notes            string `json:"notes"`
}

// validate runs before any store contact; failures short-circuit.
func (r memberRequest) validate() string {
	if r.FirstName == "" {
		return "First name is required"
	}
	if r.LastName == "" {
		return "Last name is required"
	}
	if r.Email == "" {
		return "Email is required"
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return "Email is not valid"
	}
	return ""
}

func (h *Handler) ListMembers(c *fiber.Ctx) error {
	members, err := h.store.ListMembers(c.Context(), store.MemberFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(fiber.Map{"members": members})
}

func (h *Handler) GetMember(c *fiber.Ctx) error {
	m, err := h.store.GetMember(c.Context(), c.Params("id"))
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(m)
}

func (h *Handler) CreateMember(c *fiber.Ctx) error {
	var req memberRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	m := &model.Member{
		ID:               uuid.New().String(),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		Status:           "active",
		JoinDate:         time.Now().UTC(),
		EmergencyContact: req.EmergencyContact,
		Notes:            req.Notes,
	}
	if err := h.store.CreateMember(c.Context(), m); err != nil {
		return h.storeErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *Handler) UpdateMember(c *fiber.Ctx) error {
	var req memberRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	m := &model.Member{
		ID:               c.Params("id"),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		EmergencyContact: req.EmergencyContact,
		Notes:            req.Notes,
	}
	if err := h.store.UpdateMember(c.Context(), m); err != nil {
		return h.storeErr(c, err)
	}
	updated, err := h.store.GetMember(c.Context(), m.ID)
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) DeleteMember(c *fiber.Ctx) error {
	if err := h.store.DeleteMember(c.Context(), c.Params("id")); err != nil {
		return h.storeErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) FreezeMember(c *fiber.Ctx) error {
	if err := h.store.SetMemberStatus(c.Context(), c.Params("id"), "frozen"); err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(fiber.Map{"status": "frozen"})
}

func (h *Handler) UnfreezeMember(c *fiber.Ctx) error {
	if err := h.store.SetMemberStatus(c.Context(), c.Params("id"), "active"); err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(fiber.Map{"status": "active"})
}

func (h *Handler) MemberStats(c *fiber.Ctx) error {
	st, err := h.store.MemberStats(c.Context())
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(st)
}

func (h *Handler) ExportMembers(c *fiber.Ctx) error {
	members, err := h.store.ListMembers(c.Context(), store.MemberFilter{Status: c.Query("status")})
	if err != nil {
		return h.storeErr(c, err)
	}

	t := export.Table{
		Header: []string{"First Name", "Last Name", "Email", "Phone", "Status", "Join Date"},
	}
	for _, m := range members {
		t.Rows = append(t.Rows, []string{
			m.FirstName, m.LastName, m.Email, m.Phone, m.Status, datefmt.Date(m.JoinDate),
		})
	}

	data, err := export.CSV(t)
	if err != nil {
		return h.storeErr(c, err)
	}
	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", `attachment; filename="members.csv"`)
	return c.Send(data)
}
