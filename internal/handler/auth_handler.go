package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"gym-management-api/internal/auth"
	"gym-management-api/internal/model"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

var userRoles = map[string]bool{"admin": true, "trainer": true, "member": true}

func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return badRequest(c, "all fields required")
	}
	if len(req.Password) < 8 {
		return badRequest(c, "password too short")
	}
	if req.Role == "" {
		req.Role = "trainer"
	}
	if !userRoles[req.Role] {
		return badRequest(c, "unknown role")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return h.storeErr(c, err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
	}
	if err := h.store.CreateUser(c.Context(), u); err != nil {
		// dup email, but don't reveal that
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "registration failed"})
	}

	tok, err := auth.MakeToken(u.ID, u.Role, h.secret)
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"userId": u.ID, "token": tok})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password required")
	}

	u, err := h.store.UserByEmail(c.Context(), req.Email)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	tok, err := auth.MakeToken(u.ID, u.Role, h.secret)
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(fiber.Map{
		"token":  tok,
		"userId": u.ID,
		"name":   u.FirstName + " " + u.LastName,
		"role":   u.Role,
	})
}
