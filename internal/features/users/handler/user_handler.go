package handler

import (
	"errors"
	"net/http"

	"envios-web/internal/core/notify"
	"envios-web/internal/core/web"
	sessiondomain "envios-web/internal/features/session/domain"
	"envios-web/internal/features/users/domain"
	"envios-web/internal/features/users/service"

	"github.com/gofiber/fiber/v2"
)

// UserHandler serves the user administration screen.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// ListingResponse carries the user list and the toasts of the last mutation.
type ListingResponse struct {
	Listing *domain.Listing `json:"listing,omitempty"`
	Notices []notify.Notice `json:"notices"`
}

// EditResponse carries a user and the prefilled edit form.
type EditResponse struct {
	User          domain.User   `json:"user"`
	Form          domain.Update `json:"form"`
	DocumentTypes []string      `json:"documentTypes"`
	Roles         []string      `json:"roles"`
}

// ConfirmationResponse asks the admin to confirm a destructive action.
type ConfirmationResponse struct {
	Message string `json:"message"`
	Confirm string `json:"confirm"`
	RayID   string `json:"ray_id"`
}

func parseFilter(c *fiber.Ctx) domain.Filter {
	var f domain.Filter
	_ = c.QueryParser(&f)
	return f.Normalize()
}

func respond(c *fiber.Ctx, l domain.Listing, err error, success, failure string) error {
	if errors.Is(err, service.ErrRefreshFailed) {
		return web.OK(c, ListingResponse{Notices: []notify.Notice{
			notify.Success(success),
			notify.Error("Error al cargar los usuarios"),
		}})
	}
	if err != nil {
		return web.Fail(c, err, failure)
	}
	return web.OK(c, ListingResponse{Listing: &l, Notices: []notify.Notice{notify.Success(success)}})
}

// ListUsers returns every user passing the role and text filters.
// @Summary List users
// @Produce json
// @Param role query string false "BASIC or ADMIN"
// @Param q query string false "Name, email or username"
// @Success 200 {object} domain.Listing
// @Failure 502 {object} web.ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	l, err := h.service.List(c.UserContext(), parseFilter(c))
	if err != nil {
		return web.Fail(c, err, "Error al cargar los usuarios")
	}
	return web.OK(c, l)
}

// GetUser returns a user with the prefilled edit form.
// @Summary Get user
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} EditResponse
// @Failure 404 {object} web.ErrorResponse
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	u, form, err := h.service.Edit(c.UserContext(), c.Params("id"))
	if err != nil {
		return web.Fail(c, err, "Error al cargar los detalles del usuario")
	}
	return web.OK(c, EditResponse{User: u, Form: form, DocumentTypes: domain.DocumentTypes, Roles: domain.Roles})
}

// UpdateUser saves the edit form.
// @Summary Update user
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param user body domain.Update true "Edited fields"
// @Success 200 {object} ListingResponse
// @Failure 422 {object} web.ErrorResponse
// @Router /admin/users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var upd domain.Update
	if err := c.BodyParser(&upd); err != nil {
		return web.Error(c, http.StatusBadRequest, "Solicitud inválida")
	}

	l, err := h.service.Update(c.UserContext(), c.Params("id"), upd, parseFilter(c))
	return respond(c, l, err, "Usuario actualizado correctamente", "Error al actualizar el usuario")
}

// DeleteUser removes a user after confirmation.
// @Summary Delete user
// @Produce json
// @Param id path string true "User ID"
// @Param confirm query bool true "Explicit confirmation"
// @Success 200 {object} ListingResponse
// @Failure 409 {object} ConfirmationResponse
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	l, err := h.service.Delete(c.UserContext(), c.Params("id"), c.QueryBool("confirm", false), parseFilter(c))
	if errors.Is(err, service.ErrConfirmationRequired) {
		return c.Status(http.StatusConflict).JSON(ConfirmationResponse{
			Message: "Confirmación requerida",
			Confirm: service.DeleteConfirmation,
			RayID:   web.RayID(c),
		})
	}
	return respond(c, l, err, "Usuario eliminado correctamente", "Error al eliminar el usuario")
}

// RegisterAdmin creates a staff account.
// @Summary Register admin
// @Accept json
// @Produce json
// @Param registration body sessiondomain.Registration true "Sign-up form"
// @Success 201 {object} ListingResponse
// @Failure 422 {object} web.ErrorResponse
// @Router /admin/users [post]
func (h *UserHandler) RegisterAdmin(c *fiber.Ctx) error {
	var r sessiondomain.Registration
	if err := c.BodyParser(&r); err != nil {
		return web.Error(c, http.StatusBadRequest, "Solicitud inválida")
	}

	if err := h.service.RegisterAdmin(c.UserContext(), r); err != nil {
		return web.Fail(c, err, "Error al registrar usuario")
	}
	return c.Status(http.StatusCreated).JSON(ListingResponse{Notices: []notify.Notice{notify.Success("Usuario registrado con éxito")}})
}
