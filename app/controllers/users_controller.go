package controllers

import (
	"errors"
	"net/http"

	"github.com/allinbuy/api/app/repositories"
	"github.com/allinbuy/api/app/services"
	"github.com/allinbuy/api/pkg/middleware"
	"github.com/allinbuy/api/pkg/response"
	"github.com/allinbuy/api/pkg/validate"
)

// UsersController handles registration, login, and the profile endpoint.
type UsersController struct {
	auth   *services.AuthService
	orders *repositories.OrderRepository
}

func NewUsersController(auth *services.AuthService, orders *repositories.OrderRepository) *UsersController {
	return &UsersController{auth: auth, orders: orders}
}

type registerInput struct {
	Name     string `json:"nombre"    validate:"required,max=255"`
	LastName string `json:"apellido"  validate:"nullable,max=255"`
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=8,max=72"`
	Phone    string `json:"telefono"  validate:"nullable,max=30"`
	Address  string `json:"direccion" validate:"nullable,max=500"`
}

// Register handles POST /api/usuarios/registro.
func (c *UsersController) Register(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.auth.Register(services.RegisterInput{
		Name:     in.Name,
		LastName: in.LastName,
		Email:    in.Email,
		Password: in.Password,
		Phone:    in.Phone,
		Address:  in.Address,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			response.Error(w, http.StatusConflict, "El email ya está registrado")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not register user")
		return
	}
	response.Created(w, "Usuario registrado", user)
}

type loginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/usuarios/login.
func (c *UsersController) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	user, pair, err := c.auth.Login(in.Email, in.Password)
	if err != nil {
		// One message for every failure mode, so the endpoint does not leak
		// which emails exist.
		response.Error(w, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}

	response.Success(w, map[string]interface{}{
		"usuario": user,
		"tokens":  pair,
	})
}

// AdminIndex handles GET /api/admin/usuarios.
func (c *UsersController) AdminIndex(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	users, pg, err := c.auth.List(page, limit)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not list users")
		return
	}
	response.Paginated(w, users, pg)
}

// Deactivate handles DELETE /api/admin/usuarios/{id}. The account is
// disabled, not deleted; its orders stay intact.
func (c *UsersController) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if callerID, _ := middleware.UserIDFromCtx(r); callerID == id {
		response.Error(w, http.StatusConflict, "No puedes desactivar tu propia cuenta")
		return
	}

	if err := c.auth.Deactivate(id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			response.NotFound(w, "Usuario no encontrado")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not deactivate user")
		return
	}
	response.Message(w, "Usuario desactivado")
}

// Profile handles GET /api/usuarios/perfil.
func (c *UsersController) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	user, stats, err := c.auth.Profile(userID, c.orders)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not load profile")
		return
	}

	response.Success(w, map[string]interface{}{
		"usuario":      user,
		"estadisticas": stats,
	})
}
