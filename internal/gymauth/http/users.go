package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/service"
	"github.com/aussiebroadwan/gymauth/pkg/gymsdk"
	"github.com/aussiebroadwan/gymauth/pkg/httpx"
)

// UsersHandler serves the member profile routes and the admin user
// management routes. Route guards decide who gets here.
type UsersHandler struct {
	responder
	UserService *service.UserService
}

func pageRequest(r *http.Request) service.PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return service.PageRequest{Page: page, Limit: limit}
}

func listResponse(p service.Page) gymsdk.UserListResponse {
	users := make([]gymsdk.User, 0, len(p.Users))
	for _, u := range domain.RedactAll(p.Users) {
		users = append(users, sdkUser(u))
	}
	return gymsdk.UserListResponse{
		Users: users,
		Pagination: gymsdk.Pagination{
			Page:  p.Page,
			Limit: p.Limit,
			Total: p.Total,
			Pages: p.Pages(),
		},
	}
}

func (h *UsersHandler) writeUser(w http.ResponseWriter, status int, message string, u domain.User) {
	h.ok(w, status, message, gymsdk.UserResponse{User: publicUser(u)})
}

// HandleListMembers godoc
//
//	@Summary		List members
//	@Tags			Members
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page	query		int	false	"Page, from 1"
//	@Param			limit	query		int	false	"Page size, max 100"
//	@Success		200		{object}	httpx.Envelope{data=gymsdk.UserListResponse}
//	@Failure		403		{object}	httpx.Envelope	"access_denied"
//	@Router			/api/members [get].
func (h *UsersHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	page, err := h.UserService.ListMembers(r.Context(), pageRequest(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", listResponse(page))
}

// HandleGetMember godoc
//
//	@Summary		Get a member
//	@Description	Admins and trainers may read any member; members only themselves.
//	@Tags			Members
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Member id"
//	@Success		200	{object}	httpx.Envelope{data=gymsdk.UserResponse}
//	@Failure		403	{object}	httpx.Envelope	"access_denied"
//	@Failure		404	{object}	httpx.Envelope	"not_found"
//	@Router			/api/members/{id} [get].
func (h *UsersHandler) HandleGetMember(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetMember(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeUser(w, http.StatusOK, "", u)
}

// HandleUpdateMember godoc
//
//	@Summary		Update a member profile
//	@Description	Admins may update any member; members only themselves.
//	@Tags			Members
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Member id"
//	@Param			body	body		gymsdk.UpdateProfileRequest	true	"Fields to change"
//	@Success		200		{object}	httpx.Envelope{data=gymsdk.UserResponse}
//	@Failure		400		{object}	httpx.Envelope	"validation_error"
//	@Failure		403		{object}	httpx.Envelope	"access_denied"
//	@Failure		404		{object}	httpx.Envelope	"not_found"
//	@Router			/api/members/{id} [put].
func (h *UsersHandler) HandleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req gymsdk.UpdateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.UserService.UpdateMember(r.Context(), r.PathValue("id"), domain.UserPatch{Name: req.Name, Phone: req.Phone})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeUser(w, http.StatusOK, "Member updated", u)
}

// HandleListUsers godoc
//
//	@Summary		List users
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			role	query		string	false	"Filter by role"	Enums(admin, trainer, member)
//	@Param			active	query		bool	false	"Filter by status"
//	@Param			page	query		int		false	"Page, from 1"
//	@Param			limit	query		int		false	"Page size, max 100"
//	@Success		200		{object}	httpx.Envelope{data=gymsdk.UserListResponse}
//	@Failure		400		{object}	httpx.Envelope	"invalid_role, validation_error"
//	@Failure		403		{object}	httpx.Envelope	"access_denied"
//	@Router			/api/users [get].
func (h *UsersHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	q := service.UserQuery{PageRequest: pageRequest(r)}

	if v := r.URL.Query().Get("role"); v != "" {
		role, ok := domain.ParseRole(v)
		if !ok {
			gymsdk.ErrInvalidRole.WriteError(w)
			return
		}
		q.Role = &role
	}
	if v := r.URL.Query().Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			gymsdk.ErrValidation.WithMessage("active must be true or false").WriteError(w)
			return
		}
		q.Active = &active
	}

	page, err := h.UserService.ListUsers(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", listResponse(page))
}

// HandleCreateUser godoc
//
//	@Summary		Create a user
//	@Description	Admins may create accounts with any role.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		gymsdk.CreateUserRequest	true	"New account"
//	@Success		201		{object}	httpx.Envelope{data=gymsdk.UserResponse}
//	@Failure		400		{object}	httpx.Envelope	"duplicate_email, invalid_role, validation_error"
//	@Failure		403		{object}	httpx.Envelope	"access_denied"
//	@Router			/api/users [post].
func (h *UsersHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req gymsdk.CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.UserService.CreateUser(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeUser(w, http.StatusCreated, "User created", u)
}

// HandleGetUser godoc
//
//	@Summary		Get a user
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"User id"
//	@Success		200	{object}	httpx.Envelope{data=gymsdk.UserResponse}
//	@Failure		403	{object}	httpx.Envelope	"access_denied"
//	@Failure		404	{object}	httpx.Envelope	"not_found"
//	@Router			/api/users/{id} [get].
func (h *UsersHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeUser(w, http.StatusOK, "", u)
}

// HandleUpdateUser godoc
//
//	@Summary		Update a user
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User id"
//	@Param			body	body		gymsdk.UpdateUserRequest	true	"Fields to change"
//	@Success		200		{object}	httpx.Envelope{data=gymsdk.UserResponse}
//	@Failure		400		{object}	httpx.Envelope	"invalid_role, validation_error"
//	@Failure		403		{object}	httpx.Envelope	"access_denied"
//	@Failure		404		{object}	httpx.Envelope	"not_found"
//	@Router			/api/users/{id} [put].
func (h *UsersHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req gymsdk.UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	var role *domain.Role
	if req.Role != nil {
		parsed, ok := domain.ParseRole(*req.Role)
		if !ok || *req.Role == "" {
			gymsdk.ErrInvalidRole.WriteError(w)
			return
		}
		role = &parsed
	}

	u, err := h.UserService.UpdateUser(r.Context(), r.PathValue("id"), domain.UserPatch{Name: req.Name, Phone: req.Phone}, role)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeUser(w, http.StatusOK, "User updated", u)
}

// HandleDeleteUser godoc
//
//	@Summary		Delete a user
//	@Description	Also removes every refresh token of the user.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"User id"
//	@Success		200	{object}	httpx.Envelope
//	@Failure		403	{object}	httpx.Envelope	"access_denied"
//	@Failure		404	{object}	httpx.Envelope	"not_found"
//	@Router			/api/users/{id} [delete].
func (h *UsersHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "User deleted", nil)
}

// HandleToggleStatus godoc
//
//	@Summary		Activate or deactivate a user
//	@Description	Deactivation revokes every refresh token of the user.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"User id"
//	@Success		200	{object}	httpx.Envelope{data=gymsdk.UserResponse}
//	@Failure		403	{object}	httpx.Envelope	"access_denied"
//	@Failure		404	{object}	httpx.Envelope	"not_found"
//	@Router			/api/users/{id}/status [patch].
func (h *UsersHandler) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.ToggleStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	msg := "User deactivated"
	if u.Active {
		msg = "User activated"
	}
	h.writeUser(w, http.StatusOK, msg, u)
}
