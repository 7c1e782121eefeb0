// Package api exposes the account operations over HTTP.
//
// Handlers only translate between gin and account.Service. The caller's
// identity is read from the context the auth gate populated; role checks
// happen in the service.
package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/feedback/account"
	apperrors "github.com/kbukum/feedback/errors"
	"github.com/kbukum/feedback/server"
	"github.com/kbukum/feedback/server/middleware"
)

// Handler serves the account endpoints.
type Handler struct {
	accounts *account.Service
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *account.Service) *Handler {
	return &Handler{accounts: svc}
}

// Register mounts the account endpoints on r. credentialGuards run ahead
// of the register and login handlers; pass the rate limiter here.
func Register(r gin.IRouter, h *Handler, credentialGuards ...gin.HandlerFunc) {
	r.POST("/register", chain(credentialGuards, h.register)...)
	r.POST("/login", chain(credentialGuards, h.login)...)
	r.GET("/user", h.self)
	r.GET("/users", h.list)
	r.GET("/user/:id", h.get)
}

func chain(guards []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guards)+1)
	out = append(out, guards...)
	return append(out, h)
}

// register creates an account and answers 201 with an empty body.
func (h *Handler) register(c *gin.Context) {
	var in account.RegisterInput
	if !bind(c, &in) {
		return
	}
	if _, err := h.accounts.Register(c.Request.Context(), in); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c)
}

// login answers with the signed token as a JSON string.
func (h *Handler) login(c *gin.Context) {
	var in account.LoginInput
	if !bind(c, &in) {
		return
	}
	token, err := h.accounts.Login(c.Request.Context(), in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, token)
}

func (h *Handler) self(c *gin.Context) {
	caller, err := middleware.CurrentIdentity(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	a, err := h.accounts.Self(c.Request.Context(), caller)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, a)
}

func (h *Handler) list(c *gin.Context) {
	caller, err := middleware.CurrentIdentity(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	accounts, err := h.accounts.List(c.Request.Context(), caller)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, accounts)
}

func (h *Handler) get(c *gin.Context) {
	caller, err := middleware.CurrentIdentity(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		server.RespondWithError(c, apperrors.InvalidInput("id", "must be a positive integer"))
		return
	}
	a, err := h.accounts.Get(c.Request.Context(), caller, id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, a)
}

// bind decodes the JSON body into dst. A body that is not a JSON object
// of the expected shape is a 400.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		server.RespondWithError(c, apperrors.Validation("Request body must be a JSON object.").WithCause(err))
		return false
	}
	return true
}
