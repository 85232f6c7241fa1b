package reward

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"rewardgate/pkg/errutil"
	"rewardgate/pkg/middleware"
	"rewardgate/services/identity"
	"rewardgate/services/rewardconfig"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

const identityKey = "reward.identity"

type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (identity.Identity, error)
}

type Handler struct {
	auth    Authenticator
	service *Service
}

type HandlerParams struct {
	fx.In
	Auth    Authenticator
	Service *Service
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{auth: p.Auth, service: p.Service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/v1/rewards", h.authenticate)
	g.POST("", h.Grant)
	g.GET("/balance", h.Balance)
	g.GET("/transactions", h.Transactions)
	g.GET("/transactions/verify", h.VerifyChain)
}

func (h *Handler) authenticate(c *gin.Context) {
	id, err := h.auth.Authenticate(c.Request.Context(), middleware.BearerToken(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.Set(identityKey, id)
	c.Next()
}

func caller(c *gin.Context) identity.Identity {
	id, _ := c.Get(identityKey)
	v, _ := id.(identity.Identity)
	return v
}

func (h *Handler) Grant(c *gin.Context) {
	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	t, ok := rewardconfig.ParseActionType(req.Type)
	if !ok {
		_ = c.Error(errutil.ValidationFailed("unknown reward type", nil, errutil.WithDetails(errutil.Detail{
			Field:   "type",
			Message: fmt.Sprintf("%q is not a reward type", req.Type),
		})))
		return
	}

	resp, err := h.service.Grant(c.Request.Context(), caller(c), t, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Balance(c *gin.Context) {
	b, err := h.service.Balance(c.Request.Context(), caller(c).AccountID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) Transactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	rows, err := h.service.Transactions(c.Request.Context(), caller(c).AccountID, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": rows})
}

func (h *Handler) VerifyChain(c *gin.Context) {
	ok, err := h.service.VerifyChain(c.Request.Context(), caller(c).AccountID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": ok})
}
