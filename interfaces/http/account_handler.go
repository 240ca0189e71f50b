package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/interfaces/middleware"
	"social-scheduler/usecase"
)

type IAccountHandler interface {
	List(c *gin.Context)
	Disconnect(c *gin.Context)
}

type AccountHandler struct {
	connectUsecase usecase.IConnectUsecase
}

func NewAccountHandler(connectUsecase usecase.IConnectUsecase) IAccountHandler {
	return &AccountHandler{connectUsecase: connectUsecase}
}

// connectedAccount is the operator-facing view of a credential. The access
// token never leaves storage; only a hint of its tail is shown.
type connectedAccount struct {
	ID        int64           `json:"id"`
	Platform  model.Platform  `json:"platform"`
	TokenHint string          `json:"token_hint"`
	ExpiresAt time.Time       `json:"expires_at"`
	Expired   bool            `json:"expired"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (h *AccountHandler) List(c *gin.Context) {
	creds, err := h.connectUsecase.ListAccounts(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		status, res := mapError(err)
		c.JSON(status, res)
		return
	}
	now := time.Now()
	accounts := make([]connectedAccount, 0, len(creds))
	for _, cred := range creds {
		accounts = append(accounts, connectedAccount{
			ID:        cred.ID,
			Platform:  cred.Platform,
			TokenHint: cred.RedactedToken(),
			ExpiresAt: cred.ExpiresAt,
			Expired:   cred.Expired(now),
			Metadata:  cred.Metadata,
			CreatedAt: cred.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: accounts})
}

func (h *AccountHandler) Disconnect(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "invalid account id"})
		return
	}
	if err := h.connectUsecase.Disconnect(c.Request.Context(), id, middleware.OwnerID(c)); err != nil {
		status, res := mapError(err)
		c.JSON(status, res)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "disconnected"})
}
