package http

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/infrastructure/configuration"
	"social-scheduler/infrastructure/logger"
	"social-scheduler/interfaces/middleware"
	"social-scheduler/usecase"
)

type IConnectHandler interface {
	Begin(c *gin.Context)
	Callback(c *gin.Context)
}

type ConnectHandler struct {
	connectUsecase usecase.IConnectUsecase
}

func NewConnectHandler(connectUsecase usecase.IConnectUsecase) IConnectHandler {
	return &ConnectHandler{connectUsecase: connectUsecase}
}

// Begin redirects the authenticated operator to the platform consent page.
// The signed state parameter carries their owner id through the round trip.
func (h *ConnectHandler) Begin(c *gin.Context) {
	platform, err := model.ParsePlatform(c.Param("platform"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}
	authURL, err := h.connectUsecase.BeginConnect(c.Request.Context(), platform, middleware.OwnerID(c))
	if err != nil {
		status, res := mapError(err)
		c.JSON(status, res)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// Callback is hit by the platform redirect. There is no session here; the
// owner identity is recovered from the state parameter.
func (h *ConnectHandler) Callback(c *gin.Context) {
	platform, err := model.ParsePlatform(c.Param("platform"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}
	if errCode := c.Query("error"); errCode != "" {
		// Operator declined consent on the platform side.
		h.redirectToAccounts(c, platform, "denied")
		return
	}
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		h.redirectToAccounts(c, platform, "invalid_callback")
		return
	}

	cred, err := h.connectUsecase.CompleteConnect(c.Request.Context(), platform, code, state)
	if err != nil {
		logger.GetLogger().
			WithField("platform", platform).
			WithField("error", err).
			Error("completing platform connection")
		h.redirectToAccounts(c, platform, "connect_failed")
		return
	}
	logger.GetLogger().
		WithField("platform", platform).
		WithField("owner_id", cred.OwnerID).
		Info("connection callback handled")
	h.redirectToAccounts(c, platform, "")
}

func (h *ConnectHandler) redirectToAccounts(c *gin.Context, platform model.Platform, errCode string) {
	accountsURL := configuration.C.App.AccountsURL
	if accountsURL == "" {
		if errCode != "" {
			c.JSON(http.StatusBadGateway, dto.Res{ResponseCode: "502", ResponseMessage: errCode})
			return
		}
		c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "connected"})
		return
	}
	q := url.Values{}
	if errCode != "" {
		q.Set("error", errCode)
	} else {
		q.Set("connected", platform.String())
	}
	c.Redirect(http.StatusFound, accountsURL+"?"+q.Encode())
}
