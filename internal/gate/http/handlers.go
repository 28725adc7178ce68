package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taha-association/links-backend/internal/gate/domain"
	"github.com/taha-association/links-backend/internal/gate/service"
)

type Handler struct {
	svc *service.GateService
}

func NewHandler(svc *service.GateService) *Handler {
	return &Handler{svc: svc}
}

// deviceFrom builds the capability profile from the request. Touch and
// screen hints are optional headers the dashboard sends alongside the
// user agent.
func deviceFrom(c *gin.Context) domain.Device {
	touch, _ := strconv.ParseBool(c.GetHeader("X-Device-Touch"))
	width, _ := strconv.Atoi(c.GetHeader("X-Screen-Width"))
	height, _ := strconv.Atoi(c.GetHeader("X-Screen-Height"))
	return domain.Device{
		UserAgent:    c.GetHeader("User-Agent"),
		HasTouch:     touch,
		ScreenWidth:  width,
		ScreenHeight: height,
	}
}

func (h *Handler) probe(c *gin.Context) {
	status := h.svc.Probe(c.Request.Context(), deviceFrom(c))
	c.JSON(http.StatusOK, gin.H{"ok": true, "gate": status})
}

func (h *Handler) authenticate(c *gin.Context) {
	var input domain.ChallengeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	status := h.svc.Authenticate(c.Request.Context(), deviceFrom(c), input)
	if status.State == domain.StateDenied {
		// Denied is an answer, not a failure: skip stays available.
		c.JSON(http.StatusOK, gin.H{"ok": false, "gate": status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "gate": status})
}

func (h *Handler) skip(c *gin.Context) {
	status := h.svc.Skip()
	c.JSON(http.StatusOK, gin.H{"ok": true, "gate": status})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context()); err != nil {
		if errors.Is(err, domain.ErrNoCredential) {
			c.JSON(http.StatusOK, gin.H{"ok": false, "error": "no stored credential"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Register attaches gate routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.probe)
	rg.POST("/authenticate", h.authenticate)
	rg.POST("/skip", h.skip)
	rg.POST("/logout", h.logout)
}
