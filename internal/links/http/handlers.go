package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taha-association/links-backend/internal/links/domain"
	"github.com/taha-association/links-backend/internal/links/service"
)

type Handler struct {
	svc *service.LinkService
}

func NewHandler(svc *service.LinkService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": list.Projects, "source": list.Source})
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.Name) == "" ||
		strings.TrimSpace(req.Description) == "" ||
		strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "name, description and url are required"})
		return
	}

	p, source, err := h.svc.Add(c.Request.Context(), domain.NewProject{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		URL:         strings.TrimSpace(req.URL),
		Category:    strings.TrimSpace(req.Category),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p, "source": source})
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")

	var patch domain.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, source, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		if service.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p, "source": source})
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")

	source, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		if service.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "source": source})
}

func (h *Handler) search(c *gin.Context) {
	term := c.Query("q")
	if strings.TrimSpace(term) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "query parameter q is required"})
		return
	}

	list, err := h.svc.Search(c.Request.Context(), term)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": list.Projects, "source": list.Source})
}

func (h *Handler) byCategory(c *gin.Context) {
	category := c.Param("category")

	list, err := h.svc.ByCategory(c.Request.Context(), category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": list.Projects, "source": list.Source})
}

func (h *Handler) categories(c *gin.Context) {
	categories, source, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "categories": categories, "source": source})
}

func (h *Handler) stats(c *gin.Context) {
	stats, source, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": stats, "source": source})
}

func (h *Handler) export(c *gin.Context) {
	export, err := h.svc.Export(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	filename := fmt.Sprintf("taha-projects-backup-%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, export)
}

func (h *Handler) importSnapshot(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "failed to read body"})
		return
	}

	count, err := h.svc.Import(c.Request.Context(), data)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid data format"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "imported": count})
}

func (h *Handler) migrate(c *gin.Context) {
	result, err := h.svc.Migrate(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoRemote) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "remote store not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "successful": result.Successful, "failed": result.Failed})
}

func (h *Handler) metrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "metrics": h.svc.Metrics()})
}
