package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taha-association/links-backend/internal/links/domain"
)

// streamEvents streams live project snapshots over Server-Sent Events. The
// remote subscription is released when the client disconnects.
func (h *Handler) streamEvents(c *gin.Context) {
	sub, err := h.svc.Subscribe(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoRemote) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "remote store not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	defer sub.Unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	// Send initial snapshot
	if list, err := h.svc.GetAll(c.Request.Context()); err == nil {
		initialData, _ := json.Marshal(gin.H{"projects": list.Projects, "source": list.Source})
		fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", string(initialData))
		flusher.Flush()
	}

	ctx := c.Request.Context()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case projects, open := <-sub.C:
			if !open {
				// Feed ended (listener error already logged upstream)
				fmt.Fprint(c.Writer, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, _ := json.Marshal(gin.H{"projects": projects, "source": domain.SourceRemote})
			fmt.Fprintf(c.Writer, "event: snapshot\ndata: %s\n\n", string(data))
			flusher.Flush()
		}
	}
}
