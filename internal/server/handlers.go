package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/prayer-clock/internal/api"
	"github.com/smokyabdulrahman/prayer-clock/internal/geo"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
	"github.com/smokyabdulrahman/prayer-clock/internal/session"
)

// nextResponse is the payload of GET /api/next.
type nextResponse struct {
	Name        prayer.Event `json:"name"`
	DisplayName string       `json:"display_name"`
	Time        string       `json:"time"`
	At          string       `json:"at"`
	Countdown   string       `json:"countdown"`
	Seconds     int64        `json:"seconds"`
	Fallback    bool         `json:"fallback,omitempty"`
	State       string       `json:"state"`
}

type methodRequest struct {
	Method *int `json:"method" binding:"required"`
}

type methodResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Snapshot())
}

func (s *Server) getNext(c *gin.Context) {
	snap := s.session.Snapshot()
	if snap.Next == nil {
		body := gin.H{"state": snap.State}
		if snap.Error != "" {
			body["error"] = snap.Error
		}
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	resp := nextResponse{
		Name:        snap.Next.Name,
		DisplayName: prayer.DisplayName(snap.Next.Name, s.lang),
		Time:        snap.Next.Time.Format(s.layout),
		At:          snap.Next.Time.Format(time.RFC3339),
		Fallback:    snap.Next.Fallback,
		State:       string(snap.State),
	}
	if snap.Countdown != nil {
		resp.Countdown = snap.Countdown.Display
		if snap.Countdown.Remaining > 0 {
			resp.Seconds = int64(snap.Countdown.Remaining.Seconds())
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getMethods(c *gin.Context) {
	lang := c.DefaultQuery("lang", s.lang)
	out := make([]methodResponse, 0, len(api.Methods))
	for _, m := range api.Methods {
		out = append(out, methodResponse{ID: m.ID, Name: m.DisplayName(lang)})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) setMethod(c *gin.Context) {
	var req methodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"method\": <id>}"})
		return
	}
	if _, ok := api.LookupMethod(*req.Method); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown calculation method"})
		return
	}

	ctx, cancel := writeContext(c)
	defer cancel()
	s.respond(c, s.session.SetMethod(ctx, *req.Method))
}

func (s *Server) refresh(c *gin.Context) {
	ctx, cancel := writeContext(c)
	defer cancel()
	s.respond(c, s.session.ForceRefresh(ctx))
}

func (s *Server) locate(c *gin.Context) {
	ctx, cancel := writeContext(c)
	defer cancel()
	s.respond(c, s.session.ResolveLocation(ctx))
}

// writeTimeout bounds a state-changing call once it is detached from the
// request.
const writeTimeout = 30 * time.Second

// writeContext detaches session writes from the client connection: the
// session is shared, so a client hanging up must not fail it for everyone.
func writeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request.Context()), writeTimeout)
}

// respond writes the snapshot after a state-changing call, mapping the
// error taxonomy onto status codes.
func (s *Server) respond(c *gin.Context, err error) {
	if err == nil {
		c.JSON(http.StatusOK, s.session.Snapshot())
		return
	}
	if errors.Is(err, session.ErrSuperseded) {
		c.JSON(http.StatusAccepted, gin.H{"status": "superseded by a newer request"})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, api.ErrNetworkFailure),
		errors.Is(err, prayer.ErrInvalidTimeFormat),
		errors.Is(err, prayer.ErrUnorderedTimings),
		errors.Is(err, prayer.ErrMalformedNightWindow):
		status = http.StatusBadGateway
	case errors.Is(err, geo.ErrLocationUnavailable):
		status = http.StatusUnprocessableEntity
	}
	log.Warn().Err(err).Int("status", status).Str("path", c.Request.URL.Path).Msg("[server] request failed")
	c.JSON(status, gin.H{"error": err.Error(), "state": s.session.Snapshot().State})
}
