package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"remindbot/parser"
	"remindbot/reminder"
	"remindbot/remindme"
	"remindbot/state"
)

type errorResp struct {
	Error  string   `json:"error"`
	Kind   string   `json:"kind,omitempty"`
	Tokens []string `json:"tokens,omitempty"`
}

type parseReq struct {
	Text string `json:"text" binding:"required"`
	// Reference is a local time in reminder.DateTimeLayout; empty means now.
	Reference string `json:"reference"`
}

type parseResp struct {
	At      string `json:"at"`
	Message string `json:"message"`
}

type createReq struct {
	Text string `json:"text" binding:"required"`
	User string `json:"user" binding:"required"`
}

type reminderResp struct {
	ID      string   `json:"id"`
	At      string   `json:"at"`
	Message string   `json:"message"`
	Tags    []string `json:"tags,omitempty"`
	Status  string   `json:"status"`
	Source  string   `json:"source,omitempty"`
}

type subscribeReq struct {
	User string `json:"user" binding:"required"`
}

func newReminderResp(r *reminder.Reminder) reminderResp {
	return reminderResp{
		ID:      r.ID.String(),
		At:      r.DateTime.Format(reminder.DateTimeLayout),
		Message: r.Message,
		Tags:    r.Tags,
		Status:  r.Status.String(),
		Source:  r.Source,
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// parse resolves a specification without storing anything.
func (s *Server) parse(c *gin.Context) {
	var req parseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ref := s.now()
	if req.Reference != "" {
		var err error
		ref, err = time.ParseInLocation(reminder.DateTimeLayout, req.Reference, time.Local)
		if err != nil {
			badRequest(c, errors.Wrap(err, "invalid reference"))
			return
		}
	}

	res, err := s.parser.Parse(req.Text, ref)
	if err != nil {
		s.parseFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, parseResp{
		At:      res.At.Format(reminder.DateTimeLayout),
		Message: res.Message,
	})
}

func (s *Server) createReminder(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.parser.Parse(req.Text, s.now())
	if err != nil {
		s.parseFailed(c, err)
		return
	}

	message, tags := parser.ExtractTags(res.Message)
	if message == "" {
		message, tags = res.Message, nil
	}

	r := reminder.New(res.At, message, req.User, "")
	r.Tags = tags
	if err := s.store.AddReminder(c.Request.Context(), r, req.User); err != nil {
		s.internalError(c, "AddReminder", err)
		return
	}

	c.JSON(http.StatusCreated, newReminderResp(r))
}

func (s *Server) listReminders(c *gin.Context) {
	user := strings.TrimSpace(c.Query("user"))
	if user == "" {
		badRequest(c, errors.New("user is required"))
		return
	}

	reminders, err := s.store.ForUser(c.Request.Context(), user)
	if err != nil {
		s.internalError(c, "ForUser", err)
		return
	}

	items := make([]reminderResp, 0, len(reminders))
	for _, r := range reminders {
		items = append(items, newReminderResp(r))
	}
	c.JSON(http.StatusOK, gin.H{"reminders": items})
}

func (s *Server) deleteReminder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.store.RemoveReminder(c.Request.Context(), id); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResp{Error: err.Error()})
			return
		}
		s.internalError(c, "RemoveReminder", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) subscribe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req subscribeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := s.store.AddUser(c.Request.Context(), id, req.User); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResp{Error: err.Error()})
			return
		}
		s.internalError(c, "AddUser", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, errors.Wrap(err, "invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) parseFailed(c *gin.Context, err error) {
	pe, ok := remindme.AsParseError(err)
	if !ok {
		s.internalError(c, "Parse", err)
		return
	}
	c.JSON(http.StatusUnprocessableEntity, errorResp{
		Error:  pe.Reason,
		Kind:   pe.Kind.String(),
		Tokens: pe.Tokens,
	})
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	s.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, errorResp{Error: "internal error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResp{Error: err.Error()})
}
