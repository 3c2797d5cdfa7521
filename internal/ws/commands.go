package ws

import (
	"context"
	"encoding/json"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/pubsub"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/question"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/service"

	"go.uber.org/zap"
)

// CommandHandler handles WebSocket commands
type CommandHandler struct {
	sessions *service.SessionService
	log      *zap.Logger
}

func NewCommandHandler(sessions *service.SessionService, log *zap.Logger) *CommandHandler {
	return &CommandHandler{
		sessions: sessions,
		log:      log,
	}
}

type commandData struct {
	SessionID    string          `json:"sessionId"`
	StepID       string          `json:"stepId"`
	Value        json.RawMessage `json:"value"`
	Enforce      bool            `json:"enforce"`
	SectionIndex int             `json:"sectionIndex"`
	StepIndex    int             `json:"stepIndex"`
	SlotID       string          `json:"slotId"`
	Hour         *int            `json:"hour"`
	Minute       *int            `json:"minute"`
}

// HandleCommand processes a WebSocket command
func (h *CommandHandler) HandleCommand(ctx context.Context, conn *Conn, cmd map[string]interface{}) {
	op, _ := cmd["op"].(string)
	msgID, _ := cmd["id"].(string)

	var data commandData
	if raw, ok := cmd["data"]; ok && raw != nil {
		buf, err := json.Marshal(raw)
		if err == nil {
			err = json.Unmarshal(buf, &data)
		}
		if err != nil {
			h.sendError(conn, msgID, service.CodeInvalidInput, "malformed command data")
			return
		}
	}

	owner := conn.userID

	switch op {
	case "session.create":
		view, err := h.sessions.Create(ctx, owner)
		if err == nil {
			// The creator follows its own session without a separate subscribe.
			conn.hub.Subscribe(conn, pubsub.SessionChannel(view.ID))
		}
		h.reply(conn, msgID, view, err)
	case "session.get":
		view, err := h.sessions.Get(ctx, owner, data.SessionID)
		h.reply(conn, msgID, view, err)
	case "session.answer":
		var value question.Value
		if len(data.Value) > 0 {
			if err := json.Unmarshal(data.Value, &value); err != nil {
				h.sendError(conn, msgID, service.CodeInvalidInput, "value is not a valid answer")
				return
			}
		}
		view, err := h.sessions.Answer(ctx, owner, data.SessionID, data.StepID, value)
		h.reply(conn, msgID, view, err)
	case "session.next":
		view, err := h.sessions.Next(ctx, owner, data.SessionID, data.Enforce)
		h.reply(conn, msgID, view, err)
	case "session.previous":
		view, err := h.sessions.Previous(ctx, owner, data.SessionID)
		h.reply(conn, msgID, view, err)
	case "session.jump":
		pos := question.Position{Section: data.SectionIndex, Step: data.StepIndex}
		view, err := h.sessions.Jump(ctx, owner, data.SessionID, pos)
		h.reply(conn, msgID, view, err)
	case "session.doseTime":
		if data.Hour == nil || data.Minute == nil {
			h.sendError(conn, msgID, service.CodeInvalidInput, "hour and minute are required")
			return
		}
		view, err := h.sessions.EditDoseTime(ctx, owner, data.SessionID, data.SlotID, *data.Hour, *data.Minute)
		h.reply(conn, msgID, view, err)
	case "session.reset":
		view, err := h.sessions.Reset(ctx, owner, data.SessionID)
		h.reply(conn, msgID, view, err)
	case "session.complete":
		med, err := h.sessions.Complete(ctx, owner, data.SessionID)
		if err == nil {
			conn.hub.Unsubscribe(conn, pubsub.SessionChannel(data.SessionID))
		}
		h.reply(conn, msgID, med, err)
	case "session.discard":
		err := h.sessions.Discard(ctx, owner, data.SessionID)
		h.reply(conn, msgID, map[string]interface{}{"sessionId": data.SessionID}, err)
	default:
		h.sendError(conn, msgID, "unknown_command", "Unknown command: "+op)
	}
}

func (h *CommandHandler) reply(conn *Conn, msgID string, data interface{}, err error) {
	if err != nil {
		code := service.ErrorCode(err)
		if code == service.CodeStoreFailed {
			h.log.Error("Command failed", zap.String("user_id", conn.userID), zap.Error(err))
		}
		h.sendError(conn, msgID, code, err.Error())
		return
	}
	h.sendResponse(conn, msgID, data)
}

func (h *CommandHandler) sendResponse(conn *Conn, msgID string, data interface{}) {
	resp := map[string]interface{}{
		"type": "result",
		"data": data,
	}
	if msgID != "" {
		resp["id"] = msgID
	}

	msg, err := json.Marshal(resp)
	if err != nil {
		h.log.Warn("Failed to encode response", zap.Error(err))
		return
	}
	select {
	case conn.send <- msg:
	default:
		h.log.Warn("Failed to send response, channel full")
	}
}

func (h *CommandHandler) sendError(conn *Conn, msgID, code, message string) {
	errMsg := map[string]interface{}{
		"type":    "error",
		"code":    code,
		"message": message,
	}
	if msgID != "" {
		errMsg["id"] = msgID
	}

	msg, _ := json.Marshal(errMsg)
	select {
	case conn.send <- msg:
	default:
		h.log.Warn("Failed to send error, channel full")
	}
}
