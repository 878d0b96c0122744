package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Muadeel56/localconnect-plus/broadcast"
	"github.com/Muadeel56/localconnect-plus/message"
	"github.com/Muadeel56/localconnect-plus/metrics"
	"github.com/Muadeel56/localconnect-plus/models"
	"github.com/Muadeel56/localconnect-plus/service"
	"github.com/google/uuid"
)

const (
	frameOK      = "ok"
	frameDropped = "dropped"
	frameError   = "error"
)

// handleRoomFrame 房间连接的上行帧分发；缺省 type 按 chat_message 处理，未知 type 丢弃
func (h *WsServer) handleRoomFrame(c *Client, data []byte) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		h.log.Warn("ws malformed frame", "user_id", c.Identity.UserID, "room_id", c.RoomID, "error", err)
		metrics.WSFrames.WithLabelValues("malformed", frameDropped).Inc()
		return
	}

	switch head.Type {
	case "", message.TypeChatMessage:
		h.onChatMessage(c, data)
	case message.TypeTyping:
		h.onTyping(c, data)
	case message.TypeReadMessages:
		h.onReadMessages(c)
	default:
		h.log.Warn("ws unknown frame type", "type", head.Type, "user_id", c.Identity.UserID)
		metrics.WSFrames.WithLabelValues("unknown", frameDropped).Inc()
	}
}

func (h *WsServer) onChatMessage(c *Client, data []byte) {
	var req message.ChatMessageReq
	if err := json.Unmarshal(data, &req); err != nil {
		h.log.Warn("ws invalid chat_message", "user_id", c.Identity.UserID, "error", err)
		metrics.WSFrames.WithLabelValues(message.TypeChatMessage, frameDropped).Inc()
		return
	}

	p := service.AppendParams{
		RoomID:  c.RoomID,
		Sender:  c.Identity,
		Type:    req.MessageType,
		Content: req.Message,
		Attachment: models.Attachment{
			FileURL:  strings.TrimSpace(req.FileURL),
			FileName: strings.TrimSpace(req.FileName),
			FileSize: req.FileSize,
		},
	}
	if ref := strings.TrimSpace(req.ReplyTo); ref != "" {
		id, err := uuid.Parse(ref)
		if err != nil {
			h.log.Warn("ws invalid reply_to", "reply_to", ref, "user_id", c.Identity.UserID)
			metrics.WSFrames.WithLabelValues(message.TypeChatMessage, frameDropped).Inc()
			return
		}
		p.ReplyToID = &id
	}

	// Send 内部会重新校验活跃成员身份，连接期间被移出房间的用户发送会被丢弃
	msg, err := h.engine.MsgService.Send(c.ctx, p)
	if err != nil {
		h.frameFailed(c, message.TypeChatMessage, err)
		return
	}
	metrics.WSFrames.WithLabelValues(message.TypeChatMessage, frameOK).Inc()
	h.log.Debug("ws message stored", "message_id", msg.ID, "room_id", c.RoomID, "user_id", c.Identity.UserID)
}

// onTyping 只广播，不落库
func (h *WsServer) onTyping(c *Client, data []byte) {
	var req message.TypingReq
	if err := json.Unmarshal(data, &req); err != nil {
		metrics.WSFrames.WithLabelValues(message.TypeTyping, frameDropped).Inc()
		return
	}
	b, _ := json.Marshal(message.TypingEvent{
		Type:     message.TypeTyping,
		User:     c.Identity.Username,
		IsTyping: req.IsTyping,
	})
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.ctx), writeWait)
	defer cancel()
	if err := h.engine.Fabric.Publish(ctx, broadcast.RoomGroup(c.RoomID), b); err != nil {
		h.log.Warn("ws typing publish failed", "room_id", c.RoomID, "error", err)
	}
	metrics.WSFrames.WithLabelValues(message.TypeTyping, frameOK).Inc()
}

func (h *WsServer) onReadMessages(c *Client) {
	if err := h.engine.ReadReceipt.MarkRoomRead(c.ctx, c.Identity, c.RoomID); err != nil {
		h.frameFailed(c, message.TypeReadMessages, err)
		return
	}
	metrics.WSFrames.WithLabelValues(message.TypeReadMessages, frameOK).Inc()
}

// frameFailed 业务错误丢弃该帧并记日志，连接保持
func (h *WsServer) frameFailed(c *Client, frameType string, err error) {
	kv := []interface{}{"type", frameType, "user_id", c.Identity.UserID, "room_id", c.RoomID, "error", err}
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrConflict):
		h.log.Warn("ws frame dropped", kv...)
		metrics.WSFrames.WithLabelValues(frameType, frameDropped).Inc()
	default:
		h.log.Error("ws frame failed", kv...)
		metrics.WSFrames.WithLabelValues(frameType, frameError).Inc()
	}
}
