// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kinograph/kinograph/internal/logging"
)

const (
	wsWriteTimeout = 10 * time.Second

	// wsIdleTimeout closes conversations abandoned mid-session.
	wsIdleTimeout = 10 * time.Minute
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origin checks are enforced by the CORS layer; the
	// websocket endpoint accepts the same origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsInbound is one client frame.
type wsInbound struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// wsOutbound is one server frame.
type wsOutbound struct {
	SessionID string `json:"session_id,omitempty"`
	Reply     string `json:"reply,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ChatWS godoc
// @Summary Assistant chat over a websocket
// @Description Each inbound frame is one chat turn; the session ID
// @Description from the first reply keeps the transcript across frames.
// @Tags assistant
// @Router /api/v1/assistant/ws [get]
func (h *Handler) ChatWS(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil || !h.assistant.Enabled() {
		NewResponseWriter(w, r).ServiceUnavailable("Assistant is not configured")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Debug().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := logging.Ctx(r.Context())
	log.Debug().Msg("Websocket chat opened")

	for {
		conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))

		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("Websocket chat closed unexpectedly")
			}
			return
		}

		in.Message = strings.TrimSpace(in.Message)
		if in.Message == "" {
			h.wsSend(conn, wsOutbound{Error: "Field 'message' is required"})
			continue
		}
		if len(in.Message) > maxMessageLen {
			h.wsSend(conn, wsOutbound{Error: fmt.Sprintf("Field 'message' must be at most %d characters", maxMessageLen)})
			continue
		}

		st, reply, err := h.assistant.Chat(r.Context(), in.SessionID, in.Message)
		if err != nil {
			out := wsOutbound{Error: "Assistant is unavailable, try again"}
			if st != nil {
				out.SessionID = st.ID
			}
			h.wsSend(conn, out)
			continue
		}
		if !h.wsSend(conn, wsOutbound{SessionID: st.ID, Reply: reply}) {
			return
		}
	}
}

func (h *Handler) wsSend(conn *websocket.Conn, out wsOutbound) bool {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(out); err != nil {
		logging.Debug().Err(err).Msg("Websocket write failed")
		return false
	}
	return true
}
