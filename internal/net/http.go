package net

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"

	server "courtworks/server"
	"courtworks/server/internal/telemetry"
)

type HTTPHandlerConfig struct {
	ClientDir string
	Logger    telemetry.Logger
}

// clientMessage is the union of every command an observer can send over the
// socket. Type selects which fields matter.
type clientMessage struct {
	Ver      int     `json:"ver,omitempty"`
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	CourtID  string  `json:"courtId,omitempty"`
	RobotID  string  `json:"robotId,omitempty"`
	JobID    string  `json:"jobId,omitempty"`
	Priority string  `json:"priority,omitempty"`
	SentAt   int64   `json:"sentAt,omitempty"`
}

type heartbeatMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

type commandResultMessage struct {
	Ver     int    `json:"ver"`
	Type    string `json:"type"`
	Command string `json:"command"`
	OK      bool   `json:"ok"`
}

func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.NopLogger()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string `json:"status"`
			ServerTime int64  `json:"serverTime"`
			FrameRate  int    `json:"frameRate"`
			Heartbeat  int64  `json:"heartbeatMillis"`
			Facility   any    `json:"facility"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			FrameRate:  server.FrameRate(),
			Heartbeat:  server.HeartbeatInterval().Milliseconds(),
			Facility:   hub.DiagnosticsSnapshot(),
		}

		data, err := json.Marshal(payload)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/join", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		join := hub.Join()
		data, err := json.Marshal(join)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/keyframe", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		snapshot := hub.KeyframeSnapshot()
		data, err := json.Marshal(snapshot)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.Header.Get("Accept-Encoding"), "zstd") {
			encoder, err := zstd.NewWriter(nil)
			if err != nil {
				httpError(w, "failed to compress", nethttp.StatusInternalServerError)
				return
			}
			compressed := encoder.EncodeAll(data, nil)
			encoder.Close()
			w.Header().Set("Content-Encoding", "zstd")
			w.Write(compressed)
			return
		}
		w.Write(data)
	})

	mux.HandleFunc("/pause", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		hub.Pause()
		writeStatus(w, "paused")
	})

	mux.HandleFunc("/resume", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		hub.Resume()
		writeStatus(w, "running")
	})

	mux.HandleFunc("/match/reset", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		var req struct {
			CourtID string `json:"courtId"`
		}
		if err := decodeBody(r, &req); err != nil {
			httpError(w, "invalid payload", nethttp.StatusBadRequest)
			return
		}
		if req.CourtID == "" {
			httpError(w, "missing courtId", nethttp.StatusBadRequest)
			return
		}
		if !hub.ResetMatch(req.CourtID) {
			httpError(w, "court not resettable", nethttp.StatusConflict)
			return
		}
		writeStatus(w, "ok")
	})

	mux.HandleFunc("/jobs", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		var req struct {
			CourtID  string `json:"courtId"`
			Priority string `json:"priority"`
		}
		if err := decodeBody(r, &req); err != nil {
			httpError(w, "invalid payload", nethttp.StatusBadRequest)
			return
		}
		if req.CourtID == "" {
			httpError(w, "missing courtId", nethttp.StatusBadRequest)
			return
		}
		priority := server.PriorityRoutine
		if req.Priority == string(server.PriorityUrgent) {
			priority = server.PriorityUrgent
		}
		job, ok := hub.EnqueueJob(req.CourtID, priority)
		if !ok {
			httpError(w, "court not eligible", nethttp.StatusConflict)
			return
		}

		data, err := json.Marshal(job)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/jobs/assign", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		var req struct {
			RobotID string `json:"robotId"`
			JobID   string `json:"jobId"`
		}
		if err := decodeBody(r, &req); err != nil {
			httpError(w, "invalid payload", nethttp.StatusBadRequest)
			return
		}
		if req.RobotID == "" || req.JobID == "" {
			httpError(w, "missing robotId or jobId", nethttp.StatusBadRequest)
			return
		}
		if !hub.AssignJob(req.RobotID, req.JobID) {
			httpError(w, "assignment rejected", nethttp.StatusConflict)
			return
		}
		writeStatus(w, "ok")
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	mux.HandleFunc("/ws", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		observerID := r.URL.Query().Get("id")
		if observerID == "" {
			httpError(w, "missing id", nethttp.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Printf("upgrade failed for %s: %v", observerID, err)
			return
		}

		session, ok := hub.Subscribe(observerID, conn)
		if !ok {
			message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown observer")
			conn.WriteMessage(websocket.CloseMessage, message)
			conn.Close()
			return
		}

		snapshot := hub.KeyframeSnapshot()
		data, err := json.Marshal(snapshot)
		if err != nil {
			logger.Printf("failed to marshal initial state for %s: %v", observerID, err)
			hub.Disconnect(observerID)
			return
		}
		if err := session.WriteMessage(websocket.TextMessage, data); err != nil {
			hub.Disconnect(observerID)
			return
		}

		writeJSON := func(payload any) bool {
			data, err := json.Marshal(payload)
			if err != nil {
				logger.Printf("failed to marshal response for %s: %v", observerID, err)
				return true
			}
			if err := session.WriteMessage(websocket.TextMessage, data); err != nil {
				hub.Disconnect(observerID)
				return false
			}
			return true
		}

		ackCommand := func(command string, ok bool) bool {
			return writeJSON(commandResultMessage{
				Ver:     server.ProtocolVersion,
				Type:    "commandResult",
				Command: command,
				OK:      ok,
			})
		}

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				hub.Disconnect(observerID)
				return
			}

			var msg clientMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				logger.Printf("discarding malformed message from %s: %v", observerID, err)
				continue
			}

			switch msg.Type {
			case "viewpoint":
				hub.SetViewpoint(msg.X, msg.Y)
			case "heartbeat":
				now := time.Now()
				rtt, ok := hub.UpdateHeartbeat(observerID, now, msg.SentAt)
				if !ok {
					continue
				}
				ack := heartbeatMessage{
					Ver:        server.ProtocolVersion,
					Type:       "heartbeat",
					ServerTime: now.UnixMilli(),
					ClientTime: msg.SentAt,
					RTTMillis:  rtt.Milliseconds(),
				}
				if !writeJSON(ack) {
					return
				}
			case "resetMatch":
				if !ackCommand(msg.Type, hub.ResetMatch(msg.CourtID)) {
					return
				}
			case "enqueueJob":
				priority := server.PriorityRoutine
				if msg.Priority == string(server.PriorityUrgent) {
					priority = server.PriorityUrgent
				}
				_, ok := hub.EnqueueJob(msg.CourtID, priority)
				if !ackCommand(msg.Type, ok) {
					return
				}
			case "assignJob":
				if !ackCommand(msg.Type, hub.AssignJob(msg.RobotID, msg.JobID)) {
					return
				}
			case "pause":
				hub.Pause()
			case "resume":
				hub.Resume()
			default:
				logger.Printf("unknown message type %q from %s", msg.Type, observerID)
			}
		}
	})

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func decodeBody(r *nethttp.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func writeStatus(w nethttp.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Status string `json:"status"`
	}{Status: status})
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
