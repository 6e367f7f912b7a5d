package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/menengai/fansite-api/livefeed"
	"github.com/menengai/fansite-api/models"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust CORS as needed, e.g., check r.Header.Get("Origin")
	},
}

type wsEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type wsSnapshot struct {
	Event    string                 `json:"event"`
	Chat     []models.ChatMessage   `json:"chat"`
	Comments []models.CommentThread `json:"comments"`
}

// streamRoom fans one livestream's change feed out to every socket watching
// it. The room owns the feed view state and the standing subscriptions; both
// are torn down when the last socket leaves.
type streamRoom struct {
	mutex    sync.Mutex
	conns    map[*websocket.Conn]struct{}
	chat     *livefeed.ChatFeed
	comments *livefeed.CommentFeed
	chatSub  *livefeed.Subscription
	comSub   *livefeed.Subscription
}

func (room *streamRoom) broadcast(ev interface{}) {
	room.mutex.Lock()
	defer room.mutex.Unlock()
	for conn := range room.conns {
		if err := conn.WriteJSON(ev); err != nil {
			zap.S().Debugw("dropping websocket client", "error", err)
			delete(room.conns, conn)
			conn.Close()
		}
	}
}

// LiveFeedSocket serves the per-livestream websocket feed
type LiveFeedSocket struct {
	Engine *livefeed.Engine

	mutex sync.Mutex
	rooms map[primitive.ObjectID]*streamRoom
}

// NewLiveFeedSocket creates the socket handler with an empty room table
func NewLiveFeedSocket(engine *livefeed.Engine) *LiveFeedSocket {
	return &LiveFeedSocket{
		Engine: engine,
		rooms:  make(map[primitive.ObjectID]*streamRoom),
	}
}

// room returns the stream's room, creating it and opening its change feed
// subscriptions on first use.
func (s *LiveFeedSocket) room(streamID primitive.ObjectID) (*streamRoom, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if room, ok := s.rooms[streamID]; ok {
		return room, nil
	}

	ctx := context.Background()
	initialChat, err := s.Engine.LoadChat(ctx, streamID)
	if err != nil {
		return nil, err
	}
	initialComments, err := s.Engine.LoadComments(ctx, streamID)
	if err != nil {
		return nil, err
	}

	room := &streamRoom{
		conns:    make(map[*websocket.Conn]struct{}),
		chat:     livefeed.NewChatFeed(),
		comments: livefeed.NewCommentFeed(),
	}
	room.chat.Reset(initialChat)
	room.comments.Reset(initialComments)

	room.chatSub, err = s.Engine.SubscribeChat(ctx, streamID, livefeed.ChatHandlers{
		OnInsert: func(m models.ChatMessage) {
			room.chat.ApplyInsert(m)
			room.broadcast(wsEvent{Event: "chat_insert", Data: m})
		},
		OnUpdate: func(m models.ChatMessage) {
			room.chat.ApplyUpdate(m)
			room.broadcast(wsEvent{Event: "chat_update", Data: m})
		},
		OnDelete: func(id primitive.ObjectID) {
			room.chat.ApplyDelete(id)
			room.broadcast(wsEvent{Event: "chat_delete", Data: id.Hex()})
		},
	})
	if err != nil {
		return nil, err
	}

	room.comSub, err = s.Engine.SubscribeComments(ctx, streamID, livefeed.CommentHandlers{
		OnInsert: func(c models.Comment) {
			room.comments.ApplyInsert(c)
			room.broadcast(wsEvent{Event: "comment_insert", Data: c})
		},
		OnUpdate: func(c models.Comment) {
			room.comments.ApplyUpdate(c)
			room.broadcast(wsEvent{Event: "comment_update", Data: c})
		},
		OnDelete: func(id primitive.ObjectID) {
			room.comments.ApplyDelete(id)
			room.broadcast(wsEvent{Event: "comment_delete", Data: id.Hex()})
		},
	})
	if err != nil {
		room.chatSub.Close()
		return nil, err
	}

	s.rooms[streamID] = room
	zap.S().Infow("livestream feed room opened", "livestreamId", streamID.Hex())
	return room, nil
}

// leave drops one socket from a room and tears the room down when it was the
// last one.
func (s *LiveFeedSocket) leave(streamID primitive.ObjectID, room *streamRoom, conn *websocket.Conn) {
	room.mutex.Lock()
	delete(room.conns, conn)
	empty := len(room.conns) == 0
	room.mutex.Unlock()
	conn.Close()

	if !empty {
		return
	}

	s.mutex.Lock()
	// re-check under the table lock; a new socket may have joined meanwhile
	room.mutex.Lock()
	empty = len(room.conns) == 0
	room.mutex.Unlock()
	if empty {
		delete(s.rooms, streamID)
	}
	s.mutex.Unlock()

	if empty {
		room.chatSub.Close()
		room.comSub.Close()
		zap.S().Infow("livestream feed room closed", "livestreamId", streamID.Hex())
	}
}

// join registers one socket in the stream's room and writes the feed snapshot
// captured at registration time. The room identity is re-checked under the
// table lock: the last member leaving may tear the room down between the
// lookup and the registration, in which case a fresh room is opened.
func (s *LiveFeedSocket) join(streamID primitive.ObjectID, conn *websocket.Conn) (*streamRoom, error) {
	for {
		room, err := s.room(streamID)
		if err != nil {
			return nil, err
		}

		s.mutex.Lock()
		if s.rooms[streamID] != room {
			s.mutex.Unlock()
			continue
		}
		room.mutex.Lock()
		room.conns[conn] = struct{}{}
		snapshot := wsSnapshot{
			Event:    "snapshot",
			Chat:     room.chat.Messages(),
			Comments: room.comments.Threads(),
		}
		err = conn.WriteJSON(snapshot)
		room.mutex.Unlock()
		s.mutex.Unlock()
		if err != nil {
			s.leave(streamID, room, conn)
			return nil, err
		}
		return room, nil
	}
}

// ServeWS upgrades the connection and streams feed events for one livestream
func (s *LiveFeedSocket) ServeWS(w http.ResponseWriter, r *http.Request) {
	streamID, err := primitive.ObjectIDFromHex(mux.Vars(r)["livestream_id"])
	if err != nil {
		http.Error(w, "invalid livestream id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade error", "error", err)
		return
	}

	room, err := s.join(streamID, conn)
	if err != nil {
		zap.S().Errorw("failed to open feed room", "livestreamId", streamID.Hex(), "error", err)
		conn.Close()
		return
	}

	// Keep connection alive; clients do not send feed data upstream
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	s.leave(streamID, room, conn)
}
