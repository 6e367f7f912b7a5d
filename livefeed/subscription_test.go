package livefeed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/menengai/fansite-api/databases"
	"github.com/menengai/fansite-api/databases/mocks"
	"github.com/menengai/fansite-api/models"
)

func TestSubscribeChatDispatchesEvents(t *testing.T) {
	streamID := primitive.NewObjectID()
	msgID := primitive.NewObjectID()

	cs := &mocks.ChangeStreamHelper{}
	cs.On("Next", mock.Anything).Return(true).Times(3)
	cs.On("Next", mock.Anything).Return(false)
	cs.On("Decode", mock.Anything).Return(nil).Once().Run(func(args mock.Arguments) {
		ev := args.Get(0).(*chatChangeEvent)
		ev.OperationType = "insert"
		ev.FullDocument = models.ChatMessage{ID: msgID, LivestreamID: streamID, Message: "hello"}
	})
	cs.On("Decode", mock.Anything).Return(nil).Once().Run(func(args mock.Arguments) {
		ev := args.Get(0).(*chatChangeEvent)
		ev.OperationType = "update"
		ev.FullDocument = models.ChatMessage{ID: msgID, LivestreamID: streamID, Message: "hello edited"}
	})
	cs.On("Decode", mock.Anything).Return(nil).Once().Run(func(args mock.Arguments) {
		ev := args.Get(0).(*chatChangeEvent)
		ev.OperationType = "delete"
		ev.DocumentKey = documentKey{ID: msgID}
	})
	cs.On("Err").Return(nil)
	cs.On("Close", mock.Anything).Return(nil)

	conn := &mocks.CollectionHelper{}
	conn.On("Watch", mock.Anything, mock.Anything, mock.Anything).Return(cs, nil)
	db := &mocks.DatabaseHelper{}
	db.On("Collection", "livestreamChatMessages").Return(conn)

	engine := &Engine{Chat: databases.NewChatMessageDatabase(db)}

	// handlers fire on the pump goroutine; read only after Done
	var inserts, updates []models.ChatMessage
	var deletes []primitive.ObjectID
	sub, err := engine.SubscribeChat(context.Background(), streamID, ChatHandlers{
		OnInsert: func(m models.ChatMessage) { inserts = append(inserts, m) },
		OnUpdate: func(m models.ChatMessage) { updates = append(updates, m) },
		OnDelete: func(id primitive.ObjectID) { deletes = append(deletes, id) },
	})
	assert.NoError(t, err)

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("change feed pump did not finish")
	}
	sub.Close()

	if assert.Len(t, inserts, 1) {
		assert.Equal(t, "hello", inserts[0].Message)
	}
	if assert.Len(t, updates, 1) {
		assert.Equal(t, "hello edited", updates[0].Message)
	}
	if assert.Len(t, deletes, 1) {
		assert.Equal(t, msgID, deletes[0])
	}
}

func TestSubscribeChatSkipsUndecodableEvents(t *testing.T) {
	streamID := primitive.NewObjectID()

	cs := &mocks.ChangeStreamHelper{}
	cs.On("Next", mock.Anything).Return(true).Times(2)
	cs.On("Next", mock.Anything).Return(false)
	cs.On("Decode", mock.Anything).Return(errors.New("mocked-decode-error")).Once()
	cs.On("Decode", mock.Anything).Return(nil).Once().Run(func(args mock.Arguments) {
		ev := args.Get(0).(*chatChangeEvent)
		ev.OperationType = "insert"
		ev.FullDocument = models.ChatMessage{ID: primitive.NewObjectID(), LivestreamID: streamID, Message: "still here"}
	})
	cs.On("Err").Return(nil)
	cs.On("Close", mock.Anything).Return(nil)

	conn := &mocks.CollectionHelper{}
	conn.On("Watch", mock.Anything, mock.Anything, mock.Anything).Return(cs, nil)
	db := &mocks.DatabaseHelper{}
	db.On("Collection", "livestreamChatMessages").Return(conn)

	engine := &Engine{Chat: databases.NewChatMessageDatabase(db)}

	var inserts []models.ChatMessage
	sub, err := engine.SubscribeChat(context.Background(), streamID, ChatHandlers{
		OnInsert: func(m models.ChatMessage) { inserts = append(inserts, m) },
	})
	assert.NoError(t, err)

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("change feed pump did not finish")
	}
	sub.Close()

	if assert.Len(t, inserts, 1) {
		assert.Equal(t, "still here", inserts[0].Message)
	}
}

func TestSubscribeChatWatchError(t *testing.T) {
	conn := &mocks.CollectionHelper{}
	conn.On("Watch", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("mocked-watch-error"))
	db := &mocks.DatabaseHelper{}
	db.On("Collection", "livestreamChatMessages").Return(conn)

	engine := &Engine{Chat: databases.NewChatMessageDatabase(db)}

	sub, err := engine.SubscribeChat(context.Background(), primitive.NewObjectID(), ChatHandlers{})
	assert.Error(t, err)
	assert.Nil(t, sub)
}

func TestSubscribeCommentsDispatchesInsert(t *testing.T) {
	streamID := primitive.NewObjectID()

	cs := &mocks.ChangeStreamHelper{}
	cs.On("Next", mock.Anything).Return(true).Once()
	cs.On("Next", mock.Anything).Return(false)
	cs.On("Decode", mock.Anything).Return(nil).Once().Run(func(args mock.Arguments) {
		ev := args.Get(0).(*commentChangeEvent)
		ev.OperationType = "insert"
		ev.FullDocument = models.Comment{ID: primitive.NewObjectID(), LivestreamID: streamID, Comment: "great show"}
	})
	cs.On("Err").Return(nil)
	cs.On("Close", mock.Anything).Return(nil)

	conn := &mocks.CollectionHelper{}
	conn.On("Watch", mock.Anything, mock.Anything, mock.Anything).Return(cs, nil)
	db := &mocks.DatabaseHelper{}
	db.On("Collection", "livestreamComments").Return(conn)

	engine := &Engine{Comments: databases.NewCommentDatabase(db)}

	var inserts []models.Comment
	sub, err := engine.SubscribeComments(context.Background(), streamID, CommentHandlers{
		OnInsert: func(c models.Comment) { inserts = append(inserts, c) },
	})
	assert.NoError(t, err)

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("change feed pump did not finish")
	}
	sub.Close()

	if assert.Len(t, inserts, 1) {
		assert.Equal(t, "great show", inserts[0].Comment)
	}
}
