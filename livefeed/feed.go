package livefeed

import (
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/menengai/fansite-api/models"
)

// chatFeedCap matches the initial-load limit; the live view never grows past
// the most recent chatFeedCap messages.
const chatFeedCap = 100

// ChatFeed holds the merged view of a stream's chat: an initial snapshot plus
// live change events. Events may race the initial load, so every apply is
// keyed by message identity: insert-if-absent, replace-if-present,
// remove-if-present-on-delete.
type ChatFeed struct {
	mu   sync.Mutex
	msgs []models.ChatMessage
}

// NewChatFeed returns an empty chat feed.
func NewChatFeed() *ChatFeed {
	return &ChatFeed{}
}

// Reset replaces the feed contents with an initial load.
func (f *ChatFeed) Reset(initial []models.ChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = make([]models.ChatMessage, 0, len(initial))
	for _, m := range initial {
		if !m.IsDeleted {
			f.msgs = append(f.msgs, m)
		}
	}
	f.sortAndTrimLocked()
}

// ApplyInsert merges a live-pushed row. If the row already arrived via the
// initial load it is replaced rather than duplicated.
func (f *ChatFeed) ApplyInsert(m models.ChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.IsDeleted {
		return
	}
	if i := f.indexLocked(m.ID); i >= 0 {
		f.msgs[i] = m
		return
	}
	f.msgs = append(f.msgs, m)
	f.sortAndTrimLocked()
}

// ApplyUpdate replaces the row if present. A row updated into the deleted
// state is removed from the view, matching the soft-delete read rule.
func (f *ChatFeed) ApplyUpdate(m models.ChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(m.ID)
	if i < 0 {
		if !m.IsDeleted {
			f.msgs = append(f.msgs, m)
			f.sortAndTrimLocked()
		}
		return
	}
	if m.IsDeleted {
		f.msgs = append(f.msgs[:i], f.msgs[i+1:]...)
		return
	}
	f.msgs[i] = m
}

// ApplyDelete removes the row if present; unknown ids are ignored.
func (f *ChatFeed) ApplyDelete(id primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexLocked(id); i >= 0 {
		f.msgs = append(f.msgs[:i], f.msgs[i+1:]...)
	}
}

// Messages returns a copy of the current view, ascending by creation time.
func (f *ChatFeed) Messages() []models.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ChatMessage, len(f.msgs))
	copy(out, f.msgs)
	return out
}

// Len returns the number of visible messages.
func (f *ChatFeed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

func (f *ChatFeed) indexLocked(id primitive.ObjectID) int {
	for i := range f.msgs {
		if f.msgs[i].ID == id {
			return i
		}
	}
	return -1
}

func (f *ChatFeed) sortAndTrimLocked() {
	sort.SliceStable(f.msgs, func(i, j int) bool {
		return f.msgs[i].CreatedAt < f.msgs[j].CreatedAt
	})
	if len(f.msgs) > chatFeedCap {
		f.msgs = f.msgs[len(f.msgs)-chatFeedCap:]
	}
}

// CommentFeed holds the merged view of a stream's comments with the same
// identity-keyed merge semantics as ChatFeed. Top-level comments are ordered
// newest-first; replies sit under their parent ordered by creation time.
type CommentFeed struct {
	mu       sync.Mutex
	comments []models.Comment
}

// NewCommentFeed returns an empty comment feed.
func NewCommentFeed() *CommentFeed {
	return &CommentFeed{}
}

// Reset replaces the feed contents with an initial load.
func (f *CommentFeed) Reset(initial []models.Comment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = make([]models.Comment, 0, len(initial))
	for _, c := range initial {
		if !c.IsDeleted {
			f.comments = append(f.comments, c)
		}
	}
}

// ApplyInsert merges a live-pushed comment, replacing any copy that already
// arrived via the initial load.
func (f *CommentFeed) ApplyInsert(c models.Comment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.IsDeleted {
		return
	}
	if i := f.indexLocked(c.ID); i >= 0 {
		f.comments[i] = c
		return
	}
	f.comments = append(f.comments, c)
}

// ApplyUpdate replaces the comment if present; a comment updated into the
// deleted state is removed from the view.
func (f *CommentFeed) ApplyUpdate(c models.Comment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(c.ID)
	if i < 0 {
		if !c.IsDeleted {
			f.comments = append(f.comments, c)
		}
		return
	}
	if c.IsDeleted {
		f.comments = append(f.comments[:i], f.comments[i+1:]...)
		return
	}
	f.comments[i] = c
}

// ApplyDelete removes the comment if present; unknown ids are ignored.
func (f *CommentFeed) ApplyDelete(id primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexLocked(id); i >= 0 {
		f.comments = append(f.comments[:i], f.comments[i+1:]...)
	}
}

// Threads partitions the view into top-level comments (newest first) with
// their replies (oldest first). A reply whose parent is missing from the view
// is dropped rather than promoted, and replies never nest further than one
// level even if the store held a reply-of-a-reply.
func (f *CommentFeed) Threads() []models.CommentThread {
	f.mu.Lock()
	defer f.mu.Unlock()

	topLevel := make([]models.Comment, 0, len(f.comments))
	replies := map[primitive.ObjectID][]models.Comment{}
	byID := map[primitive.ObjectID]models.Comment{}
	for _, c := range f.comments {
		byID[c.ID] = c
	}
	for _, c := range f.comments {
		if c.ParentID == nil {
			topLevel = append(topLevel, c)
			continue
		}
		parent, ok := byID[*c.ParentID]
		if !ok || parent.IsReply() {
			// reply to a missing or non-top-level comment; not rendered
			continue
		}
		replies[*c.ParentID] = append(replies[*c.ParentID], c)
	}

	sort.SliceStable(topLevel, func(i, j int) bool {
		return topLevel[i].CreatedAt > topLevel[j].CreatedAt
	})

	threads := make([]models.CommentThread, 0, len(topLevel))
	for _, c := range topLevel {
		rs := replies[c.ID]
		sort.SliceStable(rs, func(i, j int) bool {
			return rs[i].CreatedAt < rs[j].CreatedAt
		})
		threads = append(threads, models.CommentThread{Comment: c, Replies: rs})
	}
	return threads
}

// Len returns the number of visible comments, replies included.
func (f *CommentFeed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.comments)
}

func (f *CommentFeed) indexLocked(id primitive.ObjectID) int {
	for i := range f.comments {
		if f.comments[i].ID == id {
			return i
		}
	}
	return -1
}
