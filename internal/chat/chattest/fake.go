// Package chattest provides an in-memory chat.Service for tests.
package chattest

import (
	"context"
	"fmt"
	"sync"

	"github.com/questboard/server/internal/chat"
)

type storedMessage struct {
	id      string
	content string
	deleted bool
}

// Fake is a scripted chat.Service. Channels and categories are held in
// memory; failure hooks let tests force specific calls to error.
type Fake struct {
	mu sync.Mutex

	seq        int
	categories map[string]chat.Channel
	channels   map[string]chat.Channel
	messages   map[string][]*storedMessage
	access     map[string]map[string]bool

	// Failure hooks. When non-nil the corresponding call returns the error.
	FailCreateChannel  error
	FailCreateCategory error
	FailSend           error
	FailEdit           error
	FailPermission     error
}

func NewFake() *Fake {
	return &Fake{
		categories: make(map[string]chat.Channel),
		channels:   make(map[string]chat.Channel),
		messages:   make(map[string][]*storedMessage),
		access:     make(map[string]map[string]bool),
	}
}

var _ chat.Service = (*Fake)(nil)

func (f *Fake) next(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

// AddCategory seeds a category channel, returning its id.
func (f *Fake) AddCategory(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next("cat")
	f.categories[id] = chat.Channel{ID: id, Name: name}
	return id
}

// AddChannel seeds a plain text channel (board or notification targets).
func (f *Fake) AddChannel(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next("ch")
	f.channels[id] = chat.Channel{ID: id, Name: name}
	return id
}

func (f *Fake) CreateChannel(ctx context.Context, guildID string, req chat.CreateChannelRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailCreateChannel != nil {
		return "", f.FailCreateChannel
	}
	if req.ParentID != "" {
		if _, ok := f.categories[req.ParentID]; !ok {
			return "", chat.ErrNotFound
		}
	}
	id := f.next("ch")
	f.channels[id] = chat.Channel{ID: id, Name: req.Name, ParentID: req.ParentID}
	grants := make(map[string]bool)
	for _, uid := range req.AllowUserIDs {
		grants[uid] = true
	}
	f.access[id] = grants
	return id, nil
}

func (f *Fake) CreateCategory(ctx context.Context, guildID, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailCreateCategory != nil {
		return "", f.FailCreateCategory
	}
	id := f.next("cat")
	f.categories[id] = chat.Channel{ID: id, Name: name}
	return id, nil
}

func (f *Fake) Categories(ctx context.Context, guildID string) ([]chat.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]chat.Channel, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *Fake) ChannelsInCategory(ctx context.Context, guildID, categoryID string) ([]chat.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[categoryID]; !ok {
		return nil, chat.ErrNotFound
	}
	var out []chat.Channel
	for _, c := range f.channels {
		if c.ParentID == categoryID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *Fake) SetPermission(ctx context.Context, channelID, userID string, allow bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPermission != nil {
		return f.FailPermission
	}
	if _, ok := f.channels[channelID]; !ok {
		return chat.ErrNotFound
	}
	grants := f.access[channelID]
	if grants == nil {
		grants = make(map[string]bool)
		f.access[channelID] = grants
	}
	if allow {
		grants[userID] = true
	} else {
		delete(grants, userID)
	}
	return nil
}

func (f *Fake) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSend != nil {
		return "", f.FailSend
	}
	if _, ok := f.channels[channelID]; !ok {
		return "", chat.ErrNotFound
	}
	id := f.next("msg")
	f.messages[channelID] = append(f.messages[channelID], &storedMessage{id: id, content: content})
	return id, nil
}

func (f *Fake) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailEdit != nil {
		return f.FailEdit
	}
	for _, m := range f.messages[channelID] {
		if m.id == messageID && !m.deleted {
			m.content = content
			return nil
		}
	}
	return chat.ErrNotFound
}

func (f *Fake) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages[channelID] {
		if m.id == messageID {
			m.deleted = true
			return nil
		}
	}
	return nil
}

func (f *Fake) FetchMessage(ctx context.Context, channelID, messageID string) (chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages[channelID] {
		if m.id == messageID && !m.deleted {
			return chat.Message{ChannelID: channelID, ID: messageID}, nil
		}
	}
	return chat.Message{}, chat.ErrNotFound
}

// Messages returns the contents of live messages in a channel, oldest first.
func (f *Fake) Messages(channelID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.messages[channelID] {
		if !m.deleted {
			out = append(out, m.content)
		}
	}
	return out
}

// MessageContent returns the current content of a message, or "" if deleted
// or unknown.
func (f *Fake) MessageContent(channelID, messageID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages[channelID] {
		if m.id == messageID && !m.deleted {
			return m.content
		}
	}
	return ""
}

// HasAccess reports whether a user holds an allow overwrite on a channel.
func (f *Fake) HasAccess(channelID, userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access[channelID][userID]
}

// ChannelName returns the name of a channel or category.
func (f *Fake) ChannelName(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.channels[id]; ok {
		return c.Name
	}
	if c, ok := f.categories[id]; ok {
		return c.Name
	}
	return ""
}

// ParentOf returns the category id a channel was created under.
func (f *Fake) ParentOf(channelID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.channels[channelID].ParentID
}
