package state

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/creastat/shophub"
	"github.com/creastat/shophub/kv"
)

// HistoryKey is the storage key of the persisted conversation.
const HistoryKey = "shophub_chat_history"

// ApologyMessage is appended as the assistant's turn when a message fails.
const ApologyMessage = "Sorry, I encountered an error. Please try again."

// ChatAPI is the subset of the chatbot API module the container needs.
type ChatAPI interface {
	Chat(ctx context.Context, message string) (*shophub.ChatResponse, error)
}

// CartRefresher is told to reload the cart after a cart-affecting reply.
type CartRefresher interface {
	Refresh(ctx context.Context)
}

// ChatState is a point-in-time view of the conversation.
type ChatState struct {
	Messages []shophub.Message
	Loading  bool
	Error    string
}

// ChatContainer owns the conversation with the shopping assistant. The
// history is append-only: a failed message is followed by an apology,
// never rolled back.
type ChatContainer struct {
	api   ChatAPI
	store kv.Store
	cart  CartRefresher
	log   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	messages  []shophub.Message
	pending   int
	err       string
	closed    bool
	observers []func(ChatState)
}

// NewChatContainer restores any persisted history from store. cart may be
// nil when nothing needs refreshing.
func NewChatContainer(ctx context.Context, api ChatAPI, store kv.Store, cart CartRefresher, log zerolog.Logger) *ChatContainer {
	cctx, cancel := context.WithCancel(context.Background())
	c := &ChatContainer{
		api:    api,
		store:  store,
		cart:   cart,
		log:    log,
		ctx:    cctx,
		cancel: cancel,
	}
	c.messages = c.load(ctx)
	return c
}

// Subscribe registers fn to be called after every state change.
func (c *ChatContainer) Subscribe(fn func(ChatState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Messages returns a copy of the conversation.
func (c *ChatContainer) Messages() []shophub.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]shophub.Message(nil), c.messages...)
}

// Loading reports whether a reply is awaited.
func (c *ChatContainer) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

// Err returns the display message of the last failure, or "".
func (c *ChatContainer) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ResetError clears the error message.
func (c *ChatContainer) ResetError() {
	c.mu.Lock()
	c.err = ""
	c.notifyLocked()
	c.mu.Unlock()
}

// SendMessage appends the user's message, asks the assistant and appends
// its reply. Blank input is ignored and returns (nil, nil).
func (c *ChatContainer) SendMessage(ctx context.Context, text string) (*shophub.ChatResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, shophub.ErrClosed
	}
	c.messages = shophub.AddMessageToHistory(c.messages, shophub.RoleUser, text, "", "")
	c.pending++
	c.err = ""
	c.persistLocked(ctx)
	c.notifyLocked()
	c.mu.Unlock()

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	resp, err := c.api.Chat(cctx, text)

	c.mu.Lock()
	c.pending--
	if c.closed {
		c.mu.Unlock()
		return nil, shophub.ErrClosed
	}
	if err != nil {
		c.err = shophub.DisplayMessage(err, "Failed to get response from chatbot")
		c.messages = shophub.AddMessageToHistory(c.messages, shophub.RoleAssistant, ApologyMessage, "", "")
		c.log.Error().Err(err).Msg("send chat message")
	} else {
		c.messages = shophub.AddMessageToHistory(c.messages, shophub.RoleAssistant, resp.Response, resp.Intent, resp.Action)
	}
	c.persistLocked(ctx)
	c.notifyLocked()
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}

	if resp.Action.AffectsCart() && c.cart != nil {
		c.cart.Refresh(ctx)
	}
	return resp, nil
}

// ClearChat empties the conversation and its persisted copy.
func (c *ChatContainer) ClearChat(ctx context.Context) error {
	c.mu.Lock()
	c.messages = nil
	c.err = ""
	c.notifyLocked()
	c.mu.Unlock()

	if err := c.store.Remove(ctx, HistoryKey); err != nil {
		c.log.Warn().Err(err).Msg("remove chat history")
		return err
	}
	return nil
}

// Close cancels an in-flight message. Later calls return shophub.ErrClosed.
func (c *ChatContainer) Close() error {
	c.mu.Lock()
	c.closed = true
	c.observers = nil
	c.mu.Unlock()

	c.cancel()
	return nil
}

func (c *ChatContainer) load(ctx context.Context) []shophub.Message {
	raw, ok, err := c.store.Get(ctx, HistoryKey)
	if err != nil {
		c.log.Warn().Err(err).Msg("read chat history")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var messages []shophub.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		c.log.Warn().Err(err).Msg("decode chat history")
		return nil
	}
	return messages
}

func (c *ChatContainer) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(c.messages)
	if err != nil {
		c.log.Warn().Err(err).Msg("encode chat history")
		return
	}
	if err := c.store.Set(ctx, HistoryKey, string(raw)); err != nil {
		c.log.Warn().Err(err).Msg("write chat history")
	}
}

func (c *ChatContainer) notifyLocked() {
	st := ChatState{
		Messages: append([]shophub.Message(nil), c.messages...),
		Loading:  c.pending > 0,
		Error:    c.err,
	}
	observers := slices.Clone(c.observers)
	c.mu.Unlock()
	for _, fn := range observers {
		fn(st)
	}
	c.mu.Lock()
}
