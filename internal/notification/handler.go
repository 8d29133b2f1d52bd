package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"bondhub/internal/observability"
)

const ActionMarkAsRead = "mark_as_read"

// Action is a button on a posted notification.
type Action struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Notification is what the tray shows. ID is stable per chat so a newer
// message replaces the previous one instead of stacking.
type Notification struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	LargeIcon   string            `json:"large_icon,omitempty"`
	UnreadCount int               `json:"unread_count"`
	DeepLink    map[string]string `json:"deep_link"`
	Actions     []Action          `json:"actions"`
	PostedAt    time.Time         `json:"posted_at"`
}

// NotificationID is the tray id used for every notification of chatID.
func NotificationID(chatID string) string {
	return "chat:" + chatID
}

// Build turns a payload into the notification shown to its receiver.
func Build(p Payload, at time.Time) Notification {
	body := p.Message
	if p.UnreadCount > 1 {
		body = fmt.Sprintf("%s (%d unread)", p.Message, p.UnreadCount)
	}
	return Notification{
		ID:          NotificationID(p.ChatID),
		Title:       p.Title,
		Body:        body,
		UnreadCount: p.UnreadCount,
		DeepLink: map[string]string{
			ExtraChatID:      p.ChatID,
			ExtraOtherUserID: p.SenderID,
		},
		Actions: []Action{{
			ID:     ActionMarkAsRead,
			Title:  "Mark as read",
			Method: "POST",
			Path:   "/notifications/" + p.ChatID + "/read",
		}},
		PostedAt: at,
	}
}

// Tray shows notifications to a user. Post and Update report whether the
// user had anywhere to show it.
type Tray interface {
	Post(userID string, n Notification) bool
	Update(userID string, n Notification) bool
	Cancel(userID, notificationID string)
}

// ChatReader marks a user's chat read.
type ChatReader interface {
	Execute(ctx context.Context, chatID, userID string) error
}

// Handler is the device side of a push.
type Handler struct {
	tray     Tray
	avatars  *AvatarLoader
	markRead ChatReader
	log      *zap.Logger

	// posted holds the sequence number of the post whose avatar upgrade is
	// still pending, per receiver and notification id. Any newer post or a
	// cancel invalidates it.
	mu     sync.Mutex
	seq    uint64
	posted map[string]uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHandler builds a handler. avatars may be nil to post text-only
// notifications.
func NewHandler(tray Tray, avatars *AvatarLoader, markRead ChatReader, log *zap.Logger) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		tray:     tray,
		avatars:  avatars,
		markRead: markRead,
		log:      log,
		posted:   make(map[string]uint64),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func postedKey(receiverID, notificationID string) string {
	return receiverID + "/" + notificationID
}

// HandleDelivery decodes a PushMessage body and handles it.
func (h *Handler) HandleDelivery(ctx context.Context, body []byte) error {
	var push PushMessage
	if err := json.Unmarshal(body, &push); err != nil {
		return fmt.Errorf("decode push: %w", err)
	}
	return h.Handle(ctx, push.ReceiverID, push.Data)
}

// Handle posts the notification right away and, when the sender has a
// picture, upgrades it with the avatar once fetched.
func (h *Handler) Handle(ctx context.Context, receiverID string, data map[string]string) error {
	p, err := ParsePayload(data)
	if err != nil {
		observability.IncNotification("deliver", "invalid")
		return err
	}
	n := Build(p, time.Now().UTC())
	key := postedKey(receiverID, n.ID)

	h.mu.Lock()
	if !h.tray.Post(receiverID, n) {
		h.mu.Unlock()
		observability.IncNotification("deliver", "offline")
		h.log.Debug("no tray for receiver", zap.String("receiver_id", receiverID), zap.String("chat_id", p.ChatID))
		return nil
	}
	upgrade := p.SenderImage != "" && h.avatars != nil
	h.seq++
	seq := h.seq
	if upgrade {
		h.posted[key] = seq
	} else {
		delete(h.posted, key)
	}
	h.mu.Unlock()
	observability.IncNotification("deliver", "posted")

	if !upgrade {
		return nil
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		icon, err := h.avatars.Load(h.ctx, p.SenderImage)
		if err != nil {
			h.log.Debug("avatar unavailable", zap.String("url", p.SenderImage), zap.Error(err))
			h.mu.Lock()
			if h.posted[key] == seq {
				delete(h.posted, key)
			}
			h.mu.Unlock()
			return
		}
		n.LargeIcon = icon

		h.mu.Lock()
		defer h.mu.Unlock()
		if h.posted[key] != seq {
			observability.IncNotification("deliver", "upgrade_stale")
			return
		}
		delete(h.posted, key)
		h.tray.Update(receiverID, n)
	}()
	return nil
}

// MarkAsRead is the notification action. It works whether or not a chat
// screen is open and clears the chat's notification on success.
func (h *Handler) MarkAsRead(ctx context.Context, userID, chatID string) error {
	if err := h.markRead.Execute(ctx, chatID, userID); err != nil {
		return err
	}
	id := NotificationID(chatID)
	h.mu.Lock()
	h.tray.Cancel(userID, id)
	delete(h.posted, postedKey(userID, id))
	h.mu.Unlock()
	observability.IncNotification("deliver", "marked_read")
	return nil
}

// Close stops pending avatar fetches and waits for them.
func (h *Handler) Close() {
	h.cancel()
	h.wg.Wait()
}
