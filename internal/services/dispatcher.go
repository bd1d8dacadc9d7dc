package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/commune-app/backend/internal/models"
	"github.com/commune-app/backend/internal/repositories"
	"github.com/commune-app/backend/pkg/fcm"
	"github.com/rs/zerolog"
)

// contentPreviewLimit is the longest quoted-content excerpt a notification
// message carries; anything longer is cut there and marked with an ellipsis.
const contentPreviewLimit = 100

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9]+)`)

// Event is a semantic notification event raised by an action handler. The
// dispatcher turns it into one persisted Notification per recipient.
type Event struct {
	Type      string
	ActorID   uint // user whose action caused the event; never notified
	Title     string
	Message   string
	Data      map[string]interface{}
	ActionURL string
}

// Dispatcher builds and persists notifications from semantic events.
// Delivery is best-effort relative to the action that raised the event:
// every failure is logged and swallowed here, never surfaced to the caller,
// so a reaction or comment never fails because its notification did.
type Dispatcher struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	push          *fcm.Client
	log           zerolog.Logger
}

// NewDispatcher creates a new Dispatcher. push may be nil to disable FCM.
func NewDispatcher(notifications repositories.NotificationRepository, users repositories.UserRepository, push *fcm.Client, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		users:         users,
		push:          push,
		log:           log,
	}
}

// Notify persists one notification for recipientID. An actor acting on their
// own content never generates a notification to themselves; that rule lives
// here, once, not in the per-event builders.
func (d *Dispatcher) Notify(ctx context.Context, recipientID uint, event Event) {
	if recipientID == 0 || recipientID == event.ActorID {
		return
	}
	notification := buildNotification(recipientID, event)
	if err := d.notifications.CreateNotification(notification); err != nil {
		d.log.Error().Err(err).
			Uint("recipient_id", recipientID).
			Str("type", event.Type).
			Msg("notification dispatch failed")
		return
	}
	d.sendPush(ctx, recipientID, event)
}

// NotifyMany persists the event for every recipient in one batched insert.
// The batch lands whole or is logged as failed whole; there is no partial
// success. The actor and duplicate recipients are filtered out first.
func (d *Dispatcher) NotifyMany(ctx context.Context, recipientIDs []uint, event Event) {
	seen := make(map[uint]bool, len(recipientIDs))
	notifications := make([]models.Notification, 0, len(recipientIDs))
	recipients := make([]uint, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		if id == 0 || id == event.ActorID || seen[id] {
			continue
		}
		seen[id] = true
		notifications = append(notifications, *buildNotification(id, event))
		recipients = append(recipients, id)
	}
	if len(notifications) == 0 {
		return
	}
	if err := d.notifications.CreateNotifications(notifications); err != nil {
		d.log.Error().Err(err).
			Int("recipients", len(notifications)).
			Str("type", event.Type).
			Msg("notification fan-out failed")
		return
	}
	for _, id := range recipients {
		d.sendPush(ctx, id, event)
	}
}

// Reaction notifies the target's author that someone reacted to it. A no-op
// when the actor record cannot be resolved.
func (d *Dispatcher) Reaction(ctx context.Context, actorID uint, target models.Target, targetAuthorID uint, kind string) {
	actor, err := d.users.GetUserByID(actorID)
	if err != nil {
		return
	}
	d.Notify(ctx, targetAuthorID, Event{
		Type:    models.NotificationReaction,
		ActorID: actorID,
		Title:   "New reaction",
		Message: fmt.Sprintf("%s reacted to your %s", actor.Name(), target.Type),
		Data: map[string]interface{}{
			"target_type": target.Type,
			"target_id":   target.ID,
			"kind":        kind,
		},
		ActionURL: targetURL(target),
	})
}

// Reply notifies the post's author about a new comment. A no-op when the
// actor record cannot be resolved.
func (d *Dispatcher) Reply(ctx context.Context, actorID uint, postID string, commentID uint, postAuthorID uint, content string) {
	actor, err := d.users.GetUserByID(actorID)
	if err != nil {
		return
	}
	d.Notify(ctx, postAuthorID, Event{
		Type:    models.NotificationReply,
		ActorID: actorID,
		Title:   "New reply",
		Message: fmt.Sprintf("%s replied: %q", actor.Name(), truncateContent(content)),
		Data: map[string]interface{}{
			"post_id":    postID,
			"comment_id": commentID,
		},
		ActionURL: fmt.Sprintf("/posts/%s#comment-%d", postID, commentID),
	})
}

// Mention parses @handles out of content and notifies every mentioned user
// that resolves to an account.
func (d *Dispatcher) Mention(ctx context.Context, actorID uint, target models.Target, content string) {
	handles := parseMentions(content)
	if len(handles) == 0 {
		return
	}

	actorName := "Someone"
	if actor, err := d.users.GetUserByID(actorID); err == nil {
		actorName = actor.Name()
	}

	var recipients []uint
	for _, handle := range handles {
		user, err := d.users.GetUserByHandle(handle)
		if err != nil {
			continue
		}
		recipients = append(recipients, user.ID)
	}

	d.NotifyMany(ctx, recipients, Event{
		Type:    models.NotificationMention,
		ActorID: actorID,
		Title:   "You were mentioned",
		Message: fmt.Sprintf("%s mentioned you: %q", actorName, truncateContent(content)),
		Data: map[string]interface{}{
			"target_type": target.Type,
			"target_id":   target.ID,
		},
		ActionURL: targetURL(target),
	})
}

// PostApproval notifies a post's author of the moderation outcome.
func (d *Dispatcher) PostApproval(ctx context.Context, moderatorID uint, postID string, postAuthorID uint, approved bool) {
	eventType := models.NotificationPostApproved
	title := "Post approved"
	message := "Your post has been approved and is now visible"
	if !approved {
		eventType = models.NotificationPostRejected
		title = "Post rejected"
		message = "Your post was rejected by a group moderator"
	}
	d.Notify(ctx, postAuthorID, Event{
		Type:      eventType,
		ActorID:   moderatorID,
		Title:     title,
		Message:   message,
		Data:      map[string]interface{}{"post_id": postID},
		ActionURL: "/posts/" + postID,
	})
}

// PostCreated fans out a new-post notification to every group member.
func (d *Dispatcher) PostCreated(ctx context.Context, actorID uint, memberIDs []uint, groupID uint, postID, title string) {
	actorName := "Someone"
	if actor, err := d.users.GetUserByID(actorID); err == nil {
		actorName = actor.Name()
	}
	d.NotifyMany(ctx, memberIDs, Event{
		Type:    models.NotificationPostCreated,
		ActorID: actorID,
		Title:   "New post in your group",
		Message: fmt.Sprintf("%s posted %q", actorName, truncateContent(title)),
		Data: map[string]interface{}{
			"group_id": groupID,
			"post_id":  postID,
		},
		ActionURL: "/posts/" + postID,
	})
}

// GroupJoined notifies the group owner that someone joined.
func (d *Dispatcher) GroupJoined(ctx context.Context, actorID uint, group *models.Group) {
	actor, err := d.users.GetUserByID(actorID)
	if err != nil {
		return
	}
	d.Notify(ctx, group.OwnerID, Event{
		Type:      models.NotificationGroupJoinRequest,
		ActorID:   actorID,
		Title:     "New group member",
		Message:   fmt.Sprintf("%s joined %s", actor.Name(), group.Name),
		Data:      map[string]interface{}{"group_id": group.ID},
		ActionURL: fmt.Sprintf("/groups/%d", group.ID),
	})
}

func (d *Dispatcher) sendPush(ctx context.Context, recipientID uint, event Event) {
	if d.push == nil {
		return
	}
	user, err := d.users.GetUserByID(recipientID)
	if err != nil || user.FCMToken == "" {
		return
	}
	data := map[string]string{"type": event.Type}
	if event.ActionURL != "" {
		data["action_url"] = event.ActionURL
	}
	if err := d.push.Send(ctx, user.FCMToken, event.Title, event.Message, data); err != nil {
		d.log.Warn().Err(err).Uint("recipient_id", recipientID).Msg("push delivery failed")
	}
}

func buildNotification(recipientID uint, event Event) *models.Notification {
	var data string
	if event.Data != nil {
		if b, err := json.Marshal(event.Data); err == nil {
			data = string(b)
		}
	}
	return &models.Notification{
		RecipientID:  recipientID,
		Type:         event.Type,
		Title:        event.Title,
		Message:      event.Message,
		Data:         data,
		ActionURL:    event.ActionURL,
		Status:       models.NotificationScheduled,
		ScheduledFor: time.Now(),
	}
}

// truncateContent cuts quoted content at contentPreviewLimit runes and marks
// the cut with an ellipsis. Content at or under the limit passes verbatim.
func truncateContent(content string) string {
	runes := []rune(content)
	if len(runes) <= contentPreviewLimit {
		return content
	}
	return string(runes[:contentPreviewLimit]) + "…"
}

// parseMentions extracts the unique @handles found in content, in order.
func parseMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]bool, len(matches))
	var handles []string
	for _, match := range matches {
		if seen[match[1]] {
			continue
		}
		seen[match[1]] = true
		handles = append(handles, match[1])
	}
	return handles
}

func targetURL(target models.Target) string {
	switch target.Type {
	case models.TargetComment:
		return "/comments/" + target.ID
	default:
		return "/posts/" + target.ID
	}
}
