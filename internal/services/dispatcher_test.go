package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/commune-app/backend/internal/models"
	"github.com/commune-app/backend/internal/repositories"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)
	userRepo := repositories.NewPostgresUserRepository(db)
	return NewDispatcher(notificationRepo, userRepo, nil, zerolog.Nop()), db
}

func seedUser(t *testing.T, db *gorm.DB, displayName, handle string) *models.User {
	t.Helper()
	user := &models.User{DisplayName: displayName, Handle: handle, Email: handle + "@example.com"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", handle, err)
	}
	return user
}

func notificationsFor(t *testing.T, db *gorm.DB, recipientID uint) []models.Notification {
	t.Helper()
	var notifications []models.Notification
	if err := db.Where("recipient_id = ?", recipientID).Find(&notifications).Error; err != nil {
		t.Fatalf("failed to load notifications: %v", err)
	}
	return notifications
}

func TestNotifyPersistsScheduled(t *testing.T) {
	d, db := newTestDispatcher(t)

	d.Notify(context.Background(), 10, Event{
		Type:    models.NotificationSystemAnnouncement,
		ActorID: 1,
		Title:   "Maintenance",
		Message: "Scheduled downtime tonight",
	})

	got := notificationsFor(t, db, 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	if got[0].Status != models.NotificationScheduled {
		t.Fatalf("expected status %q, got %q", models.NotificationScheduled, got[0].Status)
	}
	if got[0].ReadAt != nil {
		t.Fatal("expected a fresh notification to be unread")
	}
}

func TestNotifySuppressesSelf(t *testing.T) {
	d, db := newTestDispatcher(t)

	d.Notify(context.Background(), 5, Event{Type: models.NotificationReaction, ActorID: 5, Title: "x", Message: "y"})

	if got := notificationsFor(t, db, 5); len(got) != 0 {
		t.Fatalf("expected no self-notification, got %d", len(got))
	}
}

func TestNotifyManyFiltersActorAndDuplicates(t *testing.T) {
	d, db := newTestDispatcher(t)

	d.NotifyMany(context.Background(), []uint{1, 2, 2, 3, 3, 3, 0}, Event{
		Type:    models.NotificationPostCreated,
		ActorID: 2,
		Title:   "New post",
		Message: "Someone posted",
	})

	var total int64
	db.Model(&models.Notification{}).Count(&total)
	if total != 2 {
		t.Fatalf("expected notifications for users 1 and 3 only, got %d rows", total)
	}
	if got := notificationsFor(t, db, 2); len(got) != 0 {
		t.Fatal("the actor must not be notified by a fan-out")
	}
	if got := notificationsFor(t, db, 1); len(got) != 1 {
		t.Fatalf("expected exactly 1 notification for user 1, got %d", len(got))
	}
}

func TestReactionNotification(t *testing.T) {
	d, db := newTestDispatcher(t)
	actor := seedUser(t, db, "Alice", "alice")
	author := seedUser(t, db, "Bob", "bob")

	target := models.Target{Type: models.TargetPost, ID: "64f000000000000000000001"}
	d.Reaction(context.Background(), actor.ID, target, author.ID, "like")

	got := notificationsFor(t, db, author.ID)
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	if got[0].Type != models.NotificationReaction {
		t.Fatalf("expected type %q, got %q", models.NotificationReaction, got[0].Type)
	}
	if !strings.Contains(got[0].Message, "Alice") {
		t.Fatalf("expected the actor's name in the message, got %q", got[0].Message)
	}
	if got[0].ActionURL != "/posts/64f000000000000000000001" {
		t.Fatalf("unexpected action URL %q", got[0].ActionURL)
	}
}

func TestReactionUnresolvableActorIsNoop(t *testing.T) {
	d, db := newTestDispatcher(t)
	author := seedUser(t, db, "Bob", "bob")

	target := models.Target{Type: models.TargetPost, ID: "64f000000000000000000001"}
	d.Reaction(context.Background(), 999, target, author.ID, "like")

	if got := notificationsFor(t, db, author.ID); len(got) != 0 {
		t.Fatalf("expected no notification for an unknown actor, got %d", len(got))
	}
}

func TestMentionNotifiesResolvedHandles(t *testing.T) {
	d, db := newTestDispatcher(t)
	actor := seedUser(t, db, "Alice", "alice")
	bob := seedUser(t, db, "Bob", "bob")
	carol := seedUser(t, db, "Carol", "carol")

	target := models.Target{Type: models.TargetComment, ID: "17"}
	d.Mention(context.Background(), actor.ID, target, "hey @bob and @carol and @ghost, also @bob again")

	if got := notificationsFor(t, db, bob.ID); len(got) != 1 {
		t.Fatalf("expected 1 mention for bob, got %d", len(got))
	}
	if got := notificationsFor(t, db, carol.ID); len(got) != 1 {
		t.Fatalf("expected 1 mention for carol, got %d", len(got))
	}
	var total int64
	db.Model(&models.Notification{}).Count(&total)
	if total != 2 {
		t.Fatalf("unresolvable handles must be skipped, got %d rows", total)
	}
}

func TestMentionOfSelfSuppressed(t *testing.T) {
	d, db := newTestDispatcher(t)
	actor := seedUser(t, db, "Alice", "alice")

	target := models.Target{Type: models.TargetPost, ID: "64f000000000000000000001"}
	d.Mention(context.Background(), actor.ID, target, "note to self @alice")

	if got := notificationsFor(t, db, actor.ID); len(got) != 0 {
		t.Fatalf("expected no self-mention notification, got %d", len(got))
	}
}

func TestPostApprovalOutcomes(t *testing.T) {
	d, db := newTestDispatcher(t)

	d.PostApproval(context.Background(), 1, "64f000000000000000000001", 2, true)
	d.PostApproval(context.Background(), 1, "64f000000000000000000002", 3, false)

	approved := notificationsFor(t, db, 2)
	if len(approved) != 1 || approved[0].Type != models.NotificationPostApproved {
		t.Fatalf("expected a post_approved notification, got %+v", approved)
	}
	rejected := notificationsFor(t, db, 3)
	if len(rejected) != 1 || rejected[0].Type != models.NotificationPostRejected {
		t.Fatalf("expected a post_rejected notification, got %+v", rejected)
	}
}

// failingNotificationRepo fails every write so tests can assert the
// dispatcher swallows persistence errors.
type failingNotificationRepo struct{}

var errStoreDown = errors.New("store down")

func (f *failingNotificationRepo) CreateNotification(n *models.Notification) error { return errStoreDown }
func (f *failingNotificationRepo) CreateNotifications(n []models.Notification) error {
	return errStoreDown
}
func (f *failingNotificationRepo) GetByID(id uint) (*models.Notification, error) {
	return nil, errStoreDown
}
func (f *failingNotificationRepo) GetByRecipientID(recipientID uint, page, limit int, unreadOnly bool) ([]models.Notification, int64, error) {
	return nil, 0, errStoreDown
}
func (f *failingNotificationRepo) GetUnreadCount(recipientID uint) (int64, error) {
	return 0, errStoreDown
}
func (f *failingNotificationRepo) MarkAsRead(notificationID uint) error      { return errStoreDown }
func (f *failingNotificationRepo) MarkAllAsRead(recipientID uint) error      { return errStoreDown }
func (f *failingNotificationRepo) DeleteNotification(notificationID uint) error {
	return errStoreDown
}

func TestNotifySwallowsPersistenceFailure(t *testing.T) {
	db := newTestDB(t)
	userRepo := repositories.NewPostgresUserRepository(db)
	d := NewDispatcher(&failingNotificationRepo{}, userRepo, nil, zerolog.Nop())

	// Must not panic or surface anything to the caller.
	d.Notify(context.Background(), 1, Event{Type: models.NotificationReply, ActorID: 2, Title: "t", Message: "m"})
	d.NotifyMany(context.Background(), []uint{1, 3}, Event{Type: models.NotificationPostCreated, ActorID: 2, Title: "t", Message: "m"})
}

func TestTruncateContentBoundary(t *testing.T) {
	exact := strings.Repeat("a", contentPreviewLimit)
	if got := truncateContent(exact); got != exact {
		t.Fatalf("content at the limit must pass verbatim, got %d runes", len([]rune(got)))
	}

	over := strings.Repeat("b", contentPreviewLimit+1)
	got := truncateContent(over)
	runes := []rune(got)
	if len(runes) != contentPreviewLimit+1 {
		t.Fatalf("expected %d runes including the ellipsis, got %d", contentPreviewLimit+1, len(runes))
	}
	if runes[len(runes)-1] != '…' {
		t.Fatalf("expected an ellipsis marker, got %q", string(runes[len(runes)-1]))
	}
	if string(runes[:contentPreviewLimit]) != strings.Repeat("b", contentPreviewLimit) {
		t.Fatal("truncation must keep the first runes intact")
	}
}

func TestTruncateContentMultibyte(t *testing.T) {
	over := strings.Repeat("é", contentPreviewLimit+10)
	got := []rune(truncateContent(over))
	if len(got) != contentPreviewLimit+1 {
		t.Fatalf("expected rune-based truncation, got %d runes", len(got))
	}
}

func TestParseMentionsUniqueInOrder(t *testing.T) {
	handles := parseMentions("@bob hi @alice, thanks @bob! cc @carol")
	want := []string{"bob", "alice", "carol"}
	if len(handles) != len(want) {
		t.Fatalf("expected %v, got %v", want, handles)
	}
	for i := range want {
		if handles[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, handles)
		}
	}
}

func TestParseMentionsNone(t *testing.T) {
	if handles := parseMentions("no mentions here, email me at x@"); len(handles) != 0 {
		t.Fatalf("expected no handles, got %v", handles)
	}
}
