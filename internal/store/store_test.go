package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/patter-chat/patter/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	return db
}

func makeUser(t *testing.T, users UserStore, username string) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.NewString(), Username: username, Name: username, CreatedAt: time.Now()}
	if err := users.Create(u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func TestMessagesBetweenIsSymmetricAndOrdered(t *testing.T) {
	db := newTestDB(t)
	users := NewSQLiteUserStore(db)
	messages := NewSQLiteMessageStore(db)
	alice := makeUser(t, users, "alice")
	bob := makeUser(t, users, "bob")
	carol := makeUser(t, users, "carol")

	base := time.Now()
	for i, m := range []struct {
		from, to, text string
	}{
		{alice.ID, bob.ID, "one"},
		{bob.ID, alice.ID, "two"},
		{alice.ID, carol.ID, "other thread"},
	} {
		to := m.to
		err := messages.Create(&models.Message{
			ID:         uuid.NewString(),
			SenderID:   m.from,
			ReceiverID: &to,
			Content:    m.text,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("create message %q: %v", m.text, err)
		}
	}

	forward, err := messages.Between(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("Between: %v", err)
	}
	reverse, err := messages.Between(bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("Between reversed: %v", err)
	}
	if len(forward) != 2 || len(reverse) != 2 {
		t.Fatalf("expected 2 messages each way, got %d and %d", len(forward), len(reverse))
	}
	if forward[0].Content != "one" || forward[1].Content != "two" {
		t.Errorf("expected creation order, got %q then %q", forward[0].Content, forward[1].Content)
	}
}

func TestMarkDeletedForIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	users := NewSQLiteUserStore(db)
	messages := NewSQLiteMessageStore(db)
	alice := makeUser(t, users, "alice")
	bob := makeUser(t, users, "bob")

	to := bob.ID
	msg := &models.Message{
		ID:         uuid.NewString(),
		SenderID:   alice.ID,
		ReceiverID: &to,
		Content:    "hi",
		CreatedAt:  time.Now(),
	}
	if err := messages.Create(msg); err != nil {
		t.Fatalf("create message: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := messages.MarkDeletedFor(msg.ID, bob.ID); err != nil {
			t.Fatalf("MarkDeletedFor attempt %d: %v", i+1, err)
		}
	}

	stored, err := messages.ByID(msg.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if len(stored.Deletions) != 1 {
		t.Errorf("expected exactly one deletion row, got %d", len(stored.Deletions))
	}
	if !stored.DeletedFor(bob.ID) || stored.DeletedFor(alice.ID) {
		t.Errorf("deletion should apply to bob only: %+v", stored.Deletions)
	}
}

func TestGroupMembershipRows(t *testing.T) {
	db := newTestDB(t)
	users := NewSQLiteUserStore(db)
	groups := NewSQLiteGroupStore(db)
	alice := makeUser(t, users, "alice")
	bob := makeUser(t, users, "bob")

	g := &models.Group{ID: uuid.NewString(), Name: "plans", AdminID: alice.ID, CreatedAt: time.Now()}
	if err := groups.Create(g, []string{alice.ID, bob.ID}); err != nil {
		t.Fatalf("create group: %v", err)
	}

	// Re-adding an existing member is a no-op.
	if err := groups.AddMembers(g.ID, []string{bob.ID}); err != nil {
		t.Fatalf("AddMembers: %v", err)
	}
	stored, err := groups.ByID(g.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if len(stored.Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(stored.Members))
	}

	if err := groups.RemoveMember(g.ID, bob.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	mine, err := groups.ForUser(bob.ID)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if len(mine) != 0 {
		t.Errorf("bob should have no groups left, got %d", len(mine))
	}
}

func TestSetPresence(t *testing.T) {
	db := newTestDB(t)
	users := NewSQLiteUserStore(db)
	alice := makeUser(t, users, "alice")

	seen := time.Now()
	if err := users.SetPresence(alice.ID, true, seen); err != nil {
		t.Fatalf("SetPresence: %v", err)
	}
	stored, err := users.ByID(alice.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if !stored.Online {
		t.Error("user should be online")
	}
	if stored.LastSeen.Unix() != seen.Unix() {
		t.Errorf("lastSeen mismatch: %v vs %v", stored.LastSeen, seen)
	}
}
