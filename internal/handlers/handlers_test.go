package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/patter-chat/patter/internal/auth"
	"github.com/patter-chat/patter/internal/chat"
	"github.com/patter-chat/patter/internal/messaging"
	"github.com/patter-chat/patter/internal/store"
)

func newTestApp(t *testing.T) (*fiber.App, *chat.Hub) {
	t.Helper()
	db, err := store.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	users := store.NewSQLiteUserStore(db)
	groups := store.NewSQLiteGroupStore(db)
	messages := store.NewSQLiteMessageStore(db)

	authSvc := auth.NewService(users, "test-secret", time.Hour)
	svc := messaging.NewService(users, groups, messages)
	hub := chat.NewHub(zerolog.Nop(), svc, users, groups)

	app := fiber.New()
	New(zerolog.Nop(), authSvc, svc, users, hub).Mount(app)
	return app, hub
}

func request(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp.StatusCode, data
}

func decode(t *testing.T, data []byte, into any) {
	t.Helper()
	if err := json.Unmarshal(data, into); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type sessionPayload struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

func signUp(t *testing.T, app *fiber.App, username string) sessionPayload {
	t.Helper()
	status, body := request(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"password": "hunter2",
		"name":     username,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d: %s", username, status, body)
	}
	var session sessionPayload
	decode(t, body, &session)
	return session
}

func TestRegisterAndLogin(t *testing.T) {
	app, _ := newTestApp(t)

	session := signUp(t, app, "alice")
	if session.Token == "" || session.User.Username != "alice" {
		t.Fatalf("unexpected session: %+v", session)
	}

	status, body := request(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "password": "x", "name": "dup",
	})
	if status != http.StatusBadRequest {
		t.Errorf("duplicate register: expected 400, got %d: %s", status, body)
	}

	status, _ = request(t, app, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("bad login: expected 401, got %d", status)
	}

	status, body = request(t, app, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice", "password": "hunter2",
	})
	if status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", status, body)
	}

	status, body = request(t, app, http.MethodGet, "/auth/users", "", nil)
	if status != http.StatusOK {
		t.Fatalf("list users: expected 200, got %d", status)
	}
	if bytes.Contains(body, []byte("hunter2")) || bytes.Contains(body, []byte("PasswordHash")) {
		t.Error("user listing must not leak credentials")
	}
}

func TestAuthRequired(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := request(t, app, http.MethodPost, "/chat/send", "", map[string]string{})
	if status != http.StatusUnauthorized {
		t.Errorf("missing token: expected 401, got %d", status)
	}
	status, _ = request(t, app, http.MethodGet, "/groups/my", "garbage", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", status)
	}
}

func TestDirectMessageFlow(t *testing.T) {
	app, _ := newTestApp(t)
	alice := signUp(t, app, "alice")
	bob := signUp(t, app, "bob")

	status, body := request(t, app, http.MethodPost, "/chat/send", alice.Token, map[string]string{
		"receiver": bob.User.ID, "content": "hi",
	})
	if status != http.StatusCreated {
		t.Fatalf("send: expected 201, got %d: %s", status, body)
	}
	var sent messaging.MessageView
	decode(t, body, &sent)

	status, _ = request(t, app, http.MethodPost, "/chat/send", alice.Token, map[string]string{
		"receiver": bob.User.ID, "content": "   ",
	})
	if status != http.StatusBadRequest {
		t.Errorf("blank send: expected 400, got %d", status)
	}

	status, body = request(t, app, http.MethodGet, "/chat/messages/"+alice.User.ID, bob.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", status)
	}
	var history []messaging.MessageView
	decode(t, body, &history)
	if len(history) != 1 || history[0].Content != "hi" || history[0].Sender.ID != alice.User.ID {
		t.Fatalf("unexpected history: %+v", history)
	}

	// Delete for me: private to bob.
	status, _ = request(t, app, http.MethodPatch, "/chat/delete-for-me/"+sent.ID, bob.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete-for-me: expected 200, got %d", status)
	}
	_, body = request(t, app, http.MethodGet, "/chat/messages/"+alice.User.ID, bob.Token, nil)
	decode(t, body, &history)
	if !history[0].IsDeleted {
		t.Error("bob should see the placeholder")
	}
	_, body = request(t, app, http.MethodGet, "/chat/messages/"+bob.User.ID, alice.Token, nil)
	decode(t, body, &history)
	if history[0].IsDeleted {
		t.Error("alice should still see the content")
	}

	// Delete for everyone: sender only.
	status, _ = request(t, app, http.MethodPatch, "/chat/delete-for-everyone/"+sent.ID, bob.Token, nil)
	if status != http.StatusForbidden {
		t.Errorf("non-sender delete: expected 403, got %d", status)
	}
	status, _ = request(t, app, http.MethodPatch, "/chat/delete-for-everyone/"+sent.ID, alice.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("sender delete: expected 200, got %d", status)
	}
	_, body = request(t, app, http.MethodGet, "/chat/messages/"+bob.User.ID, alice.Token, nil)
	decode(t, body, &history)
	if !history[0].IsDeleted {
		t.Error("after delete-for-everyone the sender sees the placeholder too")
	}

	status, _ = request(t, app, http.MethodPatch, "/chat/delete-for-me/missing", bob.Token, nil)
	if status != http.StatusNotFound {
		t.Errorf("unknown message: expected 404, got %d", status)
	}
}

func TestGroupRoutes(t *testing.T) {
	app, _ := newTestApp(t)
	alice := signUp(t, app, "alice")
	bob := signUp(t, app, "bob")
	carol := signUp(t, app, "carol")

	status, body := request(t, app, http.MethodPost, "/groups/create", alice.Token, map[string]any{
		"name": "plans", "members": []string{bob.User.ID},
	})
	if status != http.StatusCreated {
		t.Fatalf("create group: expected 201, got %d: %s", status, body)
	}
	var group messaging.GroupView
	decode(t, body, &group)
	if group.Admin.ID != alice.User.ID || len(group.Members) != 2 {
		t.Fatalf("unexpected group: %+v", group)
	}

	status, body = request(t, app, http.MethodGet, "/groups/my", bob.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("my groups: expected 200, got %d", status)
	}
	var mine []messaging.GroupView
	decode(t, body, &mine)
	if len(mine) != 1 || mine[0].ID != group.ID {
		t.Fatalf("unexpected group list: %+v", mine)
	}

	status, _ = request(t, app, http.MethodGet, "/groups/"+group.ID, carol.Token, nil)
	if status != http.StatusForbidden {
		t.Errorf("non-member get: expected 403, got %d", status)
	}
	status, _ = request(t, app, http.MethodGet, "/groups/missing", alice.Token, nil)
	if status != http.StatusNotFound {
		t.Errorf("unknown group: expected 404, got %d", status)
	}

	status, body = request(t, app, http.MethodPatch, "/groups/"+group.ID+"/add-members", alice.Token, map[string]any{
		"members": []string{carol.User.ID, bob.User.ID},
	})
	if status != http.StatusOK {
		t.Fatalf("add members: expected 200, got %d: %s", status, body)
	}
	decode(t, body, &group)
	if len(group.Members) != 3 {
		t.Errorf("expected 3 members after deduplicated add, got %d", len(group.Members))
	}

	status, _ = request(t, app, http.MethodPatch, "/groups/"+group.ID+"/add-members", bob.Token, map[string]any{
		"members": []string{carol.User.ID},
	})
	if status != http.StatusForbidden {
		t.Errorf("non-admin add: expected 403, got %d", status)
	}

	status, _ = request(t, app, http.MethodPatch, "/groups/"+group.ID+"/remove-member", alice.Token, map[string]string{
		"memberId": alice.User.ID,
	})
	if status != http.StatusBadRequest {
		t.Errorf("removing admin: expected 400, got %d", status)
	}
	status, _ = request(t, app, http.MethodPatch, "/groups/"+group.ID+"/leave", alice.Token, nil)
	if status != http.StatusBadRequest {
		t.Errorf("admin leave: expected 400, got %d", status)
	}
	status, _ = request(t, app, http.MethodPatch, "/groups/"+group.ID+"/leave", carol.Token, nil)
	if status != http.StatusOK {
		t.Errorf("member leave: expected 200, got %d", status)
	}

	// Group history is member-only and carries the view transform.
	status, _ = request(t, app, http.MethodGet, "/groups/"+group.ID+"/messages", carol.Token, nil)
	if status != http.StatusForbidden {
		t.Errorf("ex-member history: expected 403, got %d", status)
	}
	status, body = request(t, app, http.MethodGet, "/groups/"+group.ID+"/messages", bob.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("member history: expected 200, got %d: %s", status, body)
	}
}

// Both transports must converge on the same stored state and the same visible
// output for the same inputs.
func TestTransportParity(t *testing.T) {
	app, hub := newTestApp(t)
	alice := signUp(t, app, "alice")
	bob := signUp(t, app, "bob")

	// One message over HTTP, one over the websocket dispatch path.
	status, _ := request(t, app, http.MethodPost, "/chat/send", alice.Token, map[string]string{
		"receiver": bob.User.ID, "content": "via http",
	})
	if status != http.StatusCreated {
		t.Fatalf("http send: expected 201, got %d", status)
	}

	client := chat.NewClient("conn-1", alice.User.ID, "alice", parityConn{})
	hub.Connect(client)
	defer hub.Disconnect(client)
	data, _ := json.Marshal(chat.SendMessagePayload{Receiver: bob.User.ID, Content: "via socket"})
	hub.Dispatch(client, chat.Envelope{Event: chat.EventSendMessage, Data: data})

	_, body := request(t, app, http.MethodGet, "/chat/messages/"+alice.User.ID, bob.Token, nil)
	var history []messaging.MessageView
	decode(t, body, &history)
	if len(history) != 2 {
		t.Fatalf("expected both messages in history, got %d", len(history))
	}
	for i, want := range []string{"via http", "via socket"} {
		if history[i].Content != want || history[i].Sender.ID != alice.User.ID || history[i].IsDeleted {
			t.Errorf("message %d: expected %q from alice, got %+v", i, want, history[i])
		}
	}
}

type parityConn struct{}

func (parityConn) ReadMessage() (int, []byte, error) { return 0, nil, io.EOF }
func (parityConn) WriteMessage(int, []byte) error    { return nil }
func (parityConn) Close() error                      { return nil }
