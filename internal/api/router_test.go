package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avelks/todo-api-be/internal/api"
	"github.com/avelks/todo-api-be/internal/auth"
	"github.com/avelks/todo-api-be/internal/database"
	"github.com/avelks/todo-api-be/internal/services"
	"github.com/avelks/todo-api-be/internal/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	tokens := auth.NewTokenService("test-secret", time.Hour)

	hub := websocket.NewHub()
	go hub.Run()

	userService := services.NewUserService(db)
	todoService := services.NewTodoService(db)
	eventService := services.NewEventService(db, hub)

	router := api.NewRouter(tokens, hub, userService, todoService, eventService,
		"http://localhost:3000", 15*time.Second)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// do sends a JSON request and decodes the JSON response body, if any.
func do(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(bytes.TrimSpace(raw)) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

func register(t *testing.T, srv *httptest.Server, username, email, password string) string {
	t.Helper()
	code, body := do(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username, "email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "success", body["status"])
	return body["user_id"].(string)
}

func login(t *testing.T, srv *httptest.Server, email, password string) string {
	t.Helper()
	code, body := do(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, code)
	return body["token"].(string)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, srv, http.MethodGet, "/api/v1/healthcheck", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body["status"])
}

func TestRegisterLoginFlow(t *testing.T) {
	srv := newTestServer(t)

	userID := register(t, srv, "alice", "alice@example.com", "s3cret")
	require.NotEmpty(t, userID)

	token := login(t, srv, "alice@example.com", "s3cret")
	require.NotEmpty(t, token)

	// Wrong password: generic 401.
	code, body := do(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "nope",
	})
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "fail", body["status"])

	// Unknown email: same generic 401.
	code, _ = do(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ghost@example.com", "password": "nope",
	})
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)

	register(t, srv, "bob", "bob@example.com", "pw")

	code, body := do(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "bobby", "email": "bob@example.com", "password": "pw2",
	})
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "fail", body["status"])
}

func TestTodosRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	code, _ := do(t, srv, http.MethodGet, "/api/v1/todos", "", nil)
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, srv, http.MethodPost, "/api/v1/todos", "garbage-token", map[string]string{"title": "x"})
	require.Equal(t, http.StatusUnauthorized, code)

	// A valid token smuggled through the query string must not work on
	// REST routes; only the websocket endpoint accepts that channel.
	register(t, srv, "mallory", "mallory@example.com", "pw")
	token := login(t, srv, "mallory@example.com", "pw")
	code, _ = do(t, srv, http.MethodGet, "/api/v1/todos?token="+token, "", nil)
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestTodoCRUD(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "carol", "carol@example.com", "pw")
	token := login(t, srv, "carol@example.com", "pw")

	// Create: is_completed defaults to false, timestamps are present.
	code, body := do(t, srv, http.MethodPost, "/api/v1/todos", token, map[string]interface{}{
		"title": "buy milk", "description": "two liters",
	})
	require.Equal(t, http.StatusOK, code)
	todo := body["data"].(map[string]interface{})["todo"].(map[string]interface{})
	require.Equal(t, "buy milk", todo["title"])
	require.Equal(t, false, todo["is_completed"])
	require.NotEmpty(t, todo["created_at"])
	require.NotEmpty(t, todo["updated_at"])
	todoID := todo["id"].(string)

	// Get it back: identical content.
	code, body = do(t, srv, http.MethodGet, "/api/v1/todos/"+todoID, token, nil)
	require.Equal(t, http.StatusOK, code)
	got := body["data"].(map[string]interface{})["todo"].(map[string]interface{})
	require.Equal(t, "buy milk", got["title"])
	require.Equal(t, "two liters", got["description"])

	// Partial patch: only the completion flag flips.
	code, body = do(t, srv, http.MethodPatch, "/api/v1/todos/"+todoID, token, map[string]interface{}{
		"is_completed": true,
	})
	require.Equal(t, http.StatusOK, code)
	patched := body["data"].(map[string]interface{})["todo"].(map[string]interface{})
	require.Equal(t, true, patched["is_completed"])
	require.Equal(t, "buy milk", patched["title"])
	require.Equal(t, "two liters", patched["description"])

	// List contains it.
	code, body = do(t, srv, http.MethodGet, "/api/v1/todos?page=1&limit=10", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, float64(1), body["count"])

	// Delete twice: 200 then 404.
	code, _ = do(t, srv, http.MethodDelete, "/api/v1/todos/"+todoID, token, nil)
	require.Equal(t, http.StatusOK, code)
	code, body = do(t, srv, http.MethodDelete, "/api/v1/todos/"+todoID, token, nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "fail", body["status"])
}

func TestTodoOwnerScopingOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "owner", "owner@example.com", "pw")
	register(t, srv, "intruder", "intruder@example.com", "pw")
	ownerToken := login(t, srv, "owner@example.com", "pw")
	intruderToken := login(t, srv, "intruder@example.com", "pw")

	code, body := do(t, srv, http.MethodPost, "/api/v1/todos", ownerToken, map[string]string{"title": "private"})
	require.Equal(t, http.StatusOK, code)
	todoID := body["data"].(map[string]interface{})["todo"].(map[string]interface{})["id"].(string)

	// Another user's requests must look like a nonexistent id.
	code, _ = do(t, srv, http.MethodGet, "/api/v1/todos/"+todoID, intruderToken, nil)
	require.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, srv, http.MethodPatch, "/api/v1/todos/"+todoID, intruderToken, map[string]string{"title": "mine now"})
	require.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, srv, http.MethodDelete, "/api/v1/todos/"+todoID, intruderToken, nil)
	require.Equal(t, http.StatusNotFound, code)

	// And their listing stays empty.
	code, body = do(t, srv, http.MethodGet, "/api/v1/todos", intruderToken, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, float64(0), body["count"])
}

func TestEventsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "dora", "dora@example.com", "pw")
	token := login(t, srv, "dora@example.com", "pw")

	code, body := do(t, srv, http.MethodPost, "/api/v1/todos", token, map[string]string{"title": "log me"})
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, srv, http.MethodGet, "/api/v1/events?limit=10", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "success", body["status"])

	types := map[string]bool{}
	for _, raw := range body["events"].([]interface{}) {
		event := raw.(map[string]interface{})
		types[event["type"].(string)] = true
	}
	require.True(t, types["user.register"])
	require.True(t, types["user.login"])
	require.True(t, types["todo.create"])

	// Events are private.
	code, _ = do(t, srv, http.MethodGet, "/api/v1/events", "", nil)
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestCreateTodoValidation(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "eve", "eve@example.com", "pw")
	token := login(t, srv, "eve@example.com", "pw")

	code, body := do(t, srv, http.MethodPost, "/api/v1/todos", token, map[string]string{"description": "no title"})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "fail", body["status"])
}
