//go:build integration

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-project-hub/internal/config"
	"go-project-hub/internal/database"
	"go-project-hub/internal/event"
	"go-project-hub/internal/mail"
	"go-project-hub/internal/storage"
	"go-project-hub/internal/throttle"
)

var verifyLink = regexp.MustCompile(`/api/v1/users/verify/([0-9a-f]{40})`)

type outbox struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
	return nil
}

func (o *outbox) last() mail.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.messages[len(o.messages)-1]
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type testClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (c *testClient) do(method string, path string, body any) (int, envelope) {
	c.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&payload).Encode(body))
	}

	req, err := http.NewRequest(method, c.base+path, &payload)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func newTestServer(t *testing.T) (*httptest.Server, *outbox) {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, url, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE activity_entries, project_notes, subtasks, tasks, project_members, projects, users`)
	require.NoError(t, err)

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		RequestTimeout:       10 * time.Second,
		AccessTokenSecret:    "access-secret",
		AccessTokenTTL:       15 * time.Minute,
		RefreshTokenSecret:   "refresh-secret",
		RefreshTokenTTL:      time.Hour,
		VerificationTokenTTL: 20 * time.Minute,
		CookieMaxAge:         24 * time.Hour,
		CORSOrigins:          []string{"*"},
		RateLimitRPM:         1000,
		AuthRateLimitRPM:     1000,
		UploadRoot:           store.RootAbs(),
		MaxAvatarSize:        1 << 20,
		MaxAttachmentSize:    1 << 20,
	}

	mails := &outbox{}
	h, recorder, err := newHandler(cfg, dependencies{
		pool:    db.Pool,
		files:   store,
		mailer:  mails,
		limiter: throttle.NewMemoryLimiter(),
		bus:     event.NewBus(),
	}, db)
	require.NoError(t, err)

	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	t.Cleanup(stopRecorder)
	go recorder.Run(recorderCtx)

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return server, mails
}

func TestEndToEndProjectFlow(t *testing.T) {
	server, mails := newTestServer(t)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &testClient{t: t, base: server.URL, client: &http.Client{Jar: jar}}

	status, env := c.do(http.MethodPost, "/api/v1/users/register", map[string]string{
		"email": "alice@example.com", "username": "alice", "password": "secret-pass",
	})
	require.Equal(t, http.StatusCreated, status)

	match := verifyLink.FindStringSubmatch(mails.last().Text)
	require.Len(t, match, 2)

	status, _ = c.do(http.MethodGet, "/api/v1/users/verify/"+match[1], nil)
	require.Equal(t, http.StatusOK, status)

	status, env = c.do(http.MethodGet, "/api/v1/users/verify/"+match[1], nil)
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", env.Error.Code)

	status, _ = c.do(http.MethodPost, "/api/v1/users/login", map[string]string{
		"email": "alice@example.com", "password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, status)

	status, env = c.do(http.MethodGet, "/api/v1/users/current-user", nil)
	require.Equal(t, http.StatusOK, status)

	status, env = c.do(http.MethodPost, "/api/v1/projects", map[string]string{"name": "Apollo"})
	require.Equal(t, http.StatusCreated, status)
	var project struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &project))

	status, _ = c.do(http.MethodPost, "/api/v1/projects", map[string]string{"name": "Apollo"})
	assert.Equal(t, http.StatusConflict, status)

	var me struct {
		ID string `json:"id"`
	}
	_, env = c.do(http.MethodGet, "/api/v1/users/current-user", nil)
	require.NoError(t, json.Unmarshal(env.Data, &me))

	status, _ = c.do(http.MethodPost, "/api/v1/projects/"+project.ID+"/tasks", map[string]string{
		"title": "Launch", "assignedTo": me.ID,
	})
	require.Equal(t, http.StatusCreated, status)

	require.Eventually(t, func() bool {
		_, env := c.do(http.MethodGet, "/api/v1/projects/"+project.ID+"/activity", nil)
		var data struct {
			Items []struct {
				Action string `json:"action"`
			} `json:"items"`
		}
		if json.Unmarshal(env.Data, &data) != nil {
			return false
		}
		return len(data.Items) >= 2
	}, 5*time.Second, 50*time.Millisecond)

	status, _ = c.do(http.MethodPost, "/api/v1/users/refresh-token", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = c.do(http.MethodPost, "/api/v1/users/logout", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = c.do(http.MethodGet, "/api/v1/users/current-user", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
