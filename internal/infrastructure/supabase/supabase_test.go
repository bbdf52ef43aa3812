package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ideas-backend/internal/auth"
	"ideas-backend/internal/config"
	"ideas-backend/internal/domain/idea"
	apperrors "ideas-backend/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   []byte
}

// fakeSupabase speaks enough of the PostgREST and GoTrue wire formats for the repositories.
type fakeSupabase struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
	server   *httptest.Server
}

func newFakeSupabase(t *testing.T) *fakeSupabase {
	f := &fakeSupabase{status: http.StatusOK, body: "[]"}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		query := map[string]string{}
		for k, v := range r.URL.Query() {
			query[k] = v[0]
		}

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  query,
			Header: r.Header.Clone(),
			Body:   body,
		})
		status, respBody := f.status, f.body
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSupabase) respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.body = status, body
}

func (f *fakeSupabase) last(t *testing.T) recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *fakeSupabase) factory(t *testing.T) *ClientFactory {
	factory, err := NewClientFactory(config.Supabase{URL: f.server.URL, AnonKey: "anon-key", Schema: "public"})
	require.NoError(t, err)
	return factory
}

func userContext() context.Context {
	return auth.SetUserInContext(context.Background(), &auth.User{ID: "user-1", AccessToken: "user-token"})
}

const topicRow = `{"id":"11111111-1111-1111-1111-111111111111","user_id":"user-1","name":"Work","description":"Work ideas","tags":["go"],"createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-01T10:00:00Z"}`

const ideaRow = `{"id":"22222222-2222-2222-2222-222222222222","user_id":"user-1","name":"CLI","description":"A CLI","tags":[],"rating":3,"feedback":null,"ideaTopicId":"11111111-1111-1111-1111-111111111111","createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-01T10:00:00Z"}`

func TestTopicRepository_List(t *testing.T) {
	fake := newFakeSupabase(t)
	repo := NewTopicRepository(fake.factory(t))

	t.Run("Should scope by user and order newest first", func(t *testing.T) {
		fake.respond(http.StatusOK, "["+topicRow+"]")

		topics, err := repo.List(userContext(), "user-1", idea.ListFilter{})

		require.NoError(t, err)
		require.Len(t, topics, 1)
		assert.Equal(t, "Work", topics[0].Name)

		req := fake.last(t)
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/rest/v1/IdeaTopic", req.Path)
		assert.Equal(t, "eq.user-1", req.Query["user_id"])
		assert.Equal(t, "createdAt.desc.nullslast", req.Query["order"])
		assert.Equal(t, "*", req.Query["select"])
		assert.Equal(t, "Bearer user-token", req.Header.Get("Authorization"))
		assert.Equal(t, "anon-key", req.Header.Get("apikey"))
		assert.NotContains(t, req.Query, "or")
	})

	t.Run("Should match search across name and description", func(t *testing.T) {
		fake.respond(http.StatusOK, "[]")

		topics, err := repo.List(userContext(), "user-1", idea.ListFilter{Search: "side, project"})

		require.NoError(t, err)
		assert.NotNil(t, topics)
		assert.Empty(t, topics)
		assert.Equal(t, `(name.ilike."%side, project%",description.ilike."%side, project%")`, fake.last(t).Query["or"])
	})

	t.Run("Should filter by contained tags", func(t *testing.T) {
		fake.respond(http.StatusOK, "[]")

		_, err := repo.List(userContext(), "user-1", idea.ListFilter{Tags: []string{"go", "cli"}})

		require.NoError(t, err)
		assert.Equal(t, `cs.{"go","cli"}`, fake.last(t).Query["tags"])
	})
}

func TestRepository_ZonelessTimestamps(t *testing.T) {
	const zonelessTopic = `{"id":"11111111-1111-1111-1111-111111111111","user_id":"user-1","name":"Work","description":"Work ideas","tags":[],"createdAt":"2024-05-01T10:00:00.123","updatedAt":"2024-05-01T10:00:00.123"}`
	const zonelessIdea = `{"id":"22222222-2222-2222-2222-222222222222","user_id":"user-1","name":"CLI","description":"A CLI","tags":[],"rating":0,"feedback":null,"ideaTopicId":"11111111-1111-1111-1111-111111111111","createdAt":"2024-05-01T10:00:00","updatedAt":"2024-05-01T10:00:00"}`

	fake := newFakeSupabase(t)
	topics := NewTopicRepository(fake.factory(t))
	ideas := NewIdeaRepository(fake.factory(t))
	ctx := userContext()
	want := time.Date(2024, 5, 1, 10, 0, 0, 123000000, time.UTC)

	t.Run("Should list topics stored without a time zone", func(t *testing.T) {
		fake.respond(http.StatusOK, "["+zonelessTopic+"]")

		rows, err := topics.List(ctx, "user-1", idea.ListFilter{})

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, want.Equal(rows[0].CreatedAt.Time))
	})

	t.Run("Should return the created topic instead of failing after insert", func(t *testing.T) {
		fake.respond(http.StatusCreated, zonelessTopic)

		created, err := topics.Create(ctx, idea.NewTopic("user-1", idea.CreateTopicInput{Name: "Work", Description: "Work ideas"}, time.Now()))

		require.NoError(t, err)
		assert.True(t, want.Equal(created.UpdatedAt.Time))
	})

	t.Run("Should read ideas stored without a time zone", func(t *testing.T) {
		fake.respond(http.StatusOK, zonelessIdea)

		got, err := ideas.Get(ctx, "user-1", "22222222-2222-2222-2222-222222222222")

		require.NoError(t, err)
		assert.True(t, want.Truncate(time.Second).Equal(got.CreatedAt.Time))
	})
}

func TestTopicRepository_Get(t *testing.T) {
	fake := newFakeSupabase(t)
	repo := NewTopicRepository(fake.factory(t))

	t.Run("Should request a single row owned by the user", func(t *testing.T) {
		fake.respond(http.StatusOK, topicRow)

		topic, err := repo.Get(userContext(), "user-1", "11111111-1111-1111-1111-111111111111")

		require.NoError(t, err)
		assert.Equal(t, "user-1", topic.UserID)
		req := fake.last(t)
		assert.Equal(t, "eq.11111111-1111-1111-1111-111111111111", req.Query["id"])
		assert.Equal(t, "eq.user-1", req.Query["user_id"])
		assert.Contains(t, req.Header.Values("Accept"), "application/vnd.pgrst.object+json")
	})

	t.Run("Should map no rows to not found", func(t *testing.T) {
		fake.respond(http.StatusNotAcceptable, `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`)

		_, err := repo.Get(userContext(), "user-1", "11111111-1111-1111-1111-111111111111")

		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestTopicRepository_CreateUpdateDelete(t *testing.T) {
	fake := newFakeSupabase(t)
	repo := NewTopicRepository(fake.factory(t))
	ctx := userContext()

	fake.respond(http.StatusCreated, topicRow)
	topic := idea.NewTopic("user-1", idea.CreateTopicInput{Name: "Work", Description: "Work ideas"}, time.Now())
	created, err := repo.Create(ctx, topic)
	require.NoError(t, err)
	assert.Equal(t, "Work", created.Name)

	req := fake.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Contains(t, req.Header.Get("Prefer"), "return=representation")
	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(req.Body, &sent))
	assert.Equal(t, "user-1", sent["user_id"])
	assert.Equal(t, topic.ID, sent["id"])

	fake.respond(http.StatusOK, topicRow)
	_, err = repo.Update(ctx, "user-1", topic.ID, map[string]interface{}{"name": "Work"})
	require.NoError(t, err)
	req = fake.last(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.JSONEq(t, `{"name":"Work"}`, string(req.Body))
	assert.Equal(t, "eq.user-1", req.Query["user_id"])

	fake.respond(http.StatusNoContent, "")
	require.NoError(t, repo.Delete(ctx, "user-1", topic.ID))
	req = fake.last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "eq."+topic.ID, req.Query["id"])
	assert.Equal(t, "eq.user-1", req.Query["user_id"])
}

func TestIdeaRepository(t *testing.T) {
	fake := newFakeSupabase(t)
	repo := NewIdeaRepository(fake.factory(t))
	ctx := userContext()

	t.Run("Should list ideas of a topic", func(t *testing.T) {
		fake.respond(http.StatusOK, "["+ideaRow+"]")

		ideas, err := repo.ListByTopic(ctx, "user-1", "11111111-1111-1111-1111-111111111111", idea.ListFilter{Search: "cli"})

		require.NoError(t, err)
		require.Len(t, ideas, 1)
		assert.Equal(t, 3, ideas[0].Rating)
		assert.Nil(t, ideas[0].Feedback)
		req := fake.last(t)
		assert.Equal(t, "/rest/v1/Idea", req.Path)
		assert.Equal(t, "eq.11111111-1111-1111-1111-111111111111", req.Query["ideaTopicId"])
		assert.Equal(t, `(name.ilike."%cli%",description.ilike."%cli%")`, req.Query["or"])
	})

	t.Run("Should not filter by topic when listing all ideas", func(t *testing.T) {
		fake.respond(http.StatusOK, "[]")

		_, err := repo.List(ctx, "user-1", idea.ListFilter{})

		require.NoError(t, err)
		assert.NotContains(t, fake.last(t).Query, "ideaTopicId")
	})

	t.Run("Should map a missing topic reference to a validation error", func(t *testing.T) {
		fake.respond(http.StatusConflict, `{"code":"23503","message":"insert or update on table \"Idea\" violates foreign key constraint"}`)

		_, err := repo.Create(ctx, &idea.Idea{ID: "x", UserID: "user-1"})

		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "ideaTopicId", apperrors.GetFields(err)[0].Field)
	})

	t.Run("Should map update of a missing row to not found", func(t *testing.T) {
		fake.respond(http.StatusNotAcceptable, `{"code":"PGRST116","message":"no rows"}`)

		_, err := repo.Update(ctx, "user-1", "missing", map[string]interface{}{"rating": 2})

		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("Should report other failures as database errors", func(t *testing.T) {
		fake.respond(http.StatusInternalServerError, `{"code":"XX000","message":"internal"}`)

		_, err := repo.Get(ctx, "user-1", "x")

		assert.Equal(t, apperrors.ErrorTypeDatabase, apperrors.GetType(err))
	})
}

func TestRepository_BackendUnreachable(t *testing.T) {
	fake := newFakeSupabase(t)
	repo := NewIdeaRepository(fake.factory(t))
	fake.server.Close()

	_, err := repo.List(userContext(), "user-1", idea.ListFilter{})

	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := run(ctx, func() (int, error) { return 1, nil })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Deadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)
	_, err := run(ctx, func() (int, error) {
		<-release
		return 1, nil
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, apperrors.IsTimeout(mapError("select", "Idea", err)))
}

func TestClientFactory_FallsBackToServiceRole(t *testing.T) {
	fake := newFakeSupabase(t)
	factory, err := NewClientFactory(config.Supabase{URL: fake.server.URL, AnonKey: "anon-key", ServiceRoleKey: "service-key"})
	require.NoError(t, err)

	_, err = NewTopicRepository(factory).List(context.Background(), "user-1", idea.ListFilter{})

	require.NoError(t, err)
	assert.Equal(t, "Bearer service-key", fake.last(t).Header.Get("Authorization"))
}

func TestNewClientFactory_RequiresSettings(t *testing.T) {
	_, err := NewClientFactory(config.Supabase{URL: "https://x.supabase.co"})
	assert.Error(t, err)
}
