package linkedin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-scheduler/domain/publisher"
)

func TestClient_FetchIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/userinfo", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"sub":"abc123","name":"Ada Lovelace"}`))
	}))
	defer srv.Close()

	client := NewClientWithBase(srv.URL, srv.Client())
	identity, err := client.FetchIdentity(context.Background(), "token-1")

	require.NoError(t, err)
	assert.Equal(t, "urn:li:person:abc123", identity.TargetID)
	assert.Equal(t, "Ada Lovelace", identity.DisplayName)
}

func TestClient_ResolveTargetPrefersOrganization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/organizationAcls":
			_, _ = w.Write([]byte(`{"elements":[{"organization":"urn:li:organization:55"}]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClientWithBase(srv.URL, srv.Client())
	target, err := client.ResolveTarget(context.Background(), "token-1")

	require.NoError(t, err)
	assert.Equal(t, "urn:li:organization:55", target)
}

func TestClient_ResolveTargetFallsBackToMember(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/organizationAcls":
			_, _ = w.Write([]byte(`{"elements":[]}`))
		case "/v2/userinfo":
			_, _ = w.Write([]byte(`{"sub":"abc123"}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClientWithBase(srv.URL, srv.Client())
	target, err := client.ResolveTarget(context.Background(), "token-1")

	require.NoError(t, err)
	assert.Equal(t, "urn:li:person:abc123", target)
}

func TestClient_PublishReturnsRestliID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/ugcPosts", r.URL.Path)
		assert.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "urn:li:person:abc123", payload["author"])
		assert.Equal(t, "PUBLISHED", payload["lifecycleState"])

		w.Header().Set("X-RestLi-Id", "urn:li:share:987")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClientWithBase(srv.URL, srv.Client())
	id, err := client.Publish(context.Background(), "token-1", "urn:li:person:abc123", "hello", "")

	require.NoError(t, err)
	assert.Equal(t, "urn:li:share:987", id)
}

func TestClient_PublishWithMediaSetsArticleCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			SpecificContent struct {
				Share struct {
					Category string `json:"shareMediaCategory"`
					Media    []struct {
						OriginalURL string `json:"originalUrl"`
					} `json:"media"`
				} `json:"com.linkedin.ugc.ShareContent"`
			} `json:"specificContent"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "ARTICLE", payload.SpecificContent.Share.Category)
		require.Len(t, payload.SpecificContent.Share.Media, 1)
		assert.Equal(t, "https://example.com/a", payload.SpecificContent.Share.Media[0].OriginalURL)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"urn:li:share:1"}`))
	}))
	defer srv.Close()

	client := NewClientWithBase(srv.URL, srv.Client())
	id, err := client.Publish(context.Background(), "token-1", "urn:li:person:abc123", "read this", "https://example.com/a")

	require.NoError(t, err)
	assert.Equal(t, "urn:li:share:1", id)
}

func TestClient_ClassifiesFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		kind   publisher.Kind
	}{
		{name: "revoked token", status: http.StatusUnauthorized, kind: publisher.KindAuthorization},
		{name: "forbidden", status: http.StatusForbidden, kind: publisher.KindAuthorization},
		{name: "rate limited", status: http.StatusTooManyRequests, kind: publisher.KindTransient},
		{name: "server error", status: http.StatusInternalServerError, kind: publisher.KindTransient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			client := NewClientWithBase(srv.URL, srv.Client())
			_, err := client.Publish(context.Background(), "token-1", "urn:li:person:abc123", "hello", "")

			require.Error(t, err)
			assert.Equal(t, tc.kind, publisher.KindOf(err))
		})
	}
}
