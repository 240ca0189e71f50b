package usecase_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"social-scheduler/domain/model"
	"social-scheduler/domain/publisher"
	"social-scheduler/usecase"
)

const testSecretKey = "test-secret-key"

// fakeTokenServer stands in for the platform token endpoint during the
// authorization-code exchange.
func fakeTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"exchanged-token","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func oauthConfigs(tokenURL string) map[model.Platform]*oauth2.Config {
	return map[model.Platform]*oauth2.Config{
		model.PlatformLinkedIn: {
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost:10020/oauth/linkedin/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://example.com/authorize",
				TokenURL: tokenURL,
			},
		},
	}
}

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestConnectUsecase_BeginRequiresOwner(t *testing.T) {
	uc := usecase.NewConnectUsecase(new(MockCredentialRepo), publisher.Registry{}, oauthConfigs("http://unused"), testSecretKey)

	_, err := uc.BeginConnect(context.Background(), model.PlatformLinkedIn, "")

	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "owner", vErr.Field)
}

func TestConnectUsecase_BeginUnconfiguredPlatform(t *testing.T) {
	uc := usecase.NewConnectUsecase(new(MockCredentialRepo), publisher.Registry{}, oauthConfigs("http://unused"), testSecretKey)

	_, err := uc.BeginConnect(context.Background(), model.PlatformTwitter, "owner-1")

	var cErr *model.ConnectionError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "configuration", cErr.Step)
}

func TestConnectUsecase_CallbackPersistsOwnerFromState(t *testing.T) {
	srv := fakeTokenServer(t)
	credRepo := new(MockCredentialRepo)
	adapter := new(MockPublisher)
	registry := publisher.Registry{model.PlatformLinkedIn: adapter}
	uc := usecase.NewConnectUsecase(credRepo, registry, oauthConfigs(srv.URL), testSecretKey)

	authURL, err := uc.BeginConnect(context.Background(), model.PlatformLinkedIn, "owner-42")
	require.NoError(t, err)
	state := stateFrom(t, authURL)

	adapter.On("FetchIdentity", mock.Anything, "exchanged-token").
		Return(&publisher.Identity{TargetID: "urn:li:person:abc", DisplayName: "Ada"}, nil).Once()
	credRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(cred *model.SocialCredential) bool {
		return cred.OwnerID == "owner-42" &&
			cred.Platform == model.PlatformLinkedIn &&
			cred.AccessToken == "exchanged-token" &&
			cred.ExpiresAt.After(time.Now())
	})).Return(nil).Once()

	cred, err := uc.CompleteConnect(context.Background(), model.PlatformLinkedIn, "auth-code", state)

	require.NoError(t, err)
	// The owner comes from the signed state, never from a default.
	assert.Equal(t, "owner-42", cred.OwnerID)
	assert.JSONEq(t, `{"target_id":"urn:li:person:abc","display_name":"Ada"}`, string(cred.Metadata))
	credRepo.AssertExpectations(t)
	adapter.AssertExpectations(t)
}

func TestConnectUsecase_CallbackRejectsTamperedState(t *testing.T) {
	srv := fakeTokenServer(t)
	credRepo := new(MockCredentialRepo)
	uc := usecase.NewConnectUsecase(credRepo, publisher.Registry{}, oauthConfigs(srv.URL), testSecretKey)

	authURL, err := uc.BeginConnect(context.Background(), model.PlatformLinkedIn, "owner-42")
	require.NoError(t, err)
	state := stateFrom(t, authURL)

	_, err = uc.CompleteConnect(context.Background(), model.PlatformLinkedIn, "auth-code", state+"x")

	var cErr *model.ConnectionError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "state", cErr.Step)
	credRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestConnectUsecase_CallbackRejectsForeignSignature(t *testing.T) {
	srv := fakeTokenServer(t)
	uc := usecase.NewConnectUsecase(new(MockCredentialRepo), publisher.Registry{}, oauthConfigs(srv.URL), testSecretKey)
	other := usecase.NewConnectUsecase(new(MockCredentialRepo), publisher.Registry{}, oauthConfigs(srv.URL), "different-secret")

	authURL, err := other.BeginConnect(context.Background(), model.PlatformLinkedIn, "owner-42")
	require.NoError(t, err)

	_, err = uc.CompleteConnect(context.Background(), model.PlatformLinkedIn, "auth-code", stateFrom(t, authURL))

	var cErr *model.ConnectionError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "state", cErr.Step)
}

func TestConnectUsecase_IdentityFailureLeavesNoCredential(t *testing.T) {
	srv := fakeTokenServer(t)
	credRepo := new(MockCredentialRepo)
	adapter := new(MockPublisher)
	registry := publisher.Registry{model.PlatformLinkedIn: adapter}
	uc := usecase.NewConnectUsecase(credRepo, registry, oauthConfigs(srv.URL), testSecretKey)

	authURL, err := uc.BeginConnect(context.Background(), model.PlatformLinkedIn, "owner-42")
	require.NoError(t, err)

	adapter.On("FetchIdentity", mock.Anything, "exchanged-token").
		Return(nil, publisher.NewError(model.PlatformLinkedIn, publisher.KindAuthorization, "status 401", nil)).Once()

	_, err = uc.CompleteConnect(context.Background(), model.PlatformLinkedIn, "auth-code", stateFrom(t, authURL))

	var cErr *model.ConnectionError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "identity", cErr.Step)
	// All-or-nothing: nothing reaches storage when any step fails.
	credRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}
