package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"social-scheduler/domain/model"
	"social-scheduler/domain/publisher"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/logger"
)

const connectStateTTL = 10 * time.Minute

// IConnectUsecase drives the OAuth connection lifecycle for one operator.
type IConnectUsecase interface {
	// BeginConnect builds the platform authorization URL. The owner identity
	// is carried through the redirect round trip in a signed state parameter;
	// there is no fallback owner.
	BeginConnect(ctx context.Context, platform model.Platform, ownerID string) (string, error)
	// CompleteConnect exchanges the authorization code, fetches the platform
	// identity and upserts the credential. No partial credential is persisted
	// on any step failure.
	CompleteConnect(ctx context.Context, platform model.Platform, code, state string) (*model.SocialCredential, error)
	ListAccounts(ctx context.Context, ownerID string) ([]*model.SocialCredential, error)
	Disconnect(ctx context.Context, credentialID int64, ownerID string) error
}

type connectUsecase struct {
	credRepo  repository.ICredential
	adapters  publisher.Registry
	oauth     map[model.Platform]*oauth2.Config
	secretKey string
}

func NewConnectUsecase(
	credRepo repository.ICredential,
	adapters publisher.Registry,
	oauthConfigs map[model.Platform]*oauth2.Config,
	secretKey string,
) IConnectUsecase {
	return &connectUsecase{
		credRepo:  credRepo,
		adapters:  adapters,
		oauth:     oauthConfigs,
		secretKey: secretKey,
	}
}

// connectStateClaims binds the callback to the operator who started the flow.
type connectStateClaims struct {
	Platform string `json:"platform"`
	jwt.StandardClaims
}

func (u *connectUsecase) BeginConnect(ctx context.Context, platform model.Platform, ownerID string) (string, error) {
	if ownerID == "" {
		return "", &model.ValidationError{Field: "owner", Reason: "connect requires an authenticated owner identity"}
	}
	cfg, ok := u.oauth[platform]
	if !ok || cfg.ClientID == "" {
		return "", &model.ConnectionError{Platform: platform, Step: "configuration", Err: errors.New("oauth client not configured")}
	}
	state, err := u.signState(platform, ownerID)
	if err != nil {
		return "", &model.ConnectionError{Platform: platform, Step: "state", Err: err}
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

func (u *connectUsecase) CompleteConnect(ctx context.Context, platform model.Platform, code, state string) (*model.SocialCredential, error) {
	cfg, ok := u.oauth[platform]
	if !ok || cfg.ClientID == "" {
		return nil, &model.ConnectionError{Platform: platform, Step: "configuration", Err: errors.New("oauth client not configured")}
	}
	ownerID, err := u.verifyState(platform, state)
	if err != nil {
		return nil, &model.ConnectionError{Platform: platform, Step: "state", Err: err}
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, &model.ConnectionError{Platform: platform, Step: "exchange", Err: err}
	}
	accessToken := tok.AccessToken
	expiresAt := tok.Expiry.UTC()
	if tok.Expiry.IsZero() {
		expiresAt = time.Now().Add(time.Hour).UTC()
	}

	adapter := u.adapters.Get(platform)
	if adapter == nil {
		return nil, &model.ConnectionError{Platform: platform, Step: "adapter", Err: errors.New("no adapter registered")}
	}
	// Some platforms post with a different token than the exchange yields
	// (Facebook page tokens); let the adapter swap it before we persist.
	if upgrader, ok := adapter.(publisher.TokenUpgrader); ok {
		upgraded, exp, err := upgrader.UpgradeToken(ctx, accessToken)
		if err != nil {
			return nil, &model.ConnectionError{Platform: platform, Step: "token upgrade", Err: err}
		}
		accessToken = upgraded
		expiresAt = exp.UTC()
	}

	identity, err := adapter.FetchIdentity(ctx, accessToken)
	if err != nil {
		return nil, &model.ConnectionError{Platform: platform, Step: "identity", Err: err}
	}
	metadata, err := json.Marshal(identity)
	if err != nil {
		return nil, &model.ConnectionError{Platform: platform, Step: "identity", Err: err}
	}

	cred := &model.SocialCredential{
		OwnerID:     ownerID,
		Platform:    platform,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		Metadata:    metadata,
	}
	if err := u.credRepo.Upsert(ctx, cred); err != nil {
		return nil, &model.ConnectionError{Platform: platform, Step: "persist", Err: err}
	}
	logger.GetLogger().
		WithField("platform", platform).
		WithField("owner_id", ownerID).
		WithField("target_id", identity.TargetID).
		Info("platform connected")
	return cred, nil
}

func (u *connectUsecase) ListAccounts(ctx context.Context, ownerID string) ([]*model.SocialCredential, error) {
	return u.credRepo.ListByOwner(ctx, ownerID)
}

func (u *connectUsecase) Disconnect(ctx context.Context, credentialID int64, ownerID string) error {
	return u.credRepo.Delete(ctx, credentialID, ownerID)
}

func (u *connectUsecase) signState(platform model.Platform, ownerID string) (string, error) {
	now := time.Now()
	claims := connectStateClaims{
		Platform: string(platform),
		StandardClaims: jwt.StandardClaims{
			Subject:   ownerID,
			Id:        uuid.NewString(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(connectStateTTL).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(u.secretKey))
}

func (u *connectUsecase) verifyState(platform model.Platform, state string) (string, error) {
	var claims connectStateClaims
	token, err := jwt.ParseWithClaims(state, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(u.secretKey), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired state")
	}
	if claims.Platform != string(platform) {
		return "", errors.New("state issued for a different platform")
	}
	if claims.Subject == "" {
		return "", errors.New("state carries no owner identity")
	}
	return claims.Subject, nil
}
