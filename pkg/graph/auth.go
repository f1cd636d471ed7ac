package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultScope is the Graph OAuth scope requesting all statically
// consented application permissions.
const DefaultScope = "https://graph.microsoft.com/.default"

// CredentialConfig describes how to authenticate against the tenant.
type CredentialConfig struct {
	// TenantID is the directory (tenant) identifier.
	TenantID string

	// ClientID is the application (client) identifier.
	ClientID string

	// AuthMethod selects the flow: "device_code" or "client_secret".
	AuthMethod string

	// ClientSecret is required for the client_secret flow.
	ClientSecret string
}

// NewCredential builds an azcore token credential for the configured flow.
// The device-code flow prints the verification URL and one-time code to
// stdout and blocks until the operator completes login.
func NewCredential(cfg CredentialConfig) (azcore.TokenCredential, error) {
	switch cfg.AuthMethod {
	case "client_secret":
		return azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	case "device_code", "":
		return azidentity.NewDeviceCodeCredential(&azidentity.DeviceCodeCredentialOptions{
			TenantID: cfg.TenantID,
			ClientID: cfg.ClientID,
			UserPrompt: func(ctx context.Context, msg azidentity.DeviceCodeMessage) error {
				fmt.Println(msg.Message)
				return nil
			},
		})
	default:
		return nil, fmt.Errorf("unknown auth method %q", cfg.AuthMethod)
	}
}

// credentialTokenSource adapts an azcore credential to the TokenSource
// interface. The SDK caches tokens and refreshes them before expiry, so
// requesting a token per call is cheap and keeps long runs authenticated.
type credentialTokenSource struct {
	cred   azcore.TokenCredential
	scopes []string
}

// NewCredentialTokenSource wraps a credential as a TokenSource. If no
// scopes are given, DefaultScope is requested.
func NewCredentialTokenSource(cred azcore.TokenCredential, scopes ...string) TokenSource {
	if len(scopes) == 0 {
		scopes = []string{DefaultScope}
	}
	return &credentialTokenSource{cred: cred, scopes: scopes}
}

// Token implements TokenSource.
func (s *credentialTokenSource) Token(ctx context.Context) (string, error) {
	token, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: s.scopes})
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return token.Token, nil
}

// TenantIDFromToken extracts the tenant identifier ("tid" claim) from a
// bearer token, for logging which tenant a run is about to touch.
//
// The token signature is deliberately not verified: the token was just
// received from the identity platform we are about to call, and we only
// read a claim from it. This is not safe for authenticating incoming
// requests.
func TenantIDFromToken(token string) (string, error) {
	parser := new(jwt.Parser)
	claims := jwt.MapClaims{}
	_, _, err := parser.ParseUnverified(token, claims)
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	tid, ok := claims["tid"].(string)
	if !ok {
		return "", errors.New("could not find 'tid' claim in token")
	}
	return tid, nil
}
