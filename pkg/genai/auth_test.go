package genai

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type staticTokenSource struct {
	token *oauth2.Token
	err   error
}

func (s staticTokenSource) Token() (*oauth2.Token, error) {
	return s.token, s.err
}

func TestResolveAuth_GroundingRequiresKey(t *testing.T) {
	b := NewPromptBuilder(nil).SetTool(ToolWebSearch, true)

	// With a key: forced API key, even when a token source exists.
	source := staticTokenSource{token: &oauth2.Token{AccessToken: "tok"}}
	decision, err := resolveAuth(b, "my-key", source)
	require.NoError(t, err)
	assert.Equal(t, authForcedAPIKey, decision.mode)
	assert.Equal(t, "my-key", decision.apiKey)

	// Without a key: fails regardless of OAuth availability. Grounding
	// never resolves to a bearer token.
	_, err = resolveAuth(b, "", source)
	var mc *MissingCredentialError
	require.ErrorAs(t, err, &mc)
}

func TestResolveAuth_UserKeyPrecedesOAuth(t *testing.T) {
	b := NewPromptBuilder(nil)
	source := staticTokenSource{token: &oauth2.Token{AccessToken: "tok"}}

	decision, err := resolveAuth(b, "my-key", source)
	require.NoError(t, err)
	assert.Equal(t, authUserAPIKey, decision.mode)
}

func TestResolveAuth_OAuthFallback(t *testing.T) {
	b := NewPromptBuilder(nil)

	decision, err := resolveAuth(b, "", staticTokenSource{token: &oauth2.Token{AccessToken: "tok"}})
	require.NoError(t, err)
	assert.Equal(t, authOAuthBearer, decision.mode)
	assert.Equal(t, "tok", decision.bearer)
}

func TestResolveAuth_NoCredentialPath(t *testing.T) {
	b := NewPromptBuilder(nil)

	var mc *MissingCredentialError

	_, err := resolveAuth(b, "", nil)
	require.ErrorAs(t, err, &mc)

	_, err = resolveAuth(b, "", staticTokenSource{err: errors.New("token endpoint down")})
	require.ErrorAs(t, err, &mc)

	_, err = resolveAuth(b, "", staticTokenSource{token: &oauth2.Token{}})
	require.ErrorAs(t, err, &mc)
}

func TestAuthDecision_ApplyTo(t *testing.T) {
	header := make(http.Header)
	endpoint, err := authDecision{mode: authUserAPIKey, apiKey: "k1"}.
		applyTo("https://example.com/v1beta/models/m:generateContent", header)
	require.NoError(t, err)
	assert.Contains(t, endpoint, "key=k1")
	assert.Empty(t, header.Get("Authorization"))

	header = make(http.Header)
	endpoint, err = authDecision{mode: authOAuthBearer, bearer: "tok"}.
		applyTo("https://example.com/v1beta/models/m:generateContent", header)
	require.NoError(t, err)
	assert.NotContains(t, endpoint, "key=")
	assert.Equal(t, "Bearer tok", header.Get("Authorization"))
}
