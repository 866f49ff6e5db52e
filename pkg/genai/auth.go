package genai

import (
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

// authMode is how a request authenticates.
type authMode int

const (
	// authForcedAPIKey: a grounding tool is active and the remote API
	// requires a key credential; OAuth cannot satisfy it.
	authForcedAPIKey authMode = iota

	// authUserAPIKey: the caller supplied a key to this client.
	authUserAPIKey

	// authOAuthBearer: a bearer token from the injected token source.
	authOAuthBearer
)

// authDecision is computed per request and never cached: the tool set
// and key state can change between calls. A key decision is transmitted
// as a URL query credential, a bearer decision as an Authorization
// header; never both.
type authDecision struct {
	mode   authMode
	apiKey string
	bearer string
}

// resolveAuth picks the authentication mode for a single request. The
// rules form an ordered precedence list evaluated top to bottom:
//
//  1. Web-search grounding enabled: an API key is mandatory regardless
//     of any other credential; absence fails.
//  2. A caller-supplied key: use it.
//  3. Otherwise ask the token source for a bearer token; failure or
//     absence of the source fails.
func resolveAuth(b *PromptBuilder, apiKey string, source oauth2.TokenSource) (authDecision, error) {
	if b.hasTool(ToolWebSearch) {
		if apiKey == "" {
			return authDecision{}, &MissingCredentialError{Reason: "web-search grounding requires an API key"}
		}
		return authDecision{mode: authForcedAPIKey, apiKey: apiKey}, nil
	}

	if apiKey != "" {
		return authDecision{mode: authUserAPIKey, apiKey: apiKey}, nil
	}

	if source == nil {
		return authDecision{}, &MissingCredentialError{Reason: "no API key and no token source configured"}
	}
	token, err := source.Token()
	if err != nil {
		return authDecision{}, &MissingCredentialError{Reason: "token source failed: " + err.Error()}
	}
	if token == nil || token.AccessToken == "" {
		return authDecision{}, &MissingCredentialError{Reason: "token source returned an empty token"}
	}
	return authDecision{mode: authOAuthBearer, bearer: token.AccessToken}, nil
}

// applyTo attaches the credential to the endpoint URL or header set.
func (d authDecision) applyTo(endpoint string, header http.Header) (string, error) {
	switch d.mode {
	case authForcedAPIKey, authUserAPIKey:
		u, err := url.Parse(endpoint)
		if err != nil {
			return "", err
		}
		q := u.Query()
		q.Set("key", d.apiKey)
		u.RawQuery = q.Encode()
		return u.String(), nil
	case authOAuthBearer:
		header.Set("Authorization", "Bearer "+d.bearer)
	}
	return endpoint, nil
}
