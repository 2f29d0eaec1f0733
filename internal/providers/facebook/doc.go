// Package facebook implements the Facebook OAuth2 authentication provider.
//
// Components, leaves first:
//   - APIClient: signed GET requests against the Graph API (appsecret_proof).
//   - TokenEndpoint: application token (client_credentials), debug_token
//     validation and long-lived token exchange (fb_exchange_token).
//   - Provider: validates a submitted user access token, enforces required
//     scopes, finds or creates the local account and refreshes its credential.
//   - AuthorizationFlow: provisions a profile from /me on first authentication.
//
// Every collaborator is safe for concurrent use. The user access token is a
// parameter of each Graph call, never shared state.
package facebook
