// Package google provides OAuth2 authentication for the Google
// Calendar provider.
//
// It builds authorization URLs that request offline access with forced
// re-consent (so a refresh token is issued even for a previously
// consented user), exchanges authorization codes for credentials,
// resolves the account identity behind a credential, and manages the
// short-lived anti-forgery state tokens used during the flow.
package google
