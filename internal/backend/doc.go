// Package backend is the console's gateway to the lot-ecom REST API.
//
// Every call goes through Client.do, which attaches the bearer header from the
// session's credential source, encodes JSON or multipart bodies, enforces the
// request timeout and decodes the {success, message, error, data} envelope.
//
// A 401 from any endpoint other than /auth/login clears the stored credential
// before returning an error wrapping ErrSessionExpired; callers react by sending
// the browser to the sign-in screen. There is no automatic retry.
package backend
