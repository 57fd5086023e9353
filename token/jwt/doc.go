// Package jwt reads identity claims out of session tokens and mints tokens
// for the development backend.
//
// The Decoder does not verify signatures. The dashboard uses the decoded
// role only to pick screens and menus; the backend re-validates the token on
// every request it serves, and that is where authorization happens.
package jwt
