// Package token implements the signed streaming descriptor: a short-lived
// HMAC-SHA256 grant binding a media id, an expiry instant and the requesting
// client address.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
)

var (
	// ErrInvalidDescriptor means a required descriptor field is missing or
	// unparseable.
	ErrInvalidDescriptor = errors.New("invalid streaming descriptor")
	// ErrExpired means the descriptor is past its validity window.
	ErrExpired = errors.New("streaming descriptor expired")
	// ErrForbidden means the presented signature does not match.
	ErrForbidden = errors.New("streaming descriptor signature mismatch")
)

// Sign computes the lowercase-hex HMAC-SHA256 digest over the separator-free
// concatenation mediaID + expiry + clientAddr. Field order and encoding are
// part of the wire format and must not change: outstanding URLs were signed
// this way. The concatenation carries no delimiter for the same reason; media
// ids are fixed-length, which keeps the encoding unambiguous in practice.
func Sign(secret []byte, mediaID string, expiry int64, clientAddr string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(mediaID))
	mac.Write([]byte(strconv.FormatInt(expiry, 10)))
	mac.Write([]byte(clientAddr))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a presented descriptor. Validation order is fixed: field
// presence, then expiry, then signature. A descriptor presented at exactly
// its expiry second is still valid.
func Verify(secret []byte, mediaID, exp, sig, clientAddr string, now int64) error {
	if exp == "" || sig == "" || clientAddr == "" {
		return ErrInvalidDescriptor
	}

	expiry, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return ErrInvalidDescriptor
	}

	if expiry < now {
		return ErrExpired
	}

	expected := Sign(secret, mediaID, expiry, clientAddr)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrForbidden
	}

	return nil
}
