// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"encoding/base64"
	"regexp"
)

// minEnvelopeLen is the length a stored value must exceed to count as an
// envelope. The shortest real envelope (IV + tag, no ciphertext) encodes to
// 40 characters.
const minEnvelopeLen = 20

var base64Alphabet = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)

// IsEncrypted reports whether text looks like an envelope produced by
// [Engine.Encrypt]. It is a heuristic over untagged data: every real
// envelope is classified as encrypted, but long plaintext that happens to be
// valid padded Base64 is too. The threshold and alphabet must stay as they
// are to classify already-persisted values the same way.
func IsEncrypted(text string) bool {
	if text == "" {
		return false
	}
	if _, err := base64.StdEncoding.Strict().DecodeString(text); err != nil {
		return false
	}

	return len(text) > minEnvelopeLen && base64Alphabet.MatchString(text)
}
