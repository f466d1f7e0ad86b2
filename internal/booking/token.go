package booking

import (
    "crypto/rand"
    "encoding/hex"
)

// LookupTokenLen is the length of a lookup token in characters.
const LookupTokenLen = 64

// NewLookupToken returns a 64 character hex token used for guest
// self-service lookup and cancellation.  Tokens come from crypto/rand
// so they cannot be derived from the reservation id or guessed
// sequentially.
func NewLookupToken() (string, error) {
    b := make([]byte, 32)
    if _, err := rand.Read(b); err != nil {
        return "", err
    }
    return hex.EncodeToString(b), nil
}
