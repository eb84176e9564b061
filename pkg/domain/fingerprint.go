package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// BankDetailsFingerprint hashes bank details independent of key order and
// surrounding whitespace, so equal payees collide.
func BankDetailsFingerprint(currency string, details map[string]string) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	h.Write([]byte(strings.ToUpper(currency)))
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(details[k]), " ", ""))))
	}
	return hex.EncodeToString(h.Sum(nil))
}
