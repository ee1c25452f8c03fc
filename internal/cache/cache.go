// Package cache stores rendered reports keyed by document content.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/taxlens/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives a report key from everything that changes the analysis.
// The tax and account types are normalized so "Income" and "income " share a
// key. analyzed is part of the key because re-uploads raise a red flag.
func CacheKey(fileID, text, taxType, accountType string, analyzed bool) string {
	h := sha256.New()
	for _, part := range []string{
		fileID,
		text,
		model.ParseTaxType(taxType).String(),
		model.ParseAccountType(accountType).String(),
		strconv.FormatBool(analyzed),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "taxlens:v1:" + hex.EncodeToString(h.Sum(nil))
}

// IsKey reports whether s looks like a key produced by CacheKey
func IsKey(s string) bool {
	return strings.HasPrefix(s, "taxlens:v1:") && len(s) == len("taxlens:v1:")+sha256.Size*2
}
