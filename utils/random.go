package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenerateCode returns an uppercase hex code of n random bytes.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)

	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// GenerateLocalID returns a client-side transaction id. The "local_" prefix
// keeps it distinguishable from remote-assigned record ids, and the random
// suffix keeps two submissions in the same second apart.
func GenerateLocalID() string {
	byt := make([]byte, 4)
	if _, err := rand.Read(byt); err != nil {
		// Timestamp alone still gives a usable id.
		return fmt.Sprintf("local_%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("local_%d_%s", time.Now().Unix(), hex.EncodeToString(byt))
}
