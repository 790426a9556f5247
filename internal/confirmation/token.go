package confirmation

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/nomenalista/guestlist-backend/internal/event"
)

// codeAlphabet excludes nothing: 26 letters + 10 digits, 36^6 ≈ 2.2e9
// combinations behind the CONF- prefix.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const codeLength = 6

// GenerateToken returns a 32-hex-char opaque token for confirmation links.
func GenerateToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// GenerateCode returns a short code of the form CONF-XXXXXX, suitable for
// reading out over the phone. Stored and compared uppercase.
func GenerateCode() string {
	var b strings.Builder
	b.WriteString("CONF-")
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String()
}

// NormalizeCode prepares user input for comparison against stored codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// UniqueToken generates a token not used by any guest across the whole
// collection. Collisions are vanishingly unlikely at 128 bits but lookups
// are global, so the generator still checks.
func UniqueToken(events []event.Event) string {
	for {
		token := GenerateToken()
		if !tokenInUse(events, token) {
			return token
		}
	}
}

// UniqueCode generates a short code unused across the whole collection.
func UniqueCode(events []event.Event) string {
	for {
		code := GenerateCode()
		if !codeInUse(events, code) {
			return code
		}
	}
}

func tokenInUse(events []event.Event, token string) bool {
	for i := range events {
		for j := range events[i].Guests {
			if events[i].Guests[j].ConfirmationToken == token {
				return true
			}
		}
	}
	return false
}

func codeInUse(events []event.Event, code string) bool {
	for i := range events {
		for j := range events[i].Guests {
			if events[i].Guests[j].ConfirmationCode == code {
				return true
			}
		}
	}
	return false
}
