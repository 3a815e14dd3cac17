package auth

import (
	"fmt"
	"math/rand"

	"github.com/schoolhub/backend/internal/app/models"
)

const (
	tempPasswordLength   = 8
	tempPasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateTempPassword builds an 8-character alphanumeric temporary
// password. math/rand matches the issuing policy this replaces; it is
// isolated here so the source can be swapped in one place.
func GenerateTempPassword() string {
	buf := make([]byte, tempPasswordLength)
	for i := range buf {
		buf[i] = tempPasswordAlphabet[rand.Intn(len(tempPasswordAlphabet))]
	}
	return string(buf)
}

// GenerateUserIDCandidate builds a user ID candidate from the role prefix
// and a random 4-digit suffix, e.g. "TEA4821". Uniqueness is the caller's
// concern.
func GenerateUserIDCandidate(role models.Role) string {
	return fmt.Sprintf("%s%d", role.Prefix(), rand.Intn(9000)+1000)
}
