package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/goliatone/go-errors"
)

// jti length in bytes, hex encoded on the wire
const tokenIDSize = 24

// RandomToken returns size random bytes hex encoded. It backs jti generation
// and password reset tokens.
func RandomToken(size int) (string, error) {
	if size <= 0 {
		size = 32
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate random token")
	}
	return hex.EncodeToString(buf), nil
}

// RandomOTP returns a 6 digit one-time code for email verification.
func RandomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate otp")
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func newTokenID() (string, error) {
	return RandomToken(tokenIDSize)
}
