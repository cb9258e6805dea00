package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"math/big"

	"github.com/xlzd/gotp"
)

// Generator produces fixed-width numeric one-time codes.
type Generator interface {
	RandomCode(identity string, digits int) string
}

// GOTPGenerator generates HOTP codes keyed by the identity the code is
// issued for, evaluated at a random counter.
type GOTPGenerator struct{}

func NewGOTPGenerator() *GOTPGenerator {
	return &GOTPGenerator{}
}

func (g *GOTPGenerator) RandomCode(identity string, digits int) string {
	mac := hmac.New(sha256.New, []byte(identity))

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err == nil {
		mac.Write(nonce)
	}

	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(mac.Sum(nil))

	counter, err := rand.Int(rand.Reader, big.NewInt(int64(1)<<31))
	if err != nil {
		counter = big.NewInt(0)
	}

	return gotp.NewHOTP(secret, digits, nil).At(int(counter.Int64()))
}
