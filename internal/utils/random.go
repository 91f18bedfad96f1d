package utils

import (
	"crypto/rand"
	"math/big"
)

const passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// RandomDigits returns n random decimal digits, used for verification and
// password reset codes.
func RandomDigits(n int) (string, error) {
	return randomFrom("0123456789", n)
}

// RandomPassword returns a system generated password of length n.
func RandomPassword(n int) (string, error) {
	return randomFrom(passwordAlphabet, n)
}

func randomFrom(alphabet string, n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
