package helpers

import (
	"crypto/rand"
	"math/big"
)

// ConfirmationAlphabet is the character set of email confirmation codes.
const ConfirmationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ConfirmationCodeLength is the length of email confirmation codes.
const ConfirmationCodeLength = 6

// GenConfirmationCode generates a random code of ConfirmationCodeLength
// characters drawn uniformly from ConfirmationAlphabet.
func GenConfirmationCode() (string, error) {
	return GenCode(ConfirmationAlphabet, ConfirmationCodeLength)
}

// GenCode draws n characters uniformly from alphabet using crypto/rand.
func GenCode(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}
