package recipe

import (
	"math/rand/v2"
)

const (
	shortCodeLength   = 6
	shortCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

func randomShortCode() string {
	code := make([]byte, shortCodeLength)
	for i := range code {
		code[i] = shortCodeAlphabet[rand.IntN(len(shortCodeAlphabet))]
	}
	return string(code)
}
