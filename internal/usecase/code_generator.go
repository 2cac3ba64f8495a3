package usecase

import (
	"crypto/rand"
	"io"
)

// generateAccessCode creates a random, human-readable access code.
// Format: XXXX-XXXX-XXXX
func generateAccessCode() (string, error) {
	return generateAccessCodeFrom(rand.Reader)
}

func generateAccessCodeFrom(r io.Reader) (string, error) {
	// Avoids ambiguous characters like O/0, I/1, l. 32 symbols divide 256
	// evenly, so the modulo below is unbiased.
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLength = 12

	buffer := make([]byte, codeLength)
	if _, err := io.ReadFull(r, buffer); err != nil {
		return "", err
	}
	for i := range buffer {
		buffer[i] = chars[int(buffer[i])%len(chars)]
	}
	return string(buffer[0:4]) + "-" + string(buffer[4:8]) + "-" + string(buffer[8:12]), nil
}
