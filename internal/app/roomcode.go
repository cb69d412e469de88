package app

import (
	"crypto/rand"
	"strings"
)

// DefaultRoomCodeLength is the default length for room codes
const DefaultRoomCodeLength = 5

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRoomCode returns a random room code of the given length. Codes
// are not checked for uniqueness here; the store rejects duplicates.
func GenerateRoomCode(length int) string {
	if length <= 0 {
		length = DefaultRoomCodeLength
	}

	b := make([]byte, length)
	rand.Read(b)

	code := make([]byte, length)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code)
}

// NormalizeRoomCode trims and upper-cases user supplied codes
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
