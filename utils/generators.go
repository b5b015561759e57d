package utils

import "github.com/google/uuid"

// GenerateID generates a random identifier for requests and messages
func GenerateID() string {
	return uuid.NewString()
}
