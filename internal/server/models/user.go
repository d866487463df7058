package models

import "time"

// User is an enrolled identity. Descriptor holds the encrypted face
// descriptor in its stored form "ivHex:cipherHex:tagHex"; the plaintext
// descriptor is never persisted.
//
// Users are created once at registration and never updated.
type User struct {
	ID         string    `json:"id"`
	UserName   string    `json:"username"`
	Descriptor string    `json:"descriptor"`
	CreatedAt  time.Time `json:"created_at"`
}
