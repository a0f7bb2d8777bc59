package model

import "time"

// User represents a row in the `users` table. These structs are used
// internally by the repository layer; handlers define separate response
// types with the JSON shape clients expect, so the password hash never
// leaks by accident.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name shown on listings and ratings.
//  Email        – unique email address, stored lowercase.
//  Course       – the course/program the student is enrolled in.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – registration timestamp.
//  IsActive     – whether the account is active.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	Course       string    // users.course
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	IsActive     bool      // users.is_active
}

// RevokedToken models an entry in the `revoked_tokens` denylist. A row
// is inserted on logout with the token's jti claim; the JWT middleware
// rejects any token whose jti appears here.
type RevokedToken struct {
	JTI       string    // revoked_tokens.jti
	RevokedAt time.Time // revoked_tokens.revoked_at
}
