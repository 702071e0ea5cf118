package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cinelist/internal/types"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a new user with an already-hashed password. A duplicate
// email surfaces as ErrConflict via the unique index, which also settles
// concurrent registrations for the same address.
func CreateUser(db *sql.DB, name, email, passwordHash string) (*types.User, error) {
	now := time.Now()
	result, err := db.Exec(`
		INSERT INTO users (name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, name, normalizeEmail(email), passwordHash, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	userID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}

	return &types.User{
		ID:      int(userID),
		Name:    name,
		Email:   normalizeEmail(email),
		Created: now,
	}, nil
}

// GetUserByEmail returns the user with the given email, including the
// password hash for credential checks. Returns ErrNotFound if absent.
func GetUserByEmail(db *sql.DB, email string) (*types.User, error) {
	var user types.User
	err := db.QueryRow(`
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE email = ?
	`, normalizeEmail(email)).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func GetUserByID(db *sql.DB, userID int) (*types.User, error) {
	var user types.User
	err := db.QueryRow(`
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE id = ?
	`, userID).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// GetFriends returns the users in userID's friend set, resolved for display.
func GetFriends(db *sql.DB, userID int) ([]types.Friend, error) {
	rows, err := db.Query(`
		SELECT u.id, u.name, u.email
		FROM friends f
		JOIN users u ON f.friend_id = u.id
		WHERE f.user_id = ?
		ORDER BY u.name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friends: %w", err)
	}
	defer rows.Close()

	friends := []types.Friend{}
	for rows.Next() {
		var f types.Friend
		if err := rows.Scan(&f.ID, &f.Name, &f.Email); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

// IsFriend reports whether friendID is in userID's friend set.
func IsFriend(db *sql.DB, userID, friendID int) (bool, error) {
	var id int
	err := db.QueryRow(`
		SELECT id FROM friends WHERE user_id = ? AND friend_id = ?
	`, userID, friendID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return true, nil
}

// AddFriendByEmail appends the user with the given email to userID's friend
// set. Friendship is stored one-directionally: only the caller's set changes.
func AddFriendByEmail(db *sql.DB, userID int, email string) ([]types.Friend, error) {
	friend, err := GetUserByEmail(db, email)
	if err != nil {
		return nil, err // ErrNotFound when no user has that email
	}

	if friend.ID == userID {
		return nil, ErrSelfFriend
	}

	already, err := IsFriend(db, userID, friend.ID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrConflict
	}

	_, err = db.Exec(`
		INSERT INTO friends (user_id, friend_id, created_at)
		VALUES (?, ?, ?)
	`, userID, friend.ID, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race against an identical request.
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to add friend: %w", err)
	}

	return GetFriends(db, userID)
}
