package db

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedDemoData resets the database and populates it with demo users, a small
// friend graph, overlapping interest lists and one open match session.
//
// Behavior:
//  1. Clears all tables.
//  2. Creates 6 users with bcrypt-hashed passwords ("password").
//  3. Confirms friendships 1-2 and 1-3, leaves 4->1 pending.
//  4. Seeds shared interests so users 1 and 2 overlap on two titles.
//  5. Opens a VOTING session between users 1 and 2.
//
// Compatible with both MySQL and SQLite (sequence reset differs per dialect).
func SeedDemoData(db *gorm.DB) error {
	tables := []string{
		"match_results", "match_votes", "match_participants", "match_sessions",
		"user_interests", "interests", "friendships", "users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		for _, table := range tables {
			db.Exec("ALTER TABLE " + table + " AUTO_INCREMENT = 1")
		}
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence")
	}

	log.Println("Cleared existing data")

	// --- Users ---
	names := []string{"Alice", "Bruno", "Carla", "Diego", "Elena", "Fabio"}
	for i, name := range names {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user := User{
			Name:         name,
			Email:        fmt.Sprintf("user%d@example.com", i+1),
			PasswordHash: string(hash),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Printf("Seeded %d users.", len(names))

	// --- Friendships ---
	friendships := []Friendship{
		{RequesterID: 1, AddresseeID: 2, Status: FriendshipAccepted},
		{RequesterID: 1, AddresseeID: 3, Status: FriendshipAccepted},
		{RequesterID: 4, AddresseeID: 1, Status: FriendshipPending},
	}
	if err := db.Create(&friendships).Error; err != nil {
		return fmt.Errorf("failed to seed friendships: %w", err)
	}

	// --- Interests ---
	titles := []struct {
		name  string
		image string
	}{
		{"Inception", "https://image.tmdb.org/t/p/w500/inception.jpg"},
		{"The Matrix", "https://image.tmdb.org/t/p/w500/matrix.jpg"},
		{"Parasite", "https://image.tmdb.org/t/p/w500/parasite.jpg"},
		{"Interstellar", "https://image.tmdb.org/t/p/w500/interstellar.jpg"},
	}
	for _, t := range titles {
		interest := Interest{Name: t.name, ImageURL: t.image}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&interest).Error; err != nil {
			return fmt.Errorf("failed to seed interest: %w", err)
		}
	}

	// Users 1 and 2 overlap on Inception and The Matrix.
	userInterests := []UserInterest{
		{UserID: 1, InterestID: 1, Type: "like"},
		{UserID: 1, InterestID: 2, Type: "like"},
		{UserID: 1, InterestID: 3, Type: "like"},
		{UserID: 2, InterestID: 1, Type: "like"},
		{UserID: 2, InterestID: 2, Type: "like"},
		{UserID: 2, InterestID: 4, Type: "like"},
		{UserID: 3, InterestID: 4, Type: "like"},
	}
	if err := db.Create(&userInterests).Error; err != nil {
		return fmt.Errorf("failed to seed user interests: %w", err)
	}

	// --- One open match session between users 1 and 2 ---
	session := MatchSession{CreatorID: 1, Status: SessionVoting}
	if err := db.Create(&session).Error; err != nil {
		return fmt.Errorf("failed to seed match session: %w", err)
	}
	participants := []MatchParticipant{
		{SessionID: session.ID, UserID: 1},
		{SessionID: session.ID, UserID: 2},
	}
	if err := db.Create(&participants).Error; err != nil {
		return fmt.Errorf("failed to seed participants: %w", err)
	}

	log.Println("Seeded demo friend graph, interests, and one open session.")
	return nil
}
