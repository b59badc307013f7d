package main

import (
	"fmt"
	"log"
	"os"

	"roomstay/internal/database"
	"roomstay/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "roomstay.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	// Cleanup old data in FK-safe order.
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM payments")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM rooms")
	db.Exec("DELETE FROM users")

	log.Println("Creating users...")

	for i, email := range []string{"asha@example.in", "ravi@example.in", "meera@example.in"} {
		hash, _ := bcrypt.GenerateFromPassword([]byte("seeker123"), bcrypt.DefaultCost)
		u := domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         domain.RoleSeeker,
			Name:         fmt.Sprintf("Seeker %d", i+1),
			Phone:        fmt.Sprintf("+91 98765 432%02d", i+10),
		}
		db.Create(&u)
	}

	owners := make([]domain.User, 0, 2)
	for i, email := range []string{"kiran@rooms.in", "deepak@rooms.in"} {
		hash, _ := bcrypt.GenerateFromPassword([]byte("owner123"), bcrypt.DefaultCost)
		u := domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         domain.RoleOwner,
			Name:         fmt.Sprintf("Owner %d", i+1),
			Phone:        fmt.Sprintf("+91 99887 766%02d", i+55),
		}
		db.Create(&u)
		owners = append(owners, u)
	}

	log.Println("Creating rooms...")
	rooms := []domain.Room{
		{OwnerID: owners[0].ID, Title: "1BHK near Indiranagar metro", City: "Bengaluru", Address: "12th Main, Indiranagar", Rent: 1500000, Available: true},
		{OwnerID: owners[0].ID, Title: "Shared room in Koramangala", City: "Bengaluru", Address: "5th Block, Koramangala", Rent: 800000, Available: true},
		{OwnerID: owners[1].ID, Title: "Studio flat in Andheri West", City: "Mumbai", Address: "Lokhandwala Complex", Rent: 2200000, Available: true},
		{OwnerID: owners[1].ID, Title: "2BHK in Powai", City: "Mumbai", Address: "Hiranandani Gardens", Rent: 3500000, Available: true},
	}
	for i := range rooms {
		db.Create(&rooms[i])
	}

	log.Println("Seed completed")
	log.Println("Seekers: asha@example.in ravi@example.in meera@example.in / seeker123")
	log.Println("Owners:  kiran@rooms.in deepak@rooms.in / owner123")
}
