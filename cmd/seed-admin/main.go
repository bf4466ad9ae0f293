package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/articleai/articleai-server/internal/config"
	"github.com/articleai/articleai-server/internal/database"
	"github.com/articleai/articleai-server/internal/model"
	"github.com/articleai/articleai-server/internal/repository"
)

// Creates the bootstrap admin account. Safe to re-run: exits without
// changes when the handle already exists.
func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: go run ./cmd/seed-admin <admin-id> <password> [full-name] [email]\n")
		os.Exit(1)
	}

	adminID := os.Args[1]
	password := os.Args[2]
	fullName := "Administrator"
	email := ""
	if len(os.Args) > 3 {
		fullName = os.Args[3]
	}
	if len(os.Args) > 4 {
		email = os.Args[4]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adminRepo := repository.NewAdminRepository(db.DB)

	existing, err := adminRepo.FindByAdminID(ctx, adminID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error checking admin: %v\n", err)
		os.Exit(1)
	}
	if existing != nil {
		fmt.Printf("Admin %q already exists, nothing to do\n", adminID)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	admin, err := adminRepo.Create(ctx, model.CreateAdminParams{
		AdminID:      adminID,
		PasswordHash: string(hash),
		FullName:     fullName,
		Email:        email,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created admin %q (%s)\n", admin.AdminID, admin.ID)
}
