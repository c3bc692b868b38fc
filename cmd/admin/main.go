// Command admin creates an administrator account. The password is read from
// the terminal so it never lands in shell history or process listings.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

func main() {

	email := flag.String("email", "", "email address of the admin account")
	flag.Parse()

	if *email == "" {
		log.Fatal("usage: admin -email <address>")
	}

	fmt.Print("Password: ")
	plaintext, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatalf("error reading password: %v", err)
	}
	if len(plaintext) == 0 {
		log.Fatal("password must not be empty")
	}

	ctx := context.Background()
	cfg := config.LoadConfig()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	hash, err := hasher.Hash(string(plaintext))
	if err != nil {
		log.Fatalf("error hashing password: %v", err)
	}

	repo := rm.Users(db)
	addr := common.NormalizeEmail(*email)

	if _, err := repo.GetByEmail(ctx, addr); err == nil {
		log.Fatalf("user %s already exists", addr)
	}

	user, err := repo.Create(ctx, &models.User{
		Email:           addr,
		PasswordHash:    hash,
		Role:            models.RoleAdmin,
		Plan:            models.PlanFree,
		IsEmailVerified: true,
	})
	if err != nil {
		log.Fatalf("error creating admin: %v", err)
	}

	fmt.Fprintf(os.Stdout, "admin created: %s (%s)\n", user.Email, user.ID)
}
