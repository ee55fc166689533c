//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hugh/go-roster/internal/auth"
	"github.com/hugh/go-roster/internal/database"
	"github.com/hugh/go-roster/internal/employees"
	"github.com/hugh/go-roster/internal/session"
	"github.com/hugh/go-roster/internal/validation"
	"github.com/hugh/go-roster/pkg/apperr"
	"github.com/hugh/go-roster/pkg/config"
	"github.com/hugh/go-roster/pkg/crypto"
	"github.com/hugh/go-roster/pkg/phone"
	"github.com/hugh/go-roster/pkg/util"
	"github.com/joho/godotenv"
)

var demoEmployees = []employees.CreateInput{
	{Name: "Ada Lovelace", Email: "ada@demo.example", Phone: "(650) 253-0001", Address: "12 Market Street", JoiningDate: "2023-02-01", Designation: "Engineer"},
	{Name: "Alan Turing", Email: "alan@demo.example", Phone: "(650) 253-0002", Address: "3 Bletchley Road", JoiningDate: "2023-06-15", Designation: "Researcher"},
	{Name: "Katherine Johnson", Email: "katherine@demo.example", Phone: "(650) 253-0003", Address: "7 Langley Avenue", JoiningDate: "2024-01-08", Designation: "Analyst"},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)
	ctx := context.Background()

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	org := os.Getenv("SEED_ORGANIZATION")
	if email == "" {
		email = "admin@demo.example"
	}
	if password == "" {
		password = "demo-pass1"
	}
	if org == "" {
		org = "Demo Organization"
	}

	v := validation.New()
	sessions := session.NewDatabaseStore(db)
	authService := auth.NewService(db, auth.NewJWTService(cfg.Session.Secret), sessions, v, logger, cfg.Session.TTL())

	_, err = authService.Register(ctx, auth.RegisterInput{
		FirstName: "Demo",
		LastName:  "Admin",
		Email:     email,
		Password:  password,
		OrgName:   org,
	})
	switch {
	case apperr.Is(err, apperr.KindConflict):
		fmt.Printf("User already exists: %s\n", email)
	case err != nil:
		log.Fatalf("failed to create user: %v", err)
	default:
		fmt.Printf("User created: %s (%s)\n", email, org)
	}

	res, err := authService.Login(ctx, auth.LoginInput{Email: email, Password: password})
	if err != nil {
		log.Fatalf("failed to log in as %s: %v", email, err)
	}
	identity, err := authService.Authenticate(ctx, res.Token)
	if err != nil {
		log.Fatalf("failed to resolve identity: %v", err)
	}
	defer func() { _ = authService.Logout(ctx, res.Token) }()

	var sealer employees.Sealer
	if cfg.Encryption.Key != "" {
		enc, err := crypto.NewEncryptor(cfg.Encryption.Key)
		if err != nil {
			log.Fatalf("failed to create encryptor: %v", err)
		}
		sealer = enc
	}
	employeeService := employees.NewService(db, sealer, phone.NewNormalizer(cfg.Phone.DefaultRegion), v, logger)

	for _, input := range demoEmployees {
		_, err := employeeService.Create(ctx, identity, input)
		switch {
		case apperr.Is(err, apperr.KindConflict):
			fmt.Printf("Employee already exists: %s\n", input.Email)
		case err != nil:
			log.Fatalf("failed to create employee %s: %v", input.Email, err)
		default:
			fmt.Printf("Employee created: %s\n", input.Name)
		}
	}
}
