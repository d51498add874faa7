// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command tokengen mints RS256 access tokens for operators and local testing.
//
// Accounts live outside this service, so tokens carry the caller's identity
// and role directly:
//
//	go run ./cmd/tokengen -user user-42 -name tai -role admin
//
// Keys are read from JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH (a .env file is honoured).
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/taibuivan/yomira-directory/internal/platform/constants"
	"github.com/taibuivan/yomira-directory/internal/platform/sec"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil)).With(slog.String("app", "tokengen"))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error("env_file_unreadable", slog.Any("error", err))
		os.Exit(1)
	}

	userID := flag.String("user", "", "user id carried in the 'uid' claim (required)")
	username := flag.String("name", "", "display name carried in the 'unm' claim")
	role := flag.String("role", string(sec.RoleMember), "admin, editor or member")
	ttl := flag.Duration("ttl", constants.AccessTokenTTL, "token lifetime")
	flag.Parse()

	userRole := sec.UserRole(*role)
	if *userID == "" || !userRole.Valid() || *ttl <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	service, err := sec.NewTokenService(os.Getenv("JWT_PRIVATE_KEY_PATH"), os.Getenv("JWT_PUBLIC_KEY_PATH"), constants.AuthIssuer)
	if err != nil {
		log.Error("token_service_failed", slog.Any("error", err))
		os.Exit(1)
	}

	token, err := service.GenerateAccessToken(*userID, *username, userRole, *ttl)
	if err != nil {
		log.Error("token_generation_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("token_generated",
		slog.String("user_id", *userID),
		slog.String("role", *role),
		slog.Time("expires_at", time.Now().Add(*ttl)),
	)
	fmt.Println(token)
}
