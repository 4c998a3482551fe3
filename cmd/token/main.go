// Command token prints a bearer token for the API's admin routes, signed with
// JWT_SECRET from the environment or .env file.
//
//	go run ./cmd/token -sub ops@example.org
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/geohazard/service/internal/auth"
	"github.com/geohazard/service/internal/config"
	"github.com/geohazard/service/internal/middleware"
)

func main() {
	subject := flag.String("sub", "", "token subject (required)")
	role := flag.String("role", middleware.RoleAdmin, "role claim")
	ttl := flag.Duration("ttl", auth.DefaultTTL, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	if cfg.IsProduction() && cfg.JWTSecret == "change_me_in_production" {
		slog.Error("refusing to sign with the default JWT_SECRET in production")
		os.Exit(1)
	}

	token, err := auth.NewIssuer(cfg.JWTSecret, *ttl).Issue(*subject, *role)
	if err != nil {
		slog.Error("issue token", "error", err)
		flag.Usage()
		os.Exit(2)
	}
	fmt.Println(token)
}
