// Command token mints an admin access token signed with JWT_SECRET, for
// calling the event write endpoints.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/geocoder89/devevents/internal/auth"
	"github.com/geocoder89/devevents/internal/config"
)

func main() {
	cfg := config.Load()

	subject := flag.String("sub", "ops", "token subject, usually the operator's name or email")
	role := flag.String("role", auth.RoleAdmin, "role claim")
	ttl := flag.Duration("ttl", cfg.JWTAccessTTL, "token lifetime")
	flag.Parse()

	if *ttl <= 0 {
		*ttl = time.Hour
	}

	token, err := auth.NewManager(cfg.JWTSecret, *ttl).GenerateAccessToken(*subject, *role)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
