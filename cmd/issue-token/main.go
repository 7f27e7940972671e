// Command issue-token prints a STAFF access token signed with JWT_SECRET.
// The lifetime defaults to ACCESS_TOKEN_TTL_MIN.
//
//	issue-token -sub host-stand-1 -ttl 720
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/config"
	"github.com/iliyamo/restaurant-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-reservation/internal/utils"
)

func main() {
	_ = godotenv.Load()

	sub := flag.String("sub", "host-stand", "token subject")
	role := flag.String("role", middleware.RoleStaff, "role claim")
	ttl := flag.Int("ttl", config.AccessTokenTTL(), "lifetime in minutes")
	flag.Parse()
	if *ttl < 1 {
		log.Fatalf("invalid -ttl: %d", *ttl)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	tok, err := utils.NewAccessToken(secret, *sub, *role, *ttl)
	if err != nil {
		log.WithError(err).Fatal("sign token")
	}
	fmt.Println(tok.Token)
	log.WithField("expires", tok.Exp).Info("token issued")
}
