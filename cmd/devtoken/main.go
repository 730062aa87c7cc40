// Command devtoken mints a bearer token for local testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/event-booking-wizard/internal/auth"
)

func main() {
	_ = godotenv.Load()

	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HS256 signing secret (default $JWT_SECRET)")
	user := flag.Uint64("user", 1, "user id placed in the subject claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *secret == "" {
		log.Fatal("no secret: pass -secret or set JWT_SECRET")
	}
	tok, err := auth.NewAccessToken(*secret, *user, *ttl, time.Now())
	if err != nil {
		log.Fatalf("sign: %v", err)
	}
	fmt.Println(tok.Token)
}
