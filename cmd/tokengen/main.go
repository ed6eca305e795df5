// Command tokengen mints development tokens for connecting to a local
// hub. The signing secret comes from the same JWT_SECRET the hub reads.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"relay-hub/auth"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
)

func main() {
	user := flag.String("user", "", "User identity to embed in the token")
	email := flag.String("email", "", "Email claim (optional)")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *user == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	token, err := auth.NewVerifier(secret).Mint(*user, *email, *ttl)
	if err != nil {
		log.Fatalf("Failed to mint token: %v", err)
	}

	color.Greenln("Token for", *user, "valid", ttl.String())
	fmt.Println(token)
}
