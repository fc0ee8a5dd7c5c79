// Seeds a development database with a user and a session so the
// realtime server has durable records to archive chat against.
// Prints the join code and a valid token for the seeded user.
package main

import (
	"devhub/auth"
	"devhub/domain"
	"devhub/repositories"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/dgraph-io/badger/v4"
)

func main() {
	dbPath := flag.String("db", "./devhub-data", "Path to badger DB")
	email := flag.String("email", "alice@x.com", "Email of the seeded user")
	password := flag.String("password", "dev-password", "Password of the seeded user")
	sessionName := flag.String("session", "Pairing session", "Name of the seeded session")
	jwtSecret := flag.String("jwt-secret", "change-me-dev-secret", "Secret used to mint the printed token")
	tokenTTL := flag.Duration("token-ttl", 7*24*time.Hour, "Lifetime of the printed token")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	users := repositories.NewUserRepository(db)
	sessions := repositories.NewSessionRepository(db)

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatal("Hashing failed: ", err)
	}

	userID, err := users.CreateUser(*email, hash)
	if err != nil {
		log.Fatal("User creation failed: ", err)
	}

	session, err := sessions.CreateSession(*sessionName, domain.NewSessionCode(), userID)
	if err != nil {
		log.Fatal("Session creation failed: ", err)
	}

	token, err := auth.GenerateToken([]byte(*jwtSecret), *email, *tokenTTL)
	if err != nil {
		log.Fatal("Token generation failed: ", err)
	}

	fmt.Printf("user    : %s (%s)\n", *email, userID)
	fmt.Printf("session : %s\n", session.Name)
	fmt.Printf("code    : %s\n", session.Code)
	fmt.Printf("token   : %s\n", token)
}
