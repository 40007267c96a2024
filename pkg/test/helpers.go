package test

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"todosync/internal/adapter/database/sqlite"
)

const (
	TestJWTSecret = "test-secret"
	TestIssuer    = "todosync-test"
)

// InitTestDB opens a private in-memory sqlite database with migrations applied.
func InitTestDB() *sqlite.DB {
	db, err := sqlite.NewDB(sqlite.Options{
		Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})

	if err != nil {
		log.Fatal(err)
	}

	return db
}

// BearerToken signs an HS256 token for userID with the test secret.
func BearerToken(userID string, ttl time.Duration) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    TestIssuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})

	signed, err := token.SignedString([]byte(TestJWTSecret))
	if err != nil {
		log.Fatal(err)
	}

	return "Bearer " + signed
}

// CountingGenerator records prompts and returns a canned summary or error.
type CountingGenerator struct {
	mu      sync.Mutex
	Calls   int
	Prompts []string
	Result  string
	Err     error
}

func (g *CountingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Calls++
	g.Prompts = append(g.Prompts, prompt)

	if g.Err != nil {
		return "", g.Err
	}

	return g.Result, nil
}

// CountingNotifier records every delivered message.
type CountingNotifier struct {
	mu       sync.Mutex
	Calls    int
	Messages []string
	Err      error
}

func (n *CountingNotifier) Notify(ctx context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.Calls++
	n.Messages = append(n.Messages, text)

	return n.Err
}
