// opstoken выпускает JWT оператора для доступа к API кошельков.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fsdevblog/groph-wallet/internal/logger"
	"github.com/fsdevblog/groph-wallet/internal/transport/api/tokens"
)

func main() {
	var (
		secret   string
		operator string
		ttl      time.Duration
	)
	flag.StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Operator JWT secret, defaults to JWT_SECRET")
	flag.StringVar(&operator, "operator", "", "Operator name stored in the token subject")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime") //nolint:mnd
	flag.Parse()

	l := logger.New(os.Stderr, "")
	if secret == "" || operator == "" {
		l.Fatal("both -secret and -operator are required")
	}

	token, err := tokens.GenerateOperatorJWT(operator, ttl, []byte(secret))
	if err != nil {
		l.WithError(err).Fatal("generate token")
	}
	fmt.Println(token) //nolint:forbidigo
}
