package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/bazaar-backend/pkg/auth"
	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// tokenmint prints a signed access token for local testing of the cart API.
func main() {
	_ = godotenv.Load()

	user := flag.String("user", "", "user id (uuid); a random one is used when empty")
	role := flag.String("role", string(enums.ActorRoleBuyer), "actor role: buyer|admin|service")
	ttl := flag.Int("ttl", 0, "token lifetime in minutes; defaults to BAZAAR_JWT_EXPIRATION_MINUTES")
	flag.Parse()

	var cfg config.JWTConfig
	if err := envconfig.Process(config.EnvPrefix, &cfg); err != nil {
		exitf("load jwt config: %v", err)
	}
	if *ttl > 0 {
		cfg.ExpirationMinutes = *ttl
	}

	actorRole, err := enums.ParseActorRole(*role)
	if err != nil {
		exitf("%v", err)
	}

	userID := uuid.New()
	if *user != "" {
		userID, err = uuid.Parse(*user)
		if err != nil {
			exitf("invalid -user: %v", err)
		}
	}

	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{UserID: userID, Role: actorRole})
	if err != nil {
		exitf("mint token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "user_id=%s role=%s\n", userID, actorRole)
	fmt.Println(token)
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
