// Command automod-check asks Twitch whether a message would be held by the
// broadcaster's AutoMod settings.
//
//	TWITCH_TOKEN=<user token> automod-check some message text
//
// The token may also be passed as the first argument. The client and
// broadcaster default to the token's owner; TWITCH_CLIENT_ID and
// TWITCH_BROADCASTER_ID override them.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/suniastar/twitch-api/helixapi"
)

const requestTimeout = 15 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Println("Error:", err)
		for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
			fmt.Println("Caused by:", cause)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	token := os.Getenv("TWITCH_TOKEN")
	if token == "" {
		if len(args) == 0 {
			return errors.New("set TWITCH_TOKEN or pass a token as the first argument")
		}
		token, args = args[0], args[1:]
	}

	message := strings.Join(args, " ")
	if message == "" {
		message = "hello!"
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	client := &http.Client{Timeout: requestTimeout}

	info, err := helixapi.ValidateToken(ctx, client, "", token)
	if err != nil {
		return fmt.Errorf("validate token: %w", err)
	}

	clientID := envOr("TWITCH_CLIENT_ID", info.ClientID)
	broadcasterID := envOr("TWITCH_BROADCASTER_ID", info.UserID)
	if broadcasterID == "" {
		return errors.New("token has no user; set TWITCH_BROADCASTER_ID")
	}

	body := helixapi.NewCheckAutoModStatusBody(uuid.NewString(), message)
	fmt.Printf("data: %+v\n", body)

	verdicts, err := helixapi.NewCheckAutoModStatusRequest(broadcasterID).Check(ctx, client, token, clientID, body)
	if err != nil {
		return err
	}
	for _, v := range verdicts {
		fmt.Printf("msg_id=%s is_permitted=%t\n", v.MsgID, v.IsPermitted)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
