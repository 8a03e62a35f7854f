package main

import (
	"log"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"

	"github.com/berniyo/cashtime-lambda/internal/cashtime"
	"github.com/berniyo/cashtime-lambda/internal/handler"
)

func main() {
	// Local invocations can keep credentials in a .env file; on Lambda the
	// variables come from the function configuration.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}

	client, err := cashtime.NewClientFromEnv(nil)
	if err != nil {
		log.Fatalf("failed to configure cashtime client: %v", err)
	}

	var opts []handler.Option
	if callbackURL := strings.TrimSpace(os.Getenv("PAYMENT_CALLBACK_URL")); callbackURL != "" {
		sender, err := handler.NewHTTPSCallbackSender(callbackURL, os.Getenv("PAYMENT_CALLBACK_SECRET"), nil)
		if err != nil {
			log.Fatalf("failed to configure callback sender: %v", err)
		}
		opts = append(opts, handler.WithCallbackSender(sender))
	}

	processor := handler.NewProcessor(client, opts...)

	lambda.Start(processor.Handle)
}
