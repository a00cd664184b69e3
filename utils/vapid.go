package utils

import (
	"log"

	"yogatrack/config"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// EnsureVAPIDKeys returns the configured VAPID key pair, generating a fresh
// one when the config carries none. Generated keys are logged so they can be
// persisted; without that, existing browser subscriptions break on restart.
func EnsureVAPIDKeys() (privateKey, publicKey string) {
	privateKey = config.AppConfig.VAPIDPrivateKey
	publicKey = config.AppConfig.VAPIDPublicKey
	if privateKey != "" && publicKey != "" {
		return privateKey, publicKey
	}

	log.Println("VAPID keys not found in configuration. Generating new keys...")
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		log.Fatalf("Failed to generate VAPID keys: %v", err)
	}
	log.Printf("Generated VAPID Keys:\nVAPID_PRIVATE_KEY=%s\nVAPID_PUBLIC_KEY=%s\n(Add these to your config to persist them)", privateKey, publicKey)
	return privateKey, publicKey
}
