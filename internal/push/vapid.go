package push

import (
	"log"
	"os"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// VAPIDKeys is the keypair identifying this server to push services.
type VAPIDKeys struct {
	Public  string
	Private string
}

// LoadVAPIDKeys reads the keypair from the environment, generating a
// fresh one when absent. Generated keys are logged so they can be pinned
// in .env; without pinning, every restart invalidates old subscriptions.
func LoadVAPIDKeys() (VAPIDKeys, error) {
	keys := VAPIDKeys{
		Public:  os.Getenv("VAPID_PUBLIC_KEY"),
		Private: os.Getenv("VAPID_PRIVATE_KEY"),
	}
	if keys.Public != "" && keys.Private != "" {
		return keys, nil
	}

	log.Println("VAPID keys not found in environment. Generating new keys...")
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return VAPIDKeys{}, err
	}
	keys.Private = privateKey
	keys.Public = publicKey
	log.Printf("Generated VAPID keys:\nVAPID_PRIVATE_KEY=%s\nVAPID_PUBLIC_KEY=%s\n(add these to .env to persist them)", privateKey, publicKey)
	return keys, nil
}
