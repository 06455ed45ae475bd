// devtoken prints a bearer token for calling the extension locally:
//
//	go run ./cmd/devtoken -aud api://my-extension -azp 99045fe1-7639-4a75-9d4a-577b6ca3810f
//
// Signatures are not verified by the service, so a generated key is enough. Pass -key to sign
// with a PEM private key (inline or a file path) instead.
package main

import (
	"crypto"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"custom-auth-extension/backend/internal/config"
	"custom-auth-extension/backend/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	policy := cfg.BearerPolicy()

	aud := flag.String("aud", policy.ExpectedAudience, "aud claim (defaults to EXPECTED_AUDIENCE)")
	azp := flag.String("azp", policy.ExpectedAuthorizedParty, "azp claim (defaults to EXPECTED_AZP)")
	iss := flag.String("iss", "https://login.microsoftonline.com/dev/v2.0", "iss claim")
	key := flag.String("key", "", "PEM private key or path; empty generates an ES256 key")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	printKey := flag.Bool("print-public-key", false, "also print the public key PEM to stderr")
	flag.Parse()

	var signer crypto.Signer
	if *key != "" {
		signer, err = security.ParsePrivateKey(*key)
	} else {
		signer, err = security.GenerateSigner()
	}
	if err != nil {
		log.Fatalf("devtoken: key: %v", err)
	}

	token, expiresAt, err := security.NewIssuer(signer, *iss, *ttl).Issue(*aud, *azp)
	if err != nil {
		log.Fatalf("devtoken: %v", err)
	}
	if *printKey {
		pub, err := security.EncodePublicKey(signer.Public())
		if err != nil {
			log.Fatalf("devtoken: public key: %v", err)
		}
		fmt.Fprintf(os.Stderr, "alg %s\n%s", security.KeyAlg(signer.Public()), pub)
	}
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
	fmt.Println(token)
}
