// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package csrgen generates the private key and PKCS#10 certificate request for a user's
// client certificate.
package csrgen

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"net"

	"k8s.io/client-go/util/cert"
	"k8s.io/client-go/util/keyutil"

	"go.coralgate.dev/internal/constable"
)

const (
	// KeyBits is the size of the generated RSA keys.
	KeyBits = 2048

	// AlgorithmRSA2048 tags the key material produced by Generate.
	AlgorithmRSA2048 = "RSA-2048"
)

// ErrCrypto wraps every key generation or request signing failure.
const ErrCrypto = constable.Error("could not generate certificate request")

// Result holds the ephemeral key material for one issuance. The private key is never
// persisted by coralgate other than inside the kubeconfig that is written at the end.
type Result struct {
	PrivateKey    *rsa.PrivateKey
	Algorithm     string
	RequestPEM    []byte
	PrivateKeyPEM []byte
}

type env struct {
	// generateKey is usually rsa.GenerateKey with crypto/rand.Reader, but broken out here for tests.
	generateKey func(random io.Reader, bits int) (*rsa.PrivateKey, error)
	keygenRNG   io.Reader

	// makeCSR is normally cert.MakeCSR, which signs with SHA256WithRSA for RSA keys.
	makeCSR func(privateKey interface{}, subject *pkix.Name, dnsSANs []string, ipSANs []net.IP) ([]byte, error)
}

func secureEnv() env {
	return env{
		generateKey: rsa.GenerateKey,
		keygenRNG:   rand.Reader,
		makeCSR:     cert.MakeCSR,
	}
}

// Generate creates a fresh RSA key and a certificate request with the subject
// O=organization, CN=commonName and no subject alternative names.
func Generate(commonName, organization string) (*Result, error) {
	return generate(commonName, organization, secureEnv())
}

func generate(commonName, organization string, env env) (*Result, error) {
	privateKey, err := env.generateKey(env.keygenRNG, KeyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: could not generate private key: %w", ErrCrypto, err)
	}

	subject := &pkix.Name{
		CommonName:   commonName,
		Organization: []string{organization},
	}
	requestPEM, err := env.makeCSR(privateKey, subject, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: could not sign request: %w", ErrCrypto, err)
	}

	keyPEM, err := keyutil.MarshalPrivateKeyToPEM(crypto.PrivateKey(privateKey))
	if err != nil {
		return nil, fmt.Errorf("%w: could not encode private key: %w", ErrCrypto, err)
	}

	return &Result{
		PrivateKey:    privateKey,
		Algorithm:     AlgorithmRSA2048,
		RequestPEM:    requestPEM,
		PrivateKeyPEM: keyPEM,
	}, nil
}
