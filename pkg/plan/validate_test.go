package plan_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesisproject/genesis/pkg/plan"
)

func selfSignedCert(t *testing.T, cn string) (certPEM, keyPEM string, key *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		Issuer:       pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		DNSNames:     []string{"extra.example.com"},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	certPEM = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	keyPEM = string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))

	return certPEM, keyPEM, key
}

func TestValidateX509_SelfSignedHappyPath(t *testing.T) {
	t.Parallel()

	certPEM, keyPEM, _ := selfSignedCert(t, "leaf.example.com")

	p := plan.Plan{
		Kind:       plan.KindX509,
		Path:       "tls/leaf",
		SelfSigned: plan.SelfSignedImplicit,
		Names:      []string{"leaf.example.com", "extra.example.com"},
		Usage:      []string{"server_auth", "client_auth", "digital_signature", "key_encipherment"},
	}

	secret := plan.StoredSecret{
		"certificate": certPEM,
		"key":         keyPEM,
		"combined":    certPEM + keyPEM,
	}

	result := plan.Validate(p, secret, nil)
	assert.Equal(t, plan.StatusOK, result.Status, result.Message)
}

func TestValidateX509_MissingExpectedKey(t *testing.T) {
	t.Parallel()

	p := plan.Plan{Kind: plan.KindX509, Path: "tls/leaf", Names: []string{"leaf.example.com"}}

	result := plan.Validate(p, plan.StoredSecret{"certificate": "x"}, nil)
	assert.Equal(t, plan.StatusMissing, result.Status)
}

func TestValidateRSA_BitSizeMismatchWarns(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	pubPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}))

	p := plan.Plan{Kind: plan.KindRSA, Path: "x", Size: 4096}

	result := plan.Validate(p, plan.StoredSecret{"private": privPEM, "public": pubPEM}, nil)
	assert.Equal(t, plan.StatusWarn, result.Status)
}

func TestValidateRandom_WrongLengthWarns(t *testing.T) {
	t.Parallel()

	p := plan.Plan{Kind: plan.KindRandom, Path: "x", Key: "value", Size: 32}

	result := plan.Validate(p, plan.StoredSecret{"value": "short"}, nil)
	assert.Equal(t, plan.StatusWarn, result.Status)
}
