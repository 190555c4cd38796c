package plan

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// Status is the outcome of validating one plan against its stored secret.
type Status string

const (
	StatusOK      Status = "ok"
	StatusMissing Status = "missing"
	StatusError   Status = "error"
	StatusWarn    Status = "warn"
	StatusSkipped Status = "skipped"
)

// ValidationResult is the per-plan outcome of the Plan Validator, a
// human-readable multi-line message plus the terminal status.
type ValidationResult struct {
	Plan    Plan
	Status  Status
	Message string
}

// StoredSecret is the `{key -> value}` map fetched from the store export
// for one plan's path, per the Stored Secret glossary entry.
type StoredSecret map[string]string

// SignerLookup resolves a plan path to its StoredSecret, used to walk
// signed_by chains when validating a certificate's issuer.
type SignerLookup func(path string) (StoredSecret, bool)

// Validate checks one plan's stored secret against its expected shape,
// fetching expected keys first and then running type-specific checks.
func Validate(p Plan, secret StoredSecret, lookupSigner SignerLookup) ValidationResult {
	if p.Kind == KindError {
		return ValidationResult{Plan: p, Status: StatusError, Message: p.Error}
	}

	for _, key := range p.ExpectedKeys() {
		if _, ok := secret[key]; !ok {
			return ValidationResult{Plan: p, Status: StatusMissing, Message: fmt.Sprintf("missing expected key %q", key)}
		}
	}

	switch p.Kind {
	case KindX509:
		return validateX509(p, secret, lookupSigner)
	case KindRSA:
		return validateRSA(p, secret)
	case KindSSH:
		return validateSSH(p, secret)
	case KindDHParams:
		return validateDHParam(p, secret)
	case KindRandom:
		return validateRandom(p, secret)
	default:
		return ValidationResult{Plan: p, Status: StatusError, Message: "unknown plan kind"}
	}
}

func validateX509(p Plan, secret StoredSecret, lookupSigner SignerLookup) ValidationResult {
	var msgs []string

	cert, err := parseCertificate(secret["certificate"])
	if err != nil {
		return ValidationResult{Plan: p, Status: StatusError, Message: fmt.Sprintf("parse certificate: %s", err)}
	}

	key, err := parsePrivateKey(secret["key"])
	if err != nil {
		return ValidationResult{Plan: p, Status: StatusError, Message: fmt.Sprintf("parse key: %s", err)}
	}

	if pub, ok := key.Public().(*rsa.PublicKey); ok {
		if certPub, ok := cert.PublicKey.(*rsa.PublicKey); ok {
			if certPub.N.Cmp(pub.N) != 0 {
				msgs = append(msgs, "certificate modulus does not match private key modulus")
			}
		}
	}

	if len(p.Names) > 0 && cert.Subject.CommonName != p.Names[0] {
		msgs = append(msgs, fmt.Sprintf("CN %q does not match expected %q", cert.Subject.CommonName, p.Names[0]))
	}

	if extras, missing := compareSANs(cert.DNSNames, p.Names); len(extras) > 0 || len(missing) > 0 {
		if len(extras) > 0 {
			msgs = append(msgs, fmt.Sprintf("unexpected SANs: %v", extras))
		}

		if len(missing) > 0 {
			msgs = append(msgs, fmt.Sprintf("missing SANs: %v", missing))
		}
	}

	checkSelfSigned(p, cert, &msgs)
	checkSigner(p, cert, secret, lookupSigner, &msgs)

	if cert.IsCA != p.IsCA {
		msgs = append(msgs, fmt.Sprintf("CA flag mismatch: certificate is_ca=%v plan is_ca=%v", cert.IsCA, p.IsCA))
	}

	validityNote := validityWindowNote(cert)
	if !withinValidityWindow(cert) {
		msgs = append(msgs, validityNote)
	}

	checkKeyUsage(p, cert, &msgs)

	if len(msgs) == 0 {
		return ValidationResult{Plan: p, Status: StatusOK, Message: validityNote}
	}

	return ValidationResult{Plan: p, Status: StatusWarn, Message: validityNote + "\n" + strings.Join(msgs, "\n")}
}

func checkSelfSigned(p Plan, cert *x509.Certificate, msgs *[]string) {
	if p.SelfSigned == SelfSignedNone {
		return
	}

	selfSigned := subjectKeyIDEqualsAuthorityKeyID(cert)
	if !selfSigned && len(cert.SubjectKeyId) == 0 && len(cert.AuthorityKeyId) == 0 {
		selfSigned = cert.Subject.CommonName == cert.Issuer.CommonName
	}

	if !selfSigned {
		*msgs = append(*msgs, "plan marked self-signed but certificate issuer does not match subject")
	}
}

func subjectKeyIDEqualsAuthorityKeyID(cert *x509.Certificate) bool {
	if len(cert.SubjectKeyId) == 0 || len(cert.AuthorityKeyId) == 0 {
		return false
	}

	return string(cert.SubjectKeyId) == string(cert.AuthorityKeyId)
}

func checkSigner(p Plan, cert *x509.Certificate, secret StoredSecret, lookupSigner SignerLookup, msgs *[]string) {
	if p.SignedBy == "" || p.SignedByAbsPath {
		return
	}

	if lookupSigner == nil {
		return
	}

	signerSecret, ok := lookupSigner(p.SignedBy)
	if !ok {
		*msgs = append(*msgs, fmt.Sprintf("signer %q not found in store export", p.SignedBy))

		return
	}

	signerCert, err := parseCertificate(signerSecret["certificate"])
	if err != nil {
		*msgs = append(*msgs, fmt.Sprintf("parse signer certificate: %s", err))

		return
	}

	if len(cert.AuthorityKeyId) > 0 && len(signerCert.SubjectKeyId) > 0 {
		if string(cert.AuthorityKeyId) != string(signerCert.SubjectKeyId) {
			*msgs = append(*msgs, "authority key id does not match signer's subject key id")
		}

		return
	}

	if err := cert.CheckSignatureFrom(signerCert); err != nil {
		*msgs = append(*msgs, fmt.Sprintf("signature chain verification failed: %s", err))
	}

	_ = secret
}

func withinValidityWindow(cert *x509.Certificate) bool {
	now := time.Now()

	return !now.Before(cert.NotBefore) && !now.After(cert.NotAfter)
}

// validityWindowNote reports the certificate's standing relative to now.
// A certificate outside its window is still reported here rather than
// failing validation outright — the caller decides severity from other
// checks; the expiry/age is informational context in the result message.
func validityWindowNote(cert *x509.Certificate) string {
	now := time.Now()

	switch {
	case now.Before(cert.NotBefore):
		return fmt.Sprintf("not yet valid (starts %s)", cert.NotBefore)
	case now.After(cert.NotAfter):
		days := int(now.Sub(cert.NotAfter).Hours() / 24)
		return fmt.Sprintf("expired %d days ago", days)
	default:
		days := int(cert.NotAfter.Sub(now).Hours() / 24)
		return fmt.Sprintf("valid, %d days until expiry", days)
	}
}

// keyUsageTokens maps openssl-style key usage names to the fixed token
// vocabulary plans declare; non_repudiation and content_commitment are
// treated as equivalent, one satisfying the other.
var keyUsageTokens = map[x509.KeyUsage]string{
	x509.KeyUsageDigitalSignature: "digital_signature",
	x509.KeyUsageContentCommitment: "non_repudiation",
	x509.KeyUsageKeyEncipherment:  "key_encipherment",
	x509.KeyUsageDataEncipherment: "data_encipherment",
	x509.KeyUsageKeyAgreement:     "key_agreement",
	x509.KeyUsageCertSign:         "key_cert_sign",
	x509.KeyUsageCRLSign:          "crl_sign",
}

var extKeyUsageTokens = map[x509.ExtKeyUsage]string{
	x509.ExtKeyUsageServerAuth: "server_auth",
	x509.ExtKeyUsageClientAuth: "client_auth",
}

func checkKeyUsage(p Plan, cert *x509.Certificate, msgs *[]string) {
	if len(p.Usage) == 0 {
		return
	}

	have := make(map[string]bool)

	for bit, token := range keyUsageTokens {
		if cert.KeyUsage&bit != 0 {
			have[token] = true

			if token == "non_repudiation" {
				have["content_commitment"] = true
			}
		}
	}

	for _, eku := range cert.ExtKeyUsage {
		if token, ok := extKeyUsageTokens[eku]; ok {
			have[token] = true
		}
	}

	for _, want := range p.Usage {
		if have[want] {
			continue
		}

		if want == "non_repudiation" && have["content_commitment"] {
			continue
		}

		if want == "content_commitment" && have["non_repudiation"] {
			continue
		}

		*msgs = append(*msgs, fmt.Sprintf("missing key usage %q", want))
	}
}

func compareSANs(have []string, planNames []string) (extras, missing []string) {
	var want []string
	if len(planNames) > 1 {
		want = planNames[1:]
	}

	wantSet := make(map[string]bool, len(want))
	for _, w := range want {
		wantSet[w] = true
	}

	haveSet := make(map[string]bool, len(have))
	for _, h := range have {
		haveSet[h] = true

		if !wantSet[h] {
			extras = append(extras, h)
		}
	}

	for _, w := range want {
		if !haveSet[w] {
			missing = append(missing, w)
		}
	}

	return extras, missing
}

func parseCertificate(pemText string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	return x509.ParseCertificate(block.Bytes)
}

func parsePrivateKey(pemText string) (interface {
	Public() any
}, error) {
	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err == nil {
		return rsaKey{key}, nil
	}

	generic, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("unrecognized private key format: %w", err)
	}

	if rsaK, ok := generic.(*rsa.PrivateKey); ok {
		return rsaKey{rsaK}, nil
	}

	return nil, fmt.Errorf("unsupported private key type")
}

type rsaKey struct{ *rsa.PrivateKey }

func (k rsaKey) Public() any { return &k.PrivateKey.PublicKey }

func validateRSA(p Plan, secret StoredSecret) ValidationResult {
	key, err := parsePrivateKey(secret["private"])
	if err != nil {
		return ValidationResult{Plan: p, Status: StatusError, Message: fmt.Sprintf("parse private key: %s", err)}
	}

	block, _ := pem.Decode([]byte(secret["public"]))
	if block == nil {
		return ValidationResult{Plan: p, Status: StatusError, Message: "public key is not valid PEM"}
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return ValidationResult{Plan: p, Status: StatusError, Message: fmt.Sprintf("parse public key: %s", err)}
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return ValidationResult{Plan: p, Status: StatusError, Message: "public key is not RSA"}
	}

	privPub, _ := key.Public().(*rsa.PublicKey)
	if privPub == nil || rsaPub.N.Cmp(privPub.N) != 0 {
		return ValidationResult{Plan: p, Status: StatusError, Message: "stored public key does not match private key"}
	}

	if rsaPub.N.BitLen() != p.Size {
		return ValidationResult{Plan: p, Status: StatusWarn, Message: fmt.Sprintf("bit size %d does not match expected %d", rsaPub.N.BitLen(), p.Size)}
	}

	return ValidationResult{Plan: p, Status: StatusOK, Message: "rsa key pair valid"}
}

func validateSSH(p Plan, secret StoredSecret) ValidationResult {
	signer, err := ssh.ParsePrivateKey([]byte(secret["private"]))
	if err != nil {
		return ValidationResult{Plan: p, Status: StatusError, Message: fmt.Sprintf("parse private key: %s", err)}
	}

	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(secret["public"]))
	if err != nil {
		return ValidationResult{Plan: p, Status: StatusError, Message: fmt.Sprintf("parse public key: %s", err)}
	}

	if string(pub.Marshal()) != string(signer.PublicKey().Marshal()) {
		return ValidationResult{Plan: p, Status: StatusError, Message: "stored public key does not match private key"}
	}

	if cryptoSize, ok := sshKeyBits(signer.PublicKey()); ok && cryptoSize != p.Size {
		return ValidationResult{Plan: p, Status: StatusWarn, Message: fmt.Sprintf("bit size %d does not match expected %d", cryptoSize, p.Size)}
	}

	return ValidationResult{Plan: p, Status: StatusOK, Message: "ssh key pair valid"}
}

func sshKeyBits(pub ssh.PublicKey) (int, bool) {
	cryptoKey, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return 0, false
	}

	rsaPub, ok := cryptoKey.CryptoPublicKey().(*rsa.PublicKey)
	if !ok {
		return 0, false
	}

	return rsaPub.N.BitLen(), true
}

func validateDHParam(p Plan, secret StoredSecret) ValidationResult {
	block, _ := pem.Decode([]byte(secret["dhparam-pem"]))
	if block == nil {
		return ValidationResult{Plan: p, Status: StatusError, Message: "dhparam is not valid PEM"}
	}

	return ValidationResult{Plan: p, Status: StatusOK, Message: "dhparam structurally valid"}
}

func validateRandom(p Plan, secret StoredSecret) ValidationResult {
	value := secret[p.Key]
	if len(value) != p.Size {
		return ValidationResult{
			Plan:   p,
			Status: StatusWarn,
			Message: fmt.Sprintf("length %d does not match expected %d", len(value), p.Size),
		}
	}

	if p.ValidChars != "" {
		for _, r := range value {
			if !strings.ContainsRune(p.ValidChars, r) {
				return ValidationResult{Plan: p, Status: StatusError, Message: fmt.Sprintf("character %q not in allowed class %q", r, p.ValidChars)}
			}
		}
	}

	if p.Format != "" {
		dest := p.Destination
		if dest == "" {
			dest = p.Key + "-" + p.Format
		}

		if _, ok := secret[dest]; !ok {
			return ValidationResult{Plan: p, Status: StatusMissing, Message: fmt.Sprintf("paired key %q not present", dest)}
		}
	}

	return ValidationResult{Plan: p, Status: StatusOK, Message: "random value valid"}
}
