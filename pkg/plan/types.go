// Package plan implements the Secret Plan Parser, Plan Orderer, Plan
// Executor and Plan Validator: the tagged-union credential plan records
// derived from kit metadata, their x509 signing-dependency ordering, the
// opaque command sequences issued against the Store Client, and the
// post-deploy validation checks run over stored secrets.
package plan

import "fmt"

// Kind tags which Plan variant a record holds.
type Kind string

const (
	KindX509     Kind = "x509"
	KindRSA      Kind = "rsa"
	KindSSH      Kind = "ssh"
	KindDHParams Kind = "dhparams"
	KindRandom   Kind = "random"
	KindError    Kind = "error"
)

// SelfSigned levels, per the Secret Plan glossary entry.
const (
	SelfSignedNone     = 0
	SelfSignedImplicit = 1
	SelfSignedExplicit = 2
)

// Plan is one credential record, one per unique credential path. Only the
// fields relevant to Kind are populated; the zero value of the rest is
// meaningless and must not be read.
type Plan struct {
	Kind Kind
	Path string

	// x509
	BasePath        string
	IsCA            bool
	SignedBy        string
	SignedByAbsPath bool
	SelfSigned      int
	Names           []string
	Usage           []string
	ValidFor        string

	// rsa / ssh / dhparams
	Size  int
	Fixed bool

	// random
	Key         string
	Format      string
	Destination string
	ValidChars  string

	// error
	Error string
}

// AsError returns a copy of p converted to the error variant, carrying msg.
func (p Plan) AsError(msg string) Plan {
	return Plan{Kind: KindError, Path: p.Path, Error: msg}
}

// ExpectedKeys returns the set of stored-secret keys the plan requires to
// exist, per the Stored Secret glossary entry.
func (p Plan) ExpectedKeys() []string {
	switch p.Kind {
	case KindX509:
		keys := []string{"certificate", "combined", "key"}
		if p.IsCA {
			keys = append(keys, "crl", "serial")
		}

		return keys
	case KindRSA:
		return []string{"private", "public"}
	case KindSSH:
		return []string{"private", "public", "fingerprint"}
	case KindDHParams:
		return []string{"dhparam-pem"}
	case KindRandom:
		keys := []string{p.Key}
		if p.Format != "" {
			dest := p.Destination
			if dest == "" {
				dest = p.Key + "-" + p.Format
			}

			keys = append(keys, dest)
		}

		return keys
	default:
		return nil
	}
}

func (p Plan) String() string {
	if p.Kind == KindError {
		return fmt.Sprintf("error(%s): %s", p.Path, p.Error)
	}

	return fmt.Sprintf("%s(%s)", p.Kind, p.Path)
}
