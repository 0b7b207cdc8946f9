// SPDX-License-Identifier: MPL-2.0

package hashreport

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

const (
	// AlgorithmSHA256 produces lowercase hex SHA-256 digests.
	AlgorithmSHA256 Algorithm = "sha256"
	// AlgorithmCID produces CIDv1 strings (raw codec, sha2-256 multihash).
	AlgorithmCID Algorithm = "cid"
)

// ErrInvalidAlgorithm is the sentinel error wrapped by InvalidAlgorithmError.
var ErrInvalidAlgorithm = errors.New("invalid hash algorithm")

type (
	// Algorithm names a content digest implementation.
	Algorithm string

	// Digester turns file content into the hash string stored in a FileReport.
	Digester interface {
		Name() Algorithm
		Digest(r io.Reader) (string, error)
	}

	// SHA256Digester hashes content with SHA-256.
	SHA256Digester struct{}

	// CIDDigester addresses content with a CIDv1 over a sha2-256 multihash.
	CIDDigester struct{}

	// InvalidAlgorithmError is returned when an Algorithm value is not recognized.
	InvalidAlgorithmError struct {
		Value Algorithm
	}
)

// NewDigester returns the Digester for alg.
func NewDigester(alg Algorithm) (Digester, error) {
	switch Algorithm(strings.ToLower(string(alg))) {
	case AlgorithmSHA256, "":
		return SHA256Digester{}, nil
	case AlgorithmCID:
		return CIDDigester{}, nil
	default:
		return nil, &InvalidAlgorithmError{Value: alg}
	}
}

// String returns the string representation of the Algorithm.
func (a Algorithm) String() string { return string(a) }

// IsValid returns whether the Algorithm is one of the defined algorithms.
func (a Algorithm) IsValid() (bool, []error) {
	switch a {
	case AlgorithmSHA256, AlgorithmCID:
		return true, nil
	default:
		return false, []error{&InvalidAlgorithmError{Value: a}}
	}
}

// Error implements the error interface for InvalidAlgorithmError.
func (e *InvalidAlgorithmError) Error() string {
	return fmt.Sprintf("invalid hash algorithm %q (valid: sha256, cid)", e.Value)
}

// Unwrap returns ErrInvalidAlgorithm for errors.Is() compatibility.
func (e *InvalidAlgorithmError) Unwrap() error { return ErrInvalidAlgorithm }

// Name implements Digester.
func (SHA256Digester) Name() Algorithm { return AlgorithmSHA256 }

// Digest implements Digester.
func (SHA256Digester) Digest(r io.Reader) (string, error) {
	sum, err := sha256Sum(r)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

// Name implements Digester.
func (CIDDigester) Name() Algorithm { return AlgorithmCID }

// Digest implements Digester.
func (CIDDigester) Digest(r io.Reader) (string, error) {
	sum, err := sha256Sum(r)
	if err != nil {
		return "", err
	}
	mh, err := multihash.Encode(sum, multihash.SHA2_256)
	if err != nil {
		return "", fmt.Errorf("encode multihash: %w", err)
	}
	return cid.NewCidV1(cid.Raw, multihash.Multihash(mh)).String(), nil
}

func sha256Sum(r io.Reader) ([]byte, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return h.Sum(nil), nil
}
