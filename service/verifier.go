package service

import (
	"errors"
	"fmt"

	"github.com/vibearcade/arcade/core"
	"github.com/vibearcade/arcade/internal/eth"
)

// SignatureVerifier checks that a personal_sign signature was produced by
// the claimed wallet. It has no side effects.
type SignatureVerifier struct{}

// NewSignatureVerifier creates a new verifier
func NewSignatureVerifier() *SignatureVerifier {
	return &SignatureVerifier{}
}

// Verify returns the recovered address when it equals claimedAddress,
// ignoring case. Every failure wraps core.ErrAuthentication.
func (v *SignatureVerifier) Verify(claimedAddress, message, signature string) (string, error) {
	recovered, err := eth.VerifyMessage(claimedAddress, message, signature)
	if err != nil {
		if errors.Is(err, eth.ErrInvalidAddress) {
			return "", fmt.Errorf("%w: %w", core.ErrAuthentication, core.ErrInvalidAddress)
		}
		return "", fmt.Errorf("%w: %w: %v", core.ErrAuthentication, core.ErrInvalidSignature, err)
	}
	return recovered.Hex(), nil
}
