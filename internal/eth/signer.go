package eth

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs messages the way a browser wallet does for personal_sign.
type Signer struct {
	key *ecdsa.PrivateKey
}

// NewSigner wraps an existing private key
func NewSigner(key *ecdsa.PrivateKey) *Signer {
	return &Signer{key: key}
}

// GenerateSigner creates a signer with a fresh random key.
func GenerateSigner() (*Signer, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return NewSigner(key), nil
}

// SignerFromHex loads a signer from a hex private key, with or without 0x.
func SignerFromHex(hexKey string) (*Signer, error) {
	if len(hexKey) > 1 && hexKey[:2] == "0x" {
		hexKey = hexKey[2:]
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return NewSigner(key), nil
}

// Address returns the signer's checksummed address
func (s *Signer) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// SignMessage returns a 0x-prefixed personal_sign signature with v in {27,28}.
func (s *Signer) SignMessage(message string) (string, error) {
	sig, err := crypto.Sign(MessageHash(message), s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// LoginMessage builds the text the web client asks the wallet to sign.
func LoginMessage(address string, ts time.Time) string {
	return fmt.Sprintf("Sign this message to authenticate with Vibe Arcade.\n\nWallet: %s\nTimestamp: %d", address, ts.UnixMilli())
}
