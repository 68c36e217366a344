// Package eth holds the Ethereum primitives the wallet login depends on:
// EIP-191 personal_sign hashing, signer recovery and a local signer.
package eth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is r || s || v
const SignatureLength = 65

var (
	ErrMalformedSignature = errors.New("malformed signature")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrAddressMismatch    = errors.New("recovered address does not match")
)

// IsAddress reports whether s is a 0x-prefixed 20 byte hex address.
func IsAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	return common.IsHexAddress(s)
}

// MessageHash returns the personal_sign digest of message.
func MessageHash(message string) []byte {
	return accounts.TextHash([]byte(message))
}

// RecoverAddress returns the address that produced signature over message
// with personal_sign. The result is EIP-55 checksummed.
func RecoverAddress(message, signature string) (common.Address, error) {
	sig, err := decodeSignature(signature)
	if err != nil {
		return common.Address{}, err
	}

	pub, err := crypto.SigToPub(MessageHash(message), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// VerifyMessage recovers the signer of message and compares it to claimed,
// ignoring letter case. It returns the recovered address.
func VerifyMessage(claimed, message, signature string) (common.Address, error) {
	if !IsAddress(claimed) {
		return common.Address{}, ErrInvalidAddress
	}

	recovered, err := RecoverAddress(message, signature)
	if err != nil {
		return common.Address{}, err
	}

	if !strings.EqualFold(recovered.Hex(), common.HexToAddress(claimed).Hex()) {
		return recovered, ErrAddressMismatch
	}

	return recovered, nil
}

// decodeSignature parses a hex signature and moves v into the {0,1} range
// expected by secp256k1 recovery. Wallets emit 27/28.
func decodeSignature(signature string) ([]byte, error) {
	if !strings.HasPrefix(signature, "0x") && !strings.HasPrefix(signature, "0X") {
		signature = "0x" + signature
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("%w: signature must be %d bytes", ErrMalformedSignature, SignatureLength)
	}

	switch v := sig[crypto.RecoveryIDOffset]; v {
	case 0, 1:
	case 27, 28:
		sig[crypto.RecoveryIDOffset] = v - 27
	default:
		return nil, fmt.Errorf("%w: invalid recovery id %d", ErrMalformedSignature, v)
	}

	return sig, nil
}
