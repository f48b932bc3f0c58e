package ledger

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/apostrophe-corp/daohub/types"
	eth_crypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrBadContractRef = errors.New("invalid contract reference")
	ErrClosed         = errors.New("proposal no longer accepting transactions")
	ErrUnknownAccount = errors.New("unknown account")
)

// Handle is an attached governing contract instance. Mutating calls return
// the remote's authoritative value directly; the corresponding notification
// may still arrive later through the subscriptions.
type Handle interface {
	Upvote(ctx context.Context) (uint64, error)
	Downvote(ctx context.Context) (uint64, error)
	Contribute(ctx context.Context, amount uint64) (uint64, error)
	ClaimRefund(ctx context.Context) (bool, error)
	SubscribeCreated(ctx context.Context, fn func(payload []byte)) error
	SubscribeResolutions(ctx context.Context, fn func(payload []byte)) error
}

// Ledger deploys and attaches governing contract instances.
type Ledger interface {
	Deploy(ctx context.Context, p types.InitialProposal) (string, error)
	Attach(ctx context.Context, contractRef string) (Handle, error)
}

// Account is a wallet-held signing identity. Owner fields on proposals carry
// its address.
type Account struct {
	Address string
	key     *ecdsa.PrivateKey
}

func (a *Account) Sign(data []byte) ([]byte, error) {
	return eth_crypto.Sign(eth_crypto.Keccak256(data), a.key)
}

// Secret returns the hex-encoded private key, suitable for a key file.
func (a *Account) Secret() string {
	return hex.EncodeToString(eth_crypto.FromECDSA(a.key))
}

// Wallet creates, imports and inspects accounts. Currency-unit conversion
// stays outside the engine; balances are atomic units.
type Wallet interface {
	NewAccount(ctx context.Context, initialBalance uint64) (*Account, error)
	ImportAccount(ctx context.Context, secret string) (*Account, error)
	Balance(ctx context.Context, acct *Account) (uint64, error)
}

// NewRandomAccount generates a fresh signing identity. The caller owns
// persisting the secret.
func NewRandomAccount() (*Account, error) {
	return generateAccount()
}

func generateAccount() (*Account, error) {
	key, err := eth_crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Account{
		Address: eth_crypto.PubkeyToAddress(key.PublicKey).Hex(),
		key:     key,
	}, nil
}

func accountFromSecret(secret string) (*Account, error) {
	key, err := eth_crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(secret), "0x"))
	if err != nil {
		return nil, fmt.Errorf("malformed account secret: %w", err)
	}
	return &Account{
		Address: eth_crypto.PubkeyToAddress(key.PublicKey).Hex(),
		key:     key,
	}, nil
}
