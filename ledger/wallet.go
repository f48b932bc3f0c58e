package ledger

import (
	"context"
	"sync"
)

// DevnetWallet funds freshly created accounts from an unlimited faucet and
// tracks balances in memory.
type DevnetWallet struct {
	mtx      sync.Mutex
	balances map[string]uint64
}

func NewDevnetWallet() *DevnetWallet {
	return &DevnetWallet{balances: make(map[string]uint64)}
}

func (w *DevnetWallet) NewAccount(ctx context.Context, initialBalance uint64) (*Account, error) {
	acct, err := generateAccount()
	if err != nil {
		return nil, err
	}
	w.mtx.Lock()
	w.balances[acct.Address] = initialBalance
	w.mtx.Unlock()
	return acct, nil
}

func (w *DevnetWallet) ImportAccount(ctx context.Context, secret string) (*Account, error) {
	acct, err := accountFromSecret(secret)
	if err != nil {
		return nil, err
	}
	w.mtx.Lock()
	if _, ok := w.balances[acct.Address]; !ok {
		w.balances[acct.Address] = 0
	}
	w.mtx.Unlock()
	return acct, nil
}

func (w *DevnetWallet) Balance(ctx context.Context, acct *Account) (uint64, error) {
	if acct == nil {
		return 0, ErrUnknownAccount
	}
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.balances[acct.Address], nil
}
