package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	walletIDPrefix   = "WLT-"
	walletIDLength   = 6
	walletIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	walletIDAttempts = 3
)

var ErrWalletIDExhausted = errors.New("could not allocate a unique wallet id")

// NewWalletID returns WLT- followed by six random characters of A-Z0-9.
func NewWalletID() (string, error) {
	buf := make([]byte, walletIDLength)
	size := big.NewInt(int64(len(walletIDAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		buf[i] = walletIDAlphabet[n.Int64()]
	}
	return walletIDPrefix + string(buf), nil
}

// UniqueWalletID draws wallet IDs until exists reports a free one, giving up
// after three collisions.
func UniqueWalletID(ctx context.Context, exists func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < walletIDAttempts; i++ {
		id, err := NewWalletID()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", ErrWalletIDExhausted
}
