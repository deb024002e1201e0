package service

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

func newID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func newStamp() string {
	bytes := make([]byte, 20)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// newResetCode draws a 6-digit code uniformly from 100000-999999.
func newResetCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand only fails when the platform source is broken;
		// treat it as fatal misconfiguration.
		panic(err)
	}
	code := n.Int64() + 100000
	return big.NewInt(code).String()
}
