package abi

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

const (
	addrPrefix = "phx"
	addrVer    = 0x01
)

// Address renders the public key as a base58check string.
func (pk PublicKey) Address() string {
	return addrPrefix + base58.CheckEncode(pk[:], addrVer)
}

// ParseAddress is the inverse of PublicKey.Address.
func ParseAddress(addr string) (PublicKey, error) {
	var pk PublicKey
	if !strings.HasPrefix(addr, addrPrefix) {
		return pk, fmt.Errorf("wrong prefix: got(%q)", addr[:min(len(addr), len(addrPrefix))])
	}
	bz, ver, err := base58.CheckDecode(addr[len(addrPrefix):])
	if err != nil {
		return pk, err
	}
	if ver != addrVer {
		return pk, fmt.Errorf("wrong version: expected(%d), got(%d)", addrVer, ver)
	}
	if len(bz) != PublicKeySize {
		return pk, Malformed(PublicKeyLayout.Name, "address", fmt.Errorf("payload is %d bytes", len(bz)))
	}
	copy(pk[:], bz)
	return pk, nil
}
