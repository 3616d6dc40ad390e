package types

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/multiformats/go-varint"
	"github.com/pkg/errors"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-address"
	builtintypes "github.com/filecoin-project/go-state-types/builtin"
)

const EthAddressLength = 20

// Chain ids of Filecoin mainnet and the calibration testnet.
const (
	FilecoinMainnetChainID     = 314
	FilecoinCalibrationChainID = 314159
)

var maskedIDPrefix = [20 - 8]byte{0xff}

var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrEmptyAddress    = errors.New("empty address string")
	ErrInvalidHex      = errors.New("invalid hex address")
	ErrInvalidChecksum = errors.New("bad address checksum")
)

// IsFilecoinChain reports whether chainID belongs to a Filecoin network,
// where f0 and f410 addresses have an Ethereum form.
func IsFilecoinChain(chainID *big.Int) bool {
	if chainID == nil || !chainID.IsUint64() {
		return false
	}
	switch chainID.Uint64() {
	case FilecoinMainnetChainID, FilecoinCalibrationChainID:
		return true
	}
	return false
}

// AddressParser validates recipient addresses. Only hex addresses are
// accepted unless Filecoin is set.
type AddressParser struct {
	// Filecoin enables f0 / f410 addresses. Only meaningful on Filecoin
	// chains: elsewhere the converted address has no owner.
	Filecoin bool
}

// Parse accepts a hex address, with or without the 0x prefix. Mixed-case
// hex must carry a valid EIP-55 checksum.
func (p AddressParser) Parse(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Address{}, ErrEmptyAddress
	}

	if common.IsHexAddress(s) {
		addr := common.HexToAddress(s)
		digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
		if isMixedCase(digits) && addr.Hex()[2:] != digits {
			return common.Address{}, fmt.Errorf("%w: %s", ErrInvalidChecksum, s)
		}
		return addr, nil
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return common.Address{}, fmt.Errorf("%w: %s", ErrInvalidHex, s)
	}

	if !p.Filecoin {
		return common.Address{}, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}

	addr, err := EthAddressFromFilecoinAddressString(s)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %s: %v", ErrInvalidAddress, s, err)
	}
	return addr, nil
}

// Valid reports whether s is accepted by Parse.
func (p AddressParser) Valid(s string) bool {
	_, err := p.Parse(s)
	return err == nil
}

// ParseAddress parses a hex address.
func ParseAddress(s string) (common.Address, error) {
	return AddressParser{}.Parse(s)
}

// IsValidAddress reports whether s is accepted by ParseAddress.
func IsValidAddress(s string) bool {
	return AddressParser{}.Valid(s)
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}

type EthAddress [EthAddressLength]byte

func (ea EthAddress) ToFilecoinAddress() (address.Address, error) {
	if ea.IsMaskedID() {
		// This is a masked ID address.
		id := binary.BigEndian.Uint64(ea[12:])
		return address.NewIDAddress(id)
	}

	// Otherwise, translate the address into an address controlled by the
	// Ethereum Address Manager.
	addr, err := address.NewDelegatedAddress(builtintypes.EthereumAddressManagerActorID, ea[:])
	if err != nil {
		return address.Undef, fmt.Errorf("failed to translate supplied address (%s) into a "+
			"Filecoin f4 address: %w", hex.EncodeToString(ea[:]), err)
	}
	return addr, nil
}

func (ea EthAddress) IsMaskedID() bool {
	return bytes.HasPrefix(ea[:], maskedIDPrefix[:])
}

func EthAddressFromFilecoinAddressString(addr string) (common.Address, error) {
	if addr == "" {
		return common.Address{}, ErrEmptyAddress
	}

	filecoinAddr, err := address.NewFromString(addr)
	if err != nil {
		return common.Address{}, err
	}

	ethAddr, err := EthAddressFromFilecoinAddress(filecoinAddr)
	if err != nil {
		return common.Address{}, err
	}

	return common.BytesToAddress(ethAddr[:]), nil
}

func EthAddressFromFilecoinAddress(addr address.Address) (EthAddress, error) {
	switch addr.Protocol() {
	case address.ID:
		id, err := address.IDFromAddress(addr)
		if err != nil {
			return EthAddress{}, err
		}
		var ethaddr EthAddress
		ethaddr[0] = 0xff
		binary.BigEndian.PutUint64(ethaddr[12:], id)
		return ethaddr, nil
	case address.Delegated:
		payload := addr.Payload()
		namespace, n, err := varint.FromUvarint(payload)
		if err != nil {
			return EthAddress{}, xerrors.Errorf("invalid delegated address namespace in: %s", addr)
		}
		payload = payload[n:]
		if namespace != builtintypes.EthereumAddressManagerActorID {
			return EthAddress{}, ErrInvalidAddress
		}
		ethAddr, err := CastEthAddress(payload)
		if err != nil {
			return EthAddress{}, err
		}
		if ethAddr.IsMaskedID() {
			return EthAddress{}, xerrors.Errorf("f410f addresses cannot embed masked-ID payloads: %s", ethAddr)
		}
		return ethAddr, nil
	}
	return EthAddress{}, ErrInvalidAddress
}

func CastEthAddress(b []byte) (EthAddress, error) {
	var a EthAddress
	if len(b) != EthAddressLength {
		return EthAddress{}, xerrors.Errorf("cannot parse bytes into an EthAddress: incorrect input length")
	}
	copy(a[:], b[:])
	return a, nil
}

// FilecoinAddress returns the Filecoin form of an Ethereum address: the ID
// address for masked IDs, the f410 delegated address otherwise.
func FilecoinAddress(addr common.Address) (address.Address, error) {
	ea, err := CastEthAddress(addr.Bytes())
	if err != nil {
		return address.Undef, err
	}
	return ea.ToFilecoinAddress()
}
