package chain

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ardanlabs/btcgateway/foundation/validate"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MaxIndex is the largest height or output index the node accepts. The node
// reads both as signed 32 bit integers.
const MaxIndex = 1<<31 - 1

// Digest represents a 32 byte double-SHA256 identifier such as a block hash
// or a transaction id.
type Digest struct {
	hash chainhash.Hash
}

// ParseDigest decodes a 64 character hex string into a Digest. The name is
// the path parameter being decoded and is used in the error returned.
func ParseDigest(name string, s string) (Digest, error) {
	if err := validate.Field(name, s, "required,len=64,hexadecimal"); err != nil {
		return Digest{}, err
	}

	hash, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return Digest{}, validate.NewFieldError(name, fmt.Errorf("%s must be a valid hexadecimal", name))
	}

	return Digest{hash: *hash}, nil
}

// String returns the hex form of the digest as displayed by the node.
func (d Digest) String() string {
	return d.hash.String()
}

// Bytes returns the 32 bytes of the digest in internal byte order.
func (d Digest) Bytes() []byte {
	return d.hash.CloneBytes()
}

// =============================================================================

// Index represents a block height or an output index.
type Index uint32

// ParseIndex decodes a base 10 non-negative integer within the range the node
// accepts.
func ParseIndex(name string, s string) (Index, error) {
	if err := validate.Field(name, s, "required,number"); err != nil {
		return 0, err
	}

	n, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, validate.NewFieldError(name, fmt.Errorf("%s must be %d or less", name, MaxIndex))
		}
		return 0, validate.NewFieldError(name, fmt.Errorf("%s must be a valid number", name))
	}

	return Index(n), nil
}

// ParseOutpoint decodes the txid and vout path parameters that address a
// transaction output. Problems with both parameters are reported together.
func ParseOutpoint(txid string, vout string) (Digest, Index, error) {
	var fields validate.FieldErrors

	d, err := ParseDigest("txid", txid)
	if err != nil {
		fe := validate.GetFieldErrors(err)
		if fe == nil {
			return Digest{}, 0, err
		}
		fields = append(fields, fe...)
	}

	n, err := ParseIndex("vout", vout)
	if err != nil {
		fe := validate.GetFieldErrors(err)
		if fe == nil {
			return Digest{}, 0, err
		}
		fields = append(fields, fe...)
	}

	if len(fields) > 0 {
		return Digest{}, 0, fields
	}

	return d, n, nil
}
