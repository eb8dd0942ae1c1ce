package authserver

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/rwx-research/lms-cli/internal/errors"
)

const (
	hashKeyLength  = 64
	blockKeyLength = 32
)

// deriveKeys expands one secret into independent HMAC and AES-256 keys for the cookie store.
func deriveKeys(secret []byte) (hashKey, blockKey []byte, err error) {
	hashKey = make([]byte, hashKeyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte("lms session hash")), hashKey); err != nil {
		return nil, nil, errors.Wrap(err, "unable to derive hash key")
	}

	blockKey = make([]byte, blockKeyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte("lms session block")), blockKey); err != nil {
		return nil, nil, errors.Wrap(err, "unable to derive block key")
	}

	return hashKey, blockKey, nil
}
