package fhash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/minio/sha256-simd"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm selects the digest a session computes.
type Algorithm int

const (
	SHA256 Algorithm = iota
	SHA512
	SHA1
	MD5
	BLAKE3
	BLAKE2b256
	SHA3_256
)

var algorithmNames = [...]string{
	SHA256:     "sha256",
	SHA512:     "sha512",
	SHA1:       "sha1",
	MD5:        "md5",
	BLAKE3:     "blake3",
	BLAKE2b256: "blake2b-256",
	SHA3_256:   "sha3-256",
}

// Algorithms returns every supported algorithm in display order.
func Algorithms() []Algorithm {
	all := make([]Algorithm, len(algorithmNames))
	for i := range algorithmNames {
		all[i] = Algorithm(i)
	}
	return all
}

func (a Algorithm) known() bool {
	return a >= 0 && int(a) < len(algorithmNames)
}

func (a Algorithm) String() string {
	if !a.known() {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithmNames[a]
}

// ParseAlgorithm accepts names case-insensitively, with or without the
// dash between family and size ("SHA-256", "sha256", "blake2b256").
func ParseAlgorithm(name string) (Algorithm, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")
	for i, candidate := range algorithmNames {
		if strings.ReplaceAll(candidate, "-", "") == normalized {
			return Algorithm(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// New returns a fresh incremental hash for the algorithm. It panics on
// a value outside Algorithms(); StartSession rejects those up front.
func (a Algorithm) New() hash.Hash {
	switch a {
	case SHA256:
		return sha256.New()
	case SHA512:
		return sha512.New()
	case SHA1:
		return sha1.New()
	case MD5:
		return md5.New()
	case BLAKE3:
		return blake3.New()
	case BLAKE2b256:
		// New256 only fails for keys longer than 64 bytes.
		h, _ := blake2b.New256(nil)
		return h
	case SHA3_256:
		return sha3.New256()
	default:
		panic(fmt.Sprintf("fhash: unknown algorithm %d", int(a)))
	}
}

// Size is the digest length in bytes.
func (a Algorithm) Size() int {
	return a.New().Size()
}

// EmptyDigest is the digest of zero bytes of input.
func (a Algorithm) EmptyDigest() Digest {
	return Digest(a.New().Sum(nil))
}

// Digest is the finalized output of a hash.
type Digest []byte

// String returns the lower-case hex encoding used in all output.
func (d Digest) String() string {
	return hex.EncodeToString(d)
}

// Equal reports whether the digest matches a hex string, ignoring case.
func (d Digest) Equal(hexDigest string) bool {
	return strings.EqualFold(d.String(), strings.TrimSpace(hexDigest))
}

// ParseDigest decodes a hex digest and checks its length against the
// algorithm.
func ParseDigest(algorithm Algorithm, hexDigest string) (Digest, error) {
	decoded, err := hex.DecodeString(strings.TrimSpace(hexDigest))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpectedDigest, err)
	}
	if len(decoded) != algorithm.Size() {
		return nil, fmt.Errorf("%w: %s digest is %d bytes, got %d",
			ErrInvalidExpectedDigest, algorithm, algorithm.Size(), len(decoded))
	}
	return Digest(decoded), nil
}
