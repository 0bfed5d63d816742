package fhash

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drgo/fhash/testutils"
)

func TestEmptyDigests(t *testing.T) {
	tests := []struct {
		algorithm Algorithm
		want      string
	}{
		{SHA256, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{SHA512, "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"},
		{SHA1, "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{MD5, "d41d8cd98f00b204e9800998ecf8427e"},
		{BLAKE3, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
		{BLAKE2b256, "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"},
		{SHA3_256, "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"},
	}
	require.Len(t, tests, len(Algorithms()))
	for _, test := range tests {
		t.Run(test.algorithm.String(), func(t *testing.T) {
			assert.Equal(t, test.want, test.algorithm.EmptyDigest().String())
			assert.Equal(t, len(test.want)/2, test.algorithm.Size())
		})
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		input string
		want  Algorithm
	}{
		{"sha256", SHA256},
		{"SHA-256", SHA256},
		{" sha_512 ", SHA512},
		{"md5", MD5},
		{"BLAKE3", BLAKE3},
		{"blake2b256", BLAKE2b256},
		{"blake2b-256", BLAKE2b256},
		{"sha3-256", SHA3_256},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := ParseAlgorithm(test.input)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}

	_, err := ParseAlgorithm("crc32")
	assert.True(t, errors.Is(err, ErrUnknownAlgorithm), "got %v", err)
}

func TestAlgorithmRoundTripsThroughString(t *testing.T) {
	for _, algorithm := range Algorithms() {
		parsed, err := ParseAlgorithm(algorithm.String())
		require.NoError(t, err)
		assert.Equal(t, algorithm, parsed)
	}
	assert.Equal(t, "Algorithm(42)", Algorithm(42).String())
}

func TestParseDigest(t *testing.T) {
	sum := sha256.Sum256(testutils.Content(10))
	hexSum := Digest(sum[:]).String()

	digest, err := ParseDigest(SHA256, hexSum)
	require.NoError(t, err)
	assert.Equal(t, Digest(sum[:]), digest)

	tests := []struct {
		name  string
		input string
	}{
		{"not hex", "zz"},
		{"too short", "abcd"},
		{"wrong algorithm length", MD5.EmptyDigest().String()},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseDigest(SHA256, test.input)
			assert.True(t, errors.Is(err, ErrInvalidExpectedDigest), "got %v", err)
		})
	}
}

func TestDigestEqualIgnoresCase(t *testing.T) {
	digest := SHA256.EmptyDigest()
	assert.True(t, digest.Equal("E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855"))
	assert.False(t, digest.Equal(MD5.EmptyDigest().String()))
}
