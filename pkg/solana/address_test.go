package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"hash"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSeeds = [][]byte{[]byte("Lil'"), []byte("Bits")}

// fixedHash wraps sha256 but always sums to a fixed value.
type fixedHash struct {
	hash.Hash
	sum []byte
}

func (h fixedHash) Sum([]byte) []byte {
	return h.sum
}

// useOnCurveHash makes every program address candidate a valid curve point.
func useOnCurveHash(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	programHashCtor = func() hash.Hash {
		return fixedHash{Hash: sha256.New(), sum: pub}
	}
	t.Cleanup(func() {
		programHashCtor = sha256.New
	})
}

func mustDecode(t *testing.T, value string) []byte {
	decoded, err := base58.Decode(value)
	require.NoError(t, err)
	return decoded
}

func TestCreateProgramAddress(t *testing.T) {
	// "SeedPubey" is spelled as in the upstream test the vectors come from
	seedKey := mustDecode(t, "SeedPubey1111111111111111111111111111111111")
	program := mustDecode(t, "BPFLoader1111111111111111111111111111111111")

	for _, tc := range []struct {
		seeds    [][]byte
		expected string
	}{
		{[][]byte{{}, {1}}, "3gF2KMe9KiC6FNVBmfg9i267aMPvK37FewCip4eGBFcT"},
		{[][]byte{[]byte("☉")}, "7ytmC1nT1xY4RfxCV2ZgyA7UakC93do5ZdyhdF3EtPj7"},
		{[][]byte{[]byte("Talking"), []byte("Squirrels")}, "HwRVBufQ4haG5XSgpspwKtNd3PC9GM9m1196uJW36vds"},
		{[][]byte{seedKey}, "GUs5qLUfsEHkcMB9T38vjr18ypEhRuNWiePW2LoK4E3K"},
	} {
		address, err := CreateProgramAddress(program, tc.seeds...)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, base58.Encode(address))
	}

	// Seed boundaries are part of the hash input
	a, err := CreateProgramAddress(program, []byte("Talking"))
	require.NoError(t, err)
	b, err := CreateProgramAddress(program, []byte("Talking"), []byte("Squirrels"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCreateProgramAddress_SeedLimits(t *testing.T) {
	program := mustDecode(t, "BPFLoader1111111111111111111111111111111111")

	_, err := CreateProgramAddress(program, make([]byte, maxSeedLength))
	assert.NoError(t, err)

	_, err = CreateProgramAddress(program, make([]byte, maxSeedLength+1))
	assert.Equal(t, ErrMaxSeedLengthExceeded, err)

	_, err = CreateProgramAddress(program, []byte("short seed"), make([]byte, maxSeedLength+1))
	assert.Equal(t, ErrMaxSeedLengthExceeded, err)

	_, err = CreateProgramAddress(program, make([][]byte, maxSeeds+1)...)
	assert.Equal(t, ErrTooManySeeds, err)
}

func TestCreateProgramAddress_OnCurve(t *testing.T) {
	useOnCurveHash(t)

	program, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	_, err = CreateProgramAddress(program, testSeeds...)
	assert.Equal(t, ErrInvalidPublicKey, err)
}

func TestFindProgramAddress_Reference(t *testing.T) {
	for program, expected := range map[string]string{
		"4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM":  "Bn9pAWUXWc5Kd849xTkQcHqiCbHUEizLFn4r5Cf8XYnd",
		"8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh":  "oDvUHiiGdMo31xYzjefAzUekWH8EbCKrxgs2FkyTs1S",
		"CiDwVBFgWV9E5MvXWoLgnEgn2hK7rJikbvfWavzAQz3":  "B2vBn2bmF9GuaGkebrm8oUqDC34pE6m4bagjNcVE6msv",
		"GcdayuLaLyrdmUu324nahyv33G5poQdLUEZ1nEytDeP":  "2mN5Nfq9v1EwTV9FPTHPESZ3XiZce9wi5PQoULFuxvev",
		"LX3EUdRUBUa3TbsYXLEUdj9J3prXkWXvLYSWyYyc2Jj":  "9CqF6oTZtW5zSeoLnZRoQmj3s2tXGPqifM1W8Z8LVE1z",
		"QRSsyMWN1yHT9ir42bgNZUNZ4PdEhcSWCrL2AryKpy5":  "FwBDYafabYZLDC8FwaDCsLxWkKnaQxKuQv3afDAGiXJ8",
		"21Z7hRtGQYRi8NocdZzhRuBRt9UZbFXbm1dKYvevp4vB": "9PPbRbNP3rqwzk16r7NDBzk1YDfo9EpWDWSqCYLn5eaF",
		"2M59vuWgsiuHAqQVB6KvuXuaBCJR8138gMAm4uCuR6Du": "E5dLtHAM353EPnHyuZ32sKREn26VW4Y8bzb2KQJTBHQh",
	} {
		actual, err := FindProgramAddress(mustDecode(t, program), testSeeds...)
		require.NoError(t, err)
		assert.Equal(t, expected, base58.Encode(actual), program)
	}
}

func TestFindProgramAddressAndBump(t *testing.T) {
	for i := 0; i < 500; i++ {
		program, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)

		address, bump, err := FindProgramAddressAndBump(program, testSeeds...)
		require.NoError(t, err)
		assert.False(t, IsOnCurve(address))

		// The returned bump reproduces the address directly
		direct, err := CreateProgramAddress(program, append(append([][]byte{}, testSeeds...), []byte{bump})...)
		require.NoError(t, err)
		assert.Equal(t, address, direct)
	}
}

func TestFindProgramAddress_Exhausted(t *testing.T) {
	useOnCurveHash(t)

	program, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	address, bump, err := FindProgramAddressAndBump(program, testSeeds...)
	assert.Equal(t, ErrNoProgramAddress, err)
	assert.Nil(t, address)
	assert.Zero(t, bump)
}

func TestFindProgramAddress_InvalidProgram(t *testing.T) {
	_, _, err := FindProgramAddressAndBump([]byte{1, 2, 3}, testSeeds...)
	assert.Error(t, err)
}

func TestFindProgramAddress_SeedsUnmodified(t *testing.T) {
	program, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	// Spare capacity in the caller's slice must not receive the bump seed
	sentinel := []byte("sentinel")
	seeds := append(append(make([][]byte, 0, 3), testSeeds...), sentinel)[:2]

	first, firstBump, err := FindProgramAddressAndBump(program, seeds...)
	require.NoError(t, err)
	assert.Equal(t, sentinel, seeds[:3][2])

	second, secondBump, err := FindProgramAddressAndBump(program, seeds...)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, firstBump, secondBump)
}

func TestIsOnCurve(t *testing.T) {
	for i := 0; i < 100; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		assert.True(t, IsOnCurve(pub))

		address, err := FindProgramAddress(pub, testSeeds...)
		require.NoError(t, err)
		assert.False(t, IsOnCurve(address))
	}

	assert.False(t, IsOnCurve([]byte{1, 2, 3}))
}
