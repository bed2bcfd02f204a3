package mopub

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/bidconnect/exchange-connector/errortypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "mopub-shared-secret"

func TestWinPriceRoundTrip(t *testing.T) {
	testCases := []struct {
		description string
		text        string
		expected    float64
	}{
		{description: "padded with zeros", text: "00001.50", expected: 1.5},
		{description: "integer", text: "00000012", expected: 12},
		{description: "fraction", text: "0.123456", expected: 0.123456},
		{description: "exponent", text: "2.5e-001", expected: 0.25},
	}

	for _, test := range testCases {
		encrypted, err := EncodeWinPrice(testSecret, test.text)
		require.NoError(t, err, test.description)
		assert.Len(t, encrypted, 16, test.description)
		assert.Equal(t, strings.ToUpper(encrypted), encrypted, test.description)

		price, err := DecodeWinPrice(testSecret, encrypted)
		require.NoError(t, err, test.description)
		assert.InDelta(t, test.expected, price, 1e-9, test.description)
	}
}

func TestDecryptWinPriceKnownAnswers(t *testing.T) {
	// Published Blowfish ECB vectors (Eric Young's test set).
	testCases := []struct {
		description string
		keyHex      string
		cipherHex   string
		plainHex    string
	}{
		{description: "zero key and block", keyHex: "0000000000000000", cipherHex: "4EF997456198DD78", plainHex: "0000000000000000"},
		{description: "all ones", keyHex: "FFFFFFFFFFFFFFFF", cipherHex: "51866FD5B85ECB8A", plainHex: "FFFFFFFFFFFFFFFF"},
		{description: "mixed key and block", keyHex: "3000000000000000", cipherHex: "7D856F9A613063F2", plainHex: "1000000000000001"},
		{description: "repeated nibbles", keyHex: "1111111111111111", cipherHex: "2466DD878B963C9D", plainHex: "1111111111111111"},
	}

	for _, test := range testCases {
		key, err := hex.DecodeString(test.keyHex)
		require.NoError(t, err, test.description)
		expected, err := hex.DecodeString(test.plainHex)
		require.NoError(t, err, test.description)

		plain, err := decryptWinPrice(string(key), test.cipherHex)
		require.NoError(t, err, test.description)
		assert.Equal(t, expected, plain[:], test.description)
	}
}

func TestDecodeWinPriceKnownAnswers(t *testing.T) {
	testCases := []struct {
		description string
		winPrice    string
		expected    float64
	}{
		{description: "padded price", winPrice: "276CA8C69BF8382B", expected: 1.5},
		{description: "lower case hex", winPrice: "276ca8c69bf8382b", expected: 1.5},
		{description: "exponent", winPrice: "7367EE2F59624573", expected: 0.25},
	}

	for _, test := range testCases {
		price, err := DecodeWinPrice(testSecret, test.winPrice)
		require.NoError(t, err, test.description)
		assert.Equal(t, test.expected, price, test.description)
	}
}

func TestEncodeWinPriceKnownAnswer(t *testing.T) {
	encrypted, err := EncodeWinPrice(testSecret, "00001.50")
	require.NoError(t, err)
	assert.Equal(t, "276CA8C69BF8382B", encrypted)
}

func TestDecodeWinPriceRejectsNonDecimalText(t *testing.T) {
	testCases := []struct {
		description string
		winPrice    string
	}{
		{description: "hex float 0x1p-002", winPrice: "F74768ED3D39116A"},
		{description: "hex float with underscore 0x1_0p+0", winPrice: "40FDF9D3246A1021"},
		{description: "underscore digits 1_000.50", winPrice: "0030141EEA9F9251"},
	}

	for _, test := range testCases {
		price, err := DecodeWinPrice(testSecret, test.winPrice)
		assert.IsType(t, &errortypes.DecodeError{}, err, test.description)
		assert.Zero(t, price, test.description)
	}
}

func TestDecodeWinPriceIsCaseInsensitive(t *testing.T) {
	encrypted, err := EncodeWinPrice(testSecret, "00003.25")
	require.NoError(t, err)

	upper, err := DecodeWinPrice(testSecret, encrypted)
	require.NoError(t, err)
	lower, err := DecodeWinPrice(testSecret, strings.ToLower(encrypted))
	require.NoError(t, err)

	assert.Equal(t, 3.25, upper)
	assert.Equal(t, upper, lower)
}

func TestDecodeWinPriceIsDeterministic(t *testing.T) {
	encrypted, err := EncodeWinPrice(testSecret, "00000.75")
	require.NoError(t, err)

	first, err := DecodeWinPrice(testSecret, encrypted)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := DecodeWinPrice(testSecret, encrypted)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDecodeWinPriceMalformed(t *testing.T) {
	testCases := []struct {
		description string
		winPrice    string
	}{
		{description: "empty", winPrice: ""},
		{description: "too short", winPrice: "0123456789ABCDE"},
		{description: "too long", winPrice: "0123456789ABCDEF0"},
		{description: "non hex character", winPrice: "0123456789ABCDEG"},
		{description: "macro left unreplaced", winPrice: "${AUCTION_PRICE:BF}"},
		{description: "16 bytes of non ASCII", winPrice: "ééééééé\x00\x00"},
	}

	for _, test := range testCases {
		price, err := DecodeWinPrice(testSecret, test.winPrice)
		assert.IsType(t, &errortypes.MalformedInput{}, err, test.description)
		assert.Zero(t, price, test.description)
	}
}

func TestDecodeWinPriceBadKey(t *testing.T) {
	testCases := []struct {
		description string
		secret      string
	}{
		{description: "empty key", secret: ""},
		{description: "key longer than 56 bytes", secret: strings.Repeat("k", 57)},
	}

	for _, test := range testCases {
		_, err := DecodeWinPrice(test.secret, "0123456789ABCDEF")
		assert.IsType(t, &errortypes.DecodeError{}, err, test.description)
	}
}

func TestDecodeWinPriceNotANumber(t *testing.T) {
	encrypted, err := EncodeWinPrice(testSecret, "NOTPRICE")
	require.NoError(t, err)

	_, err = DecodeWinPrice(testSecret, encrypted)
	assert.IsType(t, &errortypes.DecodeError{}, err)

	encrypted, err = EncodeWinPrice(testSecret, "Infinity")
	require.NoError(t, err)

	_, err = DecodeWinPrice(testSecret, encrypted)
	assert.IsType(t, &errortypes.DecodeError{}, err)
}

func TestDecodeWinPriceWrongKey(t *testing.T) {
	encrypted, err := EncodeWinPrice(testSecret, "00001.50")
	require.NoError(t, err)

	price, err := DecodeWinPrice("another-secret", encrypted)
	if err == nil {
		assert.NotEqual(t, 1.5, price)
	} else {
		assert.IsType(t, &errortypes.DecodeError{}, err)
	}
}

func TestEncodeWinPriceRequiresOneBlock(t *testing.T) {
	_, err := EncodeWinPrice(testSecret, "1.5")
	assert.IsType(t, &errortypes.MalformedInput{}, err)

	_, err = EncodeWinPrice("", "00001.50")
	assert.IsType(t, &errortypes.DecodeError{}, err)
}
