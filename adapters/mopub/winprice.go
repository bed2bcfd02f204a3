package mopub

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bidconnect/exchange-connector/errortypes"
	"golang.org/x/crypto/blowfish"
)

// MoPub replaces ${AUCTION_PRICE:BF} with the clearing price encrypted under the
// seat's shared secret: the 8 ASCII characters of a decimal CPM, encrypted as a
// single Blowfish block in ECB mode without padding, then hex encoded.
//
// ECB is only acceptable because each macro is exactly one independent block.
// Never use these functions for anything longer.

const winPriceHexLength = 2 * blowfish.BlockSize

// DecodeWinPrice recovers the clearing price from the hex value MoPub substituted for
// ${AUCTION_PRICE:BF}.
//
// A value which is not 16 hex characters fails with *errortypes.MalformedInput. A key
// Blowfish cannot use, or a block which does not decrypt to a number, fails with
// *errortypes.DecodeError.
func DecodeWinPrice(sharedSecret string, winPriceHex string) (float64, error) {
	plain, err := decryptWinPrice(sharedSecret, winPriceHex)
	if err != nil {
		return 0, err
	}

	text := string(plain[:])
	if !isDecimal(text) {
		return 0, &errortypes.DecodeError{
			Message: fmt.Sprintf("win price %s does not decrypt to a decimal number", winPriceHex),
		}
	}
	price, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, &errortypes.DecodeError{
			Message: fmt.Sprintf("win price %s does not decrypt to a number", winPriceHex),
		}
	}
	return price, nil
}

// decryptWinPrice hex decodes one cipher block and decrypts it under the shared secret.
func decryptWinPrice(sharedSecret string, winPriceHex string) ([blowfish.BlockSize]byte, error) {
	var plain [blowfish.BlockSize]byte
	if len(winPriceHex) != winPriceHexLength {
		return plain, &errortypes.MalformedInput{
			Message: fmt.Sprintf("win price must be %d hex characters, got %d", winPriceHexLength, len(winPriceHex)),
		}
	}

	var block [blowfish.BlockSize]byte
	if _, err := hex.Decode(block[:], []byte(winPriceHex)); err != nil {
		return plain, &errortypes.MalformedInput{
			Message: fmt.Sprintf("win price %q is not hex encoded: %v", winPriceHex, err),
		}
	}

	c, err := blowfish.NewCipher([]byte(sharedSecret))
	if err != nil {
		return plain, &errortypes.DecodeError{
			Message: fmt.Sprintf("cannot decrypt win price: %v", err),
		}
	}

	c.Decrypt(plain[:], block[:])
	return plain, nil
}

// isDecimal accepts digits, a decimal point, signs and a decimal exponent. ParseFloat
// alone would also take hex floats and underscore separated digits.
func isDecimal(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '+', r == '-', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}

// EncodeWinPrice is the inverse of DecodeWinPrice: it encrypts the 8 character price
// text the way MoPub does and returns it as upper-case hex.
func EncodeWinPrice(sharedSecret string, price string) (string, error) {
	if len(price) != blowfish.BlockSize {
		return "", &errortypes.MalformedInput{
			Message: fmt.Sprintf("win price text must be %d characters, got %q", blowfish.BlockSize, price),
		}
	}

	c, err := blowfish.NewCipher([]byte(sharedSecret))
	if err != nil {
		return "", &errortypes.DecodeError{
			Message: fmt.Sprintf("cannot encrypt win price: %v", err),
		}
	}

	var block [blowfish.BlockSize]byte
	c.Encrypt(block[:], []byte(price))
	return strings.ToUpper(hex.EncodeToString(block[:])), nil
}
