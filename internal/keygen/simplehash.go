package keygen

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

const (
	simpleHashSeed = 0x3f2a91c4d5e6b7a8
	nullSentinel   = 0x9e3779b97f4a7c15
	positionFactor = 31
)

// SimpleHash folds the digest of every parameter into a seeded accumulator
// and returns the digest of the result as 16 hex characters.
//
// Each step multiplies the accumulator before adding the digest, so the same
// values in a different order produce a different key. Values are digested by
// their string form: the string "1" and the integer 1 yield the same key.
type SimpleHash struct{}

func (SimpleHash) GenerateKey(params ...any) (string, error) {
	acc := uint64(simpleHashSeed)
	for i, p := range params {
		acc *= positionFactor
		tag, s, err := scalar(i, p)
		if err != nil {
			return "", err
		}
		if tag == nullTag {
			acc += nullSentinel
			continue
		}
		acc += xxhash.Sum64String(s)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(strconv.FormatUint(acc, 10))), nil
}
