package keygen

import (
	"strconv"
	"strings"
)

// Composite renders every parameter verbatim with a type tag. Keys are
// readable and exact but grow with the arguments.
type Composite struct{}

func (Composite) GenerateKey(params ...any) (string, error) {
	if len(params) == 0 {
		return "-", nil
	}
	parts := make([]string, len(params))
	for i, p := range params {
		tag, s, err := scalar(i, p)
		if err != nil {
			return "", err
		}
		if tag == nullTag {
			parts[i] = "null"
			continue
		}
		if tag == "s" {
			s = strconv.Quote(s)
		}
		parts[i] = tag + ":" + s
	}
	return strings.Join(parts, "|"), nil
}
