package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ibkrcli/pkg/contracts/domain"
)

// expiryLayout parses expiry tokens such as 07FEB25.
const expiryLayout = "02Jan06"

// ParseOptionSymbol decodes a composite option symbol of the form
// "<UNDERLYING> <DDMMMYY> <STRIKE> <TYPE>", e.g. "ASTS 07FEB25 26 C".
// The symbol must split on single spaces into exactly four tokens.
func ParseOptionSymbol(symbol string) (domain.OptionIdentity, error) {
	tokens := strings.Split(symbol, " ")
	if len(tokens) != 4 {
		return domain.OptionIdentity{}, fmt.Errorf("option symbol %q: want 4 tokens, got %d", symbol, len(tokens))
	}

	expiry, err := time.Parse(expiryLayout, tokens[1])
	if err != nil {
		return domain.OptionIdentity{}, fmt.Errorf("option symbol %q: bad expiry %q: %w", symbol, tokens[1], err)
	}

	strike, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return domain.OptionIdentity{}, fmt.Errorf("option symbol %q: bad strike %q: %w", symbol, tokens[2], err)
	}

	return domain.OptionIdentity{
		Underlying:   tokens[0],
		ExpDate:      expiry.Format("2006-01-02"),
		Strike:       strike,
		ContractType: tokens[3],
	}, nil
}
