package assettrack

import "fmt"

// MatchStrategy selects how like-kind exchanges are detected.
type MatchStrategy int

const (
	// NoMatching leaves sales and purchases untouched.
	NoMatching MatchStrategy = iota
	// MatchAcross folds a sale into every purchase of the same item within
	// the window, splitting them as needed.
	MatchAcross
	// MatchSimilar folds a sale into a single purchase of a similar amount.
	MatchSimilar
)

func (m MatchStrategy) String() string {
	switch m {
	case NoMatching:
		return "none"
	case MatchAcross:
		return "across"
	case MatchSimilar:
		return "similar"
	default:
		return "unknown"
	}
}

// ParseMatchStrategy parses a string into a MatchStrategy.
func ParseMatchStrategy(s string) (MatchStrategy, error) {
	switch s {
	case "none", "":
		return NoMatching, nil
	case "across":
		return MatchAcross, nil
	case "similar":
		return MatchSimilar, nil
	default:
		return 0, fmt.Errorf("unknown match strategy: %q", s)
	}
}

// Matcher returns the ExchangeMatcher implementing m, or nil for NoMatching.
func (m MatchStrategy) Matcher() ExchangeMatcher {
	switch m {
	case MatchAcross:
		return NewMatchAcrossTransactions()
	case MatchSimilar:
		return NewMatchSimilarTransactions()
	default:
		return nil
	}
}
