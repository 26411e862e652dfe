package extract

import (
    "regexp"

    "github.com/hyperifyio/mailrelay/internal/normalize"
)

// Extractor defines a minimal interface for extraction strategies.
// Implementations never fail: unexpected input yields fallback literals and
// an empty field list.
type Extractor interface {
    // Extract converts a raw email body into a Result.
    // Implementations should be deterministic and avoid side effects.
    Extract(raw string) Result
}

var (
    // structuralMarkup marks documents with block structure worth parsing.
    structuralMarkup = regexp.MustCompile(`(?i)<(?:!doctype|html|head|body|p|div|table|tr|td)[\s/>]`)
    inlineMarkup     = regexp.MustCompile(`(?i)<(?:br|strong|b|em|i|span|a)[\s/>]`)
    emphasisMarkup   = regexp.MustCompile(`(?i)<(?:strong|b)[\s>]`)
)

// For is the single dispatch point between strategies. Documents with block
// markup go to the structural strategy, and so do inline fragments whose
// request section uses <strong>Label:</strong> labels. Other bodies with
// inline tags such as <br> are normalized as HTML and scanned line by line;
// anything else is treated as quoted-printable plain text.
func For(raw string) Extractor {
    switch {
    case structuralMarkup.MatchString(raw):
        return StructuralExtractor{}
    case emphasisMarkup.MatchString(raw) && containsFold(raw, anchorPhrase):
        return StructuralExtractor{}
    case inlineMarkup.MatchString(raw):
        return LineExtractor{Normalizer: normalize.HTML{}}
    default:
        return LineExtractor{Normalizer: normalize.PlainText{}}
    }
}

// Extract dispatches raw to the matching strategy.
func Extract(raw string) Result {
    return For(raw).Extract(raw)
}

// StrategyName names e for logs.
func StrategyName(e Extractor) string {
    switch v := e.(type) {
    case StructuralExtractor, *StructuralExtractor:
        return "structural"
    case LineExtractor:
        if _, ok := v.Normalizer.(normalize.HTML); ok {
            return "line-html"
        }
        return "line"
    default:
        return "custom"
    }
}
