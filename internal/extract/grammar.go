package extract

import (
    "regexp"
    "strings"
    "unicode"
    "unicode/utf8"
)

// The label/value grammar shared by both strategies.
const (
    anchorPhrase      = "request details"
    instructionsLabel = "Instructions"
    terminatorLabel   = "Privacy"
)

// labelLine matches a whole trimmed line of at most 64 characters whose only
// colon is the final one.
var labelLine = regexp.MustCompile(`^[^:\n]{1,63}:$`)

func isLabelLine(line string) bool {
    return labelLine.MatchString(strings.TrimSpace(line))
}

// labelName strips the trailing colon and collapses internal whitespace.
func labelName(s string) string {
    s = strings.TrimSpace(s)
    s = strings.TrimSuffix(s, ":")
    return collapseSpaces(strings.TrimSpace(s))
}

func isInstructions(name string) bool {
    return strings.EqualFold(labelName(name), instructionsLabel)
}

// maxTerminatorLen bounds a "Privacy ..." heading such as "Privacy Policy | Terms".
const maxTerminatorLen = 40

// isTerminator reports whether s is the Privacy label: "Privacy", "Privacy:"
// or a short "Privacy ..." heading without sentence punctuation. Prose that
// merely starts with the word is not a terminator.
func isTerminator(s string) bool {
    t := strings.TrimSuffix(collapseSpaces(s), ":")
    if strings.EqualFold(t, terminatorLabel) {
        return true
    }
    if !hasPrefixFold(t, terminatorLabel+" ") || utf8.RuneCountInString(t) > maxTerminatorLen {
        return false
    }
    return !strings.ContainsAny(t, ".,;!?")
}

func hasPrefixFold(s, prefix string) bool {
    return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func containsFold(s, sub string) bool {
    return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// clampValue trims v and cuts it to MaxValueLen characters.
func clampValue(v string) string {
    v = strings.TrimSpace(v)
    if utf8.RuneCountInString(v) <= MaxValueLen {
        return v
    }
    r := []rune(v)
    return strings.TrimRightFunc(string(r[:MaxValueLen]), unicode.IsSpace)
}

// newField applies the size and emptiness rules. Oversized names and empty
// values are dropped; long values are truncated.
func newField(name, value string) (Field, bool) {
    name = labelName(name)
    value = clampValue(value)
    if name == "" || value == "" || utf8.RuneCountInString(name) > MaxNameLen {
        return Field{}, false
    }
    return Field{Name: name, Value: value}, true
}
