package extract

import (
    "regexp"
    "strings"

    "github.com/hyperifyio/mailrelay/internal/normalize"
)

var (
    subjectLine = regexp.MustCompile(`(?im)^[ \t]*subject:[ \t]*(.*)$`)
    fromLine    = regexp.MustCompile(`(?im)^[ \t]*from:[ \t]*(.*)$`)
)

// LineExtractor scans normalized text for Subject/From lines and
// "Label:" blocks. Normalizer defaults to normalize.PlainText.
type LineExtractor struct {
    Normalizer normalize.Normalizer
}

func (e LineExtractor) Extract(raw string) Result {
    n := e.Normalizer
    if n == nil {
        n = normalize.PlainText{}
    }
    return FromText(n.Normalize(raw))
}

// FromText runs the line strategy over already normalized text.
func FromText(text string) Result {
    return Result{
        Subject: headerLine(subjectLine, text, NoSubject),
        From:    headerLine(fromLine, text, UnknownSender),
        Fields:  scanBlocks(strings.Split(text, "\n")),
    }
}

func headerLine(re *regexp.Regexp, text, fallback string) string {
    m := re.FindStringSubmatch(text)
    if m == nil {
        return fallback
    }
    if v := strings.TrimSpace(m[1]); v != "" {
        return v
    }
    return fallback
}

// scanBlocks emits one field per label line followed by at least one
// non-empty line. A block ends at a blank line, the next label line or the
// end of input. An Instructions block also spans blank lines. The Privacy
// terminator ends the scan.
func scanBlocks(lines []string) []Field {
    var fields []Field
    i := 0
    for i < len(lines) {
        if isTerminator(lines[i]) {
            break
        }
        if !isLabelLine(lines[i]) {
            i++
            continue
        }
        name := lines[i]
        j := i + 1
        var value string
        if isInstructions(name) {
            var body []string
            for ; j < len(lines) && !isTerminator(lines[j]) && !isLabelLine(lines[j]); j++ {
                body = append(body, lines[j])
            }
            value = collapseSpaces(strings.Join(body, " "))
        } else {
            var body []string
            for ; j < len(lines); j++ {
                l := strings.TrimSpace(lines[j])
                if l == "" || isLabelLine(l) || isTerminator(l) {
                    break
                }
                body = append(body, l)
            }
            value = strings.Join(body, "\n")
        }
        if f, ok := newField(name, value); ok {
            fields = append(fields, f)
        }
        i = j
    }
    return fields
}
