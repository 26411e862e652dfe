package extract

import (
    "strings"
    "unicode"

    "golang.org/x/net/html"
    "golang.org/x/net/html/atom"

    "github.com/hyperifyio/mailrelay/internal/normalize"
)

// maxSiblings bounds the nodes visited after the anchor.
const maxSiblings = 200

// StructuralExtractor walks the parsed HTML tree starting at the
// "Request details" anchor.
type StructuralExtractor struct{}

func (StructuralExtractor) Extract(raw string) Result {
    return FromHTML(raw)
}

// FromHTML extracts subject, sender and request fields from an HTML body.
// Subject comes from <title>, sender from <meta name="from">; both fall back
// to Subject:/From: lines of the normalized text and then to the fixed
// literals. Without an anchor the field list is empty.
func FromHTML(raw string) Result {
    raw = normalize.DecodeQuotedPrintable(raw)
    res := Result{Subject: NoSubject, From: UnknownSender}

    node, err := html.Parse(strings.NewReader(raw))
    if err != nil || node == nil {
        return res
    }

    text := normalize.HTML{}.Normalize(raw)
    res.Subject = firstNonEmpty(findTitle(node), headerLine(subjectLine, text, ""), NoSubject)
    res.From = firstNonEmpty(findMeta(node, "from"), headerLine(fromLine, text, ""), UnknownSender)

    anchor := findAnchor(node)
    if anchor == nil {
        return res
    }
    w := &walker{}
    w.run(anchor)
    res.Fields = w.fields
    return res
}

func findTitle(n *html.Node) string {
    t := findFirst(n, "title")
    if t == nil {
        return ""
    }
    return collapseSpaces(textContent(t))
}

func findMeta(n *html.Node, name string) string {
    var res string
    var dfs func(*html.Node)
    dfs = func(cur *html.Node) {
        if res != "" {
            return
        }
        if cur.Type == html.ElementNode && cur.DataAtom == atom.Meta && strings.EqualFold(attr(cur, "name"), name) {
            res = strings.TrimSpace(attr(cur, "content"))
            return
        }
        for c := cur.FirstChild; c != nil; c = c.NextSibling {
            dfs(c)
        }
    }
    dfs(n)
    return res
}

func attr(n *html.Node, key string) string {
    for _, a := range n.Attr {
        if strings.EqualFold(a.Key, key) {
            return a.Val
        }
    }
    return ""
}

func findFirst(n *html.Node, tag string) *html.Node {
    var res *html.Node
    var dfs func(*html.Node)
    dfs = func(cur *html.Node) {
        if res != nil {
            return
        }
        if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
            res = cur
            return
        }
        for c := cur.FirstChild; c != nil; c = c.NextSibling {
            dfs(c)
            if res != nil {
                return
            }
        }
    }
    dfs(n)
    return res
}

// findAnchor returns the innermost <p> or <div> whose text mentions the
// anchor phrase. Outer wrappers contain the phrase too, so children win.
// Fragments without block elements anchor on the text node itself.
func findAnchor(n *html.Node) *html.Node {
    var res *html.Node
    var dfs func(*html.Node)
    dfs = func(cur *html.Node) {
        for c := cur.FirstChild; c != nil && res == nil; c = c.NextSibling {
            dfs(c)
        }
        if res == nil && isAnchorCandidate(cur) && containsFold(textContent(cur), anchorPhrase) {
            res = cur
        }
    }
    dfs(n)
    if res == nil {
        res = findAnchorText(n)
    }
    return res
}

func findAnchorText(n *html.Node) *html.Node {
    switch {
    case n.Type == html.TextNode:
        if containsFold(n.Data, anchorPhrase) {
            return n
        }
        return nil
    case n.Type == html.ElementNode && (n.DataAtom == atom.Head || n.DataAtom == atom.Script || n.DataAtom == atom.Style):
        return nil
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        if res := findAnchorText(c); res != nil {
            return res
        }
    }
    return nil
}

func isAnchorCandidate(n *html.Node) bool {
    return n.Type == html.ElementNode && (n.DataAtom == atom.P || n.DataAtom == atom.Div)
}

func textContent(n *html.Node) string {
    var b strings.Builder
    var dfs func(*html.Node)
    dfs = func(cur *html.Node) {
        switch cur.Type {
        case html.TextNode:
            b.WriteString(cur.Data)
            return
        case html.ElementNode:
            switch cur.DataAtom {
            case atom.Script, atom.Style:
                return
            case atom.Br:
                b.WriteString("\n")
            }
        }
        for c := cur.FirstChild; c != nil; c = c.NextSibling {
            dfs(c)
        }
    }
    dfs(n)
    return b.String()
}

// walker turns the anchor and everything after it into fields. Text before
// the first label is ignored.
type walker struct {
    fields  []Field
    name    string
    open    bool
    instr   bool
    // colon is set right after a <strong>Label</strong> whose colon sits in
    // the following text node.
    colon   bool
    buf     strings.Builder
    visited int
    done    bool
}

func (w *walker) run(anchor *html.Node) {
    w.walk(anchor)
    for n := anchor; n != nil && !w.done; n = n.Parent {
        if n.Type == html.DocumentNode || n.DataAtom == atom.Body || n.DataAtom == atom.Html {
            break
        }
        for s := n.NextSibling; s != nil && !w.done; s = s.NextSibling {
            w.visited++
            if w.visited > maxSiblings {
                w.done = true
                break
            }
            w.walk(s)
        }
    }
    w.flush()
}

func (w *walker) walk(n *html.Node) {
    if w.done {
        return
    }
    switch n.Type {
    case html.TextNode:
        w.text(n.Data)
        return
    case html.CommentNode, html.DoctypeNode:
        return
    case html.ElementNode:
        switch n.DataAtom {
        case atom.Script, atom.Style, atom.Head, atom.Title:
            return
        case atom.Br:
            w.text("\n")
            return
        case atom.Strong, atom.B:
            raw := textContent(n)
            if isTerminator(raw) {
                w.terminate()
                return
            }
            if containsFold(raw, anchorPhrase) {
                return
            }
            if name, colonNext, ok := emphasisLabel(n, raw); ok {
                w.label(name, raw, colonNext)
                return
            }
        }
        if isBlock(n) {
            if isTerminator(textContent(n)) {
                w.terminate()
                return
            }
            w.text("\n")
            for c := n.FirstChild; c != nil && !w.done; c = c.NextSibling {
                w.walk(c)
            }
            w.text("\n")
            return
        }
    }
    for c := n.FirstChild; c != nil && !w.done; c = c.NextSibling {
        w.walk(c)
    }
}

// emphasisLabel reports whether an emphasis element is a label, either
// <strong>Name:</strong> or <strong>Name</strong>: with the colon outside.
func emphasisLabel(n *html.Node, raw string) (string, bool, bool) {
    t := collapseSpaces(raw)
    if strings.HasSuffix(t, ":") {
        return labelName(t), false, isLabelLine(t)
    }
    next := n.NextSibling
    if next == nil || next.Type != html.TextNode {
        return "", false, false
    }
    if !strings.HasPrefix(strings.TrimLeftFunc(next.Data, unicode.IsSpace), ":") {
        return "", false, false
    }
    return labelName(t), true, isLabelLine(t + ":")
}

func (w *walker) label(name, raw string, colonNext bool) {
    if w.instr {
        // Inside Instructions labels are plain text.
        w.buf.WriteString(" " + raw + " ")
        return
    }
    w.flush()
    w.name = name
    w.open = true
    w.instr = isInstructions(name)
    w.colon = colonNext
}

func (w *walker) text(s string) {
    if !w.open || w.done {
        return
    }
    if w.colon {
        t := strings.TrimLeftFunc(s, unicode.IsSpace)
        if strings.HasPrefix(t, ":") {
            s = t[1:]
            w.colon = false
        }
    }
    w.buf.WriteString(s)
}

func (w *walker) flush() {
    if w.open && len(w.fields) < MaxFields {
        if f, ok := newField(w.name, collapseSpaces(w.buf.String())); ok {
            w.fields = append(w.fields, f)
        }
    }
    if len(w.fields) >= MaxFields {
        w.done = true
    }
    w.buf.Reset()
    w.open = false
    w.instr = false
    w.colon = false
}

func (w *walker) terminate() {
    w.flush()
    w.done = true
}

func isBlock(n *html.Node) bool {
    switch n.DataAtom {
    case atom.P, atom.Div, atom.Li, atom.Tr, atom.Td, atom.Table, atom.Ul, atom.Ol,
        atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Section:
        return true
    }
    return false
}

func firstNonEmpty(vals ...string) string {
    for _, v := range vals {
        if s := strings.TrimSpace(v); s != "" {
            return s
        }
    }
    return ""
}

func collapseSpaces(s string) string {
    var b strings.Builder
    lastSpace := false
    for _, r := range s {
        if unicode.IsSpace(r) {
            if !lastSpace {
                b.WriteByte(' ')
                lastSpace = true
            }
            continue
        }
        b.WriteRune(r)
        lastSpace = false
    }
    return strings.TrimSpace(b.String())
}
