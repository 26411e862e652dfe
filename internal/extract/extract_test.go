package extract

import (
    "fmt"
    "strings"
    "testing"
)

const requestEmail = `<!doctype html>
<html>
  <head>
    <title>New Cameo request</title>
    <meta name="from" content="Cameo &lt;noreply@cameo.com&gt;">
  </head>
  <body>
    <div class="wrapper">
      <p>Hi Pit,</p>
      <p>Request details</p>
      <p><strong>Occasion:</strong> Birthday</p>
      <p><strong>Recipient</strong>: Sam&nbsp;&nbsp;Smith</p>
      <p><b>From:</b> Jane</p>
      <p><strong>Instructions:</strong> Please wish Sam a happy birthday.</p>
      <p>He loves   the show.</p>
      <p><strong>Tone:</strong> funny</p>
      <p>Privacy Policy | Terms</p>
      <p><strong>Footer:</strong> ignored</p>
    </div>
  </body>
</html>`

func TestFromHTML_RequestDetails(t *testing.T) {
    res := FromHTML(requestEmail)
    if res.Subject != "New Cameo request" {
        t.Fatalf("Subject=%q", res.Subject)
    }
    if res.From != "Cameo <noreply@cameo.com>" {
        t.Fatalf("From=%q", res.From)
    }
    want := []Field{
        {Name: "Occasion", Value: "Birthday"},
        {Name: "Recipient", Value: "Sam Smith"},
        {Name: "From", Value: "Jane"},
        {Name: "Instructions", Value: "Please wish Sam a happy birthday. He loves the show. Tone: funny"},
    }
    if len(res.Fields) != len(want) {
        t.Fatalf("got %d fields, want %d: %+v", len(res.Fields), len(want), res.Fields)
    }
    for i := range want {
        if res.Fields[i] != want[i] {
            t.Fatalf("field %d = %+v, want %+v", i, res.Fields[i], want[i])
        }
    }
}

func TestFromHTML_NoAnchor(t *testing.T) {
    doc := `<html><head><title>Weekly digest</title></head><body>
      <p><strong>Name:</strong> Jane</p></body></html>`
    res := FromHTML(doc)
    if len(res.Fields) != 0 {
        t.Fatalf("expected no fields without anchor, got %+v", res.Fields)
    }
    if res.Subject != "Weekly digest" {
        t.Fatalf("Subject=%q", res.Subject)
    }
    if res.From != UnknownSender {
        t.Fatalf("From=%q, want %q", res.From, UnknownSender)
    }
}

func TestFromHTML_NoTitleFallsBack(t *testing.T) {
    res := FromHTML(`<html><body><p>hello</p></body></html>`)
    if res.Subject != NoSubject || res.From != UnknownSender {
        t.Fatalf("got subject %q from %q", res.Subject, res.From)
    }
}

func TestFromHTML_AnchorIsLastElement(t *testing.T) {
    res := FromHTML(`<html><head><title>t</title></head><body><p>Intro</p><p>Request details</p></body></html>`)
    if len(res.Fields) != 0 {
        t.Fatalf("expected empty fields, got %+v", res.Fields)
    }
}

func TestFromHTML_AnchorWithInlineContent(t *testing.T) {
    doc := `<html><body><div>Your request details are below<br>
      <strong>Name:</strong> Jane<br><strong>Occasion:</strong> Wedding<br></div></body></html>`
    res := FromHTML(doc)
    if len(res.Fields) != 2 {
        t.Fatalf("expected 2 fields, got %+v", res.Fields)
    }
    if res.Fields[0] != (Field{Name: "Name", Value: "Jane"}) || res.Fields[1] != (Field{Name: "Occasion", Value: "Wedding"}) {
        t.Fatalf("unexpected fields %+v", res.Fields)
    }
}

func TestFromHTML_AnchorInTableCell(t *testing.T) {
    doc := `<html><body><table>
      <tr><td><p>REQUEST DETAILS</p></td></tr>
      <tr><td><strong>Name:</strong> Jane</td></tr>
      <tr><td><strong>Privacy</strong> notice</td></tr>
      <tr><td><strong>After:</strong> nope</td></tr>
    </table></body></html>`
    res := FromHTML(doc)
    if len(res.Fields) != 1 || res.Fields[0].Name != "Name" || res.Fields[0].Value != "Jane" {
        t.Fatalf("unexpected fields %+v", res.Fields)
    }
}

func TestFromHTML_InstructionsAcrossParagraphs(t *testing.T) {
    doc := `<html><body><p>Request details</p>
      <p><strong>Instructions:</strong></p>
      <p>Line one.</p>
      <p>Line
         two.</p>
      <p>Privacy</p></body></html>`
    res := FromHTML(doc)
    if len(res.Fields) != 1 {
        t.Fatalf("expected one field, got %+v", res.Fields)
    }
    if res.Fields[0].Name != "Instructions" || res.Fields[0].Value != "Line one. Line two." {
        t.Fatalf("unexpected field %+v", res.Fields[0])
    }
}

func TestFromHTML_InstructionsKeepPrivacyProse(t *testing.T) {
    doc := `<html><body><p>Request details</p>
      <p><strong>Instructions:</strong> line one</p>
      <p>Privacy is important, no surnames</p>
      <p>more text</p>
      <p>Privacy Policy</p></body></html>`
    res := FromHTML(doc)
    if len(res.Fields) != 1 {
        t.Fatalf("expected one field, got %+v", res.Fields)
    }
    if want := "line one Privacy is important, no surnames more text"; res.Fields[0].Value != want {
        t.Fatalf("Instructions value %q, want %q", res.Fields[0].Value, want)
    }
}

func TestFromHTML_TraversalCap(t *testing.T) {
    var b strings.Builder
    b.WriteString("<html><body><p>Request details</p>")
    for i := 0; i < 50; i++ {
        fmt.Fprintf(&b, "<p><strong>Field %d:</strong> value %d</p>", i, i)
    }
    b.WriteString("</body></html>")
    res := FromHTML(b.String())
    if len(res.Fields) > MaxFields {
        t.Fatalf("got %d fields, cap is %d", len(res.Fields), MaxFields)
    }
    if len(res.Fields) != MaxFields {
        t.Fatalf("expected the cap to be reached, got %d", len(res.Fields))
    }
    if res.Fields[0].Name != "Field 0" || res.Fields[19].Name != "Field 19" {
        t.Fatalf("fields out of order: first %q last %q", res.Fields[0].Name, res.Fields[19].Name)
    }
}

func TestFromHTML_LimitsHold(t *testing.T) {
    long := strings.Repeat("word ", 400)
    doc := "<html><body><p>Request details</p><p><strong>Story:</strong> " + long + "</p><p><strong>Empty:</strong> </p></body></html>"
    res := FromHTML(doc)
    if len(res.Fields) != 1 {
        t.Fatalf("expected the empty field to be dropped, got %+v", res.Fields)
    }
    for _, f := range res.Fields {
        if len([]rune(f.Value)) > MaxValueLen || len([]rune(f.Name)) > MaxNameLen {
            t.Fatalf("limits exceeded: %d/%d", len([]rune(f.Name)), len([]rune(f.Value)))
        }
        if f.Name == "" || f.Value == "" {
            t.Fatalf("empty field emitted: %+v", f)
        }
    }
}

func TestFromHTML_QuotedPrintableHTML(t *testing.T) {
    doc := "<html><head><title>Req</title></head><body><p>Request details</p><p><strong>Name:</strong> Jane=\r\n Doe</p>" +
        "<p><strong>Note:</strong> It=E2=80=99s a=3Db</p></body></html>"
    res := FromHTML(doc)
    if len(res.Fields) != 2 {
        t.Fatalf("expected 2 fields, got %+v", res.Fields)
    }
    if res.Fields[0].Value != "Jane Doe" || res.Fields[1].Value != "It’s a=b" {
        t.Fatalf("unexpected values %+v", res.Fields)
    }
}

func TestFromHTML_NeverPanicsOnGarbage(t *testing.T) {
    inputs := []string{"", "<", "<<<>>>", "<p>Request details", "<div><div><div>request DETAILS</div>", "\x00\xff"}
    for _, in := range inputs {
        res := FromHTML(in)
        if res.Subject == "" || res.From == "" {
            t.Fatalf("empty literals for %q: %+v", in, res)
        }
    }
}
