package extract

const (
    // NoSubject is used when no subject can be recovered.
    NoSubject = "No Subject"
    // UnknownSender is used when no sender can be recovered.
    UnknownSender = "Unknown"

    MaxNameLen  = 256
    MaxValueLen = 1024
    // MaxFields caps the fields collected by the structural walk.
    MaxFields = 20
)

// Field is one label/value pair from the request section of an email.
type Field struct {
    Name   string `json:"name"`
    Value  string `json:"value"`
    Inline bool   `json:"inline"`
}

// Result is the structured view of one inbound email. Fields keep document
// order and are never deduplicated.
type Result struct {
    Subject string  `json:"subject"`
    From    string  `json:"from"`
    Fields  []Field `json:"fields"`
}

// FieldsOrFallback returns the extracted fields, or a single inline From
// field when nothing was extracted, so a notification is never field-less.
func (r Result) FieldsOrFallback() []Field {
    if len(r.Fields) > 0 {
        return r.Fields
    }
    from := r.From
    if from == "" {
        from = UnknownSender
    }
    return []Field{{Name: "From", Value: from, Inline: true}}
}
