// Package submission turns a finished draft into a wire payload and hands
// it to the persistence API.
package submission

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"

	"github.com/Eursukkul/competition-portal/pkg/attachment"
)

// RecordField is the multipart field carrying the JSON record.
const RecordField = "record"

type Encoding string

const (
	EncodingJSON      Encoding = "json"
	EncodingMultipart Encoding = "multipart"
)

// Payload is either Plain or Multipart, never both.
type Payload interface {
	Encoding() Encoding
	// Body renders the payload for the wire.
	Body() (io.Reader, string, error)
	isPayload()
}

// Plain carries only the JSON record.
type Plain struct {
	Record json.RawMessage
}

func (Plain) Encoding() Encoding { return EncodingJSON }
func (Plain) isPayload()         {}

func (p Plain) Body() (io.Reader, string, error) {
	return bytes.NewReader(p.Record), "application/json", nil
}

// Part is one file of a multipart payload.
type Part struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Multipart carries the JSON record plus one part per attached file.
type Multipart struct {
	Record json.RawMessage
	Parts  []Part
}

func (Multipart) Encoding() Encoding { return EncodingMultipart }
func (Multipart) isPayload()         {}

func (m Multipart) Body() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, RecordField))
	h.Set("Content-Type", "application/json")
	rw, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create record part: %w", err)
	}
	if _, err := rw.Write(m.Record); err != nil {
		return nil, "", fmt.Errorf("write record part: %w", err)
	}

	for _, p := range m.Parts {
		ph := make(textproto.MIMEHeader)
		ph.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(p.Field), escapeQuotes(p.Filename)))
		ct := p.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		ph.Set("Content-Type", ct)
		pw, err := w.CreatePart(ph)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", p.Field, err)
		}
		if _, err := pw.Write(p.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", p.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// Encode snapshots set and builds the payload for record. The record is
// marshalled on its own, so file bytes never end up inside the JSON.
func Encode(record any, set *attachment.Set) (Payload, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	snap := set.Snapshot()
	if snap.IsEmpty() {
		return Plain{Record: raw}, nil
	}

	var parts []Part
	for _, slot := range snap.Slots() {
		for _, f := range snap.Files(slot.Name) {
			parts = append(parts, Part{
				Field:       slot.Name,
				Filename:    f.Name,
				ContentType: f.ContentType,
				Data:        f.Data,
			})
		}
	}
	return Multipart{Record: raw, Parts: parts}, nil
}

func escapeQuotes(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '"' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
