package gmail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
)

const base64LineLength = 76

// buildRawMessage renders mail as an RFC 5322 multipart/mixed message with
// a UTF-8 text body followed by the attachments.
func buildRawMessage(mail domain.Mail) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", `text/plain; charset="utf-8"`)
	textHeader.Set("Content-Transfer-Encoding", "quoted-printable")
	part, err := mw.CreatePart(textHeader)
	if err != nil {
		return nil, fmt.Errorf("create text part: %w", err)
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(mail.Body)); err != nil {
		return nil, fmt.Errorf("write text part: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("close text part: %w", err)
	}

	for _, att := range mail.Attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", mime.FormatMediaType(contentType, map[string]string{"name": att.Filename}))
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": att.Filename}))
		h.Set("Content-Transfer-Encoding", "base64")
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("create attachment part: %w", err)
		}
		if _, err := part.Write(wrapBase64(att.Data)); err != nil {
			return nil, fmt.Errorf("write attachment part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var msg bytes.Buffer
	writeHeader(&msg, "To", mail.To)
	if bcc := strings.TrimSpace(mail.Bcc); bcc != "" {
		writeHeader(&msg, "Bcc", bcc)
	}
	writeHeader(&msg, "Subject", mime.QEncoding.Encode("utf-8", mail.Subject))
	writeHeader(&msg, "MIME-Version", "1.0")
	writeHeader(&msg, "Content-Type", mime.FormatMediaType("multipart/mixed", map[string]string{"boundary": mw.Boundary()}))
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	value = strings.NewReplacer("\r", "", "\n", "").Replace(value)
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}

func wrapBase64(data []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(data)
	var out bytes.Buffer
	for len(encoded) > base64LineLength {
		out.WriteString(encoded[:base64LineLength])
		out.WriteString("\r\n")
		encoded = encoded[base64LineLength:]
	}
	out.WriteString(encoded)
	out.WriteString("\r\n")
	return out.Bytes()
}
