package mail

import (
	"bytes"
	"io"
	"strings"

	gomail "github.com/emersion/go-message/mail"
)

// ExtractBody decodes a raw RFC 822 message into the text content downstream
// link harvesting works with. The text/html part wins when present (it
// carries the anchors); text/plain is the fallback. If the message cannot be
// parsed as MIME at all, the raw bytes are returned so a malformed message
// still gets a chance at the bare-URL scan.
func ExtractBody(raw []byte) string {
	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}

	var plain, html string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		inline, ok := part.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, err := inline.ContentType()
		if err != nil {
			contentType = "text/plain"
		}

		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/html") && html == "":
			html = string(body)
		case strings.HasPrefix(contentType, "text/plain") && plain == "":
			plain = string(body)
		}
	}

	if html != "" {
		return html
	}
	return plain
}
