package ping

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"
)

// Transport issues a single outbound link notification and reports whether
// the endpoint accepted it.
type Transport interface {
	Send(ctx context.Context, target, articleURL, title string) error
}

// XMLRPCTransport speaks the weblogUpdates.ping convention most ping
// endpoints accept.
type XMLRPCTransport struct {
	client *http.Client
}

func NewXMLRPCTransport() *XMLRPCTransport {
	return &XMLRPCTransport{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *XMLRPCTransport) Send(ctx context.Context, target, articleURL, title string) error {
	body := buildPingCall(title, articleURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/xml")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ping %s: unexpected status %s", target, resp.Status)
	}
	return nil
}

func buildPingCall(title, articleURL string) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0"?>` + "\n")
	b.WriteString("<methodCall><methodName>weblogUpdates.ping</methodName><params>")
	writeParam(&b, title)
	writeParam(&b, articleURL)
	b.WriteString("</params></methodCall>")
	return b.Bytes()
}

func writeParam(b *bytes.Buffer, value string) {
	b.WriteString("<param><value><string>")
	_ = xml.EscapeText(b, []byte(value))
	b.WriteString("</string></value></param>")
}
