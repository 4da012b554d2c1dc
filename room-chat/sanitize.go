package main

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/gosuda/room-chat/chatview"
)

// stripControl drops control characters other than tab and newline. Text is
// otherwise left exactly as received.
func stripControl(s string) string {
	if strings.IndexFunc(s, isStripped) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isStripped(r) {
			return -1
		}
		return r
	}, s)
}

func isStripped(r rune) bool {
	return (unicode.IsControl(r) && r != '\t' && r != '\n') || r == unicode.ReplacementChar
}

// sanitizeAvatar keeps absolute http(s) URLs only.
func sanitizeAvatar(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// pageEntry prepares an entry for the page, which renders label and body as
// text nodes.
func pageEntry(e chatview.Entry) chatview.Entry {
	e.Avatar = sanitizeAvatar(e.Avatar)
	return e
}

// termEntry prepares an entry for the terminal. Control characters would
// reach the terminal as escape sequences.
func termEntry(e chatview.Entry) chatview.Entry {
	e.Label = stripControl(e.Label)
	e.Body = stripControl(e.Body)
	e.Avatar = sanitizeAvatar(e.Avatar)
	return e
}

// sanitizeInput removes control characters and limits length (in runes) of
// values typed into the page.
func sanitizeInput(s string, maxLen int) string {
	out := []rune(stripControl(s))
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return string(out)
}
