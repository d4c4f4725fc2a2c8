// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package locale holds the user-facing strings in Indonesian and English.
package locale

import (
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	keyTitle       = "title"
	keySubtitle    = "subtitle"
	keyEmptyTitle  = "empty.title"
	keyEmptyHint   = "empty.hint"
	keyTyping      = "typing"
	keyKeyHint     = "key.hint"
	keyPlaceholder = "input.placeholder"
	keySend        = "send"
	keyFallback    = "fallback"
	keyGoodbye     = "goodbye"
	keyPlainHint   = "plain.hint"
)

// Default is the language used when nothing else matches.
var Default = language.Indonesian

var supported = []language.Tag{language.Indonesian, language.English}

var (
	matcher = language.NewMatcher(supported)
	cat     = mustBuildCatalog(translations)
)

var translations = map[language.Tag]map[string]string{
	language.Indonesian: {
		keyTitle:       "Chatbot",
		keySubtitle:    "Powered by juwamardott • Siap membantu Anda",
		keyEmptyTitle:  "Mulai percakapan",
		keyEmptyHint:   "Ketik pertanyaan atau pesan Anda di bawah",
		keyTyping:      "Sedang mengetik...",
		keyKeyHint:     "Tekan Enter untuk mengirim • Alt + Enter untuk baris baru",
		keyPlaceholder: "Chat...",
		keySend:        "Kirim",
		keyFallback:    "Terjadi kesalahan. Silakan coba lagi nanti.",
		keyGoodbye:     "Sampai jumpa!",
		keyPlainHint:   "Akhiri baris dengan \\ untuk baris baru • Ctrl+D untuk keluar",
	},
	language.English: {
		keyTitle:       "Chatbot",
		keySubtitle:    "Powered by juwamardott • Ready to help",
		keyEmptyTitle:  "Start a conversation",
		keyEmptyHint:   "Type your question or message below",
		keyTyping:      "Typing...",
		keyKeyHint:     "Press Enter to send • Alt + Enter for a new line",
		keyPlaceholder: "Chat...",
		keySend:        "Send",
		keyFallback:    "Something went wrong. Please try again later.",
		keyGoodbye:     "Goodbye!",
		keyPlainHint:   "End a line with \\ to continue • Ctrl+D to exit",
	},
}

// buildCatalog registers every string in tables.
func buildCatalog(tables map[language.Tag]map[string]string) (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(Default))
	for tag, strs := range tables {
		for k, v := range strs {
			if err := b.SetString(tag, k, v); err != nil {
				return nil, errors.Wrapf(err, "locale %s: key %q", tag, k)
			}
		}
	}
	return b, nil
}

// mustBuildCatalog is buildCatalog for package init. The tables are
// constants, so a failure is a programming error.
func mustBuildCatalog(tables map[language.Tag]map[string]string) *catalog.Builder {
	b, err := buildCatalog(tables)
	if err != nil {
		panic(err)
	}
	return b
}

// Match returns the supported language closest to the BCP 47 tag in name.
// Empty or unparseable names yield Default.
func Match(name string) language.Tag {
	if name == "" {
		return Default
	}
	tag, err := language.Parse(name)
	if err != nil {
		return Default
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return Default
	}
	return supported[index]
}

// Strings is the full set of interface text for one language.
type Strings struct {
	Tag         language.Tag
	Title       string
	Subtitle    string
	EmptyTitle  string
	EmptyHint   string
	Typing      string
	KeyHint     string
	Placeholder string
	Send        string
	Fallback    string
	Goodbye     string
	PlainHint   string
}

// For returns the interface strings for the language closest to name.
func For(name string) Strings {
	tag := Match(name)
	p := message.NewPrinter(tag, message.Catalog(cat))
	return Strings{
		Tag:         tag,
		Title:       p.Sprintf(keyTitle),
		Subtitle:    p.Sprintf(keySubtitle),
		EmptyTitle:  p.Sprintf(keyEmptyTitle),
		EmptyHint:   p.Sprintf(keyEmptyHint),
		Typing:      p.Sprintf(keyTyping),
		KeyHint:     p.Sprintf(keyKeyHint),
		Placeholder: p.Sprintf(keyPlaceholder),
		Send:        p.Sprintf(keySend),
		Fallback:    p.Sprintf(keyFallback),
		Goodbye:     p.Sprintf(keyGoodbye),
		PlainHint:   p.Sprintf(keyPlainHint),
	}
}
