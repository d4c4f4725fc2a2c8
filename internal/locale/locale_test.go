// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		in   string
		want language.Tag
	}{
		{"", language.Indonesian},
		{"id", language.Indonesian},
		{"id-ID", language.Indonesian},
		{"en", language.English},
		{"en-GB", language.English},
		{"not a tag!", language.Indonesian},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Match(tc.in))
		})
	}
}

func TestFor_Indonesian(t *testing.T) {
	s := For("id")
	assert.Equal(t, "Chatbot", s.Title)
	assert.Equal(t, "Mulai percakapan", s.EmptyTitle)
	assert.Equal(t, "Ketik pertanyaan atau pesan Anda di bawah", s.EmptyHint)
	assert.Equal(t, "Sedang mengetik...", s.Typing)
	assert.Equal(t, "Chat...", s.Placeholder)
	assert.Equal(t, "Terjadi kesalahan. Silakan coba lagi nanti.", s.Fallback)
	assert.Contains(t, s.Subtitle, "juwamardott")
}

func TestFor_English(t *testing.T) {
	s := For("en")
	assert.Equal(t, "Start a conversation", s.EmptyTitle)
	assert.Equal(t, "Typing...", s.Typing)
	assert.Equal(t, "Something went wrong. Please try again later.", s.Fallback)
}

func TestFor_EveryStringPopulated(t *testing.T) {
	keys := map[string]bool{
		keyTitle: true, keySubtitle: true, keyEmptyTitle: true, keyEmptyHint: true,
		keyTyping: true, keyKeyHint: true, keyPlaceholder: true, keySend: true,
		keyFallback: true, keyGoodbye: true, keyPlainHint: true,
	}

	for _, lang := range []string{"id", "en"} {
		s := For(lang)
		for _, v := range []string{
			s.Subtitle, s.EmptyTitle, s.EmptyHint, s.Typing, s.KeyHint,
			s.Placeholder, s.Send, s.Fallback, s.Goodbye, s.PlainHint,
		} {
			assert.NotEmpty(t, v, lang)
			assert.False(t, keys[v], "%s: unresolved key %q", lang, v)
		}
	}
}

func TestBuildCatalog(t *testing.T) {
	b, err := buildCatalog(translations)
	require.NoError(t, err)
	assert.ElementsMatch(t, supported, b.Languages())

	id, en := translations[language.Indonesian], translations[language.English]
	require.Len(t, en, len(id))
	for k := range id {
		assert.Contains(t, en, k)
	}
}
