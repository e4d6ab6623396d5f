package scan

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// EncodingError means the transcript bytes could not be decoded by any
// supported charset. Unlike parse problems, this one is fatal: there is
// no text to degrade to.
type EncodingError struct {
	Path  string
	Tried []string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot decode %s as text (tried %s)", e.Path, strings.Join(e.Tried, ", "))
}

var triedCharsets = []string{"utf-8", "utf-16", "windows-1251", "windows-1252"}

// ReadTranscript reads and decodes the folder's chat file. It returns
// the text and the charset that decoded it.
func ReadTranscript(f *Folder) (string, string, error) {
	data, err := os.ReadFile(f.ChatFile)
	if err != nil {
		return "", "", fmt.Errorf("read transcript: %w", err)
	}
	text, enc, err := Decode(data)
	if err != nil {
		var ee *EncodingError
		if errors.As(err, &ee) {
			ee.Path = f.ChatFile
		}
		return "", "", err
	}
	logger.WithField("charset", enc).Debug("transcript decoded")
	return text, enc, nil
}

// Decode turns raw transcript bytes into text. Exports are UTF-8
// today, but older tools produced UTF-16 and single-byte codepages, so
// those are tried in turn. The second return names the charset used.
func Decode(data []byte) (string, string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return decodeUTF16(data[2:], unicode.LittleEndian)
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return decodeUTF16(data[2:], unicode.BigEndian)
	}

	if utf8.Valid(data) {
		return string(data), "utf-8", nil
	}

	if endian, ok := guessUTF16(data); ok {
		return decodeUTF16(data, endian)
	}
	if bytes.IndexByte(data, 0) >= 0 {
		// NUL bytes but no UTF-16 pattern: not text
		return "", "", &EncodingError{Tried: triedCharsets}
	}

	if s, err := decodeCharmap(data, charmap.Windows1251); err == nil && looksCyrillic(s) {
		return s, "windows-1251", nil
	}
	if s, err := decodeCharmap(data, charmap.Windows1252); err == nil {
		return s, "windows-1252", nil
	}
	if s, err := decodeCharmap(data, charmap.Windows1251); err == nil {
		return s, "windows-1251", nil
	}
	return "", "", &EncodingError{Tried: triedCharsets}
}

func decodeUTF16(data []byte, e unicode.Endianness) (string, string, error) {
	out, err := unicode.UTF16(e, unicode.IgnoreBOM).NewDecoder().Bytes(data)
	if err != nil {
		return "", "", &EncodingError{Tried: triedCharsets}
	}
	name := "utf-16le"
	if e == unicode.BigEndian {
		name = "utf-16be"
	}
	return string(out), name, nil
}

func decodeCharmap(data []byte, cm *charmap.Charmap) (string, error) {
	out, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// guessUTF16 spots BOM-less UTF-16 by the NUL pattern mostly-ASCII
// text produces: every other byte is zero.
func guessUTF16(data []byte) (unicode.Endianness, bool) {
	if len(data) < 4 {
		return unicode.LittleEndian, false
	}
	var evenNul, oddNul int
	for i, b := range data {
		if b != 0 {
			continue
		}
		if i%2 == 0 {
			evenNul++
		} else {
			oddNul++
		}
	}
	chars := len(data) / 2
	switch {
	case oddNul > chars/2:
		return unicode.LittleEndian, true
	case evenNul > chars/2:
		return unicode.BigEndian, true
	}
	return unicode.LittleEndian, false
}

// looksCyrillic disambiguates 1251 from 1252: the same bytes decode
// under both, but a Russian transcript comes out mostly Cyrillic.
func looksCyrillic(s string) bool {
	var cyr, latin int
	for _, r := range s {
		switch {
		case r >= 0x0400 && r <= 0x04FF:
			cyr++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			latin++
		}
	}
	return cyr > latin
}
