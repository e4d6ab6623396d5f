package parse

import (
	"regexp"
	"strings"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/media"
)

// builtinSystem matches service notices WhatsApp writes into the
// transcript. Shape already catches sender-less lines; this catches the
// ones iOS attributes to the group name.
var builtinSystem = compileSystem([]string{
	`end-to-end encrypt`,
	`Ende-zu-Ende-verschlüsselt`,
	`(?i)created (?:this )?group`,
	`(?i)changed the subject`,
	`(?i)changed this group's icon`,
	`(?i)changed the group description`,
	`(?i)joined using this group's invite link`,
	`(?i)changed their phone number`,
	`(?i)your security code with`,
	`(?i)missed (?:voice|video) call`,
})

func compileSystem(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}

// Attachment tokens. iOS writes <attached: F> (DE exports: Anhang),
// Android appends "(file attached)" after the file name.
var (
	attachedTagRe  = regexp.MustCompile(`<(?:attached|Anhang):\s*([^>]+)>`)
	fileAttachedRe = regexp.MustCompile(`(?m)^(\S[^\n]*?)\s*\((?:file attached|Datei angehängt)\)\s*$`)
)

// omittedMarkers flag media that was exported without the file itself.
var omittedMarkers = []string{
	"<Media omitted>",
	"<Медиафайл опущен>",
	"<Arquivo de mídia omitido>",
	"<Archivo omitido>",
	"image omitted",
	"video omitted",
	"audio omitted",
	"sticker omitted",
	"GIF omitted",
	"document omitted",
	"Contact card omitted",
}

// finalize runs once per message after all continuations are folded in:
// it extracts attachment tokens and sets the media flag.
func (p *Parser) finalize(m *Message) {
	for _, match := range attachedTagRe.FindAllStringSubmatch(m.Body, -1) {
		m.Attachments = append(m.Attachments, newAttachment(match[1]))
	}
	for _, match := range fileAttachedRe.FindAllStringSubmatch(m.Body, -1) {
		m.Attachments = append(m.Attachments, newAttachment(match[1]))
	}
	if len(m.Attachments) == 0 {
		// a media file name standing alone is an attachment too
		name := strings.TrimSpace(m.Body)
		if name != "" && !strings.Contains(name, "\n") && media.KnownExt(name) {
			m.Attachments = append(m.Attachments, newAttachment(name))
		}
	}

	if len(m.Attachments) > 0 {
		m.Media = true
		return
	}
	for _, marker := range omittedMarkers {
		if strings.Contains(m.Body, marker) {
			m.Media = true
			return
		}
	}
}

func newAttachment(name string) Attachment {
	name = strings.TrimSpace(name)
	return Attachment{Name: name, Kind: media.KindForName(name)}
}
