package prompt

import (
	"fmt"

	"assistd/pkg/types"
)

// Style chooses how a bundle is rendered for a driver.
type Style string

const (
	// StylePlain renders a single concatenated string.
	StylePlain Style = "plain"
	// StyleChat renders role-tagged messages with typed content parts.
	StyleChat Style = "chat"
)

// PartKind discriminates message content parts.
type PartKind string

const (
	PartText  PartKind = "text"
	PartImage PartKind = "image"
	PartAudio PartKind = "audio"
)

// Part is one piece of message content. Media parts carry opaque refs; the
// assembler never decodes them.
type Part struct {
	Kind  PartKind
	Text  string
	Media *types.MediaRef
}

// Message is one role-tagged group of parts.
type Message struct {
	Role  string
	Parts []Part
}

// Bundle is driver-ready input: either a rendered plain string or a chat
// message list, depending on the requested style.
type Bundle struct {
	Style    Style
	Text     string
	Messages []Message
}

// Defaults applied when corresponding Assembler fields are unset.
const (
	defaultMaxImageEdgePx  = 4096
	defaultMaxAudioSeconds = 300
)

// Assembler builds prompt bundles and validates media limits. Assemble is a
// pure function of its inputs.
type Assembler struct {
	maxImageEdgePx  int
	maxAudioSeconds float64
}

// NewAssembler constructs an assembler; non-positive limits use defaults.
func NewAssembler(maxImageEdgePx int, maxAudioSeconds float64) *Assembler {
	if maxImageEdgePx <= 0 {
		maxImageEdgePx = defaultMaxImageEdgePx
	}
	if maxAudioSeconds <= 0 {
		maxAudioSeconds = defaultMaxAudioSeconds
	}
	return &Assembler{maxImageEdgePx: maxImageEdgePx, maxAudioSeconds: maxAudioSeconds}
}

// Assemble selects the domain system prompt and composes it with the user
// text in the driver's preferred template. Media is validated but not decoded.
func (a *Assembler) Assemble(userText, domain string, style Style, media *types.Media) (Bundle, error) {
	if err := a.validateMedia(media); err != nil {
		return Bundle{}, err
	}
	system := SystemPrompt(domain)

	if style == StyleChat {
		userParts := []Part{{Kind: PartText, Text: userText}}
		if media != nil && media.Image != nil {
			userParts = append(userParts, Part{Kind: PartImage, Media: media.Image})
		}
		if media != nil && media.Audio != nil {
			userParts = append(userParts, Part{Kind: PartAudio, Media: media.Audio})
		}
		return Bundle{
			Style: StyleChat,
			Messages: []Message{
				{Role: "system", Parts: []Part{{Kind: PartText, Text: system}}},
				{Role: "user", Parts: userParts},
			},
		}, nil
	}
	return Bundle{
		Style: StylePlain,
		Text:  fmt.Sprintf("%s\n\nUser: %s\nAssistant:", system, userText),
	}, nil
}

func (a *Assembler) validateMedia(media *types.Media) error {
	if media == nil {
		return nil
	}
	if img := media.Image; img != nil {
		if img.WidthPx > a.maxImageEdgePx || img.HeightPx > a.maxImageEdgePx {
			return ErrMediaTooLarge(fmt.Sprintf(
				"image %dx%d exceeds max edge %d px", img.WidthPx, img.HeightPx, a.maxImageEdgePx))
		}
	}
	if aud := media.Audio; aud != nil {
		if aud.DurationSeconds > a.maxAudioSeconds {
			return ErrMediaTooLarge(fmt.Sprintf(
				"audio %.1fs exceeds max duration %.0fs", aud.DurationSeconds, a.maxAudioSeconds))
		}
	}
	return nil
}

// mediaTooLargeError signals media over configured limits, mapped to 413.
type mediaTooLargeError struct{ msg string }

func (e mediaTooLargeError) Error() string { return e.msg }

// ErrMediaTooLarge constructs a mediaTooLargeError.
func ErrMediaTooLarge(msg string) error { return mediaTooLargeError{msg: msg} }

// IsMediaTooLarge reports whether err indicates oversize media.
func IsMediaTooLarge(err error) bool {
	_, ok := err.(mediaTooLargeError)
	return ok
}
