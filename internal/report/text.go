package report

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// winAnsi transcodes UTF-8 text to the Windows-1252 code page used by the PDF
// core fonts. Runes outside the code page become the ASCII substitute byte.
type winAnsi struct {
	enc *encoding.Encoder
}

func newWinAnsi() *winAnsi {
	return &winAnsi{enc: encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())}
}

func (w *winAnsi) String(s string) string {
	out, err := w.enc.String(s)
	if err != nil {
		return s
	}
	return out
}
