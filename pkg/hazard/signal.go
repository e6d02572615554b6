package hazard

import "strings"

// SignalWord is the GHS severity marker printed on a label.
type SignalWord string

const (
	SignalNone    SignalWord = ""
	SignalWarning SignalWord = "Warning"
	SignalDanger  SignalWord = "Danger"
)

// ParseSignalWord normalises free-form input ("DANGER", " warning ") to a
// known signal word. Anything unrecognised is SignalNone.
func ParseSignalWord(s string) SignalWord {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "danger":
		return SignalDanger
	case "warning":
		return SignalWarning
	default:
		return SignalNone
	}
}

func (s SignalWord) severity() int {
	switch s {
	case SignalDanger:
		return 2
	case SignalWarning:
		return 1
	default:
		return 0
	}
}

// Escalate returns the most severe word among words. A single Danger wins
// over any number of Warnings.
func Escalate(words ...SignalWord) SignalWord {
	out := SignalNone
	for _, w := range words {
		if w.severity() > out.severity() {
			out = w
		}
	}
	return out
}

// Label renders the word for a cover sheet, upper-cased, or absent when the
// word is SignalNone.
func (s SignalWord) Label(absent string) string {
	if s == SignalNone {
		return absent
	}
	return strings.ToUpper(string(s))
}
