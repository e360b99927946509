package link

import (
	"strings"

	rerrors "github.com/mj1618/rotator/internal/errors"
)

// Token is one of the fixed commands understood by the microcontroller.
type Token int

const (
	EnterGame Token = iota + 1
	EnterSchedule
	SetSchedule
	EnterPowersave
	ClickPowersave
	ClickPenalty
)

var wireNames = map[Token]string{
	EnterGame:      "enter_game",
	EnterSchedule:  "enter_sched",
	SetSchedule:    "set_sched",
	EnterPowersave: "enter_psm",
	ClickPowersave: "click_psm",
	ClickPenalty:   "click_penalty",
}

// Tokens returns every token in declaration order.
func Tokens() []Token {
	return []Token{EnterGame, EnterSchedule, SetSchedule, EnterPowersave, ClickPowersave, ClickPenalty}
}

// String returns the wire name of t.
func (t Token) String() string {
	if s, ok := wireNames[t]; ok {
		return s
	}
	return "unknown"
}

// Valid reports whether t is part of the command set.
func (t Token) Valid() bool {
	_, ok := wireNames[t]
	return ok
}

// ParseToken resolves a wire name. Anything outside the command set is an
// UNKNOWN_TOKEN error.
func ParseToken(s string) (Token, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for tok, name := range wireNames {
		if name == s {
			return tok, nil
		}
	}
	return 0, rerrors.NewUnknownToken(s)
}
