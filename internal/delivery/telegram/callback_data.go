package telegram

import (
	"strings"
)

// Callback action constants.
const (
	actionStudy  = "study"  // start a session: study:<mode>
	actionFlash  = "flash"  // flashcard flow: flash:show, flash:yes, flash:no
	actionAnswer = "answer" // option picked: answer:<index>
	actionNext   = "next"   // advance to the next question
	actionQuit   = "quit"   // finish the session early
)

// Flashcard sub-actions.
const (
	flashShow = "show"
	flashYes  = "yes"
	flashNo   = "no"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 {
		return callbackData{Raw: data}
	}
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

func (cd callbackData) param(i int) string {
	if i >= len(cd.Params) {
		return ""
	}
	return cd.Params[i]
}
