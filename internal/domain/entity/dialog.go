package entity

import "fmt"

type DialogType string

const (
	DialogAny          DialogType = ""
	DialogAlert        DialogType = "alert"
	DialogConfirm      DialogType = "confirm"
	DialogPrompt       DialogType = "prompt"
	DialogBeforeUnload DialogType = "beforeunload"
)

func ParseDialogType(s string) (DialogType, error) {
	switch t := DialogType(s); t {
	case DialogAny, DialogAlert, DialogConfirm, DialogPrompt, DialogBeforeUnload:
		return t, nil
	}
	if s == "any" {
		return DialogAny, nil
	}
	return "", fmt.Errorf("unknown dialog type %q", s)
}

// DialogHandler is the response registered for native dialogs of one type.
type DialogHandler struct {
	Type       DialogType
	Accept     bool
	PromptText string
}

func AcceptDialogs() DialogHandler {
	return DialogHandler{Accept: true}
}

func (h DialogHandler) String() string {
	action := "dismiss"
	if h.Accept {
		action = "accept"
	}
	typ := string(h.Type)
	if typ == "" {
		typ = "any"
	}
	return typ + ":" + action
}

// DialogEvent is a native dialog raised by a page of the session.
type DialogEvent struct {
	Page    int
	Type    DialogType
	Message string
	URL     string
}
