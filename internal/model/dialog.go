package model

import (
	"fmt"
	"strings"
)

type DialogKind string

const (
	DialogUser    DialogKind = "user"
	DialogGroup   DialogKind = "group"
	DialogChannel DialogKind = "channel"
)

func ParseDialogKind(s string) (DialogKind, error) {
	switch DialogKind(strings.ToLower(s)) {
	case DialogUser:
		return DialogUser, nil
	case DialogGroup:
		return DialogGroup, nil
	case DialogChannel:
		return DialogChannel, nil
	}

	return "", fmt.Errorf("unknown dialog kind %q", s)
}

// Dialog is one conversation as seen by the account. Id is the bare numeric
// identity of the user, basic group or channel; Peer is what folders reference.
type Dialog struct {
	Id         int64
	Kind       DialogKind
	Name       string
	Username   string
	AccessHash int64
	Forbidden  bool
	Peer       Peer
}

func (d Dialog) String() string {
	if d.Username != "" {
		return fmt.Sprintf("%s %d `%s` (@%s)", d.Kind, d.Id, d.Name, d.Username)
	}

	return fmt.Sprintf("%s %d `%s`", d.Kind, d.Id, d.Name)
}

type ExtendedInfo struct {
	About string
}

type Participant struct {
	UserId   int64
	Username string
}
