package rules

import (
	"context"
	"iter"

	"github.com/alexbilevskiy/tgfolders/internal/model"
)

type ChatInfoFetcher interface {
	FetchFullChatInfo(ctx context.Context, chatId int64) (*model.ExtendedInfo, error)
	FetchFullChannelInfo(ctx context.Context, channelId int64, accessHash int64) (*model.ExtendedInfo, error)
	// ListParticipants starts a new paginated enumeration on every call.
	ListParticipants(ctx context.Context, dialog model.Dialog) iter.Seq2[model.Participant, error]
}

// cell is a write-once value. An unset cell differs from a cell set to the zero value.
type cell[T any] struct {
	set   bool
	value T
}

func (c *cell[T]) get() (T, bool) {
	return c.value, c.set
}

func (c *cell[T]) put(v T) {
	if c.set {
		return
	}
	c.value = v
	c.set = true
}

// DialogContext carries one dialog through a classification pass. It is not
// safe for concurrent use.
type DialogContext struct {
	dialog  model.Dialog
	fetcher ChatInfoFetcher
	info    cell[*model.ExtendedInfo]
	matched cell[bool]
}

func NewDialogContext(dialog model.Dialog, fetcher ChatInfoFetcher) *DialogContext {
	return &DialogContext{dialog: dialog, fetcher: fetcher}
}

func (c *DialogContext) Dialog() model.Dialog {
	return c.dialog
}

// ExtendedInfo returns nil without error for dialogs that have no full info
// (users, forbidden chats); that outcome is remembered. Fetch errors are not.
func (c *DialogContext) ExtendedInfo(ctx context.Context) (*model.ExtendedInfo, error) {
	if info, ok := c.info.get(); ok {
		return info, nil
	}

	var info *model.ExtendedInfo
	var err error
	d := c.dialog
	switch {
	case d.Kind == model.DialogUser || d.Forbidden:
	case d.Peer.Kind == model.PeerChat:
		info, err = c.fetcher.FetchFullChatInfo(ctx, d.Peer.ChatId)
	case d.Peer.Kind == model.PeerChannel:
		info, err = c.fetcher.FetchFullChannelInfo(ctx, d.Peer.ChannelId, d.Peer.AccessHash)
	}
	if err != nil {
		return nil, &RemoteFetchError{Dialog: d, Err: err}
	}
	c.info.put(info)

	return info, nil
}

func (c *DialogContext) Participants(ctx context.Context) iter.Seq2[model.Participant, error] {
	return func(yield func(model.Participant, error) bool) {
		if c.dialog.Kind == model.DialogUser {
			return
		}
		for p, err := range c.fetcher.ListParticipants(ctx, c.dialog) {
			if err != nil {
				yield(model.Participant{}, &ParticipantEnumerationError{Dialog: c.dialog, Err: err})
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

func (c *DialogContext) MarkMatched() {
	c.matched.put(true)
}

func (c *DialogContext) HasMatched() bool {
	matched, _ := c.matched.get()

	return matched
}
