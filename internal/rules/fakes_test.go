package rules

import (
	"context"
	"iter"
	"log/slog"

	"github.com/alexbilevskiy/tgfolders/internal/model"
)

var discardLog = slog.New(slog.DiscardHandler)

type fakeFetcher struct {
	info            map[int64]*model.ExtendedInfo
	fetchErr        error
	chatFetches     int
	channelFetches  int
	participants    map[int64][]model.Participant
	participantsErr error
	enumerations    int
}

func (f *fakeFetcher) FetchFullChatInfo(_ context.Context, chatId int64) (*model.ExtendedInfo, error) {
	f.chatFetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	return f.info[chatId], nil
}

func (f *fakeFetcher) FetchFullChannelInfo(_ context.Context, channelId int64, _ int64) (*model.ExtendedInfo, error) {
	f.channelFetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	return f.info[channelId], nil
}

func (f *fakeFetcher) ListParticipants(_ context.Context, dialog model.Dialog) iter.Seq2[model.Participant, error] {
	f.enumerations++
	return func(yield func(model.Participant, error) bool) {
		for _, p := range f.participants[dialog.Id] {
			if !yield(p, nil) {
				return
			}
		}
		if f.participantsErr != nil {
			yield(model.Participant{}, f.participantsErr)
		}
	}
}

func (f *fakeFetcher) fetches() int {
	return f.chatFetches + f.channelFetches
}

type fakeLister struct {
	dialogs []model.Dialog
	err     error
}

func (l *fakeLister) ListDialogs(_ context.Context) iter.Seq2[model.Dialog, error] {
	return func(yield func(model.Dialog, error) bool) {
		for _, d := range l.dialogs {
			if !yield(d, nil) {
				return
			}
		}
		if l.err != nil {
			yield(model.Dialog{}, l.err)
		}
	}
}

func userDialog(id int64, name string, username string) model.Dialog {
	return model.Dialog{Id: id, Kind: model.DialogUser, Name: name, Username: username, Peer: model.UserPeer(id, id*10)}
}

func groupDialog(id int64, name string) model.Dialog {
	return model.Dialog{Id: id, Kind: model.DialogGroup, Name: name, Peer: model.ChatPeer(id)}
}

func channelDialog(id int64, name string, username string) model.Dialog {
	return model.Dialog{Id: id, Kind: model.DialogChannel, Name: name, Username: username, AccessHash: 7, Peer: model.ChannelPeer(id, 7)}
}
