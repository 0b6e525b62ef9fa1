package tdlib

import (
	"context"
	"fmt"
	"os"

	"github.com/zelenin/go-tdlib/client"
)

// Run starts TDLib and authorizes the account. With a nil prompt the session
// must already be authorized, otherwise ErrNotAuthorized is returned.
func (t *TdApi) Run(ctx context.Context, prompt Prompt) (*client.User, error) {
	authorizer := ClientAuthorizer(createTdlibParameters(t.cfg), prompt != nil)
	if prompt != nil {
		go PromptInteractor(t.log, authorizer, prompt)
	}

	verbosity := int32(1)
	if t.cfg.Debug {
		verbosity = 2
	}
	_, _ = client.SetLogVerbosityLevel(&client.SetLogVerbosityLevelRequest{
		NewVerbosityLevel: verbosity,
	})

	tdlibClient, err := client.NewClient(authorizer, client.WithResultHandler(client.NewCallbackResultHandler(t.UpdatesCallback)))
	if err != nil {
		return nil, fmt.Errorf("create tdlib client: %w", err)
	}
	t.tdlibClient = tdlibClient

	optionValue, err := tdlibClient.GetOption(&client.GetOptionRequest{
		Name: "version",
	})
	if err != nil {
		return nil, fmt.Errorf("get tdlib version: %w", err)
	}
	if v, ok := optionValue.(*client.OptionValueString); ok {
		t.log.Debug("tdlib started", "version", v.Value)
	}

	me, err := tdlibClient.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("get me: %w", err)
	}
	t.me = me
	t.log.Info("authorized", "id", me.Id, "name", GetUserFullname(me))

	return me, nil
}

// LogOut terminates the session on the server and removes the local TDLib
// database. Snapshot storage in the same directory is kept.
func (t *TdApi) LogOut(ctx context.Context) error {
	if _, err := t.tdlibClient.LogOut(ctx); err != nil {
		return fmt.Errorf("log out: %w", err)
	}
	databaseDir, filesDir := sessionDirs(t.cfg)
	for _, dir := range []string{databaseDir, filesDir} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove session data: %w", err)
		}
	}
	t.log.Info("logged out", "dir", databaseDir)

	return nil
}
