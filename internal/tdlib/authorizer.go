package tdlib

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zelenin/go-tdlib/client"
)

var (
	ErrNotAuthorized        = errors.New("account is not authorized, run login first")
	errAuthorizationAborted = errors.New("authorization aborted")
)

// Prompt asks the user for one authorization value.
type Prompt func(label string) (string, error)

type clientAuthorizer struct {
	TdlibParameters *client.SetTdlibParametersRequest
	Interactive     bool
	PhoneNumber     chan string
	Code            chan string
	State           chan client.AuthorizationState
	Password        chan string
	aborted         chan struct{}
	closeOnce       sync.Once
	abortOnce       sync.Once
}

func (stateHandler *clientAuthorizer) Handle(tdcl *client.Client, state client.AuthorizationState) error {
	ctx, done := context.WithDeadline(context.Background(), time.Now().Add(5*time.Minute))
	defer done()
	if stateHandler.Interactive {
		stateHandler.State <- state
	}

	switch state.AuthorizationStateConstructor() {
	case client.ConstructorAuthorizationStateWaitTdlibParameters:
		_, err := tdcl.SetTdlibParameters(ctx, stateHandler.TdlibParameters)
		return err

	case client.ConstructorAuthorizationStateWaitPhoneNumber:
		phone, err := stateHandler.await(ctx, stateHandler.PhoneNumber)
		if err != nil {
			return err
		}
		_, err = tdcl.SetAuthenticationPhoneNumber(ctx, &client.SetAuthenticationPhoneNumberRequest{
			PhoneNumber: phone,
			Settings: &client.PhoneNumberAuthenticationSettings{
				AllowFlashCall:       false,
				IsCurrentPhoneNumber: false,
				AllowSmsRetrieverApi: false,
			},
		})
		return err

	case client.ConstructorAuthorizationStateWaitCode:
		code, err := stateHandler.await(ctx, stateHandler.Code)
		if err != nil {
			return err
		}
		_, err = tdcl.CheckAuthenticationCode(ctx, &client.CheckAuthenticationCodeRequest{
			Code: code,
		})
		return err

	case client.ConstructorAuthorizationStateWaitPassword:
		password, err := stateHandler.await(ctx, stateHandler.Password)
		if err != nil {
			return err
		}
		_, err = tdcl.CheckAuthenticationPassword(ctx, &client.CheckAuthenticationPasswordRequest{
			Password: password,
		})
		return err

	case client.ConstructorAuthorizationStateReady:
		return nil

	case client.ConstructorAuthorizationStateClosing:
		return nil

	case client.ConstructorAuthorizationStateClosed:
		return nil
	}

	if !stateHandler.Interactive {
		return ErrNotAuthorized
	}

	return client.NotSupportedAuthorizationState(state)
}

// await returns ErrNotAuthorized right away when nobody can answer.
func (stateHandler *clientAuthorizer) await(ctx context.Context, input chan string) (string, error) {
	if !stateHandler.Interactive {
		return "", ErrNotAuthorized
	}
	select {
	case v, ok := <-input:
		if !ok {
			return "", errAuthorizationAborted
		}
		return v, nil
	case <-stateHandler.aborted:
		return "", errAuthorizationAborted
	case <-ctx.Done():
		return "", fmt.Errorf("authorization input: %w", ctx.Err())
	}
}

func (stateHandler *clientAuthorizer) Close() {
	stateHandler.closeOnce.Do(func() {
		close(stateHandler.PhoneNumber)
		close(stateHandler.Code)
		close(stateHandler.State)
		close(stateHandler.Password)
	})
}

func (stateHandler *clientAuthorizer) abort() {
	stateHandler.abortOnce.Do(func() {
		close(stateHandler.aborted)
	})
}

func ClientAuthorizer(tdlibParameters *client.SetTdlibParametersRequest, interactive bool) *clientAuthorizer {
	return &clientAuthorizer{
		TdlibParameters: tdlibParameters,
		Interactive:     interactive,
		PhoneNumber:     make(chan string, 1),
		Code:            make(chan string, 1),
		State:           make(chan client.AuthorizationState, 10),
		Password:        make(chan string, 1),
		aborted:         make(chan struct{}),
	}
}

// PromptInteractor answers authorization states with values obtained from
// prompt until the account is ready or the authorizer is closed. A failed
// prompt aborts the authorization.
func PromptInteractor(log *slog.Logger, clientAuthorizer *clientAuthorizer, prompt Prompt) {
	var phoneSet, codeSet, passwordSet bool

	for {
		state, ok := <-clientAuthorizer.State
		if !ok {
			log.Debug("authorization process closed")

			return
		}
		log.Debug("authorization state", "state", state.AuthorizationStateConstructor())

		var target chan string
		var label string
		switch state.AuthorizationStateConstructor() {
		case client.ConstructorAuthorizationStateWaitPhoneNumber:
			if phoneSet {
				continue
			}
			phoneSet = true
			target, label = clientAuthorizer.PhoneNumber, "Phone number"

		case client.ConstructorAuthorizationStateWaitCode:
			if codeSet {
				continue
			}
			codeSet = true
			target, label = clientAuthorizer.Code, "Code"

		case client.ConstructorAuthorizationStateWaitPassword:
			if passwordSet {
				continue
			}
			passwordSet = true
			label = "Password"
			if hint := state.(*client.AuthorizationStateWaitPassword).PasswordHint; hint != "" {
				label = fmt.Sprintf("Password (hint: %s)", hint)
			}
			target = clientAuthorizer.Password

		case client.ConstructorAuthorizationStateReady:
			log.Info("authorization complete")

			return

		default:
			continue
		}

		value, err := prompt(label)
		if err != nil {
			log.Error("authorization prompt failed", "prompt", label, "error", err)
			clientAuthorizer.abort()

			return
		}
		target <- value
	}
}
