// Package auth drives the login, signup and logout flows.
package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/careerbot/internal/careerbot"
	"github.com/spigell/careerbot/internal/notify"
	"github.com/spigell/careerbot/internal/operation"
	"github.com/spigell/careerbot/internal/session"
)

type Backend interface {
	Login(ctx context.Context, creds careerbot.Credentials) (*careerbot.LoginResult, error)
	Signup(ctx context.Context, req careerbot.SignupRequest) (*careerbot.LoginResult, error)
	Logout(ctx context.Context) error
}

type Service struct {
	backend  Backend
	session  *session.Manager
	notifier notify.Notifier
	logger   *zap.Logger

	login  *operation.Controller[careerbot.LoginResult]
	signup *operation.Controller[*careerbot.LoginResult]
}

func NewService(backend Backend, sess *session.Manager, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	return &Service{
		backend:  backend,
		session:  sess,
		notifier: notifier,
		logger:   logger,
		login:    operation.New[careerbot.LoginResult]("login", logger),
		signup:   operation.New[*careerbot.LoginResult]("signup", logger),
	}
}

// LoginState exposes the login controller for rendering.
func (s *Service) LoginState() operation.State[careerbot.LoginResult] {
	return s.login.State()
}

func (s *Service) SignupState() operation.State[*careerbot.LoginResult] {
	return s.signup.State()
}

// Login validates the form, calls the backend and on success persists the
// session. Nothing is persisted on failure or when the call was detached.
func (s *Service) Login(ctx context.Context, form LoginForm) (careerbot.LoginResult, error) {
	if err := form.Validate(); err != nil {
		s.notifier.Error(err.Error())
		return careerbot.LoginResult{}, err
	}

	res, err := s.login.Run(ctx, func(ctx context.Context) (careerbot.LoginResult, error) {
		res, err := s.backend.Login(ctx, careerbot.Credentials{LoginID: form.LoginID, Password: form.Password})
		if err != nil {
			return careerbot.LoginResult{}, err
		}
		return *res, nil
	})
	if err != nil {
		s.notifyFailure(err)
		return careerbot.LoginResult{}, err
	}

	if err := s.establish(ctx, res); err != nil {
		return careerbot.LoginResult{}, err
	}

	s.notifier.Success(fmt.Sprintf("Welcome, %s!", res.User.DisplayName()))
	return res, nil
}

// Signup registers the user. The returned bool reports whether the backend
// logged the user in right away.
func (s *Service) Signup(ctx context.Context, form SignupForm) (bool, error) {
	if err := form.Validate(); err != nil {
		s.notifier.Error(err.Error())
		return false, err
	}

	res, err := s.signup.Run(ctx, func(ctx context.Context) (*careerbot.LoginResult, error) {
		res, err := s.backend.Signup(ctx, careerbot.SignupRequest{
			LoginID:  form.LoginID,
			Password: form.Password,
			UserName: form.UserName,
		})
		if err != nil {
			return nil, err
		}
		return res, nil
	})
	if err != nil {
		s.notifyFailure(err)
		return false, err
	}

	if res != nil {
		if err := s.establish(ctx, *res); err != nil {
			return false, err
		}
		s.notifier.Success(fmt.Sprintf("Signed up and logged in. Welcome, %s!", res.User.DisplayName()))
		return true, nil
	}

	s.notifier.Success("Signed up. Please log in.")
	return false, nil
}

// Logout tells the backend and always clears the local session.
func (s *Service) Logout(ctx context.Context) error {
	if s.session.IsAuthenticated() {
		if err := s.backend.Logout(ctx); err != nil {
			s.logger.Debug("backend logout failed", zap.Error(err))
		}
	}

	if err := s.session.Logout(ctx); err != nil {
		return err
	}

	s.login.Reset()
	s.signup.Reset()
	s.notifier.Success("Logged out.")
	return nil
}

// Close detaches any in-flight login or signup.
func (s *Service) Close() {
	s.login.Close()
	s.signup.Close()
}

func (s *Service) establish(ctx context.Context, res careerbot.LoginResult) error {
	return s.session.LoginSuccess(ctx, session.User{ID: res.User.ID, Name: res.User.DisplayName()}, res.Token)
}

func (s *Service) notifyFailure(err error) {
	if errors.Is(err, operation.ErrInFlight) || errors.Is(err, operation.ErrDetached) {
		return
	}
	s.notifier.Error(careerbot.Message(err))
}
