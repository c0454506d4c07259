package services

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/issue-tracker/internal/auth"
	"github.com/yukikurage/issue-tracker/internal/constants"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("too many failed login attempts, try again in 15 minutes")
	ErrLoginUnavailable   = errors.New("a system error occurred, please try again later")
)

var validate = validator.New()

// LoginAttempts is the per-session failed-login state.
type LoginAttempts struct {
	Failed      int
	LockedUntil time.Time
}

// Locked reports whether the lockout window is still open at now.
func (a LoginAttempts) Locked(now time.Time) bool {
	return !a.LockedUntil.IsZero() && now.Before(a.LockedUntil)
}

// AuthService verifies credentials and drives the lockout state.
type AuthService struct {
	personRepo repository.PersonRepository
	passwords  *auth.PasswordService
	log        *slog.Logger
	now        func() time.Time
	sleep      func(time.Duration)
}

// NewAuthService creates a new AuthService.
func NewAuthService(personRepo repository.PersonRepository, passwords *auth.PasswordService, log *slog.Logger) *AuthService {
	return &AuthService{
		personRepo: personRepo,
		passwords:  passwords,
		log:        log,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// SetClock replaces the time source.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// SetSleep replaces the delay applied to unknown emails.
func (s *AuthService) SetSleep(sleep func(time.Duration)) {
	s.sleep = sleep
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and updates attempts in place.
//
// A session that has failed MaxFailedLoginAttempts-1 times in a row is locked
// on its next attempt, whatever the credentials, for LockoutDuration.
func (s *AuthService) Login(input LoginInput, attempts *LoginAttempts) (*models.Person, error) {
	now := s.now()
	if attempts.Locked(now) {
		return nil, ErrAccountLocked
	}
	if !attempts.LockedUntil.IsZero() {
		*attempts = LoginAttempts{}
	}

	if attempts.Failed >= constants.MaxFailedLoginAttempts-1 {
		attempts.Failed++
		attempts.LockedUntil = now.Add(constants.LockoutDuration)
		s.log.Warn("login locked",
			slog.String("email", strings.TrimSpace(input.Email)),
			slog.Time("locked_until", attempts.LockedUntil),
		)
		return nil, ErrAccountLocked
	}

	email := strings.TrimSpace(input.Email)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidCredentials
	}

	person, err := s.personRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.sleep(loginDelay())
			attempts.Failed++
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: failed to find person: %v", ErrLoginUnavailable, err)
	}

	if err := s.passwords.Verify(person.PasswordHash, input.Password, person.PasswordSalt); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			attempts.Failed++
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrLoginUnavailable, err)
	}

	*attempts = LoginAttempts{}
	return person, nil
}

func loginDelay() time.Duration {
	spread := int64(constants.MaxLoginDelay - constants.MinLoginDelay)
	return constants.MinLoginDelay + time.Duration(rand.Int64N(spread+1))
}
