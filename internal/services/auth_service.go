package services

import (
	"errors"
	"log"
	"strings"

	"cellar/internal/domain"
	applog "cellar/internal/log"
	"cellar/internal/repos"
	"cellar/internal/validate"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCreds          = errors.New("invalid email or password")
	ErrWeakAdminPassword = errors.New("ADMIN_PASSWORD must be 8-20 characters with lower and upper case letters, a digit and a symbol")
)

type AuthService struct {
	Users *repos.UserRepo
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

// BootstrapAdmin creates the first admin account when the users table is
// empty. It only runs in development; elsewhere accounts must be created
// explicitly. With an empty password a random one is generated and written
// to the log once. It returns the password that was set, or "" when nothing
// was created.
func (s *AuthService) BootstrapAdmin(email, password string, development bool) (string, error) {
	n, err := s.Users.Count()
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "", nil
	}
	if !development {
		applog.Security(nil, "auth.bootstrap.skipped", map[string]any{"reason": "not development", "users": 0})
		return "", nil
	}

	generated := password == ""
	if generated {
		password = generatePassword()
	} else if !validate.Password(password) {
		return "", ErrWeakAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	u := domain.User{ID: uuid.NewString(), Email: email, Name: "Admin", Hash: string(hash), Role: domain.RoleAdmin}
	if err := s.Users.Create(u); err != nil {
		return "", err
	}
	applog.Security(nil, "auth.bootstrap.admin", map[string]any{"email": email, "generated": generated})
	if generated {
		log.Printf("[bootstrap] created admin %s with password %s; change it after first login", email, password)
	}
	return password, nil
}

// generatePassword returns 16 characters that satisfy validate.Password.
func generatePassword() string {
	r := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "Cv" + r[:12] + "7!"
}
