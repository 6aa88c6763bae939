package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/calc"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

var egnPattern = regexp.MustCompile(`^[0-9]{10}$`)

var errBadCredentials = errors.New("invalid credentials")

func (s *Service) authenticateUser(ctx context.Context, egn, password string) (*types.User, error) {
	user, err := s.store.Users().UserByEgn(ctx, egn)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	return user, nil
}

func (s *Service) authenticateAdmin(ctx context.Context, username, password string) (*types.Admin, error) {
	admin, err := s.store.Admins().AdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, types.ErrAdminNotFound) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	if !admin.Active {
		return nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	return admin, nil
}

func currentUser(r *http.Request) *types.User {
	u, _ := r.Context().Value(contextKeyUser).(*types.User)
	return u
}

func currentAdmin(r *http.Request) *types.Admin {
	a, _ := r.Context().Value(contextKeyAdmin).(*types.Admin)
	return a
}

func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (s *Service) handleAdminMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentAdmin(r))
}

type registerInput struct {
	FullName string `json:"fullName"`
	Egn      string `json:"egn"`
	Gender   string `json:"gender"`
	Dob      string `json:"dob"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (in registerInput) user(now time.Time) (*types.User, error) {
	fullName := utils.CollapseSpaces(in.FullName)
	if fullName == "" {
		return nil, apperr.Validation("FULL_NAME_REQUIRED")
	}
	egn := strings.TrimSpace(in.Egn)
	if !egnPattern.MatchString(egn) {
		return nil, apperr.Validation("EGN_INVALID")
	}
	dob, err := calc.ParseDate(strings.TrimSpace(in.Dob))
	if err != nil {
		return nil, apperr.Validation("DOB_INVALID")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, apperr.Validation("EMAIL_INVALID")
		}
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Validation("PASSWORD_TOO_SHORT")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &types.User{
		ID:           utils.NanoID(),
		FullName:     fullName,
		Egn:          egn,
		Gender:       strings.TrimSpace(in.Gender),
		Dob:          dob,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := in.user(time.Now().UTC())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.Users().Create(r.Context(), user); err != nil {
		if errors.Is(err, types.ErrDuplicateKey) {
			s.writeError(w, r, apperr.Conflict("USER_ALREADY_EXISTS"))
			return
		}
		s.writeError(w, r, fmt.Errorf("failed to create user: %w", err))
		return
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	writeJSON(w, http.StatusCreated, user)
}
