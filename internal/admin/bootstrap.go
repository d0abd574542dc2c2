package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/rms/internal/server/models"
	"github.com/dmitrijs2005/rms/internal/server/services"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyField       = errors.New("value is required")
)

// Creator creates identities without opening a session.
type Creator interface {
	Create(ctx context.Context, in services.CreateUserInput) (*models.Identity, error)
}

// Bootstrap prompts for a new identity on r/w and creates it through c.
// A blank vendor name creates a platform user; the role then defaults to
// ADMIN, otherwise to VENDOR.
func Bootstrap(ctx context.Context, r *bufio.Reader, w io.Writer, c Creator) (*models.Identity, error) {
	vendor, err := GetSimpleText(r, "Vendor name (leave empty for a platform user)", w)
	if err != nil {
		return nil, err
	}

	fullName, err := required(r, "Full name", w)
	if err != nil {
		return nil, err
	}

	email, err := required(r, "Email", w)
	if err != nil {
		return nil, err
	}

	role := models.RoleAdmin
	if vendor != "" {
		role = models.RoleVendor
	}
	answer, err := GetSimpleText(r, fmt.Sprintf("Role (ADMIN, VENDOR, SUPER_USER) [%s]", role), w)
	if err != nil {
		return nil, err
	}
	if answer != "" {
		role = models.Role(strings.ToUpper(answer))
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	if role.Platform() {
		vendor = ""
	}

	password, err := GetPassword("Password", w)
	if err != nil {
		return nil, err
	}
	defer clear(password)

	confirm, err := GetPassword("Repeat password", w)
	if err != nil {
		return nil, err
	}
	defer clear(confirm)
	if len(password) == 0 {
		return nil, fmt.Errorf("password: %w", ErrEmptyField)
	}
	if string(password) != string(confirm) {
		return nil, ErrPasswordMismatch
	}

	return c.Create(ctx, services.CreateUserInput{
		FullName:   fullName,
		Email:      email,
		Password:   string(password),
		Role:       role,
		VendorName: vendor,
	})
}

func required(r *bufio.Reader, prompt string, w io.Writer) (string, error) {
	v, err := GetSimpleText(r, prompt, w)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%s: %w", strings.ToLower(prompt), ErrEmptyField)
	}
	return v, nil
}
