// Package auth contiene los servicios de autenticación detrás de los controllers HTTP.
package auth

import (
	"context"
	"errors"
	"time"

	dto "github.com/dropDatabas3/hellojohn-facebook/internal/http/dto/auth"
)

// ErrWrongCredentials indica que el provider rechazó el token (status WRONG_CREDENTIALS).
var ErrWrongCredentials = errors.New("wrong credentials")

// FacebookLoginService autentica un access token de Facebook.
type FacebookLoginService interface {
	// Login devuelve el resultado o ErrWrongCredentials; cualquier otro error
	// viene del provider sin modificar.
	Login(ctx context.Context, accessToken string, expiresAt time.Time) (*dto.FacebookLoginResult, error)
}
