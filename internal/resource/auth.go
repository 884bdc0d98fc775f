package resource

import (
	"context"
	"net/http"

	"storefront-client/internal/model"
)

// Auth signs users in and out. Login posts to the raw /api/login path the
// backend exposes outside the versioned API.
type Auth struct {
	r Requester
}

func NewAuth(r Requester) *Auth {
	return &Auth{r: r}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token and user payload.
func (c *Auth) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	const failure = "Invalid credentials"
	if email == "" {
		return nil, model.WrapOperation(failure, model.NewValidationError("email", "required"))
	}
	if password == "" {
		return nil, model.WrapOperation(failure, model.NewValidationError("password", "required"))
	}

	resp, err := fetchItem[model.LoginResponse](ctx, c.r, http.MethodPost, "/api/login", loginRequest{Email: email, Password: password}, failure)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Token == "" {
		return nil, model.WrapOperation(failure, model.NewRequestFailedError(http.StatusOK, "login response missing token"))
	}
	if resp.User.ID == "" {
		return nil, model.WrapOperation(failure, model.NewRequestFailedError(http.StatusOK, "login response missing user id"))
	}
	return resp, nil
}

// Logout invalidates the token server-side. The local session is torn down
// by the caller regardless of the result.
func (c *Auth) Logout(ctx context.Context) error {
	return send(ctx, c.r, http.MethodPost, "/api/logout", nil, "Failed to log out")
}
