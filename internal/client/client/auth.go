package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/ewaste/internal/client/models"
)

// AuthResult is an auth endpoint response reduced to the fields the client
// relies on. The backend is loose about shapes: ids may be numbers, user
// fields may sit at the top level or under "user", and success may be absent.
type AuthResult struct {
	// Success is nil when the response carried no "success" field.
	Success *bool
	Token   string
	UserID  string
	Name    string
	Role    string
	Email   string
	Message string
	// Raw is the undecoded response body.
	Raw json.RawMessage
}

// Failed reports an explicit "success": false.
func (r *AuthResult) Failed() bool {
	return r.Success != nil && !*r.Success
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = flexString(num.String())
		return nil
	}
	// null, objects and arrays leave the field empty
	*s = ""
	return nil
}

type authUser struct {
	ID      flexString `json:"id"`
	MongoID flexString `json:"_id"`
	UserID  flexString `json:"userId"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Role    string     `json:"role"`
}

type authPayload struct {
	Success     *bool      `json:"success"`
	Token       string     `json:"token"`
	AccessToken string     `json:"accessToken"`
	UserID      flexString `json:"userId"`
	ID          flexString `json:"_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Message     string     `json:"message"`
	User        *authUser  `json:"user"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// decodeAuthResult normalizes raw into an AuthResult. Absent fields stay
// empty; fallbacks are the caller's business.
func decodeAuthResult(raw []byte) (*AuthResult, error) {
	var p authPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}

	res := &AuthResult{
		Success: p.Success,
		Token:   firstNonEmpty(p.Token, p.AccessToken),
		Name:    p.Name,
		Role:    p.Role,
		Email:   p.Email,
		Message: p.Message,
		Raw:     json.RawMessage(raw),
	}

	var userID, userMongoID, userName, userRole, userEmail string
	if p.User != nil {
		userID = firstNonEmpty(string(p.User.ID), string(p.User.UserID))
		userMongoID = string(p.User.MongoID)
		userName = p.User.Name
		userRole = p.User.Role
		userEmail = p.User.Email
	}

	res.UserID = firstNonEmpty(string(p.UserID), userID, userMongoID, string(p.ID))
	res.Name = firstNonEmpty(res.Name, userName)
	res.Role = firstNonEmpty(res.Role, userRole)
	res.Email = firstNonEmpty(res.Email, userEmail)
	return res, nil
}

// postAuth posts body to path and normalizes the response.
func (c *HTTPClient) postAuth(ctx context.Context, method, path string, body any) (*AuthResult, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, method, path, body, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return &AuthResult{}, nil
	}
	res, err := decodeAuthResult(raw)
	if err != nil {
		return nil, ErrInvalidServerResponse
	}
	return res, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	return c.postAuth(ctx, http.MethodPost, pathLogin, body)
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.postAuth(ctx, http.MethodPost, pathSignup, body)
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, email, otp string) (*AuthResult, error) {
	body := map[string]string{"email": email, "otp": otp}
	return c.postAuth(ctx, http.MethodPost, pathVerifyOTP, body)
}

func (c *HTTPClient) ResendOTP(ctx context.Context, email string) error {
	return c.post(ctx, pathResendOTP, map[string]string{"email": email}, nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, userID string, in models.ProfileInput) (*AuthResult, error) {
	return c.postAuth(ctx, http.MethodPut, pathUpdateProfile+userID, in)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, email string) error {
	return c.post(ctx, pathResetPassword, map[string]string{"email": email}, nil)
}

func (c *HTTPClient) ChangePassword(ctx context.Context, userID string, in models.PasswordChange) error {
	body := struct {
		UserID string `json:"userId"`
		models.PasswordChange
	}{UserID: userID, PasswordChange: in}
	return c.put(ctx, pathChangePassword, body, nil)
}
