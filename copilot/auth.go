// Package copilot implements GitHub Copilot OAuth authentication using
// the device code flow, without requiring any external CLI tools.
//
// The flow follows RFC 8628 (OAuth 2.0 Device Authorization Grant):
//  1. Request device code from GitHub
//  2. User visits verification URL and enters the user code
//  3. Poll for access token until authorized
//  4. Use access token with the Copilot API (OpenAI-compatible)
//
// Credentials are stored in the unified auth store
// (~/.local/share/tskit/auth.json).
package copilot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/linguakit/tskit/settings"
)

const (
	// clientID is the GitHub OAuth app client ID used by Copilot
	// integrations.
	clientID = "Ov23li8tweQw6odWQebz"

	deviceCodeURL  = "https://github.com/login/device/code"
	accessTokenURL = "https://github.com/login/oauth/access_token"

	// CopilotAPIBase is the OpenAI-compatible Copilot endpoint.
	CopilotAPIBase = "https://api.githubcopilot.com"

	oauthScope = "read:user"

	// providerID is the key used in the unified auth store.
	providerID = "copilot"
)

// LoadToken loads the Copilot OAuth token from the unified auth store.
// Returns nil if no token is stored.
func LoadToken() *settings.Info {
	return settings.GetOAuth(providerID)
}

// SaveToken saves a Copilot OAuth token to the unified auth store.
func SaveToken(access string) error {
	return settings.SetOAuth(providerID, access, "", 0)
}

// DeleteToken removes the Copilot credentials.
func DeleteToken() error {
	return settings.Remove(providerID)
}

// TokenStatus returns a human-readable status of the stored token.
func TokenStatus() string {
	info := LoadToken()
	if info == nil {
		return "not authenticated"
	}
	return fmt.Sprintf("authenticated (token: %s)", settings.MaskKey(info.Access))
}

type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	Error       string `json:"error"`
	ErrorDesc   string `json:"error_description"`
	Interval    int    `json:"interval"`
}

// DeviceCodeFlow initiates the GitHub OAuth device code flow. It blocks
// until authentication completes or the context is cancelled. onPrompt
// receives the verification URL and user code for display.
func DeviceCodeFlow(ctx context.Context, onPrompt func(verificationURI, userCode string)) (string, error) {
	dcResp, err := requestDeviceCode(ctx)
	if err != nil {
		return "", fmt.Errorf("requesting device code: %w", err)
	}

	if onPrompt != nil {
		onPrompt(dcResp.VerificationURI, dcResp.UserCode)
	}

	interval := time.Duration(dcResp.Interval) * time.Second
	if interval < 5*time.Second {
		interval = 5 * time.Second
	}
	// Safety margin so GitHub never sees us as polling too fast.
	interval += 3 * time.Second

	expiry := time.Now().Add(time.Duration(dcResp.ExpiresIn) * time.Second)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}

		if time.Now().After(expiry) {
			return "", fmt.Errorf("device code expired, please try again")
		}

		atResp, err := pollAccessToken(ctx, dcResp.DeviceCode)
		if err != nil {
			return "", fmt.Errorf("polling access token: %w", err)
		}

		switch atResp.Error {
		case "":
			if err := SaveToken(atResp.AccessToken); err != nil {
				return atResp.AccessToken, fmt.Errorf("token obtained but failed to save: %w", err)
			}
			return atResp.AccessToken, nil
		case "authorization_pending":
			continue
		case "slow_down":
			// RFC 8628 section 3.5.
			interval += 5 * time.Second
			continue
		case "expired_token":
			return "", fmt.Errorf("device code expired, please try again")
		case "access_denied":
			return "", fmt.Errorf("authorization denied by user")
		default:
			desc := atResp.ErrorDesc
			if desc == "" {
				desc = atResp.Error
			}
			return "", fmt.Errorf("authorization failed: %s", desc)
		}
	}
}

func requestDeviceCode(ctx context.Context) (*deviceCodeResponse, error) {
	body := fmt.Sprintf(`{"client_id":"%s","scope":"%s"}`, clientID, oauthScope)

	req, err := http.NewRequestWithContext(ctx, "POST", deviceCodeURL, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var dcResp deviceCodeResponse
	if err := json.Unmarshal(respBody, &dcResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if dcResp.DeviceCode == "" || dcResp.UserCode == "" {
		return nil, fmt.Errorf("invalid device code response: %s", string(respBody))
	}
	return &dcResp, nil
}

func pollAccessToken(ctx context.Context, deviceCode string) (*accessTokenResponse, error) {
	body := fmt.Sprintf(`{"client_id":"%s","device_code":"%s","grant_type":"urn:ietf:params:oauth:grant-type:device_code"}`,
		clientID, deviceCode)

	req, err := http.NewRequestWithContext(ctx, "POST", accessTokenURL, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var atResp accessTokenResponse
	if err := json.Unmarshal(respBody, &atResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return &atResp, nil
}

// EnsureAuth returns a valid Copilot access token, starting the device
// code flow interactively when no token is stored.
func EnsureAuth(ctx context.Context) (string, error) {
	if info := LoadToken(); info != nil {
		return info.Access, nil
	}

	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "GitHub Copilot authentication required.")
	fmt.Fprintln(os.Stderr, "Starting device code flow...")
	fmt.Fprintln(os.Stderr, "")

	accessToken, err := DeviceCodeFlow(ctx, func(verificationURI, userCode string) {
		fmt.Fprintln(os.Stderr, "  1. Open this URL in your browser:")
		fmt.Fprintf(os.Stderr, "     %s\n\n", verificationURI)
		fmt.Fprintln(os.Stderr, "  2. Enter this code:")
		fmt.Fprintf(os.Stderr, "     %s\n\n", userCode)
		fmt.Fprintln(os.Stderr, "  Waiting for authorization...")
	})
	if err != nil {
		return "", err
	}

	fmt.Fprintln(os.Stderr, "  Authentication successful!")
	fmt.Fprintln(os.Stderr, "")
	return accessToken, nil
}

// SetAuthHeaders sets the required headers for Copilot API requests.
func SetAuthHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", "tskit/1.0")
	req.Header.Set("Openai-Intent", "conversation-edits")
	req.Header.Set("X-Initiator", "user")

	req.Header.Del("x-api-key")
}
