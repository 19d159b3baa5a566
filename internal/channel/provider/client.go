package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"servicedesk/internal/domain"
)

// ErrInstanceNotFound signals the provider does not know the tenant's
// instance name yet.
var ErrInstanceNotFound = errors.New("channel instance not found")

// Client talks to the external messaging provider for exactly one tenant.
// Base URL, API key and instance name all come from that tenant's
// ChannelConfig; nothing is process-global.
type Client struct {
	baseURL  string
	apiKey   string
	instance string
	http     *http.Client
}

func NewClient(cfg domain.ChannelConfig, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.APIURL, "/"),
		apiKey:   cfg.APIKey,
		instance: cfg.InstanceName,
		http:     &http.Client{Timeout: timeout},
	}
}

// PairingCode is the scannable code used to authorize an instance against a
// real messaging account.
type PairingCode struct {
	Code string `json:"code"`
}

// ConnectionState is the provider's view of an instance.
type ConnectionState struct {
	State         string
	PairedAddress *string
}

const stateOpen = "open"

// Open reports whether the channel is paired and ready to send.
func (s ConnectionState) Open() bool {
	return s.State == stateOpen
}

type createInstanceRequest struct {
	InstanceName string `json:"instanceName"`
	QRCode       bool   `json:"qrcode"`
}

type createInstanceResponse struct {
	QRCode *struct {
		Code   string `json:"code"`
		Base64 string `json:"base64"`
	} `json:"qrcode"`
}

// CreateInstance registers the tenant's instance on the provider. Some
// providers return a pairing code right away; when present it is returned so
// callers can short-circuit the connect call.
func (c *Client) CreateInstance(ctx context.Context) (*PairingCode, error) {
	body, err := c.do(ctx, http.MethodPost, "/instance/create", createInstanceRequest{
		InstanceName: c.instance,
		QRCode:       true,
	})
	if err != nil {
		return nil, err
	}

	var resp createInstanceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding create instance response: %w", err)
	}
	if resp.QRCode == nil {
		return nil, nil
	}

	code := resp.QRCode.Code
	if code == "" {
		code = resp.QRCode.Base64
	}
	return &PairingCode{Code: code}, nil
}

type pairingCodeResponse struct {
	Code   string `json:"code"`
	Base64 string `json:"base64"`
}

// GetPairingCode requests a fresh scannable code for an existing instance.
func (c *Client) GetPairingCode(ctx context.Context) (*PairingCode, error) {
	body, err := c.do(ctx, http.MethodGet, "/instance/connect/"+c.instance, nil)
	if err != nil {
		return nil, err
	}

	var resp pairingCodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding pairing code response: %w", err)
	}

	code := resp.Code
	if code == "" {
		code = resp.Base64
	}
	if code == "" {
		return nil, fmt.Errorf("provider returned an empty pairing code")
	}
	return &PairingCode{Code: code}, nil
}

type connectionStateResponse struct {
	Instance struct {
		State    string `json:"state"`
		OwnerJid string `json:"ownerJid"`
	} `json:"instance"`
}

// GetConnectionState queries the instance state. The paired address, when
// known, comes back without the provider's JID suffix.
func (c *Client) GetConnectionState(ctx context.Context) (*ConnectionState, error) {
	body, err := c.do(ctx, http.MethodGet, "/instance/connectionState/"+c.instance, nil)
	if err != nil {
		return nil, err
	}

	var resp connectionStateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding connection state response: %w", err)
	}

	state := ConnectionState{State: resp.Instance.State}
	if owner := resp.Instance.OwnerJid; owner != "" {
		number, _, _ := strings.Cut(owner, "@")
		state.PairedAddress = &number
	}
	return &state, nil
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

func (c *Client) SendText(ctx context.Context, number, text string) error {
	_, err := c.do(ctx, http.MethodPost, "/message/sendText/"+c.instance, sendTextRequest{
		Number: number,
		Text:   text,
	})
	return err
}

type sendMediaRequest struct {
	Number    string `json:"number"`
	MediaType string `json:"mediatype"`
	Media     string `json:"media"`
	FileName  string `json:"fileName"`
	Caption   string `json:"caption,omitempty"`
}

func (c *Client) SendDocument(ctx context.Context, number, mediaBase64, filename, caption string) error {
	_, err := c.do(ctx, http.MethodPost, "/message/sendMedia/"+c.instance, sendMediaRequest{
		Number:    number,
		MediaType: "document",
		Media:     mediaBase64,
		FileName:  filename,
		Caption:   caption,
	})
	return err
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/instance/logout/"+c.instance, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("building provider request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling provider: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading provider response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, c.instance)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("provider error: %s - %s", resp.Status, string(respBody))
	}

	return respBody, nil
}
