package dto

type ChannelSetupRequest struct {
	InstanceName string `json:"instanceName"`
	APIKey       string `json:"apiKey"`
	APIURL       string `json:"apiUrl"`
}

type ChannelStatusResponse struct {
	TraceID     string  `json:"traceId"`
	State       string  `json:"state"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	PairingCode *string `json:"pairingCode,omitempty"`
}
