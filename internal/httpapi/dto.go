package httpapi

import (
	"github.com/go-playground/validator/v10"

	"proxysmith/internal/generator"
	"proxysmith/internal/liveness"
	"proxysmith/internal/proxy"
)

var Validate = validator.New()

type EndpointDTO struct {
	IP       string `json:"ip" validate:"required,ip"`
	Port     string `json:"port" validate:"required,numeric"`
	Country  string `json:"country"`
	Provider string `json:"provider"`
}

func (e EndpointDTO) endpoint() proxy.Endpoint {
	ep := proxy.Endpoint{IP: e.IP, Port: e.Port, Country: e.Country, Provider: e.Provider}
	if ep.Country == "" {
		ep.Country = proxy.Unknown
	}
	if ep.Provider == "" {
		ep.Provider = proxy.Unknown
	}
	return ep
}

func endpoints(dtos []EndpointDTO) []proxy.Endpoint {
	out := make([]proxy.Endpoint, len(dtos))
	for i, d := range dtos {
		out[i] = d.endpoint()
	}
	return out
}

type ConvertRequest struct {
	Links       string `json:"links" validate:"required"`
	Target      string `json:"target" validate:"required"`
	Full        bool   `json:"full"`
	FakeIP      bool   `json:"fake_ip"`
	BestPing    bool   `json:"best_ping"`
	LoadBalance bool   `json:"load_balance"`
	Fallback    bool   `json:"fallback"`
	CustomHost  string `json:"custom_host" validate:"omitempty,hostname_rfc1123"`
	Wildcard    bool   `json:"wildcard"`
}

// GenerateRequest options are checked by the generator itself.
type GenerateRequest struct {
	Endpoint EndpointDTO             `json:"endpoint"`
	Options  generator.SingleOptions `json:"options" validate:"-"`
}

type GenerateResponse struct {
	URI   string `json:"uri"`
	Clash string `json:"clash"`
}

type SubscriptionRequest struct {
	Endpoints []EndpointDTO                 `json:"endpoints" validate:"required,min=1,dive"`
	Options   generator.SubscriptionOptions `json:"options" validate:"-"`
}

type ProbeRequest struct {
	Endpoints []EndpointDTO `json:"endpoints" validate:"required,min=1,max=500,dive"`
}

type ProbeResponse struct {
	Statuses map[string]liveness.Status `json:"statuses"`
	Stats    liveness.Stats             `json:"stats"`
}
