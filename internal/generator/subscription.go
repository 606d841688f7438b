package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"proxysmith/internal/catalog"
	"proxysmith/internal/liveness"
	"proxysmith/internal/proxy"
	"proxysmith/internal/render"
	pkgerrors "proxysmith/pkg/errors"
)

// Kind selects which protocols a subscription emits per endpoint.
type Kind string

const (
	KindTrojan      Kind = "trojan"
	KindVLESS       Kind = "vless"
	KindShadowsocks Kind = "shadowsocks"
	KindMix         Kind = "mix"
)

// protocols returns the emitted types in mix order.
func (k Kind) protocols() []proxy.Type {
	switch k {
	case KindTrojan:
		return []proxy.Type{proxy.TypeTrojan}
	case KindVLESS:
		return []proxy.Type{proxy.TypeVLESS}
	case KindShadowsocks:
		return []proxy.Type{proxy.TypeShadowsocks}
	default:
		return []proxy.Type{proxy.TypeTrojan, proxy.TypeVLESS, proxy.TypeShadowsocks}
	}
}

var shortLabels = map[proxy.Type]string{
	proxy.TypeTrojan:      "TR",
	proxy.TypeVLESS:       "VL",
	proxy.TypeShadowsocks: "SS",
}

// SubscriptionOptions controls bulk generation.
type SubscriptionOptions struct {
	Limit        int           `json:"limit" validate:"min=1,max=50"`
	Countries    []string      `json:"countries"`
	Kind         Kind          `json:"kind" validate:"required,oneof=trojan vless shadowsocks mix"`
	TLS          bool          `json:"tls"`
	Credential   string        `json:"credential" validate:"required"`
	Domain       string        `json:"domain" validate:"required,hostname_rfc1123"`
	Bugs         []string      `json:"bugs" validate:"dive,hostname_rfc1123"`
	Wildcard     bool          `json:"wildcard"`
	Validate     bool          `json:"validate"`
	Format       render.Target `json:"format" validate:"required,oneof=clash singbox v2ray"`
	PathTemplate string        `json:"path_template"`
	// Seed fixes the shuffle; zero uses the clock.
	Seed     int64                 `json:"seed"`
	Progress liveness.ProgressFunc `json:"-" validate:"-"`
}

func subscriptionStructLevel(sl validator.StructLevel) {
	o := sl.Current().Interface().(SubscriptionOptions)
	if (o.Kind == KindVLESS || o.Kind == KindMix) && o.Credential != "" {
		if _, err := uuid.Parse(o.Credential); err != nil {
			sl.ReportError(o.Credential, "Credential", "Credential", "uuid", "")
		}
	}
}

// Validator filters endpoints by reachability. *liveness.Validator
// implements it.
type Validator interface {
	Run(ctx context.Context, eps []proxy.Endpoint, progress liveness.ProgressFunc) []liveness.Verdict
}

// Result is a rendered subscription and what went into it.
type Result struct {
	Document    []byte
	Endpoints   []proxy.Endpoint
	Descriptors []proxy.Descriptor
}

// Subscription filters, samples and optionally validates eps, then renders
// one descriptor per endpoint, bug host and protocol. Options are checked
// before any work starts.
func Subscription(ctx context.Context, eps []proxy.Endpoint, opts SubscriptionOptions, v Validator) (*Result, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, pkgerrors.FromValidator(err)
	}
	if opts.Validate && v == nil {
		return nil, fmt.Errorf("validation requested without a validator")
	}

	picked := catalog.Filter(eps, catalog.Query{Countries: opts.Countries})
	if len(picked) == 0 {
		return nil, fmt.Errorf("%w: none match the country filter", pkgerrors.ErrNoEndpoints)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	picked = catalog.Sample(picked, opts.Limit, rand.New(rand.NewSource(seed)))

	if opts.Validate {
		picked = liveness.Active(v.Run(ctx, picked, opts.Progress))
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(picked) == 0 {
			return nil, fmt.Errorf("%w: none passed validation", pkgerrors.ErrNoEndpoints)
		}
	}

	ds := Descriptors(picked, opts)
	doc, err := render.Render(opts.Format, ds, render.Options{Clash: render.ClashOptions{KeepNames: true}})
	if err != nil {
		return nil, err
	}
	return &Result{Document: doc, Endpoints: picked, Descriptors: ds}, nil
}

// Descriptors expands endpoints into descriptors, endpoint-major, then bug
// host, then protocol.
func Descriptors(eps []proxy.Endpoint, opts SubscriptionOptions) []proxy.Descriptor {
	bugs := opts.Bugs
	if len(bugs) == 0 {
		bugs = []string{""}
	}

	var ds []proxy.Descriptor
	for _, ep := range eps {
		for _, bug := range bugs {
			c := common(ep, opts.PathTemplate, opts.TLS)
			c.Server, c.SNI = opts.Domain, opts.Domain
			switch {
			case bug == "":
			case opts.Wildcard:
				c.SNI = bug + "." + opts.Domain
			default:
				c.Server = bug
			}
			c.WSHost = c.SNI

			for _, t := range opts.Kind.protocols() {
				c.Name = fmt.Sprintf("%s %s [%s]", ep.Country, ep.Provider, shortLabels[t])
				ds = append(ds, descriptor(t, c, opts.Credential))
			}
		}
	}
	return ds
}
