package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/amirulizwan/KedaiKit/internal/pkg/env"
)

const (
	ProviderVercel  = "vercel"
	ProviderNetlify = "netlify"
)

// Triggerer asks the hosting layer to refresh a storefront page. The order
// service depends on this interface; tests substitute fakes.
type Triggerer interface {
	TriggerDeploy(ctx context.Context, storeSlug string) bool
	TriggerFullDeploy(ctx context.Context) bool
}

// Trigger calls the configured hosting provider. Missing configuration is a
// no-op success, not a failure, so the fulfillment pipeline is never blocked
// by an unconfigured optional integration.
type Trigger struct {
	Provider         string
	AppURL           string
	RevalidateSecret string
	VercelDeployHook string
	NetlifyBuildHook string

	HTTPClient *http.Client
}

// NewTriggerFromEnv builds a deploy trigger from environment configuration.
func NewTriggerFromEnv() *Trigger {
	return &Trigger{
		Provider:         strings.ToLower(env.GetEnv("DEPLOY_PROVIDER", ProviderVercel)),
		AppURL:           strings.TrimRight(env.GetEnv("APP_URL", "http://localhost:3000"), "/"),
		RevalidateSecret: env.GetEnv("REVALIDATE_SECRET", ""),
		VercelDeployHook: env.GetEnv("VERCEL_DEPLOY_HOOK", ""),
		NetlifyBuildHook: env.GetEnv("NETLIFY_BUILD_HOOK", ""),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// TriggerDeploy refreshes the cached page of exactly one storefront. In
// netlify mode there is no path targeting, so a full rebuild is issued.
func (t *Trigger) TriggerDeploy(ctx context.Context, storeSlug string) bool {
	switch t.Provider {
	case ProviderVercel:
		return t.revalidateStore(ctx, storeSlug)
	case ProviderNetlify:
		return t.postHook(ctx, t.NetlifyBuildHook, "NETLIFY_BUILD_HOOK")
	default:
		log.Printf("no deploy provider configured (%q), skipping deploy for %s", t.Provider, storeSlug)
		return true
	}
}

// TriggerFullDeploy issues a coarse full rebuild. Reserved for manual admin
// use; the per-order pipeline never calls it.
func (t *Trigger) TriggerFullDeploy(ctx context.Context) bool {
	return t.postHook(ctx, t.VercelDeployHook, "VERCEL_DEPLOY_HOOK")
}

func (t *Trigger) revalidateStore(ctx context.Context, storeSlug string) bool {
	if t.RevalidateSecret == "" {
		log.Print("REVALIDATE_SECRET not set, skipping revalidation")
		return true
	}

	payload, err := json.Marshal(map[string]string{"slug": storeSlug})
	if err != nil {
		log.Printf("revalidation payload encode failed: %v", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.AppURL+"/api/revalidate", bytes.NewReader(payload))
	if err != nil {
		log.Printf("revalidation request build failed: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-revalidate-secret", t.RevalidateSecret)

	if err := t.do(req); err != nil {
		log.Printf("revalidation failed for %s: %v", storeSlug, err)
		return false
	}
	log.Printf("revalidation triggered for %s", storeSlug)
	return true
}

func (t *Trigger) postHook(ctx context.Context, hookURL, name string) bool {
	if hookURL == "" {
		log.Printf("%s not set, skipping deploy hook", name)
		return true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hookURL, nil)
	if err != nil {
		log.Printf("deploy hook request build failed: %v", err)
		return false
	}

	if err := t.do(req); err != nil {
		log.Printf("deploy hook %s failed: %v", name, err)
		return false
	}
	log.Printf("deploy hook %s triggered", name)
	return true
}

func (t *Trigger) do(req *http.Request) error {
	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
