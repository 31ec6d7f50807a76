package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-crm-connector/auth"
	"github.com/jrsteele09/go-crm-connector/crm"
	"github.com/jrsteele09/go-crm-connector/internal/config"
	"github.com/jrsteele09/go-crm-connector/internal/metrics"
	platformredis "github.com/jrsteele09/go-crm-connector/internal/redis"
	"github.com/jrsteele09/go-crm-connector/server"
	"github.com/jrsteele09/go-crm-connector/server/authflowrepo"
	"github.com/jrsteele09/go-crm-connector/sessions"
	"github.com/jrsteele09/go-crm-connector/tenants"
	tenantrepofakes "github.com/jrsteele09/go-crm-connector/tenants/repofakes"
	"github.com/jrsteele09/go-crm-connector/token"
	"github.com/jrsteele09/go-crm-connector/token/refresh"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

type app struct {
	handler http.Handler
	redis   *platformredis.Client
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("closing redis")
		}
	}
}

// build constructs every store and service once and hands them to the server
func build(ctx context.Context, c config.Config) (*app, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	rdb, err := platformredis.New(ctx, c)
	if err != nil {
		return nil, err
	}
	a := &app{redis: rdb}

	var (
		tenantRepo tenants.Repo
		flows      authflowrepo.Repo
		health     server.HealthCheck
	)
	if rdb != nil {
		var opts []tenants.RedisRepoOption
		if key := c.GetTokenEncryptionKey(); key != "" {
			sealer, err := tenants.NewSealerFromBase64(key)
			if err != nil {
				a.Close()
				return nil, fmt.Errorf("[build] %w", err)
			}
			opts = append(opts, tenants.WithSealer(sealer))
		}
		tenantRepo = tenants.NewRedisRepo(rdb, c.GetRedisKeyPrefix(), opts...)
		flows = authflowrepo.NewRedisRepo(rdb, c.GetRedisKeyPrefix(), authflowrepo.WithRedisTTL(c.GetAuthStateTTL()))
		health = rdb.Health
	} else {
		log.Warn().Msg("REDIS_URL not set, installations are kept in memory and lost on restart")
		tenantRepo = tenantrepofakes.NewFakeTenantRepo()
		flows = authflowrepo.NewInMemoryRepo(authflowrepo.WithTTL(c.GetAuthStateTTL()))
	}

	writer := tenants.NewWriter(tenantRepo, tenants.WithOnWrite(func(source tenants.Source) {
		m.IncInstallationWritten(string(source))
	}))

	tokenClient, err := token.NewClient(token.ClientConfig{
		ClientID:         c.GetClientID(),
		ClientSecret:     c.GetClientSecret(),
		RedirectURI:      c.GetRedirectURI(),
		AuthorizeURL:     c.GetAuthorizeURL(),
		TokenURL:         c.GetTokenURL(),
		LocationTokenURL: c.GetLocationTokenURL(),
		Scopes:           c.GetScopes(),
		AgencyToken:      c.GetAgencyToken(),
		APIVersion:       c.GetAPIVersion(),
		Timeout:          c.GetProviderTimeout(),
	}, token.WithMetrics(m))
	if err != nil {
		a.Close()
		return nil, err
	}
	if !tokenClient.HasAgencyToken() {
		log.Warn().Msg("CRM_AGENCY_TOKEN or CRM_LOCATION_TOKEN_URL not set, install webhooks will not write installations")
	}

	codec, err := sessions.NewCodec([]byte(c.GetSessionSecret()), sessions.WithLifetime(c.GetMaxSessionAge()))
	if err != nil {
		a.Close()
		return nil, err
	}

	refresher := refresh.NewManager(tenantRepo, writer, tokenClient, refresh.WithMetrics(m))

	authService, err := auth.NewService(
		auth.Repos{AuthFlows: flows, Tenants: tenantRepo},
		tokenClient,
		writer,
		refresher,
		codec,
		auth.WithMetrics(m),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	crmClient, err := crm.NewClient(c.GetAPIBaseURL(), c.GetAPIVersion(), c.GetProviderTimeout())
	if err != nil {
		a.Close()
		return nil, err
	}

	srv, err := server.New(c, server.Dependencies{
		Auth:      authService,
		Locations: crmClient,
		Health:    health,
		Gatherer:  reg,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.handler = srv
	return a, nil
}
