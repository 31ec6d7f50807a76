package tenants_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-crm-connector/tenants"
	tenantrepofakes "github.com/jrsteele09/go-crm-connector/tenants/repofakes"
	"github.com/stretchr/testify/require"
)

func TestWriter_WriteInstallation(t *testing.T) {
	ctx := context.Background()

	t.Run("writes and notifies", func(t *testing.T) {
		repo := tenantrepofakes.NewFakeTenantRepo()
		var sources []tenants.Source
		w := tenants.NewWriter(repo, tenants.WithOnWrite(func(s tenants.Source) { sources = append(sources, s) }))

		err := w.WriteInstallation(ctx, "loc_1", &tenants.Installation{AccessToken: "tok", Source: tenants.SourceWebhook})
		require.NoError(t, err)

		got, err := repo.Get(ctx, "loc_1")
		require.NoError(t, err)
		require.Equal(t, "tok", got.AccessToken)
		require.Equal(t, []tenants.Source{tenants.SourceWebhook}, sources)
	})

	t.Run("refuses empty access token", func(t *testing.T) {
		repo := tenantrepofakes.NewFakeTenantRepo()
		w := tenants.NewWriter(repo)

		require.Error(t, w.WriteInstallation(ctx, "loc_1", &tenants.Installation{RefreshToken: "ref"}))
		require.Error(t, w.WriteInstallation(ctx, "loc_1", nil))
		require.Error(t, w.WriteInstallation(ctx, "", &tenants.Installation{AccessToken: "tok"}))
		require.Equal(t, 0, repo.Len())
	})
}
