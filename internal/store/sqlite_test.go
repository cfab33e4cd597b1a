package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
)

func seedRules() []rules.Rule {
	return []rules.Rule{
		{ID: "b", Title: "Beta", Category: "user", Risk: rules.RiskLow, Type: rules.TypePath,
			Path: `%TEMP%`, Action: rules.ActionDelete, Enabled: true, SortOrder: 2},
		{ID: "a", Title: "Alpha", Category: "user", Risk: rules.RiskMedium, Type: rules.TypePattern,
			Path: `%LOCALAPPDATA%`, Pattern: "thumbcache_*.db", Action: rules.ActionRecycle,
			Enabled: true, SortOrder: 1, SizeThresholdMB: rules.Int64(5)},
		{ID: "c", Title: "Gamma", Category: "system", Risk: rules.RiskHigh, Type: rules.TypeSpecial,
			ToolCmd: "dism /online", Action: rules.ActionToolCall, Enabled: false,
			RequiresAdmin: true, AgeThresholdDays: rules.Int64(0)},
	}
}

func openTest(t *testing.T, seed []rules.Rule) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "rules.db")
	s, err := Open(context.Background(), path, seed)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestOpenSeedsCatalog(t *testing.T) {
	s, _ := openTest(t, seedRules())
	ctx := context.Background()

	enabled, err := s.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 2)
	assert.Equal(t, "a", enabled[0].ID)
	assert.Equal(t, "b", enabled[1].ID)
	require.NotNil(t, enabled[0].SizeThresholdMB)
	assert.Equal(t, int64(5), *enabled[0].SizeThresholdMB)
	assert.Nil(t, enabled[0].AgeThresholdDays)

	all, err := s.AllRules(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID, "sort_order 0 sorts first")
	assert.True(t, all[0].RequiresAdmin)
	assert.False(t, all[0].Enabled)
	require.NotNil(t, all[0].AgeThresholdDays)
	assert.Equal(t, int64(0), *all[0].AgeThresholdDays)
	assert.Equal(t, rules.ActionToolCall, all[0].Action)
}

func TestOpenDoesNotReseed(t *testing.T) {
	s, path := openTest(t, seedRules())
	ctx := context.Background()
	require.NoError(t, s.SetEnabled(ctx, "a", false))
	require.NoError(t, s.Close())

	s2, err := Open(ctx, path, seedRules())
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	enabled, err := s2.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "b", enabled[0].ID)
}

func TestSetEnabledUnknown(t *testing.T) {
	s, _ := openTest(t, seedRules())
	err := s.SetEnabled(context.Background(), "nope", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertRules(t *testing.T) {
	s, _ := openTest(t, nil)
	ctx := context.Background()

	rs := seedRules()[:1]
	require.NoError(t, s.UpsertRules(ctx, rs))
	rs[0].Title = "Beta v2"
	require.NoError(t, s.UpsertRules(ctx, rs))

	all, err := s.AllRules(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Beta v2", all[0].Title)

	bad := rules.Rule{ID: "x", Type: "bogus", Action: rules.ActionDelete}
	assert.ErrorIs(t, s.UpsertRules(ctx, []rules.Rule{bad}), rules.ErrInvalidRule)
}

func TestSettings(t *testing.T) {
	s, _ := openTest(t, nil)
	ctx := context.Background()

	_, ok, err := s.GetSetting(ctx, "workers")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.IntSetting(ctx, "workers", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	require.NoError(t, s.SetSetting(ctx, "workers", "8"))
	require.NoError(t, s.SetSetting(ctx, "workers", "2"))
	v, ok, err := s.GetSetting(ctx, "workers")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	n, err = s.IntSetting(ctx, "workers", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, s.SetSetting(ctx, "theme", "dark"))
	all, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"theme": "dark", "workers": "2"}, all)
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "", nil)
	assert.Error(t, err)
}
