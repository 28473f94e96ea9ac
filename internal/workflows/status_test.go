package workflows

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PolarWolf314/scrub/internal/audit"
	"github.com/PolarWolf314/scrub/internal/configs"
	kerrors "github.com/PolarWolf314/scrub/internal/errors"
)

func TestStatusBeforeAndAfterPurge(t *testing.T) {
	repo, _ := setupFixture(t)
	ctx := context.Background()
	opts := StatusOptions{Dir: repo, Settings: configs.Defaults()}

	before, err := Status(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, "main", before.Branch)
	assert.True(t, before.FileExists)
	assert.True(t, before.Tracked)
	assert.False(t, before.Ignored)
	assert.False(t, before.IgnoredByFile)
	assert.Len(t, before.Commits, 3)
	assert.Empty(t, before.OriginalRefs)
	assert.True(t, before.RemoteConfigured)
	assert.False(t, before.BackupExists)
	assert.False(t, before.Dirty)
	assert.False(t, before.Scrubbed())

	_, err = Purge(ctx, PurgeOptions{Dir: repo, Settings: configs.Defaults(), NoPush: true, Restore: true})
	require.NoError(t, err)

	after, err := Status(ctx, opts)
	require.NoError(t, err)
	assert.False(t, after.Tracked)
	assert.True(t, after.Ignored)
	assert.True(t, after.IgnoredByFile)
	assert.Empty(t, after.Commits)
	assert.True(t, after.BackupExists)
	assert.Equal(t, ".env.backup", after.Backup)
	assert.True(t, after.Scrubbed())
}

func TestStatusFromSubdirectory(t *testing.T) {
	repo, _ := setupFixture(t)
	sub := filepath.Join(repo, "nested", "dir")
	require.NoError(t, os.MkdirAll(sub, 0755))

	result, err := Status(context.Background(), StatusOptions{Dir: sub, Settings: configs.Defaults()})
	require.NoError(t, err)
	assert.Equal(t, ".env", result.File)
	assert.True(t, result.FileExists)
}

func TestStatusUnknownRemote(t *testing.T) {
	repo, _ := setupFixture(t)
	settings := configs.Defaults()
	settings.Remote = "upstream"

	result, err := Status(context.Background(), StatusOptions{Dir: repo, Settings: settings})
	require.NoError(t, err)
	assert.False(t, result.RemoteConfigured)
}

func TestVerify(t *testing.T) {
	repo, _ := setupFixture(t)
	ctx := context.Background()
	opts := VerifyOptions{Dir: repo, Settings: configs.Defaults()}

	result, err := Verify(ctx, opts)
	assert.ErrorIs(t, err, kerrors.ErrPathStillInHistory)
	require.NotNil(t, result)
	assert.Len(t, result.Commits, 3)

	_, err = Purge(ctx, PurgeOptions{Dir: repo, Settings: configs.Defaults(), NoPush: true})
	require.NoError(t, err)

	result, err = Verify(ctx, opts)
	require.NoError(t, err)
	assert.Empty(t, result.Commits)
	assert.NoError(t, result.AuditErr)
}

func TestLogReadsAuditTrail(t *testing.T) {
	repo, _ := setupFixture(t)
	ctx := context.Background()

	_, err := Log(ctx, LogOptions{Dir: repo})
	assert.ErrorIs(t, err, kerrors.ErrNoAuditLog)

	_, _ = Verify(ctx, VerifyOptions{Dir: repo, Settings: configs.Defaults()})
	_, err = Purge(ctx, PurgeOptions{Dir: repo, Settings: configs.Defaults(), DryRun: true})
	require.NoError(t, err)
	_, err = Purge(ctx, PurgeOptions{Dir: repo, Settings: configs.Defaults(), NoPush: true})
	require.NoError(t, err)

	all, err := Log(ctx, LogOptions{Dir: repo})
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalEntriesBeforeFilter)
	require.Len(t, all.Entries, 3)
	assert.Equal(t, "verify", all.Entries[0].Operation)

	purges, err := Log(ctx, LogOptions{Dir: repo, Operations: "purge"})
	require.NoError(t, err)
	assert.Len(t, purges.Entries, 2)

	failed, err := Log(ctx, LogOptions{Dir: repo, Status: "failed"})
	require.NoError(t, err)
	require.Len(t, failed.Entries, 1)
	assert.Equal(t, "verify", failed.Entries[0].Operation)

	latest, err := Log(ctx, LogOptions{Dir: repo, Limit: 1, Reverse: true})
	require.NoError(t, err)
	require.Len(t, latest.Entries, 1)
	assert.Equal(t, "ok", latest.Entries[0].Status)
	assert.Equal(t, "purge", latest.Entries[0].Operation)

	oldest, err := Log(ctx, LogOptions{Dir: repo, Limit: 2})
	require.NoError(t, err)
	require.Len(t, oldest.Entries, 2)
	assert.Equal(t, "dry-run", oldest.Entries[0].Status)
}

func TestLogNotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	_, err := Log(context.Background(), LogOptions{Dir: t.TempDir()})
	assert.ErrorIs(t, err, kerrors.ErrNotGitRepository)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "2024-01-15 10:30:00", FormatDateTime("2024-01-15T10:30:00.123456Z"))
	assert.Equal(t, "garbage", FormatDateTime("garbage"))

	details := FormatDetails(audit.Entry{File: ".env", Remote: "origin", Steps: []string{"backup", "gc"}, Error: "boom"})
	assert.Equal(t, ".env, remote origin, 2 steps ok, boom", details)
}
