package clean

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
	"github.com/lakshaymaurya-felt/reclaim/internal/uninstall"
)

// ─── Fakes ───────────────────────────────────────────────────────────────────

type fakeTrash struct {
	mu   sync.Mutex
	fail map[string]bool
	got  []string
}

func (f *fakeTrash) Submit(path string) error {
	if f.fail[filepath.Base(path)] {
		return errors.New("recycle bin full")
	}
	f.mu.Lock()
	f.got = append(f.got, path)
	f.mu.Unlock()
	return os.Remove(path)
}

func (f *fakeTrash) submitted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.got...)
}

type fakeStore struct {
	supported bool
	regs      []Registration
	failOn    map[string]bool
	deleted   []string
	onEnum    func()
}

type Registration = uninstall.Registration

func (f *fakeStore) Supported() bool { return f.supported }

func (f *fakeStore) Enumerate() ([]Registration, error) {
	if f.onEnum != nil {
		f.onEnum()
	}
	return f.regs, nil
}

func (f *fakeStore) DeleteSubtree(reg Registration) error {
	if f.failOn[reg.Key] {
		return errors.New("access is denied")
	}
	f.deleted = append(f.deleted, reg.Key)
	return nil
}

type fakeRunner struct {
	out   []byte
	err   error
	calls []string
}

func (f *fakeRunner) Run(command string) ([]byte, error) {
	f.calls = append(f.calls, command)
	return f.out, f.err
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Registry == nil {
		opts.Registry = &fakeStore{}
	}
	if opts.ResidueRoots == nil {
		opts.ResidueRoots = []string{}
	}
	if opts.Trash == nil {
		opts.Trash = &fakeTrash{}
	}
	if opts.Workers == 0 {
		opts.Workers = 2
	}
	return New(opts)
}

func pathRule(id, path string) rules.Rule {
	return rules.Rule{
		ID:       id,
		Title:    id,
		Category: "user",
		Risk:     rules.RiskLow,
		Type:     rules.TypePath,
		Path:     path,
		Action:   rules.ActionDelete,
		Enabled:  true,
	}
}

// ─── Scan ────────────────────────────────────────────────────────────────────

func TestScanAgeFilteredPattern(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFile(t, filepath.Join(dir, "old.log"), 2048, now.Add(-10*24*time.Hour))
	writeFile(t, filepath.Join(dir, "new.log"), 5120, now.Add(-24*time.Hour))
	t.Setenv("RECLAIM_SCAN_TEMP", dir)

	r := rules.Rule{
		ID:               "temp-logs",
		Title:            "Temp logs",
		Category:         "system",
		Type:             rules.TypePattern,
		Path:             "%RECLAIM_SCAN_TEMP%",
		Pattern:          "*.log",
		SizeThresholdMB:  rules.Int64(0),
		AgeThresholdDays: rules.Int64(7),
		Action:           rules.ActionDelete,
	}

	res := newTestEngine(t, Options{Now: func() time.Time { return now }}).Scan(context.Background(), []rules.Rule{r})
	require.Len(t, res.Items, 1)
	item := res.Items[0]
	assert.Equal(t, rules.StatusOK, item.Status)
	assert.Equal(t, int64(2048), item.TotalBytes)
	assert.Equal(t, int64(1), item.FileCount)
	assert.False(t, res.Cancelled)

	// Scans never delete.
	assert.FileExists(t, filepath.Join(dir, "old.log"))
}

func TestScanStatuses(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		rule rules.Rule
		want rules.Status
		msg  string
	}{
		{"missing path", pathRule("a", "  "), rules.StatusMissingPath, ""},
		{"missing target", pathRule("b", filepath.Join(dir, "nope")), rules.StatusMissing, ""},
		{"existing", pathRule("c", dir), rules.StatusOK, ""},
		{"unknown type", rules.Rule{ID: "d", Type: "folder"}, rules.StatusUnknown, "Unknown rule type"},
		{"special in scan", rules.Rule{ID: "e", Type: rules.TypeSpecial, Action: rules.ActionToolCall, ToolCmd: "exit 0"}, rules.StatusSkipped, "Tool rules run only during clean"},
		{"registry unsupported", rules.Rule{ID: "f", Type: rules.TypeRegistry}, rules.StatusUnsupported, "Registry cleanup only supported on Windows"},
		{"residue unsupported", rules.Rule{ID: "g", Type: rules.TypeAppResidue}, rules.StatusUnsupported, "Residue detection only supported on Windows"},
	}

	e := newTestEngine(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Scan(context.Background(), []rules.Rule{tt.rule})
			require.Len(t, res.Items, 1)
			assert.Equal(t, tt.want, res.Items[0].Status)
			assert.Equal(t, tt.msg, res.Items[0].Message)
			assert.Zero(t, res.Items[0].TotalBytes)
		})
	}
}

func TestBlockedPrecedesEveryType(t *testing.T) {
	types := []rules.Type{rules.TypePath, rules.TypePattern, rules.TypeSpecial, rules.TypeRegistry, rules.TypeAppResidue, "bogus"}
	runner := &fakeRunner{}
	e := newTestEngine(t, Options{IsAdmin: false, RunTool: runner, Registry: &fakeStore{supported: true}})

	for _, typ := range types {
		r := rules.Rule{ID: string(typ), Type: typ, RequiresAdmin: true, Path: t.TempDir(), Action: rules.ActionToolCall, ToolCmd: "x"}

		scan := e.Scan(context.Background(), []rules.Rule{r})
		require.Len(t, scan.Items, 1)
		assert.Equal(t, rules.StatusBlocked, scan.Items[0].Status, typ)
		assert.True(t, scan.Items[0].Blocked)
		assert.Equal(t, rules.BlockedReason, scan.Items[0].BlockedReason)

		rep := e.Clean(context.Background(), []rules.Rule{r}, []string{r.ID})
		require.Len(t, rep.Items, 1)
		assert.Equal(t, rules.StatusBlocked, rep.Items[0].Status, typ)
		assert.Zero(t, rep.Items[0].TotalBytes)
		assert.Zero(t, rep.Items[0].FileCount)
	}
	assert.Empty(t, runner.calls)
}

func TestScanEventsAreNonBlocking(t *testing.T) {
	dir := t.TempDir()
	rs := []rules.Rule{pathRule("one", dir), pathRule("two", dir), pathRule("three", dir)}

	// Nobody reads this channel; the scan must still finish.
	unread := make(chan Event)
	res := newTestEngine(t, Options{Events: unread}).Scan(context.Background(), rs)
	assert.Len(t, res.Items, 3)

	buffered := make(chan Event, 8)
	newTestEngine(t, Options{Events: buffered}).Scan(context.Background(), rs)
	close(buffered)

	var ids []string
	for ev := range buffered {
		assert.Equal(t, PhaseScan, ev.Phase)
		assert.Equal(t, 3, ev.Total)
		assert.Equal(t, dir, ev.Path)
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"one", "two", "three"}, ids)
}

func TestScanCancelledBetweenRules(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeStore{supported: true, onEnum: cancel}
	rs := []rules.Rule{
		{ID: "orphans", Type: rules.TypeRegistry},
		pathRule("after", t.TempDir()),
	}

	res := newTestEngine(t, Options{Registry: store}).Scan(ctx, rs)
	assert.True(t, res.Cancelled)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "orphans", res.Items[0].ID)
}

func TestScanAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestEngine(t, Options{}).Scan(ctx, []rules.Rule{pathRule("a", t.TempDir())})
	assert.True(t, res.Cancelled)
	assert.Empty(t, res.Items)
}

// ─── Clean ───────────────────────────────────────────────────────────────────

func TestCleanBlockedAndRealOutcome(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.tmp"), 1000, time.Time{})
	writeFile(t, filepath.Join(dir, "b.tmp"), 500, time.Time{})

	admin := pathRule("system", t.TempDir())
	admin.RequiresAdmin = true
	admin.Category = "system"
	user := pathRule("user", dir)

	rep := newTestEngine(t, Options{}).Clean(context.Background(), []rules.Rule{admin, user}, []string{"system", "user"})
	require.Len(t, rep.Items, 2)
	assert.Equal(t, rules.StatusBlocked, rep.Items[0].Status)
	assert.Equal(t, rules.StatusOK, rep.Items[1].Status)

	assert.Equal(t, int64(1500), rep.Summary.TotalBytes)
	assert.Equal(t, int64(2), rep.Summary.TotalFiles)
	require.Len(t, rep.Summary.ByCategory, 1)
	assert.Equal(t, "user", rep.Summary.ByCategory[0].Key)
	assert.InDelta(t, 100.0, rep.Summary.ByCategory[0].Percent, 1e-9)

	assert.NoFileExists(t, filepath.Join(dir, "a.tmp"))
}

func TestCleanIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x", "a.tmp"), 10, time.Time{})
	writeFile(t, filepath.Join(dir, "b.tmp"), 20, time.Time{})
	rs := []rules.Rule{pathRule("tmp", dir)}
	e := newTestEngine(t, Options{})

	first := e.Clean(context.Background(), rs, []string{"tmp"})
	require.Len(t, first.Items, 1)
	assert.Equal(t, int64(2), first.Items[0].FileCount)

	second := e.Clean(context.Background(), rs, []string{"tmp"})
	require.Len(t, second.Items, 1)
	assert.Equal(t, rules.StatusOK, second.Items[0].Status)
	assert.Zero(t, second.Items[0].FileCount)
	assert.Zero(t, second.Items[0].TotalBytes)
}

func TestCleanSelectionOrder(t *testing.T) {
	a, b, c := pathRule("a", t.TempDir()), pathRule("b", t.TempDir()), pathRule("c", t.TempDir())

	rep := newTestEngine(t, Options{}).Clean(context.Background(), []rules.Rule{a, b, c}, []string{"c", "missing", "a", "c"})
	ids := make([]string, 0, len(rep.Items))
	for _, it := range rep.Items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"c", "a"}, ids)
}

func TestCleanRecycleAction(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.log"), 10, time.Time{})
	r := pathRule("logs", dir)
	r.Action = rules.ActionRecycle

	tr := &fakeTrash{}
	rep := newTestEngine(t, Options{Trash: tr}).Clean(context.Background(), []rules.Rule{r}, []string{"logs"})
	require.Len(t, rep.Items, 1)
	assert.Equal(t, rules.StatusOK, rep.Items[0].Status)
	assert.Equal(t, []string{filepath.Join(dir, "a.log")}, tr.submitted())
}

func TestCleanToolRule(t *testing.T) {
	base := rules.Rule{ID: "tool", Type: rules.TypeSpecial, Action: rules.ActionToolCall, ToolCmd: "cleanmgr /sagerun:1"}

	t.Run("success", func(t *testing.T) {
		runner := &fakeRunner{}
		rep := newTestEngine(t, Options{RunTool: runner}).Clean(context.Background(), []rules.Rule{base}, []string{"tool"})
		assert.Equal(t, rules.StatusOK, rep.Items[0].Status)
		assert.Equal(t, []string{"cleanmgr /sagerun:1"}, runner.calls)
	})

	t.Run("spawn failure", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New(`exec: "cmd": executable file not found`)}
		rep := newTestEngine(t, Options{RunTool: runner}).Clean(context.Background(), []rules.Rule{base}, []string{"tool"})
		assert.Equal(t, rules.StatusError, rep.Items[0].Status)
		assert.Contains(t, rep.Items[0].Message, "executable file not found")
	})

	t.Run("wrong action", func(t *testing.T) {
		r := base
		r.Action = rules.ActionDelete
		rep := newTestEngine(t, Options{RunTool: &fakeRunner{}}).Clean(context.Background(), []rules.Rule{r}, []string{"tool"})
		assert.Equal(t, rules.StatusSkipped, rep.Items[0].Status)
		assert.Equal(t, "Action not supported for special rule", rep.Items[0].Message)
	})

	t.Run("missing command", func(t *testing.T) {
		r := base
		r.ToolCmd = " "
		rep := newTestEngine(t, Options{RunTool: &fakeRunner{}}).Clean(context.Background(), []rules.Rule{r}, []string{"tool"})
		assert.Equal(t, rules.StatusError, rep.Items[0].Status)
		assert.Equal(t, "Missing tool command", rep.Items[0].Message)
	})

	t.Run("non-zero exit through the shell", func(t *testing.T) {
		r := base
		r.ToolCmd = "exit 3"
		rep := newTestEngine(t, Options{RunTool: ShellRunner{}}).Clean(context.Background(), []rules.Rule{r}, []string{"tool"})
		assert.Equal(t, rules.StatusError, rep.Items[0].Status)
		assert.Equal(t, "Tool exit code: 3", rep.Items[0].Message)
	})
}

func TestCleanRegistryRule(t *testing.T) {
	store := &fakeStore{
		supported: true,
		regs: []Registration{
			{Hive: "HKLM", Key: "orphan-1"},
			{Hive: "HKCU", Key: "orphan-2", DisplayName: "Half"},
			{Hive: "HKLM", Key: "locked", UninstallString: "u.exe"},
			{Hive: "HKLM", Key: "healthy", DisplayName: "Ok", UninstallString: "u.exe"},
		},
		failOn: map[string]bool{"locked": true},
	}
	r := rules.Rule{ID: "reg", Category: "registry", Type: rules.TypeRegistry, Action: rules.ActionDelete}
	e := newTestEngine(t, Options{Registry: store})

	scan := e.Scan(context.Background(), []rules.Rule{r})
	assert.Equal(t, int64(3), scan.Items[0].FileCount)
	assert.Equal(t, uninstall.OrphanScanAdvisory, scan.Items[0].Message)
	assert.NotContains(t, scan.Items[0].Message, "were removed")
	assert.Empty(t, store.deleted)

	rep := e.Clean(context.Background(), []rules.Rule{r}, []string{"reg"})
	item := rep.Items[0]
	assert.Equal(t, rules.StatusPartial, item.Status)
	assert.Equal(t, int64(2), item.FileCount)
	assert.Equal(t, uninstall.OrphanAdvisory, item.Message)
	assert.Equal(t, []string{"orphan-1", "orphan-2"}, store.deleted)
}

func TestResidueRule(t *testing.T) {
	now := time.Now()
	old := now.Add(-365 * 24 * time.Hour)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Leftover", "bin", "app.dll"), 4096, old)
	writeFile(t, filepath.Join(root, "Leftover", "readme.txt"), 100, old)
	require.NoError(t, os.Chtimes(filepath.Join(root, "Leftover", "bin"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(root, "Leftover"), old, old))
	writeFile(t, filepath.Join(root, "Installed", "app.exe"), 999, old)
	require.NoError(t, os.Chtimes(filepath.Join(root, "Installed"), old, old))

	store := &fakeStore{supported: true, regs: []Registration{{InstallLocation: filepath.Join(root, "Installed")}}}
	r := rules.Rule{ID: "residue", Category: "apps", Type: rules.TypeAppResidue, Action: rules.ActionDelete}
	e := newTestEngine(t, Options{Registry: store, ResidueRoots: []string{root}, Now: func() time.Time { return now }})

	scan := e.Scan(context.Background(), []rules.Rule{r})
	require.Len(t, scan.Items, 1)
	assert.Equal(t, rules.StatusOK, scan.Items[0].Status)
	assert.Equal(t, int64(4196), scan.Items[0].TotalBytes)
	assert.Equal(t, int64(2), scan.Items[0].FileCount)
	assert.Equal(t, uninstall.ResidueScanAdvisory, scan.Items[0].Message)
	assert.NotContains(t, scan.Items[0].Message, "Removed")
	assert.DirExists(t, filepath.Join(root, "Leftover"))

	rep := e.Clean(context.Background(), []rules.Rule{r}, []string{"residue"})
	assert.Equal(t, rules.StatusOK, rep.Items[0].Status)
	assert.Equal(t, uninstall.ResidueAdvisory, rep.Items[0].Message)
	assert.Equal(t, int64(4196), rep.Items[0].TotalBytes)
	assert.NoDirExists(t, filepath.Join(root, "Leftover"))
	assert.DirExists(t, filepath.Join(root, "Installed"))

	// A rule age threshold larger than the folder age protects it.
	writeFile(t, filepath.Join(root, "Young", "f"), 1, time.Time{})
	require.NoError(t, os.Chtimes(filepath.Join(root, "Young"), now.Add(-30*24*time.Hour), now.Add(-30*24*time.Hour)))
	r.AgeThresholdDays = rules.Int64(60)
	scan = e.Scan(context.Background(), []rules.Rule{r})
	assert.Zero(t, scan.Items[0].FileCount)

	r.AgeThresholdDays = rules.Int64(7)
	scan = e.Scan(context.Background(), []rules.Rule{r})
	assert.Equal(t, int64(1), scan.Items[0].FileCount)
}

func TestResidueMeasuresWholeFolder(t *testing.T) {
	now := time.Now()
	old := now.Add(-365 * 24 * time.Hour)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Leftover", "tiny.dat"), 10, now)
	writeFile(t, filepath.Join(root, "Leftover", "old.dat"), 20, old)
	require.NoError(t, os.Chtimes(filepath.Join(root, "Leftover"), old, old))

	store := &fakeStore{supported: true}
	e := newTestEngine(t, Options{Registry: store, ResidueRoots: []string{root}, Now: func() time.Time { return now }})

	// Size limits do not filter residue contents; the whole folder is removed.
	r := rules.Rule{
		ID: "residue", Category: "apps", Type: rules.TypeAppResidue, Action: rules.ActionDelete,
		SizeThresholdMB: rules.Int64(1),
	}
	scan := e.Scan(context.Background(), []rules.Rule{r})
	assert.Equal(t, int64(30), scan.Items[0].TotalBytes)
	assert.Equal(t, int64(2), scan.Items[0].FileCount)

	// A folder age limit too large to represent leaves every folder alone.
	r.AgeThresholdDays = rules.Int64(999999)
	rep := e.Clean(context.Background(), []rules.Rule{r}, []string{"residue"})
	assert.Zero(t, rep.Items[0].FileCount)
	assert.DirExists(t, filepath.Join(root, "Leftover"))
}

func TestToolFailureSpawnError(t *testing.T) {
	assert.Equal(t, "boom", toolFailure(errors.New("boom"), []byte("ignored")))
}

func TestToolFailureTruncatesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX printf")
	}
	out, err := ShellRunner{}.Run("printf '%0300d' 0; exit 1")
	require.Error(t, err)

	msg := toolFailure(err, out)
	assert.True(t, strings.HasPrefix(msg, "Tool exit code: 1: 000"), msg)
	assert.True(t, strings.HasSuffix(msg, "..."), msg)
	assert.Len(t, msg, len("Tool exit code: 1: ")+maxToolOutput+len("..."))
}
